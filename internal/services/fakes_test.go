package services

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vectora/internal/errs"
	"vectora/internal/models"
	"vectora/internal/security"
	"vectora/internal/telegram"
)

const testBotToken = "123456:TEST-token"

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]*models.User
	touched []int64
	failGet error

	// beforeCreate runs once, ahead of the next Create, without the lock held.
	beforeCreate func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int64]*models.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if hook := f.beforeCreate; hook != nil {
		f.beforeCreate = nil
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.users {
		if e.Username == u.Username ||
			(u.TelegramID != nil && e.TelegramID != nil && *e.TelegramID == *u.TelegramID) ||
			(u.Email != nil && e.Email != nil && *e.Email == *u.Email) {
			return errs.ErrAlreadyExists
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt, u.UpdatedAt = testNow, testNow
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) GetByTelegramID(_ context.Context, id int64) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.TelegramID != nil && *u.TelegramID == id })
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email != nil && *u.Email == email })
}

func (f *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, e := range f.users {
		if id != u.ID && e.Username == u.Username {
			return errs.ErrAlreadyExists
		}
	}
	if _, ok := f.users[u.ID]; !ok {
		return errs.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hashed string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.HashedPassword = hashed
	return nil
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for id := int64(1); id < f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUserRepo) add(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = &u
	return &u
}

func testHasher(t *testing.T) *security.PasswordHasher {
	t.Helper()
	h, err := security.NewPasswordHasher(security.Argon2Params{Memory: 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32})
	require.NoError(t, err)
	return h
}

func testTokens(t *testing.T, now func() time.Time) *security.TokenService {
	t.Helper()
	ts, err := security.NewTokenService(security.TokenConfig{
		Secret:     []byte("test-secret"),
		Issuer:     "vectora",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Now:        now,
	})
	require.NoError(t, err)
	return ts
}

func testVerifier(t *testing.T) *telegram.Verifier {
	t.Helper()
	v, err := telegram.NewVerifier(testBotToken, telegram.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return v
}

// signedInitData builds a launch payload signed for testBotToken.
func signedInitData(tgID int64, username string) string {
	fields := map[string]string{
		"user":      `{"id":` + strconv.FormatInt(tgID, 10) + `,"first_name":"T","username":"` + username + `"}`,
		"auth_date": strconv.FormatInt(testNow.Add(-time.Minute).Unix(), 10),
		"query_id":  "q1",
	}
	q := url.Values{}
	for k, v := range fields {
		q.Set(k, v)
	}
	q.Set("hash", telegram.Sign(telegram.SecretKey(testBotToken), fields))
	return q.Encode()
}

type gatewayFixture struct {
	users   *fakeUserRepo
	tokens  *security.TokenService
	hasher  *security.PasswordHasher
	gateway *AuthGateway
}

func newGatewayFixture(t *testing.T, cfg AuthGatewayConfig) *gatewayFixture {
	t.Helper()
	f := &gatewayFixture{
		users:  newFakeUserRepo(),
		tokens: testTokens(t, func() time.Time { return testNow }),
		hasher: testHasher(t),
	}
	f.gateway = NewAuthGateway(f.users, f.tokens, testVerifier(t), f.hasher, cfg, nil)
	return f
}
