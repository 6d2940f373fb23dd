package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vectora/internal/config"
	"vectora/internal/security"
)

const testSecret = "test-signing-secret"

func testConfig() *config.Config {
	cfg := &config.Config{AppName: "Vectora API"}
	cfg.Server.Port = 8000
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Server.RateLimitPerMinute = 2
	cfg.Auth.SecretKey = testSecret
	cfg.Auth.Issuer = "vectora"
	cfg.Auth.AccessTokenTTL = 30 * time.Minute
	cfg.Auth.RefreshTokenTTL = 7 * 24 * time.Hour
	cfg.Telegram.BotToken = "123456:TEST"
	cfg.Telegram.InitDataMaxAge = 24 * time.Hour
	return cfg
}

func newTestApp(t *testing.T) (*App, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	a, err := build(testConfig(), zap.NewNop(), db)
	require.NoError(t, err)
	return a, mock
}

func accessToken(t *testing.T, userID int64) string {
	t.Helper()
	ts, err := security.NewTokenService(security.TokenConfig{
		Secret:     []byte(testSecret),
		Issuer:     "vectora",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	require.NoError(t, err)
	tok, _, err := ts.IssueAccess(userID)
	require.NoError(t, err)
	return tok
}

func userRow(id int64, admin bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "telegram_id", "username", "email", "hashed_password",
		"is_active", "is_admin", "created_at", "updated_at", "last_login"}).
		AddRow(id, nil, "alice", nil, "x", true, admin, now, now, nil)
}

func serve(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicEndpoints(t *testing.T) {
	a, _ := newTestApp(t)
	r := a.Router(nil)

	w := serve(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(r, http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/tasks/")

	w = serve(r, http.MethodPost, "/integrations/telegram/webhook", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "webhook route only exists in webhook mode")

	w = serve(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestRouter_ProtectedRequiresCredentials(t *testing.T) {
	a, _ := newTestApp(t)
	r := a.Router(nil)

	for _, path := range []string{"/api/tasks/", "/api/stats/overview", "/api/users/", "/auth/me"} {
		w := serve(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.JSONEq(t, `{"error":"unauthenticated"}`, w.Body.String(), path)
	}

	w := serve(r, http.MethodGet, "/api/tasks/", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_MeWithAccessToken(t *testing.T) {
	a, mock := newTestApp(t)
	r := a.Router(nil)

	mock.ExpectQuery("FROM users WHERE id").WithArgs(int64(1)).WillReturnRows(userRow(1, false))
	mock.ExpectQuery("FROM users WHERE id").WithArgs(int64(1)).WillReturnRows(userRow(1, false))

	w := serve(r, http.MethodGet, "/auth/me", accessToken(t, 1))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
	assert.NotContains(t, w.Body.String(), "hashed_password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouter_AdminOnlyUsers(t *testing.T) {
	a, mock := newTestApp(t)
	r := a.Router(nil)

	mock.ExpectQuery("FROM users WHERE id").WithArgs(int64(1)).WillReturnRows(userRow(1, false))
	w := serve(r, http.MethodGet, "/api/users/", accessToken(t, 1))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	a, _ := newTestApp(t)
	r := a.Router(nil)

	// The body is invalid, so the handler answers 400 without touching the store.
	for i := 0; i < 2; i++ {
		w := serve(r, http.MethodPost, "/auth/login", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	}
	w := serve(r, http.MethodPost, "/auth/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
