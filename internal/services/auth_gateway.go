package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"vectora/internal/errs"
	"vectora/internal/models"
	"vectora/internal/security"
	"vectora/internal/telegram"
	"vectora/internal/utils"
)

// UserStore is the slice of the user repository the gateway needs.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type TokenVerifier interface {
	Verify(raw string, want security.Kind) (*security.Claims, error)
}

type LaunchVerifier interface {
	Verify(raw string) (*telegram.LaunchData, error)
}

// Credentials are whatever the caller presented. Empty strings mean absent.
type Credentials struct {
	Bearer   string
	InitData string
}

type AuthGatewayConfig struct {
	AutoProvision bool
	// DevBypass only takes effect in binaries built with the devauth tag.
	DevBypass bool
	DevUserID int64
}

// AuthGateway turns request credentials into an Identity.
// A bearer token wins over init data when both are present.
type AuthGateway struct {
	users  UserStore
	tokens TokenVerifier
	launch LaunchVerifier
	hasher *security.PasswordHasher
	cfg    AuthGatewayConfig
	log    *zap.Logger
}

func NewAuthGateway(users UserStore, tokens TokenVerifier, launch LaunchVerifier,
	hasher *security.PasswordHasher, cfg AuthGatewayConfig, log *zap.Logger) *AuthGateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthGateway{users: users, tokens: tokens, launch: launch, hasher: hasher, cfg: cfg, log: log}
}

// DevBypassActive reports whether credential-less requests resolve to the dev user.
func (g *AuthGateway) DevBypassActive() bool {
	return devBypassCompiled && g.cfg.DevBypass
}

// Resolve authenticates one request. Every error it returns wraps errs.ErrUnauthenticated.
func (g *AuthGateway) Resolve(ctx context.Context, c Credentials) (*models.Identity, error) {
	switch {
	case c.Bearer != "":
		return g.ResolveToken(ctx, c.Bearer, security.KindAccess)
	case c.InitData != "":
		id, _, err := g.ResolveTelegram(ctx, c.InitData)
		return id, err
	case g.DevBypassActive():
		return g.resolveDev(ctx)
	}
	return nil, errs.ErrMissingCredential
}

// ResolveToken verifies a token of the wanted kind and loads its active owner.
func (g *AuthGateway) ResolveToken(ctx context.Context, raw string, want security.Kind) (*models.Identity, error) {
	claims, err := g.tokens.Verify(raw, want)
	if err != nil {
		return nil, err
	}
	uid, err := claims.SubjectID()
	if err != nil {
		return nil, errs.ErrMalformedCredential
	}
	u, err := g.users.GetByID(ctx, uid)
	if err != nil {
		return nil, lookupFailed(err)
	}
	if !u.IsActive {
		return nil, errs.ErrInactiveAccount
	}
	return identityOf(u, models.SourceToken), nil
}

// ResolveTelegram verifies a launch payload and maps it onto a local user,
// provisioning one when allowed.
func (g *AuthGateway) ResolveTelegram(ctx context.Context, initData string) (*models.Identity, *models.User, error) {
	data, err := g.launch.Verify(initData)
	if err != nil {
		return nil, nil, err
	}
	u, err := g.users.GetByTelegramID(ctx, data.User.ID)
	switch {
	case errors.Is(err, errs.ErrNotFound) && g.cfg.AutoProvision:
		u, err = g.provision(ctx, data.User)
		if err != nil {
			return nil, nil, lookupFailed(err)
		}
	case err != nil:
		return nil, nil, lookupFailed(err)
	}
	if !u.IsActive {
		return nil, nil, errs.ErrInactiveAccount
	}
	return identityOf(u, models.SourceTelegram), u, nil
}

func (g *AuthGateway) resolveDev(ctx context.Context) (*models.Identity, error) {
	u, err := g.users.GetByID(ctx, g.cfg.DevUserID)
	if err != nil {
		return nil, lookupFailed(err)
	}
	g.log.Warn("dev auth bypass used", zap.Int64("user_id", u.ID))
	return identityOf(u, models.SourceDev), nil
}

// provision creates a user for a first-time Telegram caller. The stored password hash
// is of a random secret nobody knows, so password login stays impossible until the
// user sets one.
func (g *AuthGateway) provision(ctx context.Context, tu telegram.WebAppUser) (*models.User, error) {
	fallback := "tg_" + strconv.FormatInt(tu.ID, 10)
	username := fallback
	if cand, err := normalizeUsername(tu.Username); err == nil {
		if _, err := g.users.GetByUsername(ctx, cand); errors.Is(err, errs.ErrNotFound) {
			username = cand
		}
	}

	secret, err := utils.RandomToken(32)
	if err != nil {
		return nil, err
	}
	hashed, err := g.hasher.Hash(secret)
	if err != nil {
		return nil, err
	}

	tgID := tu.ID
	u := &models.User{
		TelegramID:     &tgID,
		Username:       username,
		HashedPassword: hashed,
		IsActive:       true,
	}
	err = g.users.Create(ctx, u)
	if errors.Is(err, errs.ErrAlreadyExists) {
		// lost a race with a concurrent first request
		existing, gerr := g.users.GetByTelegramID(ctx, tu.ID)
		if !errors.Is(gerr, errs.ErrNotFound) || username == fallback {
			return existing, gerr
		}
		// the username was taken after the check above
		u.Username = fallback
		err = g.users.Create(ctx, u)
	}
	if err != nil {
		return nil, err
	}
	g.log.Info("provisioned telegram user", zap.Int64("user_id", u.ID), zap.Int64("telegram_id", tgID))
	return u, nil
}

func lookupFailed(err error) error {
	if errors.Is(err, errs.ErrUnauthenticated) {
		return err
	}
	if errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("%w: unknown user", errs.ErrUnauthenticated)
	}
	return fmt.Errorf("%w: user lookup: %v", errs.ErrUnauthenticated, err)
}

func identityOf(u *models.User, src models.IdentitySource) *models.Identity {
	id := &models.Identity{
		UserID:   u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
		Source:   src,
	}
	if u.TelegramID != nil {
		id.TelegramID = *u.TelegramID
	}
	return id
}
