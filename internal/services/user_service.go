package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"vectora/internal/errs"
	"vectora/internal/models"
	"vectora/internal/repositories"
	"vectora/internal/security"
)

// ErrBadLogin is returned for an unknown username or a wrong password alike.
var ErrBadLogin = errors.New("incorrect username or password")

// AuthResult is a user together with a freshly issued token pair.
type AuthResult struct {
	User *models.User `json:"user"`
	security.TokenPair
}

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	TelegramLogin(ctx context.Context, initData string) (*AuthResult, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateMe(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

type TokenIssuer interface {
	IssuePair(subjectID int64) (security.TokenPair, error)
}

type userService struct {
	repo         repositories.UserRepository
	hasher       *security.PasswordHasher
	tokens       TokenIssuer
	gateway      *AuthGateway
	emailService EmailService
	log          *zap.Logger
}

// NewUserService wires account flows. emailService may be nil when SMTP is not configured.
func NewUserService(repo repositories.UserRepository, hasher *security.PasswordHasher, tokens TokenIssuer,
	gateway *AuthGateway, emailService EmailService, log *zap.Logger) UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{
		repo:         repo,
		hasher:       hasher,
		tokens:       tokens,
		gateway:      gateway,
		emailService: emailService,
		log:          log,
	}
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:       username,
		Email:          email,
		TelegramID:     req.TelegramID,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: username or email already registered", errs.ErrAlreadyExists)
		}
		return nil, err
	}

	if s.emailService != nil && user.Email != nil {
		if err := s.emailService.SendWelcomeEmail(*user.Email, user.Username); err != nil {
			// warn but do not fail registration
			s.log.Warn("welcome email failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error) {
	username := security.SanitizeString(req.Username, usernameMaxLen)

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.hasher.DummyVerify(req.Password)
			return nil, ErrBadLogin
		}
		return nil, err
	}

	verdict := s.hasher.Verify(req.Password, user.HashedPassword)
	if !verdict.OK() {
		return nil, ErrBadLogin
	}
	if !user.IsActive {
		return nil, errs.ErrInactiveAccount
	}

	if verdict == security.VerifiedLegacy || s.hasher.NeedsRehash(user.HashedPassword) {
		if hashed, err := s.hasher.Hash(req.Password); err == nil {
			if err := s.repo.UpdatePassword(ctx, user.ID, hashed); err != nil {
				s.log.Warn("password rehash failed", zap.Int64("user_id", user.ID), zap.Error(err))
			} else {
				user.HashedPassword = hashed
			}
		}
	}
	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("last_login update failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return s.issue(user)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	id, err := s.gateway.ResolveToken(ctx, refreshToken, security.KindRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, lookupFailed(err)
	}
	return s.issue(user)
}

func (s *userService) TelegramLogin(ctx context.Context, initData string) (*AuthResult, error) {
	_, user, err := s.gateway.ResolveTelegram(ctx, initData)
	if err != nil {
		return nil, err
	}
	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("last_login update failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return s.issue(user)
}

func (s *userService) issue(user *models.User) (*AuthResult, error) {
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, TokenPair: pair}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) UpdateMe(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil {
		username, err := normalizeUsername(*upd.Username)
		if err != nil {
			return nil, err
		}
		user.Username = username
	}
	if upd.Email != nil {
		user.Email = normalizeEmail(upd.Email)
	}
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return nil, err
		}
		hashed, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}

	// One write: a rejected rename must not leave a changed password behind.
	if upd.Username != nil || upd.Email != nil || upd.Password != nil {
		if err := s.repo.Update(ctx, user); err != nil {
			if errors.Is(err, errs.ErrAlreadyExists) {
				return nil, fmt.Errorf("%w: username or email already registered", errs.ErrAlreadyExists)
			}
			return nil, err
		}
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// normalizeEmail trims and lower-cases; an empty address means none.
func normalizeEmail(e *string) *string {
	if e == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*e))
	if v == "" {
		return nil
	}
	return &v
}
