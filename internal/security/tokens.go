package security

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vectora/internal/errs"
)

// Kind discriminates access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the signed payload. Kind is checked on every verification so a refresh
// token can never stand in for an access token or the other way round.
type Claims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// SubjectID returns the numeric user id carried in sub.
func (c *Claims) SubjectID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenPair is what login and refresh hand back to clients.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// TokenConfig is fixed at construction and never changes for the life of the process.
type TokenConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// TokenService issues and verifies HS256 tokens. It holds no mutable state.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// NewTokenService validates cfg and returns a ready service.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("%w: token signing secret", errs.ErrConfigurationMissing)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token ttl must be greater than zero")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(now),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &TokenService{
		secret:     secret,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        now,
		parser:     jwt.NewParser(opts...),
	}, nil
}

// IssueAccess signs a short-lived access token for subjectID.
func (s *TokenService) IssueAccess(subjectID int64) (string, time.Time, error) {
	return s.issue(subjectID, KindAccess, s.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for subjectID.
func (s *TokenService) IssueRefresh(subjectID int64) (string, time.Time, error) {
	return s.issue(subjectID, KindRefresh, s.refreshTTL)
}

// IssuePair signs a fresh access+refresh pair.
func (s *TokenService) IssuePair(subjectID int64) (TokenPair, error) {
	access, accessExp, err := s.IssueAccess(subjectID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := s.IssueRefresh(subjectID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "bearer",
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *TokenService) issue(subjectID int64, kind Kind, ttl time.Duration) (string, time.Time, error) {
	if subjectID <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: subject id %d", errs.ErrInvalidInput, subjectID)
	}
	now := s.now()
	exp := now.Add(ttl)
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks signature, expiry, issuer and kind. It never panics; every failure is
// one of the errs verification sentinels, all of which match errs.ErrUnauthenticated.
func (s *TokenService) Verify(raw string, want Kind) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errs.ErrMissingCredential
	}

	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, errs.ErrInvalidSignature
	}
	if claims.Kind != want {
		return nil, errs.ErrWrongKind
	}
	if id, err := claims.SubjectID(); err != nil || id <= 0 {
		return nil, errs.ErrMalformedCredential
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errs.ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return errs.ErrInvalidSignature
	default:
		return errs.ErrMalformedCredential
	}
}
