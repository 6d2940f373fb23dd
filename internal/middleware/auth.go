package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vectora/internal/errs"
	"vectora/internal/models"
	"vectora/internal/services"
	"vectora/internal/telegram"
)

const (
	ContextIdentity = "identity"
	ContextUserID   = "user_id"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, c services.Credentials) (*models.Identity, error)
}

// Unauthorized is the single response every authentication failure gets.
func Unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
}

// BearerToken extracts the token from an Authorization header. ok is false when the
// header is present but not a Bearer credential.
func BearerToken(header string) (token string, ok bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", true
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(parts[1])
	return token, token != ""
}

// Auth resolves the caller from the Authorization or X-Telegram-Init-Data header and
// stores the identity in the context. The failure reason is logged, never returned.
func Auth(resolver IdentityResolver, log *zap.Logger, m *Metrics) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		bearer, ok := BearerToken(c.GetHeader("Authorization"))
		creds := services.Credentials{
			Bearer:   bearer,
			InitData: strings.TrimSpace(c.GetHeader(telegram.HeaderInitData)),
		}
		source := credentialSource(creds)

		var (
			id  *models.Identity
			err error
		)
		if !ok {
			err = errs.ErrMalformedCredential
		} else {
			id, err = resolver.Resolve(c.Request.Context(), creds)
		}
		if err != nil {
			if !errors.Is(err, errs.ErrUnauthenticated) {
				err = errors.Join(errs.ErrUnauthenticated, err)
			}
			m.ObserveAuth(source, "rejected")
			log.Warn("authentication failed",
				zap.String("source", source),
				zap.String("path", c.FullPath()),
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err))
			Unauthorized(c)
			return
		}

		m.ObserveAuth(string(id.Source), "accepted")
		c.Set(ContextIdentity, id)
		c.Set(ContextUserID, id.UserID)
		c.Next()
	}
}

func credentialSource(c services.Credentials) string {
	switch {
	case c.Bearer != "":
		return string(models.SourceToken)
	case c.InitData != "":
		return string(models.SourceTelegram)
	}
	return "none"
}

// CurrentIdentity returns the identity stored by Auth.
func CurrentIdentity(c *gin.Context) (*models.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*models.Identity)
	return id, ok && id != nil
}
