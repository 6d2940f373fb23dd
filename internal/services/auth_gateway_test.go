package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectora/internal/errs"
	"vectora/internal/models"
	"vectora/internal/security"
)

func int64p(v int64) *int64 { return &v }

func TestAuthGateway_BearerToken(t *testing.T) {
	f := newGatewayFixture(t, AuthGatewayConfig{})
	u := f.users.add(models.User{Username: "alice", IsActive: true, IsAdmin: true, TelegramID: int64p(77)})

	pair, err := f.tokens.IssuePair(u.ID)
	require.NoError(t, err)

	id, err := f.gateway.Resolve(context.Background(), Credentials{Bearer: pair.AccessToken})
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: u.ID, TelegramID: 77, Username: "alice", IsAdmin: true, Source: models.SourceToken}, *id)

	_, err = f.gateway.Resolve(context.Background(), Credentials{Bearer: pair.RefreshToken})
	assert.ErrorIs(t, err, errs.ErrWrongKind)
}

func TestAuthGateway_BearerWinsOverInitData(t *testing.T) {
	f := newGatewayFixture(t, AuthGatewayConfig{AutoProvision: true})
	u := f.users.add(models.User{Username: "alice", IsActive: true})
	access, _, err := f.tokens.IssueAccess(u.ID)
	require.NoError(t, err)

	id, err := f.gateway.Resolve(context.Background(), Credentials{Bearer: access, InitData: signedInitData(5, "bob")})
	require.NoError(t, err)
	assert.Equal(t, models.SourceToken, id.Source)
	assert.Equal(t, u.ID, id.UserID)

	_, err = f.gateway.Resolve(context.Background(), Credentials{Bearer: "garbage", InitData: signedInitData(5, "bob")})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestAuthGateway_InactiveAndUnknown(t *testing.T) {
	f := newGatewayFixture(t, AuthGatewayConfig{})
	u := f.users.add(models.User{Username: "zoe", IsActive: false})
	access, _, err := f.tokens.IssueAccess(u.ID)
	require.NoError(t, err)

	_, err = f.gateway.Resolve(context.Background(), Credentials{Bearer: access})
	assert.ErrorIs(t, err, errs.ErrInactiveAccount)

	ghost, _, err := f.tokens.IssueAccess(999)
	require.NoError(t, err)
	_, err = f.gateway.Resolve(context.Background(), Credentials{Bearer: ghost})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestAuthGateway_StoreFailureIsUnauthenticated(t *testing.T) {
	f := newGatewayFixture(t, AuthGatewayConfig{})
	access, _, err := f.tokens.IssueAccess(1)
	require.NoError(t, err)
	f.users.failGet = errors.New("connection refused")

	_, err = f.gateway.Resolve(context.Background(), Credentials{Bearer: access})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestAuthGateway_TelegramExistingUser(t *testing.T) {
	f := newGatewayFixture(t, AuthGatewayConfig{})
	u := f.users.add(models.User{Username: "tg_user", IsActive: true, TelegramID: int64p(279058397)})

	id, err := f.gateway.Resolve(context.Background(), Credentials{InitData: signedInitData(279058397, "whatever")})
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, int64(279058397), id.TelegramID)
	assert.Equal(t, models.SourceTelegram, id.Source)
}

func TestAuthGateway_TelegramProvisioning(t *testing.T) {
	off := newGatewayFixture(t, AuthGatewayConfig{AutoProvision: false})
	_, err := off.gateway.Resolve(context.Background(), Credentials{InitData: signedInitData(11, "neo")})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	on := newGatewayFixture(t, AuthGatewayConfig{AutoProvision: true})
	id, err := on.gateway.Resolve(context.Background(), Credentials{InitData: signedInitData(11, "neo")})
	require.NoError(t, err)
	assert.Equal(t, "neo", id.Username)

	stored, err := on.users.GetByTelegramID(context.Background(), 11)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.Equal(t, security.Rejected, on.hasher.Verify("", stored.HashedPassword))

	// second login reuses the account
	again, err := on.gateway.Resolve(context.Background(), Credentials{InitData: signedInitData(11, "neo")})
	require.NoError(t, err)
	assert.Equal(t, id.UserID, again.UserID)

	// taken or invalid usernames fall back to tg_<id>
	id2, err := on.gateway.Resolve(context.Background(), Credentials{InitData: signedInitData(12, "neo")})
	require.NoError(t, err)
	assert.Equal(t, "tg_12", id2.Username)
	id3, err := on.gateway.Resolve(context.Background(), Credentials{InitData: signedInitData(13, "")})
	require.NoError(t, err)
	assert.Equal(t, "tg_13", id3.Username)
}

func TestAuthGateway_ProvisionUsernameTakenMidway(t *testing.T) {
	f := newGatewayFixture(t, AuthGatewayConfig{AutoProvision: true})
	// another account claims the name between the availability check and the insert
	f.users.beforeCreate = func() {
		f.users.add(models.User{Username: "neo", IsActive: true})
	}

	id, err := f.gateway.Resolve(context.Background(), Credentials{InitData: signedInitData(21, "neo")})
	require.NoError(t, err)
	assert.Equal(t, "tg_21", id.Username)

	stored, err := f.users.GetByTelegramID(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, id.UserID, stored.ID)
}

func TestAuthGateway_BadInitData(t *testing.T) {
	f := newGatewayFixture(t, AuthGatewayConfig{AutoProvision: true})

	_, err := f.gateway.Resolve(context.Background(), Credentials{InitData: "user=%7B%22id%22%3A123%7D"})
	assert.ErrorIs(t, err, errs.ErrMissingSignature)

	_, err = f.gateway.Resolve(context.Background(), Credentials{InitData: "user=%7B%22id%22%3A123%7D&hash=invalid_hash_value"})
	assert.ErrorIs(t, err, errs.ErrInvalidSignature)
}

func TestAuthGateway_NoCredential(t *testing.T) {
	f := newGatewayFixture(t, AuthGatewayConfig{DevBypass: true, DevUserID: 1})
	f.users.add(models.User{Username: "dev", IsActive: true})

	id, err := f.gateway.Resolve(context.Background(), Credentials{})
	if devBypassCompiled {
		require.NoError(t, err)
		assert.Equal(t, models.SourceDev, id.Source)
		return
	}
	assert.ErrorIs(t, err, errs.ErrMissingCredential)
	assert.False(t, f.gateway.DevBypassActive())
}
