package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectora/internal/errs"
)

const testBotToken = "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11"

var testNow = time.Unix(1_760_000_000, 0)

// signPayload signs fields the way Telegram does, computed independently of Sign.
func signPayload(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()

	keyMac := hmac.New(sha256.New, []byte("WebAppData"))
	keyMac.Write([]byte(botToken))
	secret := keyMac.Sum(nil)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(DataCheckString(fields)))
	sig := hex.EncodeToString(mac.Sum(nil))

	q := url.Values{}
	for k, v := range fields {
		q.Set(k, v)
	}
	q.Set("hash", sig)
	return q.Encode()
}

func validFields(authDate time.Time) map[string]string {
	return map[string]string{
		"query_id":  "AAHdF6IQAAAAAN0XohDhrOrc",
		"user":      `{"id":279058397,"first_name":"Vladislav","last_name":"Kibenko","username":"vdkfrost","language_code":"ru","is_premium":true}`,
		"auth_date": strconv.FormatInt(authDate.Unix(), 10),
	}
}

func newTestVerifier(t *testing.T, opts ...VerifierOption) *Verifier {
	t.Helper()
	opts = append([]VerifierOption{WithClock(func() time.Time { return testNow })}, opts...)
	v, err := NewVerifier(testBotToken, opts...)
	require.NoError(t, err)
	return v
}

func TestVerify_ValidPayload(t *testing.T) {
	t.Parallel()
	v := newTestVerifier(t)

	raw := signPayload(t, testBotToken, validFields(testNow.Add(-time.Minute)))
	data, err := v.Verify(raw)
	require.NoError(t, err)

	assert.Equal(t, "279058397", data.UserID())
	assert.Equal(t, "vdkfrost", data.User.Username)
	assert.Equal(t, "Vladislav", data.User.FirstName)
	assert.Equal(t, "Kibenko", data.User.LastName)
	assert.Equal(t, "ru", data.User.LanguageCode)
	assert.True(t, data.User.IsPremium)
	assert.Equal(t, testNow.Add(-time.Minute).Unix(), data.AuthDate.Unix())
	assert.Equal(t, "AAHdF6IQAAAAAN0XohDhrOrc", data.QueryID)
}

func TestVerify_MissingSignature(t *testing.T) {
	t.Parallel()
	v := newTestVerifier(t)

	_, err := v.Verify("user=%7B%22id%22%3A123%7D")
	assert.ErrorIs(t, err, errs.ErrMissingSignature)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestVerify_InvalidSignatureForAnyToken(t *testing.T) {
	t.Parallel()

	for _, token := range []string{testBotToken, "1:x", "987654:other"} {
		v, err := NewVerifier(token, WithClock(func() time.Time { return testNow }))
		require.NoError(t, err)

		_, err = v.Verify("user=%7B%22id%22%3A123%7D&auth_date=1760000000&hash=invalid_hash_value")
		assert.ErrorIs(t, err, errs.ErrInvalidSignature, token)
	}
}

func TestVerify_SignedWithOtherBot(t *testing.T) {
	t.Parallel()
	v := newTestVerifier(t)

	raw := signPayload(t, "999:someone-else", validFields(testNow))
	_, err := v.Verify(raw)
	assert.ErrorIs(t, err, errs.ErrInvalidSignature)
}

func TestVerify_TamperedField(t *testing.T) {
	t.Parallel()
	v := newTestVerifier(t)

	fields := validFields(testNow)
	raw := signPayload(t, testBotToken, fields)
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	q.Set("user", `{"id":1,"first_name":"Mallory"}`)

	_, err = v.Verify(q.Encode())
	assert.ErrorIs(t, err, errs.ErrInvalidSignature)
}

func TestVerify_MalformedUserData(t *testing.T) {
	t.Parallel()
	v := newTestVerifier(t)

	for name, user := range map[string]string{
		"not json": "{id:",
		"no id":    `{"first_name":"x"}`,
		"bad type": `{"id":"abc"}`,
	} {
		fields := validFields(testNow)
		fields["user"] = user
		_, err := v.Verify(signPayload(t, testBotToken, fields))
		assert.ErrorIs(t, err, errs.ErrMalformedUserData, name)
	}
}

func TestVerify_AuthDateFreshness(t *testing.T) {
	t.Parallel()

	strict := newTestVerifier(t, WithMaxAge(time.Hour))
	stale := signPayload(t, testBotToken, validFields(testNow.Add(-2*time.Hour)))
	_, err := strict.Verify(stale)
	assert.ErrorIs(t, err, errs.ErrExpired)

	lenient := newTestVerifier(t, WithMaxAge(0))
	_, err = lenient.Verify(stale)
	assert.NoError(t, err)

	fields := validFields(testNow)
	delete(fields, "auth_date")
	_, err = strict.Verify(signPayload(t, testBotToken, fields))
	assert.ErrorIs(t, err, errs.ErrMalformedCredential)

	fields = validFields(testNow)
	fields["auth_date"] = "yesterday"
	_, err = strict.Verify(signPayload(t, testBotToken, fields))
	assert.ErrorIs(t, err, errs.ErrMalformedCredential)
}

func TestVerify_FutureAuthDate(t *testing.T) {
	t.Parallel()
	v := newTestVerifier(t, WithMaxAge(time.Hour))

	_, err := v.Verify(signPayload(t, testBotToken, validFields(testNow.Add(30*time.Second))))
	assert.NoError(t, err, "small clock skew is tolerated")

	_, err = v.Verify(signPayload(t, testBotToken, validFields(testNow.Add(24*time.Hour))))
	assert.ErrorIs(t, err, errs.ErrMalformedCredential)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestVerify_BlankValuesAreSigned(t *testing.T) {
	t.Parallel()
	v := newTestVerifier(t)

	fields := validFields(testNow)
	fields["start_param"] = ""
	data, err := v.Verify(signPayload(t, testBotToken, fields))
	require.NoError(t, err)
	assert.Empty(t, data.StartParam)

	// dropping the blank field changes the check string
	signed := signPayload(t, testBotToken, fields)
	_, err = v.Verify(strings.Replace(signed, "start_param=&", "", 1))
	assert.ErrorIs(t, err, errs.ErrInvalidSignature)
}

func TestVerify_EmptyAndGarbage(t *testing.T) {
	t.Parallel()
	v := newTestVerifier(t)

	_, err := v.Verify("   ")
	assert.ErrorIs(t, err, errs.ErrMissingCredential)

	_, err = v.Verify("%zz=1&hash=abc")
	assert.ErrorIs(t, err, errs.ErrMalformedCredential)
}

func TestNewVerifier_EmptyToken(t *testing.T) {
	t.Parallel()
	_, err := NewVerifier("  ")
	assert.ErrorIs(t, err, errs.ErrConfigurationMissing)
}

func TestDataCheckString(t *testing.T) {
	t.Parallel()
	got := DataCheckString(map[string]string{"user": "{}", "auth_date": "1", "query_id": "q"})
	assert.Equal(t, "auth_date=1\nquery_id=q\nuser={}", got)
	assert.Equal(t, "", DataCheckString(map[string]string{}))
}
