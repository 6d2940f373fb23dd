// Package telegram verifies Mini-App launch payloads and talks to the Bot API.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"vectora/internal/errs"
)

// HeaderInitData carries the raw launch payload on API requests.
const HeaderInitData = "X-Telegram-Init-Data"

const webAppDataKey = "WebAppData"

// maxClockSkew bounds how far auth_date may sit in the future.
const maxClockSkew = time.Minute

// WebAppUser is the "user" object embedded in the launch payload.
type WebAppUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// LaunchData is a verified launch payload.
type LaunchData struct {
	User       WebAppUser
	AuthDate   time.Time
	QueryID    string
	StartParam string
}

// UserID returns the Telegram user id as a decimal string.
func (d *LaunchData) UserID() string {
	return strconv.FormatInt(d.User.ID, 10)
}

// Verifier checks launch payloads against one bot token. The derived key is computed
// once; the verifier is immutable and safe for concurrent use.
type Verifier struct {
	secretKey []byte
	maxAge    time.Duration
	now       func() time.Time
}

// VerifierOption tweaks a Verifier at construction.
type VerifierOption func(*Verifier)

// WithMaxAge rejects payloads whose auth_date is older than d. d <= 0 disables the check.
func WithMaxAge(d time.Duration) VerifierOption {
	return func(v *Verifier) { v.maxAge = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier derives the WebApp secret from botToken. An empty token is a
// configuration error.
func NewVerifier(botToken string, opts ...VerifierOption) (*Verifier, error) {
	botToken = strings.TrimSpace(botToken)
	if botToken == "" {
		return nil, fmt.Errorf("%w: telegram bot token", errs.ErrConfigurationMissing)
	}
	v := &Verifier{
		secretKey: SecretKey(botToken),
		maxAge:    24 * time.Hour,
		now:       time.Now,
	}
	for _, o := range opts {
		o(v)
	}
	return v, nil
}

// SecretKey is HMAC-SHA256 keyed with "WebAppData" over the bot token.
func SecretKey(botToken string) []byte {
	m := hmac.New(sha256.New, []byte(webAppDataKey))
	m.Write([]byte(botToken))
	return m.Sum(nil)
}

// DataCheckString sorts the fields by key and joins them as key=value lines.
func DataCheckString(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
	}
	return b.String()
}

// Sign returns the hex signature Telegram would attach to fields.
func Sign(secretKey []byte, fields map[string]string) string {
	m := hmac.New(sha256.New, secretKey)
	m.Write([]byte(DataCheckString(fields)))
	return hex.EncodeToString(m.Sum(nil))
}

// Verify parses raw, checks its signature and freshness and decodes the user.
func (v *Verifier) Verify(raw string) (*LaunchData, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return nil, err
	}

	received, ok := fields["hash"]
	if !ok || received == "" {
		return nil, errs.ErrMissingSignature
	}
	delete(fields, "hash")

	calculated := Sign(v.secretKey, fields)
	if !hmac.Equal([]byte(calculated), []byte(received)) {
		return nil, errs.ErrInvalidSignature
	}

	var user WebAppUser
	if err := json.Unmarshal([]byte(fields["user"]), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedUserData, err)
	}
	if user.ID == 0 {
		return nil, errs.ErrMalformedUserData
	}

	data := &LaunchData{
		User:       user,
		QueryID:    fields["query_id"],
		StartParam: fields["start_param"],
	}
	if ad, ok := fields["auth_date"]; ok {
		sec, err := strconv.ParseInt(ad, 10, 64)
		if err != nil {
			return nil, errs.ErrMalformedCredential
		}
		data.AuthDate = time.Unix(sec, 0)
	}

	if v.maxAge > 0 {
		if data.AuthDate.IsZero() {
			return nil, errs.ErrMalformedCredential
		}
		now := v.now()
		if data.AuthDate.Sub(now) > maxClockSkew {
			return nil, errs.ErrMalformedCredential
		}
		if now.Sub(data.AuthDate) > v.maxAge {
			return nil, errs.ErrExpired
		}
	}
	return data, nil
}

// parseFields decodes a query string into a flat map; for repeated keys the last value wins.
// Blank values are kept since they take part in the data-check string.
func parseFields(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errs.ErrMissingCredential
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, errs.ErrMalformedCredential
	}
	fields := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			fields[k] = vs[len(vs)-1]
		}
	}
	return fields, nil
}
