// Package security holds the credential primitives of the auth core: password hashing,
// signed token issuance/verification and free-text sanitisation.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Verdict is the outcome of a password check. It is never accompanied by an error.
type Verdict int

const (
	Rejected Verdict = iota
	Verified
	// VerifiedLegacy means the password matched a bcrypt hash and should be re-hashed.
	VerifiedLegacy
)

// OK reports whether the password matched under any scheme.
func (v Verdict) OK() bool { return v == Verified || v == VerifiedLegacy }

// Argon2Params describes an Argon2id cost profile.
type Argon2Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultArgon2Params: 64 MiB, 3 passes, 4 lanes, 16-byte salt, 32-byte key.
var DefaultArgon2Params = Argon2Params{
	Memory:  64 * 1024,
	Time:    3,
	Threads: 4,
	SaltLen: 16,
	KeyLen:  32,
}

// Upper bounds accepted from a stored hash.
const (
	maxMemory  = 1 << 20 // 1 GiB
	maxTime    = 16
	maxKeyLen  = 128
	minSaltLen = 8
)

const argonPrefix = "$argon2id$"

var b64 = base64.RawStdEncoding

// PasswordHasher produces and checks self-describing Argon2id hashes and accepts
// legacy bcrypt hashes for migration. Safe for concurrent use.
type PasswordHasher struct {
	params Argon2Params
	dummy  string
}

// NewPasswordHasher builds a hasher with the given cost profile.
func NewPasswordHasher(p Argon2Params) (*PasswordHasher, error) {
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 || p.KeyLen == 0 || p.SaltLen < minSaltLen {
		return nil, fmt.Errorf("argon2 params out of range: %+v", p)
	}
	h := &PasswordHasher{params: p}
	dummy, err := h.Hash("vectora-dummy-password")
	if err != nil {
		return nil, err
	}
	h.dummy = dummy
	return h, nil
}

// Hash returns a PHC-formatted Argon2id hash with a fresh random salt.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argonPrefix, argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	), nil
}

// Verify checks password against encoded. Malformed input, unknown schemes and
// internal panics all come back as Rejected.
func (h *PasswordHasher) Verify(password, encoded string) (v Verdict) {
	defer func() {
		if recover() != nil {
			v = Rejected
		}
	}()

	encoded = strings.TrimSpace(encoded)
	switch {
	case strings.HasPrefix(encoded, argonPrefix):
		if verifyArgon2(password, encoded) {
			return Verified
		}
	case isBcrypt(encoded):
		if bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil {
			return VerifiedLegacy
		}
	}
	return Rejected
}

// DummyVerify spends the same work as a real verification and always rejects.
// Used when the user does not exist.
func (h *PasswordHasher) DummyVerify(password string) {
	_ = h.Verify(password+"\x00", h.dummy)
}

// NeedsRehash reports whether encoded was produced by another scheme or cost profile.
func (h *PasswordHasher) NeedsRehash(encoded string) bool {
	p, _, _, err := decodeArgon2(encoded)
	if err != nil {
		return true
	}
	return p.Memory != h.params.Memory || p.Time != h.params.Time || p.Threads != h.params.Threads || p.KeyLen != h.params.KeyLen
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func verifyArgon2(password, encoded string) bool {
	p, salt, want, err := decodeArgon2(encoded)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(got, want) == 1
}

var errBadHash = errors.New("malformed argon2id hash")

// decodeArgon2 parses $argon2id$v=19$m=..,t=..,p=..$salt$key.
func decodeArgon2(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, errBadHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errBadHash
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, errBadHash
	}
	if p.Memory == 0 || p.Memory > maxMemory || p.Time == 0 || p.Time > maxTime || p.Threads == 0 {
		return p, nil, nil, errBadHash
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < minSaltLen {
		return p, nil, nil, errBadHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxKeyLen {
		return p, nil, nil, errBadHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
