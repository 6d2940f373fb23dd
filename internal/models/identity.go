package models

// IdentitySource tells how the caller proved who they are.
type IdentitySource string

const (
	SourceToken    IdentitySource = "token"
	SourceTelegram IdentitySource = "telegram"
	SourceDev      IdentitySource = "dev"
)

// Identity is the resolved caller of one request. Built per request, never cached.
type Identity struct {
	UserID     int64          `json:"user_id"`
	TelegramID int64          `json:"telegram_id,omitempty"`
	Username   string         `json:"username"`
	IsAdmin    bool           `json:"is_admin"`
	Source     IdentitySource `json:"source"`
}
