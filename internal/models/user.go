package models

import "time"

type User struct {
	ID             int64      `json:"id"`
	TelegramID     *int64     `json:"telegram_id,omitempty"`
	Username       string     `json:"username"`
	Email          *string    `json:"email,omitempty"`
	HashedPassword string     `json:"-"` // never leaves the server
	IsActive       bool       `json:"is_active"`
	IsAdmin        bool       `json:"is_admin"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

type RegisterRequest struct {
	Username   string  `json:"username" binding:"required"`
	Password   string  `json:"password" binding:"required"`
	Email      *string `json:"email" binding:"omitempty,email"`
	TelegramID *int64  `json:"telegram_id"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TelegramLoginRequest struct {
	InitData string `json:"init_data" binding:"required"`
}

// UserUpdate carries only the fields the caller sent.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password"`
}
