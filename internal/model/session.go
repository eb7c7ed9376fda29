package model

import "time"

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	HomeID    int64     `json:"home_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginCode is a single-use 6-digit email code for login, registration,
// or home invitation. Only the bcrypt hash is persisted.
type LoginCode struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Purpose   string     `json:"purpose"`
	HomeID    *int64     `json:"home_id"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	Attempts  int        `json:"attempts"`
	CreatedAt time.Time  `json:"created_at"`
}
