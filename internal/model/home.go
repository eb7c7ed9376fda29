package model

import "time"

type Home struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	AdminID   *int64    `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HomeMember struct {
	ID        int64     `json:"id"`
	HomeID    int64     `json:"home_id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberProfile is a home member joined with their user record, in the
// home's member-list order.
type MemberProfile struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	SortOrder int    `json:"sort_order"`
}
