package model

import "time"

type Backup struct {
	ID        int64     `json:"id"`
	HomeID    int64     `json:"home_id"`
	ObjectKey string    `json:"object_key"`
	SizeBytes int64     `json:"size_bytes"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
