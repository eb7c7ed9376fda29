package model

import "time"

// GroceryItem is one line of a home's shared grocery list. Amount is a
// free-form string that may encode a sum expression ("1 + 1 + 2"); AddedAt
// governs both sort order and week bucketing and is refreshed when the item
// is re-added (merged).
type GroceryItem struct {
	ID      int64     `json:"id"`
	HomeID  int64     `json:"home_id"`
	Name    string    `json:"name"`
	Amount  string    `json:"amount"`
	Note    string    `json:"note"`
	AddedBy *int64    `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
	Checked bool      `json:"checked"`
}
