package models

import "time"

// Base carries the identity and audit timestamps shared by every store record.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meta exposes the embedded Base so generic store code can stamp records.
func (b *Base) Meta() *Base {
	return b
}
