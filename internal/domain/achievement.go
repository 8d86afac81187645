package domain

import "time"

// Achievement is an append-only milestone record for an account.
type Achievement struct {
	ID          int64     `db:"id" json:"id"`
	AccountID   int64     `db:"account_id" json:"account_id"`
	Description string    `db:"description" json:"description"`
	Achieved    bool      `db:"achieved" json:"achieved"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
