package domain

import "time"

type Account struct {
	ID          int64      `db:"id" json:"id"`
	TgID        int64      `db:"tg_id" json:"tg_id"`
	Username    string     `db:"username" json:"username"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	PhotoURL    string     `db:"photo_url" json:"photo_url,omitempty"`
	Balance     int64      `db:"balance" json:"balance"`
	MiningLevel int        `db:"mining_level" json:"mining_level"`
	Status      string     `db:"status" json:"status"`
	LastClaimed *time.Time `db:"last_claimed" json:"last_claimed,omitempty"`
	LastLogin   *time.Time `db:"last_login" json:"last_login,omitempty"`
	ReferredBy  *int64     `db:"referred_by" json:"referred_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
