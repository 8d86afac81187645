package domain

import "time"

// Referral links a referring account to the account it brought in.
// Append-only; referred_id is unique so an account is referred at most once.
type Referral struct {
	ID         int64     `db:"id" json:"id"`
	ReferrerID int64     `db:"referrer_id" json:"referrer_id"`
	ReferredID int64     `db:"referred_id" json:"referred_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
