package domain

import "time"

// Task is an externally-linked action users complete for points.
// Tasks are read-only from the app's point of view.
type Task struct {
	ID          int64     `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	Details     string    `db:"details" json:"details,omitempty"`
	Link        string    `db:"link" json:"link"`
	Points      int64     `db:"points" json:"points"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CompletedTask marks a task claimed by an account, at most once per pair.
type CompletedTask struct {
	AccountID   int64     `db:"account_id" json:"account_id"`
	TaskID      int64     `db:"task_id" json:"task_id"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}
