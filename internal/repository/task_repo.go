package repository

import (
	"context"

	"trail_miniapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, description, COALESCE(details, ''), link, points, created_at
		 FROM tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Description, &t.Details, &t.Link, &t.Points, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	err := r.db.QueryRow(ctx,
		`SELECT id, description, COALESCE(details, ''), link, points, created_at
		 FROM tasks WHERE id = $1`, id).
		Scan(&t.ID, &t.Description, &t.Details, &t.Link, &t.Points, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CompletedTaskIDs returns the ids of tasks the account already claimed.
func (r *TaskRepository) CompletedTaskIDs(ctx context.Context, accountID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT task_id FROM completed_tasks WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertCompletedTx records the completion inside tx. Returns false when the
// (account, task) pair already exists; the unique constraint is the dedupe.
func (r *TaskRepository) InsertCompletedTx(ctx context.Context, tx pgx.Tx, accountID, taskID int64) (bool, error) {
	tag, err := tx.Exec(ctx,
		`INSERT INTO completed_tasks (account_id, task_id)
		 VALUES ($1, $2)
		 ON CONFLICT (account_id, task_id) DO NOTHING`,
		accountID, taskID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
