package service

import (
	"context"
	"errors"

	"trail_miniapp/internal/domain"
	"trail_miniapp/internal/engine"
	"trail_miniapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
)

// TaskService settles task completion and the user-declined deduction path.
type TaskService struct {
	db       *pgxpool.Pool
	accounts *repository.AccountRepository
	tasks    *repository.TaskRepository
}

func NewTaskService(db *pgxpool.Pool) *TaskService {
	return &TaskService{
		db:       db,
		accounts: repository.NewAccountRepository(db),
		tasks:    repository.NewTaskRepository(db),
	}
}

func (s *TaskService) List(ctx context.Context) ([]*domain.Task, error) {
	return s.tasks.List(ctx)
}

func (s *TaskService) CompletedTaskIDs(ctx context.Context, accountID int64) ([]int64, error) {
	return s.tasks.CompletedTaskIDs(ctx, accountID)
}

// Complete credits the task's points and records the completion, once per
// (account, task). Duplicates fail with ErrTaskAlreadyCompleted; the unique
// constraint on completed_tasks is the source of truth, not caller discipline.
func (s *TaskService) Complete(ctx context.Context, accountID, taskID int64) (res *engine.TaskResult, err error) {
	defer func() { countSettlement("task_complete", err) }()

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	acc, err := s.accounts.LockForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	inserted, err := s.tasks.InsertCompletedTx(ctx, tx, accountID, taskID)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrTaskAlreadyCompleted
	}

	res = engine.SettleTaskCompletion(acc, task.Points)
	_, err = tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, status = $2 WHERE id = $3`,
		res.NewBalance, res.NewStatus, accountID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// Decline deducts the task's points without recording a completion (the user
// opened the task but reported not doing it). Fails with
// engine.ErrInsufficientBalance when the balance would go negative.
func (s *TaskService) Decline(ctx context.Context, accountID, taskID int64) (res *engine.TaskResult, err error) {
	defer func() { countSettlement("task_decline", err) }()

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	acc, err := s.accounts.LockForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	res, err = engine.DeductPoints(acc, task.Points)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, status = $2 WHERE id = $3`,
		res.NewBalance, res.NewStatus, accountID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}
