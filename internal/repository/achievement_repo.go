package repository

import (
	"context"

	"trail_miniapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AchievementRepository struct {
	db *pgxpool.Pool
}

func NewAchievementRepository(db *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{db: db}
}

func (r *AchievementRepository) Insert(ctx context.Context, accountID int64, description string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO achievements (account_id, description, achieved)
		 VALUES ($1, $2, true)`,
		accountID, description)
	return err
}

func (r *AchievementRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.Achievement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, account_id, description, achieved, created_at
		 FROM achievements
		 WHERE account_id = $1
		 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Achievement
	for rows.Next() {
		var a domain.Achievement
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Description, &a.Achieved, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
