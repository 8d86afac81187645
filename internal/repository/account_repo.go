package repository

import (
	"context"

	"trail_miniapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, tg_id, COALESCE(username, ''), COALESCE(first_name, ''),
	COALESCE(last_name, ''), COALESCE(photo_url, ''), balance, mining_level,
	status, last_claimed, last_login, referred_by, created_at`

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(
		&a.ID,
		&a.TgID,
		&a.Username,
		&a.FirstName,
		&a.LastName,
		&a.PhotoURL,
		&a.Balance,
		&a.MiningLevel,
		&a.Status,
		&a.LastClaimed,
		&a.LastLogin,
		&a.ReferredBy,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *AccountRepository) GetByTgID(ctx context.Context, tgID int64) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tg_id = $1`, tgID)
	return scanAccount(row)
}

// LockForUpdate reads the account inside tx with a row lock. Settlement
// services use this so the eligibility check and the write commit together.
func (r *AccountRepository) LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
	return scanAccount(row)
}

// Upsert creates the account on first authentication or refreshes the
// Telegram identity fields on subsequent ones. Progression fields (balance,
// mining_level, status, timers) are only set on insert.
func (r *AccountRepository) Upsert(ctx context.Context, a *domain.Account) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO accounts (tg_id, username, first_name, last_name, photo_url, balance, mining_level, status)
		 VALUES ($1, $2, $3, $4, $5, 0, 1, $6)
		 ON CONFLICT (tg_id) DO UPDATE
		 SET username = EXCLUDED.username,
		     first_name = EXCLUDED.first_name,
		     last_name = EXCLUDED.last_name,
		     photo_url = EXCLUDED.photo_url
		 RETURNING id, balance, mining_level, status, last_claimed, last_login, referred_by, created_at`,
		a.TgID, a.Username, a.FirstName, a.LastName, a.PhotoURL, a.Status,
	).Scan(&a.ID, &a.Balance, &a.MiningLevel, &a.Status, &a.LastClaimed, &a.LastLogin, &a.ReferredBy, &a.CreatedAt)
}

// LeaderboardEntry is a row of the balance leaderboard.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Balance   int64  `json:"balance"`
	Status    string `json:"status"`
}

// TopByBalance returns accounts ordered by balance, highest first.
func (r *AccountRepository) TopByBalance(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, COALESCE(username, ''), COALESCE(first_name, ''), balance, status
		 FROM accounts
		 ORDER BY balance DESC, id ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.AccountID, &e.Username, &e.FirstName, &e.Balance, &e.Status); err != nil {
			return nil, err
		}
		e.Rank = rank
		res = append(res, e)
		rank++
	}
	return res, rows.Err()
}

// Exists reports whether an account id is known.
func (r *AccountRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
