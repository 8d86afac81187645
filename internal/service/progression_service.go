package service

import (
	"context"
	"errors"
	"time"

	"trail_miniapp/internal/engine"
	"trail_miniapp/internal/logger"
	"trail_miniapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrAccountNotFound = errors.New("account not found")
)

var settlements = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trail_settlements_total",
		Help: "Settlement attempts by kind and outcome",
	},
	[]string{"kind", "outcome"},
)

func countSettlement(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	settlements.WithLabelValues(kind, outcome).Inc()
}

// ProgressionService settles claims, upgrades and daily login bonuses.
// Every settlement is one transaction: lock the account row, run the engine,
// write balance and status together. Two concurrent settlements for the same
// account serialize on the row lock, so rewards cannot double-grant.
type ProgressionService struct {
	db           *pgxpool.Pool
	accounts     *repository.AccountRepository
	achievements *repository.AchievementRepository
}

func NewProgressionService(db *pgxpool.Pool) *ProgressionService {
	return &ProgressionService{
		db:           db,
		accounts:     repository.NewAccountRepository(db),
		achievements: repository.NewAchievementRepository(db),
	}
}

// Claim settles a mining claim. Returns engine.ErrClaimTooEarly inside the
// cooldown window.
func (s *ProgressionService) Claim(ctx context.Context, accountID int64, now time.Time) (res *engine.ClaimResult, err error) {
	defer func() { countSettlement("claim", err) }()

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

	res, err = engine.SettleClaim(acc, now)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, status = $2, last_claimed = $3 WHERE id = $4`,
		res.NewBalance, res.NewStatus, res.LastClaimed, accountID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// Upgrade settles a mining level upgrade. Returns engine.ErrInsufficientBalance
// when the account cannot afford the cost. The milestone achievement insert is
// best-effort after commit; its failure never rolls back the upgrade.
func (s *ProgressionService) Upgrade(ctx context.Context, accountID int64) (res *engine.UpgradeResult, err error) {
	defer func() { countSettlement("upgrade", err) }()

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

	res, err = engine.SettleUpgrade(acc)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, mining_level = $2, status = $3 WHERE id = $4`,
		res.NewBalance, res.NewMiningLevel, res.NewStatus, accountID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	if res.Milestone != "" {
		if insErr := s.achievements.Insert(ctx, accountID, res.Milestone); insErr != nil {
			logger.Warn("milestone achievement insert failed",
				"account_id", accountID, "milestone", res.Milestone, "error", insErr)
		}
	}
	return res, nil
}

// DailyLogin grants the daily bonus when the account last logged in on a
// different UTC day. Same-day calls are a no-op and report is_new_day=false.
func (s *ProgressionService) DailyLogin(ctx context.Context, accountID int64, now time.Time) (res *engine.DailyLoginResult, err error) {
	defer func() { countSettlement("daily_login", err) }()

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

	res = engine.SettleDailyLogin(acc, now)
	if !res.IsNewDay {
		// No mutation on a same-day login.
		_ = tx.Rollback(ctx)
		return res, nil
	}

	_, err = tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, status = $2, last_login = $3 WHERE id = $4`,
		res.NewBalance, res.NewStatus, res.LastLogin, accountID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}
