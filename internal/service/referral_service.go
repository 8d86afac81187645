package service

import (
	"context"
	"errors"
	"fmt"

	"trail_miniapp/internal/domain"
	"trail_miniapp/internal/engine"
	"trail_miniapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrReferrerNotFound = errors.New("referrer not found")
	ErrAlreadyReferred  = errors.New("account already referred")
	ErrSelfReferral     = errors.New("cannot refer yourself")
)

// ReferralService tracks referrals and grants the referrer reward.
type ReferralService struct {
	db        *pgxpool.Pool
	accounts  *repository.AccountRepository
	referrals *repository.ReferralRepository

	botUsername     string
	webAppShortName string
}

func NewReferralService(db *pgxpool.Pool, botUsername, webAppShortName string) *ReferralService {
	return &ReferralService{
		db:              db,
		accounts:        repository.NewAccountRepository(db),
		referrals:       repository.NewReferralRepository(db),
		botUsername:     botUsername,
		webAppShortName: webAppShortName,
	}
}

// Link builds the deterministic share link embedding the account id as the
// startapp parameter. No state change.
func (s *ReferralService) Link(accountID int64) string {
	return fmt.Sprintf("https://t.me/%s/%s?startapp=%d", s.botUsername, s.webAppShortName, accountID)
}

// Track records that referrerID brought in referredID and grants the fixed
// referral reward to the referrer. The referral row and the grant commit in
// one transaction; the reward is a plain additive grant.
func (s *ReferralService) Track(ctx context.Context, referrerID, referredID int64) (err error) {
	defer func() { countSettlement("referral", err) }()

	if referrerID == referredID {
		return ErrSelfReferral
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	referrer, err := s.accounts.LockForUpdate(ctx, tx, referrerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReferrerNotFound
		}
		return err
	}

	created, err := s.referrals.CreateTx(ctx, tx, referrerID, referredID)
	if err != nil {
		return err
	}
	if !created {
		return ErrAlreadyReferred
	}

	newBalance := referrer.Balance + engine.ReferralReward
	_, err = tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, status = $2 WHERE id = $3`,
		newBalance, engine.Classify(newBalance), referrerID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *ReferralService) List(ctx context.Context, accountID int64) ([]domain.Referral, error) {
	return s.referrals.ListByReferrer(ctx, accountID)
}

func (s *ReferralService) Count(ctx context.Context, accountID int64) (int, error) {
	return s.referrals.CountByReferrer(ctx, accountID)
}
