package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trail_miniapp/internal/domain"
	"trail_miniapp/internal/engine"
	"trail_miniapp/internal/repository"
	"trail_miniapp/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func connectDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)
	applyMigrations(t, db)
	return db
}

// newTestAccount inserts a fresh account with a unique tg id so progression
// state from earlier runs cannot leak into the test.
func newTestAccount(t *testing.T, db *pgxpool.Pool) *domain.Account {
	t.Helper()
	acc := &domain.Account{
		TgID:      time.Now().UnixNano(),
		Username:  "it_user",
		FirstName: "Integration",
		Status:    engine.DefaultTier,
	}
	if err := repository.NewAccountRepository(db).Upsert(context.Background(), acc); err != nil {
		t.Fatalf("upsert account: %v", err)
	}
	return acc
}

func setBalance(t *testing.T, db *pgxpool.Pool, accountID, balance int64) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`UPDATE accounts SET balance = $1, status = $2 WHERE id = $3`,
		balance, engine.Classify(balance), accountID)
	if err != nil {
		t.Fatalf("set balance: %v", err)
	}
}

func TestProgression_ClaimCooldown(t *testing.T) {
	db := connectDB(t)
	acc := newTestAccount(t, db)
	svc := service.NewProgressionService(db)
	ctx := context.Background()
	now := time.Now()

	res, err := svc.Claim(ctx, acc.ID, now)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if res.Reward != engine.ClaimReward(acc.MiningLevel) {
		t.Fatalf("reward = %d, want %d", res.Reward, engine.ClaimReward(acc.MiningLevel))
	}
	if res.NewBalance != acc.Balance+res.Reward {
		t.Fatalf("balance = %d, want %d", res.NewBalance, acc.Balance+res.Reward)
	}

	if _, err := svc.Claim(ctx, acc.ID, now.Add(time.Minute)); !errors.Is(err, engine.ErrClaimTooEarly) {
		t.Fatalf("second claim: err = %v, want ErrClaimTooEarly", err)
	}

	// The write must have committed: a fresh read shows the claim timestamp.
	got, err := repository.NewAccountRepository(db).GetByID(ctx, acc.ID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if got.LastClaimed == nil {
		t.Fatalf("last_claimed not persisted")
	}
}

func TestProgression_Upgrade(t *testing.T) {
	db := connectDB(t)
	acc := newTestAccount(t, db)
	svc := service.NewProgressionService(db)
	ctx := context.Background()

	if _, err := svc.Upgrade(ctx, acc.ID); !errors.Is(err, engine.ErrInsufficientBalance) {
		t.Fatalf("broke upgrade: err = %v, want ErrInsufficientBalance", err)
	}

	setBalance(t, db, acc.ID, 500)

	res, err := svc.Upgrade(ctx, acc.ID)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if res.NewMiningLevel != 2 {
		t.Fatalf("level = %d, want 2", res.NewMiningLevel)
	}
	if res.NewBalance != 400 {
		t.Fatalf("balance = %d, want 400", res.NewBalance)
	}
}

func TestProgression_UpgradeMilestoneAchievement(t *testing.T) {
	db := connectDB(t)
	acc := newTestAccount(t, db)
	svc := service.NewProgressionService(db)
	ctx := context.Background()

	// Level 4 -> 5 crosses a milestone.
	_, err := db.Exec(ctx,
		`UPDATE accounts SET mining_level = 4, balance = 1000 WHERE id = $1`, acc.ID)
	if err != nil {
		t.Fatalf("prime account: %v", err)
	}

	res, err := svc.Upgrade(ctx, acc.ID)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if res.Milestone == "" {
		t.Fatalf("expected milestone at level 5")
	}

	list, err := repository.NewAchievementRepository(db).ListByAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("list achievements: %v", err)
	}
	if len(list) != 1 || list[0].Description != res.Milestone {
		t.Fatalf("achievements = %+v, want one %q", list, res.Milestone)
	}
}

func TestProgression_DailyLoginOncePerDay(t *testing.T) {
	db := connectDB(t)
	acc := newTestAccount(t, db)
	svc := service.NewProgressionService(db)
	ctx := context.Background()
	now := time.Now()

	res, err := svc.DailyLogin(ctx, acc.ID, now)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if !res.IsNewDay || res.NewBalance != acc.Balance+engine.DailyLoginBonus {
		t.Fatalf("first login: new_day=%v balance=%d", res.IsNewDay, res.NewBalance)
	}

	res2, err := svc.DailyLogin(ctx, acc.ID, now.Add(time.Second))
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if res2.IsNewDay || res2.NewBalance != res.NewBalance {
		t.Fatalf("same-day login granted again: new_day=%v balance=%d", res2.IsNewDay, res2.NewBalance)
	}
}
