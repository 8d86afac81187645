package main

import (
	"context"
	"log"
	"os"

	"trail_miniapp/internal/db"
	"trail_miniapp/internal/domain"
	"trail_miniapp/internal/engine"
	"trail_miniapp/internal/repository"
	"trail_miniapp/internal/service"
)

func main() {
	// expects DATABASE_URL env var
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewAccountRepository(pool)
	ctx := context.Background()

	acc := &domain.Account{
		TgID:      1234567890,
		Username:  "testuser",
		FirstName: "Tester",
		Status:    engine.DefaultTier,
	}

	if err := repo.Upsert(ctx, acc); err != nil {
		log.Fatalf("upsert account failed: %v", err)
	}
	log.Printf("account id=%d balance=%d mining_level=%d status=%s\n", acc.ID, acc.Balance, acc.MiningLevel, acc.Status)

	// verify read
	got, err := repo.GetByTgID(ctx, acc.TgID)
	if err != nil {
		log.Fatalf("get by tg id failed: %v", err)
	}
	log.Printf("fetched account id=%d username=%s created_at=%v\n", got.ID, got.Username, got.CreatedAt)

	// initialize JWT and print token
	service.InitJWT()
	token, err := service.GenerateJWT(got.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
