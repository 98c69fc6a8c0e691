package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"accounts/internal/config"
	"accounts/internal/database"
	"accounts/internal/repository"
)

// Keeps the revocation ledger bounded: expired rows reject themselves
// cryptographically, and month-old blacklisted rows have no live token
// left that could present them.
const blacklistRetention = 30 * 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	tokens := repository.NewTokenRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	expired, err := tokens.DeleteExpired(ctx, now)
	if err != nil {
		log.Fatalf("cleanup expired tokens failed: %v", err)
	}

	blacklisted, err := tokens.DeleteBlacklistedBefore(ctx, now.Add(-blacklistRetention))
	if err != nil {
		log.Fatalf("cleanup blacklisted tokens failed: %v", err)
	}

	log.Printf("auth cleanup completed: expired=%d blacklisted=%d", expired, blacklisted)
}
