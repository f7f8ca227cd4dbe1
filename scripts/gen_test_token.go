package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/studyhall/server/internal/auth"
	"codeberg.org/studyhall/server/internal/config"
	"codeberg.org/studyhall/server/internal/quota"
	"codeberg.org/studyhall/server/studyhall/users"
)

const (
	testEmail    = "test@studyhall.dev"
	testPassword = "test-password-123"
)

// plan changes normally happen in billing, this is for local testing only
const setPlanQuery = `UPDATE users SET plan = $2, updated_at = NOW() WHERE id = $1`

func main() {
	plan := flag.String("plan", string(quota.TierFree), "plan for the test user (free or paid)")
	flag.Parse()

	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	repo := users.NewRepository(dbPool)

	// create or find test user
	user, err := repo.FindByEmail(ctx, testEmail)
	if errors.Is(err, users.ErrUserNotFound) {
		hash, hashErr := auth.HashPassword(testPassword)
		if hashErr != nil {
			log.Fatalf("Failed to hash password: %v", hashErr)
		}

		user, err = repo.Create(ctx, testEmail, hash, "Test User")
		if err != nil {
			log.Fatalf("Failed to create test user: %v", err)
		}
		fmt.Printf("✅ Created test user: %s (ID: %s)\n", testEmail, user.ID)
	} else if err != nil {
		log.Fatalf("Failed to look up test user: %v", err)
	} else {
		fmt.Printf("✅ Using existing test user (ID: %s)\n", user.ID)
	}

	tier := quota.ParseTier(*plan)
	if _, err := dbPool.Exec(ctx, setPlanQuery, user.ID, string(tier)); err != nil {
		log.Fatalf("Failed to set plan: %v", err)
	}
	fmt.Printf("📋 Plan: %s\n", tier)

	issuer, err := auth.NewIssuer(cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	// generate JWT token
	token, err := issuer.GenerateJWT(user.ID, user.Email)
	if err != nil {
		log.Fatalf("Failed to generate JWT: %v", err)
	}

	fmt.Printf("\n🔑 Test JWT Token:\n%s\n\n", token)
	fmt.Printf("Export this token for testing:\nexport TEST_TOKEN=\"%s\"\n", token)
}
