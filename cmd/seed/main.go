// Command seed bootstraps the first platform administrator account.
// It is idempotent: an existing account with the given email is
// promoted instead of duplicated.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"tripod.studio/internal/auth"
	"tripod.studio/internal/ids"
	"tripod.studio/internal/store/pg"
)

func main() {
	log.SetFlags(0)

	email := strings.ToLower(strings.TrimSpace(os.Getenv("TRIPOD_ADMIN_EMAIL")))
	password := os.Getenv("TRIPOD_ADMIN_PASSWORD")
	dsn := os.Getenv("TRIPOD_DATABASE_URL")

	if email == "" || password == "" {
		log.Fatal("TRIPOD_ADMIN_EMAIL and TRIPOD_ADMIN_PASSWORD are required")
	}
	if dsn == "" {
		log.Fatal("missing database DSN: set TRIPOD_DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	existing, err := store.Users().FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsPlatformAdmin {
			log.Printf("platform admin %s already exists", email)
			return
		}
		if _, err := store.DB().ExecContext(ctx,
			`update users set is_platform_admin = true, updated_at = $2 where id = $1`,
			existing.ID, time.Now().UTC()); err != nil {
			log.Fatalf("promote user: %v", err)
		}
		log.Printf("promoted %s to platform admin", email)
	case errors.Is(err, auth.ErrNotFound):
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		now := time.Now().UTC()
		user := &auth.User{
			ID:              ids.New(),
			Email:           email,
			PasswordHash:    hash,
			DisplayName:     "Platform Admin",
			IsActive:        true,
			IsPlatformAdmin: true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := store.Users().Create(ctx, user); err != nil {
			log.Fatalf("create user: %v", err)
		}
		log.Printf("created platform admin %s", email)
	default:
		log.Fatalf("lookup user: %v", err)
	}
}
