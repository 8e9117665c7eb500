package auth

import (
	"context"
	"time"
)

// Store describes persistence required by the credential service.
type Store interface {
	Users() UserStore
	RefreshTokens() RefreshTokenStore
}

// UserStore manages user accounts. Lookups return ErrNotFound when no row
// matches.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// RefreshTokenStore manages refresh token records.
type RefreshTokenStore interface {
	Create(ctx context.Context, tok *RefreshToken) error
	// FindActive returns the unrevoked record matching the digest, or
	// ErrNotFound when the digest is unknown or already revoked.
	FindActive(ctx context.Context, tokenHash string) (*RefreshToken, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}
