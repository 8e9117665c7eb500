package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripod.studio/internal/ids"
)

const (
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Service implements the credential lifecycle: signup, login, token pair
// issuance, access-token resolution, refresh and logout.
type Service struct {
	store Store
	codec *TokenCodec
	now   func() time.Time

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Option configures Service behavior.
type Option func(*Service)

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
			s.codec.now = fn
		}
	}
}

// NewService constructs the credential service.
func NewService(store Store, codec *TokenCodec, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		codec:      codec,
		now:        time.Now,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Signup creates a local account. Email is case-normalized; duplicates
// (case-insensitive) fail with ErrConflict. Tokens are issued separately.
func (s *Service) Signup(ctx context.Context, email, password, displayName string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	if _, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already exists", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		// The unique index on email is the real race backstop.
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("%w: email already exists", ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates credentials and returns the matching active user.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrAuthentication)
		}
		return nil, err
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: inactive user", ErrAuthorization)
	}
	return user, nil
}

// IssueTokenPair mints an access/refresh pair and persists the refresh
// token digest. The pair is only returned when persistence succeeded.
func (s *Service) IssueTokenPair(ctx context.Context, user *User) (TokenPair, error) {
	access, err := s.codec.Create(user.ID, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.Create(user.ID, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	now := s.now().UTC()
	record := &RefreshToken{
		ID:        ids.New(),
		UserID:    user.ID,
		TokenHash: hashToken(refresh),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.store.RefreshTokens().Create(ctx, record); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// CurrentUser resolves the user behind an access token. Every
// authenticated request passes through here.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != string(TokenTypeAccess) {
		return nil, fmt.Errorf("%w: invalid token type", ErrAuthentication)
	}
	user, err := s.store.Users().Find(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrAuthentication)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: inactive user", ErrAuthorization)
	}
	return user, nil
}

// Refresh validates a refresh token and returns a new access token. The
// refresh token itself is not rotated; it stays valid until expiry or
// logout.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (string, error) {
	claims, err := s.codec.Decode(rawRefresh)
	if err != nil {
		return "", err
	}
	if claims.TokenType != string(TokenTypeRefresh) {
		return "", fmt.Errorf("%w: invalid token type", ErrAuthentication)
	}

	record, err := s.store.RefreshTokens().FindActive(ctx, hashToken(rawRefresh))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%w: refresh token revoked or missing", ErrAuthentication)
		}
		return "", err
	}
	if record.ExpiresAt.Before(s.now().UTC()) {
		return "", fmt.Errorf("%w: refresh token expired", ErrAuthentication)
	}

	user, err := s.store.Users().Find(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%w: inactive or missing user", ErrAuthorization)
		}
		return "", err
	}
	if !user.IsActive {
		return "", fmt.Errorf("%w: inactive or missing user", ErrAuthorization)
	}

	return s.codec.Create(user.ID, TokenTypeAccess, s.accessTTL)
}

// Logout revokes the refresh token. Unknown or already revoked tokens are
// a no-op, so repeated logout is safe.
func (s *Service) Logout(ctx context.Context, rawRefresh string) error {
	record, err := s.store.RefreshTokens().FindActive(ctx, hashToken(rawRefresh))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return s.store.RefreshTokens().Revoke(ctx, record.ID, s.now().UTC())
}

// hashToken is the persisted form of a raw refresh token: lowercase hex
// SHA-256, 64 characters.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
