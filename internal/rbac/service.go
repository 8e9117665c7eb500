package rbac

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tripod.studio/internal/auth"
	"tripod.studio/internal/ids"
)

// AdminRoleKey is the per-app role that may manage that app's assignments.
const AdminRoleKey = "admin"

// Service answers role queries and mutates assignments. Every check
// re-queries current state, so a revocation is visible on the next call.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a Service on top of the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasRole reports whether the user holds an unrevoked assignment of the
// role within the app. Unknown apps or roles yield false, not an error.
func (s *Service) HasRole(ctx context.Context, userID, appKey, roleKey string) (bool, error) {
	app, err := s.store.FindAppByKey(ctx, appKey)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	role, err := s.store.FindRole(ctx, app.ID, roleKey)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, err = s.store.FindActiveAssignment(ctx, userID, app.ID, role.ID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AssertCanManageRoles passes for platform admins and for holders of the
// app's admin role. The first admin of an app therefore has to come from
// a platform admin or from seed data.
func (s *Service) AssertCanManageRoles(ctx context.Context, actor *auth.User, appKey string) error {
	if actor.IsPlatformAdmin {
		return nil
	}
	ok, err := s.HasRole(ctx, actor.ID, appKey, AdminRoleKey)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: actor cannot manage roles for this app", ErrRole)
	}
	return nil
}

// AssignRole grants a role to a user. Repeating an active grant returns
// the existing assignment unchanged.
func (s *Service) AssignRole(ctx context.Context, actor *auth.User, targetUserID, appKey, roleKey string) (*Assignment, error) {
	if err := s.AssertCanManageRoles(ctx, actor, appKey); err != nil {
		return nil, err
	}
	app, role, err := s.resolve(ctx, appKey, roleKey)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindActiveAssignment(ctx, targetUserID, app.ID, role.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	grantedBy := actor.ID
	assignment := &Assignment{
		ID:        ids.New(),
		UserID:    targetUserID,
		AppID:     app.ID,
		RoleID:    role.ID,
		GrantedBy: &grantedBy,
		GrantedAt: s.now(),
	}
	if err := s.store.CreateAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// RevokeRole revokes an active assignment. Revoking one that does not
// exist, or was already revoked, is an error.
func (s *Service) RevokeRole(ctx context.Context, actor *auth.User, targetUserID, appKey, roleKey string) (*Assignment, error) {
	if err := s.AssertCanManageRoles(ctx, actor, appKey); err != nil {
		return nil, err
	}
	app, role, err := s.resolve(ctx, appKey, roleKey)
	if err != nil {
		return nil, err
	}

	assignment, err := s.store.FindActiveAssignment(ctx, targetUserID, app.ID, role.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: active assignment not found", ErrRole)
	}
	if err != nil {
		return nil, err
	}

	at := s.now()
	if err := s.store.RevokeAssignment(ctx, assignment.ID, at); err != nil {
		return nil, err
	}
	assignment.RevokedAt = &at
	return assignment, nil
}

// ListRoles returns the user's unrevoked (app, role) pairs, optionally
// scoped to a single app key. Ordering is up to the store.
func (s *Service) ListRoles(ctx context.Context, userID, appKey string) ([]RoleGrant, error) {
	return s.store.ListActiveGrants(ctx, userID, appKey)
}

// ListApps returns every registered app.
func (s *Service) ListApps(ctx context.Context) ([]App, error) {
	return s.store.ListApps(ctx)
}

// ListAppRoles returns the roles defined for the app with the given key.
// Unlike role mutations, a plain catalog read reports an unknown app as
// not found.
func (s *Service) ListAppRoles(ctx context.Context, appKey string) ([]Role, error) {
	app, err := s.store.FindAppByKey(ctx, appKey)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: app not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s.store.ListRolesForApp(ctx, app.ID)
}

func (s *Service) resolve(ctx context.Context, appKey, roleKey string) (*App, *Role, error) {
	app, err := s.store.FindAppByKey(ctx, appKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: app not found", ErrRole)
	}
	if err != nil {
		return nil, nil, err
	}
	role, err := s.store.FindRole(ctx, app.ID, roleKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: role not found", ErrRole)
	}
	if err != nil {
		return nil, nil, err
	}
	return app, role, nil
}
