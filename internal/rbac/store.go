package rbac

import (
	"context"
	"time"
)

// Store is the persistence surface the authorization service depends on.
// Lookup methods return ErrNotFound when nothing matches.
type Store interface {
	// FindAppByKey resolves an app by its client-facing key.
	FindAppByKey(ctx context.Context, appKey string) (*App, error)

	// FindRole resolves a role by key within one app.
	FindRole(ctx context.Context, appID, roleKey string) (*Role, error)

	// FindActiveAssignment returns the unrevoked assignment for the
	// (user, app, role) tuple, if one exists.
	FindActiveAssignment(ctx context.Context, userID, appID, roleID string) (*Assignment, error)

	// CreateAssignment persists a new assignment row.
	CreateAssignment(ctx context.Context, a *Assignment) error

	// RevokeAssignment marks the assignment revoked at the given time.
	RevokeAssignment(ctx context.Context, id string, at time.Time) error

	// ListActiveGrants returns the unrevoked (app_key, role_key) pairs
	// for a user. An empty appKey means all apps.
	ListActiveGrants(ctx context.Context, userID, appKey string) ([]RoleGrant, error)

	// ListApps returns all registered apps.
	ListApps(ctx context.Context) ([]App, error)

	// ListRolesForApp returns all roles defined for one app.
	ListRolesForApp(ctx context.Context, appID string) ([]Role, error)
}
