package rbac

import "errors"

// Package-level sentinels. Callers dispatch with errors.Is and map them to
// transport responses at the edge.
var (
	// ErrRole covers role-management failures: an actor without management
	// rights, or a missing app/role/assignment during a role mutation.
	ErrRole = errors.New("role error")

	// ErrNotFound is returned by stores when a lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrConflict surfaces a uniqueness violation, e.g. two concurrent
	// assignments of the same role racing past the existence check.
	ErrConflict = errors.New("conflict")
)
