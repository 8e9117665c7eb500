package rbac

import "time"

// App is a tenant namespace that owns its own roles and permissions.
// Clients identify apps by AppKey, never by ID.
type App struct {
	ID        string    `json:"id"`
	AppKey    string    `json:"app_key"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Role is a named capability bucket scoped to one App. (AppID, RoleKey)
// is unique. System roles come from seed data and are not user-deletable.
type Role struct {
	ID          string    `json:"id"`
	AppID       string    `json:"app_id"`
	RoleKey     string    `json:"role_key"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
}

// Permission belongs to one App with a key unique within it. Permissions
// are recorded but no authorization decision consumes them yet.
type Permission struct {
	ID            string    `json:"id"`
	AppID         string    `json:"app_id"`
	PermissionKey string    `json:"permission_key"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// RolePermission attaches a Permission to a Role. (RoleID, PermissionID)
// is unique. Like Permission, the link is modeled but not yet consumed.
type RolePermission struct {
	ID           string `json:"id"`
	RoleID       string `json:"role_id"`
	PermissionID string `json:"permission_id"`
}

// Assignment links a User to a Role within an App. A nil RevokedAt means
// the assignment is active. Historical rows are kept after revocation.
type Assignment struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	AppID     string     `json:"app_id"`
	RoleID    string     `json:"role_id"`
	GrantedBy *string    `json:"granted_by,omitempty"`
	GrantedAt time.Time  `json:"granted_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// RoleGrant is the (app, role) pair shape returned by role listings.
type RoleGrant struct {
	AppKey  string `json:"app_key"`
	RoleKey string `json:"role_key"`
}
