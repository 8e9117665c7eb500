package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tripod.studio/internal/rbac"
)

func (s *Store) FindAppByKey(ctx context.Context, appKey string) (*rbac.App, error) {
	var app rbac.App
	err := s.db.QueryRowContext(ctx, `
		select id, app_key, name, is_active, created_at
		from apps
		where app_key = $1
	`, appKey).Scan(&app.ID, &app.AppKey, &app.Name, &app.IsActive, &app.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rbac.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *Store) FindRole(ctx context.Context, appID, roleKey string) (*rbac.Role, error) {
	var (
		role rbac.Role
		desc sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select id, app_id, role_key, label, description, is_system, created_at
		from roles
		where app_id = $1 and role_key = $2
	`, appID, roleKey).Scan(&role.ID, &role.AppID, &role.RoleKey, &role.Label, &desc, &role.IsSystem, &role.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rbac.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		role.Description = desc.String
	}
	return &role, nil
}

func (s *Store) FindActiveAssignment(ctx context.Context, userID, appID, roleID string) (*rbac.Assignment, error) {
	var (
		a       rbac.Assignment
		granted sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select id, user_id, app_id, role_id, granted_by, granted_at, revoked_at
		from user_app_roles
		where user_id = $1 and app_id = $2 and role_id = $3 and revoked_at is null
	`, userID, appID, roleID).Scan(&a.ID, &a.UserID, &a.AppID, &a.RoleID, &granted, &a.GrantedAt, &a.RevokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rbac.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if granted.Valid {
		a.GrantedBy = &granted.String
	}
	return &a, nil
}

func (s *Store) CreateAssignment(ctx context.Context, a *rbac.Assignment) error {
	var granted sql.NullString
	if a.GrantedBy != nil {
		granted = sql.NullString{String: *a.GrantedBy, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		insert into user_app_roles (id, user_id, app_id, role_id, granted_by, granted_at)
		values ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.UserID, a.AppID, a.RoleID, granted, a.GrantedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				// The partial unique index on active assignments is the
				// race backstop for concurrent duplicate grants.
				return rbac.ErrConflict
			case pgErrForeignKeyViolation:
				return rbac.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *Store) RevokeAssignment(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update user_app_roles
		set revoked_at = $2
		where id = $1 and revoked_at is null
	`, id, at)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

func (s *Store) ListActiveGrants(ctx context.Context, userID, appKey string) ([]rbac.RoleGrant, error) {
	query := `
		select a.app_key, r.role_key
		from user_app_roles uar
		join apps a on a.id = uar.app_id
		join roles r on r.id = uar.role_id
		where uar.user_id = $1 and uar.revoked_at is null
	`
	args := []any{userID}
	if appKey != "" {
		query += ` and a.app_key = $2`
		args = append(args, appKey)
	}
	query += ` order by a.app_key, r.role_key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []rbac.RoleGrant
	for rows.Next() {
		var g rbac.RoleGrant
		if err := rows.Scan(&g.AppKey, &g.RoleKey); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grants, nil
}

func (s *Store) ListApps(ctx context.Context) ([]rbac.App, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, app_key, name, is_active, created_at
		from apps
		order by app_key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []rbac.App
	for rows.Next() {
		var app rbac.App
		if err := rows.Scan(&app.ID, &app.AppKey, &app.Name, &app.IsActive, &app.CreatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

func (s *Store) ListRolesForApp(ctx context.Context, appID string) ([]rbac.Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, app_id, role_key, label, description, is_system, created_at
		from roles
		where app_id = $1
		order by role_key
	`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []rbac.Role
	for rows.Next() {
		var (
			role rbac.Role
			desc sql.NullString
		)
		if err := rows.Scan(&role.ID, &role.AppID, &role.RoleKey, &role.Label, &desc, &role.IsSystem, &role.CreatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			role.Description = desc.String
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}
