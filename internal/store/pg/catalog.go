package pg

import (
	"context"
	"database/sql"
	"errors"

	"tripod.studio/internal/catalog"
)

type orgStore struct {
	db *sql.DB
}

func (s orgStore) Create(ctx context.Context, org *catalog.Organization) error {
	_, err := s.db.ExecContext(ctx, `
		insert into organizations (id, name, slug, created_at)
		values ($1, $2, $3, $4)
	`, org.ID, org.Name, org.Slug, org.CreatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return catalog.ErrConflict
		}
		return err
	}
	return nil
}

func (s orgStore) Find(ctx context.Context, id string) (*catalog.Organization, error) {
	return s.scanOrg(s.db.QueryRowContext(ctx, `
		select id, name, slug, created_at
		from organizations
		where id = $1
	`, id))
}

func (s orgStore) FindBySlug(ctx context.Context, slug string) (*catalog.Organization, error) {
	return s.scanOrg(s.db.QueryRowContext(ctx, `
		select id, name, slug, created_at
		from organizations
		where slug = $1
	`, slug))
}

func (s orgStore) scanOrg(row *sql.Row) (*catalog.Organization, error) {
	var org catalog.Organization
	err := row.Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (s orgStore) List(ctx context.Context) ([]catalog.Organization, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, slug, created_at
		from organizations
		order by name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []catalog.Organization
	for rows.Next() {
		var org catalog.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (s orgStore) AddMember(ctx context.Context, m *catalog.OrganizationMember) error {
	_, err := s.db.ExecContext(ctx, `
		insert into organization_members (id, organization_id, user_id, role, joined_at)
		values ($1, $2, $3, $4, $5)
	`, m.ID, m.OrganizationID, m.UserID, m.Role, m.JoinedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return catalog.ErrConflict
			case pgErrForeignKeyViolation:
				return catalog.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s orgStore) FindMember(ctx context.Context, userID, organizationID string) (*catalog.OrganizationMember, error) {
	var m catalog.OrganizationMember
	err := s.db.QueryRowContext(ctx, `
		select id, organization_id, user_id, role, joined_at
		from organization_members
		where user_id = $1 and organization_id = $2
	`, userID, organizationID).Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s orgStore) ListMembers(ctx context.Context, organizationID string) ([]catalog.OrganizationMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, organization_id, user_id, role, joined_at
		from organization_members
		where organization_id = $1
		order by joined_at
	`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []catalog.OrganizationMember
	for rows.Next() {
		var m catalog.OrganizationMember
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

type languageStore struct {
	db *sql.DB
}

func (s languageStore) Create(ctx context.Context, l *catalog.Language) error {
	_, err := s.db.ExecContext(ctx, `
		insert into languages (id, name, code, created_at)
		values ($1, $2, $3, $4)
	`, l.ID, l.Name, l.Code, l.CreatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return catalog.ErrConflict
		}
		return err
	}
	return nil
}

func (s languageStore) Find(ctx context.Context, id string) (*catalog.Language, error) {
	return s.scanLanguage(s.db.QueryRowContext(ctx, `
		select id, name, code, created_at
		from languages
		where id = $1
	`, id))
}

func (s languageStore) FindByCode(ctx context.Context, code string) (*catalog.Language, error) {
	return s.scanLanguage(s.db.QueryRowContext(ctx, `
		select id, name, code, created_at
		from languages
		where code = $1
	`, code))
}

func (s languageStore) scanLanguage(row *sql.Row) (*catalog.Language, error) {
	var l catalog.Language
	err := row.Scan(&l.ID, &l.Name, &l.Code, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s languageStore) List(ctx context.Context) ([]catalog.Language, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, code, created_at
		from languages
		order by code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var langs []catalog.Language
	for rows.Next() {
		var l catalog.Language
		if err := rows.Scan(&l.ID, &l.Name, &l.Code, &l.CreatedAt); err != nil {
			return nil, err
		}
		langs = append(langs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return langs, nil
}

type projectStore struct {
	db *sql.DB
}

const projectColumns = `id, name, language_id, description, latitude, longitude, location_display_name, created_at, updated_at`

func (s projectStore) Create(ctx context.Context, p *catalog.Project) error {
	_, err := s.db.ExecContext(ctx, `
		insert into projects (id, name, language_id, description, latitude, longitude, location_display_name, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Name, p.LanguageID, nullIfEmpty(p.Description), p.Latitude, p.Longitude, nullIfEmpty(p.LocationDisplayName), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return catalog.ErrNotFound
		}
		return err
	}
	return nil
}

func (s projectStore) Find(ctx context.Context, id string) (*catalog.Project, error) {
	return scanProject(s.db.QueryRowContext(ctx, `
		select `+projectColumns+`
		from projects
		where id = $1
	`, id))
}

func (s projectStore) Update(ctx context.Context, p *catalog.Project) error {
	res, err := s.db.ExecContext(ctx, `
		update projects
		set name = $2, description = $3, latitude = $4, longitude = $5, location_display_name = $6, updated_at = $7
		where id = $1
	`, p.ID, p.Name, nullIfEmpty(p.Description), p.Latitude, p.Longitude, nullIfEmpty(p.LocationDisplayName), p.UpdatedAt)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s projectStore) ListAccessible(ctx context.Context, userID string) ([]catalog.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+projectColumns+`
		from projects
		where id in (
			select project_id from project_user_access where user_id = $1
			union
			select poa.project_id
			from project_organization_access poa
			join organization_members om on om.organization_id = poa.organization_id
			where om.user_id = $1
		)
		order by name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []catalog.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s projectStore) FindUserAccess(ctx context.Context, projectID, userID string) (*catalog.ProjectUserAccess, error) {
	var a catalog.ProjectUserAccess
	err := s.db.QueryRowContext(ctx, `
		select id, project_id, user_id, created_at
		from project_user_access
		where project_id = $1 and user_id = $2
	`, projectID, userID).Scan(&a.ID, &a.ProjectID, &a.UserID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s projectStore) CreateUserAccess(ctx context.Context, a *catalog.ProjectUserAccess) error {
	_, err := s.db.ExecContext(ctx, `
		insert into project_user_access (id, project_id, user_id, created_at)
		values ($1, $2, $3, $4)
	`, a.ID, a.ProjectID, a.UserID, a.CreatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return catalog.ErrConflict
			case pgErrForeignKeyViolation:
				return catalog.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s projectStore) FindOrganizationAccess(ctx context.Context, projectID, organizationID string) (*catalog.ProjectOrganizationAccess, error) {
	var a catalog.ProjectOrganizationAccess
	err := s.db.QueryRowContext(ctx, `
		select id, project_id, organization_id, created_at
		from project_organization_access
		where project_id = $1 and organization_id = $2
	`, projectID, organizationID).Scan(&a.ID, &a.ProjectID, &a.OrganizationID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s projectStore) CreateOrganizationAccess(ctx context.Context, a *catalog.ProjectOrganizationAccess) error {
	_, err := s.db.ExecContext(ctx, `
		insert into project_organization_access (id, project_id, organization_id, created_at)
		values ($1, $2, $3, $4)
	`, a.ID, a.ProjectID, a.OrganizationID, a.CreatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return catalog.ErrConflict
			case pgErrForeignKeyViolation:
				return catalog.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s projectStore) ListOrganizationsWithAccess(ctx context.Context, projectID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		select organization_id
		from project_organization_access
		where project_id = $1
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*catalog.Project, error) {
	var (
		p    catalog.Project
		desc sql.NullString
		loc  sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.LanguageID, &desc, &p.Latitude, &p.Longitude, &loc, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		p.Description = desc.String
	}
	if loc.Valid {
		p.LocationDisplayName = loc.String
	}
	return &p, nil
}

type phaseStore struct {
	db *sql.DB
}

func (s phaseStore) Create(ctx context.Context, p *catalog.Phase) error {
	_, err := s.db.ExecContext(ctx, `
		insert into phases (id, name, description, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Name, nullIfEmpty(p.Description), p.Status, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s phaseStore) Find(ctx context.Context, id string) (*catalog.Phase, error) {
	var (
		p    catalog.Phase
		desc sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select id, name, description, status, created_at, updated_at
		from phases
		where id = $1
	`, id).Scan(&p.ID, &p.Name, &desc, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		p.Description = desc.String
	}
	return &p, nil
}

func (s phaseStore) Update(ctx context.Context, p *catalog.Phase) error {
	res, err := s.db.ExecContext(ctx, `
		update phases
		set name = $2, description = $3, status = $4, updated_at = $5
		where id = $1
	`, p.ID, p.Name, nullIfEmpty(p.Description), p.Status, p.UpdatedAt)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s phaseStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from phases where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s phaseStore) List(ctx context.Context, projectID string) ([]catalog.Phase, error) {
	query := `
		select id, name, description, status, created_at, updated_at
		from phases
		order by name
	`
	args := []any{}
	if projectID != "" {
		query = `
			select p.id, p.name, p.description, p.status, p.created_at, p.updated_at
			from phases p
			join project_phases pp on pp.phase_id = p.id
			where pp.project_id = $1
			order by p.name
		`
		args = append(args, projectID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []catalog.Phase
	for rows.Next() {
		var (
			p    catalog.Phase
			desc sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &desc, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			p.Description = desc.String
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return phases, nil
}

func (s phaseStore) FindLink(ctx context.Context, projectID, phaseID string) (*catalog.ProjectPhase, error) {
	var link catalog.ProjectPhase
	err := s.db.QueryRowContext(ctx, `
		select id, project_id, phase_id
		from project_phases
		where project_id = $1 and phase_id = $2
	`, projectID, phaseID).Scan(&link.ID, &link.ProjectID, &link.PhaseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s phaseStore) CreateLink(ctx context.Context, link *catalog.ProjectPhase) error {
	_, err := s.db.ExecContext(ctx, `
		insert into project_phases (id, project_id, phase_id)
		values ($1, $2, $3)
	`, link.ID, link.ProjectID, link.PhaseID)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return catalog.ErrConflict
			case pgErrForeignKeyViolation:
				return catalog.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s phaseStore) DeleteLink(ctx context.Context, projectID, phaseID string) error {
	res, err := s.db.ExecContext(ctx, `
		delete from project_phases
		where project_id = $1 and phase_id = $2
	`, projectID, phaseID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s phaseStore) ListProjectsForPhase(ctx context.Context, phaseID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		select project_id
		from project_phases
		where phase_id = $1
	`, phaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s phaseStore) FindDependency(ctx context.Context, phaseID, dependsOnID string) (*catalog.PhaseDependency, error) {
	var dep catalog.PhaseDependency
	err := s.db.QueryRowContext(ctx, `
		select id, phase_id, depends_on_id
		from phase_dependencies
		where phase_id = $1 and depends_on_id = $2
	`, phaseID, dependsOnID).Scan(&dep.ID, &dep.PhaseID, &dep.DependsOnID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dep, nil
}

func (s phaseStore) CreateDependency(ctx context.Context, dep *catalog.PhaseDependency) error {
	_, err := s.db.ExecContext(ctx, `
		insert into phase_dependencies (id, phase_id, depends_on_id)
		values ($1, $2, $3)
	`, dep.ID, dep.PhaseID, dep.DependsOnID)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return catalog.ErrConflict
			case pgErrForeignKeyViolation:
				return catalog.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s phaseStore) DeleteDependency(ctx context.Context, phaseID, dependsOnID string) error {
	res, err := s.db.ExecContext(ctx, `
		delete from phase_dependencies
		where phase_id = $1 and depends_on_id = $2
	`, phaseID, dependsOnID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s phaseStore) ListDependencies(ctx context.Context, phaseID string) ([]catalog.PhaseDependency, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, phase_id, depends_on_id
		from phase_dependencies
		where phase_id = $1
		order by depends_on_id
	`, phaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deps []catalog.PhaseDependency
	for rows.Next() {
		var dep catalog.PhaseDependency
		if err := rows.Scan(&dep.ID, &dep.PhaseID, &dep.DependsOnID); err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return deps, nil
}
