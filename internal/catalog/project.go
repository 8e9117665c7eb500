package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripod.studio/internal/ids"
)

// ProjectService manages projects and resolves project access. Access
// is granted either directly to a user or to an organization the user
// belongs to.
type ProjectService struct {
	store ProjectStore
	orgs  OrganizationStore
	now   func() time.Time
}

// NewProjectService builds a ProjectService. The organization store is
// consulted for membership during access checks.
func NewProjectService(store ProjectStore, orgs OrganizationStore) *ProjectService {
	return &ProjectService{
		store: store,
		orgs:  orgs,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ProjectUpdate carries the optional fields of a project update. Nil
// fields are left untouched.
type ProjectUpdate struct {
	Latitude            *float64
	Longitude           *float64
	LocationDisplayName *string
}

// CreateProject persists a new project.
func (s *ProjectService) CreateProject(ctx context.Context, name, languageID, description string, loc ProjectUpdate) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" || languageID == "" {
		return nil, fmt.Errorf("%w: name and language_id are required", ErrInvalidInput)
	}
	now := s.now()
	project := &Project{
		ID:          ids.New(),
		Name:        name,
		LanguageID:  languageID,
		Description: description,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if loc.LocationDisplayName != nil {
		project.LocationDisplayName = *loc.LocationDisplayName
	}
	if err := s.store.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Project returns the project with the given id.
func (s *ProjectService) Project(ctx context.Context, id string) (*Project, error) {
	project, err := s.store.Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: project not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateLocation patches a project's location fields. Nil fields keep
// their current value.
func (s *ProjectService) UpdateLocation(ctx context.Context, projectID string, update ProjectUpdate) (*Project, error) {
	project, err := s.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if update.Latitude != nil {
		project.Latitude = update.Latitude
	}
	if update.Longitude != nil {
		project.Longitude = update.Longitude
	}
	if update.LocationDisplayName != nil {
		project.LocationDisplayName = *update.LocationDisplayName
	}
	project.UpdatedAt = s.now()
	if err := s.store.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// CanAccess reports whether the user may access the project, via a
// direct grant or via membership in a granted organization.
func (s *ProjectService) CanAccess(ctx context.Context, userID, projectID string) (bool, error) {
	_, err := s.store.FindUserAccess(ctx, projectID, userID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	orgIDs, err := s.store.ListOrganizationsWithAccess(ctx, projectID)
	if err != nil {
		return false, err
	}
	for _, orgID := range orgIDs {
		_, err := s.orgs.FindMember(ctx, userID, orgID)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return false, err
		}
	}
	return false, nil
}

// ListAccessible returns the projects the user can access, deduplicated
// and ordered by name.
func (s *ProjectService) ListAccessible(ctx context.Context, userID string) ([]Project, error) {
	return s.store.ListAccessible(ctx, userID)
}

// GrantUserAccess grants a user direct access to a project. Repeating
// a grant returns the existing row.
func (s *ProjectService) GrantUserAccess(ctx context.Context, projectID, userID string) (*ProjectUserAccess, error) {
	if _, err := s.Project(ctx, projectID); err != nil {
		return nil, err
	}

	existing, err := s.store.FindUserAccess(ctx, projectID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	access := &ProjectUserAccess{
		ID:        ids.New(),
		ProjectID: projectID,
		UserID:    userID,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateUserAccess(ctx, access); err != nil {
		return nil, err
	}
	return access, nil
}

// GrantOrganizationAccess grants an organization access to a project.
// Repeating a grant returns the existing row.
func (s *ProjectService) GrantOrganizationAccess(ctx context.Context, projectID, organizationID string) (*ProjectOrganizationAccess, error) {
	if _, err := s.Project(ctx, projectID); err != nil {
		return nil, err
	}
	if _, err := s.orgs.Find(ctx, organizationID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: organization not found", ErrNotFound)
		}
		return nil, err
	}

	existing, err := s.store.FindOrganizationAccess(ctx, projectID, organizationID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	access := &ProjectOrganizationAccess{
		ID:             ids.New(),
		ProjectID:      projectID,
		OrganizationID: organizationID,
		CreatedAt:      s.now(),
	}
	if err := s.store.CreateOrganizationAccess(ctx, access); err != nil {
		return nil, err
	}
	return access, nil
}
