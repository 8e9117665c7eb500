package catalog

import "context"

// OrganizationStore persists organizations and their memberships.
// Lookups return ErrNotFound when nothing matches.
type OrganizationStore interface {
	Create(ctx context.Context, org *Organization) error
	Find(ctx context.Context, id string) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)

	AddMember(ctx context.Context, m *OrganizationMember) error
	FindMember(ctx context.Context, userID, organizationID string) (*OrganizationMember, error)
	ListMembers(ctx context.Context, organizationID string) ([]OrganizationMember, error)
}

// LanguageStore persists the language catalog.
type LanguageStore interface {
	Create(ctx context.Context, l *Language) error
	Find(ctx context.Context, id string) (*Language, error)
	FindByCode(ctx context.Context, code string) (*Language, error)
	// List returns languages ordered by code.
	List(ctx context.Context) ([]Language, error)
}

// ProjectStore persists projects and their access grants.
type ProjectStore interface {
	Create(ctx context.Context, p *Project) error
	Find(ctx context.Context, id string) (*Project, error)
	Update(ctx context.Context, p *Project) error

	// ListAccessible returns the union of projects directly granted to
	// the user and projects granted to any organization the user is a
	// member of, deduplicated and ordered by name.
	ListAccessible(ctx context.Context, userID string) ([]Project, error)

	FindUserAccess(ctx context.Context, projectID, userID string) (*ProjectUserAccess, error)
	CreateUserAccess(ctx context.Context, a *ProjectUserAccess) error

	FindOrganizationAccess(ctx context.Context, projectID, organizationID string) (*ProjectOrganizationAccess, error)
	CreateOrganizationAccess(ctx context.Context, a *ProjectOrganizationAccess) error
	// ListOrganizationsWithAccess returns the ids of organizations
	// granted access to the project.
	ListOrganizationsWithAccess(ctx context.Context, projectID string) ([]string, error)
}

// PhaseStore persists phases, project attachments, and dependencies.
type PhaseStore interface {
	Create(ctx context.Context, p *Phase) error
	Find(ctx context.Context, id string) (*Phase, error)
	Update(ctx context.Context, p *Phase) error
	Delete(ctx context.Context, id string) error
	// List returns phases ordered by name, scoped to one project when
	// projectID is non-empty.
	List(ctx context.Context, projectID string) ([]Phase, error)

	FindLink(ctx context.Context, projectID, phaseID string) (*ProjectPhase, error)
	CreateLink(ctx context.Context, link *ProjectPhase) error
	DeleteLink(ctx context.Context, projectID, phaseID string) error
	ListProjectsForPhase(ctx context.Context, phaseID string) ([]string, error)

	FindDependency(ctx context.Context, phaseID, dependsOnID string) (*PhaseDependency, error)
	CreateDependency(ctx context.Context, dep *PhaseDependency) error
	DeleteDependency(ctx context.Context, phaseID, dependsOnID string) error
	// ListDependencies returns dependencies ordered by depends_on_id.
	ListDependencies(ctx context.Context, phaseID string) ([]PhaseDependency, error)
}
