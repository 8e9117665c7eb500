package catalog

import (
	"context"
	"sort"
)

// memCatalog implements all catalog store interfaces in memory for
// service tests.
type memCatalog struct {
	orgs      []*Organization
	members   []*OrganizationMember
	languages []*Language
	projects  []*Project
	userAcc   []*ProjectUserAccess
	orgAcc    []*ProjectOrganizationAccess
	phases    []*Phase
	links     []*ProjectPhase
	deps      []*PhaseDependency
}

func (m *memCatalog) Find(_ context.Context, id string) (*Organization, error) {
	for _, o := range m.orgs {
		if o.ID == id {
			copied := *o
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memCatalog) FindBySlug(_ context.Context, slug string) (*Organization, error) {
	for _, o := range m.orgs {
		if o.Slug == slug {
			copied := *o
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memCatalog) List(_ context.Context) ([]Organization, error) {
	out := make([]Organization, 0, len(m.orgs))
	for _, o := range m.orgs {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memCatalog) AddMember(_ context.Context, mem *OrganizationMember) error {
	for _, existing := range m.members {
		if existing.OrganizationID == mem.OrganizationID && existing.UserID == mem.UserID {
			return ErrConflict
		}
	}
	copied := *mem
	m.members = append(m.members, &copied)
	return nil
}

func (m *memCatalog) FindMember(_ context.Context, userID, organizationID string) (*OrganizationMember, error) {
	for _, mem := range m.members {
		if mem.UserID == userID && mem.OrganizationID == organizationID {
			copied := *mem
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memCatalog) ListMembers(_ context.Context, organizationID string) ([]OrganizationMember, error) {
	out := []OrganizationMember{}
	for _, mem := range m.members {
		if mem.OrganizationID == organizationID {
			out = append(out, *mem)
		}
	}
	return out, nil
}

type memOrgStore struct{ *memCatalog }

func (m memOrgStore) Create(_ context.Context, org *Organization) error {
	for _, existing := range m.orgs {
		if existing.Slug == org.Slug {
			return ErrConflict
		}
	}
	copied := *org
	m.orgs = append(m.orgs, &copied)
	return nil
}

type memLangStore struct{ *memCatalog }

func (m memLangStore) Create(_ context.Context, l *Language) error {
	for _, existing := range m.languages {
		if existing.Code == l.Code {
			return ErrConflict
		}
	}
	copied := *l
	m.languages = append(m.languages, &copied)
	return nil
}

func (m memLangStore) Find(_ context.Context, id string) (*Language, error) {
	for _, l := range m.languages {
		if l.ID == id {
			copied := *l
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m memLangStore) FindByCode(_ context.Context, code string) (*Language, error) {
	for _, l := range m.languages {
		if l.Code == code {
			copied := *l
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m memLangStore) List(_ context.Context) ([]Language, error) {
	out := make([]Language, 0, len(m.languages))
	for _, l := range m.languages {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type memProjectStore struct{ *memCatalog }

func (m memProjectStore) Create(_ context.Context, p *Project) error {
	copied := *p
	m.projects = append(m.projects, &copied)
	return nil
}

func (m memProjectStore) Find(_ context.Context, id string) (*Project, error) {
	for _, p := range m.projects {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m memProjectStore) Update(_ context.Context, p *Project) error {
	for i, existing := range m.projects {
		if existing.ID == p.ID {
			copied := *p
			m.projects[i] = &copied
			return nil
		}
	}
	return ErrNotFound
}

func (m memProjectStore) ListAccessible(_ context.Context, userID string) ([]Project, error) {
	seen := map[string]bool{}
	var out []Project
	for _, acc := range m.userAcc {
		if acc.UserID != userID {
			continue
		}
		for _, p := range m.projects {
			if p.ID == acc.ProjectID && !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, *p)
			}
		}
	}
	for _, mem := range m.members {
		if mem.UserID != userID {
			continue
		}
		for _, acc := range m.orgAcc {
			if acc.OrganizationID != mem.OrganizationID {
				continue
			}
			for _, p := range m.projects {
				if p.ID == acc.ProjectID && !seen[p.ID] {
					seen[p.ID] = true
					out = append(out, *p)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memProjectStore) FindUserAccess(_ context.Context, projectID, userID string) (*ProjectUserAccess, error) {
	for _, acc := range m.userAcc {
		if acc.ProjectID == projectID && acc.UserID == userID {
			copied := *acc
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m memProjectStore) CreateUserAccess(_ context.Context, a *ProjectUserAccess) error {
	copied := *a
	m.userAcc = append(m.userAcc, &copied)
	return nil
}

func (m memProjectStore) FindOrganizationAccess(_ context.Context, projectID, organizationID string) (*ProjectOrganizationAccess, error) {
	for _, acc := range m.orgAcc {
		if acc.ProjectID == projectID && acc.OrganizationID == organizationID {
			copied := *acc
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m memProjectStore) CreateOrganizationAccess(_ context.Context, a *ProjectOrganizationAccess) error {
	copied := *a
	m.orgAcc = append(m.orgAcc, &copied)
	return nil
}

func (m memProjectStore) ListOrganizationsWithAccess(_ context.Context, projectID string) ([]string, error) {
	var out []string
	for _, acc := range m.orgAcc {
		if acc.ProjectID == projectID {
			out = append(out, acc.OrganizationID)
		}
	}
	return out, nil
}

type memPhaseStore struct{ *memCatalog }

func (m memPhaseStore) Create(_ context.Context, p *Phase) error {
	copied := *p
	m.phases = append(m.phases, &copied)
	return nil
}

func (m memPhaseStore) Find(_ context.Context, id string) (*Phase, error) {
	for _, p := range m.phases {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m memPhaseStore) Update(_ context.Context, p *Phase) error {
	for i, existing := range m.phases {
		if existing.ID == p.ID {
			copied := *p
			m.phases[i] = &copied
			return nil
		}
	}
	return ErrNotFound
}

func (m memPhaseStore) Delete(_ context.Context, id string) error {
	for i, p := range m.phases {
		if p.ID == id {
			m.phases = append(m.phases[:i], m.phases[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m memPhaseStore) List(_ context.Context, projectID string) ([]Phase, error) {
	var out []Phase
	for _, p := range m.phases {
		if projectID != "" {
			attached := false
			for _, link := range m.links {
				if link.ProjectID == projectID && link.PhaseID == p.ID {
					attached = true
				}
			}
			if !attached {
				continue
			}
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memPhaseStore) FindLink(_ context.Context, projectID, phaseID string) (*ProjectPhase, error) {
	for _, link := range m.links {
		if link.ProjectID == projectID && link.PhaseID == phaseID {
			copied := *link
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m memPhaseStore) CreateLink(_ context.Context, link *ProjectPhase) error {
	copied := *link
	m.links = append(m.links, &copied)
	return nil
}

func (m memPhaseStore) DeleteLink(_ context.Context, projectID, phaseID string) error {
	for i, link := range m.links {
		if link.ProjectID == projectID && link.PhaseID == phaseID {
			m.links = append(m.links[:i], m.links[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m memPhaseStore) ListProjectsForPhase(_ context.Context, phaseID string) ([]string, error) {
	var out []string
	for _, link := range m.links {
		if link.PhaseID == phaseID {
			out = append(out, link.ProjectID)
		}
	}
	return out, nil
}

func (m memPhaseStore) FindDependency(_ context.Context, phaseID, dependsOnID string) (*PhaseDependency, error) {
	for _, dep := range m.deps {
		if dep.PhaseID == phaseID && dep.DependsOnID == dependsOnID {
			copied := *dep
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m memPhaseStore) CreateDependency(_ context.Context, dep *PhaseDependency) error {
	copied := *dep
	m.deps = append(m.deps, &copied)
	return nil
}

func (m memPhaseStore) DeleteDependency(_ context.Context, phaseID, dependsOnID string) error {
	for i, dep := range m.deps {
		if dep.PhaseID == phaseID && dep.DependsOnID == dependsOnID {
			m.deps = append(m.deps[:i], m.deps[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m memPhaseStore) ListDependencies(_ context.Context, phaseID string) ([]PhaseDependency, error) {
	var out []PhaseDependency
	for _, dep := range m.deps {
		if dep.PhaseID == phaseID {
			out = append(out, *dep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DependsOnID < out[j].DependsOnID })
	return out, nil
}
