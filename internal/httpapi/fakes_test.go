package httpapi

import (
	"context"
	"sort"
	"strings"
	"time"

	"tripod.studio/internal/auth"
	"tripod.studio/internal/catalog"
	"tripod.studio/internal/rbac"
)

// fakeStore is a single in-memory backing store shared by all service
// fakes in this package's tests.
type fakeStore struct {
	users       map[string]*auth.User
	tokens      map[string]*auth.RefreshToken
	apps        []*rbac.App
	roles       []*rbac.Role
	assignments []*rbac.Assignment
	orgs        []*catalog.Organization
	members     []*catalog.OrganizationMember
	languages   []*catalog.Language
	projects    []*catalog.Project
	userAccess  []*catalog.ProjectUserAccess
	orgAccess   []*catalog.ProjectOrganizationAccess
	phases      []*catalog.Phase
	links       []*catalog.ProjectPhase
	deps        []*catalog.PhaseDependency
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]*auth.User),
		tokens: make(map[string]*auth.RefreshToken),
	}
}

// auth.Store

type fakeUserStore fakeStore
type fakeTokenStore fakeStore

func (f *fakeStore) Users() auth.UserStore                 { return (*fakeUserStore)(f) }
func (f *fakeStore) RefreshTokens() auth.RefreshTokenStore { return (*fakeTokenStore)(f) }

func (f *fakeUserStore) Create(_ context.Context, u *auth.User) error {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return auth.ErrConflict
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) Find(_ context.Context, id string) (*auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (f *fakeTokenStore) Create(_ context.Context, tok *auth.RefreshToken) error {
	cp := *tok
	f.tokens[tok.ID] = &cp
	return nil
}

func (f *fakeTokenStore) FindActive(_ context.Context, tokenHash string) (*auth.RefreshToken, error) {
	for _, tok := range f.tokens {
		if tok.TokenHash == tokenHash && tok.RevokedAt == nil {
			cp := *tok
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (f *fakeTokenStore) Revoke(_ context.Context, id string, at time.Time) error {
	tok, ok := f.tokens[id]
	if !ok || tok.RevokedAt != nil {
		return auth.ErrNotFound
	}
	tok.RevokedAt = &at
	return nil
}

// rbac.Store

func (f *fakeStore) FindAppByKey(_ context.Context, appKey string) (*rbac.App, error) {
	for _, app := range f.apps {
		if app.AppKey == appKey {
			cp := *app
			return &cp, nil
		}
	}
	return nil, rbac.ErrNotFound
}

func (f *fakeStore) FindRole(_ context.Context, appID, roleKey string) (*rbac.Role, error) {
	for _, role := range f.roles {
		if role.AppID == appID && role.RoleKey == roleKey {
			cp := *role
			return &cp, nil
		}
	}
	return nil, rbac.ErrNotFound
}

func (f *fakeStore) FindActiveAssignment(_ context.Context, userID, appID, roleID string) (*rbac.Assignment, error) {
	for _, a := range f.assignments {
		if a.UserID == userID && a.AppID == appID && a.RoleID == roleID && a.RevokedAt == nil {
			cp := *a
			return &cp, nil
		}
	}
	return nil, rbac.ErrNotFound
}

func (f *fakeStore) CreateAssignment(_ context.Context, a *rbac.Assignment) error {
	cp := *a
	f.assignments = append(f.assignments, &cp)
	return nil
}

func (f *fakeStore) RevokeAssignment(_ context.Context, id string, at time.Time) error {
	for _, a := range f.assignments {
		if a.ID == id && a.RevokedAt == nil {
			a.RevokedAt = &at
			return nil
		}
	}
	return rbac.ErrNotFound
}

func (f *fakeStore) ListActiveGrants(_ context.Context, userID, appKey string) ([]rbac.RoleGrant, error) {
	var grants []rbac.RoleGrant
	for _, a := range f.assignments {
		if a.UserID != userID || a.RevokedAt != nil {
			continue
		}
		app := f.appByID(a.AppID)
		role := f.roleByID(a.RoleID)
		if app == nil || role == nil {
			continue
		}
		if appKey != "" && app.AppKey != appKey {
			continue
		}
		grants = append(grants, rbac.RoleGrant{AppKey: app.AppKey, RoleKey: role.RoleKey})
	}
	sort.Slice(grants, func(i, j int) bool {
		if grants[i].AppKey != grants[j].AppKey {
			return grants[i].AppKey < grants[j].AppKey
		}
		return grants[i].RoleKey < grants[j].RoleKey
	})
	return grants, nil
}

func (f *fakeStore) ListApps(_ context.Context) ([]rbac.App, error) {
	out := make([]rbac.App, 0, len(f.apps))
	for _, app := range f.apps {
		out = append(out, *app)
	}
	return out, nil
}

func (f *fakeStore) ListRolesForApp(_ context.Context, appID string) ([]rbac.Role, error) {
	var out []rbac.Role
	for _, role := range f.roles {
		if role.AppID == appID {
			out = append(out, *role)
		}
	}
	return out, nil
}

func (f *fakeStore) appByID(id string) *rbac.App {
	for _, app := range f.apps {
		if app.ID == id {
			return app
		}
	}
	return nil
}

func (f *fakeStore) roleByID(id string) *rbac.Role {
	for _, role := range f.roles {
		if role.ID == id {
			return role
		}
	}
	return nil
}

// catalog stores. Method names collide across interfaces, so each one
// gets a thin wrapper around the shared fakeStore.

type fakeOrgStore struct{ *fakeStore }
type fakeLangStore struct{ *fakeStore }
type fakeProjectStore struct{ *fakeStore }
type fakePhaseStore struct{ *fakeStore }

func (f fakeOrgStore) Create(_ context.Context, org *catalog.Organization) error {
	for _, o := range f.orgs {
		if o.Slug == org.Slug {
			return catalog.ErrConflict
		}
	}
	cp := *org
	f.fakeStore.orgs = append(f.fakeStore.orgs, &cp)
	return nil
}

func (f fakeOrgStore) Find(_ context.Context, id string) (*catalog.Organization, error) {
	for _, o := range f.orgs {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f fakeOrgStore) FindBySlug(_ context.Context, slug string) (*catalog.Organization, error) {
	for _, o := range f.orgs {
		if o.Slug == slug {
			cp := *o
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f fakeOrgStore) List(_ context.Context) ([]catalog.Organization, error) {
	out := make([]catalog.Organization, 0, len(f.orgs))
	for _, o := range f.orgs {
		out = append(out, *o)
	}
	return out, nil
}

func (f fakeOrgStore) AddMember(_ context.Context, m *catalog.OrganizationMember) error {
	for _, existing := range f.members {
		if existing.UserID == m.UserID && existing.OrganizationID == m.OrganizationID {
			return catalog.ErrConflict
		}
	}
	cp := *m
	f.fakeStore.members = append(f.fakeStore.members, &cp)
	return nil
}

func (f fakeOrgStore) FindMember(_ context.Context, userID, organizationID string) (*catalog.OrganizationMember, error) {
	for _, m := range f.members {
		if m.UserID == userID && m.OrganizationID == organizationID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f fakeOrgStore) ListMembers(_ context.Context, organizationID string) ([]catalog.OrganizationMember, error) {
	var out []catalog.OrganizationMember
	for _, m := range f.members {
		if m.OrganizationID == organizationID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f fakeLangStore) Create(_ context.Context, l *catalog.Language) error {
	for _, existing := range f.languages {
		if existing.Code == l.Code {
			return catalog.ErrConflict
		}
	}
	cp := *l
	f.fakeStore.languages = append(f.fakeStore.languages, &cp)
	return nil
}

func (f fakeLangStore) Find(_ context.Context, id string) (*catalog.Language, error) {
	for _, l := range f.languages {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f fakeLangStore) FindByCode(_ context.Context, code string) (*catalog.Language, error) {
	for _, l := range f.languages {
		if l.Code == code {
			cp := *l
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f fakeLangStore) List(_ context.Context) ([]catalog.Language, error) {
	out := make([]catalog.Language, 0, len(f.languages))
	for _, l := range f.languages {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f fakeProjectStore) Create(_ context.Context, p *catalog.Project) error {
	cp := *p
	f.fakeStore.projects = append(f.fakeStore.projects, &cp)
	return nil
}

func (f fakeProjectStore) Find(_ context.Context, id string) (*catalog.Project, error) {
	for _, p := range f.projects {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f fakeProjectStore) Update(_ context.Context, p *catalog.Project) error {
	for i, existing := range f.projects {
		if existing.ID == p.ID {
			cp := *p
			f.projects[i] = &cp
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (f fakeProjectStore) ListAccessible(_ context.Context, userID string) ([]catalog.Project, error) {
	ids := make(map[string]bool)
	for _, a := range f.userAccess {
		if a.UserID == userID {
			ids[a.ProjectID] = true
		}
	}
	for _, a := range f.orgAccess {
		for _, m := range f.members {
			if m.UserID == userID && m.OrganizationID == a.OrganizationID {
				ids[a.ProjectID] = true
			}
		}
	}
	var out []catalog.Project
	for _, p := range f.projects {
		if ids[p.ID] {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeProjectStore) FindUserAccess(_ context.Context, projectID, userID string) (*catalog.ProjectUserAccess, error) {
	for _, a := range f.userAccess {
		if a.ProjectID == projectID && a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f fakeProjectStore) CreateUserAccess(_ context.Context, a *catalog.ProjectUserAccess) error {
	cp := *a
	f.fakeStore.userAccess = append(f.fakeStore.userAccess, &cp)
	return nil
}

func (f fakeProjectStore) FindOrganizationAccess(_ context.Context, projectID, organizationID string) (*catalog.ProjectOrganizationAccess, error) {
	for _, a := range f.orgAccess {
		if a.ProjectID == projectID && a.OrganizationID == organizationID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f fakeProjectStore) CreateOrganizationAccess(_ context.Context, a *catalog.ProjectOrganizationAccess) error {
	cp := *a
	f.fakeStore.orgAccess = append(f.fakeStore.orgAccess, &cp)
	return nil
}

func (f fakeProjectStore) ListOrganizationsWithAccess(_ context.Context, projectID string) ([]string, error) {
	var out []string
	for _, a := range f.orgAccess {
		if a.ProjectID == projectID {
			out = append(out, a.OrganizationID)
		}
	}
	return out, nil
}

func (f fakePhaseStore) Create(_ context.Context, p *catalog.Phase) error {
	cp := *p
	f.fakeStore.phases = append(f.fakeStore.phases, &cp)
	return nil
}

func (f fakePhaseStore) Find(_ context.Context, id string) (*catalog.Phase, error) {
	for _, p := range f.phases {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f fakePhaseStore) Update(_ context.Context, p *catalog.Phase) error {
	for i, existing := range f.phases {
		if existing.ID == p.ID {
			cp := *p
			f.phases[i] = &cp
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (f fakePhaseStore) Delete(_ context.Context, id string) error {
	for i, p := range f.phases {
		if p.ID == id {
			f.fakeStore.phases = append(f.phases[:i], f.phases[i+1:]...)
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (f fakePhaseStore) List(_ context.Context, projectID string) ([]catalog.Phase, error) {
	var out []catalog.Phase
	for _, p := range f.phases {
		if projectID != "" && !f.linked(projectID, p.ID) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakePhaseStore) linked(projectID, phaseID string) bool {
	for _, l := range f.links {
		if l.ProjectID == projectID && l.PhaseID == phaseID {
			return true
		}
	}
	return false
}

func (f fakePhaseStore) FindLink(_ context.Context, projectID, phaseID string) (*catalog.ProjectPhase, error) {
	for _, l := range f.links {
		if l.ProjectID == projectID && l.PhaseID == phaseID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f fakePhaseStore) CreateLink(_ context.Context, link *catalog.ProjectPhase) error {
	cp := *link
	f.fakeStore.links = append(f.fakeStore.links, &cp)
	return nil
}

func (f fakePhaseStore) DeleteLink(_ context.Context, projectID, phaseID string) error {
	for i, l := range f.links {
		if l.ProjectID == projectID && l.PhaseID == phaseID {
			f.fakeStore.links = append(f.links[:i], f.links[i+1:]...)
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (f fakePhaseStore) ListProjectsForPhase(_ context.Context, phaseID string) ([]string, error) {
	var out []string
	for _, l := range f.links {
		if l.PhaseID == phaseID {
			out = append(out, l.ProjectID)
		}
	}
	return out, nil
}

func (f fakePhaseStore) FindDependency(_ context.Context, phaseID, dependsOnID string) (*catalog.PhaseDependency, error) {
	for _, d := range f.deps {
		if d.PhaseID == phaseID && d.DependsOnID == dependsOnID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f fakePhaseStore) CreateDependency(_ context.Context, dep *catalog.PhaseDependency) error {
	cp := *dep
	f.fakeStore.deps = append(f.fakeStore.deps, &cp)
	return nil
}

func (f fakePhaseStore) DeleteDependency(_ context.Context, phaseID, dependsOnID string) error {
	for i, d := range f.deps {
		if d.PhaseID == phaseID && d.DependsOnID == dependsOnID {
			f.fakeStore.deps = append(f.deps[:i], f.deps[i+1:]...)
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (f fakePhaseStore) ListDependencies(_ context.Context, phaseID string) ([]catalog.PhaseDependency, error) {
	var out []catalog.PhaseDependency
	for _, d := range f.deps {
		if d.PhaseID == phaseID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DependsOnID < out[j].DependsOnID })
	return out, nil
}
