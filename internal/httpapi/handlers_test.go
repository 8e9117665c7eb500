package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"tripod.studio/internal/auth"
	"tripod.studio/internal/catalog"
	"tripod.studio/internal/rbac"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	store   *fakeStore
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	store := newFakeStore()
	store.apps = []*rbac.App{
		{ID: "app-1", AppKey: "tripod-studio", Name: "Tripod Studio", IsActive: true},
	}
	store.roles = []*rbac.Role{
		{ID: "role-1", AppID: "app-1", RoleKey: "admin", Label: "Admin", IsSystem: true},
		{ID: "role-2", AppID: "app-1", RoleKey: "viewer", Label: "Viewer", IsSystem: true},
	}

	codec, err := auth.NewTokenCodec("httpapi-test-secret", "HS256")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	projects := catalog.NewProjectService(fakeProjectStore{store}, fakeOrgStore{store})
	deps := Deps{
		Auth:      auth.NewService(store, codec),
		Roles:     rbac.NewService(store),
		Orgs:      catalog.NewOrgService(fakeOrgStore{store}),
		Languages: catalog.NewLanguageService(fakeLangStore{store}),
		Projects:  projects,
		Phases:    catalog.NewPhaseService(fakePhaseStore{store}, fakeProjectStore{store}),
	}

	api := New(ReadyProbe{}, deps, "test")
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		store:   store,
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	if params != nil {
		path += "?" + params.Encode()
	}
	return c.do(http.MethodGet, path, nil, headers)
}

// signup registers a user and returns the user id and an auth header.
func (c *apiClient) signup(email, password string) (string, map[string]string) {
	c.t.Helper()
	resp := c.post("/api/auth/signup", map[string]any{
		"email":    email,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("signup status: %d", resp.StatusCode)
	}
	payload := decode[struct {
		User   auth.User      `json:"user"`
		Tokens auth.TokenPair `json:"tokens"`
	}](c.t, resp)
	if payload.Tokens.AccessToken == "" || payload.Tokens.RefreshToken == "" {
		c.t.Fatalf("incomplete token pair")
	}
	return payload.User.ID, map[string]string{"Authorization": "Bearer " + payload.Tokens.AccessToken}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthzIsPublic(t *testing.T) {
	api := newTestAPI(t)
	resp := api.get("/healthz", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	api := newTestAPI(t)
	resp := api.get("/api/projects", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)

	resp := api.post("/api/auth/signup", map[string]any{
		"email":    "flow@example.org",
		"password": "hunter2!",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status: %d", resp.StatusCode)
	}
	signupBody := decode[struct {
		Tokens auth.TokenPair `json:"tokens"`
	}](t, resp)

	resp = api.post("/api/auth/login", map[string]any{
		"email":    "Flow@Example.org",
		"password": "hunter2!",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}
	loginBody := decode[struct {
		User   auth.User         `json:"user"`
		Tokens tokenPairResponse `json:"tokens"`
	}](t, resp)
	if loginBody.User.Email != "flow@example.org" {
		t.Fatalf("login response missing user: %+v", loginBody.User)
	}
	header := map[string]string{"Authorization": "Bearer " + loginBody.Tokens.AccessToken}

	resp = api.get("/api/auth/me", nil, header)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status: %d", resp.StatusCode)
	}
	me := decode[auth.User](t, resp)
	if me.Email != "flow@example.org" {
		t.Fatalf("unexpected email %q", me.Email)
	}
	if me.CreatedAt.IsZero() {
		t.Fatalf("created_at not set on signup")
	}

	resp = api.post("/api/auth/refresh", map[string]any{
		"refresh_token": loginBody.Tokens.RefreshToken,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status: %d", resp.StatusCode)
	}
	refreshed := decode[tokenPairResponse](t, resp)
	if refreshed.AccessToken == "" {
		t.Fatalf("empty refreshed access token")
	}
	// The unrotated refresh token is echoed back alongside the new access.
	if refreshed.RefreshToken != loginBody.Tokens.RefreshToken {
		t.Fatalf("refresh response did not echo the refresh token")
	}

	resp = api.post("/api/auth/logout", map[string]any{
		"refresh_token": loginBody.Tokens.RefreshToken,
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status: %d", resp.StatusCode)
	}

	// The revoked refresh token no longer works.
	resp = api.post("/api/auth/refresh", map[string]any{
		"refresh_token": loginBody.Tokens.RefreshToken,
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}

	// The signup pair is independent and still valid.
	resp = api.post("/api/auth/refresh", map[string]any{
		"refresh_token": signupBody.Tokens.RefreshToken,
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected signup refresh to remain valid, got %d", resp.StatusCode)
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	api := newTestAPI(t)
	api.signup("dupe@example.org", "password1")

	resp := api.post("/api/auth/signup", map[string]any{
		"email":    "DUPE@example.org",
		"password": "password2",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRoleAssignmentEndpoints(t *testing.T) {
	api := newTestAPI(t)

	adminID, adminHeader := api.signup("admin@example.org", "password1")
	api.store.users[adminID].IsPlatformAdmin = true
	targetID, targetHeader := api.signup("member@example.org", "password2")

	resp := api.post("/api/roles/assign", map[string]any{
		"user_id":  targetID,
		"app_key":  "tripod-studio",
		"role_key": "viewer",
	}, adminHeader)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("assign status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.get("/api/roles/check", url.Values{
		"user_id":  {targetID},
		"app_key":  {"tripod-studio"},
		"role_key": {"viewer"},
	}, adminHeader)
	check := decode[map[string]bool](t, resp)
	if !check["has_role"] {
		t.Fatalf("expected has_role true")
	}

	resp = api.get("/api/auth/my-roles", nil, targetHeader)
	grants := decode[struct {
		Roles []rbac.RoleGrant `json:"roles"`
	}](t, resp)
	if len(grants.Roles) != 1 || grants.Roles[0].RoleKey != "viewer" {
		t.Fatalf("unexpected grants: %+v", grants.Roles)
	}

	// The target holds no admin role and cannot manage assignments.
	resp = api.post("/api/roles/assign", map[string]any{
		"user_id":  targetID,
		"app_key":  "tripod-studio",
		"role_key": "admin",
	}, targetHeader)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unprivileged actor, got %d", resp.StatusCode)
	}

	resp = api.post("/api/roles/revoke", map[string]any{
		"user_id":  targetID,
		"app_key":  "tripod-studio",
		"role_key": "viewer",
	}, adminHeader)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("revoke status: %d", resp.StatusCode)
	}

	resp = api.get("/api/roles/check", url.Values{
		"user_id":  {targetID},
		"app_key":  {"tripod-studio"},
		"role_key": {"viewer"},
	}, adminHeader)
	check = decode[map[string]bool](t, resp)
	if check["has_role"] {
		t.Fatalf("expected has_role false after revoke")
	}
}

func TestAppCatalogEndpoints(t *testing.T) {
	api := newTestAPI(t)
	_, header := api.signup("apps@example.org", "password1")

	resp := api.get("/api/apps", nil, header)
	apps := decode[struct {
		Apps []rbac.App `json:"apps"`
	}](t, resp)
	if len(apps.Apps) != 1 || apps.Apps[0].AppKey != "tripod-studio" {
		t.Fatalf("unexpected apps: %+v", apps.Apps)
	}

	resp = api.get("/api/apps/tripod-studio/roles", nil, header)
	roles := decode[struct {
		Roles []rbac.Role `json:"roles"`
	}](t, resp)
	if len(roles.Roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(roles.Roles))
	}

	resp = api.get("/api/apps/no-such-app/roles", nil, header)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestProjectLifecycle(t *testing.T) {
	api := newTestAPI(t)
	_, owner := api.signup("owner@example.org", "password1")
	strangerID, stranger := api.signup("stranger@example.org", "password2")

	resp := api.post("/api/languages", map[string]any{
		"name": "Kazakh",
		"code": "KAZ",
	}, owner)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create language status: %d", resp.StatusCode)
	}
	language := decode[catalog.Language](t, resp)
	if language.Code != "kaz" {
		t.Fatalf("expected lowercased code, got %q", language.Code)
	}

	resp = api.post("/api/projects", map[string]any{
		"name":        "North Dialect Survey",
		"language_id": language.ID,
		"description": "field recordings",
	}, owner)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create project status: %d", resp.StatusCode)
	}
	project := decode[catalog.Project](t, resp)

	// The creator can read it, a stranger cannot.
	resp = api.get("/api/projects/"+project.ID, nil, owner)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner read status: %d", resp.StatusCode)
	}
	resp = api.get("/api/projects/"+project.ID, nil, stranger)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for stranger, got %d", resp.StatusCode)
	}

	resp = api.post("/api/projects/"+project.ID+"/access/users", map[string]any{
		"user_id": strangerID,
	}, owner)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("grant access status: %d", resp.StatusCode)
	}
	resp = api.get("/api/projects/"+project.ID, nil, stranger)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after grant, got %d", resp.StatusCode)
	}

	lat, lon := 51.1605, 71.4704
	resp = api.do(http.MethodPatch, "/api/projects/"+project.ID+"/location", map[string]any{
		"latitude":              lat,
		"longitude":             lon,
		"location_display_name": "Astana",
	}, owner)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update location status: %d", resp.StatusCode)
	}
	updated := decode[catalog.Project](t, resp)
	if updated.Latitude == nil || *updated.Latitude != lat || updated.LocationDisplayName != "Astana" {
		t.Fatalf("location not applied: %+v", updated)
	}

	resp = api.get("/api/projects", url.Values{"language_id": {language.ID}}, stranger)
	listed := decode[struct {
		Projects []catalog.Project `json:"projects"`
	}](t, resp)
	if len(listed.Projects) != 1 || listed.Projects[0].ID != project.ID {
		t.Fatalf("unexpected accessible projects: %+v", listed.Projects)
	}
}

func TestPhaseEndpoints(t *testing.T) {
	api := newTestAPI(t)
	_, header := api.signup("phases@example.org", "password1")

	resp := api.post("/api/phases", map[string]any{
		"name":        "Transcription",
		"description": "first pass",
	}, header)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create phase status: %d", resp.StatusCode)
	}
	first := decode[catalog.Phase](t, resp)
	if first.Status != "pending" {
		t.Fatalf("expected default status pending, got %q", first.Status)
	}

	resp = api.post("/api/phases", map[string]any{"name": "Review"}, header)
	second := decode[catalog.Phase](t, resp)

	resp = api.post("/api/phases/"+second.ID+"/dependencies", map[string]any{
		"depends_on_id": first.ID,
	}, header)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add dependency status: %d", resp.StatusCode)
	}

	// A phase cannot depend on itself.
	resp = api.post("/api/phases/"+first.ID+"/dependencies", map[string]any{
		"depends_on_id": first.ID,
	}, header)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for self dependency, got %d", resp.StatusCode)
	}

	resp = api.get("/api/phases/"+second.ID+"/dependencies", nil, header)
	deps := decode[struct {
		Dependencies []catalog.PhaseDependency `json:"dependencies"`
	}](t, resp)
	if len(deps.Dependencies) != 1 || deps.Dependencies[0].DependsOnID != first.ID {
		t.Fatalf("unexpected dependencies: %+v", deps.Dependencies)
	}

	resp = api.do(http.MethodDelete, "/api/phases/"+second.ID+"/dependencies/"+first.ID, nil, header)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove dependency status: %d", resp.StatusCode)
	}

	resp = api.do(http.MethodDelete, "/api/phases/"+first.ID, nil, header)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete phase status: %d", resp.StatusCode)
	}
	resp = api.get("/api/phases/"+first.ID, nil, header)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}
