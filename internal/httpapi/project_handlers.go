package httpapi

import (
	"net/http"
	"strings"

	"tripod.studio/internal/catalog"
)

type createProjectRequest struct {
	Name                string   `json:"name"`
	LanguageID          string   `json:"language_id"`
	Description         string   `json:"description"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	LocationDisplayName *string  `json:"location_display_name"`
}

type updateLocationRequest struct {
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	LocationDisplayName *string  `json:"location_display_name"`
}

type grantUserAccessRequest struct {
	UserID string `json:"user_id"`
}

type grantOrganizationAccessRequest struct {
	OrganizationID string `json:"organization_id"`
}

func (a *API) handleProjects(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		projects, err := a.projects.ListAccessible(r.Context(), user.ID)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		if languageID := strings.TrimSpace(r.URL.Query().Get("language_id")); languageID != "" {
			filtered := projects[:0]
			for _, p := range projects {
				if p.LanguageID == languageID {
					filtered = append(filtered, p)
				}
			}
			projects = filtered
		}
		writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
	case http.MethodPost:
		var req createProjectRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.LanguageID) == "" {
			writeError(w, r, http.StatusBadRequest, "name and language_id are required")
			return
		}
		if _, err := a.languages.Language(r.Context(), req.LanguageID); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		loc := catalog.ProjectUpdate{
			Latitude:            req.Latitude,
			Longitude:           req.Longitude,
			LocationDisplayName: req.LocationDisplayName,
		}
		project, err := a.projects.CreateProject(r.Context(), req.Name, req.LanguageID, req.Description, loc)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		if _, err := a.projects.GrantUserAccess(r.Context(), project.ID, user.ID); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		a.audit(r.Context(), "projects.create", map[string]any{
			"project_id":  project.ID,
			"language_id": project.LanguageID,
		})
		writeJSON(w, http.StatusCreated, project)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleProjectResource(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/projects/"), "/")
	parts := strings.Split(path, "/")
	if parts[0] == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	projectID := parts[0]

	// Every project subresource requires read access to the project.
	if !a.requireProjectAccess(w, r, user.ID, projectID) {
		return
	}

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		project, err := a.projects.Project(r.Context(), projectID)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	case len(parts) == 2 && parts[1] == "location":
		a.handleUpdateProjectLocation(w, r, projectID)
	case len(parts) == 2 && parts[1] == "phases":
		a.handleProjectPhases(w, r, projectID)
	case len(parts) == 3 && parts[1] == "phases":
		a.handleProjectPhaseLink(w, r, projectID, parts[2])
	case len(parts) == 3 && parts[1] == "access" && parts[2] == "users":
		a.handleGrantUserAccess(w, r, projectID)
	case len(parts) == 3 && parts[1] == "access" && parts[2] == "organizations":
		a.handleGrantOrganizationAccess(w, r, projectID)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

// requireProjectAccess writes a 403 or 404 and returns false when the
// user cannot read the project.
func (a *API) requireProjectAccess(w http.ResponseWriter, r *http.Request, userID, projectID string) bool {
	if _, err := a.projects.Project(r.Context(), projectID); err != nil {
		handleCatalogError(w, r, err)
		return false
	}
	allowed, err := a.projects.CanAccess(r.Context(), userID, projectID)
	if err != nil {
		handleCatalogError(w, r, err)
		return false
	}
	if !allowed {
		writeError(w, r, http.StatusForbidden, "no access to this project")
		return false
	}
	return true
}

func (a *API) handleUpdateProjectLocation(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	var req updateLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	project, err := a.projects.UpdateLocation(r.Context(), projectID, catalog.ProjectUpdate{
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		LocationDisplayName: req.LocationDisplayName,
	})
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (a *API) handleProjectPhases(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	phases, err := a.phases.ListPhases(r.Context(), projectID)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"phases": phases})
}

func (a *API) handleProjectPhaseLink(w http.ResponseWriter, r *http.Request, projectID, phaseID string) {
	switch r.Method {
	case http.MethodPost:
		link, err := a.phases.AttachToProject(r.Context(), projectID, phaseID)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		a.audit(r.Context(), "projects.attach_phase", map[string]any{
			"project_id": projectID,
			"phase_id":   phaseID,
		})
		writeJSON(w, http.StatusCreated, link)
	case http.MethodDelete:
		if err := a.phases.DetachFromProject(r.Context(), projectID, phaseID); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		a.audit(r.Context(), "projects.detach_phase", map[string]any{
			"project_id": projectID,
			"phase_id":   phaseID,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodDelete)
	}
}

func (a *API) handleGrantUserAccess(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req grantUserAccessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}
	grant, err := a.projects.GrantUserAccess(r.Context(), projectID, req.UserID)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	a.audit(r.Context(), "projects.grant_user_access", map[string]any{
		"project_id":     projectID,
		"target_user_id": req.UserID,
	})
	writeJSON(w, http.StatusCreated, grant)
}

func (a *API) handleGrantOrganizationAccess(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req grantOrganizationAccessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.OrganizationID) == "" {
		writeError(w, r, http.StatusBadRequest, "organization_id is required")
		return
	}
	if _, err := a.orgs.Organization(r.Context(), req.OrganizationID); err != nil {
		handleCatalogError(w, r, err)
		return
	}
	grant, err := a.projects.GrantOrganizationAccess(r.Context(), projectID, req.OrganizationID)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	a.audit(r.Context(), "projects.grant_org_access", map[string]any{
		"project_id":      projectID,
		"organization_id": req.OrganizationID,
	})
	writeJSON(w, http.StatusCreated, grant)
}
