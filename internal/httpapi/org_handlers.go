package httpapi

import (
	"net/http"
	"strings"
)

type createOrganizationRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (a *API) handleOrganizations(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.currentUser(w, r); !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		orgs, err := a.orgs.ListOrganizations(r.Context())
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"organizations": orgs})
	case http.MethodPost:
		var req createOrganizationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Slug) == "" {
			writeError(w, r, http.StatusBadRequest, "name and slug are required")
			return
		}
		org, err := a.orgs.CreateOrganization(r.Context(), req.Name, req.Slug)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		a.audit(r.Context(), "organizations.create", map[string]any{
			"organization_id": org.ID,
			"slug":            org.Slug,
		})
		writeJSON(w, http.StatusCreated, org)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleOrganizationResource(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.currentUser(w, r); !ok {
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/organizations/"), "/")
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		org, err := a.orgs.Organization(r.Context(), parts[0])
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, org)
	case len(parts) == 2 && parts[0] == "slug" && parts[1] != "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		org, err := a.orgs.OrganizationBySlug(r.Context(), parts[1])
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, org)
	case len(parts) == 2 && parts[1] == "members":
		a.handleOrganizationMembers(w, r, parts[0])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleOrganizationMembers(w http.ResponseWriter, r *http.Request, organizationID string) {
	switch r.Method {
	case http.MethodGet:
		members, err := a.orgs.ListMembers(r.Context(), organizationID)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": members})
	case http.MethodPost:
		var req addMemberRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.UserID) == "" {
			writeError(w, r, http.StatusBadRequest, "user_id is required")
			return
		}
		member, err := a.orgs.AddMember(r.Context(), organizationID, req.UserID, req.Role)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		a.audit(r.Context(), "organizations.add_member", map[string]any{
			"organization_id": organizationID,
			"member_user_id":  req.UserID,
		})
		writeJSON(w, http.StatusCreated, member)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}
