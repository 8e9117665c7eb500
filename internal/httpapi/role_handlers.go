package httpapi

import (
	"net/http"
	"strings"
)

type roleMutationRequest struct {
	UserID  string `json:"user_id"`
	AppKey  string `json:"app_key"`
	RoleKey string `json:"role_key"`
}

func (req *roleMutationRequest) validate() string {
	req.UserID = strings.TrimSpace(req.UserID)
	req.AppKey = strings.TrimSpace(req.AppKey)
	req.RoleKey = strings.TrimSpace(req.RoleKey)
	if req.UserID == "" {
		return "user_id is required"
	}
	if req.AppKey == "" {
		return "app_key is required"
	}
	if req.RoleKey == "" {
		return "role_key is required"
	}
	return ""
}

func (a *API) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actor, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	var req roleMutationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	assignment, err := a.roles.AssignRole(r.Context(), actor, req.UserID, req.AppKey, req.RoleKey)
	if err != nil {
		handleRoleError(w, r, err)
		return
	}

	a.audit(r.Context(), "roles.assign", map[string]any{
		"target_user_id": req.UserID,
		"app_key":        req.AppKey,
		"role_key":       req.RoleKey,
	})
	writeJSON(w, http.StatusCreated, assignment)
}

func (a *API) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actor, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	var req roleMutationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	assignment, err := a.roles.RevokeRole(r.Context(), actor, req.UserID, req.AppKey, req.RoleKey)
	if err != nil {
		handleRoleError(w, r, err)
		return
	}

	a.audit(r.Context(), "roles.revoke", map[string]any{
		"target_user_id": req.UserID,
		"app_key":        req.AppKey,
		"role_key":       req.RoleKey,
	})
	writeJSON(w, http.StatusOK, assignment)
}

func (a *API) handleCheckRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.currentUser(w, r); !ok {
		return
	}

	q := r.URL.Query()
	userID := strings.TrimSpace(q.Get("user_id"))
	appKey := strings.TrimSpace(q.Get("app_key"))
	roleKey := strings.TrimSpace(q.Get("role_key"))
	if userID == "" || appKey == "" || roleKey == "" {
		writeError(w, r, http.StatusBadRequest, "user_id, app_key and role_key are required")
		return
	}

	has, err := a.roles.HasRole(r.Context(), userID, appKey, roleKey)
	if err != nil {
		handleRoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"has_role": has})
}

func (a *API) handleApps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.currentUser(w, r); !ok {
		return
	}
	apps, err := a.roles.ListApps(r.Context())
	if err != nil {
		handleRoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"apps": apps})
}

func (a *API) handleAppResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/apps/"), "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "roles" || parts[0] == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.currentUser(w, r); !ok {
		return
	}

	roles, err := a.roles.ListAppRoles(r.Context(), parts[0])
	if err != nil {
		handleRoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
}
