package httpapi

import (
	"net/http"
	"strings"

	"tripod.studio/internal/catalog"
)

type createPhaseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updatePhaseRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type addDependencyRequest struct {
	DependsOnID string `json:"depends_on_id"`
}

func (a *API) handlePhases(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.currentUser(w, r); !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		projectID := strings.TrimSpace(r.URL.Query().Get("project_id"))
		phases, err := a.phases.ListPhases(r.Context(), projectID)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"phases": phases})
	case http.MethodPost:
		var req createPhaseRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, r, http.StatusBadRequest, "name is required")
			return
		}
		phase, err := a.phases.CreatePhase(r.Context(), req.Name, req.Description)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, phase)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handlePhaseResource(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.currentUser(w, r); !ok {
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/phases/"), "/")
	parts := strings.Split(path, "/")
	if parts[0] == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	phaseID := parts[0]

	switch {
	case len(parts) == 1:
		a.handlePhase(w, r, phaseID)
	case len(parts) == 2 && parts[1] == "projects":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		projects, err := a.phases.ListProjectsForPhase(r.Context(), phaseID)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"project_ids": projects})
	case len(parts) == 2 && parts[1] == "dependencies":
		a.handlePhaseDependencies(w, r, phaseID)
	case len(parts) == 3 && parts[1] == "dependencies":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, r, http.MethodDelete)
			return
		}
		if err := a.phases.RemoveDependency(r.Context(), phaseID, parts[2]); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handlePhase(w http.ResponseWriter, r *http.Request, phaseID string) {
	switch r.Method {
	case http.MethodGet:
		phase, err := a.phases.Phase(r.Context(), phaseID)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, phase)
	case http.MethodPatch:
		var req updatePhaseRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		phase, err := a.phases.UpdatePhase(r.Context(), phaseID, catalog.PhaseUpdate{
			Name:        req.Name,
			Description: req.Description,
			Status:      req.Status,
		})
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, phase)
	case http.MethodDelete:
		if err := a.phases.DeletePhase(r.Context(), phaseID); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) handlePhaseDependencies(w http.ResponseWriter, r *http.Request, phaseID string) {
	switch r.Method {
	case http.MethodGet:
		deps, err := a.phases.ListDependencies(r.Context(), phaseID)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dependencies": deps})
	case http.MethodPost:
		var req addDependencyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.DependsOnID) == "" {
			writeError(w, r, http.StatusBadRequest, "depends_on_id is required")
			return
		}
		dep, err := a.phases.AddDependency(r.Context(), phaseID, req.DependsOnID)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, dep)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}
