package httpapi

import (
	"net/http"
	"strings"
)

type createLanguageRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (a *API) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.currentUser(w, r); !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		languages, err := a.languages.ListLanguages(r.Context())
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"languages": languages})
	case http.MethodPost:
		var req createLanguageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Code) == "" {
			writeError(w, r, http.StatusBadRequest, "name and code are required")
			return
		}
		language, err := a.languages.CreateLanguage(r.Context(), req.Name, req.Code)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, language)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleLanguageResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.currentUser(w, r); !ok {
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/languages/"), "/")
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		language, err := a.languages.Language(r.Context(), parts[0])
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, language)
	case len(parts) == 2 && parts[0] == "code" && parts[1] != "":
		language, err := a.languages.LanguageByCode(r.Context(), parts[1])
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, language)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}
