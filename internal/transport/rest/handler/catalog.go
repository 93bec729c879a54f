package handler

import (
	"net/http"

	"assessment-engine/internal/assessment/catalog"
	"assessment-engine/internal/assessment/recommender"
)

// CatalogHandler serves read-only reference data
type CatalogHandler struct {
	searcher *catalog.Searcher
	engine   *recommender.Engine
}

func NewCatalogHandler(searcher *catalog.Searcher, engine *recommender.Engine) *CatalogHandler {
	return &CatalogHandler{searcher: searcher, engine: engine}
}

// CareerPathways handles GET /v1/career-pathways?stream=
func (h *CatalogHandler) CareerPathways(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.searcher.CareerPathways(r.Context(), r.URL.Query().Get("stream")))
}

// Colleges handles GET /v1/colleges?state=&city=
func (h *CatalogHandler) Colleges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"colleges": catalog.Colleges(q.Get("state"), q.Get("city")),
	})
}

type rulesResponse struct {
	Version      string              `json:"version"`
	LastUpdated  string              `json:"last_updated"`
	PrimaryCount int                 `json:"primary_count"`
	Candidates   map[string][]string `json:"candidates"`
}

// Rules handles GET /v1/rules
func (h *CatalogHandler) Rules(w http.ResponseWriter, r *http.Request) {
	rules := h.engine.Rules()
	resp := rulesResponse{
		Version:      rules.Version,
		LastUpdated:  rules.LastUpdated,
		PrimaryCount: rules.PrimaryCount,
		Candidates:   make(map[string][]string, len(rules.ClassLevels)),
	}
	for class, cr := range rules.ClassLevels {
		names := make([]string, 0, len(cr.Candidates))
		for _, c := range cr.Candidates {
			names = append(names, c.Name)
		}
		resp.Candidates[string(class)] = names
	}
	writeJSON(w, http.StatusOK, resp)
}
