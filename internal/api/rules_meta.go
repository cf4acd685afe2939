package api

import "net/http"

// GET /api/v1/rules (IDs + summaries; no auth needed for read-only)
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	type R struct {
		ID      string `json:"id"`
		Summary string `json:"summary"`
		Message string `json:"message"`
	}
	var out []R
	for _, rr := range s.Rules {
		out = append(out, R{ID: rr.ID, Summary: rr.Summary, Message: rr.Message})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}
