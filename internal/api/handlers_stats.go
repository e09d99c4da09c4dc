package api

import (
	"net/http"
)

func (s *Server) handleParseStats(w http.ResponseWriter, r *http.Request) {
	window := s.orchestrator.Stats()
	if window == nil {
		jsonError(w, "parse stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"strict":      s.orchestrator.Strict(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       window.Snapshot(),
	})
}
