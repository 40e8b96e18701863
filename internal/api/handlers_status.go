package api

import (
	"net/http"
)

// handleStatus reports the most recent generation run.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	run := s.generator.LastRun()
	if run == nil {
		jsonError(w, "no run yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, run.Snapshot())
}

// handleGenerate regenerates the site synchronously. Only one run may be in
// flight.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !s.generating.TryLock() {
		jsonError(w, "a run is already in progress", http.StatusConflict)
		return
	}
	defer s.generating.Unlock()

	run, err := s.generator.Run(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": err.Error(),
			"run":   run.Snapshot(),
		})
		return
	}
	writeJSON(w, http.StatusOK, run.Snapshot())
}
