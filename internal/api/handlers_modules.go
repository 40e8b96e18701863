package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/dgallion1/svdoc/internal/docrecord"
	"github.com/dgallion1/svdoc/internal/manifest"
)

// handleListModules returns the manifest of the last generated site, sorted
// by name. ?q= filters by a case-insensitive substring of the name.
func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	entries, err := manifest.Read(s.generator.ManifestPath())
	if errors.Is(err, fs.ErrNotExist) {
		jsonError(w, "no manifest: site has not been generated", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read manifest: "+err.Error(), http.StatusInternalServerError)
		return
	}

	q := strings.ToLower(r.URL.Query().Get("q"))
	modules := make([]docrecord.ManifestEntry, 0, len(entries))
	for _, e := range manifest.Sorted(entries) {
		if q == "" || strings.Contains(strings.ToLower(e.Name), q) {
			modules = append(modules, e)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"modules": modules})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
