package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/dgallion1/svdoc/internal/docrecord"
	"github.com/dgallion1/svdoc/internal/parser"
	"github.com/dgallion1/svdoc/internal/render"
)

// handleRender documents an uploaded source file without touching the site.
// The body is the raw source; ?format= selects markdown (default), html or
// json; ?filename= is checked against the supported extensions.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "markdown"
	}
	switch format {
	case "markdown", "html", "json":
	default:
		jsonError(w, fmt.Sprintf("unsupported format: %s", format), http.StatusBadRequest)
		return
	}

	opts := parser.MatchOptions{Keywords: s.cfg.Keywords, Pairing: parser.Pairing(s.cfg.Pairing)}
	var p parser.Parser = &parser.SourceParser{Options: opts}
	filename := r.URL.Query().Get("filename")
	if filename != "" {
		var err error
		if p, err = parser.ForFile(filename, s.cfg.Extensions, opts); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	records, err := p.Parse(r.Body, filename)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("source exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read source: "+err.Error(), http.StatusBadRequest)
		return
	}
	if records == nil {
		records = []docrecord.DocRecord{}
	}

	if format == "json" {
		writeJSON(w, http.StatusOK, map[string]any{"definitions": records})
		return
	}

	pages := make([]string, len(records))
	for i, rec := range records {
		pages[i] = render.MarkdownWith(rec.Name, rec, render.MarkdownOptions{CodeLang: s.cfg.CodeLang})
	}
	md := strings.Join(pages, "\n")

	if format == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, md)
		return
	}

	title := strings.TrimSuffix(filename, path.Ext(filename))
	if title == "" {
		title = "preview"
	}
	out, err := s.html.Render([]byte(md), title)
	if err != nil {
		jsonError(w, "failed to render html: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}
