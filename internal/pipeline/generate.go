package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/svdoc/internal/config"
	"github.com/dgallion1/svdoc/internal/docrecord"
	"github.com/dgallion1/svdoc/internal/gitinfo"
	"github.com/dgallion1/svdoc/internal/index"
	"github.com/dgallion1/svdoc/internal/manifest"
	"github.com/dgallion1/svdoc/internal/parser"
	"github.com/dgallion1/svdoc/internal/render"
)

// Generator turns a source tree into the documentation site.
type Generator struct {
	cfg  config.Config
	repo gitinfo.Repo
	log  *slog.Logger
	html *render.HTMLRenderer

	runMu sync.Mutex // Serializes runs sharing the output directory

	mu   sync.Mutex
	last *Run
}

// NewGenerator creates a generator. repo is used for source links in the
// index page.
func NewGenerator(cfg config.Config, repo gitinfo.Repo, log *slog.Logger) *Generator {
	return &Generator{
		cfg:  cfg,
		repo: repo,
		log:  log,
		html: render.NewHTMLRenderer(),
	}
}

// ModulesDir is where per-definition pages are written.
func (g *Generator) ModulesDir() string {
	return filepath.Join(g.cfg.OutDir, index.ModulesDir)
}

// ManifestPath is where the run's manifest is written.
func (g *Generator) ManifestPath() string {
	return filepath.Join(g.cfg.OutDir, "index.json")
}

// IndexPath is where the index page is written.
func (g *Generator) IndexPath() string {
	return filepath.Join(g.cfg.OutDir, "README.md")
}

// IndexOptions returns the options used to render the index page.
func (g *Generator) IndexOptions() index.Options {
	return index.Options{Repo: g.repo, SourcePrefix: sourcePrefix(g.cfg.SrcDir)}
}

// LastRun returns the most recent run, or nil before the first one.
func (g *Generator) LastRun() *Run {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// parsedFile holds the records of one source file.
type parsedFile struct {
	rel     string
	records []docrecord.DocRecord
}

// Run processes every source file once. Any I/O error aborts the run and is
// returned; the run is still returned for inspection.
func (g *Generator) Run(ctx context.Context) (*Run, error) {
	g.runMu.Lock()
	defer g.runMu.Unlock()

	run := NewRun()
	g.mu.Lock()
	g.last = run
	g.mu.Unlock()

	log := g.log.With("run_id", run.ID)
	start := time.Now()
	err := g.run(ctx, run, log)
	runDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		run.AddError(err.Error())
		run.SetStatus(StatusFailed, run.Snapshot().Phase)
		runsTotal.WithLabelValues(string(StatusFailed)).Inc()
		log.Error("run failed", "error", err)
		return run, err
	}

	run.SetStatus(StatusCompleted, "done")
	runsTotal.WithLabelValues(string(StatusCompleted)).Inc()
	p := run.Snapshot().Progress
	log.Info("run complete",
		"files", p.FilesTotal,
		"skipped", p.FilesSkipped,
		"definitions", p.Definitions,
		"undocumented", p.Undocumented,
		"pages", p.PagesWritten,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return run, nil
}

func (g *Generator) run(ctx context.Context, run *Run, log *slog.Logger) error {
	// Phase 1: Discover
	run.SetStatus(StatusDiscovering, "discovering")
	files, err := Discover(g.cfg.SrcDir, g.cfg.Extensions, g.cfg.Exclude)
	if err != nil {
		return err
	}
	run.SetFilesTotal(len(files))
	log.Info("discovered sources", "src_dir", g.cfg.SrcDir, "files", len(files))

	// Phase 2: Parse
	run.SetStatus(StatusParsing, "parsing")
	parsed, err := g.parseAll(ctx, run, files)
	if err != nil {
		return err
	}

	// Phase 3: Write pages and manifest
	run.SetStatus(StatusWriting, "writing")
	// Pages of renamed or removed definitions must not outlive their run.
	if err := os.RemoveAll(g.ModulesDir()); err != nil {
		return fmt.Errorf("clear %s: %w", g.ModulesDir(), err)
	}
	entries, err := g.writePages(ctx, run, log, parsed)
	if err != nil {
		return err
	}
	if err := manifest.Write(g.ManifestPath(), entries); err != nil {
		return err
	}
	log.Info("wrote manifest", "path", g.ManifestPath(), "entries", len(entries))

	// Phase 4: Index page
	run.SetStatus(StatusIndexing, "indexing")
	if err := index.WriteFile(g.ManifestPath(), g.IndexPath(), g.IndexOptions()); err != nil {
		return err
	}

	// Phase 5: HTML
	if g.cfg.HTML {
		run.SetStatus(StatusConverting, "converting")
		n, err := ConvertTree(ctx, g.cfg.OutDir, g.html)
		if err != nil {
			return err
		}
		log.Info("converted html", "pages", n)
	}
	return nil
}

// parseAll parses files concurrently. Results keep the order of files so
// that name allocation downstream is deterministic.
func (g *Generator) parseAll(ctx context.Context, run *Run, files []string) ([]parsedFile, error) {
	opts := parser.MatchOptions{
		Keywords: g.cfg.Keywords,
		Pairing:  parser.Pairing(g.cfg.Pairing),
	}
	results := make([]parsedFile, len(files))

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.cfg.Workers)
	for i, rel := range files {
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := g.parseFile(rel, opts)
			if err != nil {
				return err
			}
			results[i] = parsedFile{rel: rel, records: records}

			undocumented := 0
			for _, rec := range records {
				if rec.IsEmpty() {
					undocumented++
				}
			}
			run.FileParsed(len(records), undocumented)
			filesParsed.Inc()
			definitionsTotal.WithLabelValues("true").Add(float64(len(records) - undocumented))
			definitionsTotal.WithLabelValues("false").Add(float64(undocumented))
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (g *Generator) parseFile(rel string, opts parser.MatchOptions) ([]docrecord.DocRecord, error) {
	f, err := os.Open(filepath.Join(g.cfg.SrcDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	p := &parser.SourceParser{Options: opts}
	return p.Parse(f, rel)
}

// writePages writes one page per record, in source order, and returns the
// manifest entries. Repeated names within the run get a numeric suffix.
func (g *Generator) writePages(ctx context.Context, run *Run, log *slog.Logger, parsed []parsedFile) ([]docrecord.ManifestEntry, error) {
	mdOpts := render.MarkdownOptions{CodeLang: g.cfg.CodeLang}
	names := newNameAllocator()
	var entries []docrecord.ManifestEntry

	for _, pf := range parsed {
		if len(pf.records) == 0 {
			log.Debug("no definitions, skipping", "source", pf.rel)
			continue
		}
		dir := path.Dir(pf.rel)
		for _, rec := range pf.records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			docRel := path.Join(dir, names.next(rec.Name)+".md")
			mdPath := filepath.Join(g.ModulesDir(), filepath.FromSlash(docRel))

			if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
				return nil, fmt.Errorf("create page dir: %w", err)
			}
			if err := os.WriteFile(mdPath, []byte(render.MarkdownWith(rec.Name, rec, mdOpts)), 0o644); err != nil {
				return nil, fmt.Errorf("write page: %w", err)
			}
			if g.cfg.DOCX {
				if err := writeDOCXFile(strings.TrimSuffix(mdPath, ".md")+".docx", rec); err != nil {
					return nil, err
				}
			}
			run.PageWritten()
			log.Debug("wrote page", "source", pf.rel, "name", rec.Name, "path", mdPath)

			entries = append(entries, manifest.ToManifestEntry(rec, pf.rel, docRel))
		}
	}
	return entries, nil
}

func writeDOCXFile(path string, rec docrecord.DocRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}
	if err := render.WriteDOCX(f, rec); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close docx: %w", err)
	}
	return nil
}

// sourcePrefix is the slash-separated source directory as it appears in the
// repository, e.g. "./src" becomes "src".
func sourcePrefix(srcDir string) string {
	dir := filepath.Clean(srcDir)
	if filepath.IsAbs(dir) {
		if wd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(wd, dir); err == nil && !strings.HasPrefix(rel, "..") {
				dir = rel
			}
		}
	}
	if dir == "." {
		return ""
	}
	return filepath.ToSlash(dir)
}
