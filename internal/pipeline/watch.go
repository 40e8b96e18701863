package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/svdoc/internal/parser"
)

// watchDebounce coalesces bursts of file events (editor saves, checkouts)
// into one run.
const watchDebounce = 300 * time.Millisecond

// Watch regenerates the site whenever a source file under the source
// directory changes, until ctx is done. onRun is called after every run.
// Failed runs are reported to onRun and do not stop the watch.
func (g *Generator) Watch(ctx context.Context, onRun func(*Run, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	err = filepath.WalkDir(g.cfg.SrcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", g.cfg.SrcDir, err)
	}
	g.log.Info("watching sources", "src_dir", g.cfg.SrcDir)

	trigger := make(chan struct{}, 1)
	timer := time.AfterFunc(time.Hour, func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						g.log.Warn("watch new directory failed", "path", ev.Name, "error", err)
					}
				}
			}
			if g.relevant(ev.Name) {
				timer.Reset(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			g.log.Warn("watcher error", "error", err)
		case <-trigger:
			run, err := g.Run(ctx)
			if onRun != nil {
				onRun(run, err)
			}
		}
	}
}

// relevant reports whether a changed path can affect the generated site.
func (g *Generator) relevant(name string) bool {
	if filepath.Ext(name) == "" {
		// Directory renames and removals.
		return true
	}
	return parser.IsSupportedExtension(name, g.cfg.Extensions)
}
