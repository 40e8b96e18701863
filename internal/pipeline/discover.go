package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"github.com/dgallion1/svdoc/internal/parser"
)

// Discover walks srcDir and returns the slash-separated relative paths of
// every file whose extension is in exts and that matches no exclude pattern,
// sorted.
func Discover(srcDir string, exts, exclude []string) ([]string, error) {
	matchers := make([]glob.Glob, 0, len(exclude))
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile exclude pattern %q: %w", pattern, err)
		}
		matchers = append(matchers, g)
	}

	var files []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && excluded(matchers, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !parser.IsSupportedExtension(path, exts) || excluded(matchers, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", srcDir, err)
	}
	sort.Strings(files)
	return files, nil
}

func excluded(matchers []glob.Glob, rel string) bool {
	for _, g := range matchers {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
