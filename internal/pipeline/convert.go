package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/svdoc/internal/index"
	"github.com/dgallion1/svdoc/internal/render"
)

// ConvertTree writes an HTML page next to every Markdown page under
// outDir/modules and next to outDir/README.md. It returns the number of pages
// converted.
func ConvertTree(ctx context.Context, outDir string, r *render.HTMLRenderer) (int, error) {
	var pages []string
	modules := filepath.Join(outDir, index.ModulesDir)
	err := filepath.WalkDir(modules, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
			pages = append(pages, path)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("walk %s: %w", modules, err)
	}
	readme := filepath.Join(outDir, "README.md")
	if _, err := os.Stat(readme); err == nil {
		pages = append(pages, readme)
	}

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := convertPage(p, r); err != nil {
			return 0, err
		}
	}
	return len(pages), nil
}

func convertPage(mdPath string, r *render.HTMLRenderer) error {
	md, err := os.ReadFile(mdPath)
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(mdPath), filepath.Ext(mdPath))
	out, err := r.Render(md, stem)
	if err != nil {
		return fmt.Errorf("%s: %w", mdPath, err)
	}
	htmlPath := strings.TrimSuffix(mdPath, filepath.Ext(mdPath)) + ".html"
	if err := os.WriteFile(htmlPath, out, 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}
