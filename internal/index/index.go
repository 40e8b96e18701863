package index

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/dgallion1/svdoc/internal/docrecord"
	"github.com/dgallion1/svdoc/internal/gitinfo"
	"github.com/dgallion1/svdoc/internal/manifest"
)

// ModulesDir is the directory, relative to the index page, holding the
// per-definition pages.
const ModulesDir = "modules"

// Options controls index page generation.
type Options struct {
	Repo gitinfo.Repo
	// SourcePrefix is the repository-relative directory that manifest source
	// paths are relative to, e.g. "src".
	SourcePrefix string
}

// Generate renders the index page listing every entry, sorted by name. Names
// link to the HTML page of each definition; sources link to the repository
// browser.
func Generate(entries []docrecord.ManifestEntry, opts Options) string {
	var sb strings.Builder
	sb.WriteString("# Module documentation\n\n## Index\n\n")
	sb.WriteString("| Module | Description | Source file |\n")
	sb.WriteString("|--------|-------------|-------------|\n")

	for _, e := range manifest.Sorted(entries) {
		brief := e.Brief
		if brief == "" {
			brief = "-"
		}
		doc := strings.TrimSuffix(e.DocPath, ".md") + ".html"
		src := path.Join(opts.SourcePrefix, e.SourcePath)
		fmt.Fprintf(&sb, "| [%s](%s/%s) | %s | [%s](%s) |\n",
			e.Name, ModulesDir, doc,
			strings.ReplaceAll(strings.ReplaceAll(brief, "|", `\|`), "\n", " "),
			e.SourcePath, opts.Repo.BlobURL(src))
	}
	return sb.String()
}

// WriteFile reads the manifest at manifestPath and writes the index page to
// readmePath. A missing or malformed manifest is an error.
func WriteFile(manifestPath, readmePath string, opts Options) error {
	entries, err := manifest.Read(manifestPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(readmePath, []byte(Generate(entries, opts)), 0o644); err != nil {
		return fmt.Errorf("write index %s: %w", readmePath, err)
	}
	return nil
}
