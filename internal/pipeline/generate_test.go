package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/svdoc/internal/config"
	"github.com/dgallion1/svdoc/internal/gitinfo"
	"github.com/dgallion1/svdoc/internal/manifest"
)

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testGenerator(t *testing.T, mutate func(*config.Config)) (*Generator, config.Config) {
	t.Helper()
	cfg := config.Defaults()
	cfg.SrcDir = filepath.Join(t.TempDir(), "src")
	cfg.OutDir = filepath.Join(t.TempDir(), "docs_md")
	cfg.Workers = 2
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, os.MkdirAll(cfg.SrcDir, 0o755))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := gitinfo.Repo{URL: "https://github.com/acme/cores", Branch: "main"}
	return NewGenerator(cfg, repo, log), cfg
}

const adderSrc = `/**
 * @brief Adder
 * @input a In A
 * @output sum Sum out
 */
module foo(input a, output sum);
endmodule
`

func TestGenerator_EndToEnd(t *testing.T) {
	g, cfg := testGenerator(t, nil)
	writeSource(t, cfg.SrcDir, "alu/foo.sv", adderSrc)

	run, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Snapshot().Status)

	md, err := os.ReadFile(filepath.Join(cfg.OutDir, "modules", "alu", "foo.md"))
	require.NoError(t, err)
	page := string(md)
	assert.True(t, strings.HasPrefix(page, "# Module `foo`\n"))
	assert.Contains(t, page, "## Description\n\nAdder")
	assert.Contains(t, page, "## Inputs\n\n| Name | Description |\n|------|-------------|\n| `a` | In A |")
	assert.Contains(t, page, "## Outputs\n\n| Name | Description |\n|------|-------------|\n| `sum` | Sum out |")

	entries, err := manifest.Read(g.ManifestPath())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "foo", entries[0].Name)
	assert.Equal(t, "Adder", entries[0].Brief)
	assert.Equal(t, "alu/foo.sv", entries[0].SourcePath)
	assert.Equal(t, "alu/foo.md", entries[0].DocPath)

	readme, err := os.ReadFile(g.IndexPath())
	require.NoError(t, err)
	assert.Contains(t, string(readme), "[foo](modules/alu/foo.html)")

	_, err = os.Stat(filepath.Join(cfg.OutDir, "modules", "alu", "foo.html"))
	assert.NoError(t, err, "html page should be written")
	_, err = os.Stat(filepath.Join(cfg.OutDir, "README.html"))
	assert.NoError(t, err, "html index should be written")
}

func TestGenerator_NameCollisions(t *testing.T) {
	g, cfg := testGenerator(t, nil)
	writeSource(t, cfg.SrcDir, "a/fifo.sv", "/** @brief First */\nmodule fifo; endmodule\n")
	writeSource(t, cfg.SrcDir, "b/fifo.sv", "/** @brief Second */\nmodule fifo; endmodule\n")
	writeSource(t, cfg.SrcDir, "b/more.sv", "module fifo; endmodule\n")

	_, err := g.Run(context.Background())
	require.NoError(t, err)

	entries, err := manifest.Read(g.ManifestPath())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a/fifo.md", entries[0].DocPath)
	assert.Equal(t, "b/fifo_2.md", entries[1].DocPath)
	assert.Equal(t, "b/fifo_3.md", entries[2].DocPath)
	for _, e := range entries {
		assert.Equal(t, "fifo", e.Name)
	}

	md, err := os.ReadFile(filepath.Join(cfg.OutDir, "modules", "b", "fifo_2.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# Module `fifo`\n"), "title keeps the definition name")
}

func TestGenerator_NameCollisionWithSuffixedName(t *testing.T) {
	g, cfg := testGenerator(t, func(c *config.Config) { c.HTML = false })
	writeSource(t, cfg.SrcDir, "fifo.sv",
		"/** @brief A */\nmodule foo; endmodule\n"+
			"/** @brief B */\nmodule foo; endmodule\n"+
			"/** @brief C */\nmodule foo_2; endmodule\n")

	_, err := g.Run(context.Background())
	require.NoError(t, err)

	entries, err := manifest.Read(g.ManifestPath())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	docs := map[string]bool{}
	for _, e := range entries {
		docs[e.DocPath] = true
	}
	assert.Len(t, docs, 3, "every definition gets its own page")
	assert.Equal(t, "foo_2_2.md", entries[2].DocPath)

	md, err := os.ReadFile(filepath.Join(cfg.OutDir, "modules", "foo_2.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Description\n\nB\n", "second foo keeps its page")
}

func TestGenerator_RemovesStalePages(t *testing.T) {
	g, cfg := testGenerator(t, nil)
	writeSource(t, cfg.SrcDir, "alu/foo.sv", adderSrc)
	_, err := g.Run(context.Background())
	require.NoError(t, err)

	writeSource(t, cfg.SrcDir, "alu/foo.sv", strings.Replace(adderSrc, "module foo", "module bar", 1))
	_, err = g.Run(context.Background())
	require.NoError(t, err)

	for _, name := range []string{"foo.md", "foo.html"} {
		_, err := os.Stat(filepath.Join(cfg.OutDir, "modules", "alu", name))
		assert.True(t, os.IsNotExist(err), "%s should be removed", name)
	}
	_, err = os.Stat(filepath.Join(cfg.OutDir, "modules", "alu", "bar.html"))
	assert.NoError(t, err)
}

func TestGenerator_SkipsFilesWithoutDefinitions(t *testing.T) {
	g, cfg := testGenerator(t, func(c *config.Config) { c.HTML = false })
	writeSource(t, cfg.SrcDir, "defs.svh", "/** @brief Macros */\n`define W 8\n")
	writeSource(t, cfg.SrcDir, "notes.txt", "module not_hdl;\n")
	writeSource(t, cfg.SrcDir, "top.sv", "module top; endmodule\nmodule sub; endmodule\n")

	run, err := g.Run(context.Background())
	require.NoError(t, err)

	p := run.Snapshot().Progress
	assert.Equal(t, 2, p.FilesTotal)
	assert.Equal(t, 1, p.FilesSkipped)
	assert.Equal(t, 2, p.Definitions)
	assert.Equal(t, 2, p.Undocumented)
	assert.Equal(t, 2, p.PagesWritten)

	_, err = os.Stat(filepath.Join(cfg.OutDir, "modules", "defs.md"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(cfg.OutDir, "modules", "top.html"))
	assert.True(t, os.IsNotExist(err), "html disabled")

	md, err := os.ReadFile(filepath.Join(cfg.OutDir, "modules", "sub.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Module `sub`\n", string(md))
}

func TestGenerator_ExcludeAndDOCX(t *testing.T) {
	g, cfg := testGenerator(t, func(c *config.Config) {
		c.Exclude = []string{"tb/**"}
		c.DOCX = true
		c.HTML = false
	})
	writeSource(t, cfg.SrcDir, "tb/tb_top.sv", "module tb_top; endmodule\n")
	writeSource(t, cfg.SrcDir, "core.sv", "/** @brief Core */\nmodule core; endmodule\n")

	_, err := g.Run(context.Background())
	require.NoError(t, err)

	entries, err := manifest.Read(g.ManifestPath())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "core", entries[0].Name)

	info, err := os.Stat(filepath.Join(cfg.OutDir, "modules", "core.docx"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestGenerator_MissingSourceDirFails(t *testing.T) {
	g, cfg := testGenerator(t, nil)
	require.NoError(t, os.RemoveAll(cfg.SrcDir))

	run, err := g.Run(context.Background())
	require.Error(t, err)
	snap := run.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "discovering", snap.Phase)
	assert.NotEmpty(t, snap.Progress.Errors)
	assert.Same(t, run, g.LastRun())
}

func TestGenerator_CancelledContext(t *testing.T) {
	g, cfg := testGenerator(t, nil)
	writeSource(t, cfg.SrcDir, "a.sv", adderSrc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"z.sv", "a/b.SV", "a/c.v", "a/readme.md", "tb/t.sv", "a/x_tb.sv"} {
		writeSource(t, root, rel, "")
	}

	files, err := Discover(root, []string{".sv", ".v"}, []string{"tb/**", "**/*_tb.sv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b.SV", "a/c.v", "z.sv"}, files)
}

func TestDiscover_ConfiguredExtensions(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"p.sva", "q.SVA", "m.sv"} {
		writeSource(t, root, rel, "")
	}

	files, err := Discover(root, []string{".sva"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p.sva", "q.SVA"}, files)
}

func TestSourcePrefix(t *testing.T) {
	assert.Equal(t, "src", sourcePrefix("./src"))
	assert.Equal(t, "rtl/core", sourcePrefix("rtl/core/"))
	assert.Equal(t, "", sourcePrefix("."))
}
