package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/svdoc/internal/docrecord"
)

func TestHTMLRenderer_TitleFromHeading(t *testing.T) {
	r := NewHTMLRenderer()
	md := Markdown("adder", docrecord.DocRecord{
		Brief:  "Adder",
		Inputs: []docrecord.Item{{Name: "a", Description: "In A"}},
	})
	out, err := r.Render([]byte(md), "adder")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page := string(out)

	if !strings.Contains(page, "<title>Module adder</title>") {
		t.Errorf("expected title from h1, got:\n%s", page)
	}
	if !strings.Contains(page, "<table>") {
		t.Errorf("expected GFM table to render, got:\n%s", page)
	}
	if !strings.Contains(page, "<code>a</code>") {
		t.Errorf("expected port name as code, got:\n%s", page)
	}
}

func TestHTMLRenderer_FallbackTitle(t *testing.T) {
	r := NewHTMLRenderer()
	out, err := r.Render([]byte("plain text only\n"), "README")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "<title>README</title>") {
		t.Errorf("expected fallback title, got:\n%s", out)
	}
}

func TestHTMLRenderer_RewritesMarkdownLinks(t *testing.T) {
	r := NewHTMLRenderer()
	md := "[local](modules/alu/adder.md) [anchor](other.md#ports) [remote](https://example.com/x.md) [html](modules/a.html)\n"
	out, err := r.Render([]byte(md), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page := string(out)
	for _, want := range []string{
		`href="modules/alu/adder.html"`,
		`href="other.html#ports"`,
		`href="https://example.com/x.md"`,
		`href="modules/a.html"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("expected %s in:\n%s", want, page)
		}
	}
}

func TestHTMLRenderer_CodeFence(t *testing.T) {
	r := NewHTMLRenderer()
	md := Markdown("m", docrecord.DocRecord{Code: []string{"assign y = a & b;"}})
	out, err := r.Render([]byte(md), "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(out, []byte(`class="language-systemverilog"`)) {
		t.Errorf("expected language class on code block, got:\n%s", out)
	}
}

func TestWriteDOCX(t *testing.T) {
	var buf bytes.Buffer
	rec := docrecord.DocRecord{
		Name:   "adder",
		Brief:  "Adder",
		Inputs: []docrecord.Item{{Name: "a", Description: "In A"}},
		Code:   []string{"assign y = a;"},
	}
	if err := WriteDOCX(&buf, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A .docx file is a zip archive.
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Errorf("expected zip output, got %d bytes starting %q", buf.Len(), buf.Bytes()[:min(4, buf.Len())])
	}
}
