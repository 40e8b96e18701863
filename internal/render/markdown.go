package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgallion1/svdoc/internal/docrecord"
)

// DefaultCodeLang tags fenced code blocks when no language is configured.
const DefaultCodeLang = "systemverilog"

// MarkdownOptions controls Markdown rendering.
type MarkdownOptions struct {
	CodeLang string // Info string of fenced code blocks
}

// Markdown renders rec as a Markdown page titled with name, using the default
// options.
func Markdown(name string, rec docrecord.DocRecord) string {
	return MarkdownWith(name, rec, MarkdownOptions{})
}

// MarkdownWith renders rec as a Markdown page. Sections with no content are
// omitted; the remaining ones are separated by exactly one blank line.
func MarkdownWith(name string, rec docrecord.DocRecord, opts MarkdownOptions) string {
	lang := opts.CodeLang
	if lang == "" {
		lang = DefaultCodeLang
	}

	sections := []string{fmt.Sprintf("# %s `%s`", kindTitle(rec.Kind), name)}

	if rec.Brief != "" {
		sections = append(sections, "## Description", rec.Brief)
	}
	if rec.Details != "" {
		sections = append(sections, rec.Details)
	}
	if rec.Note != "" {
		sections = append(sections, "**Note:** "+rec.Note)
	}
	if len(rec.Params) > 0 {
		items := make([]string, len(rec.Params))
		for i, p := range rec.Params {
			items[i] = fmt.Sprintf("- `%s`: %s", p.Name, p.Description)
		}
		sections = append(sections, "## Parameters", strings.Join(items, "\n"))
	}

	sections = appendTable(sections, "Inputs", rec.Inputs)
	sections = appendTable(sections, "Outputs", rec.Outputs)
	sections = appendTable(sections, "Inouts", rec.Inouts)

	sections = appendFences(sections, "Code examples", lang, rec.Code)
	sections = appendFences(sections, "Usage examples", lang, rec.Examples)

	return strings.Join(sections, "\n\n") + "\n"
}

func appendTable(sections []string, title string, items []docrecord.Item) []string {
	if len(items) == 0 {
		return sections
	}
	rows := make([]string, 0, len(items)+2)
	rows = append(rows, "| Name | Description |", "|------|-------------|")
	for _, it := range items {
		rows = append(rows, fmt.Sprintf("| `%s` | %s |", it.Name, tableCell(it.Description)))
	}
	return append(sections, "## "+title, strings.Join(rows, "\n"))
}

func appendFences(sections []string, title, lang string, snippets []string) []string {
	if len(snippets) == 0 {
		return sections
	}
	fences := make([]string, len(snippets))
	for i, s := range snippets {
		fence := fenceFor(s)
		fences[i] = fence + lang + "\n" + s + "\n" + fence
	}
	return append(sections, "## "+title, strings.Join(fences, "\n\n"))
}

// fenceFor returns a backtick fence longer than any backtick run in s, so
// the snippet cannot close it early.
func fenceFor(s string) string {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

// tableCell keeps a multi-line description inside its table row.
func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}

func kindTitle(kind string) string {
	if kind == "" {
		kind = "module"
	}
	return cases.Title(language.English).String(kind)
}
