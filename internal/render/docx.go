package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/svdoc/internal/docrecord"
)

// Font sizes in half-points.
const (
	docxTitleSize   = "36"
	docxHeadingSize = "28"
	docxCodeColor   = "404040"
)

// WriteDOCX writes rec as a Word document with the same section layout as the
// Markdown page.
func WriteDOCX(w io.Writer, rec docrecord.DocRecord) error {
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().AddText(fmt.Sprintf("%s %s", kindTitle(rec.Kind), rec.Name)).Bold().Size(docxTitleSize)

	heading := func(title string) {
		doc.AddParagraph().AddText(title).Bold().Size(docxHeadingSize)
	}
	lines := func(text string) {
		for _, l := range strings.Split(text, "\n") {
			doc.AddParagraph().AddText(l)
		}
	}
	items := func(title string, list []docrecord.Item) {
		if len(list) == 0 {
			return
		}
		heading(title)
		for _, it := range list {
			p := doc.AddParagraph()
			p.AddText(it.Name).Bold()
			if it.Description != "" {
				p.AddText(": " + strings.ReplaceAll(it.Description, "\n", " "))
			}
		}
	}
	snippets := func(title string, list []string) {
		if len(list) == 0 {
			return
		}
		heading(title)
		for _, s := range list {
			for _, l := range strings.Split(s, "\n") {
				doc.AddParagraph().AddText(l).Color(docxCodeColor)
			}
			doc.AddParagraph()
		}
	}

	if rec.Brief != "" {
		heading("Description")
		lines(rec.Brief)
	}
	if rec.Details != "" {
		lines(rec.Details)
	}
	if rec.Note != "" {
		p := doc.AddParagraph()
		p.AddText("Note: ").Bold()
		p.AddText(strings.ReplaceAll(rec.Note, "\n", " "))
	}
	items("Parameters", rec.Params)
	items("Inputs", rec.Inputs)
	items("Outputs", rec.Outputs)
	items("Inouts", rec.Inouts)
	snippets("Code examples", rec.Code)
	snippets("Usage examples", rec.Examples)

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}
