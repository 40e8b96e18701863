package render

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.5rem; }
th { background: #f0f0f0; }
a { color: #0366d6; text-decoration: none; }
a:hover { text-decoration: underline; }
code { background-color: #f5f5f5; padding: 2px 4px; border-radius: 4px; }
pre { background-color: #f5f5f5; padding: 1rem; overflow-x: auto; border-radius: 4px; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

// HTMLRenderer converts generated Markdown into standalone HTML pages.
type HTMLRenderer struct {
	md goldmark.Markdown
}

// NewHTMLRenderer returns a renderer with GFM tables, fenced code and
// heading anchors enabled.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			// Table cells carry <br> for multi-line descriptions.
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Render converts Markdown into a full HTML document. The page title is the
// text of the first <h1>, or fallbackTitle when there is none. Relative links
// to .md files are rewritten to their .html counterparts.
func (r *HTMLRenderer) Render(md []byte, fallbackTitle string) ([]byte, error) {
	var body bytes.Buffer
	if err := r.md.Convert(md, &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	nodes, err := html.ParseFragment(&body, &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := ""
	var rewritten bytes.Buffer
	for _, n := range nodes {
		if title == "" {
			title = firstHeading(n)
		}
		rewriteLinks(n)
		if err := html.Render(&rewritten, n); err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
	}
	if title == "" {
		title = fallbackTitle
	}

	var out bytes.Buffer
	err = page.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(rewritten.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return out.Bytes(), nil
}

func firstHeading(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.H1 {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := firstHeading(c); t != "" {
			return t
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func rewriteLinks(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		for i, a := range n.Attr {
			if a.Key == "href" {
				n.Attr[i].Val = htmlLink(a.Val)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteLinks(c)
	}
}

// htmlLink maps a relative link to a Markdown page onto the generated HTML
// page. Absolute URLs and anchors are left alone.
func htmlLink(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() || u.Host != "" || strings.HasPrefix(u.Path, "/") {
		return href
	}
	if !strings.HasSuffix(u.Path, ".md") {
		return href
	}
	u.Path = strings.TrimSuffix(u.Path, ".md") + ".html"
	return u.String()
}
