// Package renderer renders a portfolio state to markdown, as a table or as
// cards, and converts markdown pages to HTML.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"

	"github.com/etnz/folio"
)

//go:embed templates/*.md
var templates embed.FS

// Layout selects how holdings are laid out.
type Layout int

const (
	Auto  Layout = iota // picked from the available width
	Table               // one row per holding
	Cards               // one block per holding, for narrow screens
)

// NarrowWidth is the width, in columns, below which Auto picks Cards.
const NarrowWidth = 80

func (l Layout) String() string {
	switch l {
	case Table:
		return "table"
	case Cards:
		return "cards"
	default:
		return "auto"
	}
}

// ParseLayout parses "auto", "table" or "cards".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "table":
		return Table, nil
	case "cards", "card":
		return Cards, nil
	}
	return Auto, fmt.Errorf("unknown layout %q, expected auto, table or cards", s)
}

// ChooseLayout returns the layout suited to a display width. Unknown widths get a Table.
func ChooseLayout(width int) Layout {
	if width > 0 && width < NarrowWidth {
		return Cards
	}
	return Table
}

// Options holds presentation choices. They never affect the underlying figures.
type Options struct {
	Layout  Layout
	Percent bool // show the daily change in percent instead of an amount
	Width   int  // display width used by Auto, 0 if unknown
	Links   bool // link holding names to their market information page
}

func (o Options) layout() Layout {
	if o.Layout == Auto {
		return ChooseLayout(o.Width)
	}
	return o.Layout
}

// RenderPage renders the whole dashboard page: title, holdings and summary.
func RenderPage(s *folio.PortfolioState, opts Options) string {
	partials := map[string]string{
		"page_title":   "page_title.md",
		"holdings":     holdingsTemplate(opts.layout()),
		"page_summary": "page_summary.md",
	}
	return renderTemplate("page", "page.md", partials, NewPage(s, opts))
}

// RenderTitle renders the page heading, the update time and the page level error.
func RenderTitle(s *folio.PortfolioState, opts Options) string {
	return renderTemplate("page_title", "page_title.md", nil, NewPage(s, opts))
}

// RenderHoldings renders the holdings only, in the layout selected by opts.
func RenderHoldings(s *folio.PortfolioState, opts Options) string {
	return renderTemplate("holdings", holdingsTemplate(opts.layout()), nil, NewPage(s, opts))
}

// RenderSummary renders the portfolio totals.
func RenderSummary(s *folio.PortfolioState, opts Options) string {
	return renderTemplate("page_summary", "page_summary.md", nil, NewPage(s, opts))
}

// RenderNews wraps a news digest into a page.
func RenderNews(digest string) string {
	return renderTemplate("news", "news.md", nil, strings.TrimSpace(digest))
}

func holdingsTemplate(l Layout) string {
	if l == Cards {
		return "holdings_cards.md"
	}
	return "holdings_table.md"
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, path.Join("templates", mainFile))
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, path.Join("templates", file))
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
