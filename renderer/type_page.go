package renderer

import (
	"strings"

	"github.com/etnz/folio"
)

// placeholder is printed in cells whose figure is unavailable.
const placeholder = "-"

// Page is the view of a PortfolioState, with every figure already formatted.
type Page struct {
	Title   string
	Updated string // empty until prices are loaded
	Error   string // page level error
	Loaded  bool
	Rows    []Row
	Summary SummaryView
}

// Row is one holding.
type Row struct {
	Name      string // markdown, may be a link
	Quantity  string
	Price     string
	Change    string // amount or percent, following Options.Percent
	CostBasis string
	Value     string
	Profit    string
	Failed    bool
}

// SummaryView holds the portfolio totals. Empty strings are omitted when rendered.
type SummaryView struct {
	LocalTotal       string
	ForeignTotal     string
	ForeignConverted string
	CostBasis        string
	TotalValue       string
	Profit           string
	ProfitPercent    string
	Rate             string
}

// NewPage formats a PortfolioState for rendering.
func NewPage(s *folio.PortfolioState, opts Options) *Page {
	p := &Page{Title: "Portfolio", Loaded: s.Loaded()}
	if s.Err != nil {
		p.Error = "Price lookup failed, showing the last known prices."
		if !s.Loaded() {
			p.Error = "Price lookup failed."
		}
	}
	if !s.Loaded() {
		return p
	}
	p.Updated = s.UpdatedAt.Format("2006-01-02 15:04:05")

	local := s.LocalCurrency
	for _, v := range s.Holdings {
		p.Rows = append(p.Rows, newRow(v, s, opts))
	}

	sum := s.Summary
	if sum.LocalTotal.IsPositive() {
		p.Summary.LocalTotal = sum.LocalTotal.String()
	}
	if sum.ForeignTotal.IsPositive() {
		p.Summary.ForeignTotal = sum.ForeignTotal.String()
		p.Summary.ForeignConverted = sum.ForeignConverted.Whole().String()
	}
	p.Summary.CostBasis = sum.CostBasis.String()
	p.Summary.TotalValue = sum.TotalValue.Whole().String()
	p.Summary.Profit = sum.Profit.Whole().SignedString()
	p.Summary.ProfitPercent = sum.ProfitPercent.SignedString()
	p.Summary.Rate = "USD/" + local + " " + s.Rate.StringFixed(2)
	if s.RateFallback {
		p.Summary.Rate += " (default rate, live rate unavailable)"
	}
	return p
}

func newRow(v folio.ValuedHolding, s *folio.PortfolioState, opts Options) Row {
	r := Row{
		Name:      escape(v.Name),
		Quantity:  v.Quantity.String(),
		CostBasis: v.CostBasis.String(),
		Failed:    v.Failed,
	}
	if r.Name == "" {
		r.Name = escape(v.Symbol)
	}
	if opts.Links {
		r.Name = "[" + r.Name + "](" + v.InfoURL() + ")"
	}
	if v.Failed {
		r.Price, r.Change, r.Value, r.Profit = placeholder, placeholder, placeholder, placeholder
		return r
	}

	r.Price = v.Quote.Price.String()
	if opts.Percent {
		r.Change = v.ChangePercent.SignedString()
	} else {
		r.Change = v.Change.SignedString()
	}
	r.Value = v.Value.String()
	if v.Currency() != s.LocalCurrency {
		r.Value += " (" + v.EvaluatedValue(s.Rate, s.LocalCurrency).Whole().String() + ")"
	}
	r.Profit = v.ProfitPercent(s.Rate, s.LocalCurrency).SignedString()
	return r
}

// escape makes s safe inside a markdown table cell.
func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
