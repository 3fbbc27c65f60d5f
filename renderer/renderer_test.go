package renderer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/folio"
	"github.com/shopspring/decimal"
)

func krw(v float64) folio.Money    { return folio.M(v, "KRW") }
func dollar(v float64) folio.Money { return folio.M(v, folio.USD) }

// testState returns a loaded state with one failed row.
func testState() *folio.PortfolioState {
	holdings := []folio.Holding{
		{Name: "Samsung Electronics", Symbol: "005930", Quantity: 375, Market: folio.Domestic, Exchange: folio.KOSPI, CostBasis: krw(30_000_000)},
		{Name: "Hanjung NCS", Symbol: "107640", Quantity: 21, Market: folio.Domestic, Exchange: folio.KOSDAQ, CostBasis: krw(1_000_000)},
		{Name: "Tesla", Symbol: "TSLA", Quantity: 130, Market: folio.Foreign, Exchange: folio.NASDAQ, CostBasis: krw(60_000_000)},
	}
	results := []folio.QuoteResult{
		{Quote: folio.Quote{Price: krw(80_000), PreviousClose: krw(79_000)}},
		{Err: errors.New("unreachable")},
		{Quote: folio.Quote{Price: dollar(300), PreviousClose: dollar(290)}},
	}
	rate := decimal.NewFromInt(1400)
	valued := folio.ValueHoldings(holdings, results, "KRW")
	return &folio.PortfolioState{
		LocalCurrency: "KRW",
		Holdings:      valued,
		Summary:       folio.Summarize(valued, rate, "KRW"),
		Rate:          rate,
		UpdatedAt:     time.Date(2026, time.October, 19, 14, 3, 5, 0, time.UTC),
	}
}

func TestChooseLayout(t *testing.T) {
	tests := []struct {
		width int
		want  Layout
	}{
		{0, Table},
		{40, Cards},
		{79, Cards},
		{80, Table},
		{200, Table},
	}
	for _, tt := range tests {
		if got := ChooseLayout(tt.width); got != tt.want {
			t.Errorf("ChooseLayout(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestParseLayout(t *testing.T) {
	for _, s := range []string{"", "auto", "table", "cards", "TABLE"} {
		if _, err := ParseLayout(s); err != nil {
			t.Errorf("ParseLayout(%q) error = %v", s, err)
		}
	}
	if _, err := ParseLayout("grid"); err == nil {
		t.Errorf("ParseLayout(%q) error = nil", "grid")
	}
}

func TestRenderHoldings_Table(t *testing.T) {
	got := RenderHoldings(testState(), Options{Layout: Table})

	for _, want := range []string{
		"| Holding | Price | Change | Cost basis | Value | Profit |",
		"| Samsung Electronics (375) | ₩80,000 | +₩1,000 | ₩30,000,000 | ₩30,000,000 | +0.00% |",
		"| Hanjung NCS (21) | - | - | ₩1,000,000 | - | - |",
		"| Tesla (130) | $300.00 | +$10.00 | ₩60,000,000 | $39,000.00 (₩54,600,000) | -9.00% |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderHoldings() missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderHoldings_PercentToggle(t *testing.T) {
	s := testState()
	amount := RenderHoldings(s, Options{Layout: Table})
	percent := RenderHoldings(s, Options{Layout: Table, Percent: true})

	if !strings.Contains(percent, "| ₩80,000 | +1.27% |") {
		t.Errorf("percent change missing in:\n%s", percent)
	}
	if !strings.Contains(percent, "| $300.00 | +3.45% |") {
		t.Errorf("foreign percent change missing in:\n%s", percent)
	}
	// the toggle only affects the change column
	if strings.Count(amount, "\n") != strings.Count(percent, "\n") || !strings.Contains(percent, "₩54,600,000") {
		t.Errorf("toggle changed more than the change column:\n%s\n%s", amount, percent)
	}
}

func TestRenderHoldings_Cards(t *testing.T) {
	got := RenderHoldings(testState(), Options{Width: 40})

	for _, want := range []string{
		"### Samsung Electronics",
		"375 shares at ₩80,000, +₩1,000 today",
		"21 shares, price unavailable",
		"- Value: $39,000.00 (₩54,600,000)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderHoldings() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "| Holding |") {
		t.Errorf("narrow width rendered a table:\n%s", got)
	}
}

func TestRenderHoldings_UndefinedPercent(t *testing.T) {
	h := folio.Holding{Name: "Seojin System", Symbol: "178320", Quantity: 30, CostBasis: krw(1_000_000)}
	valued := folio.ValueHoldings([]folio.Holding{h}, []folio.QuoteResult{{Quote: folio.Quote{Price: krw(5_000), PreviousClose: krw(0)}}}, "KRW")
	s := &folio.PortfolioState{LocalCurrency: "KRW", Holdings: valued, Rate: folio.DefaultExchangeRate}

	got := RenderHoldings(s, Options{Layout: Table, Percent: true})
	if !strings.Contains(got, "| ₩5,000 | - |") {
		t.Errorf("undefined percent not rendered as a placeholder:\n%s", got)
	}
	if strings.Contains(got, "NaN") || strings.Contains(got, "Inf") {
		t.Errorf("non finite number leaked:\n%s", got)
	}
}

func TestRenderSummary(t *testing.T) {
	s := testState()
	got := RenderSummary(s, Options{})

	for _, want := range []string{
		"- Domestic: ₩30,000,000",
		"- Foreign: $39,000.00 (₩54,600,000)",
		"- Cost basis: ₩91,000,000",
		"- Total value: ₩84,600,000",
		"- Profit: -₩6,400,000 (-7.03%)",
		"_USD/KRW 1400.00_",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderSummary() missing %q in:\n%s", want, got)
		}
	}

	s.RateFallback = true
	if got := RenderSummary(s, Options{}); !strings.Contains(got, "default rate") {
		t.Errorf("RenderSummary() does not mention the fallback rate:\n%s", got)
	}
}

func TestRenderSummary_OmitsEmptyTotals(t *testing.T) {
	h := folio.Holding{Name: "Tesla", Symbol: "TSLA", Quantity: 1, Market: folio.Foreign, CostBasis: krw(1)}
	valued := folio.ValueHoldings([]folio.Holding{h}, []folio.QuoteResult{{Quote: folio.Quote{Price: dollar(1), PreviousClose: dollar(1)}}}, "KRW")
	s := &folio.PortfolioState{LocalCurrency: "KRW", Holdings: valued, Summary: folio.Summarize(valued, folio.DefaultExchangeRate, "KRW"), Rate: folio.DefaultExchangeRate}

	if got := RenderSummary(s, Options{}); strings.Contains(got, "Domestic") {
		t.Errorf("RenderSummary() shows an empty domestic total:\n%s", got)
	}
}

func TestRenderPage(t *testing.T) {
	tests := []struct {
		name   string
		state  *folio.PortfolioState
		want   []string
		unwant []string
	}{
		{
			name:   "loading",
			state:  &folio.PortfolioState{},
			want:   []string{"# Portfolio", "_Loading prices..._"},
			unwant: []string{"## Summary", "| Holding |"},
		},
		{
			name:  "loaded",
			state: testState(),
			want:  []string{"_Updated 2026-10-19 14:03:05_", "| Holding |", "## Summary"},
		},
		{
			name: "failed cycle keeps data",
			state: func() *folio.PortfolioState {
				s := testState()
				s.Err = folio.ErrRefreshFailed
				return s
			}(),
			want: []string{"> **Price lookup failed, showing the last known prices.**", "| Samsung Electronics (375) |"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderPage(tt.state, Options{Layout: Table})
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("RenderPage() missing %q in:\n%s", want, got)
				}
			}
			for _, unwant := range tt.unwant {
				if strings.Contains(got, unwant) {
					t.Errorf("RenderPage() contains %q in:\n%s", unwant, got)
				}
			}
		})
	}
}

func TestRenderPage_Links(t *testing.T) {
	got := RenderHoldings(testState(), Options{Layout: Table, Links: true})
	if want := "[Samsung Electronics](https://finance.naver.com/item/main.naver?code=005930)"; !strings.Contains(got, want) {
		t.Errorf("RenderHoldings() missing link %q in:\n%s", want, got)
	}
}

func TestRenderNews(t *testing.T) {
	if got := RenderNews("  Under construction.  "); !strings.Contains(got, "# News\n\nUnder construction.") {
		t.Errorf("RenderNews() = %q", got)
	}
}

func TestHTML(t *testing.T) {
	got, err := HTML(RenderHoldings(testState(), Options{Layout: Table}))
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	for _, want := range []string{"<table>", "<th", "Samsung Electronics (375)"} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML() missing %q in:\n%s", want, got)
		}
	}
}
