package folio

import (
	"github.com/shopspring/decimal"
)

// This file contains the valuation engine: pure functions turning quotes into
// the figures displayed to the user.

// ValuedHolding is a Holding enriched with its Quote and derived metrics.
//
// Value is expressed in the quote's native currency: foreign holdings are
// converted only when aggregated or displayed.
type ValuedHolding struct {
	Holding
	Quote         Quote
	Value         Money
	Change        Money
	ChangePercent Percent
	Failed        bool
}

// Currency returns the currency of the row's prices and value.
func (v ValuedHolding) Currency() string { return v.Value.Currency() }

// EvaluatedValue returns the row value in local currency.
func (v ValuedHolding) EvaluatedValue(rate decimal.Decimal, local string) Money {
	if v.Currency() == local {
		return v.Value
	}
	return v.Value.Convert(rate, local)
}

// ProfitPercent returns the row profit rate against its cost basis, Undefined on a zero cost basis.
func (v ValuedHolding) ProfitPercent(rate decimal.Decimal, local string) Percent {
	value := v.EvaluatedValue(rate, local)
	return Ratio(value.Sub(v.CostBasis).Value(), v.CostBasis.Value())
}

// ValueHoldings pairs each holding with the result at the same index and derives its metrics.
//
// A failed or missing result yields a Failed row with zeroed prices, in the
// currency the holding's market implies. The output always has one row per
// holding, in input order.
func ValueHoldings(holdings []Holding, results []QuoteResult, local string) []ValuedHolding {
	valued := make([]ValuedHolding, len(holdings))
	for i, h := range holdings {
		var r QuoteResult
		if i < len(results) {
			r = results[i]
		} else {
			r = QuoteResult{Err: errMissingResult}
		}
		valued[i] = valueHolding(h, r, local)
	}
	return valued
}

func valueHolding(h Holding, r QuoteResult, local string) ValuedHolding {
	if r.Failed() {
		zero := M(0, h.NativeCurrency(local))
		return ValuedHolding{
			Holding:       h,
			Quote:         Quote{Price: zero, PreviousClose: zero},
			Value:         zero,
			Change:        zero,
			ChangePercent: Undefined,
			Failed:        true,
		}
	}
	q := r.Quote
	change := q.Price.Sub(q.PreviousClose)
	return ValuedHolding{
		Holding:       h,
		Quote:         q,
		Value:         q.Price.Mul(h.Quantity),
		Change:        change,
		ChangePercent: Ratio(change.Value(), q.PreviousClose.Value()),
	}
}

// Summary aggregates a list of valued holdings in local currency.
type Summary struct {
	LocalTotal       Money   `json:"localTotal"`       // sum of local-currency rows
	ForeignTotal     Money   `json:"foreignTotal"`     // sum of USD rows, in USD
	ForeignConverted Money   `json:"foreignConverted"` // ForeignTotal at the exchange rate, full precision
	CostBasis        Money   `json:"costBasis"`        // sum of all cost bases, failed rows included
	TotalValue       Money   `json:"totalValue"`       // LocalTotal + ForeignConverted
	Profit           Money   `json:"profit"`           // TotalValue - CostBasis
	ProfitPercent    Percent `json:"profitPercent"`    // Profit / CostBasis
}

// Summarize computes the portfolio totals. Failed rows contribute zero value
// but their cost basis still counts.
func Summarize(valued []ValuedHolding, rate decimal.Decimal, local string) Summary {
	s := Summary{
		LocalTotal:   M(0, local),
		ForeignTotal: M(0, USD),
		CostBasis:    M(0, local),
	}
	for _, v := range valued {
		if v.Currency() == local {
			s.LocalTotal = s.LocalTotal.Add(v.Value)
		} else {
			s.ForeignTotal = s.ForeignTotal.Add(v.Value)
		}
		s.CostBasis = s.CostBasis.Add(v.CostBasis)
	}
	s.ForeignConverted = s.ForeignTotal.Convert(rate, local)
	s.TotalValue = s.LocalTotal.Add(s.ForeignConverted)
	s.Profit = s.TotalValue.Sub(s.CostBasis)
	s.ProfitPercent = Ratio(s.Profit.Value(), s.CostBasis.Value())
	return s
}

func (v ValuedHolding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("name", v.Name)
	w.Append("symbol", v.Symbol)
	w.Append("quantity", int64(v.Quantity))
	w.Append("market", v.Market.String())
	w.Append("costBasis", v.CostBasis)
	w.Append("currentPrice", v.Quote.Price)
	w.Append("previousClose", v.Quote.PreviousClose)
	w.Append("totalValue", v.Value)
	w.Append("priceChange", v.Change)
	w.Append("priceChangePercent", v.ChangePercent)
	w.Optional("failed", v.Failed)
	return w.MarshalJSON()
}
