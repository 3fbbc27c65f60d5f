package folio

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultExchangeRate is the local currency per USD used when the rate cannot be fetched.
var DefaultExchangeRate = decimal.NewFromInt(1400)

// Quote is a point-in-time price observation for a holding.
// Both prices are in the holding's native currency.
type Quote struct {
	Price         Money
	PreviousClose Money
}

// Currency returns the currency the quote is expressed in.
func (q Quote) Currency() string { return q.Price.Currency() }

// QuoteResult is the outcome of fetching one holding's quote: a Quote, or the error
// explaining why there is none.
type QuoteResult struct {
	Quote Quote
	Err   error
}

// Failed reports whether the fetch failed.
func (r QuoteResult) Failed() bool { return r.Err != nil }

// Fetcher retrieves market data for holdings.
//
// FetchQuote receives the whole Holding since building the market ticker needs
// the market and exchange, not only the symbol.
type Fetcher interface {
	FetchQuote(ctx context.Context, h Holding) (Quote, error)
	FetchExchangeRate(ctx context.Context) (decimal.Decimal, error)
}
