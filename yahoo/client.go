// Package yahoo fetches quotes and the USD exchange rate from the Yahoo
// Finance chart API, directly or through the dashboard's same-origin relay.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/etnz/folio"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

const (
	// DefaultChartURL is the chart endpoint, %s receives the ticker.
	DefaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=1d"

	// ExchangeTicker is the ticker of the local currency per USD rate.
	ExchangeTicker = "KRW=X"

	// DefaultExchangeURL is the chart of ExchangeTicker.
	DefaultExchangeURL = "https://query1.finance.yahoo.com/v8/finance/chart/" + ExchangeTicker + "?interval=1d&range=1d"

	// DefaultUserAgent is sent with every request, the API rejects requests without one.
	DefaultUserAgent = "Mozilla/5.0 (compatible; folio/1.0)"
)

// Client implements folio.Fetcher on top of the chart API.
type Client struct {
	ChartURL    string // fmt template, %s receives the ticker
	ExchangeURL string // full address of the exchange rate chart
	HTTP        *http.Client
}

// New returns a Client calling the chart API directly.
func New(logger *log.Logger, userAgent string, timeout time.Duration) *Client {
	return &Client{
		ChartURL:    DefaultChartURL,
		ExchangeURL: DefaultExchangeURL,
		HTTP:        newHTTPClient(logger, userAgent, timeout),
	}
}

// Relay returns a Client fetching through a relay server at base, as served by
// "pf serve": /api/stock/{ticker} and /api/exchange.
func Relay(base string, logger *log.Logger, userAgent string, timeout time.Duration) *Client {
	base = strings.TrimSuffix(base, "/")
	return &Client{
		ChartURL:    base + "/api/stock/%s",
		ExchangeURL: base + "/api/exchange",
		HTTP:        newHTTPClient(logger, userAgent, timeout),
	}
}

// FetchError reports a failed lookup.
type FetchError struct {
	Op     string // "quote" or "exchange rate"
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("yahoo %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("yahoo %s %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Tickers returns the tickers to try for a holding, in order.
// Domestic symbols carry a sub-exchange suffix: the holding's own exchange first,
// the other one as a fallback. Foreign symbols are used as is.
func Tickers(h folio.Holding) []string {
	if h.Market == folio.Foreign {
		return []string{h.Symbol}
	}
	primary, alternate := folio.KOSPI, folio.KOSDAQ
	if h.Exchange == folio.KOSDAQ {
		primary, alternate = alternate, primary
	}
	return []string{h.Symbol + "." + string(primary), h.Symbol + "." + string(alternate)}
}

// FetchQuote fetches the holding quote, trying each of its Tickers until one succeeds.
func (c *Client) FetchQuote(ctx context.Context, h folio.Holding) (folio.Quote, error) {
	var errs []error
	for _, ticker := range Tickers(h) {
		q, err := c.quote(ctx, ticker)
		if err == nil {
			return q, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", ticker, err))
		if ctx.Err() != nil {
			break
		}
	}
	return folio.Quote{}, &FetchError{Op: "quote", Symbol: h.Symbol, Err: errors.Join(errs...)}
}

// FetchExchangeRate fetches the current local currency per USD rate.
func (c *Client) FetchExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	jobj, err := c.jwget(ctx, c.ExchangeURL)
	if err != nil {
		return decimal.Zero, &FetchError{Op: "exchange rate", Err: err}
	}
	m, err := parseMeta(jobj)
	if err != nil {
		return decimal.Zero, &FetchError{Op: "exchange rate", Err: err}
	}
	if !m.price.IsPositive() {
		return decimal.Zero, &FetchError{Op: "exchange rate", Err: fmt.Errorf("rate must be positive, got %s", m.price)}
	}
	return m.price, nil
}

// Chart returns the raw chart document of a ticker. It is used by the relay.
func (c *Client) Chart(ctx context.Context, ticker string) ([]byte, error) {
	body, err := c.get(ctx, c.chartURL(ticker))
	if err != nil {
		return nil, &FetchError{Op: "chart", Symbol: ticker, Err: err}
	}
	return body, nil
}

// ExchangeChart returns the raw chart document of the exchange rate.
func (c *Client) ExchangeChart(ctx context.Context) ([]byte, error) {
	body, err := c.get(ctx, c.ExchangeURL)
	if err != nil {
		return nil, &FetchError{Op: "chart", Symbol: ExchangeTicker, Err: err}
	}
	return body, nil
}

func (c *Client) quote(ctx context.Context, ticker string) (folio.Quote, error) {
	jobj, err := c.jwget(ctx, c.chartURL(ticker))
	if err != nil {
		return folio.Quote{}, err
	}
	m, err := parseMeta(jobj)
	if err != nil {
		return folio.Quote{}, err
	}
	if m.currency == "" {
		return folio.Quote{}, errors.New("no currency in chart meta")
	}
	return folio.Quote{
		Price:         folio.M(m.price, m.currency),
		PreviousClose: folio.M(m.previousClose, m.currency),
	}, nil
}

func (c *Client) chartURL(ticker string) string {
	return fmt.Sprintf(c.ChartURL, url.PathEscape(ticker))
}
