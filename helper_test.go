package folio

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// KRW is a helper for test to create won money from const
func KRW(v float64) Money { return M(v, "KRW") }

// Dollar is a helper for test to create usd money from const
func Dollar(v float64) Money { return M(v, USD) }

func rate(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var (
	samsung = Holding{Name: "Samsung Electronics", Symbol: "005930", Quantity: 375, Market: Domestic, Exchange: KOSPI, CostBasis: KRW(30_000_000)}
	hanjung = Holding{Name: "Hanjung NCS", Symbol: "107640", Quantity: 21, Market: Domestic, Exchange: KOSDAQ, CostBasis: KRW(1_000_000)}
	tesla   = Holding{Name: "Tesla", Symbol: "TSLA", Quantity: 130, Market: Foreign, Exchange: NASDAQ, CostBasis: KRW(60_000_000)}
)

var errNetwork = errors.New("network unreachable")

// stubFetcher serves canned quotes. Symbols without a quote fail.
type stubFetcher struct {
	quotes  map[string]Quote
	rate    decimal.Decimal
	rateErr error

	// if set, every fetch blocks until release is closed.
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *stubFetcher) wait(ctx context.Context) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.release == nil {
		return nil
	}
	select {
	case <-f.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *stubFetcher) FetchQuote(ctx context.Context, h Holding) (Quote, error) {
	if err := f.wait(ctx); err != nil {
		return Quote{}, err
	}
	q, ok := f.quotes[h.Symbol]
	if !ok {
		return Quote{}, errNetwork
	}
	return q, nil
}

func (f *stubFetcher) FetchExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	if err := f.wait(ctx); err != nil {
		return decimal.Zero, err
	}
	return f.rate, f.rateErr
}

func (f *stubFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
