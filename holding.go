package folio

import (
	"errors"
	"fmt"
	"strings"
)

// USD is the currency of foreign quotes.
const USD = "USD"

// KoreanWon is the only supported local currency: domestic tickers are listed
// in Seoul and the exchange rate is quoted in won per dollar.
const KoreanWon = "KRW"

// Market tells whether a holding trades on the local market or abroad.
type Market int

const (
	Domestic Market = iota
	Foreign
)

func (m Market) String() string {
	switch m {
	case Domestic:
		return "domestic"
	case Foreign:
		return "foreign"
	default:
		return fmt.Sprintf("Market(%d)", int(m))
	}
}

// ParseMarket parses "domestic" or "foreign", case insensitive.
func ParseMarket(s string) (Market, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "domestic", "kr", "local":
		return Domestic, nil
	case "foreign", "us":
		return Foreign, nil
	}
	return 0, fmt.Errorf("unknown market %q", s)
}

// Exchange identifies the sub-exchange a symbol is listed on.
type Exchange string

const (
	KOSPI  Exchange = "KS"
	KOSDAQ Exchange = "KQ"
	NASDAQ Exchange = "NASDAQ"
	NYSE   Exchange = "NYSE"
)

// ParseExchange parses an exchange code, case insensitive.
// The market names KOSPI and KOSDAQ are accepted for KS and KQ.
func ParseExchange(s string) (Exchange, error) {
	switch e := Exchange(strings.ToUpper(strings.TrimSpace(s))); e {
	case KOSPI, "KOSPI":
		return KOSPI, nil
	case KOSDAQ, "KOSDAQ":
		return KOSDAQ, nil
	case NASDAQ, NYSE:
		return e, nil
	}
	return "", fmt.Errorf("unknown exchange %q, want one of KS, KQ, NASDAQ, NYSE", s)
}

// Market returns the market the exchange belongs to.
func (e Exchange) Market() (Market, bool) {
	switch e {
	case KOSPI, KOSDAQ:
		return Domestic, true
	case NASDAQ, NYSE:
		return Foreign, true
	}
	return 0, false
}

// Holding is a configured position.
// CostBasis is always expressed in the registry's local currency, whatever the market.
type Holding struct {
	Name      string
	Symbol    string
	Quantity  Quantity
	Market    Market
	Exchange  Exchange
	CostBasis Money
}

// NativeCurrency returns the currency the holding is quoted in.
func (h Holding) NativeCurrency(local string) string {
	if h.Market == Foreign {
		return USD
	}
	return local
}

// InfoURL returns a page with market information about the holding.
func (h Holding) InfoURL() string {
	if h.Market == Foreign {
		return "https://m.stock.naver.com/worldstock/stock/" + h.Symbol + ".O/total"
	}
	return "https://finance.naver.com/item/main.naver?code=" + h.Symbol
}

// Registry is the static list of tracked holdings.
type Registry struct {
	LocalCurrency string
	Holdings      []Holding
}

// DefaultRegistry returns the built-in portfolio.
func DefaultRegistry() Registry {
	krw := func(v int64) Money { return M(v, "KRW") }
	return Registry{
		LocalCurrency: "KRW",
		Holdings: []Holding{
			{Name: "Samsung Electronics", Symbol: "005930", Quantity: 375, Market: Domestic, Exchange: KOSPI, CostBasis: krw(30_000_000)},
			{Name: "Samsung SDI", Symbol: "006400", Quantity: 185, Market: Domestic, Exchange: KOSPI, CostBasis: krw(44_500_000)},
			{Name: "Hanjung NCS", Symbol: "107640", Quantity: 21, Market: Domestic, Exchange: KOSDAQ, CostBasis: krw(1_000_000)},
			{Name: "Seojin System", Symbol: "178320", Quantity: 30, Market: Domestic, Exchange: KOSDAQ, CostBasis: krw(1_000_000)},
			{Name: "Tesla", Symbol: "TSLA", Quantity: 130, Market: Foreign, Exchange: NASDAQ, CostBasis: krw(60_000_000)},
		},
	}
}

// TotalCostBasis returns the sum of all cost bases.
func (r Registry) TotalCostBasis() Money {
	total := M(0, r.LocalCurrency)
	for _, h := range r.Holdings {
		total = total.Add(h.CostBasis)
	}
	return total
}

// Validate returns an error listing every configuration problem.
func (r Registry) Validate() error {
	var errs error
	switch r.LocalCurrency {
	case "":
		errs = errors.Join(errs, errors.New("local currency is not set"))
	case KoreanWon:
	default:
		errs = errors.Join(errs, fmt.Errorf("local currency must be %s, got %q", KoreanWon, r.LocalCurrency))
	}
	if len(r.Holdings) == 0 {
		errs = errors.Join(errs, errors.New("no holdings configured"))
	}
	seen := make(map[string]bool)
	total := M(0, r.LocalCurrency)
	for i, h := range r.Holdings {
		if h.Symbol == "" {
			errs = errors.Join(errs, fmt.Errorf("holding #%d has no symbol", i+1))
		}
		if seen[h.Symbol] {
			errs = errors.Join(errs, fmt.Errorf("holding %q is declared twice", h.Symbol))
		}
		seen[h.Symbol] = true
		if !h.Quantity.IsPositive() {
			errs = errors.Join(errs, fmt.Errorf("holding %q: quantity must be positive, got %d", h.Symbol, h.Quantity))
		}
		if h.Exchange != "" {
			if m, ok := h.Exchange.Market(); !ok {
				errs = errors.Join(errs, fmt.Errorf("holding %q: unknown exchange %q", h.Symbol, h.Exchange))
			} else if m != h.Market {
				errs = errors.Join(errs, fmt.Errorf("holding %q: exchange %s is not a %s exchange", h.Symbol, h.Exchange, h.Market))
			}
		}
		if h.CostBasis.IsNegative() {
			errs = errors.Join(errs, fmt.Errorf("holding %q: cost basis must not be negative", h.Symbol))
		}
		if h.CostBasis.Currency() != r.LocalCurrency {
			errs = errors.Join(errs, fmt.Errorf("holding %q: cost basis must be in %s, got %q", h.Symbol, r.LocalCurrency, h.CostBasis.Currency()))
			continue
		}
		total = total.Add(h.CostBasis)
	}
	if len(r.Holdings) > 0 && total.IsZero() {
		errs = errors.Join(errs, errors.New("total cost basis must be positive"))
	}
	return errs
}
