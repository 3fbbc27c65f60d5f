package folio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// ErrRefreshFailed is reported in PortfolioState.Err when a whole refresh cycle failed.
var ErrRefreshFailed = errors.New("price lookup failed")

var errMissingResult = errors.New("no quote result")

// Trigger is what started a refresh cycle.
type Trigger int

const (
	Initial Trigger = iota
	Manual
	Pull
)

func (t Trigger) String() string {
	switch t {
	case Initial:
		return "initial"
	case Manual:
		return "manual"
	case Pull:
		return "pull"
	default:
		return fmt.Sprintf("Trigger(%d)", int(t))
	}
}

// PortfolioState is the outcome of a refresh cycle. It is never modified once
// published: every cycle publishes a new one.
type PortfolioState struct {
	ID            string // refresh cycle id
	Trigger       Trigger
	LocalCurrency string
	Holdings      []ValuedHolding // nil until a cycle succeeded
	Summary       Summary
	Rate          decimal.Decimal
	RateFallback  bool      // Rate is the default, the fetch failed
	UpdatedAt     time.Time // when Holdings were computed
	Err           error     // page level failure, Holdings are from a previous cycle
}

// Loaded reports whether the state holds prices.
func (s *PortfolioState) Loaded() bool { return s.Holdings != nil }

// Refresher runs refresh cycles: it fetches every quote and the exchange rate
// concurrently, waits for all of them, and publishes a new PortfolioState.
//
// Cycles never overlap. A refresh requested while one is running is ignored.
type Refresher struct {
	registry    Registry
	fetcher     Fetcher
	defaultRate decimal.Decimal
	logger      *log.Logger
	now         func() time.Time // injectable clock for testing

	busy  atomic.Bool
	state atomic.Pointer[PortfolioState]
}

// NewRefresher creates a Refresher for the registry holdings.
// A non positive defaultRate means DefaultExchangeRate, a nil logger means log.DefaultLogger.
func NewRefresher(registry Registry, fetcher Fetcher, defaultRate decimal.Decimal, logger *log.Logger) *Refresher {
	if !defaultRate.IsPositive() {
		defaultRate = DefaultExchangeRate
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Refresher{
		registry:    registry,
		fetcher:     fetcher,
		defaultRate: defaultRate,
		logger:      logger,
		now:         time.Now,
	}
}

// Registry returns the holdings being tracked.
func (r *Refresher) Registry() Registry { return r.registry }

// Busy reports whether a cycle is running.
func (r *Refresher) Busy() bool { return r.busy.Load() }

// State returns the last published state, or an empty one before the first cycle.
func (r *Refresher) State() *PortfolioState {
	if s := r.state.Load(); s != nil {
		return s
	}
	return &PortfolioState{LocalCurrency: r.registry.LocalCurrency, Rate: r.defaultRate}
}

// Refresh runs one cycle and returns the published state and true.
// If a cycle is already running it returns the current state and false right away.
func (r *Refresher) Refresh(ctx context.Context, trigger Trigger) (*PortfolioState, bool) {
	if !r.busy.CompareAndSwap(false, true) {
		r.logger.Debug().Str("trigger", trigger.String()).Msg("refresh ignored, a cycle is running")
		return r.State(), false
	}
	defer r.busy.Store(false)
	return r.run(ctx, trigger), true
}

// Start runs one cycle in the background. It returns false if a cycle is
// already running. Otherwise the returned channel receives the published state
// and is closed.
func (r *Refresher) Start(ctx context.Context, trigger Trigger) (<-chan *PortfolioState, bool) {
	if !r.busy.CompareAndSwap(false, true) {
		r.logger.Debug().Str("trigger", trigger.String()).Msg("refresh ignored, a cycle is running")
		return nil, false
	}
	done := make(chan *PortfolioState, 1)
	go func() {
		defer close(done)
		var state *PortfolioState
		func() {
			defer r.busy.Store(false)
			state = r.run(ctx, trigger)
		}()
		done <- state
	}()
	return done, true
}

// run executes a cycle. The caller holds the busy flag.
func (r *Refresher) run(ctx context.Context, trigger Trigger) *PortfolioState {
	id := uuid.NewString()
	start := r.now()
	r.logger.Debug().Str("cycle", id).Str("trigger", trigger.String()).Int("holdings", len(r.registry.Holdings)).Msg("refresh started")

	results, rate, rateErr, err := r.fetchAll(ctx, id)
	if err != nil {
		// keep the previous figures on screen
		next := *r.State()
		next.ID, next.Trigger = id, trigger
		next.Err = fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		r.state.Store(&next)
		r.logger.Error().Str("cycle", id).Err(err).Msg("refresh failed")
		return &next
	}

	fallback := false
	if rateErr != nil {
		r.logger.Warn().Str("cycle", id).Err(rateErr).Str("rate", r.defaultRate.String()).Msg("exchange rate unavailable, using default")
		rate, fallback = r.defaultRate, true
	}

	local := r.registry.LocalCurrency
	valued := ValueHoldings(r.registry.Holdings, results, local)
	state := &PortfolioState{
		ID:            id,
		Trigger:       trigger,
		LocalCurrency: local,
		Holdings:      valued,
		Summary:       Summarize(valued, rate, local),
		Rate:          rate,
		RateFallback:  fallback,
		UpdatedAt:     r.now(),
	}
	r.state.Store(state)

	failed := 0
	for _, v := range valued {
		if v.Failed {
			failed++
		}
	}
	r.logger.Info().Str("cycle", id).Str("trigger", trigger.String()).Int("failed", failed).Dur("elapsed", r.now().Sub(start)).Msg("refresh done")
	return state
}

// fetchAll issues every fetch concurrently and waits for all of them to settle.
// One fetch failing never cancels the others. err is only set when the cycle
// as a whole cannot be trusted.
func (r *Refresher) fetchAll(ctx context.Context, id string) (results []QuoteResult, rate decimal.Decimal, rateErr, err error) {
	holdings := r.registry.Holdings
	results = make([]QuoteResult, len(holdings))

	var (
		wg    sync.WaitGroup
		once  sync.Once
		fault error
	)
	guard := func() {
		if v := recover(); v != nil {
			once.Do(func() { fault = fmt.Errorf("fetch panicked: %v", v) })
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer guard()
		rate, rateErr = r.fetcher.FetchExchangeRate(ctx)
		if rateErr == nil && !rate.IsPositive() {
			rateErr = fmt.Errorf("invalid exchange rate %s", rate)
		}
	}()

	for i, h := range holdings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer guard()
			results[i] = r.fetchQuote(ctx, id, h)
		}()
	}
	wg.Wait()

	if fault != nil {
		return nil, rate, rateErr, fault
	}
	if ctx.Err() != nil {
		return nil, rate, rateErr, ctx.Err()
	}
	return results, rate, rateErr, nil
}

func (r *Refresher) fetchQuote(ctx context.Context, id string, h Holding) QuoteResult {
	q, err := r.fetcher.FetchQuote(ctx, h)
	if err == nil {
		want := h.NativeCurrency(r.registry.LocalCurrency)
		if q.Price.Currency() != want || q.PreviousClose.Currency() != want {
			err = fmt.Errorf("quote for %s is in %q, expected %q", h.Symbol, q.Price.Currency(), want)
		}
	}
	if err != nil {
		r.logger.Warn().Str("cycle", id).Str("symbol", h.Symbol).Err(err).Msg("quote unavailable")
		return QuoteResult{Err: err}
	}
	return QuoteResult{Quote: q}
}
