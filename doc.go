// Package folio values a small personal stock portfolio.
//
// The holdings are a static Registry: each Holding has a quantity of shares,
// a market (domestic or foreign) and a cost basis in local currency.
//
// A Refresher runs refresh cycles. A cycle fetches the quote of every holding
// and the USD exchange rate concurrently through a Fetcher, waits for all of
// them, and publishes an immutable PortfolioState. A failed quote only marks
// its row as failed; a failed exchange rate falls back to a default rate.
//
// The valuation itself is pure: ValueHoldings derives per holding figures from
// quotes, and Summarize aggregates them in local currency. Amounts are exact
// decimals; rounding only happens when rendering.
package folio
