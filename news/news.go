// Package news provides the content of the news page.
package news

import (
	"context"

	"github.com/etnz/folio"
)

// Provider writes a markdown digest of the news about the holdings.
type Provider interface {
	Headlines(ctx context.Context, holdings []folio.Holding) (string, error)
}

// PlaceholderText is shown while no news source is configured.
const PlaceholderText = "🚧 This page is under construction.\n\nLLM curated news about your holdings is coming soon."

// Placeholder is the Provider used when no news source is configured.
type Placeholder struct{}

func (Placeholder) Headlines(context.Context, []folio.Holding) (string, error) {
	return PlaceholderText, nil
}
