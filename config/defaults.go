package config

import "github.com/etnz/folio/yahoo"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 4240,
			Host: "localhost",
		},
		Quotes: QuotesConfig{
			ChartURL:    yahoo.DefaultChartURL,
			ExchangeURL: yahoo.DefaultExchangeURL,
			UserAgent:   yahoo.DefaultUserAgent,
			Timeout:     "10s",
		},
		FX: FXConfig{
			DefaultRate: 1400,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		News: NewsConfig{},
		Portfolio: PortfolioConfig{
			LocalCurrency: "KRW",
		},
	}
}
