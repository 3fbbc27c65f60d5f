// Package config loads the folio configuration from TOML files and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/folio"
	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Quotes    QuotesConfig    `toml:"quotes"`
	FX        FXConfig        `toml:"fx"`
	Logging   LoggingConfig   `toml:"logging"`
	News      NewsConfig      `toml:"news"`
	Portfolio PortfolioConfig `toml:"portfolio"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// Addr returns the host:port address to listen on.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// QuotesConfig contains the quote API settings.
type QuotesConfig struct {
	RelayURL    string `toml:"relay_url"` // fetch through a folio relay instead of the chart API
	ChartURL    string `toml:"chart_url"`
	ExchangeURL string `toml:"exchange_url"`
	UserAgent   string `toml:"user_agent"`
	Timeout     string `toml:"timeout"`
}

// TimeoutDuration returns the parsed request timeout.
func (q QuotesConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(q.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// FXConfig contains exchange rate settings.
type FXConfig struct {
	DefaultRate float64 `toml:"default_rate"` // used when the live rate is unavailable
}

// Rate returns the default rate as a decimal.
func (f FXConfig) Rate() decimal.Decimal { return decimal.NewFromFloat(f.DefaultRate) }

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// NewsConfig contains the news page settings. Without an API key the page is a placeholder.
type NewsConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// PortfolioConfig lists the holdings. When empty, the built-in portfolio is used.
type PortfolioConfig struct {
	LocalCurrency string          `toml:"local_currency"`
	Holdings      []HoldingConfig `toml:"holdings"`
}

// HoldingConfig is one [[portfolio.holdings]] entry.
type HoldingConfig struct {
	Name      string  `toml:"name"`
	Symbol    string  `toml:"symbol"`
	Quantity  int64   `toml:"quantity"`
	Market    string  `toml:"market"`   // domestic or foreign
	Exchange  string  `toml:"exchange"` // KS (or KOSPI), KQ (or KOSDAQ), NASDAQ, NYSE
	CostBasis float64 `toml:"cost_basis"`
}

// Registry builds the holdings registry.
func (p PortfolioConfig) Registry() (folio.Registry, error) {
	local := strings.ToUpper(strings.TrimSpace(p.LocalCurrency))
	if local != folio.KoreanWon {
		return folio.Registry{}, fmt.Errorf("local_currency must be %s, got %q", folio.KoreanWon, p.LocalCurrency)
	}
	if len(p.Holdings) == 0 {
		return folio.DefaultRegistry(), nil
	}
	r := folio.Registry{LocalCurrency: local}
	for i, hc := range p.Holdings {
		market, err := folio.ParseMarket(hc.Market)
		if err != nil {
			return r, fmt.Errorf("holding #%d %q: %w", i+1, hc.Symbol, err)
		}
		exchange := folio.KOSPI
		if market == folio.Foreign {
			exchange = folio.NASDAQ
		}
		if strings.TrimSpace(hc.Exchange) != "" {
			if exchange, err = folio.ParseExchange(hc.Exchange); err != nil {
				return r, fmt.Errorf("holding #%d %q: %w", i+1, hc.Symbol, err)
			}
		}
		r.Holdings = append(r.Holdings, folio.Holding{
			Name:      hc.Name,
			Symbol:    hc.Symbol,
			Quantity:  folio.Quantity(hc.Quantity),
			Market:    market,
			Exchange:  exchange,
			CostBasis: folio.M(hc.CostBasis, local),
		})
	}
	return r, nil
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies FOLIO_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("FOLIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FOLIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if relay := os.Getenv("FOLIO_QUOTES_RELAY_URL"); relay != "" {
		config.Quotes.RelayURL = relay
	}
	if ua := os.Getenv("FOLIO_QUOTES_USER_AGENT"); ua != "" {
		config.Quotes.UserAgent = ua
	}
	if rate := os.Getenv("FOLIO_FX_DEFAULT_RATE"); rate != "" {
		if r, err := strconv.ParseFloat(rate, 64); err == nil {
			config.FX.DefaultRate = r
		}
	}
	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("FOLIO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if key := os.Getenv("FOLIO_NEWS_API_KEY"); key != "" {
		config.News.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && config.News.APIKey == "" {
		config.News.APIKey = key
	}
	if model := os.Getenv("FOLIO_NEWS_MODEL"); model != "" {
		config.News.Model = model
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host, logLevel string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
}

// Validate returns the list of configuration problems, empty if none.
func (c *Config) Validate() []string {
	var issues []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		issues = append(issues, fmt.Sprintf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	if c.Quotes.TimeoutDuration() <= 0 {
		issues = append(issues, fmt.Sprintf("quotes.timeout must be a positive duration, got %q", c.Quotes.Timeout))
	}
	if c.Quotes.RelayURL == "" && (c.Quotes.ChartURL == "" || c.Quotes.ExchangeURL == "") {
		issues = append(issues, "quotes.chart_url and quotes.exchange_url are required without quotes.relay_url")
	}
	if c.Quotes.ChartURL != "" && !strings.Contains(c.Quotes.ChartURL, "%s") {
		issues = append(issues, "quotes.chart_url must contain %s where the ticker goes")
	}
	if c.FX.DefaultRate <= 0 {
		issues = append(issues, fmt.Sprintf("fx.default_rate must be positive, got %v", c.FX.DefaultRate))
	}
	r, err := c.Portfolio.Registry()
	if err != nil {
		issues = append(issues, "portfolio: "+err.Error())
	} else if err := r.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			issues = append(issues, "portfolio: "+line)
		}
	}
	return issues
}
