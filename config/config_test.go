package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/folio"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 4240 {
		t.Errorf("expected default port 4240, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if cfg.FX.DefaultRate != 1400 {
		t.Errorf("expected default rate 1400, got %v", cfg.FX.DefaultRate)
	}
	if got := cfg.Quotes.TimeoutDuration(); got != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %v", got)
	}
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("default config is invalid: %v", issues)
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	r, err := cfg.Portfolio.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	if len(r.Holdings) != len(folio.DefaultRegistry().Holdings) {
		t.Errorf("expected the built-in holdings, got %d", len(r.Holdings))
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "folio.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090
host = "0.0.0.0"

[quotes]
relay_url = "http://localhost:4240"
timeout = "3s"

[fx]
default_rate = 1350.5

[logging]
level = "debug"
format = "json"

[portfolio]
local_currency = "KRW"

[[portfolio.holdings]]
name = "Hanjung NCS"
symbol = "107640"
quantity = 21
market = "domestic"
exchange = "kq"
cost_basis = 1000000

[[portfolio.holdings]]
name = "Tesla"
symbol = "TSLA"
quantity = 130
market = "foreign"
cost_basis = 60000000
`)

	cfg, err := LoadFromFiles(path)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("expected address 0.0.0.0:9090, got %s", cfg.Server.Addr())
	}
	if cfg.Quotes.RelayURL != "http://localhost:4240" {
		t.Errorf("expected relay url, got %q", cfg.Quotes.RelayURL)
	}
	if cfg.Quotes.UserAgent == "" {
		t.Errorf("expected the default user agent to survive the file")
	}
	if cfg.FX.Rate().String() != "1350.5" {
		t.Errorf("expected rate 1350.5, got %s", cfg.FX.Rate())
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format json, got %s", cfg.Logging.Format)
	}

	r, err := cfg.Portfolio.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	if len(r.Holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(r.Holdings))
	}
	if h := r.Holdings[0]; h.Exchange != folio.KOSDAQ || h.Market != folio.Domestic || h.Quantity != 21 {
		t.Errorf("unexpected first holding %+v", h)
	}
	if h := r.Holdings[1]; h.Exchange != folio.NASDAQ || !h.CostBasis.Equal(folio.M(60_000_000, "KRW")) {
		t.Errorf("unexpected second holding %+v", h)
	}
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	first := writeConfig(t, "[server]\nport = 1000\nhost = \"a\"\n")
	second := writeConfig(t, "[server]\nport = 2000\n")

	cfg, err := LoadFromFiles(first, second)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 2000 || cfg.Server.Host != "a" {
		t.Errorf("expected a:2000, got %s", cfg.Server.Addr())
	}
}

func TestLoadFromFiles_Errors(t *testing.T) {
	if _, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
	if _, err := LoadFromFiles(writeConfig(t, "[server\nport=")); err == nil {
		t.Errorf("expected an error for malformed TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_SERVER_PORT", "7070")
	t.Setenv("FOLIO_LOG_LEVEL", "warn")
	t.Setenv("FOLIO_FX_DEFAULT_RATE", "1300")
	t.Setenv("FOLIO_NEWS_API_KEY", "secret")

	cfg, err := LoadFromFiles(writeConfig(t, "[server]\nport = 9090\n"))
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected env level warn, got %s", cfg.Logging.Level)
	}
	if cfg.FX.DefaultRate != 1300 {
		t.Errorf("expected env rate 1300, got %v", cfg.FX.DefaultRate)
	}
	if cfg.News.APIKey != "secret" {
		t.Errorf("expected env api key, got %q", cfg.News.APIKey)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, 0, "", "")
	if cfg.Server.Port != 4240 || cfg.Server.Host != "localhost" || cfg.Logging.Level != "info" {
		t.Errorf("zero flags changed the config: %+v", cfg)
	}
	ApplyFlagOverrides(cfg, 8000, "0.0.0.0", "debug")
	if cfg.Server.Addr() != "0.0.0.0:8000" || cfg.Logging.Level != "debug" {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"timeout", func(c *Config) { c.Quotes.Timeout = "soon" }, "quotes.timeout"},
		{"chart url", func(c *Config) { c.Quotes.ChartURL = "http://example.com/chart" }, "%s"},
		{"rate", func(c *Config) { c.FX.DefaultRate = 0 }, "fx.default_rate"},
		{"market", func(c *Config) {
			c.Portfolio.Holdings = []HoldingConfig{{Symbol: "A", Quantity: 1, Market: "moon", CostBasis: 1}}
		}, "unknown market"},
		{"quantity", func(c *Config) {
			c.Portfolio.Holdings = []HoldingConfig{{Symbol: "A", Quantity: 0, Market: "domestic", CostBasis: 1}}
		}, "quantity must be positive"},
		{"currency", func(c *Config) { c.Portfolio.LocalCurrency = "EUR" }, "local_currency must be KRW"},
		{"currency with holdings", func(c *Config) {
			c.Portfolio.LocalCurrency = "XYZ"
			c.Portfolio.Holdings = []HoldingConfig{{Symbol: "A", Quantity: 1, Market: "domestic", CostBasis: 1}}
		}, "local_currency must be KRW"},
		{"exchange", func(c *Config) {
			c.Portfolio.Holdings = []HoldingConfig{{Symbol: "A", Quantity: 1, Market: "domestic", Exchange: "LSE", CostBasis: 1}}
		}, "unknown exchange"},
		{"exchange market", func(c *Config) {
			c.Portfolio.Holdings = []HoldingConfig{{Symbol: "A", Quantity: 1, Market: "domestic", Exchange: "NYSE", CostBasis: 1}}
		}, "not a domestic exchange"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)
			issues := cfg.Validate()
			if !strings.Contains(strings.Join(issues, "\n"), tt.want) {
				t.Errorf("Validate() = %v, want an issue about %q", issues, tt.want)
			}
		})
	}
}

func TestPortfolio_Normalization(t *testing.T) {
	path := writeConfig(t, `
[portfolio]
local_currency = " krw "

[[portfolio.holdings]]
symbol = "107640"
quantity = 21
market = "domestic"
exchange = "KOSDAQ"
cost_basis = 1000000

[[portfolio.holdings]]
symbol = "KO"
quantity = 10
market = "foreign"
exchange = "nyse"
cost_basis = 800000
`)
	cfg, err := LoadFromFiles(path)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	r, err := cfg.Portfolio.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	if r.LocalCurrency != "KRW" {
		t.Errorf("LocalCurrency = %q, want KRW", r.LocalCurrency)
	}
	if got := r.Holdings[0].CostBasis.Currency(); got != "KRW" {
		t.Errorf("cost basis currency = %q, want KRW", got)
	}
	if got := r.Holdings[0].Exchange; got != folio.KOSDAQ {
		t.Errorf("first exchange = %q, want %q", got, folio.KOSDAQ)
	}
	if got := r.Holdings[1].Exchange; got != folio.NYSE {
		t.Errorf("second exchange = %q, want %q", got, folio.NYSE)
	}
}

func TestPortfolio_UnsupportedCurrency(t *testing.T) {
	for _, cur := range []string{"EUR", "XYZ", "USD"} {
		path := writeConfig(t, "[portfolio]\nlocal_currency = \""+cur+"\"\n")
		cfg, err := LoadFromFiles(path)
		if err != nil {
			t.Fatalf("LoadFromFiles failed: %v", err)
		}
		issues := cfg.Validate()
		if len(issues) != 1 || !strings.Contains(issues[0], "local_currency must be KRW") {
			t.Errorf("local_currency %q: Validate() = %v, want one local_currency issue", cur, issues)
		}
	}
}
