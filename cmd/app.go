// Package cmd implements the pf CLI: the dashboard in the terminal, the web
// server and the news page.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/config"
	"github.com/etnz/folio/news"
	"github.com/etnz/folio/yahoo"
	"github.com/google/subcommands"
	"github.com/phuslu/log"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range commands() {
		c.Register(cmd, "portfolio")
	}
}

func commands() []subcommands.Command {
	return []subcommands.Command{
		&showCmd{},
		&watchCmd{},
		&holdingsCmd{},
		&serveCmd{},
		&newsCmd{},
		&topicCmd{},
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFiles stringList
	logLevel    = flag.String("log-level", "", "Log level: trace, debug, info, warn or error. Overrides the configuration.")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file (TOML). May be repeated, later files win.")
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// ConfigFiles returns the configuration files given with -config, or else the
// ones listed in the FOLIO_CONFIG environment variable.
func ConfigFiles() []string {
	if len(configFiles) > 0 {
		return configFiles
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return filepath.SplitList(env)
	}
	return nil
}

// loadConfig loads the configuration, applies the command line overrides and validates it.
func loadConfig(port int, host string) (*config.Config, error) {
	cfg, err := config.LoadFromFiles(ConfigFiles()...)
	if err != nil {
		return nil, err
	}
	config.ApplyFlagOverrides(cfg, port, host, *logLevel)
	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n  %s", strings.Join(issues, "\n  "))
	}
	return cfg, nil
}

// newLogger creates the application logger writing to w.
func newLogger(cfg config.LoggingConfig, w io.Writer) *log.Logger {
	logger := &log.Logger{
		Level:      log.ParseLevel(strings.ToLower(cfg.Level)),
		TimeFormat: "15:04:05",
	}
	if cfg.Format == "json" {
		logger.TimeFormat = ""
		logger.Writer = log.IOWriter{Writer: w}
	} else {
		logger.Writer = &log.ConsoleWriter{Writer: w, ColorOutput: isTerminal(w)}
	}
	return logger
}

// newFetcher returns the quote client: through the relay when one is configured,
// on the chart API otherwise.
func newFetcher(cfg config.QuotesConfig, logger *log.Logger) *yahoo.Client {
	if cfg.RelayURL != "" {
		return yahoo.Relay(cfg.RelayURL, logger, cfg.UserAgent, cfg.TimeoutDuration())
	}
	c := yahoo.New(logger, cfg.UserAgent, cfg.TimeoutDuration())
	c.ChartURL = cfg.ChartURL
	c.ExchangeURL = cfg.ExchangeURL
	return c
}

// newRefresher creates the refresher of the configured portfolio.
func newRefresher(cfg *config.Config, fetcher folio.Fetcher, logger *log.Logger) (*folio.Refresher, error) {
	registry, err := cfg.Portfolio.Registry()
	if err != nil {
		return nil, err
	}
	return folio.NewRefresher(registry, fetcher, cfg.FX.Rate(), logger), nil
}

// newNews returns the configured news provider.
func newNews(ctx context.Context, cfg config.NewsConfig, logger *log.Logger) (news.Provider, error) {
	return news.New(ctx, cfg.APIKey, cfg.Model, logger)
}

// setup loads everything the dashboard commands need.
func setup() (*config.Config, *log.Logger, *folio.Refresher, error) {
	cfg, err := loadConfig(0, "")
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg.Logging, os.Stderr)
	refresher, err := newRefresher(cfg, newFetcher(cfg.Quotes, logger), logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, refresher, nil
}
