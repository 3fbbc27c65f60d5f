package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/folio/server"
	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	host string
	port int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard and the quote relay over HTTP" }
func (*serveCmd) Usage() string {
	return `pf serve [-host <host>] [-port <port>]

  Serves the dashboard at / and the news page at /news. The quote relay at
  /api/stock/{symbol} and /api/exchange forwards the chart API, so that a
  browser or another pf configured with relay_url can fetch quotes.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.host, "host", "", "Host to listen on. Overrides the configuration.")
	f.IntVar(&c.port, "port", 0, "Port to listen on. Overrides the configuration.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(c.port, c.host)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	logger := newLogger(cfg.Logging, os.Stderr)
	fetcher := newFetcher(cfg.Quotes, logger)
	refresher, err := newRefresher(cfg, fetcher, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := newNews(ctx, cfg.News, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if cfg.Logging.Level != "debug" && cfg.Logging.Level != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(refresher, fetcher, provider, logger)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr()); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		return subcommands.ExitFailure
	}
	logger.Info().Msg("server stopped")
	return subcommands.ExitSuccess
}
