package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio/news"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type newsCmd struct{}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "display the news about the holdings" }
func (*newsCmd) Usage() string {
	return `pf news

  Displays a digest of the recent news about the holdings. It requires
  [news] api_key in the configuration, or the GEMINI_API_KEY environment
  variable; without it the page is a placeholder.
`
}

func (*newsCmd) SetFlags(*flag.FlagSet) {}

func (c *newsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, refresher, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	provider, err := newNews(ctx, cfg.News, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	digest, err := provider.Headlines(ctx, refresher.Registry().Holdings)
	if err != nil {
		logger.Warn().Err(err).Msg("news unavailable")
		digest = news.PlaceholderText
	}
	printMarkdown(renderer.RenderNews(digest))
	return subcommands.ExitSuccess
}
