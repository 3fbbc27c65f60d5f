package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// showCmd holds the flags for the 'show' subcommand.
type showCmd struct {
	percent bool
	layout  string
	width   int
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "fetch the latest prices and display the portfolio" }
func (*showCmd) Usage() string {
	return `pf show [-percent] [-layout auto|table|cards] [-width <columns>]

  Fetches every quote and the exchange rate once, then displays the holdings
  and the portfolio summary. Holdings whose price could not be fetched are
  still listed, with '-' in place of their figures.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.percent, "percent", false, "Show the daily change in percent instead of an amount")
	f.StringVar(&c.layout, "layout", "auto", "Holdings layout: auto, table or cards")
	f.IntVar(&c.width, "width", 0, "Display width used by the auto layout. Defaults to the terminal width.")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	layout, err := renderer.ParseLayout(c.layout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	_, _, refresher, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	state, _ := refresher.Refresh(ctx, folio.Initial)

	width := c.width
	if width == 0 {
		width = terminalWidth(os.Stdout)
	}
	printMarkdown(renderer.RenderPage(state, renderer.Options{Layout: layout, Percent: c.percent, Width: width}))

	if state.Err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
