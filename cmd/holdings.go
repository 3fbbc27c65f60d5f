package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/google/subcommands"
)

type holdingsCmd struct{}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "list the configured holdings" }
func (*holdingsCmd) Usage() string {
	return `pf holdings

  Lists the holdings of the configured portfolio, without fetching prices.
`
}

func (*holdingsCmd) SetFlags(*flag.FlagSet) {}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(0, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	registry, err := cfg.Portfolio.Registry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(holdingsMarkdown(registry))
	return subcommands.ExitSuccess
}

func holdingsMarkdown(r folio.Registry) string {
	var b strings.Builder
	b.WriteString("# Holdings\n\n")
	b.WriteString("| Holding | Symbol | Exchange | Market | Quantity | Cost basis |\n")
	b.WriteString("|:---|:---|:---|:---|---:|---:|\n")
	for _, h := range r.Holdings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", h.Name, h.Symbol, h.Exchange, h.Market, h.Quantity, h.CostBasis)
	}
	fmt.Fprintf(&b, "\nTotal cost basis: %s\n", r.TotalCostBasis())
	return b.String()
}
