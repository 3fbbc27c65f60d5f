package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// watchCmd holds the flags for the 'watch' subcommand.
type watchCmd struct {
	percent bool
	layout  string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "display the portfolio and refresh it on demand" }
func (*watchCmd) Usage() string {
	return `pf watch [-percent] [-layout auto|table|cards]

  Displays the portfolio and keeps it on screen. Commands, followed by Enter:

    (empty)  refresh the prices
    p        toggle the daily change between amount and percent
    q        quit

  A refresh requested while prices are being fetched is ignored.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.percent, "percent", false, "Start with the daily change in percent")
	f.StringVar(&c.layout, "layout", "auto", "Holdings layout: auto, table or cards")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	w := &watcher{
		refresher: refresher,
		opts:      renderer.Options{Layout: layout, Percent: c.percent, Width: terminalWidth(os.Stdout)},
		in:        os.Stdin,
		out:       os.Stdout,
		clear:     isTerminal(os.Stdout),
		render:    func(md string) string { return renderMarkdown(md, os.Stdout) },
	}
	if err := w.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

const watchHelp = "Enter: refresh, p: toggle percent, q: quit"

// watcher drives the interactive dashboard. Input lines are triggers; every
// published state is drawn as soon as its cycle completes.
type watcher struct {
	refresher *folio.Refresher
	opts      renderer.Options
	in        io.Reader
	out       io.Writer
	clear     bool                   // clear the screen before drawing
	render    func(md string) string // terminal rendering
}

func (w *watcher) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(w.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	updates := make(chan *folio.PortfolioState)
	w.start(ctx, folio.Initial, updates)
	w.draw(w.refresher.State(), "")

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-updates:
			w.draw(s, "")
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "q", "quit":
				return nil
			case "p":
				w.opts.Percent = !w.opts.Percent
				w.draw(w.refresher.State(), "")
			case "":
				note := ""
				if !w.start(ctx, folio.Pull, updates) {
					note = "Refresh already running."
				}
				w.draw(w.refresher.State(), note)
			default:
				w.draw(w.refresher.State(), fmt.Sprintf("Unknown command %q.", line))
			}
		}
	}
}

// start runs a cycle in the background and sends its state to updates.
func (w *watcher) start(ctx context.Context, trigger folio.Trigger, updates chan<- *folio.PortfolioState) bool {
	done, ok := w.refresher.Start(ctx, trigger)
	if !ok {
		return false
	}
	go func() {
		s, ok := <-done
		if !ok {
			return
		}
		select {
		case updates <- s:
		case <-ctx.Done():
		}
	}()
	return true
}

func (w *watcher) draw(s *folio.PortfolioState, note string) {
	if w.clear {
		fmt.Fprint(w.out, "\033[H\033[2J")
	}
	fmt.Fprint(w.out, w.render(renderer.RenderPage(s, w.opts)))
	status := watchHelp
	if w.refresher.Busy() {
		status = "Refreshing... " + status
	}
	if note != "" {
		status = note + " " + status
	}
	fmt.Fprintln(w.out, "\n"+status)
}
