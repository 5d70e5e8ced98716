// Package cli wires a crawler.Crawler into a cobra command, grounded on
// original_source/state_machine_crawler/cli.py's flag shape: a
// mutually-exclusive choice of --target, --all or --some, plus
// --with-webview to start a live HTTP monitor alongside the run.
package cli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	crawler "github.com/pombredanne/state-machine-crawler"
	"github.com/pombredanne/state-machine-crawler/httpview"
)

// Options are the flags this command exposes.
type Options struct {
	Target      string
	All         bool
	Some        string
	WithWebview bool
	WebviewAddr string
}

// NewCommand builds a cobra command that drives c according to the parsed
// flags. use/short are passed straight through to cobra.Command.
func NewCommand[S any](use, short string, c *crawler.Crawler[S]) *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), c, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Target, "target", "t", "", "state to which the system should be transitioned")
	flags.BoolVarP(&opts.All, "all", "a", false, "exercise every registered state")
	flags.StringVarP(&opts.Some, "some", "s", "", "exercise every state whose full name matches a regexp")
	flags.BoolVarP(&opts.WithWebview, "with-webview", "w", false, "start the HTTP viewer while the run executes")
	flags.StringVar(&opts.WebviewAddr, "webview-addr", "localhost:8666", "address the HTTP viewer listens on")
	cmd.MarkFlagsMutuallyExclusive("target", "all", "some")

	return cmd
}

func run[S any](ctx context.Context, c *crawler.Crawler[S], opts Options) error {
	var view *httpview.View
	if opts.WithWebview {
		view = httpview.New(opts.WebviewAddr, c)
		if err := view.Start(); err != nil {
			return fmt.Errorf("starting webview: %w", err)
		}
		fmt.Printf("Started the viewer at http://%s\n", opts.WebviewAddr)
		defer func() {
			// Give the viewer a moment to reflect the run's final state
			// before the listener goes away, mirroring the original's
			// fixed 0.3s grace sleep in cli.py before WebView.stop().
			time.Sleep(300 * time.Millisecond)
			shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = view.Stop(shutCtx)
		}()
	}

	switch {
	case opts.All:
		return c.VerifyAllStates(nil, true)
	case opts.Some != "":
		re, err := regexp.Compile(opts.Some)
		if err != nil {
			return fmt.Errorf("invalid --some pattern: %w", err)
		}
		return c.VerifyAllStates(re, true)
	case opts.Target != "":
		return c.Move(opts.Target)
	default:
		return errors.New("one of --target, --all, or --some is required")
	}
}
