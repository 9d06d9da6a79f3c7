package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crowsnest-io/crowsnest/internal/collector"
	"github.com/crowsnest-io/crowsnest/internal/signal"
)

// monitorCmd runs the environmental sensing stage on its own: every selected
// collector gathers signals and persists its monitoring snapshot.
var monitorCmd = &cobra.Command{
	Use:   "monitor [sources...]",
	Short: "Collect signals from all or selected sources",
	Long: `Collect signals from the monitored platforms and persist the snapshots.

Examples:
  # Monitor every configured source
  crowsnest monitor

  # Monitor selected sources only
  crowsnest monitor github reddit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		selected := map[string]bool{}
		for _, s := range args {
			selected[s] = true
		}

		ctx := cmd.Context()
		for _, c := range a.collectors(ctx) {
			if len(selected) > 0 && !selected[c.Name()] {
				continue
			}
			if err := collectAndPrint(ctx, a, c, nil); err != nil {
				return err
			}
		}
		return nil
	},
}

var githubCmd = &cobra.Command{
	Use:   "github {releases|issues} [owner repo]",
	Short: "Collect GitHub signals and show releases or issues",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var category string
		switch args[0] {
		case "releases":
			category = "release"
		case "issues":
			category = "issue"
		default:
			return fmt.Errorf("unknown github subcommand %q, expected releases or issues", args[0])
		}

		repo := ""
		switch len(args) {
		case 2:
			return fmt.Errorf("repository filter needs both owner and repo")
		case 3:
			repo = args[1] + "/" + args[2]
		}

		return runSingleSource(cmd.Context(), "github", func(sig signal.Signal) bool {
			if repo != "" && sig.Source != repo {
				return false
			}
			for _, c := range sig.Categories {
				if c == category {
					return true
				}
			}
			return false
		})
	},
}

var redditCmd = &cobra.Command{
	Use:   "reddit {posts|search}",
	Short: "Collect Reddit signals and show subreddit posts or search hits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var prefix string
		switch args[0] {
		case "posts":
			prefix = "r/"
		case "search":
			prefix = "search:"
		default:
			return fmt.Errorf("unknown reddit subcommand %q, expected posts or search", args[0])
		}

		return runSingleSource(cmd.Context(), "reddit", func(sig signal.Signal) bool {
			return strings.HasPrefix(sig.Source, prefix)
		})
	},
}

var xCmd = &cobra.Command{
	Use:   "x search",
	Short: "Collect X signals and show recent search hits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] != "search" {
			return fmt.Errorf("unknown x subcommand %q, expected search", args[0])
		}

		return runSingleSource(cmd.Context(), "x.com", func(sig signal.Signal) bool {
			return sig.Source == "search"
		})
	},
}

func runSingleSource(ctx context.Context, name string, match func(signal.Signal) bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	for _, c := range a.collectors(ctx) {
		if c.Name() == name {
			return collectAndPrint(ctx, a, c, match)
		}
	}
	return fmt.Errorf("no collector named %q", name)
}

// collectAndPrint runs one collector under the pipeline source timeout and
// prints the signals that pass the optional filter.
func collectAndPrint(ctx context.Context, a *app, c collector.Collector, match func(signal.Signal) bool) error {
	runCtx, cancel := context.WithTimeout(ctx, a.cfg.Pipeline.SourceTimeout.Duration())
	defer cancel()

	result, err := c.Collect(runCtx)
	if err != nil {
		return fmt.Errorf("%s collection failed: %w", c.Name(), err)
	}

	if result.Skipped {
		fmt.Printf("%s: skipped (not configured)\n", c.Name())
		return nil
	}

	shown := 0
	for _, sig := range result.Signals {
		if match != nil && !match(sig) {
			continue
		}
		shown++
		fmt.Printf("  [%-6s] %5.1f  %s\n", sig.Priority, sig.EngagementScore, sig.Title)
	}

	fmt.Printf("%s: %d signals (%d shown), %d requests used", c.Name(), len(result.Signals), shown, result.APIUsage.RequestsUsed)
	if len(result.Errors) > 0 {
		fmt.Printf(", %d errors", len(result.Errors))
	}
	fmt.Println()
	return nil
}
