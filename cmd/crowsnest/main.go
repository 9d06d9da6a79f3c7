// Package main implements the crowsnest CLI: ecosystem monitoring,
// strategic intelligence analysis and briefing generation.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crowsnest-io/crowsnest/internal/briefing"
	"github.com/crowsnest-io/crowsnest/internal/collector"
	"github.com/crowsnest-io/crowsnest/internal/config"
	"github.com/crowsnest-io/crowsnest/internal/intel"
	"github.com/crowsnest-io/crowsnest/internal/logging"
	"github.com/crowsnest-io/crowsnest/internal/pipeline"
	"github.com/crowsnest-io/crowsnest/internal/processor"
	"github.com/crowsnest-io/crowsnest/internal/store"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "crowsnest",
	Short:        "Strategic intelligence for the web framework ecosystem",
	Long:         "crowsnest monitors GitHub, Reddit and X for framework ecosystem signals,\ndistills them into strategic intelligence and generates decision briefings.",
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/crowsnest/config.yaml)")
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(githubCmd)
	rootCmd.AddCommand(redditCmd)
	rootCmd.AddCommand(xCmd)
	rootCmd.AddCommand(intelCmd)
	rootCmd.AddCommand(briefingCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(serveCmd)
}

// app bundles the loaded configuration with the shared services every
// command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

func newApp() (*app, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store.New(cfg.Storage.DataDir, cfg.Storage.ReportsDir, logger),
	}, nil
}

func (a *app) close() {
	_ = logging.Sync(a.logger)
}

// collectors returns every platform collector in pipeline order.
func (a *app) collectors(ctx context.Context) []collector.Collector {
	return []collector.Collector{
		collector.NewGitHub(ctx, a.cfg.GitHub, a.cfg.Scoring, a.store, a.logger),
		collector.NewReddit(ctx, a.cfg.Reddit, a.cfg.Scoring, a.store, a.logger),
		collector.NewX(a.cfg.X, a.cfg.Scoring, a.store, a.logger),
	}
}

func (a *app) orchestrator(ctx context.Context) *pipeline.Orchestrator {
	return pipeline.New(a.cfg, a.collectors(ctx),
		processor.New(a.logger),
		intel.NewEngine(a.cfg.Scoring, a.store, a.logger),
		briefing.NewGenerator(a.store, a.logger),
		a.store, a.logger)
}

// testCmd verifies API connectivity for every configured source.
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test API connectivity for all configured sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		failures := 0
		for _, c := range a.collectors(ctx) {
			switch {
			case !c.Configured():
				fmt.Printf("  %-8s not configured, will be skipped\n", c.Name())
			default:
				if err := c.Test(ctx); err != nil {
					fmt.Printf("  %-8s FAILED: %v\n", c.Name(), err)
					failures++
				} else {
					fmt.Printf("  %-8s ok\n", c.Name())
				}
			}
		}

		if failures > 0 {
			return fmt.Errorf("%d source(s) failed connectivity test", failures)
		}
		return nil
	},
}
