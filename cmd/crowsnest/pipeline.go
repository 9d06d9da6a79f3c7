package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crowsnest-io/crowsnest/internal/pipeline"
)

var pipelineBriefingTypes []string

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the five-stage intelligence pipeline",
}

func init() {
	pipelineFullCmd.Flags().StringSliceVar(&pipelineBriefingTypes, "briefings", nil,
		"briefing types to generate (default executive_summary)")
	pipelineCmd.AddCommand(pipelineFullCmd)
	pipelineCmd.AddCommand(pipelineQuickCmd)
	pipelineCmd.AddCommand(pipelineTestCmd)
	pipelineCmd.AddCommand(pipelineWatchCmd)
}

var pipelineFullCmd = &cobra.Command{
	Use:   "full [sources...]",
	Short: "Run all five stages end to end",
	Long: `Run the complete pipeline: environmental sensing, signal processing,
strategic intelligence, decision support and actionable outputs.

Examples:
  # All sources, executive summary briefing
  crowsnest pipeline full

  # Selected sources and briefings
  crowsnest pipeline full github reddit --briefings executive_summary,tactical_briefing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.orchestrator(cmd.Context()).RunFull(cmd.Context(), pipeline.Options{
			Sources:       args,
			BriefingTypes: pipelineBriefingTypes,
		})
		if err != nil {
			return err
		}

		printPipelineSummary(result)
		return nil
	},
}

var pipelineQuickCmd = &cobra.Command{
	Use:   "quick [sources...]",
	Short: "Run sensing and processing only",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		update, err := a.orchestrator(cmd.Context()).RunQuick(cmd.Context(), args)
		if err != nil {
			return err
		}

		fmt.Printf("quick update %s\n", update.UpdateID)
		fmt.Printf("  new signals:      %d\n", update.Summary.NewSignals)
		fmt.Printf("  quality score:    %d\n", update.Summary.QualityScore)
		fmt.Printf("  platforms active: %d\n", update.Summary.PlatformsActive)
		return nil
	},
}

var pipelineTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Exercise the analysis stages against sample signals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.orchestrator(cmd.Context()).RunSample(cmd.Context())
		if err != nil {
			return err
		}

		printPipelineSummary(result)
		return nil
	},
}

var pipelineWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reprocess intelligence whenever new monitoring snapshots land",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		w, err := pipeline.NewWatcher(a.orchestrator(ctx), a.cfg.Storage.DataDir, a.logger)
		if err != nil {
			return err
		}

		fmt.Printf("watching %s for monitoring snapshots, ctrl-c to stop\n", a.cfg.Storage.DataDir)
		return w.Run(ctx)
	},
}

func printPipelineSummary(result *pipeline.Result) {
	fmt.Printf("pipeline %s complete in %s\n", result.PipelineID,
		time.Duration(result.ExecutionTimeMS)*time.Millisecond)
	fmt.Printf("  stages:          %s\n", strings.Join(result.StagesCompleted, " -> "))
	fmt.Printf("  signals:         %d from %d source(s)\n",
		result.PipelineMetrics.SignalsProcessed, result.PipelineMetrics.DataSources)
	fmt.Printf("  insights:        %d\n", result.PipelineMetrics.InsightsGenerated)
	fmt.Printf("  recommendations: %d\n", result.PipelineMetrics.RecommendationsCreated)
	fmt.Printf("  briefings:       %d\n", result.PipelineMetrics.BriefingsGenerated)
	fmt.Printf("  strategic value: %d\n", result.PipelineMetrics.StrategicValueScore)
	fmt.Printf("  alert level:     %s\n", result.ActionableOutputs.SummaryDashboard.SystemStatus.AlertLevel)
	fmt.Printf("  next run:        %s\n", result.NextPipelineRecommended.Format(time.RFC3339))
}
