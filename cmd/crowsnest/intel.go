package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crowsnest-io/crowsnest/internal/briefing"
	"github.com/crowsnest-io/crowsnest/internal/collector"
	"github.com/crowsnest-io/crowsnest/internal/intel"
	"github.com/crowsnest-io/crowsnest/internal/processor"
	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/crowsnest-io/crowsnest/internal/store"
)

var intelCmd = &cobra.Command{
	Use:   "intel",
	Short: "Run strategic intelligence analysis",
}

func init() {
	intelCmd.AddCommand(intelProcessCmd)
	intelCmd.AddCommand(intelTestCmd)
}

// intelProcessCmd analyzes a persisted monitoring snapshot.
var intelProcessCmd = &cobra.Command{
	Use:   "process <snapshot.json>",
	Short: "Analyze a monitoring snapshot into an intelligence report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		result, err := loadSnapshot(args[0])
		if err != nil {
			return err
		}

		processed := processor.New(a.logger).Process([]*collector.Result{result})
		report, err := intel.NewEngine(a.cfg.Scoring, a.store, a.logger).ProcessIntelligence(processed)
		if err != nil {
			return err
		}

		printReportSummary(report)
		return nil
	},
}

// intelTestCmd exercises the analysis stages against built-in sample
// signals. Nothing is persisted.
var intelTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the intelligence engine against sample signals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		processed := processor.New(a.logger).Process([]*collector.Result{sampleSnapshot()})
		report, err := intel.NewEngine(a.cfg.Scoring, nil, a.logger).ProcessIntelligence(processed)
		if err != nil {
			return err
		}

		printReportSummary(report)
		return nil
	},
}

// briefingCmd renders a persisted intelligence report as a briefing.
var briefingCmd = &cobra.Command{
	Use:   "briefing <report.json> [type]",
	Short: "Generate a strategic briefing from an intelligence report",
	Long: fmt.Sprintf(`Generate a strategic briefing from a persisted intelligence report.

Available types: %s (default %s)`, strings.Join(briefing.Types(), ", "), briefing.TypeExecutiveSummary),
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		var report intel.Report
		if err := store.ReadJSON(args[0], &report); err != nil {
			return err
		}

		briefingType := briefing.TypeExecutiveSummary
		if len(args) == 2 {
			briefingType = args[1]
		}

		b, err := briefing.NewGenerator(a.store, a.logger).Generate(&report, briefingType)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", b.Title)
		fmt.Printf("  status:      %s\n", b.ExecutiveSummary.StrategicStatus)
		fmt.Printf("  risk:        %s\n", b.ExecutiveSummary.RiskLevel)
		fmt.Printf("  confidence:  %d%%\n", b.ExecutiveSummary.ConfidenceScore)
		fmt.Printf("  actions:     %d\n", len(b.ActionItems))
		fmt.Printf("  next review: %s\n", b.NextReviewDate)
		return nil
	},
}

// loadSnapshot reads a data/<source>-monitoring-<unix-ms>.json artifact back
// into a collector result.
func loadSnapshot(path string) (*collector.Result, error) {
	source, _, found := strings.Cut(filepath.Base(path), "-monitoring-")
	if !found || source == "" {
		return nil, fmt.Errorf("%s is not a monitoring snapshot", path)
	}

	var snap collector.Snapshot
	if err := store.ReadJSON(path, &snap); err != nil {
		return nil, err
	}

	return &collector.Result{
		Source:    source,
		Timestamp: snap.Timestamp,
		APIUsage:  snap.APIUsage,
		Signals:   snap.Results,
		Summary:   snap.Summary,
	}, nil
}

func sampleSnapshot() *collector.Result {
	now := time.Now()
	signals := []signal.Signal{
		{
			ID:              "sample-1",
			Platform:        "reddit",
			Title:           "Next.js 15 Turbopack performance issues",
			Frameworks:      []string{"next.js"},
			Categories:      []string{"performance", "issue"},
			RelevanceScore:  75,
			EngagementScore: 45,
			Priority:        signal.PriorityHigh,
			CreatedAt:       now.Add(-2 * time.Hour),
		},
		{
			ID:              "sample-2",
			Platform:        "x.com",
			Title:           "React 19 Compiler breakthrough",
			Frameworks:      []string{"react"},
			Categories:      []string{"release", "performance"},
			RelevanceScore:  85,
			EngagementScore: 60,
			Priority:        signal.PriorityHigh,
			CreatedAt:       now.Add(-time.Hour),
		},
	}

	return &collector.Result{
		Source:    "sample",
		Timestamp: now,
		Signals:   signals,
		Summary:   collector.BuildSummary(signals),
	}
}

func printReportSummary(report *intel.Report) {
	fmt.Printf("intelligence report %s\n", report.Timestamp.Format(time.RFC3339))
	fmt.Printf("  insights:        %d\n", len(report.ContextualInsights))
	fmt.Printf("  patterns:        %d\n", len(report.StrategicSynthesis))
	fmt.Printf("  recommendations: %d\n", len(report.PrioritizedRecommendations))
	fmt.Printf("  competitors:     %d active\n", report.CompetitiveLandscape.ActiveCompetitors)
	fmt.Printf("  opportunities:   %d\n", report.MarketOpportunities.TotalOpportunities)

	for i, rec := range report.PrioritizedRecommendations {
		if i == 5 {
			break
		}
		fmt.Printf("  %d. [%s/%s] %s\n", i+1, rec.Priority, rec.Timeframe, rec.Title)
	}
}
