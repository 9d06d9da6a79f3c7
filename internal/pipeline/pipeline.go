// Package pipeline orchestrates the five intelligence stages: environmental
// sensing, signal processing, strategic intelligence, decision support and
// actionable outputs. Stage values are handed forward directly; persisted
// artifacts are for inspection, never for stage handoff.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crowsnest-io/crowsnest/internal/briefing"
	"github.com/crowsnest-io/crowsnest/internal/collector"
	"github.com/crowsnest-io/crowsnest/internal/config"
	"github.com/crowsnest-io/crowsnest/internal/intel"
	"github.com/crowsnest-io/crowsnest/internal/processor"
	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/crowsnest-io/crowsnest/internal/store"
)

// Stages in execution order.
var Stages = []string{
	"environmental_sensing",
	"signal_processing",
	"strategic_intelligence",
	"decision_support",
	"actionable_outputs",
}

// Per-source run statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// SourceStatus reports one collector run within the sensing stage.
type SourceStatus struct {
	Status     string `json:"status"`
	Signals    int    `json:"signals"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Sensing is the environmental sensing stage result. MonitoringResults holds
// only the runs that produced data; errored and skipped sources appear in
// SourceStatus with empty hands.
type Sensing struct {
	SensingCompletedAt time.Time               `json:"sensing_completed_at"`
	SourcesProcessed   []string                `json:"sources_processed"`
	SuccessfulSources  int                     `json:"successful_sources"`
	SourceStatus       map[string]SourceStatus `json:"source_status"`
	MonitoringResults  []*collector.Result     `json:"monitoring_results"`
	TotalSignals       int                     `json:"total_signals"`
}

// BriefingRun is one generated briefing within the decision support stage.
type BriefingRun struct {
	Type        string             `json:"type"`
	Briefing    *briefing.Briefing `json:"briefing"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Metrics summarizes one pipeline run.
type Metrics struct {
	DataSources            int     `json:"data_sources"`
	SignalsProcessed       int     `json:"signals_processed"`
	InsightsGenerated      int     `json:"insights_generated"`
	RecommendationsCreated int     `json:"recommendations_created"`
	BriefingsGenerated     int     `json:"briefings_generated"`
	ProcessingEfficiency   float64 `json:"processing_efficiency"`
	StrategicValueScore    int     `json:"strategic_value_score"`
}

// Result is the consolidated artifact of a full pipeline run.
type Result struct {
	PipelineID              string               `json:"pipeline_id"`
	ExecutionTimeMS         int64                `json:"execution_time_ms"`
	CompletedAt             time.Time            `json:"completed_at"`
	StagesCompleted         []string             `json:"stages_completed"`
	MonitoringData          *Sensing             `json:"monitoring_data"`
	ProcessedSignals        *processor.Processed `json:"processed_signals"`
	StrategicIntelligence   *intel.Report        `json:"strategic_intelligence"`
	DecisionBriefings       []BriefingRun        `json:"decision_briefings"`
	ActionableOutputs       *Outputs             `json:"actionable_outputs"`
	PipelineMetrics         Metrics              `json:"pipeline_metrics"`
	NextPipelineRecommended time.Time            `json:"next_pipeline_recommended"`
}

// QuickSummary condenses a quick update run.
type QuickSummary struct {
	NewSignals      int `json:"new_signals"`
	QualityScore    int `json:"quality_score"`
	PlatformsActive int `json:"platforms_active"`
}

// QuickUpdate is the artifact of a sensing-plus-processing run.
type QuickUpdate struct {
	UpdateID         string               `json:"update_id"`
	CompletedAt      time.Time            `json:"completed_at"`
	MonitoringData   *Sensing             `json:"monitoring_data"`
	ProcessedSignals *processor.Processed `json:"processed_signals"`
	Summary          QuickSummary         `json:"summary"`
}

// Options select sources and briefing types for a run. Empty Sources means
// every collector; empty BriefingTypes defaults to the executive summary.
type Options struct {
	Sources       []string
	BriefingTypes []string
}

// Orchestrator wires collectors, processor, intelligence engine and briefing
// generator into one pipeline.
type Orchestrator struct {
	cfg        *config.Config
	collectors []collector.Collector
	processor  *processor.Processor
	engine     *intel.Engine
	generator  *briefing.Generator
	store      *store.Store
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

// New creates an Orchestrator. A nil store disables artifact persistence.
func New(cfg *config.Config, collectors []collector.Collector, proc *processor.Processor,
	engine *intel.Engine, gen *briefing.Generator, st *store.Store, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:        cfg,
		collectors: collectors,
		processor:  proc,
		engine:     engine,
		generator:  gen,
		store:      st,
		logger:     logger.Named("pipeline"),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// RunFull executes all five stages and persists the consolidated result as
// reports/intelligence/complete-pipeline-<id>.json. Per-source failures are
// contained; only a cancelled context or a broken analysis stage aborts the
// run.
func (o *Orchestrator) RunFull(ctx context.Context, opts Options) (*Result, error) {
	id := o.newID()
	start := o.now()
	log := o.logger.With(zap.String("pipeline_id", id))
	log.Info("pipeline started", zap.Strings("sources", opts.Sources))

	sensing, err := o.runSensing(ctx, opts.Sources)
	if err != nil {
		observeRun("full", StatusError, o.now().Sub(start))
		return nil, err
	}

	processed := o.processor.Process(sensing.MonitoringResults)

	report, err := o.engine.ProcessIntelligence(processed)
	if err != nil {
		observeRun("full", StatusError, o.now().Sub(start))
		return nil, fmt.Errorf("strategic intelligence: %w", err)
	}

	briefings := o.runBriefings(report, opts.BriefingTypes)
	outputs := o.buildOutputs(report, briefings)
	o.persistOutputs(outputs)

	completed := o.now()
	result := &Result{
		PipelineID:              id,
		ExecutionTimeMS:         completed.Sub(start).Milliseconds(),
		CompletedAt:             completed,
		StagesCompleted:         Stages,
		MonitoringData:          sensing,
		ProcessedSignals:        processed,
		StrategicIntelligence:   report,
		DecisionBriefings:       briefings,
		ActionableOutputs:       outputs,
		PipelineMetrics:         buildMetrics(sensing, report, len(briefings)),
		NextPipelineRecommended: nextRunTime(report, completed),
	}

	observeRun("full", StatusSuccess, completed.Sub(start))
	observeAnalysis(report)

	if o.store != nil {
		if path, err := o.store.WritePipelineResult(id, result); err != nil {
			log.Warn("pipeline result not persisted", zap.Error(err))
		} else {
			log.Info("pipeline result written", zap.String("path", path))
		}
	}

	log.Info("pipeline complete",
		zap.Int64("execution_ms", result.ExecutionTimeMS),
		zap.Int("insights", result.PipelineMetrics.InsightsGenerated),
		zap.Int("recommendations", result.PipelineMetrics.RecommendationsCreated),
		zap.Int("briefings", result.PipelineMetrics.BriefingsGenerated),
		zap.Time("next_run", result.NextPipelineRecommended))
	return result, nil
}

// RunQuick executes sensing and processing only, persisting the result as
// reports/intelligence/quick-update-<unix-ms>.json.
func (o *Orchestrator) RunQuick(ctx context.Context, sources []string) (*QuickUpdate, error) {
	start := o.now()

	sensing, err := o.runSensing(ctx, sources)
	if err != nil {
		observeRun("quick", StatusError, o.now().Sub(start))
		return nil, err
	}
	processed := o.processor.Process(sensing.MonitoringResults)

	completed := o.now()
	update := &QuickUpdate{
		UpdateID:         o.newID(),
		CompletedAt:      completed,
		MonitoringData:   sensing,
		ProcessedSignals: processed,
		Summary: QuickSummary{
			NewSignals:      processed.RelevantSignals,
			QualityScore:    processed.SignalQuality.QualityScore,
			PlatformsActive: len(sensing.SourcesProcessed),
		},
	}

	observeRun("quick", StatusSuccess, completed.Sub(start))

	if o.store != nil {
		if _, err := o.store.WriteOutput("quick-update", update, completed); err != nil {
			o.logger.Warn("quick update not persisted", zap.Error(err))
		}
	}

	o.logger.Info("quick update complete",
		zap.String("update_id", update.UpdateID),
		zap.Int("new_signals", update.Summary.NewSignals),
		zap.Int("quality_score", update.Summary.QualityScore))
	return update, nil
}

// Reprocess runs the analysis stages over externally collected results,
// such as monitoring snapshots picked up by watch mode.
func (o *Orchestrator) Reprocess(ctx context.Context, results []*collector.Result, briefingTypes []string) (*Result, error) {
	id := o.newID()
	start := o.now()

	sensing := sensingFromResults(results, start)

	processed := o.processor.Process(sensing.MonitoringResults)
	report, err := o.engine.ProcessIntelligence(processed)
	if err != nil {
		observeRun("reprocess", StatusError, o.now().Sub(start))
		return nil, fmt.Errorf("strategic intelligence: %w", err)
	}

	briefings := o.runBriefings(report, briefingTypes)
	outputs := o.buildOutputs(report, briefings)
	o.persistOutputs(outputs)

	completed := o.now()
	result := &Result{
		PipelineID:              id,
		ExecutionTimeMS:         completed.Sub(start).Milliseconds(),
		CompletedAt:             completed,
		StagesCompleted:         Stages[1:],
		MonitoringData:          sensing,
		ProcessedSignals:        processed,
		StrategicIntelligence:   report,
		DecisionBriefings:       briefings,
		ActionableOutputs:       outputs,
		PipelineMetrics:         buildMetrics(sensing, report, len(briefings)),
		NextPipelineRecommended: nextRunTime(report, completed),
	}

	observeRun("reprocess", StatusSuccess, completed.Sub(start))
	observeAnalysis(report)

	if o.store != nil {
		if _, err := o.store.WritePipelineResult(id, result); err != nil {
			o.logger.Warn("pipeline result not persisted", zap.Error(err))
		}
	}
	return result, nil
}

// RunSample exercises the analysis stages against a fixed two-signal batch.
// Nothing is collected from external platforms; outputs are still persisted
// when a store is configured.
func (o *Orchestrator) RunSample(ctx context.Context) (*Result, error) {
	return o.Reprocess(ctx, sampleResults(o.now()), []string{briefing.TypeExecutiveSummary})
}

// runSensing executes every selected collector under the per-source timeout.
// Collector failures are contained as error statuses; a cancelled parent
// context aborts the stage.
func (o *Orchestrator) runSensing(ctx context.Context, sources []string) (*Sensing, error) {
	selected := map[string]bool{}
	for _, s := range sources {
		selected[s] = true
	}

	sensing := &Sensing{SourceStatus: map[string]SourceStatus{}}
	for _, c := range o.collectors {
		if len(sources) > 0 && !selected[c.Name()] {
			continue
		}
		sensing.SourcesProcessed = append(sensing.SourcesProcessed, c.Name())

		runCtx, cancel := context.WithTimeout(ctx, o.cfg.Pipeline.SourceTimeout.Duration())
		started := o.now()
		result, err := c.Collect(runCtx)
		cancel()
		elapsed := o.now().Sub(started).Milliseconds()

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("source collection failed",
				zap.String("source", c.Name()),
				zap.Error(err))
			sensing.SourceStatus[c.Name()] = SourceStatus{
				Status:     StatusError,
				DurationMS: elapsed,
				Error:      err.Error(),
			}
			observeSource(c.Name(), StatusError, 0)

		case result.Skipped:
			sensing.SourceStatus[c.Name()] = SourceStatus{
				Status:     StatusSkipped,
				DurationMS: elapsed,
			}
			observeSource(c.Name(), StatusSkipped, 0)

		default:
			sensing.MonitoringResults = append(sensing.MonitoringResults, result)
			sensing.SuccessfulSources++
			sensing.TotalSignals += len(result.Signals)
			sensing.SourceStatus[c.Name()] = SourceStatus{
				Status:     StatusSuccess,
				Signals:    len(result.Signals),
				DurationMS: elapsed,
			}
			observeSource(c.Name(), StatusSuccess, len(result.Signals))

			o.logger.Info("source collected",
				zap.String("source", c.Name()),
				zap.Int("signals", len(result.Signals)))
		}
	}

	sensing.SensingCompletedAt = o.now()
	return sensing, nil
}

// runBriefings generates each requested briefing. Failures are contained:
// a briefing that cannot be generated is logged and dropped from the run.
func (o *Orchestrator) runBriefings(report *intel.Report, types []string) []BriefingRun {
	if len(types) == 0 {
		types = []string{briefing.TypeExecutiveSummary}
	}

	runs := make([]BriefingRun, 0, len(types))
	for _, briefingType := range types {
		b, err := o.generator.Generate(report, briefingType)
		if err != nil {
			o.logger.Warn("briefing generation failed",
				zap.String("type", briefingType),
				zap.Error(err))
			continue
		}
		runs = append(runs, BriefingRun{
			Type:        briefingType,
			Briefing:    b,
			GeneratedAt: b.GeneratedAt,
		})
	}
	return runs
}

func (o *Orchestrator) persistOutputs(outputs *Outputs) {
	if o.store == nil {
		return
	}
	for name, v := range map[string]any{
		"summary_dashboard":       outputs.SummaryDashboard,
		"alert_notifications":     outputs.AlertNotifications,
		"content_recommendations": outputs.ContentRecommendations,
		"competitive_updates":     outputs.CompetitiveUpdates,
		"technical_insights":      outputs.TechnicalInsights,
	} {
		if _, err := o.store.WriteOutput(name, v, outputs.GeneratedAt); err != nil {
			o.logger.Warn("output not persisted",
				zap.String("output", name),
				zap.Error(err))
		}
	}
}

func buildMetrics(sensing *Sensing, report *intel.Report, briefings int) Metrics {
	signals := sensing.TotalSignals
	if signals < 1 {
		signals = 1
	}
	return Metrics{
		DataSources:            len(sensing.MonitoringResults),
		SignalsProcessed:       sensing.TotalSignals,
		InsightsGenerated:      len(report.ContextualInsights),
		RecommendationsCreated: len(report.PrioritizedRecommendations),
		BriefingsGenerated:     briefings,
		ProcessingEfficiency:   float64(len(report.ContextualInsights)) / float64(signals),
		StrategicValueScore:    strategicValue(report),
	}
}

// strategicValue weighs high-priority actions triple, critical trends double
// and competitive threats single.
func strategicValue(report *intel.Report) int {
	highPriority := 0
	for _, rec := range report.PrioritizedRecommendations {
		if rec.Priority == signal.PriorityHigh {
			highPriority++
		}
	}

	threats := 0
	for _, p := range report.StrategicSynthesis {
		if p.Type == intel.PatternCompetitiveThreat {
			threats++
		}
	}

	return highPriority*3 + report.CriticalTrendCount()*2 + threats
}

// nextRunTime recommends the next pipeline run: two hours out when critical
// trends are stacking up, otherwise the standard six-hour cycle.
func nextRunTime(report *intel.Report, now time.Time) time.Time {
	if report.CriticalTrendCount() > 2 {
		return now.Add(2 * time.Hour)
	}
	return now.Add(6 * time.Hour)
}

// sensingFromResults wraps pre-collected results as a sensing stage value.
func sensingFromResults(results []*collector.Result, now time.Time) *Sensing {
	sensing := &Sensing{
		SensingCompletedAt: now,
		SourceStatus:       map[string]SourceStatus{},
	}
	for _, result := range results {
		if result == nil {
			continue
		}
		sensing.SourcesProcessed = append(sensing.SourcesProcessed, result.Source)
		sensing.MonitoringResults = append(sensing.MonitoringResults, result)
		sensing.SuccessfulSources++
		sensing.TotalSignals += len(result.Signals)
		sensing.SourceStatus[result.Source] = SourceStatus{
			Status:  StatusSuccess,
			Signals: len(result.Signals),
		}
	}
	return sensing
}
