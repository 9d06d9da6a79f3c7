// Package intel turns processed signals into a strategic intelligence
// report: contextual insights, cross-platform patterns and prioritized
// recommendations.
package intel

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crowsnest-io/crowsnest/internal/config"
	"github.com/crowsnest-io/crowsnest/internal/processor"
	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/crowsnest-io/crowsnest/internal/store"
)

// InputSummary describes the processed batch the report was built from.
type InputSummary struct {
	TotalSources   int       `json:"total_sources"`
	Platforms      []string  `json:"platforms"`
	Timeframe      string    `json:"timeframe"`
	ProcessingTime time.Time `json:"processing_time"`
}

// CompetitorActivity summarizes one competitor's presence in the insights.
type CompetitorActivity struct {
	Name         string `json:"name"`
	MentionCount int    `json:"mention_count"`
}

// Landscape is the competitive landscape summary.
type Landscape struct {
	ActiveCompetitors    int                  `json:"active_competitors"`
	TopCompetitors       []CompetitorActivity `json:"top_competitors"`
	LandscapeAssessment  string               `json:"landscape_assessment"`
	StrategicPositioning string               `json:"strategic_positioning"`
}

// OpportunitySummary aggregates market opportunity patterns.
type OpportunitySummary struct {
	TotalOpportunities int      `json:"total_opportunities"`
	HighPriorityCount  int      `json:"high_priority_count"`
	OpportunityThemes  []string `json:"opportunity_themes"`
	MarketReadiness    string   `json:"market_readiness"`
}

// PositioningUpdate restates positioning in light of the recommendations.
type PositioningUpdate struct {
	CompetitiveAdvantages []string `json:"competitive_advantages"`
	MarketFocusAreas      []string `json:"market_focus_areas"`
	StrategicPriorities   []string `json:"strategic_priorities"`
	PositioningConfidence string   `json:"positioning_confidence"`
	StrategicClarity      string   `json:"strategic_clarity"`
}

// Report is the full strategic intelligence output for one processed batch.
type Report struct {
	Timestamp                  time.Time          `json:"timestamp"`
	ProcessingPipeline         string             `json:"processing_pipeline"`
	InputSummary               InputSummary       `json:"input_summary"`
	ContextualInsights         []Insight          `json:"contextual_insights"`
	StrategicSynthesis         []Pattern          `json:"strategic_synthesis"`
	ActionableOutputs          []Recommendation   `json:"actionable_outputs"`
	PrioritizedRecommendations []Recommendation   `json:"prioritized_recommendations"`
	CompetitiveLandscape       Landscape          `json:"competitive_landscape"`
	MarketOpportunities        OpportunitySummary `json:"market_opportunities"`
	Positioning                PositioningUpdate  `json:"positioning"`
}

// CriticalTrendCount counts insights carrying the critical trend indicator.
func (r *Report) CriticalTrendCount() int {
	n := 0
	for _, insight := range r.ContextualInsights {
		if insight.TrendIndicator == TrendCritical {
			n++
		}
	}
	return n
}

// CriticalThreatCount counts competitive threat patterns at critical level.
func (r *Report) CriticalThreatCount() int {
	n := 0
	for _, p := range r.StrategicSynthesis {
		if p.Type == PatternCompetitiveThreat && p.ThreatLevel == "critical" {
			n++
		}
	}
	return n
}

// Engine runs the intelligence analysis stages.
type Engine struct {
	cfg    config.ScoringConfig
	store  *store.Store
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewEngine creates an Engine. A nil store disables report persistence.
func NewEngine(cfg config.ScoringConfig, st *store.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		store:  st,
		logger: logger.Named("intel"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// ProcessIntelligence runs the four analysis stages over a processed batch:
// contextual insight extraction, strategic synthesis, actionable output
// generation and priority assessment. A nil or empty batch yields an empty
// report, never an error.
func (e *Engine) ProcessIntelligence(batch *processor.Processed) (*Report, error) {
	var signals []signal.Signal
	if batch != nil {
		signals = batch.Results
	}

	insights := make([]*Insight, 0, len(signals))
	for _, sig := range signals {
		if insight := e.extractInsight(sig); insight != nil {
			insights = append(insights, insight)
		}
	}
	e.correlate(insights)

	patterns := e.synthesize(insights)
	outputs := recommend(patterns)
	prioritized := prioritize(outputs)

	report := &Report{
		Timestamp:                  e.now(),
		ProcessingPipeline:         "strategic_intelligence_v1",
		InputSummary:               summarizeInput(signals, e.now()),
		ContextualInsights:         deref(insights),
		StrategicSynthesis:         patterns,
		ActionableOutputs:          outputs,
		PrioritizedRecommendations: prioritized,
		CompetitiveLandscape:       assessLandscape(insights),
		MarketOpportunities:        summarizeOpportunities(patterns),
		Positioning:                e.updatePositioning(prioritized),
	}

	e.logger.Info("intelligence processed",
		zap.Int("insights", len(report.ContextualInsights)),
		zap.Int("patterns", len(report.StrategicSynthesis)),
		zap.Int("recommendations", len(report.PrioritizedRecommendations)))

	if e.store != nil {
		if path, err := e.store.WriteIntelligenceReport(report, report.Timestamp); err != nil {
			e.logger.Warn("intelligence report not persisted", zap.Error(err))
		} else {
			e.logger.Info("intelligence report written", zap.String("path", path))
		}
	}

	return report, nil
}

func deref(insights []*Insight) []Insight {
	out := make([]Insight, len(insights))
	for i, insight := range insights {
		out[i] = *insight
	}
	return out
}

func summarizeInput(signals []signal.Signal, now time.Time) InputSummary {
	seen := map[string]bool{}
	var platforms []string
	for _, sig := range signals {
		if !seen[sig.Platform] {
			seen[sig.Platform] = true
			platforms = append(platforms, sig.Platform)
		}
	}

	return InputSummary{
		TotalSources:   len(signals),
		Platforms:      platforms,
		Timeframe:      "recent",
		ProcessingTime: now,
	}
}

func assessLandscape(insights []*Insight) Landscape {
	counts := map[string]int{}
	for _, insight := range insights {
		for competitor := range insight.CompetitiveContext {
			counts[competitor]++
		}
	}

	top := make([]CompetitorActivity, 0, len(counts))
	for _, name := range sortedKeys(counts) {
		top = append(top, CompetitorActivity{Name: name, MentionCount: counts[name]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].MentionCount > top[j].MentionCount
	})
	if len(top) > 5 {
		top = top[:5]
	}

	return Landscape{
		ActiveCompetitors:    len(counts),
		TopCompetitors:       top,
		LandscapeAssessment:  "dynamic",
		StrategicPositioning: "defensive",
	}
}

func summarizeOpportunities(patterns []Pattern) OpportunitySummary {
	summary := OpportunitySummary{MarketReadiness: "selective_opportunities"}
	seen := map[string]bool{}

	for _, p := range patterns {
		if p.Type != PatternMarketOpportunity {
			continue
		}
		summary.TotalOpportunities++
		if p.EngagementLevel > 25 {
			summary.HighPriorityCount++
		}
		if !seen[p.OpportunityTheme] {
			seen[p.OpportunityTheme] = true
			summary.OpportunityThemes = append(summary.OpportunityThemes, p.OpportunityTheme)
		}
	}

	if summary.TotalOpportunities > 2 {
		summary.MarketReadiness = "multiple_opportunities"
	}
	return summary
}

func (e *Engine) updatePositioning(recs []Recommendation) PositioningUpdate {
	update := PositioningUpdate{
		CompetitiveAdvantages: append([]string{}, e.cfg.Positioning.CoreStrengths...),
		StrategicClarity:      "evolving",
	}

	highPriority := 0
	for _, rec := range recs {
		if rec.Priority == signal.PriorityHigh {
			highPriority++
		}
		switch rec.Type {
		case "competitive_response":
			if len(rec.FrameworksAffected) > 0 {
				update.StrategicPriorities = append(update.StrategicPriorities,
					"Counter "+rec.FrameworksAffected[0]+" competition")
			}
		case "market_capture":
			area := strings.TrimPrefix(rec.Title, "Capture ")
			area = strings.TrimSuffix(area, " market opportunity")
			update.MarketFocusAreas = append(update.MarketFocusAreas, area)
		}
	}

	// Many concurrent high-priority actions dilute confidence.
	if highPriority < 3 {
		update.PositioningConfidence = "high"
	} else {
		update.PositioningConfidence = "medium"
	}
	return update
}
