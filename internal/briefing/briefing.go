// Package briefing renders strategic intelligence reports into
// decision-support briefings: JSON plus a Markdown digest per audience.
package briefing

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crowsnest-io/crowsnest/internal/intel"
	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/crowsnest-io/crowsnest/internal/store"
)

// ErrUnknownType is returned for a briefing type outside the template map.
var ErrUnknownType = errors.New("unknown briefing type")

// Briefing types.
const (
	TypeExecutiveSummary        = "executive_summary"
	TypeTacticalBriefing        = "tactical_briefing"
	TypeCompetitiveIntelligence = "competitive_intelligence"
	TypeMarketIntelligence      = "market_intelligence"
)

// Types lists the supported briefing types in a stable order.
func Types() []string {
	return []string{
		TypeExecutiveSummary,
		TypeTacticalBriefing,
		TypeCompetitiveIntelligence,
		TypeMarketIntelligence,
	}
}

type template struct {
	sections   []string
	reviewDays int
	focus      string
}

var templates = map[string]template{
	TypeExecutiveSummary: {
		sections:   []string{"key_insights", "strategic_recommendations", "competitive_landscape", "market_opportunities", "risk_assessment"},
		reviewDays: 7,
		focus:      "strategic_overview",
	},
	TypeTacticalBriefing: {
		sections:   []string{"immediate_actions", "resource_requirements", "success_metrics", "implementation_timeline"},
		reviewDays: 3,
		focus:      "execution_planning",
	},
	TypeCompetitiveIntelligence: {
		sections:   []string{"competitive_threats", "market_movements", "positioning_analysis", "response_strategies"},
		reviewDays: 5,
		focus:      "competitive_dynamics",
	},
	TypeMarketIntelligence: {
		sections:   []string{"market_opportunities", "developer_sentiment", "technology_trends", "growth_potential"},
		reviewDays: 10,
		focus:      "market_dynamics",
	},
}

// PrioritySummary names one recommendation for the executive view.
type PrioritySummary struct {
	Title     string          `json:"title"`
	Priority  signal.Priority `json:"priority"`
	Timeframe string          `json:"timeframe"`
}

// ExecutiveSummary is the top-of-briefing condensed view.
type ExecutiveSummary struct {
	KeyFindings         []string          `json:"key_findings"`
	StrategicStatus     string            `json:"strategic_status"`
	ImmediatePriorities []PrioritySummary `json:"immediate_priorities"`
	RiskLevel           string            `json:"risk_level"`
	ConfidenceScore     int               `json:"confidence_score"`
}

// ActionItem is one tracked follow-up derived from a recommendation.
type ActionItem struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Priority        signal.Priority `json:"priority"`
	DueDate         string          `json:"due_date"`
	Owner           string          `json:"owner"`
	Status          string          `json:"status"`
	EstimatedEffort string          `json:"estimated_effort"`
}

// SuccessMetrics aggregates success metrics across recommendations.
type SuccessMetrics struct {
	StrategicMetrics     []string          `json:"strategic_metrics"`
	MeasurementFrequency string            `json:"measurement_frequency"`
	ReviewCycle          string            `json:"review_cycle"`
	SuccessThresholds    map[string]string `json:"success_thresholds"`
}

// Briefing is the complete decision-support artifact for one report.
type Briefing struct {
	Title                   string             `json:"title"`
	BriefingType            string             `json:"briefing_type"`
	GeneratedAt             time.Time          `json:"generated_at"`
	IntelligenceSource      time.Time          `json:"intelligence_source"`
	ExecutiveSummary        ExecutiveSummary   `json:"executive_summary"`
	Sections                Sections           `json:"sections"`
	DecisionRecommendations []DecisionAnalysis `json:"decision_recommendations"`
	ActionItems             []ActionItem       `json:"action_items"`
	SuccessMetrics          SuccessMetrics     `json:"success_metrics"`
	NextReviewDate          string             `json:"next_review_date"`
}

// Generator builds briefings from intelligence reports.
type Generator struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a Generator. A nil store disables persistence.
func NewGenerator(st *store.Store, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		store:  st,
		logger: logger.Named("briefing"),
		now:    time.Now,
	}
}

// Generate renders the report as the requested briefing type. A report with
// empty sections still yields a well-formed briefing; an unknown type is the
// only error.
func (g *Generator) Generate(report *intel.Report, briefingType string) (*Briefing, error) {
	tpl, ok := templates[briefingType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, briefingType)
	}
	if report == nil {
		report = &intel.Report{}
	}

	now := g.now()
	b := &Briefing{
		Title:                   briefingTitle(briefingType, now),
		BriefingType:            briefingType,
		GeneratedAt:             now,
		IntelligenceSource:      report.Timestamp,
		ExecutiveSummary:        executiveSummary(report),
		Sections:                g.buildSections(tpl.sections, report),
		DecisionRecommendations: decisionRecommendations(report.PrioritizedRecommendations),
		ActionItems:             actionItems(report.PrioritizedRecommendations, now),
		SuccessMetrics:          successMetrics(report.PrioritizedRecommendations),
		NextReviewDate:          now.AddDate(0, 0, tpl.reviewDays).Format("2006-01-02"),
	}

	g.logger.Info("briefing generated",
		zap.String("type", briefingType),
		zap.Int("action_items", len(b.ActionItems)),
		zap.Int("decision_points", len(b.DecisionRecommendations)))

	if g.store != nil {
		if path, err := g.store.WriteBriefing(briefingType, b, Markdown(b), now); err != nil {
			g.logger.Warn("briefing not persisted", zap.Error(err))
		} else {
			g.logger.Info("briefing written", zap.String("path", path))
		}
	}

	return b, nil
}

func briefingTitle(briefingType string, now time.Time) string {
	return titleCase(briefingType) + " - " + now.Format("January 2, 2006")
}

func executiveSummary(report *intel.Report) ExecutiveSummary {
	criticalTrends := report.CriticalTrendCount()

	var threats, opportunities int
	for _, p := range report.StrategicSynthesis {
		switch p.Type {
		case intel.PatternCompetitiveThreat:
			threats++
		case intel.PatternMarketOpportunity:
			opportunities++
		}
	}

	highPriority := 0
	for _, rec := range report.PrioritizedRecommendations {
		if rec.Priority == signal.PriorityHigh {
			highPriority++
		}
	}

	priorities := make([]PrioritySummary, 0, 3)
	for _, rec := range report.PrioritizedRecommendations {
		if len(priorities) == 3 {
			break
		}
		priorities = append(priorities, PrioritySummary{
			Title:     rec.Title,
			Priority:  rec.Priority,
			Timeframe: rec.Timeframe,
		})
	}

	return ExecutiveSummary{
		KeyFindings: []string{
			fmt.Sprintf("Processed %d intelligence signals across multiple platforms", len(report.ContextualInsights)),
			fmt.Sprintf("Identified %d critical trends requiring immediate attention", criticalTrends),
			fmt.Sprintf("Detected %d competitive threats and %d market opportunities", threats, opportunities),
			fmt.Sprintf("Generated %d high-priority strategic recommendations", highPriority),
		},
		StrategicStatus:     strategicStatus(threats, opportunities),
		ImmediatePriorities: priorities,
		RiskLevel:           overallRiskLevel(report.StrategicSynthesis),
		ConfidenceScore:     confidenceScore(report.ContextualInsights),
	}
}

func strategicStatus(threats, opportunities int) string {
	if threats > opportunities && threats > 2 {
		return "defensive"
	}
	if opportunities > threats && opportunities > 2 {
		return "offensive"
	}
	return "balanced"
}

func overallRiskLevel(patterns []intel.Pattern) string {
	var critical, high int
	for _, p := range patterns {
		if p.Type != intel.PatternCompetitiveThreat {
			continue
		}
		switch p.ThreatLevel {
		case "critical":
			critical++
		case "high":
			high++
		}
	}

	if critical > 0 {
		return "high"
	}
	if high > 2 {
		return "medium"
	}
	return "low"
}

// confidenceScore blends average product relevance with the share of
// cross-validated insights, 0..100.
func confidenceScore(insights []intel.Insight) int {
	if len(insights) == 0 {
		return 0
	}

	var relevanceSum float64
	crossValidated := 0
	for _, insight := range insights {
		relevanceSum += insight.ProductRelevance
		if len(insight.CrossPlatformCorrelation) > 0 {
			crossValidated++
		}
	}

	relevanceScore := relevanceSum / float64(len(insights)) / 100
	if relevanceScore > 1 {
		relevanceScore = 1
	}
	validationScore := float64(crossValidated) / float64(len(insights))

	return int((relevanceScore*0.6+validationScore*0.4)*100 + 0.5)
}

const actionItemCap = 10

func actionItems(recs []intel.Recommendation, now time.Time) []ActionItem {
	items := make([]ActionItem, 0, actionItemCap)
	for i, rec := range recs {
		if i == actionItemCap {
			break
		}
		items = append(items, ActionItem{
			ID:              fmt.Sprintf("action_%d", i+1),
			Title:           rec.Title,
			Description:     rec.Action,
			Priority:        rec.Priority,
			DueDate:         actionDeadline(rec, now),
			Owner:           actionOwner(rec),
			Status:          "pending",
			EstimatedEffort: actionEffort(rec),
		})
	}
	return items
}

func actionOwner(rec intel.Recommendation) string {
	owners := map[string]string{
		"competitive_response":  "Strategic Team",
		"market_capture":        "Product Team",
		"technology_adaptation": "Engineering Team",
		"sentiment_management":  "Developer Relations",
		"strategic_initiative":  "Leadership Team",
	}
	if owner, ok := owners[rec.Type]; ok {
		return owner
	}
	return "Strategy Team"
}

func actionDeadline(rec intel.Recommendation, now time.Time) string {
	days := map[string]int{
		intel.TimeframeImmediate:  3,
		intel.TimeframeShortTerm:  14,
		intel.TimeframeMediumTerm: 30,
		intel.TimeframeOngoing:    90,
	}
	d, ok := days[rec.Timeframe]
	if !ok {
		d = 14
	}
	return now.AddDate(0, 0, d).Format("2006-01-02")
}

func actionEffort(rec intel.Recommendation) string {
	switch n := len(rec.ResourcesRequired); {
	case n >= 4:
		return "high"
	case n >= 2:
		return "medium"
	default:
		return "low"
	}
}

func successMetrics(recs []intel.Recommendation) SuccessMetrics {
	seen := map[string]bool{}
	var metrics []string
	for _, rec := range recs {
		for _, metric := range rec.SuccessMetrics {
			if !seen[metric] {
				seen[metric] = true
				metrics = append(metrics, metric)
			}
		}
	}
	if len(metrics) > 5 {
		metrics = metrics[:5]
	}

	thresholds := map[string]string{}
	for _, metric := range metrics {
		thresholds[metric] = successThreshold(metric)
	}

	return SuccessMetrics{
		StrategicMetrics:     metrics,
		MeasurementFrequency: "weekly",
		ReviewCycle:          "monthly",
		SuccessThresholds:    thresholds,
	}
}

func successThreshold(metric string) string {
	switch metric {
	case "sentiment improvement":
		return "20% increase in positive sentiment"
	case "market share protection":
		return "Maintain current market position"
	case "developer mindshare":
		return "15% increase in developer awareness"
	case "developer adoption":
		return "25% increase in new users"
	case "content engagement":
		return "30% increase in content views/interactions"
	case "feature usage":
		return "40% adoption rate for new features"
	default:
		return "Measurable improvement over baseline"
	}
}

func titleCase(s string) string {
	out := []byte(s)
	upper := true
	for i, c := range out {
		switch {
		case c == '_':
			out[i] = ' '
			upper = true
		case upper && 'a' <= c && c <= 'z':
			out[i] = c - 'a' + 'A'
			upper = false
		default:
			upper = false
		}
	}
	return string(out)
}
