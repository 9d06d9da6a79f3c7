package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/collector"
	"github.com/crowsnest-io/crowsnest/internal/intel"
	"github.com/crowsnest-io/crowsnest/internal/signal"
)

// Outputs is the actionable output bundle of one pipeline run. Each member
// is also persisted as its own reports/intelligence/<name>-<unix-ms>.json
// artifact.
type Outputs struct {
	GeneratedAt            time.Time          `json:"generated_at"`
	SummaryDashboard       *Dashboard         `json:"summary_dashboard"`
	AlertNotifications     *Alerts            `json:"alert_notifications"`
	ContentRecommendations *ContentDigest     `json:"content_recommendations"`
	CompetitiveUpdates     *CompetitiveUpdate `json:"competitive_updates"`
	TechnicalInsights      *TechDigest        `json:"technical_insights"`
}

// IntelligenceSummary is the dashboard headline block.
type IntelligenceSummary struct {
	TotalInsights       int `json:"total_insights"`
	CriticalTrends      int `json:"critical_trends"`
	HighPriorityActions int `json:"high_priority_actions"`
	CompetitiveThreats  int `json:"competitive_threats"`
	MarketOpportunities int `json:"market_opportunities"`
}

// RecommendationSummary is one dashboard recommendation row.
type RecommendationSummary struct {
	Title     string          `json:"title"`
	Priority  signal.Priority `json:"priority"`
	Timeframe string          `json:"timeframe"`
	Impact    string          `json:"impact"`
}

// BriefingSummary points to one generated briefing.
type BriefingSummary struct {
	Type        string `json:"type"`
	ActionItems int    `json:"action_items"`
	NextReview  string `json:"next_review"`
}

// SystemStatus reports pipeline health for the dashboard.
type SystemStatus struct {
	PipelineHealth  string `json:"pipeline_health"`
	DataQuality     string `json:"data_quality"`
	ProcessingSpeed string `json:"processing_speed"`
	AlertLevel      string `json:"alert_level"`
}

// Dashboard is the summary dashboard output.
type Dashboard struct {
	GeneratedAt         time.Time               `json:"generated_at"`
	IntelligenceSummary IntelligenceSummary     `json:"intelligence_summary"`
	TopRecommendations  []RecommendationSummary `json:"top_recommendations"`
	BriefingsAvailable  []BriefingSummary       `json:"briefings_available"`
	SystemStatus        SystemStatus            `json:"system_status"`
}

// Alert is one critical notification.
type Alert struct {
	Type           string   `json:"type"`
	Severity       string   `json:"severity"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	ActionRequired string   `json:"action_required"`
	Frameworks     []string `json:"frameworks,omitempty"`
	Competitor     string   `json:"competitor,omitempty"`
}

// Alerts is the alert notifications output.
type Alerts struct {
	GeneratedAt  time.Time `json:"generated_at"`
	TotalAlerts  int       `json:"total_alerts"`
	HighSeverity int       `json:"high_severity"`
	Alerts       []Alert   `json:"alerts"`
}

// ContentRecommendation suggests one piece of content worth producing.
type ContentRecommendation struct {
	Type             string   `json:"type"`
	Topic            string   `json:"topic"`
	SuggestedContent string   `json:"suggested_content"`
	TargetFrameworks []string `json:"target_frameworks,omitempty"`
	Competitor       string   `json:"competitor,omitempty"`
	Priority         string   `json:"priority"`
	ContentFormats   []string `json:"content_formats"`
}

// ContentDigest is the content recommendations output.
type ContentDigest struct {
	GeneratedAt          time.Time               `json:"generated_at"`
	TotalRecommendations int                     `json:"total_recommendations"`
	HighPriority         int                     `json:"high_priority"`
	Recommendations      []ContentRecommendation `json:"recommendations"`
}

// PositionChanges tracks competitive pressure between runs.
type PositionChanges struct {
	CompetitivePressure int    `json:"competitive_pressure"`
	MarketOpportunities int    `json:"market_opportunities"`
	PositionTrend       string `json:"position_trend"`
	StrategicClarity    string `json:"strategic_clarity"`
}

// CompetitiveUpdate is the competitive intelligence output.
type CompetitiveUpdate struct {
	GeneratedAt                time.Time               `json:"generated_at"`
	CompetitiveLandscape       intel.Landscape         `json:"competitive_landscape"`
	ActiveThreats              []intel.Pattern         `json:"active_threats"`
	PositioningRecommendations intel.PositioningUpdate `json:"positioning_recommendations"`
	MarketPositionChanges      PositionChanges         `json:"market_position_changes"`
}

// TechnologyInsight is one development-facing trend note.
type TechnologyInsight struct {
	Type           string `json:"type"`
	Technology     string `json:"technology"`
	ImpactLevel    string `json:"impact_level"`
	Recommendation string `json:"recommendation"`
	Timeline       string `json:"timeline"`
}

// FrameworkHealth scores one framework's activity and sentiment.
type FrameworkHealth struct {
	Framework          string `json:"framework"`
	ActivityLevel      string `json:"activity_level"`
	SentimentIndicator string `json:"sentiment_indicator"`
	HealthStatus       string `json:"health_status"`
}

// TechDigest is the technical insights output.
type TechDigest struct {
	GeneratedAt     time.Time           `json:"generated_at"`
	TotalInsights   int                 `json:"total_insights"`
	Insights        []TechnologyInsight `json:"insights"`
	FrameworkHealth []FrameworkHealth   `json:"framework_health"`
}

// buildOutputs derives the five actionable outputs from the report and the
// generated briefings.
func (o *Orchestrator) buildOutputs(report *intel.Report, briefings []BriefingRun) *Outputs {
	now := o.now()
	return &Outputs{
		GeneratedAt:            now,
		SummaryDashboard:       buildDashboard(report, briefings, now),
		AlertNotifications:     buildAlerts(report, now),
		ContentRecommendations: buildContentDigest(report, now),
		CompetitiveUpdates:     buildCompetitiveUpdate(report, now),
		TechnicalInsights:      buildTechDigest(report, now),
	}
}

func buildDashboard(report *intel.Report, briefings []BriefingRun, now time.Time) *Dashboard {
	highPriority := 0
	for _, rec := range report.PrioritizedRecommendations {
		if rec.Priority == signal.PriorityHigh {
			highPriority++
		}
	}

	top := report.PrioritizedRecommendations
	if len(top) > 5 {
		top = top[:5]
	}
	topSummaries := make([]RecommendationSummary, 0, len(top))
	for _, rec := range top {
		topSummaries = append(topSummaries, RecommendationSummary{
			Title:     rec.Title,
			Priority:  rec.Priority,
			Timeframe: rec.Timeframe,
			Impact:    rec.ExpectedImpact,
		})
	}

	available := make([]BriefingSummary, 0, len(briefings))
	for _, run := range briefings {
		available = append(available, BriefingSummary{
			Type:        run.Type,
			ActionItems: len(run.Briefing.ActionItems),
			NextReview:  run.Briefing.NextReviewDate,
		})
	}

	quality := "limited"
	if len(report.ContextualInsights) > 5 {
		quality = "good"
	}

	return &Dashboard{
		GeneratedAt: now,
		IntelligenceSummary: IntelligenceSummary{
			TotalInsights:       len(report.ContextualInsights),
			CriticalTrends:      report.CriticalTrendCount(),
			HighPriorityActions: highPriority,
			CompetitiveThreats:  countPatterns(report, intel.PatternCompetitiveThreat),
			MarketOpportunities: countPatterns(report, intel.PatternMarketOpportunity),
		},
		TopRecommendations: topSummaries,
		BriefingsAvailable: available,
		SystemStatus: SystemStatus{
			PipelineHealth:  "operational",
			DataQuality:     quality,
			ProcessingSpeed: "normal",
			AlertLevel:      alertLevel(report),
		},
	}
}

// alertLevel escalates on any critical competitive threat or a pile-up of
// critical trends.
func alertLevel(report *intel.Report) string {
	criticalTrends := report.CriticalTrendCount()
	if report.CriticalThreatCount() > 0 || criticalTrends > 2 {
		return "high"
	}
	if criticalTrends > 0 {
		return "medium"
	}
	return "low"
}

func buildAlerts(report *intel.Report, now time.Time) *Alerts {
	var alerts []Alert

	for _, insight := range report.ContextualInsights {
		if insight.TrendIndicator != intel.TrendCritical {
			continue
		}
		alerts = append(alerts, Alert{
			Type:           "critical_trend",
			Severity:       "high",
			Title:          "Critical trend detected: " + strings.Join(insight.FrameworksMentioned, ", "),
			Description:    insight.StrategicImplication,
			ActionRequired: "immediate_review",
			Frameworks:     insight.FrameworksMentioned,
		})
	}

	for _, p := range report.StrategicSynthesis {
		if p.Type != intel.PatternCompetitiveThreat || p.ThreatLevel != "critical" {
			continue
		}
		alerts = append(alerts, Alert{
			Type:           "competitive_threat",
			Severity:       "high",
			Title:          "Critical competitive threat: " + p.Competitor,
			Description:    p.StrategicResponse,
			ActionRequired: "competitive_response",
			Competitor:     p.Competitor,
		})
	}

	high := 0
	for _, a := range alerts {
		if a.Severity == "high" {
			high++
		}
	}

	return &Alerts{
		GeneratedAt:  now,
		TotalAlerts:  len(alerts),
		HighSeverity: high,
		Alerts:       alerts,
	}
}

func buildContentDigest(report *intel.Report, now time.Time) *ContentDigest {
	var recs []ContentRecommendation

	for _, p := range report.StrategicSynthesis {
		switch p.Type {
		case intel.PatternMarketOpportunity:
			priority := "medium"
			if p.EngagementLevel > 25 {
				priority = "high"
			}
			recs = append(recs, ContentRecommendation{
				Type:             "market_opportunity_content",
				Topic:            p.OpportunityTheme,
				SuggestedContent: fmt.Sprintf("Create content addressing %s pain points", p.OpportunityTheme),
				TargetFrameworks: p.AffectedFrameworks,
				Priority:         priority,
				ContentFormats:   []string{"blog_post", "tutorial", "documentation"},
			})

		case intel.PatternCompetitiveThreat:
			priority := "medium"
			if p.ThreatLevel == "critical" {
				priority = "high"
			}
			recs = append(recs, ContentRecommendation{
				Type:             "competitive_positioning",
				Topic:            "Positioning against " + p.Competitor,
				SuggestedContent: p.StrategicResponse,
				Competitor:       p.Competitor,
				Priority:         priority,
				ContentFormats:   []string{"comparison", "benchmark", "case_study"},
			})
		}
	}

	high := 0
	for _, rec := range recs {
		if rec.Priority == "high" {
			high++
		}
	}

	return &ContentDigest{
		GeneratedAt:          now,
		TotalRecommendations: len(recs),
		HighPriority:         high,
		Recommendations:      recs,
	}
}

func buildCompetitiveUpdate(report *intel.Report, now time.Time) *CompetitiveUpdate {
	var threats []intel.Pattern
	for _, p := range report.StrategicSynthesis {
		if p.Type == intel.PatternCompetitiveThreat {
			threats = append(threats, p)
		}
	}

	return &CompetitiveUpdate{
		GeneratedAt:                now,
		CompetitiveLandscape:       report.CompetitiveLandscape,
		ActiveThreats:              threats,
		PositioningRecommendations: report.Positioning,
		MarketPositionChanges: PositionChanges{
			CompetitivePressure: len(threats),
			MarketOpportunities: countPatterns(report, intel.PatternMarketOpportunity),
			PositionTrend:       "stable",
			StrategicClarity:    report.Positioning.PositioningConfidence,
		},
	}
}

func buildTechDigest(report *intel.Report, now time.Time) *TechDigest {
	var insights []TechnologyInsight
	for _, p := range report.StrategicSynthesis {
		if p.Type != intel.PatternTechnologyShift {
			continue
		}
		insights = append(insights, TechnologyInsight{
			Type:           "technology_trend",
			Technology:     p.Technology,
			ImpactLevel:    p.StrategicImpact,
			Recommendation: p.RecommendedResponse,
			Timeline:       p.Timeframe,
		})
	}

	return &TechDigest{
		GeneratedAt:     now,
		TotalInsights:   len(insights),
		Insights:        insights,
		FrameworkHealth: assessFrameworkHealth(report),
	}
}

// assessFrameworkHealth scores per-framework activity from insight counts and
// a trend-derived sentiment: critical trends drag a framework down, emerging
// trends lift it.
func assessFrameworkHealth(report *intel.Report) []FrameworkHealth {
	type tally struct {
		count     int
		sentiment int
	}
	mentions := map[string]*tally{}

	for _, insight := range report.ContextualInsights {
		for _, framework := range insight.FrameworksMentioned {
			t := mentions[framework]
			if t == nil {
				t = &tally{}
				mentions[framework] = t
			}
			t.count++
			switch insight.TrendIndicator {
			case intel.TrendCritical:
				t.sentiment--
			case intel.TrendEmerging:
				t.sentiment++
			}
		}
	}

	frameworks := make([]string, 0, len(mentions))
	for framework := range mentions {
		frameworks = append(frameworks, framework)
	}
	sort.Strings(frameworks)

	health := make([]FrameworkHealth, 0, len(frameworks))
	for _, framework := range frameworks {
		t := mentions[framework]

		activity := "low"
		switch {
		case t.count > 5:
			activity = "high"
		case t.count > 2:
			activity = "medium"
		}

		sentiment := "neutral"
		switch {
		case t.sentiment > 0:
			sentiment = "positive"
		case t.sentiment < 0:
			sentiment = "negative"
		}

		status := "monitor"
		if t.count > 3 && t.sentiment >= 0 {
			status = "healthy"
		}

		health = append(health, FrameworkHealth{
			Framework:          framework,
			ActivityLevel:      activity,
			SentimentIndicator: sentiment,
			HealthStatus:       status,
		})
	}
	return health
}

func countPatterns(report *intel.Report, patternType string) int {
	n := 0
	for _, p := range report.StrategicSynthesis {
		if p.Type == patternType {
			n++
		}
	}
	return n
}

// sampleResults is the fixed batch behind RunSample.
func sampleResults(now time.Time) []*collector.Result {
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

	return []*collector.Result{{
		Source:    "sample",
		Timestamp: now,
		Signals:   signals,
		Summary:   collector.BuildSummary(signals),
	}}
}
