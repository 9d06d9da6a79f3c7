package intel

import (
	"strings"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/config"
	"github.com/crowsnest-io/crowsnest/internal/signal"
)

// Insight types ordered by strategic weight.
const (
	TypeTechnologyTrend        = "technology_trend"
	TypeSecurityAdvisory       = "security_advisory"
	TypePerformanceBenchmark   = "performance_benchmark"
	TypeCompetitiveOpportunity = "competitive_opportunity"
	TypeGeneralDiscussion      = "general_discussion"
)

// Trend indicators assigned during cross-platform correlation.
const (
	TrendIsolated    = "isolated"
	TrendWeak        = "weak_signal"
	TrendEmerging    = "emerging_trend"
	TrendSignificant = "significant_trend"
	TrendCritical    = "critical_trend"
)

// Insight extraction floors. Signals below both are skipped outright.
const (
	insightRelevanceFloor  = 20.0
	insightEngagementFloor = 15.0
)

// EngagementMetrics carries the scores an insight inherits from its signal.
type EngagementMetrics struct {
	EngagementScore float64         `json:"engagement_score"`
	RelevanceScore  float64         `json:"relevance_score"`
	Priority        signal.Priority `json:"priority"`
}

// CompetitorMention records a competitor profile matched in a signal.
type CompetitorMention struct {
	Profile        config.CompetitorProfile `json:"profile"`
	MentionContext string                   `json:"mention_context"`
}

// Correlation describes cross-platform agreement on one framework and
// insight type.
type Correlation struct {
	Framework             string   `json:"framework"`
	CrossPlatformMentions int      `json:"cross_platform_mentions"`
	Platforms             []string `json:"platforms"`
	TrendStrength         float64  `json:"trend_strength"`
}

// SourceRef points back at the signal an insight was extracted from.
type SourceRef struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
	Author   string `json:"author"`
}

// Insight is a single signal interpreted against the competitive context.
type Insight struct {
	ID                       string                       `json:"id"`
	Source                   string                       `json:"source"`
	ContentID                string                       `json:"content_id"`
	InsightType              string                       `json:"insight_type"`
	Title                    string                       `json:"title"`
	StrategicImplication     string                       `json:"strategic_implication"`
	CompetitiveContext       map[string]CompetitorMention `json:"competitive_context"`
	FrameworksMentioned      []string                     `json:"frameworks_mentioned"`
	EngagementMetrics        EngagementMetrics            `json:"engagement_metrics"`
	ProductRelevance         float64                      `json:"product_relevance"`
	ExtractedAt              time.Time                    `json:"extracted_at"`
	Raw                      SourceRef                    `json:"raw_data"`
	CrossPlatformCorrelation []Correlation                `json:"cross_platform_correlation"`
	TrendIndicator           string                       `json:"trend_indicator"`
}

// extractInsight interprets one signal. Returns nil for low-value content
// that clears neither floor.
func (e *Engine) extractInsight(sig signal.Signal) *Insight {
	if sig.RelevanceScore < insightRelevanceFloor && sig.EngagementScore < insightEngagementFloor {
		return nil
	}

	insightType, implication := classifyInsight(sig.Categories)

	context := map[string]CompetitorMention{}
	for _, framework := range sig.Frameworks {
		profile, ok := e.cfg.Competitors[strings.ToLower(framework)]
		if !ok {
			continue
		}
		mentionContext := sig.Title
		if mentionContext == "" {
			mentionContext = sig.Content
		}
		context[framework] = CompetitorMention{
			Profile:        profile,
			MentionContext: mentionContext,
		}
	}

	priority := sig.Priority
	if priority == "" {
		priority = signal.PriorityLow
	}

	return &Insight{
		ID:                   "insight-" + e.newID(),
		Source:               sig.Platform,
		ContentID:            sig.ID,
		InsightType:          insightType,
		Title:                sig.Title,
		StrategicImplication: implication,
		CompetitiveContext:   context,
		FrameworksMentioned:  sig.Frameworks,
		EngagementMetrics: EngagementMetrics{
			EngagementScore: sig.EngagementScore,
			RelevanceScore:  sig.RelevanceScore,
			Priority:        priority,
		},
		ProductRelevance: e.productRelevance(sig),
		ExtractedAt:      e.now(),
		Raw: SourceRef{
			URL:      sig.URL,
			Platform: sig.Platform,
			Author:   sig.Author,
		},
	}
}

// classifyInsight maps signal categories to an insight type. Release and
// security categories win over performance and issue categories.
func classifyInsight(categories []string) (insightType, implication string) {
	has := func(names ...string) bool {
		for _, c := range categories {
			for _, n := range names {
				if c == n {
					return true
				}
			}
		}
		return false
	}

	switch {
	case has("release", "update"):
		return TypeTechnologyTrend, "Monitor for feature parity opportunities"
	case has("security", "vulnerability"):
		return TypeSecurityAdvisory, "Assess impact on core stack security"
	case has("performance", "benchmark"):
		return TypePerformanceBenchmark, "Evaluate competitive performance positioning"
	case has("issue", "bug"):
		return TypeCompetitiveOpportunity, "Potential competitive advantage if our stack handles this better"
	default:
		return TypeGeneralDiscussion, ""
	}
}

// productRelevance scores how directly a signal touches our own positioning,
// 0..100.
func (e *Engine) productRelevance(sig signal.Signal) float64 {
	content := strings.ToLower(sig.Title + " " + sig.Content)
	var relevance float64

	for _, strength := range e.cfg.Positioning.CoreStrengths {
		keyword := strings.ReplaceAll(strength, "_", " ")
		if strings.Contains(content, keyword) || strings.Contains(content, strength) {
			relevance += 15
		}
	}

	for _, term := range e.cfg.Positioning.AINativeTerms {
		if strings.Contains(content, term) {
			relevance += 20
		}
	}

	if strings.Contains(content, "accessibility") || strings.Contains(content, "a11y") {
		relevance += 12
	}
	if strings.Contains(content, "performance") && strings.Contains(content, "optimization") {
		relevance += 10
	}
	if strings.Contains(content, "turbopack") || strings.Contains(content, "react compiler") {
		relevance += 15
	}
	if strings.Contains(content, "developer experience") || strings.Contains(content, "dx") {
		relevance += 8
	}
	if strings.Contains(content, "productivity") && strings.Contains(content, "development") {
		relevance += 8
	}

	if relevance > 100 {
		relevance = 100
	}
	return relevance
}
