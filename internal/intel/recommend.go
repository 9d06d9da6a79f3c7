package intel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crowsnest-io/crowsnest/internal/signal"
)

// Timeframe vocabulary, most to least urgent.
const (
	TimeframeImmediate  = "immediate"
	TimeframeShortTerm  = "short_term"
	TimeframeMediumTerm = "medium_term"
	TimeframeOngoing    = "ongoing"
)

// Recommendation is one actionable output derived from a strategic pattern.
type Recommendation struct {
	Type               string          `json:"type"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Action             string          `json:"action"`
	Priority           signal.Priority `json:"priority"`
	Timeframe          string          `json:"timeframe"`
	ExpectedImpact     string          `json:"expected_impact"`
	SuccessMetrics     []string        `json:"success_metrics"`
	ResourcesRequired  []string        `json:"resources_required"`
	FrameworksAffected []string        `json:"frameworks_affected"`
}

// recommend converts each pattern into an actionable recommendation and
// appends meta-recommendations for broad pattern clusters.
func recommend(patterns []Pattern) []Recommendation {
	var recs []Recommendation
	for _, pattern := range patterns {
		if rec, ok := patternAction(pattern); ok {
			recs = append(recs, rec)
		}
	}
	recs = append(recs, metaActions(patterns)...)
	return recs
}

func patternAction(p Pattern) (Recommendation, bool) {
	switch p.Type {
	case PatternCompetitiveThreat:
		priority := signal.PriorityLow
		switch p.ThreatLevel {
		case "critical":
			priority = signal.PriorityHigh
		case "high":
			priority = signal.PriorityMedium
		}
		return Recommendation{
			Type:        "competitive_response",
			Title:       fmt.Sprintf("Counter %s competitive threat", p.Competitor),
			Description: fmt.Sprintf("%s showing %s threat level with %d mentions", p.Competitor, p.ThreatLevel, p.MentionCount),
			Action:      p.StrategicResponse,
			Priority:    priority,
			Timeframe:   p.Timeframe,

			ExpectedImpact:     fmt.Sprintf("Maintain competitive position against %s", p.Competitor),
			SuccessMetrics:     []string{"sentiment improvement", "market share protection", "developer mindshare"},
			ResourcesRequired:  []string{"content creation", "developer relations", "technical benchmarking"},
			FrameworksAffected: []string{p.Competitor},
		}, true

	case PatternMarketOpportunity:
		priority := signal.PriorityMedium
		if p.EngagementLevel > 25 {
			priority = signal.PriorityHigh
		}
		return Recommendation{
			Type:        "market_capture",
			Title:       fmt.Sprintf("Capture %s market opportunity", p.OpportunityTheme),
			Description: fmt.Sprintf("Market gap identified in %s affecting %s", p.OpportunityTheme, strings.Join(p.AffectedFrameworks, ", ")),
			Action:      p.RecommendedAction,
			Priority:    priority,
			Timeframe:   p.Timeframe,

			ExpectedImpact:     "Capture developer mindshare in an underserved market segment",
			SuccessMetrics:     []string{"developer adoption", "content engagement", "feature usage"},
			ResourcesRequired:  []string{"product development", "content marketing", "developer education"},
			FrameworksAffected: p.AffectedFrameworks,
		}, true

	case PatternTechnologyShift:
		priority := signal.PriorityMedium
		if p.StrategicImpact == "direct_impact" {
			priority = signal.PriorityHigh
		}
		return Recommendation{
			Type:        "technology_adaptation",
			Title:       fmt.Sprintf("Respond to %s technology shift", p.Technology),
			Description: fmt.Sprintf("%s showing %s momentum across %d trend types", p.Technology, p.ShiftMomentum, len(p.TrendTypes)),
			Action:      p.RecommendedResponse,
			Priority:    priority,
			Timeframe:   p.Timeframe,

			ExpectedImpact:     "Maintain technology leadership and strategic positioning",
			SuccessMetrics:     []string{"technology adoption", "ecosystem alignment", "developer satisfaction"},
			ResourcesRequired:  []string{"technical research", "integration development", "documentation"},
			FrameworksAffected: []string{p.Technology},
		}, true

	case PatternSentimentShift:
		priority := signal.PriorityLow
		if p.StrategicSignificance == "high_significance" {
			priority = signal.PriorityHigh
		}
		return Recommendation{
			Type:        "sentiment_management",
			Title:       fmt.Sprintf("Address %s sentiment shift", p.Framework),
			Description: fmt.Sprintf("%s sentiment score: %.1f with %s significance", p.Framework, p.SentimentScore, p.StrategicSignificance),
			Action:      p.RecommendedAction,
			Priority:    priority,
			Timeframe:   p.Timeframe,

			ExpectedImpact:     "Improve developer sentiment and framework perception",
			SuccessMetrics:     []string{"sentiment score improvement", "community engagement", "advocacy rate"},
			ResourcesRequired:  []string{"community management", "content strategy", "developer relations"},
			FrameworksAffected: []string{p.Framework},
		}, true
	}
	return Recommendation{}, false
}

// metaActions fires when pattern clusters are large enough to demand a
// coordinated response rather than individual actions.
func metaActions(patterns []Pattern) []Recommendation {
	counts := map[string]int{}
	for _, p := range patterns {
		counts[p.Type]++
	}

	var recs []Recommendation

	if n := counts[PatternCompetitiveThreat]; n >= 3 {
		recs = append(recs, Recommendation{
			Type:               "strategic_initiative",
			Title:              "Launch comprehensive competitive analysis initiative",
			Description:        fmt.Sprintf("Multiple competitive threats detected (%d threats)", n),
			Action:             "Conduct deep competitive analysis and strengthen positioning",
			Priority:           signal.PriorityHigh,
			Timeframe:          TimeframeImmediate,
			ExpectedImpact:     "Enhanced competitive intelligence and strategic positioning",
			SuccessMetrics:     []string{"competitive gap analysis", "positioning clarity", "market differentiation"},
			ResourcesRequired:  []string{"strategic analysis", "competitive research", "positioning development"},
			FrameworksAffected: []string{"all_frameworks"},
		})
	}

	if n := counts[PatternMarketOpportunity]; n >= 2 {
		recs = append(recs, Recommendation{
			Type:               "growth_initiative",
			Title:              "Capitalize on multiple market opportunities",
			Description:        fmt.Sprintf("%d market opportunities identified", n),
			Action:             "Develop coordinated market capture strategy across opportunity areas",
			Priority:           signal.PriorityMedium,
			Timeframe:          TimeframeShortTerm,
			ExpectedImpact:     "Accelerated market share growth and developer adoption",
			SuccessMetrics:     []string{"market penetration", "user acquisition", "revenue growth"},
			ResourcesRequired:  []string{"product marketing", "business development", "sales enablement"},
			FrameworksAffected: []string{"core_stack"},
		})
	}

	if n := counts[PatternTechnologyShift]; n >= 2 {
		recs = append(recs, Recommendation{
			Type:               "innovation_initiative",
			Title:              "Adapt to technology ecosystem shifts",
			Description:        fmt.Sprintf("%d technology shifts detected", n),
			Action:             "Review and update technology roadmap based on ecosystem changes",
			Priority:           signal.PriorityMedium,
			Timeframe:          TimeframeMediumTerm,
			ExpectedImpact:     "Maintained technology leadership and relevance",
			SuccessMetrics:     []string{"technology currency", "ecosystem integration", "developer satisfaction"},
			ResourcesRequired:  []string{"technical architecture", "research and development", "roadmap planning"},
			FrameworksAffected: []string{"emerging_technologies"},
		})
	}

	return recs
}

var priorityRank = map[signal.Priority]int{
	signal.PriorityHigh:   3,
	signal.PriorityMedium: 2,
	signal.PriorityLow:    1,
}

var timeframeRank = map[string]int{
	TimeframeImmediate:  4,
	TimeframeShortTerm:  3,
	TimeframeMediumTerm: 2,
	TimeframeOngoing:    1,
}

// prioritize orders recommendations by priority, then timeframe urgency,
// then title. The sort is total, so equal inputs always produce equal
// output order.
func prioritize(recs []Recommendation) []Recommendation {
	out := make([]Recommendation, len(recs))
	copy(out, recs)

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := rank(priorityRank[out[i].Priority]), rank(priorityRank[out[j].Priority])
		if pi != pj {
			return pi > pj
		}
		ti, tj := rank(timeframeRank[out[i].Timeframe]), rank(timeframeRank[out[j].Timeframe])
		if ti != tj {
			return ti > tj
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// rank treats unknown vocabulary as lowest urgency.
func rank(v int) int {
	if v == 0 {
		return 1
	}
	return v
}
