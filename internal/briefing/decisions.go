package briefing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crowsnest-io/crowsnest/internal/intel"
	"github.com/crowsnest-io/crowsnest/internal/signal"
)

// threshold pairs a recommendation level with its minimum framework score.
type threshold struct {
	level string
	score float64
}

// framework is one weighted-criteria decision framework.
type framework struct {
	actionType string
	matrix     string
	criteria   []string
	thresholds []threshold
}

// Frameworks in evaluation order; thresholds within each run most to least
// demanding.
var frameworks = []framework{
	{
		actionType: "competitive_response",
		matrix:     "competitive_priority",
		criteria:   []string{"threat_level", "market_impact", "resource_requirements", "time_sensitivity"},
		thresholds: []threshold{{"immediate", 0.8}, {"short_term", 0.6}, {"medium_term", 0.4}},
	},
	{
		actionType: "market_capture",
		matrix:     "opportunity_ranking",
		criteria:   []string{"opportunity_size", "competitive_advantage", "market_readiness", "resource_fit"},
		thresholds: []threshold{{"high", 0.7}, {"medium", 0.5}, {"low", 0.3}},
	},
	{
		actionType: "technology_adaptation",
		matrix:     "technology_investment",
		criteria:   []string{"strategic_alignment", "adoption_momentum", "integration_complexity", "roi_potential"},
		thresholds: []threshold{{"invest", 0.75}, {"monitor", 0.5}, {"ignore", 0.25}},
	},
}

// ScoredAction names the top-ranked action at one recommendation level.
type ScoredAction struct {
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// FrameworkRecommendation is one threshold bucket of a decision analysis.
type FrameworkRecommendation struct {
	RecommendationLevel string        `json:"recommendation_level"`
	ThresholdScore      float64       `json:"threshold_score"`
	QualifyingActions   int           `json:"qualifying_actions"`
	TopAction           *ScoredAction `json:"top_action"`
	Decision            string        `json:"decision"`
	Rationale           string        `json:"rationale,omitempty"`
}

// AllocationBand describes the recommended resource share for one priority.
type AllocationBand struct {
	Actions               int    `json:"actions"`
	Percentage            int    `json:"percentage"`
	RecommendedAllocation string `json:"recommended_allocation"`
}

// ResourceDistribution splits resources across priority bands.
type ResourceDistribution struct {
	HighPriority   AllocationBand `json:"high_priority"`
	MediumPriority AllocationBand `json:"medium_priority"`
	LowPriority    AllocationBand `json:"low_priority"`
}

// SequencePhase is one step of the implementation sequence.
type SequencePhase struct {
	Phase    int    `json:"phase"`
	Action   string `json:"action"`
	Timeline string `json:"timeline"`
}

// DecisionAnalysis is one applied decision framework.
type DecisionAnalysis struct {
	DecisionType           string                    `json:"decision_type"`
	FrameworkApplied       string                    `json:"framework_applied"`
	OptionsAnalyzed        int                       `json:"options_analyzed"`
	EvaluationCriteria     []string                  `json:"evaluation_criteria,omitempty"`
	Recommendations        []FrameworkRecommendation `json:"recommendations"`
	ResourceDistribution   *ResourceDistribution     `json:"resource_distribution,omitempty"`
	ImplementationSequence []SequencePhase           `json:"implementation_sequence,omitempty"`
}

// decisionRecommendations applies each decision framework to its matching
// action group, then appends the resource allocation decision.
func decisionRecommendations(recs []intel.Recommendation) []DecisionAnalysis {
	byType := map[string][]intel.Recommendation{}
	for _, rec := range recs {
		byType[rec.Type] = append(byType[rec.Type], rec)
	}

	var analyses []DecisionAnalysis
	for _, fw := range frameworks {
		group := byType[fw.actionType]
		if len(group) == 0 {
			continue
		}
		analyses = append(analyses, applyFramework(fw, group))
	}

	if len(recs) > 0 {
		analyses = append(analyses, resourceAllocation(recs))
	}
	return analyses
}

func applyFramework(fw framework, recs []intel.Recommendation) DecisionAnalysis {
	type scored struct {
		rec        intel.Recommendation
		score      float64
		confidence float64
	}

	ranked := make([]scored, 0, len(recs))
	for _, rec := range recs {
		ranked = append(ranked, scored{
			rec:        rec,
			score:      frameworkScore(rec, fw.criteria),
			confidence: decisionConfidence(rec),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	analysis := DecisionAnalysis{
		DecisionType:       fw.actionType,
		FrameworkApplied:   fw.matrix,
		OptionsAnalyzed:    len(recs),
		EvaluationCriteria: fw.criteria,
	}

	for _, th := range fw.thresholds {
		qualifying := 0
		for _, s := range ranked {
			if s.score >= th.score {
				qualifying++
			}
		}
		if qualifying == 0 {
			continue
		}

		top := ranked[0]
		analysis.Recommendations = append(analysis.Recommendations, FrameworkRecommendation{
			RecommendationLevel: th.level,
			ThresholdScore:      th.score,
			QualifyingActions:   qualifying,
			TopAction: &ScoredAction{
				Title:      top.rec.Title,
				Score:      top.score,
				Confidence: top.confidence,
			},
			Decision: levelDecision(th.level, top.rec.Title),
		})
	}
	return analysis
}

// frameworkScore averages per-criterion scores, each clamped to [0,1].
func frameworkScore(rec intel.Recommendation, criteria []string) float64 {
	var total float64
	for _, criterion := range criteria {
		total += clamp01(criterionScore(rec, criterion))
	}
	return total / float64(len(criteria))
}

func criterionScore(rec intel.Recommendation, criterion string) float64 {
	switch criterion {
	case "threat_level":
		switch rec.Priority {
		case signal.PriorityHigh:
			return 0.8
		case signal.PriorityMedium:
			return 0.5
		case signal.PriorityLow:
			return 0.2
		default:
			return 0.3
		}

	case "market_impact":
		if rec.ExpectedImpact != "" {
			return 0.7
		}
		return 0.3

	case "resource_requirements":
		score := 1.0 - float64(len(rec.ResourcesRequired))*0.2
		if score < 0.1 {
			score = 0.1
		}
		return score

	case "time_sensitivity":
		switch rec.Timeframe {
		case intel.TimeframeImmediate:
			return 1.0
		case intel.TimeframeShortTerm:
			return 0.8
		case intel.TimeframeMediumTerm:
			return 0.5
		case intel.TimeframeOngoing:
			return 0.3
		default:
			return 0.4
		}

	case "opportunity_size":
		if len(rec.FrameworksAffected) == 0 {
			return 0.3
		}
		return float64(len(rec.FrameworksAffected)) * 0.2

	case "competitive_advantage":
		if rec.Type == "competitive_response" {
			return 0.8
		}
		return 0.5

	case "market_readiness":
		if len(rec.SuccessMetrics) == 0 {
			return 0.4
		}
		return float64(len(rec.SuccessMetrics)) * 0.25

	case "strategic_alignment":
		for _, fw := range rec.FrameworksAffected {
			switch strings.ToLower(fw) {
			case "next.js", "react", "ai-development":
				return 0.9
			}
		}
		return 0.5

	default:
		return 0.5
	}
}

// decisionConfidence starts neutral and accrues for priority, urgency, type
// and definedness of outcomes, capped at 1.
func decisionConfidence(rec intel.Recommendation) float64 {
	confidence := 0.5

	switch rec.Priority {
	case signal.PriorityHigh:
		confidence += 0.3
	case signal.PriorityMedium:
		confidence += 0.1
	}
	if rec.Timeframe == intel.TimeframeImmediate {
		confidence += 0.2
	}
	if rec.Type == "competitive_response" {
		confidence += 0.1
	}
	if rec.ExpectedImpact != "" {
		confidence += 0.1
	}
	if len(rec.SuccessMetrics) > 0 {
		confidence += 0.1
	}

	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

func levelDecision(level, title string) string {
	decisions := map[string]string{
		"immediate":   "Execute %s immediately - high strategic value",
		"short_term":  "Plan %s for implementation within 2 weeks",
		"medium_term": "Include %s in quarterly strategic planning",
		"critical":    "%s requires immediate executive attention",
		"high":        "%s should be prioritized in current sprint",
		"medium":      "%s can be scheduled for next development cycle",
		"low":         "%s should be considered for future roadmap",
		"invest":      "Invest in %s as a strategic technology bet",
		"monitor":     "Monitor %s and revisit next planning cycle",
		"ignore":      "Deprioritize %s until momentum changes",
	}
	if format, ok := decisions[level]; ok {
		return fmt.Sprintf(format, title)
	}
	return fmt.Sprintf("Consider %s based on available resources", title)
}

// resourceAllocation splits strategic resources across priority bands:
// 60-70% high, 20-30% medium, 10-15% low.
func resourceAllocation(recs []intel.Recommendation) DecisionAnalysis {
	var high, medium, low []intel.Recommendation
	for _, rec := range recs {
		switch rec.Priority {
		case signal.PriorityHigh:
			high = append(high, rec)
		case signal.PriorityMedium:
			medium = append(medium, rec)
		default:
			low = append(low, rec)
		}
	}

	total := len(recs)
	pct := func(n int) int {
		return int(float64(n)/float64(total)*100 + 0.5)
	}

	sequence := make([]SequencePhase, 0, 3)
	for i, rec := range high {
		if i == 2 {
			break
		}
		sequence = append(sequence, SequencePhase{Phase: i + 1, Action: rec.Title, Timeline: rec.Timeframe})
	}
	sequence = append(sequence, SequencePhase{
		Phase:    3,
		Action:   "Review and adjust based on initial results",
		Timeline: intel.TimeframeOngoing,
	})

	return DecisionAnalysis{
		DecisionType:     "resource_allocation",
		FrameworkApplied: "priority_based_allocation",
		OptionsAnalyzed:  total,
		ResourceDistribution: &ResourceDistribution{
			HighPriority:   AllocationBand{Actions: len(high), Percentage: pct(len(high)), RecommendedAllocation: "60-70%"},
			MediumPriority: AllocationBand{Actions: len(medium), Percentage: pct(len(medium)), RecommendedAllocation: "20-30%"},
			LowPriority:    AllocationBand{Actions: len(low), Percentage: pct(len(low)), RecommendedAllocation: "10-15%"},
		},
		Recommendations: []FrameworkRecommendation{{
			RecommendationLevel: "immediate",
			QualifyingActions:   len(high),
			Decision:            fmt.Sprintf("Allocate 60-70%% of strategic resources to %d high-priority actions", len(high)),
			Rationale:           "Maximum impact focus on critical strategic needs",
		}},
		ImplementationSequence: sequence,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
