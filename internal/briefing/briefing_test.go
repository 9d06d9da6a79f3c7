package briefing

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowsnest-io/crowsnest/internal/intel"
	"github.com/crowsnest-io/crowsnest/internal/logging"
	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/crowsnest-io/crowsnest/internal/store"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testGenerator() *Generator {
	g := NewGenerator(nil, logging.NewTestLogger().Logger)
	g.now = func() time.Time { return testNow }
	return g
}

func rec(title, recType string, priority signal.Priority, timeframe string) intel.Recommendation {
	return intel.Recommendation{
		Type:               recType,
		Title:              title,
		Description:        "desc",
		Action:             "do " + title,
		Priority:           priority,
		Timeframe:          timeframe,
		ExpectedImpact:     "impact",
		SuccessMetrics:     []string{"developer adoption"},
		ResourcesRequired:  []string{"content creation", "developer relations"},
		FrameworksAffected: []string{"sveltekit"},
	}
}

func sampleReport() *intel.Report {
	return &intel.Report{
		Timestamp: testNow.Add(-time.Hour),
		ContextualInsights: []intel.Insight{
			{
				FrameworksMentioned: []string{"next.js"},
				TrendIndicator:      intel.TrendCritical,
				ProductRelevance:    85,
				CrossPlatformCorrelation: []intel.Correlation{
					{Framework: "next.js", TrendStrength: 75},
				},
			},
			{
				FrameworksMentioned: []string{"react"},
				TrendIndicator:      intel.TrendIsolated,
				ProductRelevance:    55,
			},
		},
		StrategicSynthesis: []intel.Pattern{
			{
				Type:              intel.PatternCompetitiveThreat,
				Competitor:        "sveltekit",
				ThreatLevel:       "high",
				KeyTopics:         []string{"performance"},
				StrategicResponse: "respond",
				Timeframe:         intel.TimeframeImmediate,
			},
			{
				Type:                 intel.PatternMarketOpportunity,
				OpportunityTheme:     "performance_issues",
				PositioningAdvantage: "AI-native workflows reduce complexity",
				RecommendedAction:    "Publish content benchmarks",
				AffectedFrameworks:   []string{"next.js", "react"},
				MarketSizeIndicator:  2,
				EngagementLevel:      30,
				Timeframe:            intel.TimeframeShortTerm,
			},
		},
		PrioritizedRecommendations: []intel.Recommendation{
			rec("Counter sveltekit competitive threat", "competitive_response", signal.PriorityHigh, intel.TimeframeImmediate),
			rec("Capture performance_issues market opportunity", "market_capture", signal.PriorityMedium, intel.TimeframeShortTerm),
		},
		CompetitiveLandscape: intel.Landscape{
			ActiveCompetitors:    1,
			LandscapeAssessment:  "dynamic",
			StrategicPositioning: "defensive",
		},
		MarketOpportunities: intel.OpportunitySummary{
			TotalOpportunities: 1,
			HighPriorityCount:  1,
			MarketReadiness:    "selective_opportunities",
		},
	}
}

func TestGenerateUnknownType(t *testing.T) {
	_, err := testGenerator().Generate(sampleReport(), "weekly_digest")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestGenerateExecutiveSummary(t *testing.T) {
	b, err := testGenerator().Generate(sampleReport(), TypeExecutiveSummary)
	require.NoError(t, err)

	assert.Equal(t, "Executive Summary - March 1, 2026", b.Title)
	assert.Equal(t, TypeExecutiveSummary, b.BriefingType)
	assert.Equal(t, "2026-03-08", b.NextReviewDate)

	summary := b.ExecutiveSummary
	assert.Contains(t, summary.KeyFindings[0], "2 intelligence signals")
	assert.Contains(t, summary.KeyFindings[1], "1 critical trends")
	assert.Contains(t, summary.KeyFindings[2], "1 competitive threats and 1 market opportunities")
	assert.Equal(t, "balanced", summary.StrategicStatus)
	assert.Equal(t, "low", summary.RiskLevel)
	require.Len(t, summary.ImmediatePriorities, 2)

	// Average relevance 70 and half cross-validated:
	// 0.7*0.6 + 0.5*0.4 = 0.62 -> 62.
	assert.Equal(t, 62, summary.ConfidenceScore)

	require.NotNil(t, b.Sections.KeyInsights)
	require.NotNil(t, b.Sections.RiskAssessment)
	assert.Nil(t, b.Sections.ImmediateActions)

	require.Len(t, b.Sections.KeyInsights.CriticalTrends, 1)
	assert.True(t, b.Sections.KeyInsights.CriticalTrends[0].CrossPlatform)
	assert.Equal(t, 2, b.Sections.KeyInsights.IntelligenceQuality.TotalSignals)
	assert.Equal(t, 1, b.Sections.KeyInsights.IntelligenceQuality.HighConfidence)
}

func TestGenerateEmptyReport(t *testing.T) {
	for _, briefingType := range Types() {
		b, err := testGenerator().Generate(&intel.Report{}, briefingType)
		require.NoError(t, err, briefingType)

		assert.Equal(t, 0, b.ExecutiveSummary.ConfidenceScore)
		assert.Empty(t, b.ExecutiveSummary.ImmediatePriorities)
		assert.Empty(t, b.ActionItems)
		assert.Empty(t, b.DecisionRecommendations)
		assert.NotEmpty(t, b.ExecutiveSummary.KeyFindings)
		assert.NotEmpty(t, Markdown(b))
	}

	b, err := testGenerator().Generate(nil, TypeExecutiveSummary)
	require.NoError(t, err)
	require.NotNil(t, b.Sections.KeyInsights)
	assert.Empty(t, b.Sections.KeyInsights.CriticalTrends)
}

func TestNextReviewDates(t *testing.T) {
	expected := map[string]string{
		TypeExecutiveSummary:        "2026-03-08",
		TypeTacticalBriefing:        "2026-03-04",
		TypeCompetitiveIntelligence: "2026-03-06",
		TypeMarketIntelligence:      "2026-03-11",
	}

	for briefingType, want := range expected {
		b, err := testGenerator().Generate(&intel.Report{}, briefingType)
		require.NoError(t, err)
		assert.Equal(t, want, b.NextReviewDate, briefingType)
	}
}

func TestDecisionFrameworkScoring(t *testing.T) {
	action := rec("Counter sveltekit competitive threat", "competitive_response", signal.PriorityHigh, intel.TimeframeImmediate)

	// threat_level 0.8, market_impact 0.7, resources 1-2*0.2=0.6,
	// time_sensitivity 1.0 -> 3.1/4 = 0.775.
	score := frameworkScore(action, frameworks[0].criteria)
	assert.InDelta(t, 0.775, score, 0.001)

	confidence := decisionConfidence(action)
	assert.Equal(t, 1.0, confidence)
}

func TestDecisionRecommendationsBuckets(t *testing.T) {
	recs := []intel.Recommendation{
		rec("Counter sveltekit competitive threat", "competitive_response", signal.PriorityHigh, intel.TimeframeImmediate),
	}

	analyses := decisionRecommendations(recs)
	require.Len(t, analyses, 2)

	competitive := analyses[0]
	assert.Equal(t, "competitive_response", competitive.DecisionType)
	assert.Equal(t, "competitive_priority", competitive.FrameworkApplied)
	assert.Equal(t, 1, competitive.OptionsAnalyzed)

	// Score 0.775 clears short_term (0.6) and medium_term (0.4) but not
	// immediate (0.8).
	require.Len(t, competitive.Recommendations, 2)
	assert.Equal(t, "short_term", competitive.Recommendations[0].RecommendationLevel)
	assert.Equal(t, "medium_term", competitive.Recommendations[1].RecommendationLevel)
	assert.Contains(t, competitive.Recommendations[0].Decision, "within 2 weeks")

	allocation := analyses[1]
	assert.Equal(t, "resource_allocation", allocation.DecisionType)
	require.NotNil(t, allocation.ResourceDistribution)
	assert.Equal(t, 1, allocation.ResourceDistribution.HighPriority.Actions)
	assert.Equal(t, 100, allocation.ResourceDistribution.HighPriority.Percentage)
	assert.Equal(t, "60-70%", allocation.ResourceDistribution.HighPriority.RecommendedAllocation)
	require.NotEmpty(t, allocation.ImplementationSequence)
	assert.Equal(t, 3, allocation.ImplementationSequence[len(allocation.ImplementationSequence)-1].Phase)
}

func TestActionItemsCap(t *testing.T) {
	var recs []intel.Recommendation
	for i := 0; i < 12; i++ {
		recs = append(recs, rec(fmt.Sprintf("action %02d", i), "market_capture", signal.PriorityMedium, intel.TimeframeShortTerm))
	}

	items := actionItems(recs, testNow)
	require.Len(t, items, 10)
	assert.Equal(t, "action_1", items[0].ID)
	assert.Equal(t, "action_10", items[9].ID)
	assert.Equal(t, "Product Team", items[0].Owner)
	assert.Equal(t, "2026-03-15", items[0].DueDate)
	assert.Equal(t, "medium", items[0].EstimatedEffort)
	assert.Equal(t, "pending", items[0].Status)
}

func TestStrategicStatus(t *testing.T) {
	assert.Equal(t, "defensive", strategicStatus(3, 0))
	assert.Equal(t, "offensive", strategicStatus(0, 3))
	assert.Equal(t, "balanced", strategicStatus(2, 2))
	assert.Equal(t, "balanced", strategicStatus(2, 1))
}

func TestOverallRiskLevel(t *testing.T) {
	critical := []intel.Pattern{{Type: intel.PatternCompetitiveThreat, ThreatLevel: "critical"}}
	assert.Equal(t, "high", overallRiskLevel(critical))

	var high []intel.Pattern
	for i := 0; i < 3; i++ {
		high = append(high, intel.Pattern{Type: intel.PatternCompetitiveThreat, ThreatLevel: "high"})
	}
	assert.Equal(t, "medium", overallRiskLevel(high))

	assert.Equal(t, "low", overallRiskLevel(nil))
}

func TestTacticalBriefingSections(t *testing.T) {
	b, err := testGenerator().Generate(sampleReport(), TypeTacticalBriefing)
	require.NoError(t, err)

	require.NotNil(t, b.Sections.ImmediateActions)
	assert.Nil(t, b.Sections.KeyInsights)

	actions := b.Sections.ImmediateActions
	assert.Equal(t, 1, actions.ActionSummary.TotalImmediateActions)
	assert.Equal(t, 1, actions.ActionSummary.HighPriority)
	require.Len(t, actions.PrioritizedActions, 1)
	assert.Equal(t, "Strategic Team", actions.PrioritizedActions[0].Owner)
	assert.Equal(t, "2026-03-04", actions.PrioritizedActions[0].Deadline)

	require.NotNil(t, b.Sections.ResourceRequirements)
	assert.Equal(t, 2, b.Sections.ResourceRequirements.TotalResources)
	require.NotNil(t, b.Sections.ImplementationTimeline)
	require.Len(t, b.Sections.ImplementationTimeline.Phases, 2)
	assert.Equal(t, "now", b.Sections.ImplementationTimeline.Phases[0].Phase)
}

func TestCompetitiveIntelligenceSections(t *testing.T) {
	b, err := testGenerator().Generate(sampleReport(), TypeCompetitiveIntelligence)
	require.NoError(t, err)

	require.NotNil(t, b.Sections.CompetitiveThreats)
	assert.Equal(t, 1, b.Sections.CompetitiveThreats.TotalThreats)
	assert.Equal(t, "sveltekit", b.Sections.CompetitiveThreats.ThreatAnalysis[0].Competitor)

	require.NotNil(t, b.Sections.ResponseStrategies)
	require.Len(t, b.Sections.ResponseStrategies.Strategies, 1)
	assert.Equal(t, intel.TimeframeImmediate, b.Sections.ResponseStrategies.Strategies[0].Urgency)

	require.NotNil(t, b.Sections.PositioningAnalysis)
	assert.Equal(t, "defensive", b.Sections.PositioningAnalysis.PositioningStatus.CurrentPosition)
}

func TestMarketIntelligenceSections(t *testing.T) {
	b, err := testGenerator().Generate(sampleReport(), TypeMarketIntelligence)
	require.NoError(t, err)

	require.NotNil(t, b.Sections.MarketOpportunities)
	assert.Equal(t, 1, b.Sections.MarketOpportunities.OpportunityLandscape.TotalOpportunities)
	require.Len(t, b.Sections.MarketOpportunities.SpecificOpportunities, 1)
	assert.Equal(t, "performance_issues", b.Sections.MarketOpportunities.SpecificOpportunities[0].Opportunity)
	assert.Equal(t, "medium", b.Sections.MarketOpportunities.SpecificOpportunities[0].CompetitionLevel)

	require.NotNil(t, b.Sections.GrowthPotential)
	assert.Equal(t, 1, b.Sections.GrowthPotential.ShortTermCapture)
	assert.Equal(t, float64(100), b.Sections.GrowthPotential.StrategicAlignment)

	require.NotNil(t, b.Sections.DeveloperSentiment)
	assert.Equal(t, "neutral", b.Sections.DeveloperSentiment.OverallPerception)
}

func TestMarkdownDeterministic(t *testing.T) {
	b, err := testGenerator().Generate(sampleReport(), TypeExecutiveSummary)
	require.NoError(t, err)

	first := Markdown(b)
	second := Markdown(b)
	assert.Equal(t, first, second)

	assert.Contains(t, first, "# Executive Summary - March 1, 2026")
	assert.Contains(t, first, "### Key Findings")
	assert.Contains(t, first, "## Action Items")
	assert.Contains(t, first, "Counter sveltekit competitive threat")
}

func TestGeneratePersistsBriefing(t *testing.T) {
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "data"), filepath.Join(dir, "reports"), logging.NewTestLogger().Logger)

	g := testGenerator()
	g.store = st

	_, err := g.Generate(sampleReport(), TypeExecutiveSummary)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "reports", "briefings"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.Contains(t, names[0], "strategic-briefing-executive_summary-")
	assert.Contains(t, names[1], "strategic-briefing-executive_summary-")
}
