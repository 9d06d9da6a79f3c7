package intel

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowsnest-io/crowsnest/internal/config"
	"github.com/crowsnest-io/crowsnest/internal/logging"
	"github.com/crowsnest-io/crowsnest/internal/processor"
	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/crowsnest-io/crowsnest/internal/store"
)

func testEngine() *Engine {
	cfg := config.ScoringConfig{
		RelevanceKeywords: config.DefaultRelevanceKeywords(),
		Competitors:       config.DefaultCompetitors(),
		Positioning:       config.DefaultPositioning(),
	}
	e := NewEngine(cfg, nil, logging.NewTestLogger().Logger)
	e.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	id := 0
	e.newID = func() string {
		id++
		return fmt.Sprintf("%04d", id)
	}
	return e
}

func sig(id, platform, title string, relevance, engagement float64, categories, frameworks []string) signal.Signal {
	return signal.Signal{
		ID:              id,
		Platform:        platform,
		Title:           title,
		RelevanceScore:  relevance,
		EngagementScore: engagement,
		Categories:      categories,
		Frameworks:      frameworks,
	}
}

func batch(signals ...signal.Signal) *processor.Processed {
	return &processor.Processed{Results: signals}
}

func TestExtractInsightSkipsLowValue(t *testing.T) {
	e := testEngine()

	assert.Nil(t, e.extractInsight(sig("a", "reddit", "t", 19, 14, nil, nil)))
	assert.NotNil(t, e.extractInsight(sig("b", "reddit", "t", 20, 0, nil, nil)))
	assert.NotNil(t, e.extractInsight(sig("c", "reddit", "t", 0, 15, nil, nil)))
}

func TestExtractInsightClassification(t *testing.T) {
	e := testEngine()

	tests := []struct {
		categories []string
		want       string
	}{
		{[]string{"release"}, TypeTechnologyTrend},
		{[]string{"update"}, TypeTechnologyTrend},
		{[]string{"security"}, TypeSecurityAdvisory},
		{[]string{"performance"}, TypePerformanceBenchmark},
		{[]string{"issue"}, TypeCompetitiveOpportunity},
		{[]string{"tutorial"}, TypeGeneralDiscussion},
		// Release wins over security, security over performance.
		{[]string{"security", "release"}, TypeTechnologyTrend},
		{[]string{"performance", "security"}, TypeSecurityAdvisory},
		{[]string{"issue", "performance"}, TypePerformanceBenchmark},
	}

	for _, tt := range tests {
		insight := e.extractInsight(sig("a", "reddit", "t", 50, 0, tt.categories, nil))
		require.NotNil(t, insight)
		assert.Equal(t, tt.want, insight.InsightType, "categories %v", tt.categories)
	}
}

func TestExtractInsightCompetitiveContext(t *testing.T) {
	e := testEngine()

	insight := e.extractInsight(sig("a", "reddit", "SvelteKit benchmark", 50, 30, nil, []string{"sveltekit", "next.js"}))
	require.NotNil(t, insight)

	require.Contains(t, insight.CompetitiveContext, "sveltekit")
	assert.Equal(t, "high", insight.CompetitiveContext["sveltekit"].Profile.ThreatLevel)
	assert.Equal(t, "SvelteKit benchmark", insight.CompetitiveContext["sveltekit"].MentionContext)
	assert.NotContains(t, insight.CompetitiveContext, "next.js")
}

func TestProductRelevance(t *testing.T) {
	e := testEngine()

	none := e.productRelevance(signal.Signal{Title: "weekend open thread"})
	assert.Equal(t, float64(0), none)

	// accessibility (12) + turbopack (15) + dx (8)
	some := e.productRelevance(signal.Signal{Title: "Turbopack a11y dx improvements"})
	assert.Equal(t, float64(35), some)

	capped := e.productRelevance(signal.Signal{
		Title:   "ai native mcp agent orchestration",
		Content: "vercel ai sdk ai development accessibility turbopack developer experience",
	})
	assert.Equal(t, float64(100), capped)
}

func TestCorrelateAssignsTrendIndicators(t *testing.T) {
	e := testEngine()

	mk := func(id, platform string, engagement float64) *Insight {
		insight := e.extractInsight(sig(id, platform, "React 19 release", 50, engagement, []string{"release"}, []string{"react"}))
		require.NotNil(t, insight)
		return insight
	}

	a := mk("a", "reddit", 25)
	b := mk("b", "github", 25)
	lone := e.extractInsight(sig("c", "x.com", "Tailwind tips", 50, 25, nil, []string{"tailwind"}))
	require.NotNil(t, lone)

	insights := []*Insight{a, b, lone}
	e.correlate(insights)

	// Two platforms, avg engagement 25, fully recent:
	// 2*10 + 25*2 + 20 = 90 -> critical.
	require.Len(t, a.CrossPlatformCorrelation, 1)
	assert.Equal(t, float64(90), a.CrossPlatformCorrelation[0].TrendStrength)
	assert.Equal(t, []string{"github", "reddit"}, a.CrossPlatformCorrelation[0].Platforms)
	assert.Equal(t, TrendCritical, a.TrendIndicator)
	assert.Equal(t, TrendCritical, b.TrendIndicator)

	assert.Empty(t, lone.CrossPlatformCorrelation)
	assert.Equal(t, TrendIsolated, lone.TrendIndicator)
}

func TestCompetitiveThreatThreshold(t *testing.T) {
	e := testEngine()

	mention := func(id string) signal.Signal {
		return sig(id, "reddit", "SvelteKit performance wins again", 50, 30, []string{"performance"}, []string{"sveltekit"})
	}

	// Two mentions stay below the threshold.
	report, err := e.ProcessIntelligence(batch(mention("a"), mention("b")))
	require.NoError(t, err)
	for _, p := range report.StrategicSynthesis {
		assert.NotEqual(t, PatternCompetitiveThreat, p.Type)
	}

	// Three mentions with engagement above the floor raise a threat.
	report, err = e.ProcessIntelligence(batch(mention("a"), mention("b"), mention("c")))
	require.NoError(t, err)

	var threat *Pattern
	for i, p := range report.StrategicSynthesis {
		if p.Type == PatternCompetitiveThreat {
			threat = &report.StrategicSynthesis[i]
		}
	}
	require.NotNil(t, threat)
	assert.Equal(t, "sveltekit", threat.Competitor)
	assert.Equal(t, "high", threat.ThreatLevel)
	assert.Equal(t, 3, threat.MentionCount)
	assert.Contains(t, threat.KeyTopics, "performance")
	assert.Contains(t, threat.StrategicResponse, "sveltekit")
	assert.Equal(t, TimeframeImmediate, threat.Timeframe)
}

func TestThreatLevelEscalation(t *testing.T) {
	e := testEngine()

	mk := func(n int, engagement float64) []*Insight {
		var insights []*Insight
		for i := 0; i < n; i++ {
			insight := e.extractInsight(sig(fmt.Sprintf("s%d", i), "reddit", "SvelteKit", 50, engagement, nil, []string{"sveltekit"}))
			require.NotNil(t, insight)
			insights = append(insights, insight)
		}
		return insights
	}

	assert.Equal(t, "high", e.threatLevel("sveltekit", mk(3, 25)))
	assert.Equal(t, "high", e.threatLevel("sveltekit", mk(6, 25)))
	assert.Equal(t, "critical", e.threatLevel("sveltekit", mk(11, 35)))
	assert.Equal(t, "unknown", e.threatLevel("nosuch", mk(3, 25)))
}

func TestMarketGapRequiresRecurrence(t *testing.T) {
	e := testEngine()

	pain := func(id, title string) signal.Signal {
		return sig(id, "reddit", title, 50, 30, []string{"issue"}, []string{"next.js"})
	}

	report, err := e.ProcessIntelligence(batch(pain("a", "Slow builds are a problem")))
	require.NoError(t, err)
	assert.Equal(t, 0, report.MarketOpportunities.TotalOpportunities)

	report, err = e.ProcessIntelligence(batch(
		pain("a", "Slow builds are a problem"),
		pain("b", "Performance problem with hydration"),
	))
	require.NoError(t, err)
	require.Equal(t, 1, report.MarketOpportunities.TotalOpportunities)
	assert.Equal(t, []string{"performance_issues"}, report.MarketOpportunities.OpportunityThemes)
	assert.Equal(t, 1, report.MarketOpportunities.HighPriorityCount)

	var gap *Pattern
	for i, p := range report.StrategicSynthesis {
		if p.Type == PatternMarketOpportunity {
			gap = &report.StrategicSynthesis[i]
		}
	}
	require.NotNil(t, gap)
	assert.Equal(t, 2, gap.MarketSizeIndicator)
	assert.Equal(t, []string{"next.js"}, gap.AffectedFrameworks)
	assert.InDelta(t, 30, gap.EngagementLevel, 0.001)
}

func TestTechnologyShiftDetection(t *testing.T) {
	e := testEngine()

	mk := func(id, platform string) signal.Signal {
		return sig(id, platform, "React 19 release", 50, 40, []string{"release"}, []string{"react"})
	}

	report, err := e.ProcessIntelligence(batch(mk("a", "reddit"), mk("b", "github"), mk("c", "x.com")))
	require.NoError(t, err)

	var shift *Pattern
	for i, p := range report.StrategicSynthesis {
		if p.Type == PatternTechnologyShift {
			shift = &report.StrategicSynthesis[i]
		}
	}
	require.NotNil(t, shift)
	assert.Equal(t, "react", shift.Technology)
	assert.Equal(t, 3, shift.MentionVolume)
	// 30 (mentions) + 30 (engagement cap) + 5 (one trend type) = 65
	assert.Equal(t, "medium", shift.ShiftMomentum)
	assert.Equal(t, "direct_impact", shift.StrategicImpact)
	assert.Equal(t, []string{TypeTechnologyTrend}, shift.TrendTypes)
}

func TestSentimentShiftDetection(t *testing.T) {
	e := testEngine()

	mk := func(id, title string) signal.Signal {
		return sig(id, "reddit", title, 50, 25, nil, []string{"react"})
	}

	report, err := e.ProcessIntelligence(batch(
		mk("a", "React hydration bug is broken"),
		mk("b", "Another React problem with suspense"),
		mk("c", "React devtools issue makes debugging slow"),
	))
	require.NoError(t, err)

	var shift *Pattern
	for i, p := range report.StrategicSynthesis {
		if p.Type == PatternSentimentShift {
			shift = &report.StrategicSynthesis[i]
		}
	}
	require.NotNil(t, shift)
	assert.Equal(t, "react", shift.Framework)
	assert.Equal(t, float64(-100), shift.SentimentScore)
	assert.Equal(t, 3, shift.SampleSize)
	assert.Equal(t, "high_significance", shift.StrategicSignificance)
	assert.Contains(t, shift.RecommendedAction, "Address negative react sentiment")
	assert.Equal(t, float64(100), shift.SentimentDistribution.Negative)
}

func TestPrioritizeOrdering(t *testing.T) {
	recs := []Recommendation{
		{Title: "b", Priority: signal.PriorityMedium, Timeframe: TimeframeImmediate},
		{Title: "a", Priority: signal.PriorityHigh, Timeframe: TimeframeOngoing},
		{Title: "c", Priority: signal.PriorityHigh, Timeframe: TimeframeImmediate},
		{Title: "a", Priority: signal.PriorityMedium, Timeframe: TimeframeImmediate},
		{Title: "d", Priority: signal.PriorityLow, Timeframe: TimeframeShortTerm},
	}

	out := prioritize(recs)

	var titles []string
	for _, rec := range out {
		titles = append(titles, string(rec.Priority)+"/"+rec.Timeframe+"/"+rec.Title)
	}
	assert.Equal(t, []string{
		"high/immediate/c",
		"high/ongoing/a",
		"medium/immediate/a",
		"medium/immediate/b",
		"low/short_term/d",
	}, titles)
}

func TestMetaActions(t *testing.T) {
	threats := []Pattern{
		{Type: PatternCompetitiveThreat, ThreatLevel: "high"},
		{Type: PatternCompetitiveThreat, ThreatLevel: "high"},
		{Type: PatternCompetitiveThreat, ThreatLevel: "medium"},
	}
	recs := metaActions(threats)
	require.Len(t, recs, 1)
	assert.Equal(t, "strategic_initiative", recs[0].Type)
	assert.Equal(t, signal.PriorityHigh, recs[0].Priority)

	assert.Empty(t, metaActions(threats[:2]))
}

func TestProcessIntelligenceEndToEnd(t *testing.T) {
	e := testEngine()

	report, err := e.ProcessIntelligence(batch(
		sig("s1", "reddit", "Next.js build is slow in production, performance problem", 60, 30,
			[]string{"issue", "performance"}, []string{"next.js"}),
		sig("s2", "github", "React hydration is slow, performance issue for large apps", 55, 40,
			[]string{"issue"}, []string{"react"}),
		sig("s3", "x.com", "Next.js 15.3 release ships Turbopack improvements", 70, 25,
			[]string{"release"}, []string{"next.js"}),
	))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(report.ContextualInsights), 3)
	assert.GreaterOrEqual(t, len(report.StrategicSynthesis), 1)

	high := 0
	for _, rec := range report.PrioritizedRecommendations {
		if rec.Priority == signal.PriorityHigh {
			high++
		}
	}
	assert.GreaterOrEqual(t, high, 1)

	assert.Equal(t, 3, report.InputSummary.TotalSources)
	assert.ElementsMatch(t, []string{"reddit", "github", "x.com"}, report.InputSummary.Platforms)
	assert.Equal(t, "strategic_intelligence_v1", report.ProcessingPipeline)
}

func TestProcessIntelligenceDeterministic(t *testing.T) {
	in := batch(
		sig("s1", "reddit", "SvelteKit performance wins", 50, 30, []string{"performance"}, []string{"sveltekit"}),
		sig("s2", "github", "SvelteKit performance deep dive", 50, 30, []string{"performance"}, []string{"sveltekit"}),
		sig("s3", "x.com", "SvelteKit performance story", 50, 30, []string{"performance"}, []string{"sveltekit"}),
	)

	first, err := testEngine().ProcessIntelligence(in)
	require.NoError(t, err)
	second, err := testEngine().ProcessIntelligence(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestProcessIntelligenceEmptyInput(t *testing.T) {
	e := testEngine()

	report, err := e.ProcessIntelligence(nil)
	require.NoError(t, err)

	assert.Empty(t, report.ContextualInsights)
	assert.Empty(t, report.StrategicSynthesis)
	assert.Empty(t, report.PrioritizedRecommendations)
	assert.Equal(t, 0, report.CompetitiveLandscape.ActiveCompetitors)
	assert.Equal(t, "high", report.Positioning.PositioningConfidence)
	assert.NotEmpty(t, report.Positioning.CompetitiveAdvantages)
}

func TestProcessIntelligencePersistsReport(t *testing.T) {
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "data"), filepath.Join(dir, "reports"), logging.NewTestLogger().Logger)

	e := testEngine()
	e.store = st

	_, err := e.ProcessIntelligence(batch(
		sig("s1", "reddit", "React 19 release", 60, 30, []string{"release"}, []string{"react"}),
	))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "strategic-intelligence-")
}

func TestReportTrendCounts(t *testing.T) {
	report := &Report{
		ContextualInsights: []Insight{
			{TrendIndicator: TrendCritical},
			{TrendIndicator: TrendCritical},
			{TrendIndicator: TrendEmerging},
		},
		StrategicSynthesis: []Pattern{
			{Type: PatternCompetitiveThreat, ThreatLevel: "critical"},
			{Type: PatternCompetitiveThreat, ThreatLevel: "high"},
		},
	}

	assert.Equal(t, 2, report.CriticalTrendCount())
	assert.Equal(t, 1, report.CriticalThreatCount())
}
