package processor

import (
	"testing"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/collector"
	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sig(id, platform, title string, relevance, engagement float64, frameworks ...string) signal.Signal {
	return signal.Signal{
		ID:              id,
		Platform:        platform,
		Title:           title,
		RelevanceScore:  relevance,
		EngagementScore: engagement,
		Frameworks:      frameworks,
	}
}

func TestQualityGate(t *testing.T) {
	assert.True(t, QualityGate(sig("a", "reddit", "t", 26, 0)))
	assert.True(t, QualityGate(sig("b", "reddit", "t", 0, 21)))
	assert.False(t, QualityGate(sig("c", "reddit", "t", 25, 20)))
	assert.False(t, QualityGate(sig("d", "reddit", "t", 0, 0)))
}

func TestDedupKeyNormalization(t *testing.T) {
	a := sig("a", "reddit", "Next.js 15: The BIG Release!!", 50, 10, "next.js")
	b := sig("b", "x.com", "next js 15  the big release", 50, 20, "next.js")

	assert.Equal(t, dedupKey(a), dedupKey(b))

	c := sig("c", "reddit", "Next.js 15: The BIG Release!!", 50, 10, "react")
	assert.NotEqual(t, dedupKey(a), dedupKey(c))
}

func TestDeduplicateKeepsHigherEngagement(t *testing.T) {
	in := []signal.Signal{
		sig("low", "reddit", "React 19 compiler deep dive", 60, 10, "react"),
		sig("high", "x.com", "react 19 compiler deep dive", 60, 40, "react"),
		sig("other", "reddit", "Tailwind v4 upgrade notes", 60, 5, "tailwind"),
	}

	out := Deduplicate(in)
	require.Len(t, out, 2)
	assert.Equal(t, "high", out[0].ID)
	assert.Equal(t, "other", out[1].ID)
}

func TestDeduplicateIdempotent(t *testing.T) {
	in := []signal.Signal{
		sig("a", "reddit", "React 19 compiler deep dive", 60, 10, "react"),
		sig("b", "x.com", "react 19 compiler deep dive", 60, 40, "react"),
		sig("c", "reddit", "Tailwind v4 upgrade notes", 60, 5, "tailwind"),
	}

	once := Deduplicate(in)
	twice := Deduplicate(once)
	assert.Equal(t, once, twice)
}

func TestProcessDeterministic(t *testing.T) {
	results := []*collector.Result{
		{
			Source:    "reddit",
			Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Signals: []signal.Signal{
				sig("r1", "reddit", "Next.js 15 app router guide", 45, 22, "next.js"),
				sig("r2", "reddit", "low value chatter", 5, 3),
			},
		},
		{
			Source:    "x.com",
			Timestamp: time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC),
			Signals: []signal.Signal{
				sig("x1", "x.com", "React 19 ships", 80, 35, "react"),
			},
		},
	}

	p := New(nil)
	p.now = func() time.Time { return time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC) }

	first := p.Process(results)
	second := p.Process(results)
	assert.Equal(t, first, second)

	assert.Equal(t, 3, first.TotalRawSignals)
	assert.Equal(t, 3, first.DeduplicatedSignals)
	assert.Equal(t, 2, first.RelevantSignals)
	assert.Equal(t, "reddit", first.Results[0].MonitoringSource)
	assert.Equal(t, results[0].Timestamp, first.Results[0].CollectedAt)
}

func TestProcessSkipsSkippedResults(t *testing.T) {
	results := []*collector.Result{
		{Source: "github", Skipped: true},
		nil,
		{
			Source:  "reddit",
			Signals: []signal.Signal{sig("r1", "reddit", "Supabase auth rework", 40, 10, "supabase")},
		},
	}

	out := New(nil).Process(results)
	assert.Equal(t, 1, out.TotalRawSignals)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "r1", out.Results[0].ID)
}

func TestProcessEmptyInput(t *testing.T) {
	out := New(nil).Process(nil)
	assert.Equal(t, 0, out.TotalRawSignals)
	assert.Empty(t, out.Results)
	assert.Equal(t, 0, out.SignalQuality.QualityScore)
	assert.Equal(t, float64(0), out.ProcessingSummary.AvgRelevance)
}

func TestProcessingSummary(t *testing.T) {
	signals := []signal.Signal{
		sig("a", "reddit", "t1", 40, 20, "next.js", "react"),
		sig("b", "x.com", "t2", 60, 40, "react"),
	}
	s := buildSummary(signals)

	assert.Equal(t, 2, s.PlatformsCovered)
	assert.Equal(t, 2, s.FrameworksMentioned)
	assert.Equal(t, []string{"reddit", "x.com"}, s.TopPlatforms)
	assert.Equal(t, []string{"next.js", "react"}, s.TopFrameworks)
	assert.InDelta(t, 50, s.AvgRelevance, 0.001)
	assert.InDelta(t, 30, s.AvgEngagement, 0.001)
}

func TestAssessQuality(t *testing.T) {
	signals := []signal.Signal{
		sig("a", "reddit", "t1", 80, 35, "react"), // high relevance + high engagement + cross-validated
		sig("b", "x.com", "t2", 30, 10, "react"),  // cross-validated only
		sig("c", "reddit", "t3", 30, 10, "vue"),   // nothing
	}

	q := assessQuality(signals)
	assert.Equal(t, 1, q.HighRelevanceSignals)
	assert.Equal(t, 1, q.HighEngagementSignals)
	assert.Equal(t, 2, q.CrossValidatedSignals)
	// (1+1+2)/(3*3) = 44.4 -> 44
	assert.Equal(t, 44, q.QualityScore)
}
