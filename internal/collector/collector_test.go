package collector

import (
	"testing"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/stretchr/testify/assert"
)

func TestBudgetTake(t *testing.T) {
	b := &budget{limit: 2}
	assert.True(t, b.take())
	assert.True(t, b.take())
	assert.False(t, b.take())

	usage := b.usage()
	assert.Equal(t, 2, usage.RequestsUsed)
	assert.True(t, usage.BudgetExhausted)
}

func TestBudgetUnlimited(t *testing.T) {
	b := &budget{}
	for i := 0; i < 100; i++ {
		assert.True(t, b.take())
	}
	assert.False(t, b.usage().BudgetExhausted)
}

func TestBuildSummary(t *testing.T) {
	signals := []signal.Signal{
		{ID: "a", EngagementScore: 5, Categories: []string{"release"}, Priority: signal.PriorityHigh},
		{ID: "b", EngagementScore: 30, Categories: []string{"release", "security"}, Priority: signal.PriorityHigh},
		{ID: "c", EngagementScore: 10, Categories: []string{"question"}, Priority: signal.PriorityLow},
	}

	s := BuildSummary(signals)
	assert.Equal(t, 3, s.TotalSignals)
	assert.Equal(t, 2, s.ByCategory["release"])
	assert.Equal(t, 1, s.ByCategory["security"])
	assert.Equal(t, 2, s.ByPriority["high"])
	assert.Equal(t, "b", s.TopSignals[0].ID)
	assert.Len(t, s.TopSignals, 3)
}

func TestBuildSummaryTopFive(t *testing.T) {
	var signals []signal.Signal
	for i := 0; i < 8; i++ {
		signals = append(signals, signal.Signal{
			ID:              string(rune('a' + i)),
			EngagementScore: float64(i),
			Priority:        signal.PriorityLow,
		})
	}

	s := BuildSummary(signals)
	assert.Len(t, s.TopSignals, 5)
	assert.Equal(t, "h", s.TopSignals[0].ID)
}

func TestSkippedResult(t *testing.T) {
	now := time.Now()
	r := skippedResult("reddit", now)
	assert.True(t, r.Skipped)
	assert.Equal(t, "reddit", r.Source)
	assert.Empty(t, r.Signals)
	assert.Equal(t, 0, r.Summary.TotalSignals)
}
