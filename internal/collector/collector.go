// Package collector gathers raw ecosystem signals from external platforms.
package collector

import (
	"context"
	"sort"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/crowsnest-io/crowsnest/internal/store"
	"go.uber.org/zap"
)

// Collector is one monitored platform.
//
// Collect always returns a usable (possibly empty) Result: missing
// credentials, exhausted budgets and per-target API failures are contained
// and reported through Result fields, never as an error. An error return
// means the run itself could not proceed (context cancelled).
type Collector interface {
	Name() string
	Configured() bool
	Test(ctx context.Context) error
	Collect(ctx context.Context) (*Result, error)
}

// APIUsage reports request consumption for one run.
type APIUsage struct {
	RequestsUsed    int  `json:"requests_used"`
	Budget          int  `json:"budget"`
	BudgetExhausted bool `json:"budget_exhausted,omitempty"`
}

// Summary aggregates one collector run.
type Summary struct {
	TotalSignals int             `json:"total_signals"`
	ByCategory   map[string]int  `json:"by_category"`
	ByPriority   map[string]int  `json:"by_priority"`
	TopSignals   []signal.Signal `json:"top_signals"`
}

// Result is the outcome of one collector run.
type Result struct {
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Skipped   bool            `json:"skipped,omitempty"`
	APIUsage  APIUsage        `json:"api_usage"`
	Signals   []signal.Signal `json:"results"`
	Summary   Summary         `json:"summary"`
	Errors    []string        `json:"errors,omitempty"`
}

// Snapshot is the persisted form of a run, written as
// data/<source>-monitoring-<unix-ms>.json.
type Snapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	APIUsage  APIUsage        `json:"api_usage"`
	Results   []signal.Signal `json:"results"`
	Summary   Summary         `json:"summary"`
}

// BuildSummary computes per-run aggregates. The top list holds the five
// highest-engagement signals.
func BuildSummary(signals []signal.Signal) Summary {
	s := Summary{
		TotalSignals: len(signals),
		ByCategory:   map[string]int{},
		ByPriority:   map[string]int{},
	}

	for _, sig := range signals {
		for _, c := range sig.Categories {
			s.ByCategory[c]++
		}
		s.ByPriority[string(sig.Priority)]++
	}

	top := make([]signal.Signal, len(signals))
	copy(top, signals)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].EngagementScore > top[j].EngagementScore
	})
	if len(top) > 5 {
		top = top[:5]
	}
	s.TopSignals = top

	return s
}

// budget is a per-run request counter. Collectors are single-goroutine per
// run so no locking is needed.
type budget struct {
	limit int
	used  int
}

// take consumes one request if the budget allows it.
func (b *budget) take() bool {
	if b.limit > 0 && b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

func (b *budget) usage() APIUsage {
	return APIUsage{
		RequestsUsed:    b.used,
		Budget:          b.limit,
		BudgetExhausted: b.limit > 0 && b.used >= b.limit,
	}
}

// persist writes the run snapshot. A nil store skips persistence (tests,
// dry runs); write failures are logged, not fatal, since the in-memory
// result is what the pipeline consumes.
func persist(st *store.Store, logger *zap.Logger, result *Result) {
	if st == nil {
		return
	}
	snap := Snapshot{
		Timestamp: result.Timestamp,
		APIUsage:  result.APIUsage,
		Results:   result.Signals,
		Summary:   result.Summary,
	}
	if _, err := st.WriteMonitoring(result.Source, snap, result.Timestamp); err != nil {
		logger.Warn("failed to persist monitoring snapshot",
			zap.String("source", result.Source),
			zap.Error(err))
	}
}

func skippedResult(source string, now time.Time) *Result {
	return &Result{
		Source:    source,
		Timestamp: now,
		Skipped:   true,
		Summary:   BuildSummary(nil),
	}
}
