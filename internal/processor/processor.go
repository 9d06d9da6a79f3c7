// Package processor merges, deduplicates and quality-filters collected
// signals into one processed batch for intelligence analysis.
package processor

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/collector"
	"github.com/crowsnest-io/crowsnest/internal/signal"
	"go.uber.org/zap"
)

// Relevance and engagement floors for the strategic quality gate.
const (
	qualityRelevanceFloor  = 25.0
	qualityEngagementFloor = 20.0

	highRelevanceFloor  = 70.0
	highEngagementFloor = 30.0
)

// Summary describes the processed batch.
type Summary struct {
	PlatformsCovered    int      `json:"platforms_covered"`
	FrameworksMentioned int      `json:"frameworks_mentioned"`
	ContentCategories   int      `json:"content_categories"`
	TopPlatforms        []string `json:"top_platforms"`
	TopFrameworks       []string `json:"top_frameworks"`
	AvgRelevance        float64  `json:"avg_relevance"`
	AvgEngagement       float64  `json:"avg_engagement"`
}

// Quality scores the processed batch 0..100 from the share of
// high-relevance, high-engagement and cross-validated signals.
type Quality struct {
	QualityScore          int `json:"quality_score"`
	HighRelevanceSignals  int `json:"high_relevance_signals"`
	HighEngagementSignals int `json:"high_engagement_signals"`
	CrossValidatedSignals int `json:"cross_validated_signals"`
}

// Processed is the merged, deduplicated, quality-filtered signal batch.
type Processed struct {
	ProcessedAt         time.Time       `json:"processed_at"`
	TotalRawSignals     int             `json:"total_raw_signals"`
	DeduplicatedSignals int             `json:"deduplicated_signals"`
	RelevantSignals     int             `json:"relevant_signals"`
	Results             []signal.Signal `json:"results"`
	ProcessingSummary   Summary         `json:"processing_summary"`
	SignalQuality       Quality         `json:"signal_quality"`
}

// Processor merges collector results into a Processed batch.
type Processor struct {
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Processor.
func New(logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		logger: logger.Named("processor"),
		now:    time.Now,
	}
}

// Process concatenates collector results with provenance, deduplicates by
// content key keeping the higher-engagement copy, and applies the strategic
// quality gate (relevance > 25 or engagement > 20). The operation is
// deterministic for a given input order and idempotent: processing an
// already-processed batch changes nothing.
func (p *Processor) Process(results []*collector.Result) *Processed {
	var all []signal.Signal
	for _, result := range results {
		if result == nil || result.Skipped {
			continue
		}
		for _, sig := range result.Signals {
			if sig.MonitoringSource == "" {
				sig.MonitoringSource = result.Source
			}
			if sig.CollectedAt.IsZero() {
				sig.CollectedAt = result.Timestamp
			}
			all = append(all, sig)
		}
	}

	deduped := Deduplicate(all)

	relevant := make([]signal.Signal, 0, len(deduped))
	for _, sig := range deduped {
		if QualityGate(sig) {
			relevant = append(relevant, sig)
		}
	}

	p.logger.Info("signals processed",
		zap.Int("raw", len(all)),
		zap.Int("deduplicated", len(deduped)),
		zap.Int("relevant", len(relevant)))

	return &Processed{
		ProcessedAt:         p.now(),
		TotalRawSignals:     len(all),
		DeduplicatedSignals: len(deduped),
		RelevantSignals:     len(relevant),
		Results:             relevant,
		ProcessingSummary:   buildSummary(relevant),
		SignalQuality:       assessQuality(relevant),
	}
}

// QualityGate reports whether a signal clears the strategic floor.
func QualityGate(sig signal.Signal) bool {
	return sig.RelevanceScore > qualityRelevanceFloor || sig.EngagementScore > qualityEngagementFloor
}

// Deduplicate removes near-duplicate signals, keeping the higher-engagement
// copy. Input order is preserved for survivors.
func Deduplicate(signals []signal.Signal) []signal.Signal {
	type slot struct {
		index      int
		engagement float64
	}
	seen := map[string]slot{}
	keep := make([]bool, len(signals))

	for i, sig := range signals {
		key := dedupKey(sig)
		existing, ok := seen[key]
		if !ok {
			seen[key] = slot{index: i, engagement: sig.EngagementScore}
			keep[i] = true
			continue
		}
		if sig.EngagementScore > existing.engagement {
			keep[existing.index] = false
			seen[key] = slot{index: i, engagement: sig.EngagementScore}
			keep[i] = true
		}
	}

	out := make([]signal.Signal, 0, len(signals))
	for i, sig := range signals {
		if keep[i] {
			out = append(out, sig)
		}
	}
	return out
}

var nonWord = regexp.MustCompile(`[^\w\s]`)
var whitespace = regexp.MustCompile(`\s+`)

// dedupKey builds the content similarity key: sorted frameworks plus the
// normalized title truncated to 50 characters. Distinct items sharing a
// 50-char prefix and framework set will merge; the key lives here so a
// stronger similarity measure is a local change.
func dedupKey(sig signal.Signal) string {
	frameworks := append([]string{}, sig.Frameworks...)
	sort.Strings(frameworks)

	title := strings.ToLower(sig.Title)
	title = nonWord.ReplaceAllString(title, " ")
	title = whitespace.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)
	if len(title) > 50 {
		title = title[:50]
	}

	return strings.Join(frameworks, "") + "_" + title
}

func buildSummary(signals []signal.Signal) Summary {
	var platforms, frameworks, categories []string
	seenPlatform := map[string]bool{}
	seenFramework := map[string]bool{}
	seenCategory := map[string]bool{}

	var sumRelevance, sumEngagement float64
	for _, sig := range signals {
		if !seenPlatform[sig.Platform] {
			seenPlatform[sig.Platform] = true
			platforms = append(platforms, sig.Platform)
		}
		for _, f := range sig.Frameworks {
			if !seenFramework[f] {
				seenFramework[f] = true
				frameworks = append(frameworks, f)
			}
		}
		for _, c := range sig.Categories {
			if !seenCategory[c] {
				seenCategory[c] = true
				categories = append(categories, c)
			}
		}
		sumRelevance += sig.RelevanceScore
		sumEngagement += sig.EngagementScore
	}

	s := Summary{
		PlatformsCovered:    len(platforms),
		FrameworksMentioned: len(frameworks),
		ContentCategories:   len(categories),
		TopPlatforms:        platforms,
		TopFrameworks:       frameworks,
	}
	if len(s.TopFrameworks) > 10 {
		s.TopFrameworks = s.TopFrameworks[:10]
	}
	if n := len(signals); n > 0 {
		s.AvgRelevance = sumRelevance / float64(n)
		s.AvgEngagement = sumEngagement / float64(n)
	}
	return s
}

// assessQuality counts high-relevance, high-engagement and cross-validated
// signals. A signal is cross-validated when another platform carries a
// signal mentioning one of the same frameworks.
func assessQuality(signals []signal.Signal) Quality {
	q := Quality{}
	if len(signals) == 0 {
		return q
	}

	frameworkPlatforms := map[string]map[string]bool{}
	for _, sig := range signals {
		for _, f := range sig.Frameworks {
			if frameworkPlatforms[f] == nil {
				frameworkPlatforms[f] = map[string]bool{}
			}
			frameworkPlatforms[f][sig.Platform] = true
		}
	}

	for _, sig := range signals {
		if sig.RelevanceScore > highRelevanceFloor {
			q.HighRelevanceSignals++
		}
		if sig.EngagementScore > highEngagementFloor {
			q.HighEngagementSignals++
		}
		for _, f := range sig.Frameworks {
			if len(frameworkPlatforms[f]) > 1 {
				q.CrossValidatedSignals++
				break
			}
		}
	}

	total := q.HighRelevanceSignals + q.HighEngagementSignals + q.CrossValidatedSignals
	q.QualityScore = int(float64(total)/float64(len(signals)*3)*100 + 0.5)
	return q
}
