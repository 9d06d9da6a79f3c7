package intel

import "sort"

// correlate annotates insights with cross-platform correlation metadata.
// Insights sharing a framework and insight type form a group; groups with
// more than one member are correlated, and the strongest group sets the
// insight's trend indicator.
func (e *Engine) correlate(insights []*Insight) {
	groups := map[string][]*Insight{}
	for _, insight := range insights {
		for _, framework := range insight.FrameworksMentioned {
			key := framework + "_" + insight.InsightType
			groups[key] = append(groups[key], insight)
		}
	}

	for _, insight := range insights {
		var correlations []Correlation
		for _, framework := range insight.FrameworksMentioned {
			related := groups[framework+"_"+insight.InsightType]
			if len(related) <= 1 {
				continue
			}
			correlations = append(correlations, Correlation{
				Framework:             framework,
				CrossPlatformMentions: len(related),
				Platforms:             uniquePlatforms(related),
				TrendStrength:         e.trendStrength(related),
			})
		}
		insight.CrossPlatformCorrelation = correlations
		insight.TrendIndicator = trendIndicator(correlations)
	}
}

func uniquePlatforms(insights []*Insight) []string {
	seen := map[string]bool{}
	var platforms []string
	for _, insight := range insights {
		if !seen[insight.Source] {
			seen[insight.Source] = true
			platforms = append(platforms, insight.Source)
		}
	}
	sort.Strings(platforms)
	return platforms
}

// trendStrength combines platform spread, engagement and recency into one
// score. A fresh burst on several platforms with strong engagement scores
// well above 80.
func (e *Engine) trendStrength(related []*Insight) float64 {
	platformCount := len(uniquePlatforms(related))

	var sum float64
	for _, insight := range related {
		sum += insight.EngagementMetrics.EngagementScore
	}
	avgEngagement := sum / float64(len(related))

	strength := float64(platformCount)*10 + avgEngagement*2
	if e.timeSpread(related) > 0.8 {
		strength += 20
	}
	return strength
}

// timeSpread scores mention recency: 1.0 when the oldest mention is right
// now, falling to 0 once it is a day old.
func (e *Engine) timeSpread(related []*Insight) float64 {
	if len(related) < 2 {
		return 0
	}

	oldest := related[0].ExtractedAt
	for _, insight := range related[1:] {
		if insight.ExtractedAt.Before(oldest) {
			oldest = insight.ExtractedAt
		}
	}

	recency := e.now().Sub(oldest).Hours() / 24
	spread := 1 - recency
	if spread < 0 {
		spread = 0
	}
	return spread
}

func trendIndicator(correlations []Correlation) string {
	if len(correlations) == 0 {
		return TrendIsolated
	}

	var max float64
	for _, c := range correlations {
		if c.TrendStrength > max {
			max = c.TrendStrength
		}
	}

	switch {
	case max > 80:
		return TrendCritical
	case max > 50:
		return TrendSignificant
	case max > 25:
		return TrendEmerging
	default:
		return TrendWeak
	}
}
