package intel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crowsnest-io/crowsnest/internal/signal"
)

// Pattern types produced by strategic synthesis.
const (
	PatternCompetitiveThreat = "competitive_threat"
	PatternMarketOpportunity = "market_opportunity"
	PatternTechnologyShift   = "technology_shift"
	PatternSentimentShift    = "sentiment_shift"
)

// Synthesis thresholds.
const (
	threatMentionFloor    = 3
	threatEngagementFloor = 20.0
	gapRecurrenceFloor    = 2
	shiftMentionFloor     = 3
	sentimentSampleFloor  = 3
)

// SentimentDistribution holds percentage shares of each sentiment class.
type SentimentDistribution struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Pattern is one synthesized strategic pattern. The populated fields depend
// on Type; JSON omits the rest.
type Pattern struct {
	Type      string `json:"type"`
	Timeframe string `json:"timeframe"`

	// competitive_threat
	Competitor        string   `json:"competitor,omitempty"`
	ThreatLevel       string   `json:"threat_level,omitempty"`
	MentionCount      int      `json:"mention_count,omitempty"`
	AvgEngagement     float64  `json:"avg_engagement,omitempty"`
	KeyTopics         []string `json:"key_topics,omitempty"`
	StrategicResponse string   `json:"strategic_response,omitempty"`

	// market_opportunity
	OpportunityTheme     string   `json:"opportunity_theme,omitempty"`
	PainPoints           []string `json:"pain_points,omitempty"`
	AffectedFrameworks   []string `json:"affected_frameworks,omitempty"`
	MarketSizeIndicator  int      `json:"market_size_indicator,omitempty"`
	EngagementLevel      float64  `json:"engagement_level,omitempty"`
	PositioningAdvantage string   `json:"positioning_advantage,omitempty"`
	RecommendedAction    string   `json:"recommended_action,omitempty"`

	// technology_shift
	Technology          string   `json:"technology,omitempty"`
	ShiftMomentum       string   `json:"shift_momentum,omitempty"`
	MentionVolume       int      `json:"mention_volume,omitempty"`
	TrendTypes          []string `json:"trend_types,omitempty"`
	StrategicImpact     string   `json:"strategic_impact,omitempty"`
	RecommendedResponse string   `json:"recommended_response,omitempty"`

	// sentiment_shift
	Framework             string                 `json:"framework,omitempty"`
	SentimentScore        float64                `json:"sentiment_score,omitempty"`
	SentimentDistribution *SentimentDistribution `json:"sentiment_distribution,omitempty"`
	SampleSize            int                    `json:"sample_size,omitempty"`
	StrategicSignificance string                 `json:"strategic_significance,omitempty"`
}

// synthesize runs the four pattern detectors in a fixed order.
func (e *Engine) synthesize(insights []*Insight) []Pattern {
	var patterns []Pattern
	patterns = append(patterns, e.competitiveThreats(insights)...)
	patterns = append(patterns, e.marketGaps(insights)...)
	patterns = append(patterns, e.technologyShifts(insights)...)
	patterns = append(patterns, e.sentimentShifts(insights)...)
	return patterns
}

// competitiveThreats flags competitors with at least three mentions whose
// average engagement clears the floor.
func (e *Engine) competitiveThreats(insights []*Insight) []Pattern {
	mentions := map[string][]*Insight{}
	for _, insight := range insights {
		for competitor := range insight.CompetitiveContext {
			mentions[competitor] = append(mentions[competitor], insight)
		}
	}

	var threats []Pattern
	for _, competitor := range sortedKeys(mentions) {
		group := mentions[competitor]
		if len(group) < threatMentionFloor {
			continue
		}
		avgEngagement := avgInsightEngagement(group)
		if avgEngagement <= threatEngagementFloor {
			continue
		}

		threats = append(threats, Pattern{
			Type:              PatternCompetitiveThreat,
			Timeframe:         TimeframeImmediate,
			Competitor:        competitor,
			ThreatLevel:       e.threatLevel(competitor, group),
			MentionCount:      len(group),
			AvgEngagement:     avgEngagement,
			KeyTopics:         keyTopics(group),
			StrategicResponse: competitiveResponse(competitor, group),
		})
	}
	return threats
}

// threatLevel escalates the competitor's base profile level with mention
// volume and engagement.
func (e *Engine) threatLevel(competitor string, mentions []*Insight) string {
	profile, ok := e.cfg.Competitors[strings.ToLower(competitor)]
	if !ok {
		return "unknown"
	}

	base := profile.ThreatLevel
	avgEngagement := avgInsightEngagement(mentions)

	if len(mentions) > 10 && avgEngagement > 30 {
		if base == "high" {
			return "critical"
		}
		return "high"
	}
	if len(mentions) > 5 && avgEngagement > 20 {
		if base == "low" {
			return "medium"
		}
		return "high"
	}
	return base
}

func competitiveResponse(competitor string, mentions []*Insight) string {
	topics := keyTopics(mentions)
	has := func(topic string) bool {
		for _, t := range topics {
			if t == topic {
				return true
			}
		}
		return false
	}

	switch {
	case has("performance"):
		return fmt.Sprintf("Benchmark stack performance against %s and highlight AI-native advantages", competitor)
	case has("developer_experience"):
		return fmt.Sprintf("Emphasize AI-assisted workflows and integrated tooling against %s", competitor)
	case has("ecosystem"):
		return fmt.Sprintf("Position the AI-first ecosystem as next generation against the traditional %s approach", competitor)
	default:
		return fmt.Sprintf("Monitor %s developments and prepare positioning response", competitor)
	}
}

// keyTopics extracts a coarse topic set from mention titles.
func keyTopics(mentions []*Insight) []string {
	checks := []struct {
		topic string
		words []string
	}{
		{"performance", []string{"performance", "speed", "fast"}},
		{"developer_experience", []string{"developer", "dx", "experience"}},
		{"ecosystem", []string{"ecosystem", "community", "library"}},
		{"security", []string{"security", "vulnerability", "safe"}},
		{"accessibility", []string{"accessibility", "a11y"}},
		{"deployment", []string{"deploy", "production", "build"}},
	}

	seen := map[string]bool{}
	var topics []string
	for _, mention := range mentions {
		text := strings.ToLower(mention.Title)
		for _, check := range checks {
			if seen[check.topic] {
				continue
			}
			for _, word := range check.words {
				if strings.Contains(text, word) {
					seen[check.topic] = true
					topics = append(topics, check.topic)
					break
				}
			}
		}
	}
	sort.Strings(topics)
	return topics
}

// Pain point themes in detection order. The first matching theme wins.
var painThemes = []struct {
	name  string
	words []string
}{
	{"development_complexity", []string{"complex", "difficult", "confusing"}},
	{"performance_issues", []string{"slow", "performance", "speed"}},
	{"tooling_problems", []string{"tool", "config", "setup"}},
	{"accessibility_gaps", []string{"accessibility", "a11y"}},
	{"deployment_challenges", []string{"deploy", "build", "production"}},
	{"learning_curve", []string{"learn", "understand", "beginner"}},
	{"maintenance_burden", []string{"maintain", "update", "refactor"}},
}

type painPoint struct {
	title      string
	frameworks []string
	engagement float64
}

// marketGaps finds recurring developer pain themes: at least two pain
// points grouped under one theme form a market opportunity.
func (e *Engine) marketGaps(insights []*Insight) []Pattern {
	themed := map[string][]painPoint{}

	for _, insight := range insights {
		title := strings.ToLower(insight.Title)
		isPain := insight.InsightType == TypeCompetitiveOpportunity ||
			strings.Contains(title, "problem") ||
			strings.Contains(title, "issue") ||
			strings.Contains(title, "difficulty")
		if !isPain {
			continue
		}

		point := painPoint{
			title:      insight.Title,
			frameworks: insight.FrameworksMentioned,
			engagement: insight.EngagementMetrics.EngagementScore,
		}
		for _, theme := range painThemes {
			if containsAny(title, theme.words) {
				themed[theme.name] = append(themed[theme.name], point)
				break
			}
		}
	}

	var opportunities []Pattern
	for _, theme := range painThemes {
		points := themed[theme.name]
		if len(points) < gapRecurrenceFloor {
			continue
		}

		var sum float64
		var titles []string
		seenFramework := map[string]bool{}
		var frameworks []string
		for _, p := range points {
			sum += p.engagement
			titles = append(titles, p.title)
			for _, f := range p.frameworks {
				if !seenFramework[f] {
					seenFramework[f] = true
					frameworks = append(frameworks, f)
				}
			}
		}

		opportunities = append(opportunities, Pattern{
			Type:                 PatternMarketOpportunity,
			Timeframe:            TimeframeShortTerm,
			OpportunityTheme:     theme.name,
			PainPoints:           titles,
			AffectedFrameworks:   frameworks,
			MarketSizeIndicator:  len(points),
			EngagementLevel:      sum / float64(len(points)),
			PositioningAdvantage: themeAdvantage(theme.name),
			RecommendedAction:    themeAction(theme.name),
		})
	}
	return opportunities
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

func themeAdvantage(theme string) string {
	advantages := map[string]string{
		"development_complexity": "AI-native workflows reduce complexity through intelligent automation",
		"performance_issues":     "Turbopack and the React Compiler provide superior performance out of the box",
		"tooling_problems":       "MCP tool generation removes manual configuration and setup pain",
		"accessibility_gaps":     "Automatic accessibility compliance built into the framework core",
		"deployment_challenges":  "Integrated edge deployment removes production friction",
		"learning_curve":         "AI-assisted development accelerates learning and onboarding",
		"maintenance_burden":     "AI-enhanced code quality and automatic updates reduce maintenance overhead",
	}
	if advantage, ok := advantages[theme]; ok {
		return advantage
	}
	return "Potential advantage through an AI-native approach"
}

func themeAction(theme string) string {
	actions := map[string]string{
		"development_complexity": "Create content showing AI-assisted simplification of complex development tasks",
		"performance_issues":     "Publish performance benchmarks highlighting stack advantages",
		"tooling_problems":       "Demonstrate MCP tool generation solving common configuration pain points",
		"accessibility_gaps":     "Position automatic accessibility as a key differentiator in developer marketing",
		"deployment_challenges":  "Create guides showing the zero-config edge deployment path",
		"learning_curve":         "Develop AI-assisted learning content and tutorials",
		"maintenance_burden":     "Showcase long-term maintenance advantages of AI-native architecture",
	}
	if action, ok := actions[theme]; ok {
		return action
	}
	return "Investigate opportunity for an AI-native solution"
}

// technologyShifts counts framework mentions among critical and significant
// trends; three or more mark a shift.
func (e *Engine) technologyShifts(insights []*Insight) []Pattern {
	type mentionData struct {
		mentions        int
		totalEngagement float64
		trendTypes      map[string]bool
	}
	byTechnology := map[string]*mentionData{}

	for _, insight := range insights {
		if insight.TrendIndicator != TrendCritical && insight.TrendIndicator != TrendSignificant {
			continue
		}
		for _, framework := range insight.FrameworksMentioned {
			data := byTechnology[framework]
			if data == nil {
				data = &mentionData{trendTypes: map[string]bool{}}
				byTechnology[framework] = data
			}
			data.mentions++
			data.totalEngagement += insight.EngagementMetrics.EngagementScore
			data.trendTypes[insight.InsightType] = true
		}
	}

	var shifts []Pattern
	for _, technology := range sortedKeys(byTechnology) {
		data := byTechnology[technology]
		if data.mentions < shiftMentionFloor {
			continue
		}

		avgEngagement := data.totalEngagement / float64(data.mentions)
		impact := strategicImpact(technology)

		shifts = append(shifts, Pattern{
			Type:                PatternTechnologyShift,
			Timeframe:           TimeframeMediumTerm,
			Technology:          technology,
			ShiftMomentum:       shiftMomentum(data.mentions, avgEngagement, len(data.trendTypes)),
			MentionVolume:       data.mentions,
			AvgEngagement:       avgEngagement,
			TrendTypes:          sortedKeys(data.trendTypes),
			StrategicImpact:     impact,
			RecommendedResponse: technologyResponse(technology, impact),
		})
	}
	return shifts
}

// shiftMomentum buckets the combined mention, engagement and diversity
// momentum into high, medium or low.
func shiftMomentum(mentions int, avgEngagement float64, trendTypes int) string {
	mentionMomentum := float64(mentions) * 10
	if mentionMomentum > 50 {
		mentionMomentum = 50
	}
	engagementMomentum := avgEngagement
	if engagementMomentum > 30 {
		engagementMomentum = 30
	}
	total := mentionMomentum + engagementMomentum + float64(trendTypes)*5

	switch {
	case total > 70:
		return "high"
	case total > 40:
		return "medium"
	default:
		return "low"
	}
}

func strategicImpact(technology string) string {
	lower := strings.ToLower(technology)
	for _, fw := range coreFrameworks {
		if strings.Contains(lower, fw) {
			return "direct_impact"
		}
	}
	for _, fw := range []string{"ai", "vercel", "supabase"} {
		if strings.Contains(lower, fw) {
			return "strategic_alignment"
		}
	}
	return "peripheral_impact"
}

func technologyResponse(technology, impact string) string {
	switch impact {
	case "direct_impact":
		return fmt.Sprintf("Monitor %s developments closely and keep the core stack competitive", technology)
	case "strategic_alignment":
		return fmt.Sprintf("Explore integration opportunities for %s within the AI-native stack", technology)
	default:
		return fmt.Sprintf("Track %s trend for potential future relevance", technology)
	}
}

var coreFrameworks = []string{"next.js", "nextjs", "react", "typescript", "tailwind"}

// sentimentShifts aggregates per-framework sentiment; three or more samples
// yield a shift pattern.
func (e *Engine) sentimentShifts(insights []*Insight) []Pattern {
	type sentimentData struct {
		positive, negative, neutral int
		totalEngagement             float64
	}
	byFramework := map[string]*sentimentData{}

	for _, insight := range insights {
		sentiment := signal.AnalyzeSentiment(insight.Title + " " + insight.StrategicImplication)
		for _, framework := range insight.FrameworksMentioned {
			data := byFramework[framework]
			if data == nil {
				data = &sentimentData{}
				byFramework[framework] = data
			}
			switch sentiment {
			case "positive":
				data.positive++
			case "negative":
				data.negative++
			default:
				data.neutral++
			}
			data.totalEngagement += insight.EngagementMetrics.EngagementScore
		}
	}

	var shifts []Pattern
	for _, framework := range sortedKeys(byFramework) {
		data := byFramework[framework]
		total := data.positive + data.negative + data.neutral
		if total < sentimentSampleFloor {
			continue
		}

		score := float64(data.positive-data.negative) / float64(total) * 100
		avgEngagement := data.totalEngagement / float64(total)

		shifts = append(shifts, Pattern{
			Type:           PatternSentimentShift,
			Timeframe:      TimeframeOngoing,
			Framework:      framework,
			SentimentScore: score,
			SentimentDistribution: &SentimentDistribution{
				Positive: float64(data.positive) / float64(total) * 100,
				Negative: float64(data.negative) / float64(total) * 100,
				Neutral:  float64(data.neutral) / float64(total) * 100,
			},
			SampleSize:            total,
			AvgEngagement:         avgEngagement,
			StrategicSignificance: sentimentSignificance(framework, score, avgEngagement),
			RecommendedAction:     sentimentAction(framework, score),
		})
	}
	return shifts
}

func sentimentSignificance(framework string, score, avgEngagement float64) string {
	lower := strings.ToLower(framework)
	isCore := false
	for _, fw := range coreFrameworks {
		if strings.Contains(lower, fw) {
			isCore = true
			break
		}
	}

	abs := score
	if abs < 0 {
		abs = -abs
	}

	if isCore && abs > 40 && avgEngagement > 20 {
		return "high_significance"
	}
	if abs > 60 {
		return "medium_significance"
	}
	return "low_significance"
}

func sentimentAction(framework string, score float64) string {
	if score > 40 {
		return fmt.Sprintf("Leverage positive %s sentiment in positioning and content marketing", framework)
	}
	if score < -40 {
		return fmt.Sprintf("Address negative %s sentiment concerns and highlight our advantages", framework)
	}
	return fmt.Sprintf("Monitor %s sentiment trends for strategic opportunities", framework)
}

func avgInsightEngagement(insights []*Insight) float64 {
	if len(insights) == 0 {
		return 0
	}
	var sum float64
	for _, insight := range insights {
		sum += insight.EngagementMetrics.EngagementScore
	}
	return sum / float64(len(insights))
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
