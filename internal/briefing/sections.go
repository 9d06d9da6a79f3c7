package briefing

import (
	"sort"
	"strings"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/intel"
	"github.com/crowsnest-io/crowsnest/internal/signal"
)

// Sections holds every briefing section; each template fills its own subset
// and JSON omits the rest.
type Sections struct {
	KeyInsights              *KeyInsights              `json:"key_insights,omitempty"`
	StrategicRecommendations *StrategicRecommendations `json:"strategic_recommendations,omitempty"`
	CompetitiveLandscape     *CompetitiveLandscape     `json:"competitive_landscape,omitempty"`
	MarketOpportunities      *MarketOpportunities      `json:"market_opportunities,omitempty"`
	RiskAssessment           *RiskAssessment           `json:"risk_assessment,omitempty"`
	ImmediateActions         *ImmediateActions         `json:"immediate_actions,omitempty"`
	ResourceRequirements     *ResourceRequirements     `json:"resource_requirements,omitempty"`
	SuccessMetrics           *SuccessMetrics           `json:"success_metrics,omitempty"`
	ImplementationTimeline   *ImplementationTimeline   `json:"implementation_timeline,omitempty"`
	CompetitiveThreats       *ThreatAnalysisSection    `json:"competitive_threats,omitempty"`
	MarketMovements          *MarketMovements          `json:"market_movements,omitempty"`
	PositioningAnalysis      *PositioningAnalysis      `json:"positioning_analysis,omitempty"`
	ResponseStrategies       *ResponseStrategies       `json:"response_strategies,omitempty"`
	DeveloperSentiment       *DeveloperSentiment       `json:"developer_sentiment,omitempty"`
	TechnologyTrends         *TechnologyTrends         `json:"technology_trends,omitempty"`
	GrowthPotential          *GrowthPotential          `json:"growth_potential,omitempty"`
}

func (g *Generator) buildSections(names []string, report *intel.Report) Sections {
	var s Sections
	for _, name := range names {
		switch name {
		case "key_insights":
			s.KeyInsights = keyInsights(report)
		case "strategic_recommendations":
			s.StrategicRecommendations = strategicRecommendations(report)
		case "competitive_landscape":
			s.CompetitiveLandscape = competitiveLandscape(report)
		case "market_opportunities":
			s.MarketOpportunities = marketOpportunities(report)
		case "risk_assessment":
			s.RiskAssessment = riskAssessment(report)
		case "immediate_actions":
			s.ImmediateActions = immediateActions(report, g.now())
		case "resource_requirements":
			s.ResourceRequirements = resourceRequirements(report)
		case "success_metrics":
			metrics := successMetrics(report.PrioritizedRecommendations)
			s.SuccessMetrics = &metrics
		case "implementation_timeline":
			s.ImplementationTimeline = implementationTimeline(report, g.now())
		case "competitive_threats":
			s.CompetitiveThreats = threatAnalysisSection(report)
		case "market_movements":
			s.MarketMovements = marketMovements(report)
		case "positioning_analysis":
			s.PositioningAnalysis = positioningAnalysis(report)
		case "response_strategies":
			s.ResponseStrategies = responseStrategies(report)
		case "developer_sentiment":
			s.DeveloperSentiment = developerSentiment(report)
		case "technology_trends":
			s.TechnologyTrends = technologyTrends(report)
		case "growth_potential":
			s.GrowthPotential = growthPotential(report)
		}
	}
	return s
}

// CriticalTrend is one critical cross-platform trend.
type CriticalTrend struct {
	Trend         string `json:"trend"`
	Significance  string `json:"significance"`
	CrossPlatform bool   `json:"cross_platform"`
}

// PatternSummary condenses one strategic pattern.
type PatternSummary struct {
	PatternType string `json:"pattern_type"`
	KeyElements string `json:"key_elements"`
	ImpactLevel string `json:"impact_level"`
}

// IntelligenceQuality summarizes input confidence.
type IntelligenceQuality struct {
	TotalSignals   int `json:"total_signals"`
	HighConfidence int `json:"high_confidence"`
	CrossValidated int `json:"cross_validated"`
}

// KeyInsights is the executive key insights section.
type KeyInsights struct {
	CriticalTrends      []CriticalTrend     `json:"critical_trends"`
	StrategicPatterns   []PatternSummary    `json:"strategic_patterns"`
	IntelligenceQuality IntelligenceQuality `json:"intelligence_quality"`
}

func keyInsights(report *intel.Report) *KeyInsights {
	out := &KeyInsights{
		CriticalTrends:    []CriticalTrend{},
		StrategicPatterns: []PatternSummary{},
	}

	for _, insight := range report.ContextualInsights {
		out.IntelligenceQuality.TotalSignals++
		if insight.ProductRelevance > 70 {
			out.IntelligenceQuality.HighConfidence++
		}
		if len(insight.CrossPlatformCorrelation) > 0 {
			out.IntelligenceQuality.CrossValidated++
		}
		if insight.TrendIndicator == intel.TrendCritical {
			out.CriticalTrends = append(out.CriticalTrends, CriticalTrend{
				Trend:         strings.Join(insight.FrameworksMentioned, ", "),
				Significance:  insight.TrendIndicator,
				CrossPlatform: len(insight.CrossPlatformCorrelation) > 0,
			})
		}
	}

	for _, p := range report.StrategicSynthesis {
		out.StrategicPatterns = append(out.StrategicPatterns, PatternSummary{
			PatternType: p.Type,
			KeyElements: patternKeyElements(p),
			ImpactLevel: patternImpactLevel(p),
		})
	}
	return out
}

func patternKeyElements(p intel.Pattern) string {
	switch p.Type {
	case intel.PatternCompetitiveThreat:
		return p.Competitor
	case intel.PatternMarketOpportunity:
		return p.OpportunityTheme
	case intel.PatternTechnologyShift:
		return p.Technology
	default:
		return "various"
	}
}

func patternImpactLevel(p intel.Pattern) string {
	switch {
	case p.ThreatLevel != "":
		return p.ThreatLevel
	case p.ShiftMomentum != "":
		return p.ShiftMomentum
	case p.StrategicSignificance != "":
		return p.StrategicSignificance
	default:
		return "medium"
	}
}

// RecommendationDetail is one expanded recommendation.
type RecommendationDetail struct {
	Recommendation    string   `json:"recommendation"`
	ActionRequired    string   `json:"action_required"`
	ExpectedOutcome   string   `json:"expected_outcome"`
	SuccessIndicators []string `json:"success_indicators"`
}

// InitiativeDetail is one strategic initiative.
type InitiativeDetail struct {
	Initiative       string   `json:"initiative"`
	Scope            []string `json:"scope"`
	Timeline         string   `json:"timeline"`
	ResourceEstimate []string `json:"resource_estimate"`
}

// CompetitiveMove is one competitive response action.
type CompetitiveMove struct {
	ResponseTo           string `json:"response_to"`
	StrategicAction      string `json:"strategic_action"`
	CompetitiveAdvantage string `json:"competitive_advantage"`
}

// StrategicRecommendations is the recommendations section.
type StrategicRecommendations struct {
	ImmediatePriorities  []RecommendationDetail `json:"immediate_priorities"`
	StrategicInitiatives []InitiativeDetail     `json:"strategic_initiatives"`
	CompetitiveMoves     []CompetitiveMove      `json:"competitive_moves"`
}

func strategicRecommendations(report *intel.Report) *StrategicRecommendations {
	out := &StrategicRecommendations{
		ImmediatePriorities:  []RecommendationDetail{},
		StrategicInitiatives: []InitiativeDetail{},
		CompetitiveMoves:     []CompetitiveMove{},
	}

	for _, rec := range report.PrioritizedRecommendations {
		if rec.Priority == signal.PriorityHigh && rec.Timeframe == intel.TimeframeImmediate {
			out.ImmediatePriorities = append(out.ImmediatePriorities, RecommendationDetail{
				Recommendation:    rec.Title,
				ActionRequired:    rec.Action,
				ExpectedOutcome:   rec.ExpectedImpact,
				SuccessIndicators: rec.SuccessMetrics,
			})
		}
		switch rec.Type {
		case "strategic_initiative":
			out.StrategicInitiatives = append(out.StrategicInitiatives, InitiativeDetail{
				Initiative:       rec.Title,
				Scope:            rec.FrameworksAffected,
				Timeline:         rec.Timeframe,
				ResourceEstimate: rec.ResourcesRequired,
			})
		case "competitive_response":
			move := CompetitiveMove{
				StrategicAction:      rec.Action,
				CompetitiveAdvantage: rec.ExpectedImpact,
			}
			if len(rec.FrameworksAffected) > 0 {
				move.ResponseTo = rec.FrameworksAffected[0]
			}
			out.CompetitiveMoves = append(out.CompetitiveMoves, move)
		}
	}
	return out
}

// MarketDynamics summarizes competitor market state.
type MarketDynamics struct {
	ActiveCompetitors    int    `json:"active_competitors"`
	CompetitiveIntensity string `json:"competitive_intensity"`
	MarketStability      string `json:"market_stability"`
}

// ThreatAnalysis describes one competitive threat.
type ThreatAnalysis struct {
	Competitor          string   `json:"competitor"`
	ThreatLevel         string   `json:"threat_level"`
	KeyActivities       []string `json:"key_activities"`
	RecommendedResponse string   `json:"recommended_response"`
}

// PositioningStatus describes our posture.
type PositioningStatus struct {
	CurrentPosition         string `json:"current_position"`
	DifferentiationStrength string `json:"differentiation_strength"`
	MarketPerception        string `json:"market_perception"`
}

// CompetitiveLandscape is the competitive landscape section.
type CompetitiveLandscape struct {
	MarketDynamics    MarketDynamics    `json:"market_dynamics"`
	ThreatAnalysis    []ThreatAnalysis  `json:"threat_analysis"`
	PositioningStatus PositioningStatus `json:"positioning_status"`
}

func competitiveLandscape(report *intel.Report) *CompetitiveLandscape {
	threats := threatPatterns(report)

	intensity := "low"
	if len(threats) > 3 {
		intensity = "high"
	} else if len(threats) > 1 {
		intensity = "medium"
	}

	analysis := make([]ThreatAnalysis, 0, len(threats))
	for _, t := range threats {
		analysis = append(analysis, ThreatAnalysis{
			Competitor:          t.Competitor,
			ThreatLevel:         t.ThreatLevel,
			KeyActivities:       t.KeyTopics,
			RecommendedResponse: t.StrategicResponse,
		})
	}

	stability := report.CompetitiveLandscape.LandscapeAssessment
	if stability == "" {
		stability = "unknown"
	}
	position := report.CompetitiveLandscape.StrategicPositioning
	if position == "" {
		position = "unknown"
	}

	return &CompetitiveLandscape{
		MarketDynamics: MarketDynamics{
			ActiveCompetitors:    report.CompetitiveLandscape.ActiveCompetitors,
			CompetitiveIntensity: intensity,
			MarketStability:      stability,
		},
		ThreatAnalysis: analysis,
		PositioningStatus: PositioningStatus{
			CurrentPosition:         position,
			DifferentiationStrength: differentiationStrength(report.PrioritizedRecommendations),
			MarketPerception:        marketPerception(report.StrategicSynthesis),
		},
	}
}

func threatPatterns(report *intel.Report) []intel.Pattern {
	var threats []intel.Pattern
	for _, p := range report.StrategicSynthesis {
		if p.Type == intel.PatternCompetitiveThreat {
			threats = append(threats, p)
		}
	}
	return threats
}

func differentiationStrength(recs []intel.Recommendation) string {
	competitive := 0
	for _, rec := range recs {
		if rec.Type == "competitive_response" {
			competitive++
		}
	}
	if competitive > 2 {
		return "defensive"
	}
	if competitive > 0 {
		return "reactive"
	}
	return "proactive"
}

func marketPerception(patterns []intel.Pattern) string {
	var sum float64
	n := 0
	for _, p := range patterns {
		if p.Type == intel.PatternSentimentShift {
			sum += p.SentimentScore
			n++
		}
	}
	if n == 0 {
		return "neutral"
	}
	avg := sum / float64(n)
	if avg > 40 {
		return "positive"
	}
	if avg < -40 {
		return "negative"
	}
	return "neutral"
}

// OpportunityDetail describes one market gap.
type OpportunityDetail struct {
	Opportunity         string `json:"opportunity"`
	MarketSizeIndicator int    `json:"market_size_indicator"`
	Advantage           string `json:"advantage"`
	RecommendedApproach string `json:"recommended_approach"`
	CompetitionLevel    string `json:"competition_level"`
}

// MarketOpportunities is the opportunities section.
type MarketOpportunities struct {
	OpportunityLandscape struct {
		TotalOpportunities        int    `json:"total_opportunities"`
		HighPriorityOpportunities int    `json:"high_priority_opportunities"`
		MarketReadiness           string `json:"market_readiness"`
	} `json:"opportunity_landscape"`
	SpecificOpportunities []OpportunityDetail `json:"specific_opportunities"`
	GrowthPotential       GrowthPotential     `json:"growth_potential"`
}

func marketOpportunities(report *intel.Report) *MarketOpportunities {
	out := &MarketOpportunities{SpecificOpportunities: []OpportunityDetail{}}
	out.OpportunityLandscape.TotalOpportunities = report.MarketOpportunities.TotalOpportunities
	out.OpportunityLandscape.HighPriorityOpportunities = report.MarketOpportunities.HighPriorityCount
	out.OpportunityLandscape.MarketReadiness = report.MarketOpportunities.MarketReadiness
	if out.OpportunityLandscape.MarketReadiness == "" {
		out.OpportunityLandscape.MarketReadiness = "unknown"
	}

	for _, p := range report.StrategicSynthesis {
		if p.Type != intel.PatternMarketOpportunity {
			continue
		}
		out.SpecificOpportunities = append(out.SpecificOpportunities, OpportunityDetail{
			Opportunity:         p.OpportunityTheme,
			MarketSizeIndicator: p.MarketSizeIndicator,
			Advantage:           p.PositioningAdvantage,
			RecommendedApproach: p.RecommendedAction,
			CompetitionLevel:    opportunityCompetition(p),
		})
	}

	out.GrowthPotential = *growthPotential(report)
	return out
}

func opportunityCompetition(p intel.Pattern) string {
	if len(p.AffectedFrameworks) > 3 {
		return "high"
	}
	if len(p.AffectedFrameworks) > 1 {
		return "medium"
	}
	return "low"
}

// GrowthPotential summarizes opportunity capture readiness.
type GrowthPotential struct {
	ShortTermCapture   int     `json:"short_term_capture"`
	StrategicAlignment float64 `json:"strategic_alignment"`
	ResourceEfficiency string  `json:"resource_efficiency"`
}

func growthPotential(report *intel.Report) *GrowthPotential {
	var gaps []intel.Pattern
	for _, p := range report.StrategicSynthesis {
		if p.Type == intel.PatternMarketOpportunity {
			gaps = append(gaps, p)
		}
	}

	out := &GrowthPotential{ResourceEfficiency: "low"}
	if len(gaps) == 0 {
		return out
	}

	aligned, lowResource := 0, 0
	for _, gap := range gaps {
		if gap.Timeframe == intel.TimeframeShortTerm {
			out.ShortTermCapture++
		}
		if strings.Contains(gap.PositioningAdvantage, "AI") {
			aligned++
		}
		if strings.Contains(gap.RecommendedAction, "content") {
			lowResource++
		}
	}

	out.StrategicAlignment = float64(aligned) / float64(len(gaps)) * 100
	if float64(lowResource) > float64(len(gaps))*0.6 {
		out.ResourceEfficiency = "high"
	} else if float64(lowResource) > float64(len(gaps))*0.3 {
		out.ResourceEfficiency = "medium"
	}
	return out
}

// Risk describes one identified strategic risk.
type Risk struct {
	RiskType             string   `json:"risk_type"`
	Description          string   `json:"description"`
	Probability          string   `json:"probability"`
	Impact               string   `json:"impact"`
	MitigationStrategy   string   `json:"mitigation_strategy"`
	MonitoringIndicators []string `json:"monitoring_indicators"`

	priority signal.Priority
}

// MitigationPriority is one high-priority mitigation.
type MitigationPriority struct {
	Risk            string `json:"risk"`
	ImmediateAction string `json:"immediate_action"`
	Timeline        string `json:"timeline"`
}

// RiskAssessment is the risk section.
type RiskAssessment struct {
	RiskOverview struct {
		OverallRiskLevel   string   `json:"overall_risk_level"`
		PrimaryRiskSources []string `json:"primary_risk_sources"`
		RiskTrend          string   `json:"risk_trend"`
	} `json:"risk_overview"`
	SpecificRisks        []Risk               `json:"specific_risks"`
	MitigationPriorities []MitigationPriority `json:"mitigation_priorities"`
}

func riskAssessment(report *intel.Report) *RiskAssessment {
	risks := strategicRisks(report)

	out := &RiskAssessment{
		SpecificRisks:        risks,
		MitigationPriorities: []MitigationPriority{},
	}
	out.RiskOverview.OverallRiskLevel = overallRiskLevel(report.StrategicSynthesis)
	out.RiskOverview.PrimaryRiskSources = primaryRiskSources(risks)
	out.RiskOverview.RiskTrend = riskTrend(report.StrategicSynthesis)

	for _, risk := range risks {
		if risk.priority == signal.PriorityHigh {
			out.MitigationPriorities = append(out.MitigationPriorities, MitigationPriority{
				Risk:            risk.Description,
				ImmediateAction: risk.MitigationStrategy,
				Timeline:        intel.TimeframeImmediate,
			})
		}
	}
	return out
}

func strategicRisks(report *intel.Report) []Risk {
	risks := []Risk{}

	if len(threatPatterns(report)) > 2 {
		risks = append(risks, Risk{
			RiskType:             "competitive",
			Description:          "Multiple competitive threats detected",
			Probability:          "high",
			Impact:               "medium",
			MitigationStrategy:   "Accelerate differentiation and competitive response",
			MonitoringIndicators: []string{"market share", "developer sentiment", "feature parity"},
			priority:             signal.PriorityHigh,
		})
	}

	highPriority := 0
	for _, rec := range report.PrioritizedRecommendations {
		if rec.Priority == signal.PriorityHigh {
			highPriority++
		}
	}
	if highPriority > 3 {
		risks = append(risks, Risk{
			RiskType:             "resource",
			Description:          "Resource over-commitment risk",
			Probability:          "medium",
			Impact:               "high",
			MitigationStrategy:   "Prioritize and sequence high-priority actions",
			MonitoringIndicators: []string{"delivery delays", "quality issues", "team burnout"},
			priority:             signal.PriorityMedium,
		})
	}

	return risks
}

func primaryRiskSources(risks []Risk) []string {
	counts := map[string]int{}
	var order []string
	for _, risk := range risks {
		if counts[risk.RiskType] == 0 {
			order = append(order, risk.RiskType)
		}
		counts[risk.RiskType]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 3 {
		order = order[:3]
	}
	if order == nil {
		order = []string{}
	}
	return order
}

func riskTrend(patterns []intel.Pattern) string {
	threats := 0
	for _, p := range patterns {
		if p.Type == intel.PatternCompetitiveThreat {
			threats++
		}
	}
	if threats > 3 {
		return "increasing"
	}
	if threats > 1 {
		return "stable"
	}
	return "decreasing"
}

// PrioritizedAction is one ranked immediate action.
type PrioritizedAction struct {
	PriorityRank    int      `json:"priority_rank"`
	Action          string   `json:"action"`
	Description     string   `json:"description"`
	Owner           string   `json:"owner"`
	Deadline        string   `json:"deadline"`
	SuccessCriteria []string `json:"success_criteria"`
	Dependencies    []string `json:"dependencies"`
}

// ResourceConflict marks a resource demanded by multiple actions.
type ResourceConflict struct {
	Resource      string `json:"resource"`
	ConflictCount int    `json:"conflict_count"`
}

// ImmediateActions is the tactical actions section.
type ImmediateActions struct {
	ActionSummary struct {
		TotalImmediateActions int `json:"total_immediate_actions"`
		HighPriority          int `json:"high_priority"`
		ResourceIntensive     int `json:"resource_intensive"`
	} `json:"action_summary"`
	PrioritizedActions []PrioritizedAction `json:"prioritized_actions"`
	ExecutionReadiness struct {
		ReadyToExecute      int                `json:"ready_to_execute"`
		RequiresPreparation int                `json:"requires_preparation"`
		ResourceConflicts   []ResourceConflict `json:"resource_conflicts"`
	} `json:"execution_readiness"`
}

func immediateActions(report *intel.Report, now time.Time) *ImmediateActions {
	var immediate []intel.Recommendation
	for _, rec := range report.PrioritizedRecommendations {
		if rec.Timeframe == intel.TimeframeImmediate ||
			(rec.Priority == signal.PriorityHigh && rec.Timeframe == intel.TimeframeShortTerm) {
			immediate = append(immediate, rec)
		}
	}

	out := &ImmediateActions{PrioritizedActions: []PrioritizedAction{}}
	out.ActionSummary.TotalImmediateActions = len(immediate)
	out.ExecutionReadiness.ResourceConflicts = resourceConflicts(immediate)

	for i, rec := range immediate {
		if rec.Priority == signal.PriorityHigh {
			out.ActionSummary.HighPriority++
		}
		if len(rec.ResourcesRequired) > 2 {
			out.ActionSummary.ResourceIntensive++
		}
		if actionReady(rec) {
			out.ExecutionReadiness.ReadyToExecute++
		} else {
			out.ExecutionReadiness.RequiresPreparation++
		}

		if i < 5 {
			out.PrioritizedActions = append(out.PrioritizedActions, PrioritizedAction{
				PriorityRank:    i + 1,
				Action:          rec.Title,
				Description:     rec.Description,
				Owner:           actionOwner(rec),
				Deadline:        actionDeadline(rec, now),
				SuccessCriteria: rec.SuccessMetrics,
				Dependencies:    actionDependencies(rec, report.PrioritizedRecommendations),
			})
		}
	}
	return out
}

func actionReady(rec intel.Recommendation) bool {
	return len(rec.ResourcesRequired) <= 2 && rec.Priority != signal.PriorityLow
}

// actionDependencies links actions touching the same frameworks.
func actionDependencies(rec intel.Recommendation, all []intel.Recommendation) []string {
	affected := map[string]bool{}
	for _, fw := range rec.FrameworksAffected {
		affected[fw] = true
	}

	deps := []string{}
	for _, other := range all {
		if other.Title == rec.Title && other.Type == rec.Type {
			continue
		}
		for _, fw := range other.FrameworksAffected {
			if affected[fw] {
				deps = append(deps, other.Title)
				break
			}
		}
		if len(deps) == 2 {
			break
		}
	}
	return deps
}

func resourceConflicts(recs []intel.Recommendation) []ResourceConflict {
	counts := map[string]int{}
	var order []string
	for _, rec := range recs {
		for _, resource := range rec.ResourcesRequired {
			if counts[resource] == 0 {
				order = append(order, resource)
			}
			counts[resource]++
		}
	}

	conflicts := []ResourceConflict{}
	for _, resource := range order {
		if counts[resource] > 1 {
			conflicts = append(conflicts, ResourceConflict{Resource: resource, ConflictCount: counts[resource]})
		}
	}
	return conflicts
}

// ResourceDemand is one resource with the actions demanding it.
type ResourceDemand struct {
	Resource        string   `json:"resource"`
	DemandedBy      []string `json:"demanded_by"`
	ContentionLevel string   `json:"contention_level"`
}

// ResourceRequirements is the tactical resource section.
type ResourceRequirements struct {
	TotalResources  int                `json:"total_resources"`
	ResourceDemands []ResourceDemand   `json:"resource_demands"`
	Conflicts       []ResourceConflict `json:"conflicts"`
}

func resourceRequirements(report *intel.Report) *ResourceRequirements {
	demandedBy := map[string][]string{}
	var order []string
	for _, rec := range report.PrioritizedRecommendations {
		for _, resource := range rec.ResourcesRequired {
			if _, seen := demandedBy[resource]; !seen {
				order = append(order, resource)
			}
			demandedBy[resource] = append(demandedBy[resource], rec.Title)
		}
	}

	out := &ResourceRequirements{
		TotalResources:  len(order),
		ResourceDemands: []ResourceDemand{},
		Conflicts:       resourceConflicts(report.PrioritizedRecommendations),
	}
	for _, resource := range order {
		titles := demandedBy[resource]
		contention := "low"
		if len(titles) > 2 {
			contention = "high"
		} else if len(titles) > 1 {
			contention = "medium"
		}
		out.ResourceDemands = append(out.ResourceDemands, ResourceDemand{
			Resource:        resource,
			DemandedBy:      titles,
			ContentionLevel: contention,
		})
	}
	return out
}

// TimelinePhase groups actions sharing a timeframe.
type TimelinePhase struct {
	Phase     string   `json:"phase"`
	Timeframe string   `json:"timeframe"`
	Deadline  string   `json:"deadline"`
	Actions   []string `json:"actions"`
}

// ImplementationTimeline is the tactical timeline section.
type ImplementationTimeline struct {
	Phases []TimelinePhase `json:"phases"`
}

func implementationTimeline(report *intel.Report, now time.Time) *ImplementationTimeline {
	phases := []struct {
		name      string
		timeframe string
	}{
		{"now", intel.TimeframeImmediate},
		{"next_two_weeks", intel.TimeframeShortTerm},
		{"this_quarter", intel.TimeframeMediumTerm},
		{"continuous", intel.TimeframeOngoing},
	}

	out := &ImplementationTimeline{Phases: []TimelinePhase{}}
	for _, phase := range phases {
		var actions []string
		var deadline string
		for _, rec := range report.PrioritizedRecommendations {
			if rec.Timeframe != phase.timeframe {
				continue
			}
			actions = append(actions, rec.Title)
			deadline = actionDeadline(rec, now)
		}
		if len(actions) == 0 {
			continue
		}
		out.Phases = append(out.Phases, TimelinePhase{
			Phase:     phase.name,
			Timeframe: phase.timeframe,
			Deadline:  deadline,
			Actions:   actions,
		})
	}
	return out
}

// ThreatAnalysisSection is the dedicated competitive threats section.
type ThreatAnalysisSection struct {
	TotalThreats   int              `json:"total_threats"`
	CriticalCount  int              `json:"critical_count"`
	ThreatAnalysis []ThreatAnalysis `json:"threat_analysis"`
}

func threatAnalysisSection(report *intel.Report) *ThreatAnalysisSection {
	out := &ThreatAnalysisSection{ThreatAnalysis: []ThreatAnalysis{}}
	for _, t := range threatPatterns(report) {
		out.TotalThreats++
		if t.ThreatLevel == "critical" {
			out.CriticalCount++
		}
		out.ThreatAnalysis = append(out.ThreatAnalysis, ThreatAnalysis{
			Competitor:          t.Competitor,
			ThreatLevel:         t.ThreatLevel,
			KeyActivities:       t.KeyTopics,
			RecommendedResponse: t.StrategicResponse,
		})
	}
	return out
}

// MarketMovement is one technology shift viewed as a market move.
type MarketMovement struct {
	Technology    string   `json:"technology"`
	Momentum      string   `json:"momentum"`
	MentionVolume int      `json:"mention_volume"`
	TrendTypes    []string `json:"trend_types"`
}

// MarketMovements is the competitive-intelligence movements section.
type MarketMovements struct {
	Movements []MarketMovement `json:"movements"`
}

func marketMovements(report *intel.Report) *MarketMovements {
	out := &MarketMovements{Movements: []MarketMovement{}}
	for _, p := range report.StrategicSynthesis {
		if p.Type != intel.PatternTechnologyShift {
			continue
		}
		out.Movements = append(out.Movements, MarketMovement{
			Technology:    p.Technology,
			Momentum:      p.ShiftMomentum,
			MentionVolume: p.MentionVolume,
			TrendTypes:    p.TrendTypes,
		})
	}
	return out
}

// PositioningAnalysis is the competitive-intelligence positioning section.
type PositioningAnalysis struct {
	PositioningStatus     PositioningStatus `json:"positioning_status"`
	CompetitiveAdvantages []string          `json:"competitive_advantages"`
	StrategicPriorities   []string          `json:"strategic_priorities"`
	PositioningConfidence string            `json:"positioning_confidence"`
}

func positioningAnalysis(report *intel.Report) *PositioningAnalysis {
	position := report.CompetitiveLandscape.StrategicPositioning
	if position == "" {
		position = "unknown"
	}
	return &PositioningAnalysis{
		PositioningStatus: PositioningStatus{
			CurrentPosition:         position,
			DifferentiationStrength: differentiationStrength(report.PrioritizedRecommendations),
			MarketPerception:        marketPerception(report.StrategicSynthesis),
		},
		CompetitiveAdvantages: report.Positioning.CompetitiveAdvantages,
		StrategicPriorities:   report.Positioning.StrategicPriorities,
		PositioningConfidence: report.Positioning.PositioningConfidence,
	}
}

// ResponseStrategy pairs a competitor with the planned response.
type ResponseStrategy struct {
	Competitor string `json:"competitor"`
	Response   string `json:"response"`
	Urgency    string `json:"urgency"`
}

// ResponseStrategies is the competitive-intelligence responses section.
type ResponseStrategies struct {
	Strategies []ResponseStrategy `json:"strategies"`
}

func responseStrategies(report *intel.Report) *ResponseStrategies {
	out := &ResponseStrategies{Strategies: []ResponseStrategy{}}
	for _, t := range threatPatterns(report) {
		urgency := intel.TimeframeShortTerm
		if t.ThreatLevel == "critical" || t.ThreatLevel == "high" {
			urgency = intel.TimeframeImmediate
		}
		out.Strategies = append(out.Strategies, ResponseStrategy{
			Competitor: t.Competitor,
			Response:   t.StrategicResponse,
			Urgency:    urgency,
		})
	}
	return out
}

// SentimentReading is one framework's sentiment state.
type SentimentReading struct {
	Framework    string  `json:"framework"`
	Score        float64 `json:"score"`
	SampleSize   int     `json:"sample_size"`
	Significance string  `json:"significance"`
	Action       string  `json:"action"`
}

// DeveloperSentiment is the market-intelligence sentiment section.
type DeveloperSentiment struct {
	OverallPerception string             `json:"overall_perception"`
	Readings          []SentimentReading `json:"readings"`
}

func developerSentiment(report *intel.Report) *DeveloperSentiment {
	out := &DeveloperSentiment{
		OverallPerception: marketPerception(report.StrategicSynthesis),
		Readings:          []SentimentReading{},
	}
	for _, p := range report.StrategicSynthesis {
		if p.Type != intel.PatternSentimentShift {
			continue
		}
		out.Readings = append(out.Readings, SentimentReading{
			Framework:    p.Framework,
			Score:        p.SentimentScore,
			SampleSize:   p.SampleSize,
			Significance: p.StrategicSignificance,
			Action:       p.RecommendedAction,
		})
	}
	return out
}

// TechnologyTrends is the market-intelligence trends section.
type TechnologyTrends struct {
	CriticalTrends []CriticalTrend  `json:"critical_trends"`
	Shifts         []MarketMovement `json:"shifts"`
}

func technologyTrends(report *intel.Report) *TechnologyTrends {
	out := &TechnologyTrends{
		CriticalTrends: []CriticalTrend{},
		Shifts:         marketMovements(report).Movements,
	}
	for _, insight := range report.ContextualInsights {
		if insight.TrendIndicator != intel.TrendCritical {
			continue
		}
		out.CriticalTrends = append(out.CriticalTrends, CriticalTrend{
			Trend:         strings.Join(insight.FrameworksMentioned, ", "),
			Significance:  insight.TrendIndicator,
			CrossPlatform: len(insight.CrossPlatformCorrelation) > 0,
		})
	}
	return out
}
