package briefing

import (
	"fmt"
	"strings"
)

// Markdown renders the briefing as a human-readable digest. The output is a
// pure function of the briefing, so regenerating from the same JSON yields
// identical bytes.
func Markdown(b *Briefing) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", b.Title)
	fmt.Fprintf(&sb, "Generated: %s\n", b.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Type: %s\n", b.BriefingType)
	fmt.Fprintf(&sb, "Next Review: %s\n\n", b.NextReviewDate)

	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString("### Key Findings\n")
	for _, finding := range b.ExecutiveSummary.KeyFindings {
		fmt.Fprintf(&sb, "- %s\n", finding)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "**Strategic Status**: %s\n", b.ExecutiveSummary.StrategicStatus)
	fmt.Fprintf(&sb, "**Risk Level**: %s\n", b.ExecutiveSummary.RiskLevel)
	fmt.Fprintf(&sb, "**Confidence Score**: %d%%\n\n", b.ExecutiveSummary.ConfidenceScore)

	if len(b.ExecutiveSummary.ImmediatePriorities) > 0 {
		sb.WriteString("### Immediate Priorities\n")
		for i, p := range b.ExecutiveSummary.ImmediatePriorities {
			fmt.Fprintf(&sb, "%d. **%s** (%s priority, %s)\n", i+1, p.Title, p.Priority, p.Timeframe)
		}
		sb.WriteString("\n")
	}

	if len(b.DecisionRecommendations) > 0 {
		sb.WriteString("## Decision Recommendations\n\n")
		for _, rec := range b.DecisionRecommendations {
			fmt.Fprintf(&sb, "### %s\n", strings.ToUpper(strings.ReplaceAll(rec.DecisionType, "_", " ")))
			fmt.Fprintf(&sb, "- **Framework**: %s\n", rec.FrameworkApplied)
			fmt.Fprintf(&sb, "- **Options Analyzed**: %d\n", rec.OptionsAnalyzed)
			top := "None"
			if len(rec.Recommendations) > 0 && rec.Recommendations[0].TopAction != nil {
				top = rec.Recommendations[0].TopAction.Title
			}
			fmt.Fprintf(&sb, "- **Top Recommendation**: %s\n\n", top)
		}
	}

	if len(b.ActionItems) > 0 {
		sb.WriteString("## Action Items\n\n")
		for i, action := range b.ActionItems {
			fmt.Fprintf(&sb, "%d. **%s**\n", i+1, action.Title)
			fmt.Fprintf(&sb, "   - Priority: %s\n", action.Priority)
			fmt.Fprintf(&sb, "   - Owner: %s\n", action.Owner)
			fmt.Fprintf(&sb, "   - Due: %s\n", action.DueDate)
			fmt.Fprintf(&sb, "   - Effort: %s\n", action.EstimatedEffort)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n*Strategic Intelligence System*\n")
	return sb.String()
}
