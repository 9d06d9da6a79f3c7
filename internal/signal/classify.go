package signal

import "strings"

// Sentiment labels for basic content polarity.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

var positiveWords = []string{
	"great", "excellent", "amazing", "love", "best",
	"awesome", "perfect", "solved", "improved", "faster",
}

var negativeWords = []string{
	"terrible", "awful", "hate", "worst", "problem", "issue",
	"bug", "broken", "slow", "difficult", "confusing",
}

// ExtractFrameworks returns the stack frameworks mentioned in the text.
func ExtractFrameworks(text string) []string {
	lower := strings.ToLower(text)

	var frameworks []string
	if strings.Contains(lower, "next.js") || strings.Contains(lower, "nextjs") {
		frameworks = append(frameworks, "next.js")
	}
	if strings.Contains(lower, "react") {
		frameworks = append(frameworks, "react")
	}
	if strings.Contains(lower, "typescript") || strings.Contains(lower, " ts ") {
		frameworks = append(frameworks, "typescript")
	}
	if strings.Contains(lower, "tailwind") {
		frameworks = append(frameworks, "tailwind")
	}
	if strings.Contains(lower, "supabase") {
		frameworks = append(frameworks, "supabase")
	}
	if strings.Contains(lower, "sveltekit") || strings.Contains(lower, "svelte") {
		frameworks = append(frameworks, "sveltekit")
	}
	if strings.Contains(lower, "angular") {
		frameworks = append(frameworks, "angular")
	}
	if strings.Contains(lower, "vue") {
		frameworks = append(frameworks, "vue")
	}

	return frameworks
}

// Categorize labels content by discussion type.
func Categorize(text string) []string {
	lower := strings.ToLower(text)

	var categories []string
	if strings.Contains(lower, "help") || strings.Contains(lower, "?") {
		categories = append(categories, "question")
	}
	if strings.Contains(lower, "tutorial") || strings.Contains(lower, "guide") {
		categories = append(categories, "tutorial")
	}
	if strings.Contains(lower, "release") || strings.Contains(lower, "update") {
		categories = append(categories, "release")
	}
	if strings.Contains(lower, "performance") || strings.Contains(lower, "optimization") {
		categories = append(categories, "performance")
	}
	if strings.Contains(lower, "bug") || strings.Contains(lower, "issue") {
		categories = append(categories, "issue")
	}
	if strings.Contains(lower, "security") || strings.Contains(lower, "vulnerability") {
		categories = append(categories, "security")
	}

	return categories
}

// AssessPriority derives a priority from content markers and engagement.
func AssessPriority(text string, engagement float64) Priority {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "security") || strings.Contains(lower, "vulnerability") ||
		strings.Contains(lower, "breaking") || strings.Contains(lower, "critical") {
		return PriorityHigh
	}

	if engagement > 20 || strings.Contains(lower, "release") || strings.Contains(lower, "update") {
		return PriorityMedium
	}

	return PriorityLow
}

// AnalyzeSentiment does word-count polarity classification on the text.
func AnalyzeSentiment(text string) string {
	lower := strings.ToLower(text)

	var positive, negative int
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return SentimentPositive
	case negative > positive:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
