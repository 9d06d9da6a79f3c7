package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFrameworks(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Next.js 15 with React 19", []string{"next.js", "react"}},
		{"Tailwind v4 and Supabase auth", []string{"tailwind", "supabase"}},
		{"SvelteKit benchmarks vs Angular", []string{"sveltekit", "angular"}},
		{"plain go code", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractFrameworks(tt.text), "text %q", tt.text)
	}
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, []string{"question"}, Categorize("help with hydration"))
	assert.Equal(t, []string{"release", "security"}, Categorize("security release for CVE"))
	assert.Equal(t, []string{"performance", "issue"}, Categorize("performance bug in build"))
	assert.Empty(t, Categorize("weekly newsletter"))
}

func TestAssessPriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, AssessPriority("critical vulnerability found", 0))
	assert.Equal(t, PriorityHigh, AssessPriority("breaking change in v5", 0))
	assert.Equal(t, PriorityMedium, AssessPriority("quiet thread", 25))
	assert.Equal(t, PriorityMedium, AssessPriority("minor update shipped", 0))
	assert.Equal(t, PriorityLow, AssessPriority("random chatter", 5))
}

func TestAnalyzeSentiment(t *testing.T) {
	assert.Equal(t, SentimentPositive, AnalyzeSentiment("this is great, love it"))
	assert.Equal(t, SentimentNegative, AnalyzeSentiment("terrible bug, app broken"))
	assert.Equal(t, SentimentNeutral, AnalyzeSentiment("released a new version"))
	assert.Equal(t, SentimentNeutral, AnalyzeSentiment("great but broken"))
}
