package signal

import (
	"math"
	"strings"
	"time"
)

// ScoreFunc computes a 0..100 score for a piece of text.
type ScoreFunc func(text string) float64

// ClassifyFunc extracts labels from a piece of text.
type ClassifyFunc func(text string) []string

// NewKeywordScorer returns a ScoreFunc that sums keyword weights for each
// table entry found in the text (case-insensitive substring match), adds a +5
// bonus for question-style content and +10 for version-specific content, and
// caps the result at 100.
func NewKeywordScorer(keywords map[string]float64) ScoreFunc {
	return func(text string) float64 {
		lower := strings.ToLower(text)

		var score float64
		for keyword, points := range keywords {
			if strings.Contains(lower, keyword) {
				score += points
			}
		}

		if strings.Contains(lower, "?") || strings.Contains(lower, "how to") || strings.Contains(lower, "help") {
			score += 5
		}
		if strings.Contains(lower, "15") || strings.Contains(lower, "19") || strings.Contains(lower, "v4") {
			score += 10
		}

		return math.Min(score, 100)
	}
}

// RedditEngagement scores a Reddit post from its vote score, upvote ratio and
// comment count, log-scaled so megathreads don't drown everything else.
func RedditEngagement(score int, upvoteRatio float64, comments int) float64 {
	if upvoteRatio == 0 {
		upvoteRatio = 0.5
	}
	weighted := float64(score)*upvoteRatio + float64(comments)*2
	return math.Log10(weighted+1) * 10
}

// XEngagement scores a post from its public metrics. Replies weigh heaviest
// since they indicate discussion, then retweets, quotes, likes.
func XEngagement(retweets, likes, replies, quotes int) float64 {
	weighted := float64(retweets)*3 + float64(likes)*1 + float64(replies)*4 + float64(quotes)*2
	return math.Log10(weighted+1) * 10
}

// GitHubIssueEngagement scores an issue by comment and reaction volume
// normalized by age, so a week-old issue with 30 comments outranks a
// year-old one with the same count.
func GitHubIssueEngagement(comments, reactions int, createdAt, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays < 1 {
		ageDays = 1
	}
	return (float64(comments)*2 + float64(reactions)) / ageDays
}
