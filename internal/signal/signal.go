// Package signal defines the normalized monitoring signal and its scoring.
package signal

import "time"

// Priority classifies how urgently a signal needs attention.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Metrics carries the raw per-platform engagement counters. Only the fields
// relevant to the originating platform are populated.
type Metrics struct {
	Score       int     `json:"score,omitempty"`
	UpvoteRatio float64 `json:"upvote_ratio,omitempty"`
	Comments    int     `json:"num_comments,omitempty"`
	Retweets    int     `json:"retweet_count,omitempty"`
	Likes       int     `json:"like_count,omitempty"`
	Replies     int     `json:"reply_count,omitempty"`
	Quotes      int     `json:"quote_count,omitempty"`
	Reactions   int     `json:"reactions,omitempty"`
}

// Signal is one normalized piece of monitored content from any platform.
type Signal struct {
	ID               string    `json:"id"`
	Platform         string    `json:"platform"`
	Source           string    `json:"source"`
	Title            string    `json:"title"`
	Content          string    `json:"content,omitempty"`
	URL              string    `json:"url,omitempty"`
	Author           string    `json:"author,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	Metrics          Metrics   `json:"metrics"`
	EngagementScore  float64   `json:"engagement_score"`
	RelevanceScore   float64   `json:"relevance_score"`
	Frameworks       []string  `json:"frameworks"`
	Categories       []string  `json:"categories"`
	Priority         Priority  `json:"priority"`
	ExtractedAt      time.Time `json:"extracted_at"`
	MonitoringSource string    `json:"monitoring_source,omitempty"`
	CollectedAt      time.Time `json:"collected_at,omitempty"`
}

// Text returns the title and content joined for scoring.
func (s *Signal) Text() string {
	if s.Content == "" {
		return s.Title
	}
	return s.Title + " " + s.Content
}
