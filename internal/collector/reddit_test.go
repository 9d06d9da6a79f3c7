package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/config"
	"github.com/crowsnest-io/crowsnest/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redditTestConfig() config.RedditConfig {
	return config.RedditConfig{
		ClientID:           "id",
		ClientSecret:       "secret",
		UserAgent:          "crowsnest-test/1.0",
		PrioritySubreddits: []string{"nextjs"},
		SearchQueries:      []string{"react 19"},
		RequestBudget:      10,
		MinRelevance:       15,
	}
}

func newRedditTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	listing := func(id, title, selftext string, score, comments int) string {
		return fmt.Sprintf(`{"data": {"children": [{"data": {
			"id": %q,
			"title": %q,
			"selftext": %q,
			"permalink": "/r/nextjs/comments/%s/post/",
			"subreddit": "nextjs",
			"author": "dev",
			"created_utc": 1772360000,
			"score": %d,
			"upvote_ratio": 0.93,
			"num_comments": %d
		}}]}}`, id, title, selftext, id, score, comments)
	}

	mux.HandleFunc("/r/nextjs/hot", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listing("abc1", "Next.js 15 app router question", "how to migrate?", 120, 45))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "react 19", r.URL.Query().Get("q"))
		fmt.Fprint(w, listing("abc2", "React 19 compiler benchmarks", "", 300, 80))
	})

	return httptest.NewServer(mux)
}

func TestRedditCollect(t *testing.T) {
	server := newRedditTestServer(t)
	defer server.Close()

	r := newRedditWithClient(redditTestConfig(), testScoring(), server.Client(), server.URL, nil, logging.NewTestLogger().Logger)
	r.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	result, err := r.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Signals, 2)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.APIUsage.RequestsUsed)

	// Sorted by engagement, the search hit has more votes and comments.
	assert.Equal(t, "reddit-abc2", result.Signals[0].ID)
	assert.Equal(t, "reddit-abc1", result.Signals[1].ID)

	first := result.Signals[1]
	assert.Equal(t, "reddit", first.Platform)
	assert.Equal(t, "r/nextjs", first.Source)
	assert.Contains(t, first.Frameworks, "next.js")
	assert.Contains(t, first.Categories, "question")
	assert.Greater(t, first.RelevanceScore, float64(15))
	assert.Equal(t, "https://reddit.com/r/nextjs/comments/abc1/post/", first.URL)
}

func TestRedditCollectSkippedWithoutCredentials(t *testing.T) {
	r := newRedditWithClient(config.RedditConfig{}, testScoring(), nil, "http://unused", nil, logging.NewTestLogger().Logger)

	result, err := r.Collect(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.False(t, r.Configured())
}

func TestRedditCollectFiltersLowRelevance(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/nextjs/hot", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"children": [{"data": {
			"id": "dull1",
			"title": "weekend open thread",
			"selftext": "chat about anything",
			"permalink": "/r/nextjs/comments/dull1/post/",
			"subreddit": "nextjs",
			"author": "dev",
			"created_utc": 1772360000,
			"score": 500,
			"upvote_ratio": 0.99,
			"num_comments": 300
		}}]}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := redditTestConfig()
	cfg.SearchQueries = nil
	r := newRedditWithClient(cfg, testScoring(), server.Client(), server.URL, nil, logging.NewTestLogger().Logger)

	result, err := r.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Signals)
}

func TestRedditCollectContainsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := redditTestConfig()
	cfg.SearchQueries = nil
	r := newRedditWithClient(cfg, testScoring(), server.Client(), server.URL, nil, logging.NewTestLogger().Logger)

	result, err := r.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Signals)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "r/nextjs")
}
