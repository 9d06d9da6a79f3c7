package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/config"
	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/crowsnest-io/crowsnest/internal/store"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	redditSource   = "reddit"
	redditTokenURL = "https://www.reddit.com/api/v1/access_token"
	redditAPIURL   = "https://oauth.reddit.com"

	redditHotLimit    = 25
	redditSearchLimit = 10
)

// redditListing mirrors the Reddit listing envelope.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
}

// Reddit monitors priority subreddits and targeted searches through the
// OAuth2 application-only (client credentials) flow.
type Reddit struct {
	cfg     config.RedditConfig
	client  *jsonClient
	baseURL string
	score   signal.ScoreFunc
	store   *store.Store
	logger  *zap.Logger
	now     func() time.Time
}

// userAgentTransport sets the User-Agent Reddit requires on every request.
type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.agent)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewReddit creates the Reddit collector.
func NewReddit(ctx context.Context, cfg config.RedditConfig, scoring config.ScoringConfig, st *store.Store, logger *zap.Logger) *Reddit {
	var httpClient *http.Client
	if cfg.ClientID.IsSet() && cfg.ClientSecret.IsSet() {
		conf := &clientcredentials.Config{
			ClientID:     cfg.ClientID.Value(),
			ClientSecret: cfg.ClientSecret.Value(),
			TokenURL:     redditTokenURL,
		}
		httpClient = conf.Client(ctx)
		httpClient.Transport = &userAgentTransport{agent: cfg.UserAgent, base: httpClient.Transport}
		httpClient.Timeout = defaultTimeout
	}

	return &Reddit{
		cfg:     cfg,
		client:  newJSONClient(httpClient, nil),
		baseURL: redditAPIURL,
		score:   signal.NewKeywordScorer(scoring.RelevanceKeywords),
		store:   st,
		logger:  logger.Named(redditSource),
		now:     time.Now,
	}
}

// newRedditWithClient is the test seam for pointing at a mock API server.
func newRedditWithClient(cfg config.RedditConfig, scoring config.ScoringConfig, httpClient *http.Client, baseURL string, st *store.Store, logger *zap.Logger) *Reddit {
	return &Reddit{
		cfg:     cfg,
		client:  newJSONClient(httpClient, nil),
		baseURL: baseURL,
		score:   signal.NewKeywordScorer(scoring.RelevanceKeywords),
		store:   st,
		logger:  logger.Named(redditSource),
		now:     time.Now,
	}
}

func (r *Reddit) Name() string { return redditSource }

// Configured reports whether API credentials are available.
func (r *Reddit) Configured() bool {
	return r.cfg.ClientID.IsSet() && r.cfg.ClientSecret.IsSet()
}

// Test verifies authentication by fetching a single post.
func (r *Reddit) Test(ctx context.Context) error {
	if !r.Configured() {
		return fmt.Errorf("reddit credentials not configured")
	}
	var listing redditListing
	params := url.Values{"limit": {"1"}}
	if err := r.client.getJSON(ctx, r.baseURL+"/r/programming/hot", params, &listing); err != nil {
		return fmt.Errorf("reddit API test failed: %w", err)
	}
	return nil
}

// Collect fetches hot posts from each configured subreddit plus the targeted
// searches. Per-subreddit failures are contained in Result.Errors.
func (r *Reddit) Collect(ctx context.Context) (*Result, error) {
	now := r.now()
	if !r.Configured() {
		r.logger.Info("skipping collection, credentials not configured")
		return skippedResult(redditSource, now), nil
	}

	b := &budget{limit: r.cfg.RequestBudget}
	result := &Result{Source: redditSource, Timestamp: now}
	seen := map[string]bool{}

	subreddits := append(append([]string{}, r.cfg.PrioritySubreddits...), r.cfg.SecondarySubreddits...)
	for _, sub := range subreddits {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !b.take() {
			r.logger.Warn("request budget exhausted, stopping early", zap.Int("budget", b.limit))
			break
		}

		var listing redditListing
		params := url.Values{"limit": {strconv.Itoa(redditHotLimit)}, "raw_json": {"1"}}
		if err := r.client.getJSON(ctx, r.baseURL+"/r/"+sub+"/hot", params, &listing); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("r/%s: %v", sub, err))
			r.logger.Warn("subreddit fetch failed", zap.String("subreddit", sub), zap.Error(err))
			continue
		}
		r.appendPosts(result, &listing, "r/"+sub, seen, now)
	}

	for _, query := range r.cfg.SearchQueries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !b.take() {
			r.logger.Warn("request budget exhausted, stopping early", zap.Int("budget", b.limit))
			break
		}

		var listing redditListing
		params := url.Values{
			"q":        {query},
			"sort":     {"new"},
			"t":        {"week"},
			"limit":    {strconv.Itoa(redditSearchLimit)},
			"raw_json": {"1"},
		}
		if err := r.client.getJSON(ctx, r.baseURL+"/search", params, &listing); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("search %q: %v", query, err))
			r.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
			continue
		}
		r.appendPosts(result, &listing, "search:"+query, seen, now)
	}

	sort.SliceStable(result.Signals, func(i, j int) bool {
		return result.Signals[i].EngagementScore > result.Signals[j].EngagementScore
	})

	result.APIUsage = b.usage()
	result.Summary = BuildSummary(result.Signals)

	persist(r.store, r.logger, result)

	r.logger.Info("collection complete",
		zap.Int("signals", len(result.Signals)),
		zap.Int("requests", result.APIUsage.RequestsUsed),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (r *Reddit) appendPosts(result *Result, listing *redditListing, source string, seen map[string]bool, now time.Time) {
	for _, child := range listing.Data.Children {
		post := child.Data
		if seen[post.ID] {
			continue
		}
		seen[post.ID] = true

		text := post.Title + " " + post.Selftext
		relevance := r.score(text)
		if relevance <= r.cfg.MinRelevance {
			continue
		}

		engagement := signal.RedditEngagement(post.Score, post.UpvoteRatio, post.NumComments)
		result.Signals = append(result.Signals, signal.Signal{
			ID:       "reddit-" + post.ID,
			Platform: redditSource,
			Source:   source,
			Title:    post.Title,
			Content:  truncate(post.Selftext, 500),
			URL:      "https://reddit.com" + post.Permalink,
			Author:   post.Author,
			Metrics: signal.Metrics{
				Score:       post.Score,
				UpvoteRatio: post.UpvoteRatio,
				Comments:    post.NumComments,
			},
			CreatedAt:       time.Unix(int64(post.CreatedUTC), 0).UTC(),
			EngagementScore: engagement,
			RelevanceScore:  relevance,
			Frameworks:      signal.ExtractFrameworks(text),
			Categories:      signal.Categorize(text),
			Priority:        signal.AssessPriority(text, engagement),
			ExtractedAt:     now,
		})
	}
}

var _ Collector = (*Reddit)(nil)
