package collector

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/config"
	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/crowsnest-io/crowsnest/internal/store"
	"go.uber.org/zap"
)

const (
	xSource = "x.com"
	xAPIURL = "https://api.twitter.com"

	xTimelineLimit = 10
	xSearchLimit   = 25
)

type xUserResponse struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

type xTweet struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	AuthorID      string    `json:"author_id"`
	CreatedAt     time.Time `json:"created_at"`
	PublicMetrics struct {
		RetweetCount int `json:"retweet_count"`
		LikeCount    int `json:"like_count"`
		ReplyCount   int `json:"reply_count"`
		QuoteCount   int `json:"quote_count"`
	} `json:"public_metrics"`
}

type xTweetsResponse struct {
	Data []xTweet `json:"data"`
}

// X monitors priority account timelines and a recent search through the
// v2 API with an app-only bearer token. The daily request budget is the
// monthly cap spread over 30 days.
type X struct {
	cfg     config.XConfig
	client  *jsonClient
	baseURL string
	score   signal.ScoreFunc
	store   *store.Store
	logger  *zap.Logger
	now     func() time.Time
}

// NewX creates the X collector.
func NewX(cfg config.XConfig, scoring config.ScoringConfig, st *store.Store, logger *zap.Logger) *X {
	headers := map[string]string{}
	if cfg.BearerToken.IsSet() {
		headers["Authorization"] = "Bearer " + cfg.BearerToken.Value()
	}

	return &X{
		cfg:     cfg,
		client:  newJSONClient(nil, headers),
		baseURL: xAPIURL,
		score:   signal.NewKeywordScorer(scoring.RelevanceKeywords),
		store:   st,
		logger:  logger.Named("x"),
		now:     time.Now,
	}
}

// newXWithClient is the test seam for pointing at a mock API server.
func newXWithClient(cfg config.XConfig, scoring config.ScoringConfig, baseURL string, st *store.Store, logger *zap.Logger) *X {
	headers := map[string]string{}
	if cfg.BearerToken.IsSet() {
		headers["Authorization"] = "Bearer " + cfg.BearerToken.Value()
	}
	return &X{
		cfg:     cfg,
		client:  newJSONClient(nil, headers),
		baseURL: baseURL,
		score:   signal.NewKeywordScorer(scoring.RelevanceKeywords),
		store:   st,
		logger:  logger.Named("x"),
		now:     time.Now,
	}
}

func (x *X) Name() string { return xSource }

// Configured reports whether a bearer token is available.
func (x *X) Configured() bool { return x.cfg.BearerToken.IsSet() }

// DailyBudget is the per-run request cap derived from the monthly limit.
func (x *X) DailyBudget() int {
	if x.cfg.MonthlyBudget <= 0 {
		return 0
	}
	return x.cfg.MonthlyBudget / 30
}

// Test verifies authentication by resolving one known account.
func (x *X) Test(ctx context.Context) error {
	if !x.Configured() {
		return fmt.Errorf("x bearer token not configured")
	}
	var resp xUserResponse
	if err := x.client.getJSON(ctx, x.baseURL+"/2/users/by/username/vercel", nil, &resp); err != nil {
		return fmt.Errorf("x API test failed: %w", err)
	}
	return nil
}

// Collect walks the priority account timelines and runs the recent search,
// stopping early when the daily budget runs out. Per-account failures are
// contained in Result.Errors.
func (x *X) Collect(ctx context.Context) (*Result, error) {
	now := x.now()
	if !x.Configured() {
		x.logger.Info("skipping collection, bearer token not configured")
		return skippedResult(xSource, now), nil
	}

	b := &budget{limit: x.DailyBudget()}
	result := &Result{Source: xSource, Timestamp: now}

	for _, account := range x.cfg.PriorityAccounts {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if b.limit > 0 && b.used+2 > b.limit {
			// Timeline needs a user lookup plus the fetch.
			x.logger.Warn("daily budget exhausted, stopping timelines", zap.Int("budget", b.limit))
			break
		}

		tweets, err := x.userTimeline(ctx, account, b)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("@%s: %v", account, err))
			x.logger.Warn("timeline fetch failed", zap.String("account", account), zap.Error(err))
			continue
		}
		x.appendTweets(result, tweets, "@"+account, now)
	}

	if x.cfg.SearchQuery != "" && b.take() {
		var resp xTweetsResponse
		params := url.Values{
			"query":        {x.cfg.SearchQuery},
			"max_results":  {fmt.Sprintf("%d", xSearchLimit)},
			"tweet.fields": {"created_at,public_metrics,author_id"},
		}
		if err := x.client.getJSON(ctx, x.baseURL+"/2/tweets/search/recent", params, &resp); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("search: %v", err))
			x.logger.Warn("search failed", zap.Error(err))
		} else {
			x.appendTweets(result, resp.Data, "search", now)
		}
	}

	sort.SliceStable(result.Signals, func(i, j int) bool {
		return result.Signals[i].EngagementScore > result.Signals[j].EngagementScore
	})

	result.APIUsage = b.usage()
	result.Summary = BuildSummary(result.Signals)

	persist(x.store, x.logger, result)

	x.logger.Info("collection complete",
		zap.Int("signals", len(result.Signals)),
		zap.Int("requests", result.APIUsage.RequestsUsed),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (x *X) userTimeline(ctx context.Context, account string, b *budget) ([]xTweet, error) {
	if !b.take() {
		return nil, fmt.Errorf("budget exhausted")
	}
	var user xUserResponse
	if err := x.client.getJSON(ctx, x.baseURL+"/2/users/by/username/"+account, nil, &user); err != nil {
		return nil, err
	}
	if user.Data.ID == "" {
		return nil, fmt.Errorf("account not found")
	}

	if !b.take() {
		return nil, fmt.Errorf("budget exhausted")
	}
	var resp xTweetsResponse
	params := url.Values{
		"max_results":  {fmt.Sprintf("%d", xTimelineLimit)},
		"tweet.fields": {"created_at,public_metrics,author_id"},
	}
	if err := x.client.getJSON(ctx, x.baseURL+"/2/users/"+user.Data.ID+"/tweets", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (x *X) appendTweets(result *Result, tweets []xTweet, source string, now time.Time) {
	for _, tweet := range tweets {
		relevance := x.score(tweet.Text)
		if relevance <= x.cfg.MinRelevance {
			continue
		}

		m := tweet.PublicMetrics
		engagement := signal.XEngagement(m.RetweetCount, m.LikeCount, m.ReplyCount, m.QuoteCount)
		result.Signals = append(result.Signals, signal.Signal{
			ID:       "x-" + tweet.ID,
			Platform: xSource,
			Source:   source,
			Title:    truncate(tweet.Text, 120),
			Content:  tweet.Text,
			URL:      "https://x.com/i/status/" + tweet.ID,
			Author:   tweet.AuthorID,
			Metrics: signal.Metrics{
				Retweets: m.RetweetCount,
				Likes:    m.LikeCount,
				Replies:  m.ReplyCount,
				Quotes:   m.QuoteCount,
			},
			CreatedAt:       tweet.CreatedAt,
			EngagementScore: engagement,
			RelevanceScore:  relevance,
			Frameworks:      signal.ExtractFrameworks(tweet.Text),
			Categories:      signal.Categorize(tweet.Text),
			Priority:        signal.AssessPriority(tweet.Text, engagement),
			ExtractedAt:     now,
		})
	}
}

var _ Collector = (*X)(nil)
