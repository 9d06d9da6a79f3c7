package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/config"
	"github.com/crowsnest-io/crowsnest/internal/signal"
	"github.com/crowsnest-io/crowsnest/internal/store"
	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	githubSource        = "github"
	releasesPerRepo     = 5
	issuesPerRepo       = 20
	pullsPerRepo        = 10
	issueCommentFloor   = 10
	issueLookbackDays   = 30
	releaseLookbackDays = 14
)

// GitHub monitors releases, high-engagement issues and merged
// breaking-change pull requests across the configured repositories.
type GitHub struct {
	cfg    config.GitHubConfig
	client *github.Client
	score  signal.ScoreFunc
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewGitHub creates the GitHub collector. The client authenticates with the
// configured token when set; Configured reports whether it is.
func NewGitHub(ctx context.Context, cfg config.GitHubConfig, scoring config.ScoringConfig, st *store.Store, logger *zap.Logger) *GitHub {
	httpClient := oauth2.NewClient(ctx, nil)
	if cfg.Token.IsSet() {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token.Value()})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	return &GitHub{
		cfg:    cfg,
		client: github.NewClient(httpClient),
		score:  signal.NewKeywordScorer(scoring.RelevanceKeywords),
		store:  st,
		logger: logger.Named(githubSource),
		now:    time.Now,
	}
}

// newGitHubWithClient is the test seam for injecting a mock API client.
func newGitHubWithClient(cfg config.GitHubConfig, scoring config.ScoringConfig, client *github.Client, st *store.Store, logger *zap.Logger) *GitHub {
	return &GitHub{
		cfg:    cfg,
		client: client,
		score:  signal.NewKeywordScorer(scoring.RelevanceKeywords),
		store:  st,
		logger: logger.Named(githubSource),
		now:    time.Now,
	}
}

func (g *GitHub) Name() string { return githubSource }

// Configured reports whether an API token is available.
func (g *GitHub) Configured() bool { return g.cfg.Token.IsSet() }

// Test verifies API connectivity and authentication.
func (g *GitHub) Test(ctx context.Context) error {
	if !g.Configured() {
		return fmt.Errorf("github token not configured")
	}
	if _, _, err := g.client.Users.Get(ctx, ""); err != nil {
		return fmt.Errorf("github API test failed: %w", err)
	}
	return nil
}

// Collect walks the configured repositories. Per-repository failures are
// contained in Result.Errors; the run keeps whatever it gathered.
func (g *GitHub) Collect(ctx context.Context) (*Result, error) {
	now := g.now()
	if !g.Configured() {
		g.logger.Info("skipping collection, token not configured")
		return skippedResult(githubSource, now), nil
	}

	b := &budget{limit: g.cfg.RequestBudget}
	result := &Result{Source: githubSource, Timestamp: now}

	for _, repo := range g.cfg.Repositories {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		signals, errs := g.collectRepo(ctx, repo, b, now)
		result.Signals = append(result.Signals, signals...)
		result.Errors = append(result.Errors, errs...)

		if b.usage().BudgetExhausted {
			g.logger.Warn("request budget exhausted, stopping early",
				zap.Int("budget", b.limit))
			break
		}
	}

	result.APIUsage = b.usage()
	result.Summary = BuildSummary(result.Signals)

	persist(g.store, g.logger, result)

	g.logger.Info("collection complete",
		zap.Int("signals", len(result.Signals)),
		zap.Int("requests", result.APIUsage.RequestsUsed),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (g *GitHub) collectRepo(ctx context.Context, repo config.Repository, b *budget, now time.Time) ([]signal.Signal, []string) {
	var signals []signal.Signal
	var errs []string

	if b.take() {
		releases, _, err := g.client.Repositories.ListReleases(ctx, repo.Owner, repo.Name, &github.ListOptions{PerPage: releasesPerRepo})
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s/%s releases: %v", repo.Owner, repo.Name, err))
			g.logger.Warn("release listing failed", zap.String("repo", repo.Owner+"/"+repo.Name), zap.Error(err))
		} else {
			for _, rel := range releases {
				if rel.GetPublishedAt().Time.Before(now.AddDate(0, 0, -releaseLookbackDays)) {
					continue
				}
				signals = append(signals, g.releaseSignal(repo, rel, now))
			}
		}
	}

	if b.take() {
		issues, _, err := g.client.Issues.ListByRepo(ctx, repo.Owner, repo.Name, &github.IssueListByRepoOptions{
			State:       "open",
			Sort:        "comments",
			Direction:   "desc",
			Since:       now.AddDate(0, 0, -issueLookbackDays),
			ListOptions: github.ListOptions{PerPage: issuesPerRepo},
		})
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s/%s issues: %v", repo.Owner, repo.Name, err))
			g.logger.Warn("issue listing failed", zap.String("repo", repo.Owner+"/"+repo.Name), zap.Error(err))
		} else {
			for _, issue := range issues {
				if issue.IsPullRequest() || issue.GetComments() <= issueCommentFloor {
					continue
				}
				if issue.GetCreatedAt().Time.Before(now.AddDate(0, 0, -issueLookbackDays)) {
					continue
				}
				signals = append(signals, g.issueSignal(repo, issue, now))
			}
		}
	}

	if b.take() {
		pulls, _, err := g.client.PullRequests.List(ctx, repo.Owner, repo.Name, &github.PullRequestListOptions{
			State:       "closed",
			Sort:        "updated",
			Direction:   "desc",
			ListOptions: github.ListOptions{PerPage: pullsPerRepo},
		})
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s/%s pulls: %v", repo.Owner, repo.Name, err))
			g.logger.Warn("pull listing failed", zap.String("repo", repo.Owner+"/"+repo.Name), zap.Error(err))
		} else {
			for _, pr := range pulls {
				if pr.MergedAt == nil {
					continue
				}
				if !detectBreakingChanges(pr.GetTitle() + " " + pr.GetBody()) {
					continue
				}
				signals = append(signals, g.pullSignal(repo, pr, now))
			}
		}
	}

	return signals, errs
}

func (g *GitHub) releaseSignal(repo config.Repository, rel *github.RepositoryRelease, now time.Time) signal.Signal {
	title := fmt.Sprintf("%s release: %s", repo.Framework, rel.GetName())
	if rel.GetName() == "" {
		title = fmt.Sprintf("%s release: %s", repo.Framework, rel.GetTagName())
	}
	body := truncate(rel.GetBody(), 500)
	text := title + " " + body

	return signal.Signal{
		ID:             fmt.Sprintf("github-release-%d", rel.GetID()),
		Platform:       githubSource,
		Source:         repo.Owner + "/" + repo.Name,
		Title:          title,
		Content:        body,
		URL:            rel.GetHTMLURL(),
		Author:         rel.GetAuthor().GetLogin(),
		CreatedAt:      rel.GetPublishedAt().Time,
		RelevanceScore: g.score(text),
		Frameworks:     appendMissing(signal.ExtractFrameworks(text), repo.Framework),
		Categories:     appendMissing(signal.Categorize(text), "release"),
		Priority:       assessReleasePriority(rel),
		ExtractedAt:    now,
	}
}

func (g *GitHub) issueSignal(repo config.Repository, issue *github.Issue, now time.Time) signal.Signal {
	body := truncate(issue.GetBody(), 500)
	text := issue.GetTitle() + " " + body
	engagement := signal.GitHubIssueEngagement(issue.GetComments(), issue.GetReactions().GetTotalCount(), issue.GetCreatedAt().Time, now)

	return signal.Signal{
		ID:       fmt.Sprintf("github-issue-%d", issue.GetID()),
		Platform: githubSource,
		Source:   repo.Owner + "/" + repo.Name,
		Title:    issue.GetTitle(),
		Content:  body,
		URL:      issue.GetHTMLURL(),
		Author:   issue.GetUser().GetLogin(),
		Metrics: signal.Metrics{
			Comments:  issue.GetComments(),
			Reactions: issue.GetReactions().GetTotalCount(),
		},
		CreatedAt:       issue.GetCreatedAt().Time,
		EngagementScore: engagement,
		RelevanceScore:  g.score(text),
		Frameworks:      appendMissing(signal.ExtractFrameworks(text), repo.Framework),
		Categories:      appendMissing(signal.Categorize(text), "issue"),
		Priority:        signal.AssessPriority(text, engagement),
		ExtractedAt:     now,
	}
}

func (g *GitHub) pullSignal(repo config.Repository, pr *github.PullRequest, now time.Time) signal.Signal {
	body := truncate(pr.GetBody(), 500)
	text := pr.GetTitle() + " " + body

	return signal.Signal{
		ID:             fmt.Sprintf("github-pull-%d", pr.GetID()),
		Platform:       githubSource,
		Source:         repo.Owner + "/" + repo.Name,
		Title:          fmt.Sprintf("breaking change merged: %s", pr.GetTitle()),
		Content:        body,
		URL:            pr.GetHTMLURL(),
		Author:         pr.GetUser().GetLogin(),
		CreatedAt:      pr.GetMergedAt().Time,
		RelevanceScore: g.score(text),
		Frameworks:     appendMissing(signal.ExtractFrameworks(text), repo.Framework),
		Categories:     appendMissing(signal.Categorize(text), "release"),
		Priority:       signal.PriorityHigh,
		ExtractedAt:    now,
	}
}

// assessReleasePriority ranks a release by its content markers.
func assessReleasePriority(rel *github.RepositoryRelease) signal.Priority {
	if rel.GetPrerelease() {
		return signal.PriorityMedium
	}
	text := rel.GetName() + " " + rel.GetBody()
	if isSecurityRelease(text) {
		return signal.PriorityHigh
	}
	if detectBreakingChanges(rel.GetBody()) {
		return signal.PriorityHigh
	}
	if strings.Contains(strings.ToLower(rel.GetName()), "major") || majorVersionTag(rel.GetTagName()) {
		return signal.PriorityHigh
	}
	return signal.PriorityMedium
}

func isSecurityRelease(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "security") ||
		strings.Contains(lower, "cve") ||
		strings.Contains(lower, "vulnerability")
}

func detectBreakingChanges(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "breaking change") ||
		strings.Contains(lower, "breaking:") ||
		strings.Contains(lower, "migration required")
}

// majorVersionTag matches tags like v15.0.0 or 4.0.0.
func majorVersionTag(tag string) bool {
	tag = strings.TrimPrefix(tag, "v")
	parts := strings.Split(tag, ".")
	if len(parts) != 3 {
		return false
	}
	return parts[1] == "0" && parts[2] == "0"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func appendMissing(items []string, item string) []string {
	if item == "" || item == "unknown" {
		return items
	}
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(items, item)
}

var _ Collector = (*GitHub)(nil)
