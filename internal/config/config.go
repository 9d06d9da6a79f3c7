// Package config provides configuration loading for crowsnest.
package config

import (
	"fmt"
	"time"

	"github.com/crowsnest-io/crowsnest/internal/logging"
)

// Config is the top-level crowsnest configuration.
type Config struct {
	Logging  logging.Config `koanf:"logging"`
	Storage  StorageConfig  `koanf:"storage"`
	GitHub   GitHubConfig   `koanf:"github"`
	Reddit   RedditConfig   `koanf:"reddit"`
	X        XConfig        `koanf:"x"`
	Scoring  ScoringConfig  `koanf:"scoring"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Server   ServerConfig   `koanf:"server"`
}

// StorageConfig controls where monitoring data and reports are written.
type StorageConfig struct {
	DataDir    string `koanf:"data_dir"`
	ReportsDir string `koanf:"reports_dir"`
}

// Repository identifies a monitored GitHub repository.
type Repository struct {
	Owner     string `koanf:"owner"`
	Name      string `koanf:"name"`
	Priority  string `koanf:"priority"`
	Framework string `koanf:"framework"`
}

// GitHubConfig holds GitHub collector settings.
type GitHubConfig struct {
	Token         Secret       `koanf:"token"`
	Repositories  []Repository `koanf:"repositories"`
	RequestBudget int          `koanf:"request_budget"`
}

// RedditConfig holds Reddit collector settings.
type RedditConfig struct {
	ClientID            Secret   `koanf:"client_id"`
	ClientSecret        Secret   `koanf:"client_secret"`
	UserAgent           string   `koanf:"user_agent"`
	PrioritySubreddits  []string `koanf:"priority_subreddits"`
	SecondarySubreddits []string `koanf:"secondary_subreddits"`
	SearchQueries       []string `koanf:"search_queries"`
	RequestBudget       int      `koanf:"request_budget"`
	MinRelevance        float64  `koanf:"min_relevance"`
}

// XConfig holds X/Twitter collector settings.
type XConfig struct {
	BearerToken      Secret   `koanf:"bearer_token"`
	PriorityAccounts []string `koanf:"priority_accounts"`
	SearchQuery      string   `koanf:"search_query"`
	MonthlyBudget    int      `koanf:"monthly_budget"`
	MinRelevance     float64  `koanf:"min_relevance"`
}

// CompetitorProfile describes a competing framework for threat analysis.
type CompetitorProfile struct {
	Strengths      []string `koanf:"strengths" json:"strengths"`
	Weaknesses     []string `koanf:"weaknesses" json:"weaknesses"`
	MarketPosition string   `koanf:"market_position" json:"market_position"`
	ThreatLevel    string   `koanf:"threat_level" json:"threat_level"`
}

// PositioningConfig is the product-positioning vocabulary used to score how
// directly a piece of content touches our own stack and differentiators.
type PositioningConfig struct {
	CoreStrengths   []string `koanf:"core_strengths"`
	Differentiators []string `koanf:"differentiators"`
	AINativeTerms   []string `koanf:"ai_native_terms"`
}

// ScoringConfig carries the keyword tables driving relevance scoring.
type ScoringConfig struct {
	RelevanceKeywords map[string]float64           `koanf:"relevance_keywords"`
	Competitors       map[string]CompetitorProfile `koanf:"competitors"`
	Positioning       PositioningConfig            `koanf:"positioning"`
}

// PipelineConfig holds orchestration settings.
type PipelineConfig struct {
	SourceTimeout Duration `koanf:"source_timeout"`
}

// ServerConfig holds the read-only HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// NewDefaultConfig returns the compiled-in defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{Logging: *logging.NewDefaultConfig()}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging = *logging.NewDefaultConfig()
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.ReportsDir == "" {
		cfg.Storage.ReportsDir = "reports"
	}

	if len(cfg.GitHub.Repositories) == 0 {
		cfg.GitHub.Repositories = []Repository{
			{Owner: "vercel", Name: "next.js", Priority: "critical", Framework: "next.js"},
			{Owner: "facebook", Name: "react", Priority: "critical", Framework: "react"},
			{Owner: "microsoft", Name: "TypeScript", Priority: "critical", Framework: "typescript"},
			{Owner: "tailwindlabs", Name: "tailwindcss", Priority: "critical", Framework: "tailwind"},
			{Owner: "supabase", Name: "supabase", Priority: "critical", Framework: "supabase"},
			{Owner: "vercel", Name: "ai", Priority: "high", Framework: "ai-sdk"},
			{Owner: "nodejs", Name: "node", Priority: "high", Framework: "node"},
			{Owner: "remix-run", Name: "remix", Priority: "medium", Framework: "remix"},
			{Owner: "vitejs", Name: "vite", Priority: "medium", Framework: "vite"},
			{Owner: "denoland", Name: "deno", Priority: "medium", Framework: "deno"},
		}
	}
	if cfg.GitHub.RequestBudget == 0 {
		cfg.GitHub.RequestBudget = 4500
	}

	if cfg.Reddit.UserAgent == "" {
		cfg.Reddit.UserAgent = "crowsnest-social-listening/1.0"
	}
	if len(cfg.Reddit.PrioritySubreddits) == 0 {
		cfg.Reddit.PrioritySubreddits = []string{
			"webdev", "reactjs", "nextjs", "typescript", "tailwindcss", "supabase",
		}
	}
	if len(cfg.Reddit.SecondarySubreddits) == 0 {
		cfg.Reddit.SecondarySubreddits = []string{
			"javascript", "frontend", "programming", "node",
		}
	}
	if len(cfg.Reddit.SearchQueries) == 0 {
		cfg.Reddit.SearchQueries = []string{
			"next.js 15", "react 19", "tailwind v4", "typescript 5", "supabase",
		}
	}
	if cfg.Reddit.RequestBudget == 0 {
		cfg.Reddit.RequestBudget = 90
	}
	if cfg.Reddit.MinRelevance == 0 {
		cfg.Reddit.MinRelevance = 15
	}

	if len(cfg.X.PriorityAccounts) == 0 {
		cfg.X.PriorityAccounts = []string{
			"vercel", "rauchg", "reactjs", "dan_abramov",
			"typescript", "tailwindcss", "adamwathan", "supabase",
		}
	}
	if cfg.X.SearchQuery == "" {
		cfg.X.SearchQuery = `("next.js" OR nextjs OR "react 19" OR tailwind) -is:retweet lang:en`
	}
	if cfg.X.MonthlyBudget == 0 {
		cfg.X.MonthlyBudget = 1500
	}
	if cfg.X.MinRelevance == 0 {
		cfg.X.MinRelevance = 20
	}

	if len(cfg.Scoring.RelevanceKeywords) == 0 {
		cfg.Scoring.RelevanceKeywords = DefaultRelevanceKeywords()
	}
	if len(cfg.Scoring.Competitors) == 0 {
		cfg.Scoring.Competitors = DefaultCompetitors()
	}
	if len(cfg.Scoring.Positioning.CoreStrengths) == 0 {
		cfg.Scoring.Positioning = DefaultPositioning()
	}

	if cfg.Pipeline.SourceTimeout == 0 {
		cfg.Pipeline.SourceTimeout = Duration(5 * time.Minute)
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9180
	}
}

// DefaultRelevanceKeywords is the keyword weight table for relevance scoring.
func DefaultRelevanceKeywords() map[string]float64 {
	return map[string]float64{
		"next.js": 30, "nextjs": 30, "next js": 30, "next 15": 35,
		"react": 25, "react 19": 35, "reactjs": 25,
		"typescript": 25, "typescript 5": 30, "ts": 15,
		"tailwind": 25, "tailwindcss": 30, "tailwind css": 30, "tailwind v4": 35,
		"supabase": 30,
		"vercel":   20, "deployment": 15,
		"security": 20, "vulnerability": 25,
		"performance": 15, "optimization": 15,
	}
}

// DefaultCompetitors returns the built-in competitor profiles.
func DefaultCompetitors() map[string]CompetitorProfile {
	return map[string]CompetitorProfile{
		"sveltekit": {
			Strengths:      []string{"performance", "simplicity", "bundle_size"},
			Weaknesses:     []string{"ecosystem_size", "enterprise_adoption"},
			MarketPosition: "performance_leader",
			ThreatLevel:    "high",
		},
		"angular": {
			Strengths:      []string{"enterprise_adoption", "typescript_native", "google_backing"},
			Weaknesses:     []string{"complexity", "bundle_size", "developer_experience"},
			MarketPosition: "enterprise_incumbent",
			ThreatLevel:    "medium",
		},
		"vue": {
			Strengths:      []string{"ease_of_learning", "progressive_adoption", "flexibility"},
			Weaknesses:     []string{"enterprise_adoption", "ecosystem_maturity"},
			MarketPosition: "accessibility_leader",
			ThreatLevel:    "low",
		},
	}
}

// DefaultPositioning returns the built-in positioning vocabulary.
func DefaultPositioning() PositioningConfig {
	return PositioningConfig{
		CoreStrengths: []string{
			"ai_native_architecture",
			"automatic_accessibility",
			"next_js_15_turbopack",
			"react_19_compiler",
			"vercel_ai_sdk_5",
		},
		Differentiators: []string{
			"ai_enhanced_performance",
			"zero_config_accessibility",
			"mcp_tool_generation",
		},
		AINativeTerms: []string{
			"ai native", "mcp", "vercel ai sdk", "ai development", "agent orchestration",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir cannot be empty")
	}
	if c.Storage.ReportsDir == "" {
		return fmt.Errorf("storage.reports_dir cannot be empty")
	}
	for _, repo := range c.GitHub.Repositories {
		if repo.Owner == "" || repo.Name == "" {
			return fmt.Errorf("github repository requires owner and name, got %q/%q", repo.Owner, repo.Name)
		}
	}
	if c.GitHub.RequestBudget < 0 {
		return fmt.Errorf("github.request_budget must be >= 0")
	}
	if c.Reddit.RequestBudget < 0 {
		return fmt.Errorf("reddit.request_budget must be >= 0")
	}
	if c.X.MonthlyBudget < 0 {
		return fmt.Errorf("x.monthly_budget must be >= 0")
	}
	for keyword, weight := range c.Scoring.RelevanceKeywords {
		if keyword == "" {
			return fmt.Errorf("scoring keyword cannot be empty")
		}
		if weight <= 0 {
			return fmt.Errorf("scoring keyword %q must have positive weight", keyword)
		}
	}
	if c.Pipeline.SourceTimeout.Duration() <= 0 {
		return fmt.Errorf("pipeline.source_timeout must be > 0")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	return nil
}
