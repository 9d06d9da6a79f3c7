package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretRedaction(t *testing.T) {
	s := Secret("ghp_supersecret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "ghp_supersecret", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `"[REDACTED]"`, string(data))

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
	data, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `""`, string(data))
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("5m")))
	assert.Equal(t, 5*time.Minute, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5m")))
	assert.Error(t, d.UnmarshalText([]byte("banana")))
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "reports", cfg.Storage.ReportsDir)
	assert.NotEmpty(t, cfg.GitHub.Repositories)
	assert.Equal(t, float64(15), cfg.Reddit.MinRelevance)
	assert.Equal(t, float64(20), cfg.X.MinRelevance)
	assert.Equal(t, 1500, cfg.X.MonthlyBudget)
	assert.Equal(t, 5*time.Minute, cfg.Pipeline.SourceTimeout.Duration())
	assert.Contains(t, cfg.Scoring.Competitors, "sveltekit")
	assert.Equal(t, "high", cfg.Scoring.Competitors["sveltekit"].ThreatLevel)
	assert.Equal(t, float64(30), cfg.Scoring.RelevanceKeywords["next.js"])
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.Storage.DataDir = "" },
			wantErr: "data_dir",
		},
		{
			name:    "repo without owner",
			mutate:  func(c *Config) { c.GitHub.Repositories = []Repository{{Name: "next.js"}} },
			wantErr: "owner and name",
		},
		{
			name:    "negative budget",
			mutate:  func(c *Config) { c.Reddit.RequestBudget = -1 },
			wantErr: "request_budget",
		},
		{
			name:    "zero weight keyword",
			mutate:  func(c *Config) { c.Scoring.RelevanceKeywords = map[string]float64{"react": 0} },
			wantErr: "positive weight",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
storage:
  data_dir: /tmp/crowsnest-data
reddit:
  request_budget: 40
x:
  monthly_budget: 300
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/crowsnest-data", cfg.Storage.DataDir)
	assert.Equal(t, 40, cfg.Reddit.RequestBudget)
	assert.Equal(t, 300, cfg.X.MonthlyBudget)
	// Defaults still applied for unset fields.
	assert.Equal(t, "reports", cfg.Storage.ReportsDir)
}

func TestLoadWithFileEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("github:\n  token: from-file\n"), 0600))

	t.Setenv("GITHUB_TOKEN", "from-env")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GitHub.Token.Value())
}

func TestLoadWithFileTwitterAlias(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0600))

	t.Setenv("TWITTER_BEARER_TOKEN", "alias-token")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alias-token", cfg.X.BearerToken.Value())
}
