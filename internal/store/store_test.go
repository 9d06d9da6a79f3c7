package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "data"), filepath.Join(dir, "reports"), nil)
}

func TestWriteMonitoring(t *testing.T) {
	s := newTestStore(t)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	path, err := s.WriteMonitoring("reddit", map[string]string{"status": "ok"}, ts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.DataDir(), "reddit-monitoring-1772366400000.json"), path)

	var out map[string]string
	require.NoError(t, ReadJSON(path, &out))
	assert.Equal(t, "ok", out["status"])
}

func TestWriteBriefingWritesBothFormats(t *testing.T) {
	s := newTestStore(t)
	ts := time.Now()

	path, err := s.WriteBriefing("executive_summary", map[string]int{"actions": 3}, "# Briefing\n", ts)
	require.NoError(t, err)
	assert.FileExists(t, path)

	mdPath := path[:len(path)-len(".json")] + ".md"
	data, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Briefing")
}

func TestLatest(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Latest(s.DataDir(), "reddit-monitoring-")
	assert.Error(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.WriteMonitoring("reddit", map[string]int{"run": i}, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}
	_, err = s.WriteMonitoring("github", map[string]int{"run": 9}, base)
	require.NoError(t, err)

	path, err := s.Latest(s.DataDir(), "reddit-monitoring-")
	require.NoError(t, err)

	var out map[string]int
	require.NoError(t, ReadJSON(path, &out))
	assert.Equal(t, 2, out["run"])
}

func TestReadJSONErrors(t *testing.T) {
	var out map[string]any
	assert.Error(t, ReadJSON("/nonexistent/file.json", &out))

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	assert.Error(t, ReadJSON(bad, &out))
}
