package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowsnest-io/crowsnest/internal/briefing"
	"github.com/crowsnest-io/crowsnest/internal/config"
	"github.com/crowsnest-io/crowsnest/internal/logging"
	"github.com/crowsnest-io/crowsnest/internal/store"
)

func testServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "data"), filepath.Join(dir, "reports"), logging.NewTestLogger().Logger)

	s, err := New(st, logging.NewTestLogger().Logger, config.ServerConfig{Host: "localhost", Port: 9180})
	require.NoError(t, err)
	return s, st
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, logging.NewTestLogger().Logger, config.ServerConfig{})
	require.Error(t, err)

	st := store.New(t.TempDir(), t.TempDir(), nil)
	_, err = New(st, nil, config.ServerConfig{})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)

	rec := get(s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := testServer(t)

	rec := get(s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestLatestReport(t *testing.T) {
	s, st := testServer(t)

	rec := get(s, "/api/v1/reports/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	older := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	_, err := st.WriteIntelligenceReport(map[string]string{"marker": "old"}, older)
	require.NoError(t, err)
	_, err = st.WriteIntelligenceReport(map[string]string{"marker": "new"}, newer)
	require.NoError(t, err)

	rec = get(s, "/api/v1/reports/latest")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "new", body["marker"])
}

func TestLatestBriefing(t *testing.T) {
	s, st := testServer(t)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := st.WriteBriefing(briefing.TypeExecutiveSummary, map[string]string{"type": "exec"}, "# Briefing\n", ts)
	require.NoError(t, err)
	_, err = st.WriteBriefing(briefing.TypeTacticalBriefing, map[string]string{"type": "tactical"}, "# Briefing\n", ts)
	require.NoError(t, err)

	rec := get(s, "/api/v1/briefings/latest")
	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "exec", body["type"])

	rec = get(s, "/api/v1/briefings/latest?type=tactical_briefing")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tactical", body["type"])

	rec = get(s, "/api/v1/briefings/latest?type=quarterly_novel")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(s, "/api/v1/briefings/latest?type=market_intelligence")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLatestDashboard(t *testing.T) {
	s, st := testServer(t)

	rec := get(s, "/api/v1/dashboard/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := st.WriteOutput("summary_dashboard", map[string]string{"alert_level": "low"}, ts)
	require.NoError(t, err)

	rec = get(s, "/api/v1/dashboard/latest")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "low", body["alert_level"])
}
