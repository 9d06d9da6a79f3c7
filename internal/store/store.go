// Package store persists monitoring snapshots and reports as JSON artifacts.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Store writes timestamped JSON artifacts under the data and reports
// directories. It is persistence only: pipeline stages hand values to each
// other directly and never read these files back mid-run.
type Store struct {
	dataDir    string
	reportsDir string
	logger     *zap.Logger
}

// New creates a store rooted at the given directories.
func New(dataDir, reportsDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dataDir:    dataDir,
		reportsDir: reportsDir,
		logger:     logger,
	}
}

// DataDir returns the monitoring data directory.
func (s *Store) DataDir() string { return s.dataDir }

// ReportsDir returns the reports directory.
func (s *Store) ReportsDir() string { return s.reportsDir }

// WriteMonitoring persists one collector snapshot as
// data/<source>-monitoring-<unix-ms>.json.
func (s *Store) WriteMonitoring(source string, v any, ts time.Time) (string, error) {
	name := fmt.Sprintf("%s-monitoring-%d.json", source, ts.UnixMilli())
	return s.writeJSON(filepath.Join(s.dataDir, name), v)
}

// WriteIntelligenceReport persists a strategic intelligence report as
// reports/strategic-intelligence-<unix-ms>.json.
func (s *Store) WriteIntelligenceReport(v any, ts time.Time) (string, error) {
	name := fmt.Sprintf("strategic-intelligence-%d.json", ts.UnixMilli())
	return s.writeJSON(filepath.Join(s.reportsDir, name), v)
}

// WritePipelineResult persists the consolidated pipeline artifact as
// reports/intelligence/complete-pipeline-<id>.json.
func (s *Store) WritePipelineResult(id string, v any) (string, error) {
	name := fmt.Sprintf("complete-pipeline-%s.json", id)
	return s.writeJSON(filepath.Join(s.reportsDir, "intelligence", name), v)
}

// WriteOutput persists a named actionable output under reports/intelligence/.
func (s *Store) WriteOutput(name string, v any, ts time.Time) (string, error) {
	file := fmt.Sprintf("%s-%d.json", name, ts.UnixMilli())
	return s.writeJSON(filepath.Join(s.reportsDir, "intelligence", file), v)
}

// WriteBriefing persists a briefing as JSON plus rendered Markdown under
// reports/briefings/strategic-briefing-<type>-<unix-ms>.{json,md}.
func (s *Store) WriteBriefing(briefingType string, v any, markdown string, ts time.Time) (string, error) {
	base := fmt.Sprintf("strategic-briefing-%s-%d", briefingType, ts.UnixMilli())
	dir := filepath.Join(s.reportsDir, "briefings")

	jsonPath, err := s.writeJSON(filepath.Join(dir, base+".json"), v)
	if err != nil {
		return "", err
	}

	mdPath := filepath.Join(dir, base+".md")
	if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", mdPath, err)
	}

	s.logger.Debug("briefing written",
		zap.String("json", jsonPath),
		zap.String("markdown", mdPath))
	return jsonPath, nil
}

// Latest returns the newest file in dir whose name starts with prefix.
// Intended for CLI and HTTP inspection, not for stage handoff.
func (s *Store) Latest(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no %s* artifacts in %s", prefix, dir)
	}

	// Timestamped names sort chronologically.
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}

// ReadJSON loads a JSON artifact into out.
func ReadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (s *Store) writeJSON(path string, v any) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Debug("artifact written", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}
