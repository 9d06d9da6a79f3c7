package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowsnest-io/crowsnest/internal/collector"
	"github.com/crowsnest-io/crowsnest/internal/store"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{
		"test", "monitor", "github", "reddit", "x",
		"intel", "briefing", "pipeline", "serve",
	} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestPipelineSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range pipelineCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"full", "quick", "test", "watch"} {
		assert.True(t, names[want], "missing pipeline subcommand %q", want)
	}
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir, dir, nil)

	sample := sampleSnapshot()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path, err := st.WriteMonitoring("github", collector.Snapshot{
		Timestamp: ts,
		Results:   sample.Signals,
		Summary:   sample.Summary,
	}, ts)
	require.NoError(t, err)

	result, err := loadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "github", result.Source)
	assert.Len(t, result.Signals, 2)
}

func TestLoadSnapshotRejectsOtherArtifacts(t *testing.T) {
	_, err := loadSnapshot(filepath.Join(t.TempDir(), "strategic-intelligence-123.json"))
	require.Error(t, err)
}
