package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/crowsnest-io/crowsnest/internal/collector"
	"github.com/crowsnest-io/crowsnest/internal/store"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// Watcher reprocesses intelligence whenever new monitoring snapshots land in
// the data directory. Snapshots written within the debounce window are
// batched into one run so a multi-source drop triggers a single analysis.
type Watcher struct {
	orchestrator *Orchestrator
	dataDir      string
	watcher      *fsnotify.Watcher
	logger       *zap.Logger
	debounce     time.Duration
}

// NewWatcher creates a watcher over the orchestrator's data directory.
func NewWatcher(o *Orchestrator, dataDir string, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		orchestrator: o,
		dataDir:      dataDir,
		watcher:      w,
		logger:       logger.Named("watch"),
		debounce:     2 * time.Second,
	}, nil
}

// Run blocks, watching for monitoring snapshots until the context is
// cancelled. Reprocessing failures are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(w.dataDir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dataDir, err)
	}
	w.logger.Info("watching for monitoring snapshots", zap.String("dir", w.dataDir))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := map[string]bool{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if _, ok := snapshotSource(event.Name); !ok {
				continue
			}
			if !pending[event.Name] {
				pending[event.Name] = true
				w.logger.Debug("snapshot detected", zap.String("path", event.Name))
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			pending = map[string]bool{}

			results := loadSnapshots(paths, w.logger)
			if len(results) == 0 {
				continue
			}
			if _, err := w.orchestrator.Reprocess(ctx, results, nil); err != nil {
				w.logger.Warn("reprocessing failed", zap.Error(err))
			}
		}
	}
}

// snapshotSource extracts the source name from a monitoring snapshot
// filename such as github-monitoring-1756000000000.json.
func snapshotSource(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	source, rest, found := strings.Cut(name, "-monitoring-")
	if !found || source == "" || rest == ".json" {
		return "", false
	}
	return source, true
}

// loadSnapshots reads monitoring snapshots back into collector results.
// Unreadable files are logged and skipped.
func loadSnapshots(paths []string, logger *zap.Logger) []*collector.Result {
	var results []*collector.Result
	for _, path := range paths {
		source, ok := snapshotSource(path)
		if !ok {
			continue
		}

		var snap collector.Snapshot
		if err := store.ReadJSON(path, &snap); err != nil {
			logger.Warn("snapshot not readable", zap.String("path", path), zap.Error(err))
			continue
		}

		results = append(results, &collector.Result{
			Source:    source,
			Timestamp: snap.Timestamp,
			APIUsage:  snap.APIUsage,
			Signals:   snap.Results,
			Summary:   snap.Summary,
		})
	}
	return results
}
