// Package watcher keeps Prometheus metrics in sync with a build-event log.
//
// Watch mode tails a BEP file that CI builds append to (or replace) and
// re-analyzes it on every write, so dashboards see target counts, cache-hit
// rates and wall time without anyone running the analyze command by hand.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/moolen/buildscope/internal/bep"
	"github.com/moolen/buildscope/internal/logging"
)

// debounceInterval coalesces fsnotify event bursts. Builds stream many
// writes per second; one reload per interval is plenty for dashboards.
const debounceInterval = 500 * time.Millisecond

// Watcher re-analyzes a build-event log whenever it changes
type Watcher struct {
	path    string
	metrics *Metrics
	logger  *logging.Logger
}

// New creates a watcher for the given event-log path
func New(path string, metrics *Metrics) *Watcher {
	return &Watcher{
		path:    path,
		metrics: metrics,
		logger:  logging.GetLogger("watcher"),
	}
}

// Run watches the event log until the context is cancelled. The initial
// analysis is performed immediately; an unreadable log at startup is fatal
// (there is nothing to export), while reload failures afterwards are counted
// and retried on the next change.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.reload(); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the parent directory: builds and editors commonly replace the
	// file atomically, which drops a watch placed on the file itself.
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.InfoWithFields("watching build-event log",
		logging.Field("path", w.path),
	)

	var pending bool
	debounce := time.NewTimer(debounceInterval)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !pending {
				pending = true
				debounce.Reset(debounceInterval)
			}

		case <-debounce.C:
			pending = false
			if err := w.reload(); err != nil {
				w.metrics.ReloadErrorsTotal.Inc()
				w.logger.ErrorWithErr("failed to reload event log", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error: %v", err)
		}
	}
}

// reload re-analyzes the event log and pushes the result into the gauges
func (w *Watcher) reload() error {
	analyzer, err := bep.LoadFile(w.path)
	if err != nil {
		return err
	}

	metrics := analyzer.ExtractMetrics()
	w.metrics.Observe(metrics, analyzer.SkippedLines())
	w.metrics.ReloadsTotal.Inc()

	w.logger.DebugWithFields("reloaded event log",
		logging.Field("targets", metrics.TotalTargets),
		logging.Field("actions", metrics.ActionCount),
		logging.Field("skipped_lines", analyzer.SkippedLines()),
	)
	return nil
}
