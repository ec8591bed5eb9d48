// Package bep analyzes Build Event Protocol streams.
//
// A stream is newline-delimited JSON, one event per line, conceptually an
// append-only log emitted during a build. The analyzer is a single pass over
// the events held in memory and produces three independent read-only views:
// aggregate metrics, the failed-target list, and the slow-action list.
//
// Per-line malformation is never fatal. Partial streams from cancelled or
// crashed builds must still yield best-effort results, so bad lines are
// counted (SkippedLines) and skipped. Only an unreadable source is fatal.
package bep

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/moolen/buildscope/internal/logging"
)

const (
	// cacheHitActionType is the action type reported for locally cached results.
	cacheHitActionType = "CACHE_HIT"

	// remoteOutputPrefix marks action outputs materialized from a remote cache.
	remoteOutputPrefix = "remote://"

	// unknownLabel is the fallback for absent mnemonics and target labels.
	unknownLabel = "Unknown"

	// maxLineBytes bounds a single event line. BEP events carrying full
	// command lines can get large; 16MB matches bazel's own message cap.
	maxLineBytes = 16 * 1024 * 1024
)

// BuildMetrics holds aggregate counters over one build-event stream.
// Computed once per stream and never mutated afterward.
//
// Invariant: SuccessfulTargets + FailedTargets <= TotalTargets, since targets
// may be reported configured without completing.
type BuildMetrics struct {
	TotalTargets      int   `json:"total_targets"`
	SuccessfulTargets int   `json:"successful_targets"`
	FailedTargets     int   `json:"failed_targets"`
	TotalTimeMs       int64 `json:"total_time_ms"`
	ActionCount       int   `json:"action_count"`
	CacheHits         int   `json:"cache_hits"`
	RemoteCacheHits   int   `json:"remote_cache_hits"`
}

// SlowAction is a derived view of an action whose execution time exceeded a
// caller-supplied threshold.
type SlowAction struct {
	Mnemonic   string `json:"mnemonic"`
	DurationMs int64  `json:"duration_ms"`
	Target     string `json:"target"`
}

// Analyzer holds a parsed build-event stream
type Analyzer struct {
	events  []Event
	skipped int
	logger  *logging.Logger
}

// NewAnalyzer creates an analyzer over pre-parsed events
func NewAnalyzer(events []Event) *Analyzer {
	return &Analyzer{
		events: events,
		logger: logging.GetLogger("bep"),
	}
}

// LoadFile opens and parses a build-event log. An unopenable file yields an
// EventSourceError; malformed event lines are counted and skipped.
func LoadFile(path string) (*Analyzer, error) {
	// path is user-provided on the command line
	// #nosec G304 -- BEP log path is intentionally user-configurable
	f, err := os.Open(path)
	if err != nil {
		return nil, &EventSourceError{Path: path, Cause: err}
	}
	defer f.Close()

	a, err := Load(f)
	if err != nil {
		var ese *EventSourceError
		if errors.As(err, &ese) {
			ese.Path = path
		}
		return nil, err
	}
	return a, nil
}

// Load parses a build-event stream from a reader. A read failure yields an
// EventSourceError; malformed lines are counted and skipped, and trailing or
// blank lines are ignored.
func Load(r io.Reader) (*Analyzer, error) {
	a := &Analyzer{logger: logging.GetLogger("bep")}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			a.skipped++
			a.logger.Warn("skipping malformed event at line %d: %v", lineNo, err)
			continue
		}
		a.events = append(a.events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, &EventSourceError{Cause: err}
	}

	a.logger.DebugWithFields("loaded build-event stream",
		logging.Field("events", len(a.events)),
		logging.Field("skipped_lines", a.skipped),
	)
	return a, nil
}

// Events returns the parsed events in stream order
func (a *Analyzer) Events() []Event {
	return a.events
}

// SkippedLines returns the number of malformed lines dropped during parsing.
// Surfaced so callers can report stream quality instead of silently absorbing it.
func (a *Analyzer) SkippedLines() int {
	return a.skipped
}

// ExtractMetrics folds the event stream into aggregate build metrics.
// All counters are order-independent sums; only TotalTimeMs depends on
// stream order (the last finished event wins). Missing sub-fields degrade
// to zero rather than failing the extraction.
func (a *Analyzer) ExtractMetrics() BuildMetrics {
	var m BuildMetrics

	for _, event := range a.events {
		if event.Configured != nil {
			m.TotalTargets++
		}

		if event.Completed != nil {
			if event.Completed.Success {
				m.SuccessfulTargets++
			} else {
				m.FailedTargets++
			}
		}

		if event.Action != nil {
			m.ActionCount++
			if event.Action.Type == cacheHitActionType {
				m.CacheHits++
			}
			if event.Action.PrimaryOutput != nil &&
				strings.HasPrefix(event.Action.PrimaryOutput.URI, remoteOutputPrefix) {
				m.RemoteCacheHits++
			}
		}

		if event.Finished != nil && event.Finished.FinishTimeMillis != nil {
			var start int64
			if event.Finished.StartTimeMillis != nil {
				start = *event.Finished.StartTimeMillis
			}
			m.TotalTimeMs = *event.Finished.FinishTimeMillis - start
		}
	}

	return m
}

// FailedTargets returns the labels of targets that failed, in stream order.
// Duplicates are kept: a target may legitimately be reported failed at
// multiple granularities. Only events carrying a targetCompleted identifier
// contribute.
func (a *Analyzer) FailedTargets() []string {
	var failed []string

	for _, event := range a.events {
		isFailure := event.Aborted != nil ||
			(event.Completed != nil && !event.Completed.Success)
		if !isFailure {
			continue
		}

		if event.ID != nil && event.ID.TargetCompleted != nil {
			if label := event.ID.TargetCompleted.Label; label != "" {
				failed = append(failed, label)
			}
		}
	}

	return failed
}

// SlowActions returns every action whose execution time exceeds thresholdMs,
// sorted descending by duration. The sort is stable, so ties keep their
// original stream order. Absent mnemonics and labels fall back to "Unknown".
func (a *Analyzer) SlowActions(thresholdMs int64) []SlowAction {
	var slow []SlowAction

	for _, event := range a.events {
		if event.Action == nil || event.Action.Metrics == nil {
			continue
		}

		duration := event.Action.Metrics.ExecutionTimeMs
		if duration <= thresholdMs {
			continue
		}

		mnemonic := event.Action.Type
		if mnemonic == "" {
			mnemonic = unknownLabel
		}
		target := event.Action.Label
		if target == "" {
			target = unknownLabel
		}

		slow = append(slow, SlowAction{
			Mnemonic:   mnemonic,
			DurationMs: duration,
			Target:     target,
		})
	}

	sort.SliceStable(slow, func(i, j int) bool {
		return slow[i].DurationMs > slow[j].DurationMs
	})

	return slow
}
