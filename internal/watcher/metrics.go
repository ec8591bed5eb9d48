package watcher

import (
	"github.com/moolen/buildscope/internal/bep"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics exported by watch mode. Gauges mirror the
// latest analyzed build; counters track the watch loop itself.
type Metrics struct {
	TotalTargets      prometheus.Gauge
	SuccessfulTargets prometheus.Gauge
	FailedTargets     prometheus.Gauge
	TotalTimeMs       prometheus.Gauge
	ActionCount       prometheus.Gauge
	CacheHits         prometheus.Gauge
	RemoteCacheHits   prometheus.Gauge
	SkippedLines      prometheus.Gauge

	ReloadsTotal      prometheus.Counter
	ReloadErrorsTotal prometheus.Counter
}

// NewMetrics creates and registers the watch-mode metrics.
// The registerer parameter allows flexible registration (global registry in
// the CLI, a private registry in tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TotalTargets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buildscope_build_targets_total",
			Help: "Number of targets configured in the last analyzed build",
		}),
		SuccessfulTargets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buildscope_build_targets_successful",
			Help: "Number of targets that completed successfully in the last analyzed build",
		}),
		FailedTargets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buildscope_build_targets_failed",
			Help: "Number of targets that failed in the last analyzed build",
		}),
		TotalTimeMs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buildscope_build_wall_time_ms",
			Help: "Wall time of the last analyzed build in milliseconds",
		}),
		ActionCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buildscope_build_actions_total",
			Help: "Number of actions executed in the last analyzed build",
		}),
		CacheHits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buildscope_build_cache_hits",
			Help: "Number of local cache hits in the last analyzed build",
		}),
		RemoteCacheHits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buildscope_build_remote_cache_hits",
			Help: "Number of remote cache hits in the last analyzed build",
		}),
		SkippedLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buildscope_bep_skipped_lines",
			Help: "Number of malformed lines skipped while parsing the last event log",
		}),
		ReloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buildscope_bep_reloads_total",
			Help: "Total number of event-log reloads performed by the watcher",
		}),
		ReloadErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buildscope_bep_reload_errors_total",
			Help: "Total number of event-log reloads that failed",
		}),
	}

	reg.MustRegister(
		m.TotalTargets,
		m.SuccessfulTargets,
		m.FailedTargets,
		m.TotalTimeMs,
		m.ActionCount,
		m.CacheHits,
		m.RemoteCacheHits,
		m.SkippedLines,
		m.ReloadsTotal,
		m.ReloadErrorsTotal,
	)

	return m
}

// Observe updates the build gauges from one analyzed stream
func (m *Metrics) Observe(metrics bep.BuildMetrics, skippedLines int) {
	m.TotalTargets.Set(float64(metrics.TotalTargets))
	m.SuccessfulTargets.Set(float64(metrics.SuccessfulTargets))
	m.FailedTargets.Set(float64(metrics.FailedTargets))
	m.TotalTimeMs.Set(float64(metrics.TotalTimeMs))
	m.ActionCount.Set(float64(metrics.ActionCount))
	m.CacheHits.Set(float64(metrics.CacheHits))
	m.RemoteCacheHits.Set(float64(metrics.RemoteCacheHits))
	m.SkippedLines.Set(float64(skippedLines))
}
