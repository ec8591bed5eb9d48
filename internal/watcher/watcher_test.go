package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bep.json")
	writeLog(t, path,
		`{"configured": {}}`+"\n"+
			`{"configured": {}}`+"\n"+
			`{"completed": {"success": true}}`+"\n"+
			`not json`+"\n",
	)

	reg := prometheus.NewRegistry()
	w := New(path, NewMetrics(reg))

	require.NoError(t, w.reload())

	assert.Equal(t, float64(2), testutil.ToFloat64(w.metrics.TotalTargets))
	assert.Equal(t, float64(1), testutil.ToFloat64(w.metrics.SuccessfulTargets))
	assert.Equal(t, float64(1), testutil.ToFloat64(w.metrics.SkippedLines))
	assert.Equal(t, float64(1), testutil.ToFloat64(w.metrics.ReloadsTotal))
}

func TestReload_MissingFile(t *testing.T) {
	reg := prometheus.NewRegistry()
	w := New(filepath.Join(t.TempDir(), "nope.json"), NewMetrics(reg))
	require.Error(t, w.reload())
}

func TestRun_InitialAnalysisFailureIsFatal(t *testing.T) {
	reg := prometheus.NewRegistry()
	w := New(filepath.Join(t.TempDir(), "nope.json"), NewMetrics(reg))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := w.Run(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_PicksUpWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bep.json")
	writeLog(t, path, `{"configured": {}}`+"\n")

	reg := prometheus.NewRegistry()
	w := New(path, NewMetrics(reg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let Run perform the initial analysis and install the watch.
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(w.metrics.ReloadsTotal) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	writeLog(t, path, `{"configured": {}}`+"\n"+`{"configured": {}}`+"\n")

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(w.metrics.TotalTargets) == 2
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
