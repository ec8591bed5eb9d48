package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/moolen/buildscope/internal/logging"
	"github.com/moolen/buildscope/internal/watcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	watchBEPPath    string
	watchListenAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a build-event log and export build metrics over HTTP",
	Long: `Watch a Build Event Protocol log for changes and keep Prometheus metrics
(target counts, cache-hit counts, wall time) in sync with the latest build.
Metrics are served on /metrics at the configured listen address.`,
	Run: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchBEPPath, "bep", "", "Path to the build-event log (required)")
	watchCmd.Flags().StringVar(&watchListenAddr, "listen", "", "Metrics listen address (default: from config)")
	_ = watchCmd.MarkFlagRequired("bep")
}

func runWatch(cmd *cobra.Command, args []string) {
	HandleError(setupLog(logLevelFlags), "Logging setup error")
	cfg := loadConfig()

	if watchListenAddr != "" {
		cfg.ListenAddr = watchListenAddr
	}

	logger := logging.GetLogger("cli.watch")

	registry := prometheus.NewRegistry()
	metrics := watcher.NewMetrics(registry)
	w := watcher.New(watchBEPPath, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("serving metrics on %s/metrics", cfg.ListenAddr)
		serverErr <- server.ListenAndServe()
	}()

	watcherErr := make(chan error, 1)
	go func() {
		watcherErr <- w.Run(ctx)
	}()

	select {
	case err := <-serverErr:
		HandleError(err, "Metrics server failed")
	case err := <-watcherErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			HandleError(err, "Watcher failed")
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("shutting down")
}
