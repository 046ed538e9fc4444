package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/usher"
	"github.com/aretw0/usher/internal/logging"
	"github.com/aretw0/usher/internal/presentation/tui"
	httpadapter "github.com/aretw0/usher/pkg/adapters/http"
	"github.com/aretw0/usher/pkg/observability"
)

// RunServe starts the HTTP API. With watch enabled the opener is rebuilt
// whenever a policy document changes; the metrics registry and the event hub
// survive rebuilds so scrapes and SSE subscribers keep their connection.
func RunServe(opts Options, port string, watch bool) error {
	logger := createLogger(opts.Debug)
	// The base logger goes to BuildApp so library components tag themselves;
	// the serve loop's own messages carry the server tag.
	srvLog := logging.Named(logger, "server")
	if !opts.Quiet {
		tui.PrintBanner(usher.Version)
	}

	if watch && opts.PolicyDir == "" {
		return fmt.Errorf("watch mode requires a policy directory")
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	// Collectors register against the process-global registry, so they are
	// created exactly once and shared across watch iterations.
	hub := observability.NewHub()
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	for {
		again, err := runServeIteration(sigCtx, opts, port, watch, logger, srvLog, hub, metrics)
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		srvLog.Info("Server restarting")
	}
}

func runServeIteration(parentCtx *SignalContext, opts Options, port string, watch bool, logger, srvLog *slog.Logger, hub *observability.Hub, metrics *observability.Metrics) (bool, error) {
	// Child context cancelled on reload without cancelling the signal context.
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	app, err := BuildApp(ctx, opts, logger, hub.Hooks(), metrics.Hooks())
	if err != nil {
		return false, err
	}
	defer app.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", httpadapter.NewHandler(app.Service, httpadapter.WithHub(hub)))

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		srvLog.Info("Server listening", "addr", srv.Addr)
		if !opts.Quiet {
			printSystemMessage("Serving on http://localhost%s (metrics on /metrics)", srv.Addr)
		}
		serverErrors <- srv.ListenAndServe()
	}()

	var reload <-chan string
	if watch && app.Loam != nil {
		reload, err = app.Loam.Watch(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to watch policies: %w", err)
		}
	}

	rebuild := false
	select {
	case err := <-serverErrors:
		return false, fmt.Errorf("server error: %w", err)

	case <-parentCtx.Done():
		srvLog.Info("Stopping server (signal received)", "signal", parentCtx.Signal())

	case path := <-reload:
		srvLog.Info("Change detected, triggering reload", "path", path)
		if !opts.Quiet {
			printSystemMessage("Change detected in '%s'.", path)
		}
		// Delay slightly to ensure the file system is stable.
		time.Sleep(100 * time.Millisecond)
		rebuild = true
	}

	// Give outstanding requests a deadline for completion.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		srvLog.Warn("Graceful shutdown did not complete", "err", err)
		if err := srv.Close(); err != nil {
			return false, fmt.Errorf("could not stop server: %w", err)
		}
	}
	return rebuild, nil
}
