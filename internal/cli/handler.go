package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/ethpandaops/dtn-window-stats/internal/config"
	"github.com/ethpandaops/dtn-window-stats/internal/core"
	"github.com/ethpandaops/dtn-window-stats/internal/metrics"
	"github.com/ethpandaops/dtn-window-stats/internal/reports"
	"github.com/ethpandaops/dtn-window-stats/internal/sim"
)

// ReplayOptions holds the replay inputs that are not part of the observer
// configuration.
type ReplayOptions struct {
	TracePath string
	Capacity  int64
	Until     float64
}

// Handler runs the CLI commands
type Handler struct {
	logger logrus.FieldLogger
	fs     afero.Fs
	out    io.Writer
}

// NewHandler creates a new CLI handler. Tables are written to out.
func NewHandler(logger logrus.FieldLogger, fs afero.Fs, out io.Writer) *Handler {
	return &Handler{
		logger: logger.WithField("component", "cli_handler"),
		fs:     fs,
		out:    out,
	}
}

// Replay feeds the trace at opts.TracePath through one observer per node and
// writes their window logs under cfg's log directory.
func (h *Handler) Replay(ctx context.Context, cfg *config.DefaultConfig, opts ReplayOptions) (err error) {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	events, err := h.readTrace(opts.TracePath)
	if err != nil {
		return err
	}

	coreOpts := []core.Option{core.WithFs(h.fs)}

	if cfg.IsMetricsEnabled() {
		reg := prometheus.NewRegistry()
		rec, err := metrics.NewRecorder(reg)
		if err != nil {
			return fmt.Errorf("failed to create metrics: %w", err)
		}

		url, closeServer, err := StartMetricsServer(cfg.GetMetricsAddr(), reg)
		if err != nil {
			return err
		}
		defer closeServer()

		h.logger.WithField("url", url).Info("Metrics server started")
		coreOpts = append(coreOpts, core.WithMetrics(rec))
	}

	replayer, err := sim.NewReplayer(cfg, opts.Capacity, h.logger, coreOpts...)
	if err != nil {
		return fmt.Errorf("failed to create replayer: %w", err)
	}
	defer func() {
		err = multierr.Append(err, replayer.Close())
	}()

	h.logger.WithFields(logrus.Fields{
		"trace":       opts.TracePath,
		"log_dir":     cfg.GetLogDir(),
		"window_size": cfg.GetWindowSize(),
		"tick":        cfg.GetTickInterval(),
	}).Info("Starting replay")

	if err := replayer.Run(ctx, events, opts.Until); err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"nodes": len(replayer.Nodes()),
		"ticks": replayer.Ticks(),
		"end":   replayer.Now(),
	}).Info("Replay completed")

	return nil
}

// Summarize prints the cumulative totals of every log under dir.
func (h *Handler) Summarize(dir string) error {
	report, err := reports.NewSummarizer(h.fs, h.logger).Summarize(dir)
	if err != nil {
		return fmt.Errorf("failed to summarize %s: %w", dir, err)
	}

	if len(report.Observers) == 0 {
		h.logger.WithField("log_dir", dir).Warn("No window logs found")
		return nil
	}

	RenderReport(h.out, report)
	return nil
}

func (h *Handler) readTrace(path string) ([]sim.TraceEvent, error) {
	if path == "" {
		return nil, fmt.Errorf("trace file must be specified")
	}

	f, err := h.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	events, err := sim.ParseTrace(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trace %s: %w", path, err)
	}

	return events, nil
}

// SetupGracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
func (h *Handler) SetupGracefulShutdown() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			h.logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
