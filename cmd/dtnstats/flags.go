package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/ethpandaops/dtn-window-stats/constants"
)

const envPrefix = "DTNSTATS_"

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "YAML configuration file (default \"dtnstats.yaml\" when present)",
		EnvVar: envPrefix + "CONFIG",
	}
	verbosityFlag = cli.StringFlag{
		Name:   "verbosity",
		Value:  "info",
		Usage:  "log level (panic|fatal|error|warn|info|debug|trace)",
		EnvVar: envPrefix + "VERBOSITY",
	}
	traceFlag = cli.StringFlag{
		Name:   "trace",
		Usage:  "contact trace to replay",
		EnvVar: envPrefix + "TRACE",
	}
	logDirFlag = cli.StringFlag{
		Name:   "log-dir",
		Value:  constants.DefaultLogDir,
		Usage:  "directory for per-node window logs",
		EnvVar: envPrefix + "LOG_DIR",
	}
	windowSizeFlag = cli.Float64Flag{
		Name:   "window-size",
		Value:  constants.DefaultWindowSize,
		Usage:  "window length in simulated seconds",
		EnvVar: envPrefix + "WINDOW_SIZE",
	}
	tickFlag = cli.Float64Flag{
		Name:   "tick",
		Value:  constants.DefaultTickInterval,
		Usage:  "simulated seconds between update ticks",
		EnvVar: envPrefix + "TICK",
	}
	untilFlag = cli.Float64Flag{
		Name:  "until",
		Usage: "keep ticking until this simulated time (defaults to the last trace event)",
	}
	bufferSizeFlag = cli.Int64Flag{
		Name:  "buffer-size",
		Usage: "node buffer capacity in bytes (0 for unbounded)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "serve prometheus metrics during the replay",
		EnvVar: envPrefix + "ENABLE_METRICS",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  constants.DefaultMetricsAddr,
		Usage:  "metrics service listening address",
		EnvVar: envPrefix + "METRICS_ADDR",
	}
)
