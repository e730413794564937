// dtnstats replays DTN contact traces through per-node window observers and
// summarizes the resulting logs.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/ethpandaops/dtn-window-stats/constants"
	"github.com/ethpandaops/dtn-window-stats/internal/buffer"
	dtncli "github.com/ethpandaops/dtn-window-stats/internal/cli"
	"github.com/ethpandaops/dtn-window-stats/internal/config"
)

var version = "dev"

func main() {
	app := cli.App{
		Version: version,
		Name:    "dtnstats",
		Usage:   "Windowed contact and transfer statistics for DTN routers",
		Flags:   []cli.Flag{verbosityFlag},
		Commands: []cli.Command{
			{
				Name:  "replay",
				Usage: "replay a contact trace and write per-node window logs",
				Flags: []cli.Flag{
					configFlag,
					traceFlag,
					logDirFlag,
					windowSizeFlag,
					tickFlag,
					untilFlag,
					bufferSizeFlag,
					enableMetricsFlag,
					metricsAddrFlag,
				},
				Action: replay,
			},
			{
				Name:   "summarize",
				Usage:  "print cumulative totals of the window logs in a directory",
				Flags:  []cli.Flag{configFlag, logDirFlag},
				Action: summarize,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func replay(ctx *cli.Context) error {
	logger, err := newLogger(ctx)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	cfg, err := loadConfig(ctx, fs)
	if err != nil {
		return err
	}

	capacity := ctx.Int64(bufferSizeFlag.Name)
	if capacity <= 0 {
		capacity = buffer.Unbounded
	}

	handler := dtncli.NewHandler(logger, fs, os.Stdout)
	runCtx, cancel := handler.SetupGracefulShutdown()
	defer cancel()

	return handler.Replay(runCtx, cfg, dtncli.ReplayOptions{
		TracePath: ctx.String(traceFlag.Name),
		Capacity:  capacity,
		Until:     ctx.Float64(untilFlag.Name),
	})
}

func summarize(ctx *cli.Context) error {
	logger, err := newLogger(ctx)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	cfg, err := loadConfig(ctx, fs)
	if err != nil {
		return err
	}

	return dtncli.NewHandler(logger, fs, os.Stdout).Summarize(cfg.GetLogDir())
}

// loadConfig layers the config file, when given or present in the working
// directory, under the explicitly set flags.
func loadConfig(ctx *cli.Context, fs afero.Fs) (*config.DefaultConfig, error) {
	cfg := config.NewDefaultConfig()

	path := ctx.String(configFlag.Name)
	if path == "" {
		if ok, _ := afero.Exists(fs, constants.DefaultConfigFile); ok {
			path = constants.DefaultConfigFile
		}
	}
	if path != "" {
		if err := cfg.LoadFile(fs, path); err != nil {
			return nil, errors.Wrap(err, "-config")
		}
	}

	if ctx.IsSet(logDirFlag.Name) {
		cfg.SetLogDir(ctx.String(logDirFlag.Name))
	}
	if ctx.IsSet(windowSizeFlag.Name) {
		cfg.SetWindowSize(ctx.Float64(windowSizeFlag.Name))
	}
	if ctx.IsSet(tickFlag.Name) {
		cfg.SetTickInterval(ctx.Float64(tickFlag.Name))
	}
	if ctx.IsSet(enableMetricsFlag.Name) {
		cfg.SetMetricsEnabled(ctx.Bool(enableMetricsFlag.Name))
	}
	if ctx.IsSet(metricsAddrFlag.Name) {
		cfg.SetMetricsAddr(ctx.String(metricsAddrFlag.Name))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration")
	}

	return cfg, nil
}

func newLogger(ctx *cli.Context) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(ctx.GlobalString(verbosityFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, "-verbosity")
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: !isatty.IsTerminal(os.Stderr.Fd()),
	})

	return logger, nil
}
