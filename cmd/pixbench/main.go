// Command pixbench compares sequential and parallel filter chain execution
// over synthetic video frames.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/soypat/pixfx"
	"github.com/soypat/pixfx/chain"
	"github.com/soypat/pixfx/filters"
	"github.com/soypat/pixfx/internal/appconfig"
	"github.com/soypat/pixfx/perf"
)

func main() {
	configPath := flag.String("config", "pixbench.json", "Path to JSON configuration")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	filterList := flag.String("filters", "", "Comma separated filter chain, overrides config")
	frames := flag.Int("frames", -1, "Number of synthetic frames, overrides config")
	workers := flag.Int("workers", -1, "Parallel worker count, 0 for hardware concurrency")
	useGPU := flag.Bool("gpu", false, "Register WebGPU accelerated filters")
	flag.Parse()

	cfg, err := appconfig.Load(*configPath)
	logger := initLogger(*debugMode || cfg.Debug)
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if *filterList != "" {
		cfg.Filters = strings.Split(*filterList, ",")
	}
	if *frames >= 0 {
		cfg.Frames = *frames
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	cfg.UseGPU = cfg.UseGPU || *useGPU
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	pixfx.SetLogger(logger)

	ch, _ := cfg.Chain() // Validated above.
	catalog := chain.NewCatalog()
	if cfg.UseGPU {
		release := registerGPU(logger, catalog)
		defer release()
	}
	frameSet, err := syntheticFrames(cfg)
	if err != nil {
		logger.WithError(err).Fatal("generating frames")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	harness := perf.NewHarness(chain.NewExecutor(cfg.Workers, catalog))
	cmp, err := harness.Compare(ctx, frameSet, ch)
	if err != nil {
		logger.WithError(err).Error("comparison aborted")
		return
	}
	if err := cmp.WriteText(os.Stdout); err != nil {
		logger.WithError(err).Error("writing report")
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}

// registerGPU opens a WebGPU device and registers the accelerated kinds.
// Without a device the accelerated kinds stay unregistered and pass through.
func registerGPU(logger *logrus.Logger, catalog *chain.Catalog) (release func()) {
	gpu, err := filters.OpenGPU()
	if err != nil {
		logger.WithError(err).Warn("GPU unavailable, accelerated filters will pass through")
		return func() {}
	}
	var cleanups []func()
	zero, err := filters.NewZeroFirstChannelGPU(gpu.Device, gpu.Queue)
	if err == nil {
		err = catalog.RegisterAccelerator(chain.KindAccelZeroFirstChannel, zero)
		cleanups = append(cleanups, zero.Cleanup)
	}
	if err != nil {
		logger.WithError(err).Warn("zero first channel GPU filter unavailable")
	}
	gray, err := filters.NewGrayscaleGPU(gpu.Device, gpu.Queue)
	if err == nil {
		err = catalog.RegisterAccelerator(chain.KindAccelGrayscale, gray)
		cleanups = append(cleanups, gray.Cleanup)
	}
	if err != nil {
		logger.WithError(err).Warn("grayscale GPU filter unavailable")
	}
	return func() {
		for _, c := range cleanups {
			c()
		}
		gpu.Release()
	}
}
