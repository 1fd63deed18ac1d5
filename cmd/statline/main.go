package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"statline"
	"statline/internal/log"
	"statline/internal/meta"

	"github.com/getsentry/raven-go"
)

func main() {
	configPath := flag.String(
		"config",
		os.Getenv("STATLINE_CONFIG"),
		"path to the configuration file on disk",
	)
	version := flag.Bool(
		"version",
		false,
		"print the compiled statline version SHA",
	)
	verbosity := flag.String(
		"verbosity",
		"error",
		"desired logging verbosity: one of error, warn, info, debug",
	)
	kind := flag.String(
		"kind",
		"meter",
		"metric kind to emit: one of counter, gauge, histogram, meter",
	)
	name := flag.String(
		"name",
		"",
		"metric name to emit under",
	)
	value := flag.Float64(
		"value",
		0,
		"value for gauge and histogram updates",
	)
	delta := flag.Int64(
		"delta",
		1,
		"delta for counter updates",
	)
	interval := flag.Duration(
		"interval",
		0,
		"re-emit the metric at this period until interrupted; emit once when zero",
	)
	flag.Parse()

	// Report the compiled version and exit
	if *version {
		fmt.Printf("statline/%s\n", meta.VersionSHA)
		return
	}

	// Logging configuration; default to log.Error verbosity
	level, _ := log.ParseLevel(*verbosity)
	logger := log.NewConsoleLogger(level)
	logger.Debug("main: initialized logger: level=%v", level)

	// Parse optional CLI configuration; flags alone are sufficient for defaults.
	cfg := &meta.Config{}
	if *configPath != "" {
		logger.Debug("main: reading and parsing config: path=%s", *configPath)

		parsed, err := meta.ParseConfig(*configPath)
		if err != nil {
			panic(err)
		}
		cfg = parsed
	}

	// Configure error reporting
	if cfg.Application != nil && cfg.Application.SentryDSN != "" {
		raven.SetDSN(cfg.Application.SentryDSN)
		raven.SetRelease(meta.VersionSHA)
	}

	opts := statline.Opts{}
	if cfg.Statsd != nil {
		opts.Host = cfg.Statsd.Host
		opts.Port = cfg.Statsd.Port
		opts.Prefix = cfg.Statsd.Prefix
		opts.IdleTimeout = cfg.Statsd.IdleTimeout
		opts.Disabled = cfg.Statsd.Disabled
		opts.LogEnabled = cfg.Statsd.Log
	}

	client := statline.NewClient(opts)
	defer client.Close()

	logger.Info(
		"main: emitting metric: kind=%s name=%s interval=%v",
		*kind,
		*name,
		*interval,
	)

	emit, err := emitter(client, *kind, *name, *value, *delta)
	if err != nil {
		panic(err)
	}

	emit()

	if *interval <= 0 {
		return
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			emit()
		case <-interrupt:
			logger.Info("main: interrupted; shutting down")
			return
		}
	}
}

// emitter resolves the emission callback for a single metric kind, constructing the named
// entity once so that repeated interval emissions reuse it.
func emitter(client *statline.Client, kind string, name string, value float64, delta int64) (func(), error) {
	switch kind {
	case "counter":
		counter, err := client.Counter(name)
		if err != nil {
			return nil, err
		}
		return func() { counter.Update(delta) }, nil
	case "gauge":
		gauge, err := client.Gauge(name)
		if err != nil {
			return nil, err
		}
		return func() { gauge.Update(value) }, nil
	case "histogram":
		histogram, err := client.Histogram(name)
		if err != nil {
			return nil, err
		}
		return func() { histogram.Update(value) }, nil
	case "meter":
		meter, err := client.Meter(name)
		if err != nil {
			return nil, err
		}
		return func() { meter.Mark() }, nil
	default:
		return nil, fmt.Errorf("main: unknown metric kind: kind=%s", kind)
	}
}
