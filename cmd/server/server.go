package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kujenga/peekaboo/pkg/configs"
	"github.com/kujenga/peekaboo/pkg/counter"
	"github.com/kujenga/peekaboo/pkg/file"
	"github.com/kujenga/peekaboo/pkg/page"
	"github.com/kujenga/peekaboo/pkg/transport/http"
	"github.com/oklog/run"
	"github.com/peterbourgon/ff"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/version"
	"github.com/sirupsen/logrus"
)

func main() {
	config, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := createLogger(config)

	// metrics
	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		version.NewCollector("peekaboo"),
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	settingsService, err := file.NewSettingsService(config.SettingsFile, logger)
	if err != nil {
		logger.Fatalf("error creating settings service: %v", err)
	}

	pages, err := page.NewRenderer()
	if err != nil {
		logger.Fatalf("error parsing page templates: %v", err)
	}

	state := counter.NewState(
		config.Redis.URL,
		logger,
		metrics,
		counter.WithProbeTimeout(config.Redis.ProbeTimeout))
	defer state.Close()

	var g run.Group
	{
		peekServer := http.New(
			state,
			settingsService,
			pages,
			logger,
			metrics,
			http.WithListen(config.HttpAddr),
			http.WithRequestTimeout(config.RequestTimeout))

		g.Add(func() error {
			return peekServer.Start()
		}, func(err error) {
			peekServer.Stop(err)
		})
	}
	{
		debugServer := http.NewDebugServer(
			metrics,
			state.Backend(),
			logger,
			http.WithListen(config.DebugAddr))

		g.Add(func() error {
			return debugServer.Start()
		}, func(err error) {
			debugServer.Stop(err)
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancel:
				return nil
			}
		}, func(error) {
			close(cancel)
		})
	}

	logger.WithField("reason", g.Run()).Info("exit")
}

func parseConfig(args []string) (configs.Config, error) {
	fs := flag.NewFlagSet("peekaboo", flag.ContinueOnError)
	var (
		httpAddress    = fs.String("http-addr", "127.0.0.1:2829", "http address")
		debugAddress   = fs.String("debug-addr", ":2830", "debug address for metrics and healthcheck")
		requestTimeout = fs.Duration("request-timeout", 10*time.Second, "request handling timeout")
		redisURL       = fs.String("redis-url", "redis://127.0.0.1:6379/", "redis url, the counter falls back to memory when unreachable")
		probeTimeout   = fs.Duration("probe-timeout", 2*time.Second, "redis connectivity check timeout")
		settingsFile   = fs.String("settings-file", "./env/settings.yaml", "page settings file, empty for defaults")
		logLevel       = fs.String("log-level", "info", "log level (panic, fatal, error, warn, info, debug, trace)")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("PEEKABOO")); err != nil {
		return configs.Config{}, err
	}

	var config configs.Config
	{
		config.HttpAddr = *httpAddress
		config.DebugAddr = *debugAddress
		config.RequestTimeout = *requestTimeout
		config.Redis.URL = *redisURL
		config.Redis.ProbeTimeout = *probeTimeout
		config.SettingsFile = *settingsFile
		config.LogLevel = *logLevel
	}

	return config, nil
}

func createLogger(config configs.Config) *logrus.Logger {
	logger := logrus.StandardLogger()
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		level = logrus.ErrorLevel
	}

	logger.Infof("setting log level to %v", level)
	logger.SetLevel(level)

	return logger
}
