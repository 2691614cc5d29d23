package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ykhoma/weather-ingest/internal/config"
	"github.com/ykhoma/weather-ingest/internal/httplog"
	"github.com/ykhoma/weather-ingest/internal/job"
	"github.com/ykhoma/weather-ingest/internal/metrics"
	"github.com/ykhoma/weather-ingest/internal/sink"
	"github.com/ykhoma/weather-ingest/internal/tracing"
	"github.com/ykhoma/weather-ingest/internal/weather/openweathermap"
)

// One fetch-and-store cycle per invocation. Failures are logged, never
// signaled through the exit status; external scheduling treats every
// invocation as independent.
func main() {
	// 1) Load configuration from environment (.env is optional)
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// 2) Initialize structured logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	collector := metrics.NewCollector()
	defer pushMetrics(collector, cfg.PushgatewayAddr, logger)

	// 3) Gate on required parameters before any I/O
	if !config.Validate(cfg.Latitude, cfg.Longitude, cfg.APIKey, logger) {
		collector.IncRun(metrics.ResultConfigError)
		return
	}

	ctx := context.Background()

	// 4) Point tracing at Zipkin when an endpoint is configured
	if cfg.ZipkinEndpoint != "" {
		cleanup, err := tracing.Init(cfg.ZipkinEndpoint, "weather-ingest", logger)
		if err != nil {
			logger.Error("failed to initialize tracing", zap.Error(err))
		} else {
			defer cleanup(ctx)
		}
	}

	// 5) Build the provider HTTP client with the fixed request timeout
	httpClient := &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second}
	if cfg.HTTPLogPath != "" {
		httpClient.Transport = httplog.NewRoundTripper(httplog.NewFileLogger(cfg.HTTPLogPath))
	}
	fetcher := openweathermap.NewClient(cfg, httpClient, logger)

	// 6) Select the sink variant
	recordSink, err := sink.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize sink", zap.Error(err))
		collector.IncRun(metrics.ResultConfigError)
		return
	}

	// 7) Run the single cycle; Run has already logged whatever went wrong
	runner := job.NewRunner(fetcher, recordSink, collector, logger)
	_ = runner.Run(ctx)
}

func pushMetrics(collector *metrics.Collector, addr string, logger *zap.Logger) {
	if addr == "" {
		return
	}
	if err := collector.Push(addr); err != nil {
		logger.Warn("failed to push metrics", zap.Error(err))
	}
}
