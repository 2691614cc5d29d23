package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ykhoma/weather-ingest/internal/config"
	"github.com/ykhoma/weather-ingest/internal/httplog"
	"github.com/ykhoma/weather-ingest/internal/job"
	"github.com/ykhoma/weather-ingest/internal/metrics"
	"github.com/ykhoma/weather-ingest/internal/sink"
	"github.com/ykhoma/weather-ingest/internal/tracing"
	"github.com/ykhoma/weather-ingest/internal/weather"
	"github.com/ykhoma/weather-ingest/internal/weather/openweathermap"
)

// tickTimeout bounds one cycle so a hung provider or sink cannot bleed into
// the next tick.
const tickTimeout = 2 * time.Minute

// Long-running convenience runner for environments without external cron.
// Each tick is one independent fetch-and-store cycle; ticks share no state
// and a failed tick never affects the next.
func main() {
	// 1) Load config (.env is optional)
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// 2) Init logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	// 3) Gate on required parameters before scheduling anything
	if !config.Validate(cfg.Latitude, cfg.Longitude, cfg.APIKey, logger) {
		return
	}

	// 4) Tracing, when an endpoint is configured
	if cfg.ZipkinEndpoint != "" {
		cleanup, err := tracing.Init(cfg.ZipkinEndpoint, "weather-ingest-scheduler", logger)
		if err != nil {
			logger.Error("failed to initialize tracing", zap.Error(err))
		} else {
			defer cleanup(context.Background())
		}
	}

	// 5) Wire the pipeline: provider client behind a circuit breaker, sink,
	// runner. The breaker fails ticks fast once the provider has been down
	// for several in a row; it never retries within a tick.
	httpClient := &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second}
	if cfg.HTTPLogPath != "" {
		httpClient.Transport = httplog.NewRoundTripper(httplog.NewFileLogger(cfg.HTTPLogPath))
	}
	fetcher := weather.NewBreakerFetcher("openweathermap", weather.BreakerConfig{
		TimeInterval:        time.Duration(cfg.Breaker.TimeInterval) * time.Second,
		TimeTimeOut:         time.Duration(cfg.Breaker.TimeTimeOut) * time.Second,
		ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
	}, openweathermap.NewClient(cfg, httpClient, logger))

	recordSink, err := sink.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize sink", zap.Error(err))
	}

	collector := metrics.NewCollector()
	runner := job.NewRunner(fetcher, recordSink, collector, logger)

	// 6) Build cron (standard 5-field, minute resolution)
	c := cron.New()
	_, err = c.AddFunc(cfg.SchedulerSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
		defer cancel()

		_ = runner.Run(ctx)

		if cfg.PushgatewayAddr != "" {
			if err := collector.Push(cfg.PushgatewayAddr); err != nil {
				logger.Warn("failed to push metrics", zap.Error(err))
			}
		}
	})
	if err != nil {
		logger.Fatal("unable to schedule cron job", zap.Error(err))
	}

	logger.Info("starting scheduler", zap.String("cronSpec", cfg.SchedulerSpec))
	c.Start()

	// block forever
	select {}
}
