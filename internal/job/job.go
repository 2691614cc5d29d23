package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ykhoma/weather-ingest/internal/metrics"
	"github.com/ykhoma/weather-ingest/internal/sink"
	"github.com/ykhoma/weather-ingest/internal/weather"
	"github.com/ykhoma/weather-ingest/internal/weather/types"
)

// Runner drives one ingestion cycle: fetch the raw observation, normalize it
// into a flat record, hand the record to the sink. Cycles are independent of
// each other; the Runner keeps nothing between runs beyond its collaborators.
type Runner struct {
	fetcher weather.Fetcher
	sink    sink.Sink
	metrics *metrics.Collector
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewRunner wires up the pipeline dependencies.
func NewRunner(
	fetcher weather.Fetcher,
	sink sink.Sink,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		fetcher: fetcher,
		sink:    sink,
		metrics: collector,
		logger:  logger,
		tracer:  otel.Tracer("weather-ingest/job"),
	}
}

// Run performs a single cycle. The returned error names the stage that ended
// the run early; callers log it and move on. A fetch failure means the sink
// is never invoked; nothing in here retries.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.New().String()
	logger := r.logger.With(zap.String("run_id", runID))
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "ingest-cycle",
		trace.WithAttributes(attribute.String("run_id", runID)))
	defer span.End()

	raw, err := r.fetch(ctx, logger)
	if err != nil {
		span.RecordError(err)
		r.metrics.IncRun(metrics.ResultFetchError)
		return err
	}

	rec := r.normalize(ctx, logger, raw)

	if err := r.persist(ctx, logger, rec); err != nil {
		span.RecordError(err)
		r.metrics.IncRun(metrics.ResultSinkError)
		return err
	}

	r.metrics.IncRun(metrics.ResultSuccess)
	logger.Info("ingestion cycle completed", zap.Duration("took", time.Since(start)))
	return nil
}

func (r *Runner) fetch(ctx context.Context, logger *zap.Logger) (types.RawObservation, error) {
	ctx, span := r.tracer.Start(ctx, "fetch")
	defer span.End()

	start := time.Now()
	raw, err := r.fetcher.FetchCurrent(ctx)
	r.metrics.ObserveStage(metrics.StageFetch, time.Since(start))
	if err != nil {
		span.RecordError(err)
		logger.Error("weather fetch failed", zap.Error(err))
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return raw, nil
}

func (r *Runner) normalize(
	ctx context.Context,
	logger *zap.Logger,
	raw types.RawObservation,
) types.WeatherRecord {
	_, span := r.tracer.Start(ctx, "normalize")
	defer span.End()

	start := time.Now()
	rec := weather.Normalize(raw)
	r.metrics.ObserveStage(metrics.StageNormalize, time.Since(start))

	degraded := rec.DegradedFields()
	for _, field := range degraded {
		r.metrics.IncFallback(field)
		logger.Warn("field degraded to placeholder", zap.String("field", field))
	}
	span.SetAttributes(attribute.Int("degraded_fields", len(degraded)))

	return rec
}

func (r *Runner) persist(
	ctx context.Context,
	logger *zap.Logger,
	rec types.WeatherRecord,
) error {
	ctx, span := r.tracer.Start(ctx, "persist")
	defer span.End()

	start := time.Now()
	err := r.sink.Store(ctx, rec)
	r.metrics.ObserveStage(metrics.StagePersist, time.Since(start))
	if err != nil {
		span.RecordError(err)
		logger.Error("failed to persist weather record", zap.Error(err))
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}
