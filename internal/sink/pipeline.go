package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ykhoma/weather-ingest/internal/config"
	"github.com/ykhoma/weather-ingest/internal/weather/types"
)

// PipelineSink is the managed-load variant: the record is appended to the
// destination table over the COPY protocol. Credentials arrive out-of-band —
// DESTINATION_POSTGRES_DSN when set, otherwise pgx reads the libpq
// environment (PGHOST, PGUSER, ...). The pool lives only for the duration of
// one Store call.
type PipelineSink struct {
	connString string
	logger     *zap.Logger
}

func NewPipelineSink(cfg *config.Config, logger *zap.Logger) *PipelineSink {
	return &PipelineSink{connString: cfg.DestinationDSN, logger: logger}
}

var pipelineColumns = []string{"weather", "description", "temperature", "humidity", "observed_at"}

func (s *PipelineSink) Store(ctx context.Context, rec types.WeatherRecord) error {
	pool, err := pgxpool.New(ctx, s.connString)
	if err != nil {
		s.logger.Error("failed to configure destination pool", zap.Error(err))
		return fmt.Errorf("pipeline: connect: %w", err)
	}
	defer pool.Close()

	copied, err := pool.CopyFrom(ctx,
		pgx.Identifier{"weather_metrics"},
		pipelineColumns,
		pgx.CopyFromRows(loadRows(rec)),
	)
	if err != nil {
		s.logger.Error("pipeline load failed", zap.Error(err))
		return fmt.Errorf("pipeline: load: %w", err)
	}

	s.logger.Info("pipeline load completed", zap.Int64("rows", copied))
	return nil
}

// loadRows shapes the record as the one-row batch CopyFrom expects; value
// order matches pipelineColumns.
func loadRows(rec types.WeatherRecord) [][]any {
	return [][]any{
		{rec.Condition, rec.Description, rec.Temperature, rec.Humidity, rec.ObservedAt},
	}
}
