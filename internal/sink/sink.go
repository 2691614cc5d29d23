package sink

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ykhoma/weather-ingest/internal/config"
	"github.com/ykhoma/weather-ingest/internal/weather/types"
)

// Sink persists exactly one WeatherRecord per call. A failed Store is
// terminal for the run: the caller logs it and exits, nothing is queued for
// redelivery.
type Sink interface {
	Store(ctx context.Context, rec types.WeatherRecord) error
}

// New returns the Sink variant selected by SINK: "postgres" inserts the row
// directly, "pipeline" appends it through the COPY-based loader.
func New(cfg *config.Config, logger *zap.Logger) (Sink, error) {
	switch cfg.Sink {
	case "postgres":
		return NewPostgresSink(cfg, logger), nil
	case "pipeline":
		return NewPipelineSink(cfg, logger), nil
	default:
		return nil, fmt.Errorf("sink: unknown SINK %q", cfg.Sink)
	}
}
