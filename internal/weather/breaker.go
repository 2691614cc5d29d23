package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ykhoma/weather-ingest/internal/weather/types"
)

type BreakerConfig struct {
	TimeInterval        time.Duration
	TimeTimeOut         time.Duration
	ConsecutiveFailures uint32
}

// BreakerFetcher fails fast once the wrapped fetcher has failed
// ConsecutiveFailures times in a row. It belongs in front of a long-running
// caller such as the scheduler, where ticking against a dead provider only
// burns the request quota; a single-shot run has nothing to trip.
type BreakerFetcher struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	wrapped Fetcher
}

func NewBreakerFetcher(name string, cfg BreakerConfig, wrapped Fetcher) *BreakerFetcher {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.TimeInterval,
		Timeout:     cfg.TimeTimeOut,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
	}
	return &BreakerFetcher{
		name:    name,
		cb:      gobreaker.NewCircuitBreaker(settings),
		wrapped: wrapped,
	}
}

func (b *BreakerFetcher) FetchCurrent(ctx context.Context) (types.RawObservation, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.wrapped.FetchCurrent(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%s unavailable: %w", b.name, err)
	}
	raw, ok := result.(types.RawObservation)
	if !ok {
		return nil, fmt.Errorf("%s returned unexpected result", b.name)
	}
	return raw, nil
}
