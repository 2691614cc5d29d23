package weather

import (
	"context"
	"net/http"

	"github.com/ykhoma/weather-ingest/internal/weather/types"
)

// Fetcher retrieves one current-weather observation for the configured
// coordinate. Implementations issue exactly one outbound call per invocation;
// any transport, status or decode problem is a single "fetch failed" outcome
// and is never retried within a run.
type Fetcher interface {
	FetchCurrent(ctx context.Context) (types.RawObservation, error)
}

// HTTPClient is the slice of *http.Client the provider clients need; tests
// substitute their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
