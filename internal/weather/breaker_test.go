package weather_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ykhoma/weather-ingest/internal/weather"
	"github.com/ykhoma/weather-ingest/internal/weather/types"
)

var breakerCfg = weather.BreakerConfig{
	TimeInterval:        30 * time.Second,
	TimeTimeOut:         15 * time.Second,
	ConsecutiveFailures: 3,
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchCurrent(ctx context.Context) (types.RawObservation, error) {
	args := m.Called(ctx)
	raw, ok := args.Get(0).(types.RawObservation)
	if !ok {
		return nil, args.Error(1)
	}
	return raw, args.Error(1)
}

const breakerName = "openweathermap"

func TestBreakerFetcher_Success(t *testing.T) {
	wrapped := new(mockFetcher)
	expected := types.RawObservation{"dt": float64(1700000000)}

	wrapped.
		On("FetchCurrent", mock.Anything).
		Return(expected, nil).
		Once()

	bf := weather.NewBreakerFetcher(breakerName, breakerCfg, wrapped)

	raw, err := bf.FetchCurrent(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, expected, raw)

	wrapped.AssertExpectations(t)
	wrapped.AssertNumberOfCalls(t, "FetchCurrent", 1)
}

func TestBreakerFetcher_UnderlyingErrorBeforeTrip(t *testing.T) {
	wrapped := new(mockFetcher)
	underlyingErr := errors.New("provider down")

	wrapped.
		On("FetchCurrent", mock.Anything).
		Return(nil, underlyingErr).
		Once()

	bf := weather.NewBreakerFetcher(breakerName, breakerCfg, wrapped)

	raw, err := bf.FetchCurrent(context.Background())
	assert.Error(t, err)
	assert.Nil(t, raw)
	assert.ErrorIs(t, err, underlyingErr)
	assert.Contains(t, err.Error(), breakerName+" unavailable: "+underlyingErr.Error())

	wrapped.AssertExpectations(t)
}

func TestBreakerFetcher_TripsAfterConsecutiveFailures(t *testing.T) {
	wrapped := new(mockFetcher)
	underlyingErr := errors.New("timeout")

	for i := 0; i < int(breakerCfg.ConsecutiveFailures); i++ {
		wrapped.
			On("FetchCurrent", mock.Anything).
			Return(nil, underlyingErr).
			Once()
	}

	bf := weather.NewBreakerFetcher(breakerName, breakerCfg, wrapped)

	for i := 1; i <= int(breakerCfg.ConsecutiveFailures); i++ {
		_, err := bf.FetchCurrent(context.Background())
		assert.Error(t, err, "call #%d should error before trip", i)
	}

	_, err := bf.FetchCurrent(context.Background())
	assert.Error(t, err)
	assert.True(t,
		strings.Contains(err.Error(), "circuit breaker is open"),
		"call after trip should return open-circuit error, got %v", err,
	)

	wrapped.AssertExpectations(t)
	wrapped.AssertNumberOfCalls(t, "FetchCurrent", int(breakerCfg.ConsecutiveFailures))
}
