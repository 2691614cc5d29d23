package job_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/ykhoma/weather-ingest/internal/job"
	"github.com/ykhoma/weather-ingest/internal/metrics"
	"github.com/ykhoma/weather-ingest/internal/weather/types"
)

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

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Store(ctx context.Context, rec types.WeatherRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func newRunner(fetcher *mockFetcher, s *mockSink) *job.Runner {
	return job.NewRunner(fetcher, s, metrics.NewCollector(), zap.NewNop())
}

func TestRun_PersistsNormalizedRecord(t *testing.T) {
	fetcher := new(mockFetcher)
	s := new(mockSink)

	fetcher.
		On("FetchCurrent", mock.Anything).
		Return(types.RawObservation{
			"weather":  []any{map[string]any{"main": "Clouds", "description": "few clouds"}},
			"main":     map[string]any{"temp": 15.5, "humidity": float64(60)},
			"dt":       float64(1700000000),
			"timezone": float64(3600),
		}, nil).
		Once()
	s.
		On("Store", mock.Anything, types.WeatherRecord{
			Condition:   "Clouds",
			Description: "few clouds",
			Temperature: 15.5,
			Humidity:    float64(60),
			ObservedAt:  "2023-11-14 23:13:20",
		}).
		Return(nil).
		Once()

	err := newRunner(fetcher, s).Run(context.Background())
	assert.NoError(t, err)

	fetcher.AssertExpectations(t)
	s.AssertExpectations(t)
}

func TestRun_FetchFailureSkipsSink(t *testing.T) {
	fetcher := new(mockFetcher)
	s := new(mockSink)
	fetchErr := errors.New("connection refused")

	fetcher.
		On("FetchCurrent", mock.Anything).
		Return(nil, fetchErr).
		Once()

	err := newRunner(fetcher, s).Run(context.Background())
	assert.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)

	fetcher.AssertExpectations(t)
	s.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestRun_DegradedPayloadStillReachesSink(t *testing.T) {
	fetcher := new(mockFetcher)
	s := new(mockSink)

	fetcher.
		On("FetchCurrent", mock.Anything).
		Return(types.RawObservation{"dt": float64(1700000000)}, nil).
		Once()
	s.
		On("Store", mock.Anything, types.WeatherRecord{
			Condition:   types.NoCondition,
			Description: types.NoDescription,
			Temperature: types.NoTemperature,
			Humidity:    types.NoHumidity,
			ObservedAt:  "2023-11-14 22:13:20",
		}).
		Return(nil).
		Once()

	err := newRunner(fetcher, s).Run(context.Background())
	assert.NoError(t, err)

	s.AssertExpectations(t)
}

func TestRun_SinkFailureIsTerminal(t *testing.T) {
	fetcher := new(mockFetcher)
	s := new(mockSink)
	sinkErr := errors.New("relation does not exist")

	fetcher.
		On("FetchCurrent", mock.Anything).
		Return(types.RawObservation{"dt": float64(1700000000)}, nil).
		Once()
	s.
		On("Store", mock.Anything, mock.Anything).
		Return(sinkErr).
		Once()

	err := newRunner(fetcher, s).Run(context.Background())
	assert.Error(t, err)
	assert.ErrorIs(t, err, sinkErr)

	fetcher.AssertExpectations(t)
	s.AssertNumberOfCalls(t, "Store", 1)
}
