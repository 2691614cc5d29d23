package httplog_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ykhoma/weather-ingest/internal/httplog"
)

type stubTransport struct {
	resp *http.Response
	err  error
}

func (s *stubTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return s.resp, s.err
}

func TestRoundTrip_LogsAndRebuffersBody(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	const body = `{"weather":[{"main":"Clouds"}]}`

	rt := httplog.NewRoundTripper(zap.New(core))
	rt.Proxy = &stubTransport{
		resp: &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
		},
	}

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/weather", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)

	// The downstream decoder must still see the whole body.
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "HTTP request completed", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "https://api.example.com/weather", fields["url"])
	assert.Equal(t, int64(http.StatusOK), fields["status_code"])
}

func TestRoundTrip_TransportError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	transportErr := errors.New("dial tcp: connection refused")

	rt := httplog.NewRoundTripper(zap.New(core))
	rt.Proxy = &stubTransport{err: transportErr}

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/weather", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, transportErr)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "HTTP request failed", logs.All()[0].Message)
}
