package clients

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotebook/internal/platform/config"
)

func defaultConfig() *Config {
	return &Config{
		ServiceName: "quote-service",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     10 * time.Millisecond,
			Multiplier:      2.0,
			JitterFactor:    0.25,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Minute,
			HalfOpenLimit: 1,
		},
	}
}

// statusSequence serves the given statuses in order, repeating the last one.
func statusSequence(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1)) - 1
		w.WriteHeader(statuses[min(n, len(statuses)-1)])
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func newTestClient(t *testing.T, baseURL string, mutate ...func(*Config)) *Client {
	t.Helper()

	cfg := defaultConfig()
	cfg.BaseURL = baseURL
	for _, m := range mutate {
		m(cfg)
	}

	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	require.EqualError(t, err, "config is required")

	cfg := defaultConfig()
	cfg.ServiceName = ""
	_, err = New(cfg)
	require.EqualError(t, err, "service name is required")
}

func TestNew_Defaults(t *testing.T) {
	cfg := defaultConfig()
	cfg.Timeout = 0
	cfg.Retry.MaxAttempts = 0
	cfg.BaseURL = "https://api.quotable.io/"

	c, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, defaultTimeout, c.http.Timeout)
	assert.Equal(t, 1, c.cfg.Retry.MaxAttempts)
	assert.Equal(t, "https://api.quotable.io", c.baseURL)
}

func TestClient_Get_Retries(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		wantStatus int
		wantErr    error
		wantCalls  int32
	}{
		{"first try succeeds", []int{200}, 200, nil, 1},
		{"recovers after server errors", []int{500, 502, 200}, 200, nil, 3},
		{"client error is not retried", []int{404}, 404, nil, 1},
		{"gives up after max attempts", []int{503}, 0, ErrMaxRetriesExceeded, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := statusSequence(t, tt.statuses...)
			c := newTestClient(t, srv.URL)

			resp, err := c.Get(context.Background(), "/random")

			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestClient_PropagatesHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, func(cfg *Config) {
		cfg.Header = http.Header{"X-Api-Key": []string{"k-123"}}
	})

	ctx := middleware.ContextWithRequestID(context.Background(), "req-1")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-1")

	resp, err := c.Get(ctx, "random")
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "req-1", got.Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-1", got.Get(middleware.HeaderCorrelationID))
	assert.Equal(t, "k-123", got.Get("X-Api-Key"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClient_CircuitBreakerShortCircuits(t *testing.T) {
	srv, calls := statusSequence(t, http.StatusServiceUnavailable)
	c := newTestClient(t, srv.URL, func(cfg *Config) {
		cfg.Retry.MaxAttempts = 1
		cfg.Circuit.MaxFailures = 2
	})

	for range 2 {
		_, err := c.Get(context.Background(), "/random")
		require.ErrorIs(t, err, ErrMaxRetriesExceeded)
	}
	assert.Equal(t, StateOpen, c.CircuitState())

	_, err := c.Get(context.Background(), "/random")
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "/random")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCalculateBackoff(t *testing.T) {
	c := newTestClient(t, "http://unused", func(cfg *Config) {
		cfg.Retry.InitialInterval = 100 * time.Millisecond
		cfg.Retry.MaxInterval = time.Second
	})

	assert.InDelta(t, float64(100*time.Millisecond), float64(c.calculateBackoff(0)), float64(25*time.Millisecond))
	assert.InDelta(t, float64(200*time.Millisecond), float64(c.calculateBackoff(1)), float64(50*time.Millisecond))
	assert.InDelta(t, float64(400*time.Millisecond), float64(c.calculateBackoff(2)), float64(100*time.Millisecond))
	assert.LessOrEqual(t, c.calculateBackoff(10), time.Second+time.Second/4)
}

type testNetError struct{ timeout bool }

func (e testNetError) Error() string   { return "test net error" }
func (e testNetError) Timeout() bool   { return e.timeout }
func (e testNetError) Temporary() bool { return false }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"net timeout", testNetError{timeout: true}, true},
		{"net non-timeout", testNetError{timeout: false}, false},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}
