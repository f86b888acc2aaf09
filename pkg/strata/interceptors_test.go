package strata_test

import (
	"context"
	"testing"
	"time"

	"github.com/strata-io/strata-client/pkg/strata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	chain := strata.NewInterceptorChain()

	var order []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *strata.Request) error {
		order = append(order, "first")

		return nil
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *strata.Request) error {
		order = append(order, "second")

		return nil
	})

	req := &strata.Request{Method: "GET", Path: "/v1/clusters"}
	err := chain.ExecuteRequestInterceptors(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	chain := strata.NewInterceptorChain()

	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *strata.Request) error {
		return strata.ErrSomeError
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *strata.Request) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &strata.Request{})
	require.ErrorIs(t, err, strata.ErrSomeError)
	assert.False(t, called)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	chain := strata.NewInterceptorChain()

	chain.AddResponseInterceptor(func(ctx context.Context, req *strata.Request, resp *strata.Response) error {
		resp.StatusCode = 299

		return nil
	})

	resp := &strata.Response{StatusCode: 200}
	err := chain.ExecuteResponseInterceptors(context.Background(), &strata.Request{}, resp)
	require.NoError(t, err)
	assert.Equal(t, 299, resp.StatusCode)
}

func TestHeaderInterceptor(t *testing.T) {
	interceptor := strata.HeaderInterceptor(map[string]string{
		"X-Request-ID": "req-1",
	})

	req := &strata.Request{Method: "GET", Path: "/v1/clusters"}
	err := interceptor(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "req-1", req.Headers.Get("X-Request-ID"))
}

func TestAuthenticationInterceptor(t *testing.T) {
	t.Run("adds bearer token", func(t *testing.T) {
		interceptor := strata.AuthenticationInterceptor(func(ctx context.Context) (string, error) {
			return "token-123", nil
		})

		req := &strata.Request{}
		err := interceptor(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "Bearer token-123", req.Headers.Get("Authorization"))
	})

	t.Run("propagates provider error", func(t *testing.T) {
		interceptor := strata.AuthenticationInterceptor(func(ctx context.Context) (string, error) {
			return "", strata.ErrSomeError
		})

		err := interceptor(context.Background(), &strata.Request{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get authentication token")
	})
}

func TestMetricsCollector(t *testing.T) {
	collector := strata.NewMetricsCollector()
	reqInterceptor := strata.MetricsRequestInterceptor(collector)
	respInterceptor := strata.MetricsResponseInterceptor(collector)

	ctx := context.Background()
	req := &strata.Request{Method: "GET", Path: "/v1/clusters"}

	require.NoError(t, reqInterceptor(ctx, req))
	require.NoError(t, respInterceptor(ctx, req, &strata.Response{StatusCode: 200}))

	require.NoError(t, reqInterceptor(ctx, req))
	require.NoError(t, respInterceptor(ctx, req, &strata.Response{StatusCode: 500}))

	metrics := collector.GetMetrics("GET /v1/clusters")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
	assert.False(t, metrics.LastRequestTime.IsZero())

	assert.Nil(t, collector.GetMetrics("GET /v1/jobs"))
}

func TestCircuitBreaker(t *testing.T) {
	breaker := strata.NewCircuitBreaker(&strata.CircuitBreakerConfig{
		Threshold:        2,
		Timeout:          50 * time.Millisecond,
		SuccessThreshold: 1,
	})

	reqInterceptor := strata.CircuitBreakerRequestInterceptor(breaker)
	respInterceptor := strata.CircuitBreakerResponseInterceptor(breaker)

	ctx := context.Background()
	req := &strata.Request{Method: "GET", Path: "/v1/clusters"}

	// Closed: requests pass
	require.NoError(t, reqInterceptor(ctx, req))

	// Two failures open the circuit
	require.NoError(t, respInterceptor(ctx, req, &strata.Response{StatusCode: 500}))
	require.NoError(t, respInterceptor(ctx, req, &strata.Response{StatusCode: 503}))

	err := reqInterceptor(ctx, req)
	require.ErrorIs(t, err, strata.ErrCircuitBreakerOpen)

	// After the timeout the circuit goes half-open and a success closes it
	time.Sleep(60 * time.Millisecond)
	require.NoError(t, reqInterceptor(ctx, req))
	require.NoError(t, respInterceptor(ctx, req, &strata.Response{StatusCode: 200}))
	require.NoError(t, reqInterceptor(ctx, req))
}

func TestRateLimitInterceptor(t *testing.T) {
	interceptor := strata.RateLimitInterceptor(1000)

	start := time.Now()

	for _n := 0; _n < 3; _n++ {
		err := interceptor(context.Background(), &strata.Request{})
		require.NoError(t, err)
	}

	// At 1000 req/s three calls should be nearly instant
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimitInterceptor_BlocksPastBurst(t *testing.T) {
	interceptor := strata.RateLimitInterceptor(5)

	ctx := context.Background()
	req := &strata.Request{Method: "GET", Path: "/v1/clusters"}

	for _n := 0; _n < 5; _n++ {
		require.NoError(t, interceptor(ctx, req))
	}

	// The burst is spent; the sixth call waits for a token to accrue.
	start := time.Now()
	require.NoError(t, interceptor(ctx, req))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimitInterceptor_ContextCancelled(t *testing.T) {
	interceptor := strata.RateLimitInterceptor(1)

	req := &strata.Request{Method: "GET", Path: "/v1/clusters"}
	require.NoError(t, interceptor(context.Background(), req))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := interceptor(ctx, req)
	require.ErrorIs(t, err, context.Canceled)
}
