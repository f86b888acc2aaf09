package strata

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/strata-io/strata-client/internal/constants"
)

// Request represents an HTTP request that can be intercepted.
type Request struct {
	Method   string
	Path     string
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// Response represents an HTTP response that can be intercepted.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain runs interceptors in registration order. The first error
// stops the chain.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates an empty interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor appends a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor appends a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// Common Interceptors

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		}

		if resp.Error != nil {
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// rateLimiter is a token bucket refilled on demand; no background goroutine.
type rateLimiter struct {
	mu       sync.Mutex
	capacity float64
	tokens   float64
	perToken time.Duration
	last     time.Time
}

// reserve takes one token and returns how long the caller must wait for it.
func (l *rateLimiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.tokens += float64(now.Sub(l.last)) / float64(l.perToken)

	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}

	l.last = now
	l.tokens--

	if l.tokens >= 0 {
		return 0
	}

	return time.Duration(-l.tokens * float64(l.perToken))
}

func (l *rateLimiter) wait(ctx context.Context, _ *Request) error {
	delay := l.reserve()
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RateLimitInterceptor limits the client-side request rate. The bucket starts
// full, allowing an initial burst of requestsPerSecond; past that, callers
// sleep until a token accrues or their context is cancelled.
func RateLimitInterceptor(requestsPerSecond int) RequestInterceptor {
	limiter := &rateLimiter{
		capacity: float64(requestsPerSecond),
		tokens:   float64(requestsPerSecond),
		perToken: time.Second / time.Duration(requestsPerSecond),
		last:     time.Now(),
	}

	return limiter.wait
}

// AuthenticationInterceptor adds a Bearer token from the provider.
func AuthenticationInterceptor(tokenProvider func(context.Context) (string, error)) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		token, err := tokenProvider(ctx)
		if err != nil {
			return fmt.Errorf("failed to get authentication token: %w", err)
		}

		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Headers.Set("Authorization", "Bearer "+token)

		return nil
	}
}

// HeaderInterceptor adds static headers to every request.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// Metrics aggregates request metrics per endpoint.
type Metrics struct {
	TotalRequests   int64
	TotalErrors     int64
	TotalLatency    time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time
}

// MetricsCollector collects per-endpoint metrics. Safe for concurrent use.
type MetricsCollector struct {
	mu       sync.Mutex
	metrics  map[string]*Metrics
	onChange func(endpoint string, metrics *Metrics)
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metrics),
	}
}

// SetOnChange sets a callback invoked with a snapshot after every recorded
// response.
func (m *MetricsCollector) SetOnChange(fn func(endpoint string, metrics *Metrics)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// GetMetrics returns a snapshot of the metrics for an endpoint, or nil when
// the endpoint has not been seen.
func (m *MetricsCollector) GetMetrics(endpoint string) *Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics, ok := m.metrics[endpoint]
	if !ok {
		return nil
	}

	snapshot := *metrics

	return &snapshot
}

// record folds one response into the endpoint's metrics and returns a
// snapshot plus the change callback to invoke outside the lock.
func (m *MetricsCollector) record(endpoint string, startTime time.Time, failed bool) (Metrics, func(string, *Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics, ok := m.metrics[endpoint]
	if !ok {
		metrics = &Metrics{}
		m.metrics[endpoint] = metrics
	}

	metrics.TotalRequests++
	metrics.LastRequestTime = time.Now()

	if !startTime.IsZero() {
		metrics.TotalLatency += time.Since(startTime)
		metrics.AverageLatency = metrics.TotalLatency / time.Duration(metrics.TotalRequests)
	}

	if failed {
		metrics.TotalErrors++
	}

	return *metrics, m.onChange
}

// MetricsRequestInterceptor stamps the request start time used for latency.
func MetricsRequestInterceptor(collector *MetricsCollector) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata["start_time"] = time.Now()

		return nil
	}
}

// MetricsResponseInterceptor records response metrics.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		endpoint := fmt.Sprintf("%s %s", req.Method, req.Path)

		var startTime time.Time
		if req.Metadata != nil {
			startTime, _ = req.Metadata["start_time"].(time.Time)
		}

		failed := resp.Error != nil || resp.StatusCode >= 400
		snapshot, onChange := collector.record(endpoint, startTime, failed)

		if onChange != nil {
			onChange(endpoint, &snapshot)
		}

		return nil
	}
}

// CircuitBreakerConfig tunes the circuit breaker interceptors.
type CircuitBreakerConfig struct {
	Threshold        int           // Failures before the circuit opens
	Timeout          time.Duration // Cooldown before a half-open probe
	SuccessThreshold int           // Successes needed to close again
}

// circuitState is the circuit breaker state machine position.
type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// CircuitBreaker rejects requests after repeated upstream failures, admitting
// probes again once the cooldown passes. Safe for concurrent use.
type CircuitBreaker struct {
	config *CircuitBreakerConfig

	mu          sync.Mutex
	failures    int
	successes   int
	state       circuitState
	lastFailure time.Time
}

// NewCircuitBreaker creates a circuit breaker. A nil config uses defaults.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = &CircuitBreakerConfig{
			Threshold:        constants.CircuitBreakerThreshold,
			Timeout:          constants.CircuitBreakerTimeout,
			SuccessThreshold: constants.CircuitBreakerSuccessThreshold,
		}
	}

	return &CircuitBreaker{
		config: config,
		state:  circuitClosed,
	}
}

// allow reports whether a request may proceed, moving an open circuit to
// half-open once the cooldown has passed.
func (b *CircuitBreaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == circuitOpen {
		if time.Since(b.lastFailure) <= b.config.Timeout {
			return ErrCircuitBreakerOpen
		}

		b.state = circuitHalfOpen
		b.successes = 0
	}

	return nil
}

// record folds a response outcome into the circuit state.
func (b *CircuitBreaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if failed {
		b.failures++
		b.lastFailure = time.Now()

		if b.state == circuitHalfOpen || b.failures >= b.config.Threshold {
			b.state = circuitOpen
		}

		return
	}

	switch b.state {
	case circuitHalfOpen:
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.state = circuitClosed
			b.failures = 0
		}
	case circuitClosed:
		b.failures = 0
	case circuitOpen:
	}
}

// CircuitBreakerRequestInterceptor rejects requests while the circuit is open.
func CircuitBreakerRequestInterceptor(breaker *CircuitBreaker) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		return breaker.allow()
	}
}

// CircuitBreakerResponseInterceptor feeds response outcomes into the circuit.
func CircuitBreakerResponseInterceptor(breaker *CircuitBreaker) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		breaker.record(resp.Error != nil || resp.StatusCode >= 500)

		return nil
	}
}
