package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/GriffinCanCode/modhost/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/resilience"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	cacheBustParam   = "ts"
	userAgent        = "modhost/1.0"
	defaultMaxBytes  = 64 << 20
	defaultTimeout   = 60 * time.Second
	defaultRetries   = 3
	defaultRetryMin  = 250 * time.Millisecond
	defaultRetryMax  = 5 * time.Second
	acceptArtifacts  = "application/wasm, text/javascript;q=0.9, */*;q=0.1"
	breakerName      = "artifact-fetch"
	breakerTripAfter = 5
)

// Fetcher loads an artifact over HTTP. The streaming strategy is tried
// first; any failure there falls back to a buffered, retried request.
type Fetcher struct {
	location  string
	streaming bool
	maxBytes  int64

	stream   *resty.Client
	buffered *resty.Client
	breaker  *resilience.Breaker
	bust     func() string

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// Option configures loaders.
type Option func(*options)

type options struct {
	streaming  bool
	maxBytes   int64
	timeout    time.Duration
	retries    int
	retryMin   time.Duration
	retryMax   time.Duration
	breaker    *resilience.Breaker
	bust       func() string
	logger     *zap.Logger
	metrics    *monitoring.Metrics
	httpClient *http.Client
}

func defaultOptions() *options {
	return &options{
		streaming: true,
		maxBytes:  defaultMaxBytes,
		timeout:   defaultTimeout,
		retries:   defaultRetries,
		retryMin:  defaultRetryMin,
		retryMax:  defaultRetryMax,
		bust: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
		logger: zap.NewNop(),
	}
}

// WithStreaming enables or disables the streaming strategy.
func WithStreaming(enabled bool) Option {
	return func(o *options) { o.streaming = enabled }
}

// WithMaxBytes caps the artifact size.
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBytes = n
		}
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRetries configures the buffered strategy's retry policy.
func WithRetries(max int, minWait, maxWait time.Duration) Option {
	return func(o *options) {
		o.retries = max
		if minWait > 0 {
			o.retryMin = minWait
		}
		if maxWait > 0 {
			o.retryMax = maxWait
		}
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *resilience.Breaker) Option {
	return func(o *options) { o.breaker = b }
}

// WithCacheBuster overrides the cache-busting value generator.
func WithCacheBuster(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.bust = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records load attempts.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithHTTPClient sets the base client for the streaming strategy.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// NewFetcher creates an HTTP fetcher for location.
func NewFetcher(location string, opts ...Option) *Fetcher {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	stream := resty.New()
	if o.httpClient != nil {
		stream = resty.NewWithClient(o.httpClient)
	}
	stream.
		SetTimeout(o.timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", acceptArtifacts)

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = o.retries
	retryClient.RetryWaitMin = o.retryMin
	retryClient.RetryWaitMax = o.retryMax
	retryClient.Logger = nil

	buffered := resty.New()
	buffered.
		SetTimeout(o.timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", acceptArtifacts).
		SetTransport(&retryablehttp.RoundTripper{Client: retryClient})

	breaker := o.breaker
	if breaker == nil {
		metrics := o.metrics
		breaker = resilience.New(breakerName, resilience.Settings{
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= breakerTripAfter
			},
			IsFailure: func(err error) bool {
				return err != nil && !errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, _ resilience.State, to resilience.State) {
				metrics.SetBreakerState(name, int(to))
			},
		})
	}

	return &Fetcher{
		location:  location,
		streaming: o.streaming,
		maxBytes:  o.maxBytes,
		stream:    stream,
		buffered:  buffered,
		breaker:   breaker,
		bust:      o.bust,
		logger:    o.logger,
		metrics:   o.metrics,
	}
}

// Location returns the configured artifact URL.
func (f *Fetcher) Location() string {
	return f.location
}

// Load fetches a fresh artifact, falling back from streaming to buffered.
// When both strategies fail the returned error joins both causes.
func (f *Fetcher) Load(ctx context.Context) (*Artifact, error) {
	art, err := resilience.Call(f.breaker, func() (*Artifact, error) {
		return f.load(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.location, err)
	}
	return art, nil
}

func (f *Fetcher) load(ctx context.Context) (*Artifact, error) {
	var primaryErr error
	if f.streaming {
		art, err := f.loadStreaming(ctx)
		f.metrics.RecordArtifactLoad(string(StrategyStreaming), err, sizeOf(art))
		if err == nil {
			return art, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		primaryErr = fmt.Errorf("streaming: %w", err)

		f.logger.Warn("streaming load failed, falling back to buffered",
			zap.String("location", f.location),
			zap.Error(err),
		)
		f.metrics.RecordFallback()
	}

	art, err := f.loadBuffered(ctx)
	f.metrics.RecordArtifactLoad(string(StrategyBuffered), err, sizeOf(art))
	if err != nil {
		return nil, errors.Join(primaryErr, fmt.Errorf("buffered: %w", err))
	}
	return art, nil
}

// loadStreaming issues a single request and reads the body straight off
// the connection, with no retry buffering. The declared content type must
// name a runnable kind. The runtimes compile only complete modules, so the
// body is read to the end before anything is instantiated.
func (f *Fetcher) loadStreaming(ctx context.Context) (*Artifact, error) {
	resp, err := f.stream.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetQueryParam(cacheBustParam, f.bust()).
		Get(f.location)
	if err != nil {
		return nil, err
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return nil, &StatusError{Code: resp.StatusCode(), Status: resp.Status()}
	}

	contentType := resp.Header().Get("Content-Type")
	kind, err := KindFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	source, err := readLimited(body, f.maxBytes)
	if err != nil {
		return nil, err
	}
	if len(source) == 0 {
		return nil, ErrEmpty
	}

	return &Artifact{
		Location:    f.location,
		Kind:        kind,
		Strategy:    StrategyStreaming,
		ContentType: contentType,
		Source:      source,
	}, nil
}

// loadBuffered issues a new cache-busted request with retries, holds the
// whole body in memory and sniffs the kind from its bytes.
func (f *Fetcher) loadBuffered(ctx context.Context) (*Artifact, error) {
	resp, err := f.buffered.R().
		SetContext(ctx).
		SetQueryParam(cacheBustParam, f.bust()).
		Get(f.location)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Code: resp.StatusCode(), Status: resp.Status()}
	}

	source := resp.Body()
	if int64(len(source)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(source))
	}

	kind, detected, err := Sniff(source)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Location:    f.location,
		Kind:        kind,
		Strategy:    StrategyBuffered,
		ContentType: detected,
		Source:      source,
	}, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

func sizeOf(a *Artifact) int {
	if a == nil {
		return 0
	}
	return a.Size()
}
