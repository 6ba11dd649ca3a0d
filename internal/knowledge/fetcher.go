package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/vanshika/linktrace/backend/internal/logging"
	"github.com/vanshika/linktrace/backend/internal/metrics"
)

// ErrUnexpectedContentType indicates a response that is not JSON.
var ErrUnexpectedContentType = errors.New("non-JSON response")

// FetchError is returned once every attempt of a request has failed. Only
// the cause observed on the final attempt is kept.
type FetchError struct {
	Attempts   int
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// FetcherOptions tunes a Fetcher.
type FetcherOptions struct {
	BaseURL           string
	UserAgent         string
	RequestTimeout    time.Duration
	Retries           int
	RetryBaseDelay    time.Duration
	RequestsPerSecond float64
	BreakerEnabled    bool
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Fetcher issues GET requests against a JSON API, retrying transient
// failures with linear backoff.
type Fetcher struct {
	baseURL   string
	userAgent string
	retries   int
	baseDelay time.Duration
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewFetcher constructs a Fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.RequestTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}

	f := &Fetcher{
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		retries:   retries,
		baseDelay: opts.RetryBaseDelay,
		client:    client,
		logger:    logger,
		sleep:     sleepContext,
	}

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	if opts.BreakerEnabled {
		f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "knowledge",
			MaxRequests: 1,
			Interval:    30 * time.Second,
			Timeout:     15 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 10
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return f
}

// GetJSON performs the request described by params and decodes the JSON
// body into dst.
func (f *Fetcher) GetJSON(ctx context.Context, params url.Values, dst any) error {
	var (
		lastErr    error
		lastStatus int
	)

	attempts := f.retries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		resetTarget(dst)
		status, err := f.attempt(ctx, params, dst)
		if err == nil {
			metrics.UpstreamAttempts.WithLabelValues("ok").Inc()
			return nil
		}
		metrics.UpstreamAttempts.WithLabelValues("error").Inc()
		lastErr, lastStatus = err, status

		if attempt == attempts-1 {
			break
		}
		delay := f.baseDelay * time.Duration(attempt+1)
		f.logger.Debug("retrying knowledge request", "attempt", attempt+1, "delay", delay, "error", err)
		metrics.UpstreamRetries.Inc()
		if err := f.sleep(ctx, delay); err != nil {
			return &FetchError{Attempts: attempt + 1, StatusCode: lastStatus, Cause: err}
		}
	}

	return &FetchError{Attempts: attempts, StatusCode: lastStatus, Cause: lastErr}
}

func (f *Fetcher) attempt(ctx context.Context, params url.Values, dst any) (int, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}
	if f.breaker == nil {
		return f.do(ctx, params, dst)
	}

	var status int
	_, err := f.breaker.Execute(func() (interface{}, error) {
		var err error
		status, err = f.do(ctx, params, dst)
		return nil, err
	})
	return status, err
}

func (f *Fetcher) do(ctx context.Context, params url.Values, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, &StatusError{Code: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("%w (Content-Type: %s)", ErrUnexpectedContentType, contentType)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, fmt.Errorf("JSON decode error: %w", err)
	}
	return resp.StatusCode, nil
}

// resetTarget zeroes the value dst points to, dropping anything a failed
// attempt decoded.
func resetTarget(dst any) {
	v := reflect.ValueOf(dst)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v.Elem().SetZero()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
