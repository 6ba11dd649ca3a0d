package knowledge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc) (*Fetcher, *sleepRecorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := NewFetcher(FetcherOptions{
		BaseURL:        srv.URL,
		UserAgent:      "linktrace-test",
		RequestTimeout: time.Second,
		Retries:        2,
		RetryBaseDelay: 100 * time.Millisecond,
	})
	rec := &sleepRecorder{}
	f.sleep = rec.sleep
	return f, rec
}

func TestFetcher_SucceedsFirstAttempt(t *testing.T) {
	var gotUA, gotAccept, gotQuery string
	f, rec := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotQuery = r.URL.Query().Get("titles")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, f.GetJSON(context.Background(), url.Values{"titles": {"Tom Hanks"}}, &out))
	assert.True(t, out.OK)
	assert.Equal(t, "linktrace-test", gotUA)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "Tom Hanks", gotQuery)
	assert.Empty(t, rec.delays)
}

func TestFetcher_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	f, rec := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	var out map[string]any
	require.NoError(t, f.GetJSON(context.Background(), url.Values{}, &out))
	assert.EqualValues(t, 3, calls.Load())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, rec.delays)
}

func TestFetcher_ExhaustionKeepsLastCause(t *testing.T) {
	var calls atomic.Int32
	f, rec := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusBadGateway)
		case 2:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{broken`))
		default:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html></html>`))
		}
	})

	var out map[string]any
	err := f.GetJSON(context.Background(), url.Values{}, &out)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 3, fetchErr.Attempts)
	assert.ErrorIs(t, err, ErrUnexpectedContentType)
	assert.Contains(t, err.Error(), "text/html")
	assert.NotContains(t, err.Error(), "HTTP 502")
	assert.Len(t, rec.delays, 2)
}

func TestFetcher_StatusCause(t *testing.T) {
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	err := f.GetJSON(context.Background(), url.Values{}, &map[string]any{})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.StatusCode)
}

func TestFetcher_TransportError(t *testing.T) {
	f := NewFetcher(FetcherOptions{BaseURL: "http://127.0.0.1:1", Retries: 1, RequestTimeout: time.Second})
	rec := &sleepRecorder{}
	f.sleep = rec.sleep

	err := f.GetJSON(context.Background(), url.Values{}, &map[string]any{})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 2, fetchErr.Attempts)
	assert.Len(t, rec.delays, 1)
}

func TestFetcher_CancelledDuringBackoff(t *testing.T) {
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	f.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	f.baseDelay = time.Hour
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := f.GetJSON(ctx, url.Values{}, &map[string]any{})
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetcher_RetryDropsPartialDecode(t *testing.T) {
	var calls atomic.Int32
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			// Decodes "stale" before failing on "bad".
			_, _ = w.Write([]byte(`{"stale":1,"bad":"x"}`))
			return
		}
		_, _ = w.Write([]byte(`{"fresh":2}`))
	})

	var out map[string]int
	require.NoError(t, f.GetJSON(context.Background(), url.Values{}, &out))
	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, map[string]int{"fresh": 2}, out)
}

func TestFetcher_OpenBreakerIsRetriedCause(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(FetcherOptions{
		BaseURL:        srv.URL,
		RequestTimeout: time.Second,
		Retries:        0,
		BreakerEnabled: true,
	})

	// Ten consecutive failures trip the breaker.
	for i := 0; i < 10; i++ {
		err := f.GetJSON(context.Background(), url.Values{}, &map[string]any{})
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
	}
	require.EqualValues(t, 10, calls.Load())

	f.retries = 2
	rec := &sleepRecorder{}
	f.sleep = rec.sleep

	err := f.GetJSON(context.Background(), url.Values{}, &map[string]any{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 3, fetchErr.Attempts)
	assert.Len(t, rec.delays, 2)
	assert.EqualValues(t, 10, calls.Load(), "open breaker must not reach the server")
}

func TestFetcher_LimiterHonoursContext(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(FetcherOptions{
		BaseURL:           srv.URL,
		RequestTimeout:    time.Second,
		RequestsPerSecond: 0.001,
	})

	// The single burst token is spent here.
	require.NoError(t, f.GetJSON(context.Background(), url.Values{}, &map[string]any{}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := f.GetJSON(ctx, url.Values{}, &map[string]any{})
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 1, calls.Load())
}
