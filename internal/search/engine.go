package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/linktrace/backend/internal/domain"
	"github.com/vanshika/linktrace/backend/internal/logging"
	"github.com/vanshika/linktrace/backend/internal/metrics"
)

// Defaults applied to zero-valued Options fields.
const (
	DefaultMaxDepth = 7
	DefaultTimeout  = 10 * time.Second
	DefaultPacing   = 30 * time.Millisecond
)

// Graph is the neighbor source the engine explores.
type Graph interface {
	Info(ctx context.Context, title string) domain.PageInfo
	Links(ctx context.Context, title string) []string
	Backlinks(ctx context.Context, title string) []string
}

// Reason tells why a search ended.
type Reason string

const (
	ReasonTrivial   Reason = "trivial"
	ReasonFound     Reason = "found"
	ReasonExhausted Reason = "exhausted"
	ReasonTimedOut  Reason = "timed_out"
)

// Options bounds a single search.
type Options struct {
	// MaxDepth is the per-side hop bound; the origin is at depth 1.
	MaxDepth int
	// Timeout is the wall-clock budget, checked before every wave.
	Timeout time.Duration
	// Pacing is the pause after each expanded node. Negative disables it.
	Pacing time.Duration
	// Strict expands the end side through backlinks so the returned path
	// follows forward links from start to end.
	Strict bool
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Pacing == 0 {
		o.Pacing = DefaultPacing
	}
	if o.Pacing < 0 {
		o.Pacing = 0
	}
	return o
}

// Result is the outcome of a search. Found is false for both exhausted
// frontiers and an exceeded budget.
type Result struct {
	Found   bool
	Path    []string
	Details []domain.PathDetail
	Hops    int
	Reason  Reason
}

// Engine runs meet-in-the-middle breadth-first searches over a Graph.
type Engine struct {
	graph  Graph
	logger *slog.Logger
	nowFn  func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
}

// NewEngine constructs an Engine.
func NewEngine(graph Graph, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		graph:  graph,
		logger: logger,
		nowFn:  time.Now,
		sleep:  pause,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (e *Engine) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		e.nowFn = nowFn
	}
}

// Find searches for the shortest chain of links between start and end.
//
// Fetches within a wave are issued one at a time. The budget is only
// checked between waves, so a slow fetch can overrun it.
func (e *Engine) Find(ctx context.Context, start, end string, opts Options) Result {
	opts = opts.withDefaults()
	began := e.nowFn()
	logger := e.logger.With("search_id", uuid.NewString(), "start", start, "end", end)

	res := e.find(ctx, logger, start, end, opts, began)

	elapsed := e.nowFn().Sub(began)
	metrics.Searches.WithLabelValues(string(res.Reason)).Inc()
	metrics.SearchDuration.WithLabelValues(string(res.Reason)).Observe(elapsed.Seconds())
	logger.Info("search finished", "reason", res.Reason, "hops", res.Hops, "duration_ms", elapsed.Milliseconds())
	return res
}

func (e *Engine) find(ctx context.Context, logger *slog.Logger, start, end string, opts Options, began time.Time) Result {
	if start == end {
		return Result{
			Found:   true,
			Path:    []string{start},
			Details: []domain.PathDetail{},
			Hops:    0,
			Reason:  ReasonTrivial,
		}
	}

	fwd := newFrontier(start)
	bwd := newFrontier(end)

	for wave := 1; fwd.pending() > 0 && bwd.pending() > 0; wave++ {
		if e.nowFn().Sub(began) > opts.Timeout || ctx.Err() != nil {
			return Result{Reason: ReasonTimedOut}
		}

		side, other, neighbors := fwd, bwd, e.graph.Links
		if bwd.pending() < fwd.pending() {
			side, other = bwd, fwd
			if opts.Strict {
				neighbors = e.graph.Backlinks
			}
		}
		logger.Debug("expanding wave", "wave", wave, "origin", side.origin, "pending", side.pending())

		if meet, ok := e.expand(ctx, side, other, neighbors, opts); ok {
			path := reconstruct(meet, fwd, bwd)
			return Result{
				Found:   true,
				Path:    path,
				Details: buildDetails(ctx, e.graph, path),
				Hops:    len(path) - 1,
				Reason:  ReasonFound,
			}
		}
	}

	return Result{Reason: ReasonExhausted}
}

// expand runs one wave over every node pending on side. It stops at the
// first neighbor already visited by other and returns it. A cancelled ctx
// ends the wave early and leaves the unexpanded nodes queued.
func (e *Engine) expand(ctx context.Context, side, other *frontier, neighbors func(context.Context, string) []string, opts Options) (string, bool) {
	wave := side.queue
	side.queue = nil

	for i, cur := range wave {
		if ctx.Err() != nil {
			side.queue = append(side.queue, wave[i:]...)
			return "", false
		}
		curDepth := side.depth[cur]
		if curDepth >= opts.MaxDepth {
			continue
		}

		metrics.NodesExpanded.Inc()
		for _, next := range neighbors(ctx, cur) {
			if !side.visit(next, cur) {
				continue
			}
			if other.seen(next) {
				side.queue = append(side.queue, wave[i+1:]...)
				return next, true
			}
			side.queue = append(side.queue, next)
		}
		e.sleep(ctx, opts.Pacing)
	}
	return "", false
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
