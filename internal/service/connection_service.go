package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vanshika/linktrace/backend/internal/domain"
	"github.com/vanshika/linktrace/backend/internal/logging"
	"github.com/vanshika/linktrace/backend/internal/search"
)

// PageSource is the page lookup contract required by the connection service.
type PageSource interface {
	Info(ctx context.Context, title string) domain.PageInfo
	Search(ctx context.Context, query string) []domain.Suggestion
}

// PathFinder runs a bounded path search between two titles.
type PathFinder interface {
	Find(ctx context.Context, start, end string, opts search.Options) search.Result
}

// Options configures a ConnectionService. Defaults holds the search options
// used when a request leaves them unset.
type Options struct {
	Defaults      search.Options
	MaxDepthLimit int
	TimeoutLimit  time.Duration
	Catalog       []string
	Logger        *slog.Logger
}

// ConnectionService exposes entity lookup, fuzzy search and connection
// finding to the transport layers.
type ConnectionService struct {
	pages   PageSource
	finder  PathFinder
	opts    Options
	catalog []string
	logger  *slog.Logger
}

// NewConnectionService constructs a ConnectionService.
func NewConnectionService(pages PageSource, finder PathFinder, opts Options) *ConnectionService {
	if opts.Defaults.MaxDepth <= 0 {
		opts.Defaults.MaxDepth = search.DefaultMaxDepth
	}
	if opts.Defaults.Timeout <= 0 {
		opts.Defaults.Timeout = search.DefaultTimeout
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &ConnectionService{
		pages:   pages,
		finder:  finder,
		opts:    opts,
		catalog: append([]string(nil), catalog...),
		logger:  logger,
	}
}

// Celebrities returns the seed catalog.
func (s *ConnectionService) Celebrities() []string {
	return append([]string(nil), s.catalog...)
}

// EntityInfo returns the page for name. Lookup failures yield an empty page.
func (s *ConnectionService) EntityInfo(ctx context.Context, name string) domain.PageInfo {
	return s.pages.Info(ctx, trimTitle(name))
}

// Search returns fuzzy title suggestions for query.
func (s *ConnectionService) Search(ctx context.Context, query string) ([]domain.Suggestion, error) {
	query = sanitizeString(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	return s.pages.Search(ctx, query), nil
}

// Connect finds the shortest link path between two entities. A path that
// cannot be found is reported in the Connection, not as an error.
func (s *ConnectionService) Connect(ctx context.Context, params ConnectParams) (domain.Connection, error) {
	start := trimTitle(params.Start)
	end := trimTitle(params.End)
	if start == "" || end == "" {
		return domain.Connection{}, ErrEndpointsRequired
	}

	opts := s.opts.Defaults
	opts.MaxDepth = clampDepth(params.MaxDepth, s.opts.Defaults.MaxDepth, s.opts.MaxDepthLimit)
	opts.Timeout = clampTimeout(params.Timeout, s.opts.Defaults.Timeout, s.opts.TimeoutLimit)

	res := s.finder.Find(ctx, start, end, opts)
	if !res.Found {
		s.logger.Info("no connection", "start", start, "end", end, "reason", res.Reason, "max_depth", opts.MaxDepth)
		return domain.Connection{Success: false, Message: MessageNotFound}, nil
	}

	return domain.Connection{
		Success: true,
		Path:    res.Path,
		Details: res.Details,
		Length:  len(res.Path) - 1,
	}, nil
}
