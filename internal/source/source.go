package source

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vanshika/linktrace/backend/internal/cache"
	"github.com/vanshika/linktrace/backend/internal/domain"
	"github.com/vanshika/linktrace/backend/internal/logging"
	"github.com/vanshika/linktrace/backend/internal/metrics"
)

const (
	defaultMaxLinks  = 200
	extractLimit     = 500
	searchLimit      = 10
	backlinkLimit    = 500
	fallbackAttempts = 1
)

// Upstream is the knowledge service contract. The MediaWiki client and the
// Neo4j page repository both satisfy it.
type Upstream interface {
	FetchPage(ctx context.Context, title string) (domain.Article, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Suggestion, error)
	Backlinks(ctx context.Context, title string, limit int) ([]string, error)
}

// Status describes how a lookup was resolved.
type Status string

const (
	// StatusCached means the page came from the memo.
	StatusCached Status = "cached"
	// StatusFetched means the page was fetched under the requested title.
	StatusFetched Status = "fetched"
	// StatusResolved means the page was fetched under the top fuzzy match.
	StatusResolved Status = "resolved"
	// StatusUnresolved means no page exists even after the fallback search.
	StatusUnresolved Status = "unresolved"
	// StatusDegraded means the fetch failed and an empty page stands in.
	StatusDegraded Status = "degraded"
)

// Lookup is the result of resolving a title. Page is always usable; Err
// keeps the underlying failure of degraded lookups for logging.
type Lookup struct {
	Page   domain.PageInfo
	Status Status
	Err    error
}

// Options tunes a Source.
type Options struct {
	MaxLinks int
	Logger   *slog.Logger
}

// Source resolves titles to memoized pages. Fetch failures never escape:
// they degrade to an empty neighbor list.
type Source struct {
	upstream  Upstream
	pages     *cache.Memo[domain.PageInfo]
	backlinks *cache.Memo[[]string]
	maxLinks  int
	logger    *slog.Logger
}

// New constructs a Source. pages is the memo shared by every consumer of
// this Source; pass nil to allocate a private one.
func New(upstream Upstream, pages *cache.Memo[domain.PageInfo], opts Options) *Source {
	if pages == nil {
		pages = cache.New[domain.PageInfo]("pages")
	}
	if opts.MaxLinks <= 0 {
		opts.MaxLinks = defaultMaxLinks
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Source{
		upstream:  upstream,
		pages:     pages,
		backlinks: cache.New[[]string]("backlinks"),
		maxLinks:  opts.MaxLinks,
		logger:    logger,
	}
}

// Lookup resolves title through the memo, fetching on a miss.
func (s *Source) Lookup(ctx context.Context, title string) Lookup {
	var fresh Lookup
	page, cached := s.pages.Load(title, func() (domain.PageInfo, bool) {
		fresh = s.resolve(ctx, title)
		return fresh.Page, !abandoned(ctx, fresh.Err)
	})

	if cached || fresh.Status == "" {
		// Served from the memo, possibly filled by a concurrent caller.
		metrics.PageLookups.WithLabelValues(string(StatusCached)).Inc()
		return Lookup{Page: page, Status: StatusCached}
	}

	metrics.PageLookups.WithLabelValues(string(fresh.Status)).Inc()
	if fresh.Err != nil {
		s.logger.Warn("page lookup degraded", "title", title, "status", fresh.Status, "error", fresh.Err)
	}
	fresh.Page = page
	return fresh
}

// Info returns the page for title, degraded to an empty page on failure.
func (s *Source) Info(ctx context.Context, title string) domain.PageInfo {
	return s.Lookup(ctx, title).Page
}

// Links returns the outbound neighbor list of title.
func (s *Source) Links(ctx context.Context, title string) []string {
	return s.Lookup(ctx, title).Page.Links
}

// Backlinks returns titles linking to title. Failures degrade to an empty list.
func (s *Source) Backlinks(ctx context.Context, title string) []string {
	links, _ := s.backlinks.Load(title, func() ([]string, bool) {
		titles, err := s.upstream.Backlinks(ctx, title, backlinkLimit)
		if err != nil {
			s.logger.Warn("backlink lookup degraded", "title", title, "error", err)
			return []string{}, !abandoned(ctx, err)
		}
		if len(titles) > s.maxLinks {
			titles = titles[:s.maxLinks]
		}
		return titles, true
	})
	return links
}

// Search passes a fuzzy query through to the knowledge service. Failures
// degrade to an empty result.
func (s *Source) Search(ctx context.Context, query string) []domain.Suggestion {
	results, err := s.upstream.Search(ctx, query, searchLimit)
	if err != nil {
		s.logger.Warn("search degraded", "query", query, "error", err)
		return []domain.Suggestion{}
	}
	return results
}

// CacheStats reports the page memo counters.
func (s *Source) CacheStats() cache.Stats {
	return s.pages.Stats()
}

func (s *Source) resolve(ctx context.Context, title string) Lookup {
	requested := title
	status := StatusFetched

	for fallback := 0; ; fallback++ {
		article, err := s.upstream.FetchPage(ctx, title)
		if err == nil {
			page := s.build(article)
			if title != requested {
				s.pages.Put(title, page)
			}
			return Lookup{Page: page, Status: status}
		}

		if !errors.Is(err, domain.ErrPageMissing) {
			return Lookup{Page: domain.EmptyPage(requested), Status: StatusDegraded, Err: err}
		}
		if fallback >= fallbackAttempts {
			return Lookup{Page: domain.EmptyPage(requested), Status: StatusUnresolved, Err: err}
		}

		suggestion, ok := s.topSuggestion(ctx, requested)
		if !ok || suggestion == requested {
			return Lookup{Page: domain.EmptyPage(requested), Status: StatusUnresolved, Err: err}
		}
		s.logger.Debug("resolving title via search", "title", requested, "suggestion", suggestion)
		title = suggestion
		status = StatusResolved
	}
}

// abandoned reports whether err came from the caller giving up rather than
// from the knowledge service. Such results are served but never memoized.
func abandoned(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (s *Source) topSuggestion(ctx context.Context, title string) (string, bool) {
	results, err := s.upstream.Search(ctx, title, searchLimit)
	if err != nil || len(results) == 0 {
		return "", false
	}
	return results[0].Title, true
}

func (s *Source) build(article domain.Article) domain.PageInfo {
	links := article.Links
	if len(links) > s.maxLinks {
		links = links[:s.maxLinks]
	}
	links = append([]string{}, links...)

	return domain.PageInfo{
		Title:    article.Title,
		Extract:  truncateRunes(article.Extract, extractLimit),
		Entities: ExtractEntities(article.Extract, links),
		Links:    links,
	}
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
