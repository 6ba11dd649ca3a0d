// Package sourcetest provides an in-memory knowledge service for tests.
package sourcetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vanshika/linktrace/backend/internal/domain"
)

// ErrInjected is returned for titles configured to fail.
var ErrInjected = errors.New("injected failure")

// Upstream serves a fixed directed link graph and counts calls.
type Upstream struct {
	mu          sync.Mutex
	links       map[string][]string
	extracts    map[string]string
	suggestions map[string][]domain.Suggestion
	failing     map[string]int // remaining failures, -1 for always
	delay       time.Duration

	fetches   map[string]int
	searches  int
	backlinks int
}

// New builds an upstream from an adjacency list. Every key is an existing
// page; titles that only appear as link targets exist with no links.
func New(links map[string][]string) *Upstream {
	u := &Upstream{
		links:       make(map[string][]string, len(links)),
		extracts:    make(map[string]string),
		suggestions: make(map[string][]domain.Suggestion),
		failing:     make(map[string]int),
		fetches:     make(map[string]int),
	}
	for title, out := range links {
		u.links[title] = append([]string(nil), out...)
		for _, target := range out {
			if _, ok := links[target]; !ok {
				u.links[target] = nil
			}
		}
	}
	return u
}

// WithExtract sets the extract text of a page.
func (u *Upstream) WithExtract(title, extract string) *Upstream {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.extracts[title] = extract
	return u
}

// WithSuggestions sets the search results returned for query.
func (u *Upstream) WithSuggestions(query string, titles ...string) *Upstream {
	u.mu.Lock()
	defer u.mu.Unlock()
	results := make([]domain.Suggestion, 0, len(titles))
	for _, t := range titles {
		results = append(results, domain.Suggestion{Title: t})
	}
	u.suggestions[query] = results
	return u
}

// Failing makes the next n fetches of title fail. n < 0 fails forever.
func (u *Upstream) Failing(title string, n int) *Upstream {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failing[title] = n
	return u
}

// WithDelay makes every page fetch block for d.
func (u *Upstream) WithDelay(d time.Duration) *Upstream {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.delay = d
	return u
}

// FetchPage implements source.Upstream.
func (u *Upstream) FetchPage(ctx context.Context, title string) (domain.Article, error) {
	u.mu.Lock()
	u.fetches[title]++
	delay := u.delay
	remaining, failing := u.failing[title]
	if failing && remaining > 0 {
		u.failing[title] = remaining - 1
	}
	links, exists := u.links[title]
	extract := u.extracts[title]
	u.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return domain.Article{}, ctx.Err()
		case <-time.After(delay):
		}
	}
	if failing && remaining != 0 {
		return domain.Article{}, ErrInjected
	}
	if !exists {
		return domain.Article{}, domain.ErrPageMissing
	}
	return domain.Article{
		Title:   title,
		Extract: extract,
		Links:   append([]string(nil), links...),
	}, nil
}

// Search implements source.Upstream.
func (u *Upstream) Search(_ context.Context, query string, limit int) ([]domain.Suggestion, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.searches++
	results := u.suggestions[query]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return append([]domain.Suggestion{}, results...), nil
}

// Backlinks implements source.Upstream, returning linking titles sorted.
// A done ctx fails the call.
func (u *Upstream) Backlinks(ctx context.Context, title string, limit int) ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.backlinks++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var sources []string
	for from, out := range u.links {
		for _, to := range out {
			if to == title {
				sources = append(sources, from)
				break
			}
		}
	}
	sort.Strings(sources)
	if limit > 0 && len(sources) > limit {
		sources = sources[:limit]
	}
	return sources, nil
}

// Fetches returns how many times title was fetched.
func (u *Upstream) Fetches(title string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.fetches[title]
}

// TotalFetches returns the number of page fetches across all titles.
func (u *Upstream) TotalFetches() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	total := 0
	for _, n := range u.fetches {
		total += n
	}
	return total
}

// Searches returns the number of search calls.
func (u *Upstream) Searches() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.searches
}
