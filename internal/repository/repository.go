package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vanshika/linktrace/backend/internal/domain"
	"github.com/vanshika/linktrace/backend/internal/graph"
)

const (
	defaultLimit = 10
	maxLimit     = 500
)

// ErrTitleRequired is returned when an operation is given a blank title.
var ErrTitleRequired = errors.New("page title is required")

// Repository stores a link graph of pages in Neo4j and serves it through the
// same contract as the MediaWiki client.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// EnsureSchema creates the uniqueness constraint on page titles.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.client.ExecuteWrite(ctx, pageConstraintCypher, nil); err != nil {
		return fmt.Errorf("ensure page constraint: %w", err)
	}
	return nil
}

// UpsertPage writes a page and replaces its outbound links. Link targets that
// do not exist yet are created as bare pages.
func (r *Repository) UpsertPage(ctx context.Context, page domain.Article) error {
	title := strings.TrimSpace(page.Title)
	if title == "" {
		return ErrTitleRequired
	}

	links := page.Links
	if links == nil {
		links = []string{}
	}
	params := map[string]any{
		"title":   title,
		"extract": page.Extract,
		"links":   links,
	}

	if _, err := r.client.ExecuteWrite(ctx, upsertPageCypher, params); err != nil {
		return fmt.Errorf("upsert page %q: %w", title, err)
	}
	return nil
}

// FetchPage returns the page stored under title with links in insertion
// order. It returns domain.ErrPageMissing when no such page exists.
func (r *Repository) FetchPage(ctx context.Context, title string) (domain.Article, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Article{}, ErrTitleRequired
	}

	res, err := r.client.ExecuteRead(ctx, fetchPageCypher, map[string]any{"title": title})
	if err != nil {
		return domain.Article{}, fmt.Errorf("fetch page %q: %w", title, err)
	}
	if len(res.Records) == 0 {
		return domain.Article{}, fmt.Errorf("%w: %q", domain.ErrPageMissing, title)
	}

	record := res.Records[0]
	stored, err := record.String("title")
	if err != nil {
		return domain.Article{}, fmt.Errorf("decode page %q: %w", title, err)
	}
	extract, err := record.String("extract")
	if err != nil {
		return domain.Article{}, fmt.Errorf("decode page %q: %w", title, err)
	}
	links, err := record.Strings("links")
	if err != nil {
		return domain.Article{}, fmt.Errorf("decode page %q: %w", title, err)
	}

	return domain.Article{Title: stored, Extract: extract, Links: links}, nil
}

// Search returns pages whose title contains query, case-insensitively,
// shortest titles first.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Suggestion{}, nil
	}

	res, err := r.client.ExecuteRead(ctx, searchPagesCypher, map[string]any{
		"query": query,
		"limit": clampLimit(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search pages %q: %w", query, err)
	}

	results := make([]domain.Suggestion, 0, len(res.Records))
	for _, record := range res.Records {
		title, err := record.String("title")
		if err != nil {
			return nil, fmt.Errorf("decode search result: %w", err)
		}
		extract, err := record.String("extract")
		if err != nil {
			return nil, fmt.Errorf("decode search result: %w", err)
		}
		results = append(results, domain.Suggestion{Title: title, Description: extract})
	}
	return results, nil
}

// Backlinks returns the titles of pages linking to title, sorted.
func (r *Repository) Backlinks(ctx context.Context, title string, limit int) ([]string, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}

	res, err := r.client.ExecuteRead(ctx, backlinksCypher, map[string]any{
		"title": title,
		"limit": clampLimit(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("backlinks of %q: %w", title, err)
	}

	titles := make([]string, 0, len(res.Records))
	for _, record := range res.Records {
		t, err := record.String("title")
		if err != nil {
			return nil, fmt.Errorf("decode backlink: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, nil
}

// CountPages returns the number of stored pages.
func (r *Repository) CountPages(ctx context.Context) (int64, error) {
	res, err := r.client.ExecuteRead(ctx, countPagesCypher, nil)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	switch v := res.Records[0]["total"].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	}
	return 0, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

const pageConstraintCypher = `
CREATE CONSTRAINT page_title IF NOT EXISTS
FOR (p:Page) REQUIRE p.title IS UNIQUE
`

const upsertPageCypher = `
MERGE (p:Page {title: $title})
SET p.extract = $extract,
    p.updatedAt = datetime()
WITH p
OPTIONAL MATCH (p)-[old:LINKS_TO]->()
DELETE old
WITH DISTINCT p
UNWIND range(0, size($links) - 1) AS position
MERGE (target:Page {title: $links[position]})
CREATE (p)-[:LINKS_TO {position: position}]->(target)
`

const fetchPageCypher = `
MATCH (p:Page {title: $title})
OPTIONAL MATCH (p)-[l:LINKS_TO]->(target:Page)
WITH p, l, target
ORDER BY l.position
RETURN p.title AS title,
       coalesce(p.extract, '') AS extract,
       collect(target.title) AS links
`

const searchPagesCypher = `
MATCH (p:Page)
WHERE toLower(p.title) CONTAINS toLower($query)
RETURN p.title AS title, coalesce(p.extract, '') AS extract
ORDER BY size(p.title), p.title
LIMIT $limit
`

const backlinksCypher = `
MATCH (source:Page)-[:LINKS_TO]->(:Page {title: $title})
RETURN DISTINCT source.title AS title
ORDER BY title
LIMIT $limit
`

const countPagesCypher = `
MATCH (p:Page)
RETURN count(p) AS total
`
