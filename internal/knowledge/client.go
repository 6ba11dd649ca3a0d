package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/vanshika/linktrace/backend/internal/domain"
)

// Wikipedia accepts at most this many links or backlinks per page of results.
const linkPageLimit = 500

// ClientOptions tunes the MediaWiki client.
type ClientOptions struct {
	// MaxLinks stops link pagination once this many links were collected.
	MaxLinks int
	// MaxLinkPages bounds the number of continuation requests per page.
	MaxLinkPages int
}

// Client talks to a MediaWiki action API through a Fetcher.
type Client struct {
	fetcher      *Fetcher
	maxLinks     int
	maxLinkPages int
}

// NewClient constructs a MediaWiki client.
func NewClient(fetcher *Fetcher, opts ClientOptions) *Client {
	if opts.MaxLinkPages <= 0 {
		opts.MaxLinkPages = 1
	}
	return &Client{
		fetcher:      fetcher,
		maxLinks:     opts.MaxLinks,
		maxLinkPages: opts.MaxLinkPages,
	}
}

type queryResponse struct {
	Continue map[string]string `json:"continue"`
	Query    struct {
		Pages     map[string]queryPage `json:"pages"`
		Backlinks []titleRef           `json:"backlinks"`
	} `json:"query"`
}

type queryPage struct {
	PageID  int        `json:"pageid"`
	Title   string     `json:"title"`
	Extract string     `json:"extract"`
	Missing *string    `json:"missing"`
	Links   []titleRef `json:"links"`
}

type titleRef struct {
	Title string `json:"title"`
}

// FetchPage returns the intro extract and main-namespace outbound links of title.
func (c *Client) FetchPage(ctx context.Context, title string) (domain.Article, error) {
	params := url.Values{
		"action":      {"query"},
		"titles":      {title},
		"prop":        {"extracts|pageprops|links"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"pllimit":     {strconv.Itoa(linkPageLimit)},
		"plnamespace": {"0"},
		"format":      {"json"},
	}

	article := domain.Article{Title: title}
	for page := 0; page < c.maxLinkPages; page++ {
		var resp queryResponse
		if err := c.fetcher.GetJSON(ctx, params, &resp); err != nil {
			if page > 0 {
				// Keep what earlier pages produced.
				break
			}
			return domain.Article{}, err
		}

		key, qp, ok := firstPage(resp.Query.Pages)
		if !ok {
			if page > 0 {
				break
			}
			return domain.Article{}, domain.ErrNoPages
		}
		if key == "-1" || qp.Missing != nil {
			return domain.Article{}, fmt.Errorf("%q: %w", title, domain.ErrPageMissing)
		}
		if qp.Extract != "" {
			article.Extract = qp.Extract
		}
		for _, link := range qp.Links {
			if link.Title != "" {
				article.Links = append(article.Links, link.Title)
			}
		}

		next, more := resp.Continue["plcontinue"]
		if !more || (c.maxLinks > 0 && len(article.Links) >= c.maxLinks) {
			break
		}
		params.Set("plcontinue", next)
		params.Set("continue", resp.Continue["continue"])
	}

	return article, nil
}

// Search runs an opensearch query and returns up to limit suggestions in
// the order ranked by the service.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	params := url.Values{
		"action":    {"opensearch"},
		"search":    {query},
		"limit":     {strconv.Itoa(limit)},
		"namespace": {"0"},
		"format":    {"json"},
	}

	var raw []json.RawMessage
	if err := c.fetcher.GetJSON(ctx, params, &raw); err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return []domain.Suggestion{}, nil
	}

	var titles, descriptions, urls []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, fmt.Errorf("decode opensearch titles: %w", err)
	}
	// Descriptions and URLs are optional; a malformed column leaves them empty.
	_ = json.Unmarshal(raw[2], &descriptions)
	_ = json.Unmarshal(raw[3], &urls)

	results := make([]domain.Suggestion, 0, len(titles))
	for i, t := range titles {
		s := domain.Suggestion{Title: t}
		if i < len(descriptions) {
			s.Description = descriptions[i]
		}
		if i < len(urls) {
			s.URL = urls[i]
		}
		results = append(results, s)
	}
	return results, nil
}

// Backlinks lists main-namespace pages linking to title.
func (c *Client) Backlinks(ctx context.Context, title string, limit int) ([]string, error) {
	if limit <= 0 || limit > linkPageLimit {
		limit = linkPageLimit
	}
	params := url.Values{
		"action":      {"query"},
		"list":        {"backlinks"},
		"bltitle":     {title},
		"blnamespace": {"0"},
		"bllimit":     {strconv.Itoa(limit)},
		"format":      {"json"},
	}

	var resp queryResponse
	if err := c.fetcher.GetJSON(ctx, params, &resp); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Query.Backlinks))
	for _, ref := range resp.Query.Backlinks {
		if ref.Title != "" {
			titles = append(titles, ref.Title)
		}
	}
	return titles, nil
}

// firstPage picks the single page of a one-title query. Keys are compared
// so the choice stays deterministic if the service ever returns more.
func firstPage(pages map[string]queryPage) (string, queryPage, bool) {
	if len(pages) == 0 {
		return "", queryPage{}, false
	}
	keys := make([]string, 0, len(pages))
	for k := range pages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0], pages[keys[0]], true
}
