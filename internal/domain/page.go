package domain

// Entity type tags attached to neighbor titles for display.
const (
	EntityStudio  = "studio"
	EntityCompany = "company"
	EntityRelated = "related"
)

// Article is a page as returned by a knowledge backend, before link capping
// and enrichment.
type Article struct {
	Title   string   `json:"title"`
	Extract string   `json:"extract"`
	Links   []string `json:"links"`
}

// Entity is a neighbor title classified by keyword heuristics.
type Entity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// PageInfo is the memoized view of a page used by search and detail lookups.
// Values are shared between callers and must be treated as read-only.
type PageInfo struct {
	Title    string   `json:"title"`
	Extract  string   `json:"extract"`
	Entities []Entity `json:"entities"`
	Links    []string `json:"links"`
}

// EmptyPage returns the degraded result for a title.
func EmptyPage(title string) PageInfo {
	return PageInfo{
		Title:    title,
		Entities: []Entity{},
		Links:    []string{},
	}
}

// Suggestion is a fuzzy search hit from the knowledge service.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}
