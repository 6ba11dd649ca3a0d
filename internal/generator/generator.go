package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/vanshika/linktrace/backend/internal/domain"
)

// Dataset contains the generated pages.
type Dataset struct {
	Pages []domain.Article `json:"pages"`
}

// Adjacency returns the outbound link lists keyed by title.
func (d Dataset) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(d.Pages))
	for _, p := range d.Pages {
		adj[p.Title] = append([]string(nil), p.Links...)
	}
	return adj
}

// Generator produces synthetic link graphs shaped like an encyclopedia of
// people and the organisations they are associated with.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumPages <= 0 {
		cfg.NumPages = def.NumPages
	}
	if cfg.MinLinks < 0 {
		cfg.MinLinks = 0
	}
	if cfg.MaxLinks <= 0 {
		cfg.MaxLinks = def.MaxLinks
	}
	if cfg.MaxLinks < cfg.MinLinks {
		cfg.MaxLinks = cfg.MinLinks
	}
	if cfg.ReciprocalChance < 0 {
		cfg.ReciprocalChance = 0
	}
	if cfg.OrgChance < 0 {
		cfg.OrgChance = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
	}
}

// Generate synthesises pages and their links. Titles are unique, links never
// point at their own page and are deduplicated per page. It respects
// context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	n := g.cfg.NumPages
	titles := make([]string, n)
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		title := g.randomTitle()
		if _, dup := seen[title]; dup {
			title = fmt.Sprintf("%s (%d)", title, i+1)
		}
		seen[title] = struct{}{}
		titles[i] = title
	}

	links := make([][]string, n)
	linked := make([]map[int]struct{}, n)
	for i := range linked {
		linked[i] = make(map[int]struct{})
	}
	addLink := func(from, to int) {
		if from == to {
			return
		}
		if _, ok := linked[from][to]; ok {
			return
		}
		linked[from][to] = struct{}{}
		links[from] = append(links[from], titles[to])
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		if n < 2 {
			break
		}
		count := g.cfg.MinLinks
		if spread := g.cfg.MaxLinks - g.cfg.MinLinks; spread > 0 {
			count += g.rand.Intn(spread + 1)
		}
		for j := 0; j < count; j++ {
			target := g.rand.Intn(n)
			addLink(i, target)
			if g.rand.Float64() < g.cfg.ReciprocalChance {
				addLink(target, i)
			}
		}
	}

	pages := make([]domain.Article, n)
	for i := 0; i < n; i++ {
		out := links[i]
		if out == nil {
			out = []string{}
		}
		pages[i] = domain.Article{
			Title:   titles[i],
			Extract: g.randomExtract(titles[i], out),
			Links:   out,
		}
	}
	return Dataset{Pages: pages}, nil
}

func (g *Generator) randomTitle() string {
	if g.rand.Float64() < g.cfg.OrgChance {
		return fmt.Sprintf("%s %s", g.pick(g.nameFragments.orgPrefixes), g.pick(g.nameFragments.orgSuffixes))
	}
	return fmt.Sprintf("%s %s", g.pick(g.nameFragments.first), g.pick(g.nameFragments.last))
}

func (g *Generator) randomExtract(title string, links []string) string {
	extract := fmt.Sprintf("%s is a %s.", title, g.pick(g.nameFragments.roles))
	if len(links) > 0 {
		extract += fmt.Sprintf(" %s is known for work with %s.", title, links[g.rand.Intn(len(links))])
	}
	return extract
}

func (g *Generator) pick(options []string) string {
	return options[g.rand.Intn(len(options))]
}

type nameFragments struct {
	first       []string
	last        []string
	orgPrefixes []string
	orgSuffixes []string
	roles       []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:       []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:        []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		orgPrefixes: []string{"Silver Lake", "Northwind", "Bluebird", "Redwood", "Orchid", "Summit", "Harbor"},
		orgSuffixes: []string{"Pictures", "Studios", "Records", "Entertainment", "Productions", "Corporation", "Music"},
		roles:       []string{"actor", "singer", "director", "producer", "athlete", "writer", "comedian"},
	}
}
