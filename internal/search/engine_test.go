package search

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/linktrace/backend/internal/generator"
	"github.com/vanshika/linktrace/backend/internal/source"
	"github.com/vanshika/linktrace/backend/internal/source/sourcetest"
)

var noPacing = Options{Pacing: -1}

type sleepRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, d)
}

func newTestEngine(up *sourcetest.Upstream) (*Engine, *sleepRecorder) {
	eng := NewEngine(source.New(up, nil, source.Options{}), nil)
	rec := &sleepRecorder{}
	eng.sleep = rec.sleep
	return eng, rec
}

func TestFind_SameEndpoints(t *testing.T) {
	up := sourcetest.New(map[string][]string{"A": {"B"}})
	eng, _ := newTestEngine(up)

	res := eng.Find(context.Background(), "A", "A", noPacing)

	assert.True(t, res.Found)
	assert.Equal(t, ReasonTrivial, res.Reason)
	assert.Equal(t, []string{"A"}, res.Path)
	assert.Empty(t, res.Details)
	assert.Zero(t, res.Hops)
	assert.Zero(t, up.TotalFetches())
}

func TestFind_LinearChain(t *testing.T) {
	up := sourcetest.New(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"D"},
	}).WithExtract("B", "B is a page.")
	eng, _ := newTestEngine(up)

	res := eng.Find(context.Background(), "A", "D", Options{MaxDepth: 5, Pacing: -1})

	require.True(t, res.Found)
	assert.Equal(t, ReasonFound, res.Reason)
	assert.Equal(t, []string{"A", "B", "C", "D"}, res.Path)
	assert.Equal(t, 3, res.Hops)
	require.Len(t, res.Details, 4)
	for i, d := range res.Details {
		assert.Equal(t, res.Path[i], d.Title)
		assert.Equal(t, i, d.Step)
	}
	assert.Equal(t, "B is a page.", res.Details[1].Extract)
}

func TestFind_MeetsOnEndSide(t *testing.T) {
	up := sourcetest.New(map[string][]string{
		"A": {"B1", "B2"},
		"D": {"C"},
		"C": {"B1"},
	})
	eng, _ := newTestEngine(up)

	res := eng.Find(context.Background(), "A", "D", noPacing)

	require.True(t, res.Found)
	assert.Equal(t, []string{"A", "B1", "C", "D"}, res.Path)
	assert.Equal(t, 3, res.Hops)
}

func TestFind_Disconnected(t *testing.T) {
	up := sourcetest.New(map[string][]string{
		"X": {"X1"},
		"Y": {"Y1"},
	})
	eng, _ := newTestEngine(up)

	res := eng.Find(context.Background(), "X", "Y", noPacing)

	assert.False(t, res.Found)
	assert.Equal(t, ReasonExhausted, res.Reason)
	assert.Empty(t, res.Path)
}

func TestFind_FailingNodeIsSkipped(t *testing.T) {
	up := sourcetest.New(map[string][]string{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"D"},
		"D": {"Z1", "Z2", "Z3"},
	}).Failing("B", -1)
	eng, _ := newTestEngine(up)

	res := eng.Find(context.Background(), "A", "D", noPacing)

	require.True(t, res.Found)
	assert.Equal(t, []string{"A", "C", "D"}, res.Path)
	assert.GreaterOrEqual(t, up.Fetches("B"), 1)
}

func TestFind_DepthBound(t *testing.T) {
	up := sourcetest.New(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"D"},
	})
	eng, rec := newTestEngine(up)

	res := eng.Find(context.Background(), "A", "D", Options{MaxDepth: 2, Pacing: time.Millisecond})

	assert.False(t, res.Found)
	assert.Equal(t, ReasonExhausted, res.Reason)
	// B sits at the depth bound and is never expanded.
	assert.Zero(t, up.Fetches("B"))
	// Only A was expanded, so only A was paced.
	assert.Equal(t, []time.Duration{time.Millisecond}, rec.calls)
}

func TestFind_PacesEachExpandedNode(t *testing.T) {
	up := sourcetest.New(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"D"},
	})
	eng, rec := newTestEngine(up)

	res := eng.Find(context.Background(), "A", "D", Options{Pacing: 30 * time.Millisecond})

	require.True(t, res.Found)
	// A and B are paced; the expansion of C ends at the meeting node.
	assert.Equal(t, []time.Duration{30 * time.Millisecond, 30 * time.Millisecond}, rec.calls)
}

func TestFind_TimesOut(t *testing.T) {
	links := make(map[string][]string)
	for i := 0; i < 50; i++ {
		links[fmt.Sprintf("N%d", i)] = []string{fmt.Sprintf("N%d", i+1)}
	}
	up := sourcetest.New(links).WithDelay(30 * time.Millisecond)
	eng, _ := newTestEngine(up)

	began := time.Now()
	res := eng.Find(context.Background(), "N0", "N50", Options{MaxDepth: 50, Timeout: 20 * time.Millisecond, Pacing: -1})

	assert.False(t, res.Found)
	assert.Equal(t, ReasonTimedOut, res.Reason)
	assert.Less(t, time.Since(began), time.Second)
}

func TestFind_TimeoutCheckedBetweenWaves(t *testing.T) {
	up := sourcetest.New(map[string][]string{"A": {"B"}, "B": {"C"}})
	eng, _ := newTestEngine(up)

	now := time.Unix(0, 0)
	eng.WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	})

	res := eng.Find(context.Background(), "A", "C", Options{Timeout: 1500 * time.Millisecond, Pacing: -1})

	assert.Equal(t, ReasonTimedOut, res.Reason)
	// The first wave ran before the budget was found exceeded.
	assert.Equal(t, 1, up.Fetches("A"))
	assert.Zero(t, up.Fetches("B"))
}

func TestFind_CancelledContext(t *testing.T) {
	up := sourcetest.New(map[string][]string{"A": {"B"}})
	eng, _ := newTestEngine(up)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := eng.Find(ctx, "A", "B", noPacing)
	assert.False(t, res.Found)
	assert.Equal(t, ReasonTimedOut, res.Reason)
	assert.Zero(t, up.TotalFetches())
}

func TestFind_CancelStopsWaveWithoutPoisoningPages(t *testing.T) {
	up := sourcetest.New(map[string][]string{
		"A":  {"B1", "B2", "B3"},
		"B2": {"Y3"},
		"Z":  {"Y1", "Y2", "Y3", "Y4", "Y5"},
	})
	eng, _ := newTestEngine(up)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var paced int
	eng.sleep = func(context.Context, time.Duration) {
		// A, Z, then B1 of the start side's second wave.
		paced++
		if paced == 3 {
			cancel()
		}
	}

	res := eng.Find(ctx, "A", "Z", noPacing)
	assert.False(t, res.Found)
	assert.Equal(t, ReasonTimedOut, res.Reason)
	assert.Equal(t, 1, up.Fetches("B1"))
	assert.Zero(t, up.Fetches("B2"))
	assert.Zero(t, up.Fetches("B3"))

	eng.sleep = func(context.Context, time.Duration) {}
	res = eng.Find(context.Background(), "A", "Z", noPacing)
	require.True(t, res.Found)
	assert.Equal(t, []string{"A", "B2", "Y3", "Z"}, res.Path)
}

func TestFind_DetailsKeepPathTitleForResolvedNode(t *testing.T) {
	up := sourcetest.New(map[string][]string{"Tom Hanks": {"Forrest Gump"}}).
		WithExtract("Tom Hanks", "Tom Hanks is an actor.").
		WithSuggestions("tom hanks", "Tom Hanks")
	eng, _ := newTestEngine(up)

	res := eng.Find(context.Background(), "tom hanks", "Forrest Gump", noPacing)
	require.True(t, res.Found)
	assert.Equal(t, []string{"tom hanks", "Forrest Gump"}, res.Path)
	require.Len(t, res.Details, 2)
	assert.Equal(t, "tom hanks", res.Details[0].Title)
	assert.Equal(t, "Tom Hanks is an actor.", res.Details[0].Extract)
	assert.Equal(t, "Forrest Gump", res.Details[1].Title)
}

func TestFind_StrictFollowsForwardLinks(t *testing.T) {
	graph := map[string][]string{
		"A":  {"B1", "B2"},
		"B1": {"C"},
		"C":  {"D"},
		"D":  {"X"},
	}

	symmetric, _ := newTestEngine(sourcetest.New(graph))
	res := symmetric.Find(context.Background(), "A", "D", noPacing)
	assert.False(t, res.Found)

	strict, _ := newTestEngine(sourcetest.New(graph))
	res = strict.Find(context.Background(), "A", "D", Options{Strict: true, Pacing: -1})
	require.True(t, res.Found)
	assert.Equal(t, []string{"A", "B1", "C", "D"}, res.Path)
	assertForwardPath(t, graph, res.Path)
}

func TestFind_DetailsTruncateEntities(t *testing.T) {
	links := []string{"One Pictures", "Two Pictures", "Three Pictures", "Four Pictures", "Five Pictures", "Six Pictures", "B"}
	up := sourcetest.New(map[string][]string{
		"A": links,
		"B": {"C"},
	})
	eng, _ := newTestEngine(up)

	res := eng.Find(context.Background(), "A", "B", noPacing)

	require.True(t, res.Found)
	require.Len(t, res.Details, 2)
	assert.Len(t, res.Details[0].Entities, detailEntityLimit)
	assert.NotNil(t, res.Details[1].Entities)
}

func TestFind_MatchesBreadthFirstOracle(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		ds, err := generator.New(generator.Config{
			NumPages: 30,
			MinLinks: 1,
			MaxLinks: 3,
			Seed:     seed,
		}).Generate(context.Background())
		require.NoError(t, err)
		directed := ds.Adjacency()
		undirected := symmetrize(directed)
		start, end := ds.Pages[0].Title, ds.Pages[len(ds.Pages)-1].Title

		t.Run(fmt.Sprintf("undirected/seed=%d", seed), func(t *testing.T) {
			eng, _ := newTestEngine(sourcetest.New(undirected))
			res := eng.Find(context.Background(), start, end, Options{MaxDepth: 31, Pacing: -1})
			checkAgainstOracle(t, undirected, start, end, res)
		})

		t.Run(fmt.Sprintf("strict/seed=%d", seed), func(t *testing.T) {
			eng, _ := newTestEngine(sourcetest.New(directed))
			res := eng.Find(context.Background(), start, end, Options{MaxDepth: 31, Pacing: -1, Strict: true})
			checkAgainstOracle(t, directed, start, end, res)
			if res.Found {
				assertForwardPath(t, directed, res.Path)
			}
		})
	}
}

func TestFind_PathBoundedByDepth(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		ds, err := generator.New(generator.Config{
			NumPages: 40,
			MinLinks: 1,
			MaxLinks: 2,
			Seed:     seed,
		}).Generate(context.Background())
		require.NoError(t, err)
		adj := ds.Adjacency()

		for depth := 1; depth <= 3; depth++ {
			eng, _ := newTestEngine(sourcetest.New(adj))
			res := eng.Find(context.Background(), ds.Pages[0].Title, ds.Pages[1].Title, Options{MaxDepth: depth, Pacing: -1})
			if !res.Found {
				continue
			}
			assert.LessOrEqual(t, res.Hops, 2*depth, "seed=%d depth=%d", seed, depth)
			assertSimplePath(t, res.Path)
		}
	}
}

func checkAgainstOracle(t *testing.T, adj map[string][]string, start, end string, res Result) {
	t.Helper()
	want, reachable := shortestDistance(adj, start, end)
	if !reachable {
		assert.False(t, res.Found, "found a path between disconnected pages: %v", res.Path)
		return
	}
	// The depth bound exceeds the page count, so it never cuts a search short.
	require.True(t, res.Found, "expected path of %d hops", want)
	assert.Equal(t, want, res.Hops, "path %v", res.Path)
	assert.Equal(t, res.Path[0], start)
	assert.Equal(t, res.Path[len(res.Path)-1], end)
	assertSimplePath(t, res.Path)
}

func shortestDistance(adj map[string][]string, start, end string) (int, bool) {
	dist := map[string]int{start: 0}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == end {
			return dist[cur], true
		}
		for _, next := range adj[cur] {
			if _, ok := dist[next]; !ok {
				dist[next] = dist[cur] + 1
				queue = append(queue, next)
			}
		}
	}
	return 0, false
}

func symmetrize(adj map[string][]string) map[string][]string {
	out := make(map[string][]string, len(adj))
	has := make(map[[2]string]bool)
	add := func(from, to string) {
		if has[[2]string{from, to}] {
			return
		}
		has[[2]string{from, to}] = true
		out[from] = append(out[from], to)
	}
	for from, targets := range adj {
		if _, ok := out[from]; !ok {
			out[from] = []string{}
		}
		for _, to := range targets {
			add(from, to)
			add(to, from)
		}
	}
	return out
}

func assertForwardPath(t *testing.T, adj map[string][]string, path []string) {
	t.Helper()
	for i := 0; i+1 < len(path); i++ {
		assert.Contains(t, adj[path[i]], path[i+1], "no link %q -> %q", path[i], path[i+1])
	}
}

func assertSimplePath(t *testing.T, path []string) {
	t.Helper()
	seen := make(map[string]struct{}, len(path))
	for _, node := range path {
		_, dup := seen[node]
		assert.False(t, dup, "node %q repeated in %v", node, path)
		seen[node] = struct{}{}
	}
}
