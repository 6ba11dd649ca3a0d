package search

// frontier is the breadth-first state of one search side.
type frontier struct {
	origin  string
	visited map[string]struct{}
	parent  map[string]string // origin has no entry
	depth   map[string]int
	queue   []string
}

func newFrontier(origin string) *frontier {
	return &frontier{
		origin:  origin,
		visited: map[string]struct{}{origin: {}},
		parent:  map[string]string{},
		depth:   map[string]int{origin: 1},
		queue:   []string{origin},
	}
}

func (f *frontier) pending() int {
	return len(f.queue)
}

func (f *frontier) seen(node string) bool {
	_, ok := f.visited[node]
	return ok
}

// visit records node as reached from parent. It reports false when the
// node was already visited on this side.
func (f *frontier) visit(node, parent string) bool {
	if f.seen(node) {
		return false
	}
	f.visited[node] = struct{}{}
	f.parent[node] = parent
	f.depth[node] = f.depth[parent] + 1
	return true
}

// chain walks from node back to the origin, node first.
func (f *frontier) chain(node string) []string {
	out := []string{node}
	for node != f.origin {
		node = f.parent[node]
		out = append(out, node)
	}
	return out
}
