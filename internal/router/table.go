package router

import (
	"sort"
	"strings"
	"sync"

	"github.com/vyrodovalexey/avaroute/internal/util"
)

// RouteMatch is the result of a successful resolution. Params is never
// nil and belongs to the caller.
type RouteMatch[H any] struct {
	Handler H
	Params  map[string]string
	Pattern string
	Method  Method
}

// RouteInfo describes one registered (method, pattern) pair.
type RouteInfo struct {
	Method  string
	Pattern string
}

type param struct {
	name  string
	value string
}

// Table is a segment trie mapping (method, path) to handlers.
// It is safe for concurrent use: registrations take the write lock and
// lookups the read lock.
type Table[H any] struct {
	mu       sync.RWMutex
	root     *node[H]
	routes   int
	byMethod map[Method]int
}

// NewTable creates an empty route table.
func NewTable[H any]() *Table[H] {
	return &Table[H]{
		root:     newNode[H](),
		byMethod: make(map[Method]int),
	}
}

// AddRoute registers h for method and pattern. Registering the same
// method and normalised pattern again replaces the handler. A rejected
// registration leaves the table unchanged.
func (t *Table[H]) AddRoute(method Method, pattern string, h H) error {
	_, err := t.add(method, pattern, h)
	return err
}

func (t *Table[H]) add(method Method, pattern string, h H) (bool, error) {
	if !method.Valid() {
		return false, util.NewUnsupportedMethodError(method.String(), SupportedMethods())
	}

	segments, err := ParsePattern(pattern)
	if err != nil {
		return false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkConflicts(pattern, segments); err != nil {
		return false, err
	}

	n := t.root
	for _, seg := range segments {
		n = n.child(seg)
	}

	added := n.set(method, pattern, h)
	if added {
		t.routes++
		t.byMethod[method]++
	}
	return !added, nil
}

// checkConflicts walks the existing trie along segments without
// mutating it and rejects a name that differs from the one already
// bound at the same position.
func (t *Table[H]) checkConflicts(pattern string, segments []Segment) error {
	n := t.root
	for _, seg := range segments {
		switch seg.Kind {
		case SegmentParam:
			if n.param != nil && n.paramName != seg.Value {
				return util.NewRouteConflictError(pattern, n.paramName, seg.Value)
			}
		case SegmentWildcard:
			if n.wildcard != nil && n.wildcardName != seg.Value {
				return util.NewRouteConflictError(pattern, n.wildcardName, seg.Value)
			}
		}

		n = n.lookup(seg)
		if n == nil {
			return nil
		}
	}
	return nil
}

// Match resolves path for method. It reports false when no route
// accepts; it never mutates shared state.
func (t *Table[H]) Match(method Method, path string) (*RouteMatch[H], bool) {
	segments := SplitPath(path)
	params := make([]param, 0, len(segments))

	t.mu.RLock()
	defer t.mu.RUnlock()

	n := search(t.root, method, segments, 0, &params)
	if n == nil {
		return nil, false
	}

	bound := make(map[string]string, len(params))
	for _, p := range params {
		bound[p.name] = p.value
	}

	h, _ := n.handler(method)
	return &RouteMatch[H]{
		Handler: h,
		Params:  bound,
		Pattern: n.patterns[method],
		Method:  method,
	}, true
}

// search walks the trie depth-first with static, then parameter, then
// wildcard priority at each level. Bindings pushed by a failed branch
// are truncated before the next sibling is tried.
func search[H any](n *node[H], method Method, segments []string, i int, params *[]param) *node[H] {
	if i == len(segments) {
		if _, ok := n.handler(method); ok {
			return n
		}
		if w := n.wildcard; w != nil {
			if _, ok := w.handler(method); ok {
				*params = append(*params, param{name: n.wildcardName})
				return w
			}
		}
		return nil
	}

	seg := segments[i]
	mark := len(*params)

	if child, ok := n.static[seg]; ok {
		if found := search(child, method, segments, i+1, params); found != nil {
			return found
		}
		*params = (*params)[:mark]
	}

	if n.param != nil && seg != "" {
		*params = append(*params, param{name: n.paramName, value: seg})
		if found := search(n.param, method, segments, i+1, params); found != nil {
			return found
		}
		*params = (*params)[:mark]
	}

	if w := n.wildcard; w != nil {
		if _, ok := w.handler(method); ok {
			*params = append(*params, param{
				name:  n.wildcardName,
				value: strings.Join(segments[i:], "/"),
			})
			return w
		}
	}

	return nil
}

// Len returns the number of distinct (method, pattern) registrations.
func (t *Table[H]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.routes
}

// countByMethod returns registration counts keyed by method name.
func (t *Table[H]) countByMethod() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	counts := make(map[string]int, len(t.byMethod))
	for m, c := range t.byMethod {
		counts[m.String()] = c
	}
	return counts
}

// Routes returns every registration sorted by pattern, then method.
func (t *Table[H]) Routes() []RouteInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	routes := make([]RouteInfo, 0, t.routes)
	collect(t.root, &routes)

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

func collect[H any](n *node[H], out *[]RouteInfo) {
	if n.endpoint() {
		for m, p := range n.patterns {
			*out = append(*out, RouteInfo{Method: m.String(), Pattern: p})
		}
	}
	for _, c := range n.static {
		collect(c, out)
	}
	if n.param != nil {
		collect(n.param, out)
	}
	if n.wildcard != nil {
		collect(n.wildcard, out)
	}
}
