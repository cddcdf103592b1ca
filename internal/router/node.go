package router

// node is one position in the segment trie. Nodes are created lazily
// during registration and never removed.
type node[H any] struct {
	static map[string]*node[H]

	param     *node[H]
	paramName string

	// wildcard children are always leaves.
	wildcard     *node[H]
	wildcardName string

	handlers map[Method]H
	patterns map[Method]string
}

func newNode[H any]() *node[H] {
	return &node[H]{}
}

// endpoint reports whether any route terminates at this node.
func (n *node[H]) endpoint() bool {
	return len(n.handlers) > 0
}

func (n *node[H]) handler(m Method) (H, bool) {
	h, ok := n.handlers[m]
	return h, ok
}

// child returns the child for seg, creating it if needed.
func (n *node[H]) child(seg Segment) *node[H] {
	switch seg.Kind {
	case SegmentParam:
		if n.param == nil {
			n.param = newNode[H]()
			n.paramName = seg.Value
		}
		return n.param
	case SegmentWildcard:
		if n.wildcard == nil {
			n.wildcard = newNode[H]()
			n.wildcardName = seg.Value
		}
		return n.wildcard
	default:
		if n.static == nil {
			n.static = make(map[string]*node[H])
		}
		c, ok := n.static[seg.Value]
		if !ok {
			c = newNode[H]()
			n.static[seg.Value] = c
		}
		return c
	}
}

// lookup returns the existing child for seg without creating it.
func (n *node[H]) lookup(seg Segment) *node[H] {
	switch seg.Kind {
	case SegmentParam:
		return n.param
	case SegmentWildcard:
		return n.wildcard
	default:
		return n.static[seg.Value]
	}
}

// set installs h for m and reports whether the method was new here.
func (n *node[H]) set(m Method, pattern string, h H) bool {
	if n.handlers == nil {
		n.handlers = make(map[Method]H)
		n.patterns = make(map[Method]string)
	}
	_, existed := n.handlers[m]
	n.handlers[m] = h
	n.patterns[m] = pattern
	return !existed
}
