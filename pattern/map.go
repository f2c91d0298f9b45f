package pattern

import "fmt"

// edgeKind distinguishes the three edge shapes a trie node's children
// may be keyed by, per spec.md §3's PatternMap trie node data model.
type edgeKind int

const (
	edgeLiteral edgeKind = iota
	edgeSegmentWildcard
	edgeTerminalWildcard
)

type edgeKey struct {
	kind    edgeKind
	literal string // only meaningful when kind == edgeLiteral
}

func edgeKeyFor(t token) edgeKey {
	switch t.kind {
	case tokParam:
		return edgeKey{kind: edgeSegmentWildcard}
	case tokWildcard:
		return edgeKey{kind: edgeTerminalWildcard}
	default:
		return edgeKey{kind: edgeLiteral, literal: t.text}
	}
}

// nodeID indexes into Map's node arena. The zero value is the root.
type nodeID int

const noParent nodeID = -1

type trieNode[V any] struct {
	parent     nodeID
	parentEdge edgeKey
	paramName  string // set when parentEdge.kind == edgeSegmentWildcard
	children   map[edgeKey]nodeID

	hasValue bool
	value    V
	pattern  *Pattern // the exact Pattern object that last set value
}

// Map is a trie mapping Patterns to values of type V, keyed on path
// tokens with two sentinel edge kinds (segment-wildcard and terminal
// wildcard) per spec.md §4.2. Nodes live in a slice-backed arena indexed
// by nodeID so that Delete never needs a weak back-reference (spec.md
// §9's "Parent/child references" redesign note): edges, forward and
// back, are plain nodeID pairs.
type Map[V any] struct {
	nodes []trieNode[V]
}

// NewMap constructs an empty Map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{nodes: []trieNode[V]{{parent: noParent}}}
}

func (m *Map[V]) ensureRoot() {
	if len(m.nodes) == 0 {
		m.nodes = []trieNode[V]{{parent: noParent}}
	}
}

// Set inserts value at the node reached by p's token sequence. Per the
// teacher's pathmux tree (tree_test.go), a literal child, a
// segment-wildcard child, and a terminal-wildcard child all coexist as
// siblings of the same node — Resolve's precedence, not Set's
// admission, is what makes lookup unambiguous. The only conflicts Set
// itself rejects are a segment-wildcard or terminal-wildcard edge
// reused under a different parameter name than the one that first
// created it, and re-setting an already-reachable leaf with a *Pattern
// object other than the one previously used to reach it (spec.md §9
// resolves the "silent override" open question this way — see
// DESIGN.md).
func (m *Map[V]) Set(p *Pattern, value V) error {
	m.ensureRoot()
	cur := nodeID(0)

	for _, t := range p.tokens {
		key := edgeKeyFor(t)

		child, ok := m.nodes[cur].children[key]
		if !ok {
			child = nodeID(len(m.nodes))
			m.nodes = append(m.nodes, trieNode[V]{parent: cur, parentEdge: key})
			if key.kind == edgeSegmentWildcard || key.kind == edgeTerminalWildcard {
				m.nodes[child].paramName = t.text
			}
			if m.nodes[cur].children == nil {
				m.nodes[cur].children = make(map[edgeKey]nodeID)
			}
			m.nodes[cur].children[key] = child
		} else if key.kind == edgeSegmentWildcard || key.kind == edgeTerminalWildcard {
			if existing := m.nodes[child].paramName; existing != t.text {
				return fmt.Errorf("pattern %q: wildcard named %q conflicts with %q already registered at this position", p.raw, t.text, existing)
			}
		}
		cur = child
	}

	leaf := &m.nodes[cur]
	if leaf.hasValue && leaf.pattern != p {
		return fmt.Errorf("pattern %q: a different pattern is already registered at this node", p.raw)
	}
	leaf.hasValue = true
	leaf.value = value
	leaf.pattern = p
	return nil
}

// Get traverses edges using p's own token sequence — literal-for-literal,
// and the explicit sentinel keys for parameter/wildcard tokens. It does
// not match sentinels against literal path segments; use Resolve for
// that.
func (m *Map[V]) Get(p *Pattern) (V, bool) {
	var zero V
	if len(m.nodes) == 0 {
		return zero, false
	}
	cur := nodeID(0)
	for _, t := range p.tokens {
		key := edgeKeyFor(t)
		child, ok := m.nodes[cur].children[key]
		if !ok {
			return zero, false
		}
		cur = child
	}
	n := &m.nodes[cur]
	if !n.hasValue {
		return zero, false
	}
	return n.value, true
}

// Has reports whether p is registered with a value.
func (m *Map[V]) Has(p *Pattern) bool {
	_, ok := m.Get(p)
	return ok
}

// Delete removes the value registered at p, pruning any now-childless,
// valueless nodes back up toward the root via the parent back-edges.
// Reports whether a value was present.
func (m *Map[V]) Delete(p *Pattern) bool {
	if len(m.nodes) == 0 {
		return false
	}
	cur := nodeID(0)
	for _, t := range p.tokens {
		key := edgeKeyFor(t)
		child, ok := m.nodes[cur].children[key]
		if !ok {
			return false
		}
		cur = child
	}

	n := &m.nodes[cur]
	if !n.hasValue {
		return false
	}
	n.hasValue = false
	var zero V
	n.value = zero
	n.pattern = nil

	// Prune empty leaves upward. The arena never reclaims slot indices
	// (simpler than compaction, and indices must stay stable for any
	// caller holding a nodeID), only edges are removed.
	for cur != 0 {
		node := &m.nodes[cur]
		if node.hasValue || len(node.children) > 0 {
			break
		}
		parent := node.parent
		delete(m.nodes[parent].children, node.parentEdge)
		cur = parent
	}
	return true
}

// Resolve performs the router's path lookup (spec.md §4.2). Because a
// node may carry a literal, a segment-wildcard, and a terminal-wildcard
// child all at once (per the teacher's pathmux tree), a single forward
// pass cannot tell which one ultimately leads to a registered leaf: a
// segment-wildcard branch that dead-ends must fall back to a literal
// sibling already rejected, or to a terminal wildcard further down. So
// Resolve walks the trie with backtracking, trying a literal match
// first, then the segment-wildcard child, and only then the terminal
// wildcard — mirroring the precedence the fixture in map_test.go
// exercises (an exact "/date/:year/:month/:post" must win over
// "/date/:year/:month/*post" when exactly one segment remains, but the
// wildcard must still catch two or more). An empty path segment
// (consecutive or leading "/") never matches.
func (m *Map[V]) Resolve(path string) (V, Extraction, bool) {
	var zero V

	if len(m.nodes) == 0 {
		return zero, Extraction{}, false
	}

	segments := splitSegments(path)
	for _, s := range segments {
		if s == "" {
			return zero, Extraction{}, false
		}
	}

	return m.resolveFrom(nodeID(0), segments, 0)
}

func (m *Map[V]) resolveFrom(cur nodeID, segments []string, i int) (V, Extraction, bool) {
	var zero V
	n := &m.nodes[cur]

	if i == len(segments) {
		if !n.hasValue {
			return zero, Extraction{}, false
		}
		return n.value, Extraction{}, true
	}
	seg := segments[i]

	if child, ok := n.children[edgeKey{kind: edgeLiteral, literal: seg}]; ok {
		if v, ext, ok := m.resolveFrom(child, segments, i+1); ok {
			ext.First = append(append([]string(nil), seg), ext.First...)
			return v, ext, true
		}
	}

	if child, ok := n.children[edgeKey{kind: edgeSegmentWildcard}]; ok {
		if decoded, err := decodeSegment(seg); err == nil {
			if v, ext, ok := m.resolveFrom(child, segments, i+1); ok {
				if ext.Params == nil {
					ext.Params = make(map[string]string)
				}
				ext.Params[m.nodes[child].paramName] = decoded
				return v, ext, true
			}
		}
	}

	if child, ok := n.children[edgeKey{kind: edgeTerminalWildcard}]; ok {
		rest := segments[i:]
		decoded := make([]string, len(rest))
		for j, s := range rest {
			d, err := decodeSegment(s)
			if err != nil {
				return zero, Extraction{}, false
			}
			decoded[j] = d
		}
		leaf := &m.nodes[child]
		if leaf.hasValue {
			return leaf.value, Extraction{Last: decoded}, true
		}
	}

	return zero, Extraction{}, false
}
