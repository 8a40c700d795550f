package matcher

import (
	"context"

	"github.com/syntria/sheen/internal/tree"
	"github.com/syntria/sheen/query"
)

// Matcher runs one compiled query against trees parsed from one document.
// It holds no mutable state between runs; a Matcher may be reused and the
// underlying query shared across goroutines.
type Matcher struct {
	query *query.Query
}

// New creates a Matcher for the given compiled query. Structural matching
// never consults the document text; predicate filtering does, through Filter.
func New(q *query.Query) *Matcher {
	return &Matcher{query: q}
}

// Matches walks the subtree rooted at root in pre-order and attempts every
// pattern, in declaration order, at every node. The context is polled
// between nodes, so a long pass over a large tree can be cancelled
// cooperatively.
//
// The result is deterministic: same tree, same query, same match sequence.
func (m *Matcher) Matches(ctx context.Context, root *tree.Node) ([]Match, error) {
	var matches []Match
	var walkErr error

	root.Walk(func(node *tree.Node) bool {
		if err := ctx.Err(); err != nil {
			walkErr = err
			return false
		}
		for _, pat := range m.query.Patterns() {
			b := &binder{}
			if m.matchShape(pat.Root, node, b) {
				matches = append(matches, Match{
					PatternIndex: pat.Index,
					Pattern:      pat,
					Root:         node,
					Captures:     b.captures(),
				})
			}
		}
		return true
	})

	if walkErr != nil {
		return nil, walkErr
	}
	return matches, nil
}

// matchShape unifies a shape with a node. On failure the binder is restored
// to its state at entry.
func (m *Matcher) matchShape(s *query.Shape, node *tree.Node, b *binder) bool {
	mark := b.mark()

	switch s.Kind {
	case query.ShapeWildcard:
		// bare _ matches any node, named or anonymous

	case query.ShapeToken:
		if node.Named || node.Kind != s.Tag {
			return false
		}

	case query.ShapeAlternation:
		matched := false
		for _, alt := range s.Alternatives {
			if m.matchShape(alt, node, b) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}

	case query.ShapeTag:
		// (_) constrains children without fixing the kind, but still only
		// matches named nodes
		if !node.Named {
			return false
		}
		if s.Tag != "_" && node.Kind != s.Tag {
			return false
		}
		if !m.matchChildren(s.Children, node, b) {
			b.rollback(mark)
			return false
		}
	}

	b.bind(s.Capture, node)
	return true
}

// matchChildren matches the ordered child constraints against the node's
// actual children. Listed constraints must match in order but need not be
// adjacent; unlisted children are skipped freely.
func (m *Matcher) matchChildren(constraints []query.ChildShape, node *tree.Node, b *binder) bool {
	// Negated field assertions are node-global, not positional; check them
	// up front.
	for _, c := range constraints {
		if c.NegatedField && node.ChildByField(c.Field) != nil {
			return false
		}
	}
	return m.matchSeq(constraints, 0, node.Children(), 0, b)
}

// matchSeq matches constraints[ci:] against children[xi:].
func (m *Matcher) matchSeq(cs []query.ChildShape, ci int, children []*tree.Node, xi int, b *binder) bool {
	if ci == len(cs) {
		return true
	}
	c := cs[ci]
	if c.NegatedField {
		return m.matchSeq(cs, ci+1, children, xi, b)
	}

	switch c.Quantifier {
	case query.QuantNone:
		return m.matchOne(cs, ci, children, xi, b)

	case query.QuantZeroOrOne:
		if m.matchOne(cs, ci, children, xi, b) {
			return true
		}
		return m.matchSeq(cs, ci+1, children, xi, b)

	case query.QuantZeroOrMore, query.QuantOneOrMore:
		return m.matchRepeated(cs, ci, children, xi, b)
	}
	return false
}

// matchOne consumes exactly one child for constraint ci, trying candidates
// left to right and backtracking into the remaining sequence.
func (m *Matcher) matchOne(cs []query.ChildShape, ci int, children []*tree.Node, xi int, b *binder) bool {
	c := cs[ci]
	for j := xi; j < len(children); j++ {
		if c.Field != "" && children[j].Field != c.Field {
			continue
		}
		mark := b.mark()
		if m.matchShape(c.Shape, children[j], b) && m.matchSeq(cs, ci+1, children, j+1, b) {
			return true
		}
		b.rollback(mark)
	}
	return false
}

// matchRepeated handles * and + constraints: consume matching children
// greedily, then give back one at a time until the rest of the sequence
// fits. Quantifiers apply to a single child-list level, so backtracking is
// bounded by the child count.
func (m *Matcher) matchRepeated(cs []query.ChildShape, ci int, children []*tree.Node, xi int, b *binder) bool {
	c := cs[ci]
	min := 0
	if c.Quantifier == query.QuantOneOrMore {
		min = 1
	}

	type consumed struct {
		child int // index into children
		mark  int // binder mark before this child's bindings
	}
	var taken []consumed

	// greedy pass
	next := xi
	for j := xi; j < len(children); j++ {
		if c.Field != "" && children[j].Field != c.Field {
			continue
		}
		mark := b.mark()
		if m.matchShape(c.Shape, children[j], b) {
			taken = append(taken, consumed{child: j, mark: mark})
			next = j + 1
		} else {
			b.rollback(mark)
		}
	}

	// back off one consumed child at a time; the remainder resumes right
	// after the last child still held, so it can reach children lying in
	// gaps the greedy pass skipped over
	for {
		if len(taken) >= min && m.matchSeq(cs, ci+1, children, next, b) {
			return true
		}
		if len(taken) == 0 {
			return false
		}
		last := taken[len(taken)-1]
		b.rollback(last.mark)
		taken = taken[:len(taken)-1]
		if len(taken) > 0 {
			next = taken[len(taken)-1].child + 1
		} else {
			next = xi
		}
	}
}
