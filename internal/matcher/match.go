// Package matcher walks a syntax tree against a compiled query, producing
// raw matches, and filters them through predicate evaluation. Matching is a
// pure function of (tree, query): re-running it yields identical results.
package matcher

import (
	"github.com/syntria/sheen/internal/tree"
	"github.com/syntria/sheen/query"
)

// Capture is one bound capture within a match. Quantified child shapes bind
// several nodes under the same name.
type Capture struct {
	Name  string
	Nodes []*tree.Node
}

// Match is the result of one pattern matching at one subtree root,
// unfiltered by predicates.
type Match struct {
	// PatternIndex is the pattern's declaration index in its query, which
	// downstream resolution uses as priority.
	PatternIndex int

	Pattern *query.Pattern

	Root *tree.Node

	// Captures holds the bound captures in binding order.
	Captures []Capture
}

// NodesFor returns the nodes bound under the given capture name, or nil.
func (m *Match) NodesFor(name string) []*tree.Node {
	for _, c := range m.Captures {
		if c.Name == name {
			return c.Nodes
		}
	}
	return nil
}

// binding is one (name, node) pair recorded during structural unification.
// Bindings are folded into Captures only after a pattern fully matches.
type binding struct {
	name string
	node *tree.Node
}

// binder accumulates bindings with checkpoint/rollback so failed unification
// branches leave no trace.
type binder struct {
	bindings []binding
}

func (b *binder) bind(name string, node *tree.Node) {
	if name == "" {
		return
	}
	b.bindings = append(b.bindings, binding{name: name, node: node})
}

func (b *binder) mark() int { return len(b.bindings) }

func (b *binder) rollback(mark int) { b.bindings = b.bindings[:mark] }

// captures groups the accumulated bindings by name, preserving first-bind
// order of names and node order within a name.
func (b *binder) captures() []Capture {
	var out []Capture
	index := map[string]int{}
	for _, bd := range b.bindings {
		if i, ok := index[bd.name]; ok {
			out[i].Nodes = append(out[i].Nodes, bd.node)
			continue
		}
		index[bd.name] = len(out)
		out = append(out, Capture{Name: bd.name, Nodes: []*tree.Node{bd.node}})
	}
	return out
}
