// Package tree holds the read-only concrete syntax tree the matching engine
// walks. Trees are produced by an external parser; this package only models
// them and reads serialized parser dumps.
package tree

import (
	"fmt"

	"github.com/syntria/sheen/internal/types"
)

// Node is one node of a parsed syntax tree. Nodes are immutable once the
// tree is built; the matcher only ever reads them.
type Node struct {
	// Kind is the grammar tag, e.g. "atx_heading". For anonymous leaf
	// tokens the kind is the literal token text, e.g. "#".
	Kind string

	// Named distinguishes grammar rules from anonymous literal tokens.
	Named bool

	// Field is the name of the edge from the parent to this node, or ""
	// for positional children.
	Field string

	Range types.Range

	children []*Node
	parent   *Node
}

// NewNode builds a named node. Children are attached with AddChild.
func NewNode(kind string, start, end uint32) *Node {
	return &Node{Kind: kind, Named: true, Range: types.Range{Start: start, End: end}}
}

// NewToken builds an anonymous leaf token node.
func NewToken(text string, start, end uint32) *Node {
	return &Node{Kind: text, Named: false, Range: types.Range{Start: start, End: end}}
}

// AddChild appends a child and sets its parent back-reference. Children must
// be appended in source order.
func (n *Node) AddChild(child *Node) *Node {
	child.parent = n
	n.children = append(n.children, child)
	return n
}

// AddField appends a child reachable through the given field name.
func (n *Node) AddField(field string, child *Node) *Node {
	child.Field = field
	return n.AddChild(child)
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) ChildCount() int   { return len(n.children) }
func (n *Node) Children() []*Node { return n.children }
func (n *Node) StartByte() uint32 { return n.Range.Start }
func (n *Node) EndByte() uint32   { return n.Range.End }

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// ChildByField returns the first child attached under the given field name,
// or nil if the field is absent.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// Text returns the source text spanned by the node. The caller supplies the
// document the tree was parsed from.
func (n *Node) Text(source []byte) string {
	start, end := int(n.Range.Start), int(n.Range.End)
	if start < 0 || end > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}

// Walk visits the subtree rooted at n in pre-order. Returning false from fn
// skips the node's children (the node itself has already been visited).
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Validate checks the structural invariants the matcher relies on: children
// ordered by start offset, pairwise disjoint, and contained in the parent.
func (n *Node) Validate() error {
	var prevEnd uint32
	for i, c := range n.children {
		if !n.Range.Contains(c.Range) {
			return fmt.Errorf("tree: child %q %v escapes parent %q %v", c.Kind, c.Range, n.Kind, n.Range)
		}
		if i > 0 && c.Range.Start < prevEnd {
			return fmt.Errorf("tree: children of %q overlap at %v", n.Kind, c.Range)
		}
		prevEnd = c.Range.End
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) String() string {
	if n.Named {
		return fmt.Sprintf("(%s %v)", n.Kind, n.Range)
	}
	return fmt.Sprintf("(%q %v)", n.Kind, n.Range)
}
