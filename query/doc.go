/*
Package query compiles declarative highlight rules into executable pattern
sets. It is the first phase of the highlighting pipeline: rule source goes
in, an ordered immutable Query comes out, and the matcher interprets that
Query against syntax trees.

# Rule syntax

Rules are written in the s-expression query dialect used by tree-sitter
highlight files:

  - (tag ...) matches a node whose kind equals the tag. Children listed
    inside the parentheses constrain the node's ordered child list.

  - [a b c] matches if any alternative matches.

  - field: (tag) constrains the child reached through a named field edge,
    and !field asserts that the field is absent.

  - _ matches any single node; (_ ...) matches any node kind while still
    constraining children.

  - "text" matches an anonymous literal token, used for keywords and
    operators.

  - A child shape may carry a quantifier: * (zero or more), + (one or
    more), ? (optional). Quantifiers apply to one child-list level and do
    not nest.

  - @name binds the matched node under a capture name. Capture names are
    unique within one pattern and map to style tags downstream.

  - (#match? @cap "re"), (#eq? @cap "lit"), (#any-of? @cap "a" "b") and
    their not- forms filter matches by captured text. (#set! key value)
    attaches pattern metadata such as injection.language without filtering.

  - ; starts a line comment.

# Priority

Pattern order in the source is significant: each pattern records its
declaration index, and when two patterns produce spans over the same byte
range the later-declared pattern wins. Rule files rely on this to override
generic rules with specific ones further down.

# Usage

	q, err := query.Compile(src)
	if err != nil {
		// compile-time diagnosis: *query.SyntaxError, possibly wrapping
		// ErrUnknownPredicate or ErrUnknownCapture
	}
	for _, pat := range q.Patterns() {
		...
	}

Compilation is deterministic and side-effect free. Compiled queries are
immutable and safe for concurrent use by any number of matching passes.
*/
package query
