package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TokenType defines the token kinds produced by the lexer.
type TokenType int

const (
	TokenLParen   TokenType = iota // '('
	TokenRParen                    // ')'
	TokenLBracket                  // '['
	TokenRBracket                  // ']'
	TokenIdent                     // node kind or field name
	TokenString                    // "literal"
	TokenCapture                   // @name
	TokenPredicate                 // #name? or #name!
	TokenColon                     // ':' after a field name
	TokenBang                      // '!' negated field assertion
	TokenQuantifier                // '*', '+' or '?'
	TokenEOF
)

// Token is a single lexical token with its byte offset in the rule source.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

// Quantifier defines repetition over a child shape.
type Quantifier int

const (
	QuantNone       Quantifier = iota // exactly once
	QuantZeroOrMore                   // *
	QuantOneOrMore                    // +
	QuantZeroOrOne                    // ?
)

func (q Quantifier) String() string {
	switch q {
	case QuantZeroOrMore:
		return "*"
	case QuantOneOrMore:
		return "+"
	case QuantZeroOrOne:
		return "?"
	default:
		return ""
	}
}

// ShapeKind discriminates the closed set of shape expression variants.
type ShapeKind int

const (
	ShapeTag         ShapeKind = iota // (tag child...)
	ShapeToken                        // "literal" anonymous token
	ShapeAlternation                  // [a b c]
	ShapeWildcard                     // _
)

// Shape is one compiled tree-shape expression. The matcher interprets the
// variant tagged by Kind; no reflection is involved.
type Shape struct {
	Kind ShapeKind

	// Tag is the node kind for ShapeTag, or the literal token text for
	// ShapeToken.
	Tag string

	// Children constrains the ordered child list of a ShapeTag node.
	Children []ChildShape

	// Alternatives holds the branches of a ShapeAlternation.
	Alternatives []*Shape

	// Capture is the name bound to the node this shape matches, without the
	// '@' sigil. Empty when the shape is not captured.
	Capture string
}

// ChildShape is one entry in a parent shape's child constraint list.
type ChildShape struct {
	// Field names the child edge this constraint applies to; "" matches
	// positional children.
	Field string

	// NegatedField asserts the absence of Field; Shape is nil in that case.
	NegatedField bool

	Quantifier Quantifier

	Shape *Shape
}

// PredicateArg is either a capture reference or a literal value.
type PredicateArg struct {
	Capture string // capture name, without '@', when referencing a capture
	Literal string // literal text otherwise
}

// IsCapture reports whether the argument references a capture.
func (a PredicateArg) IsCapture() bool { return a.Capture != "" }

// Predicate is one compiled guard attached to a pattern. Filtering
// predicates (match?, eq?, any-of? and their not- negations) must hold for a
// match to survive; set! only attaches metadata.
type Predicate struct {
	Name    string
	Negated bool
	Args    []PredicateArg

	// re holds the compiled expression of a match? predicate. It is
	// compiled once, at pattern compile time, so regex syntax errors
	// surface as compile errors rather than during matching.
	re *regexp.Regexp
}

// Regexp exposes the compiled match? expression; nil for other predicates.
func (p Predicate) Regexp() *regexp.Regexp { return p.re }

// Pattern is one compiled top-level pattern. Patterns are immutable after
// compilation and shared read-only across matching passes.
type Pattern struct {
	// Index is the declaration position in the rule source. It doubles as
	// the pattern's priority: at equal span ranges, higher index wins.
	Index int

	Root *Shape

	Predicates []Predicate

	// Props holds #set! directives (key → value), e.g.
	// "injection.language" → "html".
	Props map[string]string

	captures []string
}

// Captures returns the capture names bound by the pattern, in declaration
// order. Names are unique within one pattern.
func (p *Pattern) Captures() []string { return p.captures }

// Query is an ordered set of compiled patterns for one language.
type Query struct {
	patterns []*Pattern
	captures []string // unique capture names across all patterns
}

func (q *Query) Patterns() []*Pattern { return q.patterns }
func (q *Query) PatternCount() int    { return len(q.patterns) }

// CaptureNames returns every capture name used by the query, in first-use
// order.
func (q *Query) CaptureNames() []string { return q.captures }

func (s *Shape) String() string {
	var sb strings.Builder
	s.write(&sb)
	return sb.String()
}

func (s *Shape) write(sb *strings.Builder) {
	switch s.Kind {
	case ShapeWildcard:
		sb.WriteByte('_')
	case ShapeToken:
		sb.WriteString(strconv.Quote(s.Tag))
	case ShapeAlternation:
		sb.WriteByte('[')
		for i, alt := range s.Alternatives {
			if i > 0 {
				sb.WriteByte(' ')
			}
			alt.write(sb)
		}
		sb.WriteByte(']')
	case ShapeTag:
		sb.WriteByte('(')
		sb.WriteString(s.Tag)
		for _, c := range s.Children {
			sb.WriteByte(' ')
			if c.NegatedField {
				fmt.Fprintf(sb, "!%s", c.Field)
				continue
			}
			if c.Field != "" {
				fmt.Fprintf(sb, "%s: ", c.Field)
			}
			c.Shape.write(sb)
			sb.WriteString(c.Quantifier.String())
		}
		sb.WriteByte(')')
	}
	if s.Capture != "" {
		fmt.Fprintf(sb, " @%s", s.Capture)
	}
}
