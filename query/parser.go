package query

// Parser consumes lexer tokens and builds compiled patterns.
type Parser struct {
	tokens  []Token
	current int
}

// NewParser creates a Parser over the given tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse builds every top-level pattern in declaration order. The pattern
// index it assigns is the pattern's priority for span resolution.
func (p *Parser) Parse() ([]*Pattern, error) {
	var patterns []*Pattern
	for p.peek().Type != TokenEOF {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		pat.Index = len(patterns)
		patterns = append(patterns, pat)
	}
	return patterns, nil
}

func (p *Parser) peek() Token { return p.tokens[p.current] }

func (p *Parser) peekAt(n int) Token {
	if p.current+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.current+n]
}

func (p *Parser) next() Token {
	t := p.tokens[p.current]
	if t.Type != TokenEOF {
		p.current++
	}
	return t
}

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	t := p.next()
	if t.Type != tt {
		return t, syntaxErrf(t.Position, "expected %s, found %q", what, t.Value)
	}
	return t, nil
}

// parsePattern parses either a bare shape or a predicate group
// ((shape) @cap (#pred ...) ...).
func (p *Parser) parsePattern() (*Pattern, error) {
	pat := &Pattern{}

	// A '(' immediately followed by '(', '[', '"' or a predicate opens a
	// group rather than a tagged shape.
	if p.peek().Type == TokenLParen && isGroupStart(p.peekAt(1).Type) {
		open := p.next() // consume '('
		root, err := p.parseTopShape()
		if err != nil {
			return nil, err
		}
		pat.Root = root

		for p.peek().Type != TokenRParen {
			if p.peek().Type == TokenEOF {
				return nil, syntaxErrf(open.Position, "unbalanced '(' in pattern group")
			}
			if p.peek().Type == TokenLParen && p.peekAt(1).Type == TokenPredicate {
				pred, err := p.parsePredicate()
				if err != nil {
					return nil, err
				}
				pat.Predicates = append(pat.Predicates, pred)
				continue
			}
			t := p.peek()
			return nil, syntaxErrf(t.Position, "a pattern group holds one shape followed by predicates, found %q", t.Value)
		}
		p.next() // consume ')'
	} else {
		root, err := p.parseTopShape()
		if err != nil {
			return nil, err
		}
		pat.Root = root
	}

	return pat, p.finishPattern(pat)
}

func isGroupStart(tt TokenType) bool {
	return tt == TokenLParen || tt == TokenLBracket || tt == TokenString || tt == TokenPredicate
}

// parseTopShape parses a top-level shape and its capture annotation.
// Quantifiers are only meaningful on child shapes.
func (p *Parser) parseTopShape() (*Shape, error) {
	shape, err := p.parseShape()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type == TokenQuantifier {
		return nil, syntaxErrf(t.Position, "quantifier %q is only valid on a child shape", t.Value)
	}
	if p.peek().Type == TokenCapture {
		shape.Capture = p.next().Value
	}
	return shape, nil
}

func (p *Parser) parseShape() (*Shape, error) {
	t := p.peek()
	switch t.Type {
	case TokenLParen:
		return p.parseTagShape()
	case TokenLBracket:
		return p.parseAlternation()
	case TokenString:
		p.next()
		return &Shape{Kind: ShapeToken, Tag: t.Value}, nil
	case TokenIdent:
		if t.Value == "_" {
			p.next()
			return &Shape{Kind: ShapeWildcard}, nil
		}
		return nil, syntaxErrf(t.Position, "bare identifier %q is not a shape; write (%s)", t.Value, t.Value)
	default:
		return nil, syntaxErrf(t.Position, "expected a shape, found %q", t.Value)
	}
}

// parseTagShape parses (tag children...). A tag of "_" matches any node
// kind while still constraining children.
func (p *Parser) parseTagShape() (*Shape, error) {
	open := p.next() // consume '('

	tag, err := p.expect(TokenIdent, "node kind")
	if err != nil {
		return nil, err
	}
	shape := &Shape{Kind: ShapeTag, Tag: tag.Value}

	for {
		t := p.peek()
		switch t.Type {
		case TokenRParen:
			p.next()
			return shape, nil

		case TokenEOF:
			return nil, syntaxErrf(open.Position, "unbalanced '('")

		case TokenCapture:
			// capture on the shape itself, before or between children
			p.next()
			if shape.Capture != "" {
				return nil, syntaxErrf(t.Position, "shape already captured as @%s", shape.Capture)
			}
			shape.Capture = t.Value

		case TokenBang:
			p.next()
			field, err := p.expect(TokenIdent, "field name after '!'")
			if err != nil {
				return nil, err
			}
			shape.Children = append(shape.Children, ChildShape{Field: field.Value, NegatedField: true})

		case TokenIdent:
			if t.Value == "_" {
				child, err := p.parseChild("")
				if err != nil {
					return nil, err
				}
				shape.Children = append(shape.Children, child)
				continue
			}
			// field constraint: ident ':' shape
			p.next()
			if _, err := p.expect(TokenColon, "':' after field name"); err != nil {
				return nil, err
			}
			child, err := p.parseChild(t.Value)
			if err != nil {
				return nil, err
			}
			shape.Children = append(shape.Children, child)

		case TokenLParen, TokenLBracket, TokenString:
			child, err := p.parseChild("")
			if err != nil {
				return nil, err
			}
			shape.Children = append(shape.Children, child)

		default:
			return nil, syntaxErrf(t.Position, "unexpected %q in shape", t.Value)
		}
	}
}

// parseChild parses one child constraint: shape, optional quantifier,
// optional capture.
func (p *Parser) parseChild(field string) (ChildShape, error) {
	shape, err := p.parseShape()
	if err != nil {
		return ChildShape{}, err
	}
	child := ChildShape{Field: field, Shape: shape}

	if p.peek().Type == TokenQuantifier {
		switch p.next().Value {
		case "*":
			child.Quantifier = QuantZeroOrMore
		case "+":
			child.Quantifier = QuantOneOrMore
		case "?":
			child.Quantifier = QuantZeroOrOne
		}
	}
	if p.peek().Type == TokenCapture {
		shape.Capture = p.next().Value
	}
	return child, nil
}

func (p *Parser) parseAlternation() (*Shape, error) {
	open := p.next() // consume '['
	shape := &Shape{Kind: ShapeAlternation}

	for {
		t := p.peek()
		switch t.Type {
		case TokenRBracket:
			p.next()
			if len(shape.Alternatives) == 0 {
				return nil, syntaxErrf(open.Position, "empty alternation")
			}
			return shape, nil
		case TokenEOF:
			return nil, syntaxErrf(open.Position, "unbalanced '['")
		default:
			alt, err := p.parseShape()
			if err != nil {
				return nil, err
			}
			shape.Alternatives = append(shape.Alternatives, alt)
		}
	}
}

// parsePredicate parses (#name arg...). Semantic checks against the
// predicate registry happen in finishPattern once captures are known.
func (p *Parser) parsePredicate() (Predicate, error) {
	p.next() // consume '('
	name := p.next()

	pred := Predicate{Name: name.Value}
	for {
		t := p.peek()
		switch t.Type {
		case TokenRParen:
			p.next()
			return pred, nil
		case TokenCapture:
			p.next()
			pred.Args = append(pred.Args, PredicateArg{Capture: t.Value})
		case TokenString, TokenIdent:
			p.next()
			pred.Args = append(pred.Args, PredicateArg{Literal: t.Value})
		case TokenEOF:
			return pred, syntaxErrf(name.Position, "unbalanced '(' in predicate #%s", name.Value)
		default:
			return pred, syntaxErrf(t.Position, "unexpected %q in predicate #%s", t.Value, name.Value)
		}
	}
}

// finishPattern collects captures and validates predicates against them.
func (p *Parser) finishPattern(pat *Pattern) error {
	seen := map[string]bool{}
	var walk func(*Shape) error
	walk = func(s *Shape) error {
		if s.Capture != "" {
			if seen[s.Capture] {
				return syntaxErr(0, ErrDuplicateCapture, "@%s", s.Capture)
			}
			seen[s.Capture] = true
			pat.captures = append(pat.captures, s.Capture)
		}
		for _, alt := range s.Alternatives {
			if err := walk(alt); err != nil {
				return err
			}
		}
		for _, c := range s.Children {
			if c.Shape == nil {
				continue
			}
			if err := walk(c.Shape); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(pat.Root); err != nil {
		return err
	}

	for i := range pat.Predicates {
		if err := checkPredicate(pat, &pat.Predicates[i]); err != nil {
			return err
		}
	}
	return nil
}
