package query

import "strings"

// Lexer scans rule source into tokens. The pattern language is the
// s-expression query dialect: parenthesized shapes, bracketed alternations,
// quoted anonymous tokens, field colons, '@' captures, '#' predicates and
// ';' line comments.
type Lexer struct {
	input    string
	position int
	tokens   []Token
}

// NewLexer returns a Lexer over the given rule source.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, tokens: make([]Token, 0)}
}

// Tokenize scans the entire input. Scanning itself only fails on malformed
// strings and stray characters; structural problems are left to the parser.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.input) {
		start := l.position
		c := l.input[l.position]
		switch {
		case c == ';':
			l.skipComment()
		case isSpace(c):
			l.position++
		case c == '(':
			l.addToken(TokenLParen, "(", start)
			l.position++
		case c == ')':
			l.addToken(TokenRParen, ")", start)
			l.position++
		case c == '[':
			l.addToken(TokenLBracket, "[", start)
			l.position++
		case c == ']':
			l.addToken(TokenRBracket, "]", start)
			l.position++
		case c == ':':
			l.addToken(TokenColon, ":", start)
			l.position++
		case c == '!':
			l.addToken(TokenBang, "!", start)
			l.position++
		case c == '*' || c == '+' || c == '?':
			l.addToken(TokenQuantifier, string(c), start)
			l.position++
		case c == '@':
			l.position++
			name := l.lexIdent()
			if name == "" {
				return nil, syntaxErrf(start, "expected capture name after '@'")
			}
			l.addToken(TokenCapture, name, start)
		case c == '#':
			l.position++
			name := l.lexIdent()
			// the sigil suffix is part of the predicate name: '?' marks a
			// filter, '!' a directive
			if l.position < len(l.input) && (l.input[l.position] == '?' || l.input[l.position] == '!') {
				name += string(l.input[l.position])
				l.position++
			}
			if name == "" {
				return nil, syntaxErrf(start, "expected predicate name after '#'")
			}
			l.addToken(TokenPredicate, name, start)
		case c == '"':
			s, err := l.lexString()
			if err != nil {
				return nil, err
			}
			l.addToken(TokenString, s, start)
		case isIdentStart(c):
			l.addToken(TokenIdent, l.lexIdent(), start)
		default:
			return nil, syntaxErrf(start, "unexpected character %q", string(c))
		}
	}

	l.addToken(TokenEOF, "", l.position)
	return l.tokens, nil
}

func (l *Lexer) skipComment() {
	for l.position < len(l.input) && l.input[l.position] != '\n' {
		l.position++
	}
}

// lexIdent scans a node kind, field name, capture name or predicate name.
// Dots appear in capture names like "punctuation.special".
func (l *Lexer) lexIdent() string {
	start := l.position
	for l.position < len(l.input) && isIdentByte(l.input[l.position]) {
		l.position++
	}
	return l.input[start:l.position]
}

func (l *Lexer) lexString() (string, error) {
	start := l.position
	l.position++ // consume opening '"'
	var sb strings.Builder
	for l.position < len(l.input) {
		c := l.input[l.position]
		if c == '\\' && l.position+1 < len(l.input) {
			l.position++
			switch esc := l.input[l.position]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(esc)
			}
			l.position++
			continue
		}
		if c == '"' {
			l.position++
			return sb.String(), nil
		}
		if c == '\n' {
			break
		}
		sb.WriteByte(c)
		l.position++
	}
	return "", syntaxErrf(start, "unterminated string")
}

func (l *Lexer) addToken(t TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{Type: t, Value: value, Position: pos})
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9' || c == '.' || c == '-'
}
