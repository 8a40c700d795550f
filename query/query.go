package query

// Compile parses rule source into an immutable Query. Compilation is pure:
// the same source always yields the same compiled patterns, which makes the
// result safe to cache per language and share across matching passes.
//
// All rule-source problems surface here: shape syntax errors, unknown
// predicate names, predicates referencing unbound captures, invalid match?
// regexes. A Query that compiles never fails during matching.
func Compile(source string) (*Query, error) {
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		return nil, err
	}

	patterns, err := NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}

	q := &Query{patterns: patterns}
	seen := map[string]bool{}
	for _, pat := range patterns {
		for _, name := range pat.captures {
			if !seen[name] {
				seen[name] = true
				q.captures = append(q.captures, name)
			}
		}
	}
	return q, nil
}
