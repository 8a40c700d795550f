package matcher

import (
	"strings"

	"github.com/syntria/sheen/query"
)

// Filter evaluates each match's predicates, in declaration order, against
// its capture bindings and keeps only matches whose filtering predicates all
// hold. set! directives never filter; their effect lives on the pattern's
// Props and travels with the surviving match.
//
// Predicate names were validated at compile time, so evaluation cannot fail;
// an unrecognized name here would be a compiler bug and evaluates to false.
func Filter(matches []Match, source []byte) []Match {
	filtered := make([]Match, 0, len(matches))
	for _, m := range matches {
		if keepMatch(&m, source) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func keepMatch(m *Match, source []byte) bool {
	for _, pred := range m.Pattern.Predicates {
		if !pred.IsFiltering() {
			continue
		}
		if !evalPredicate(m, pred, source) {
			return false
		}
	}
	return true
}

func evalPredicate(m *Match, pred query.Predicate, source []byte) bool {
	var result bool
	switch pred.Name {
	case "match?", "not-match?":
		text := captureText(m, pred.Args[0].Capture, source)
		// unanchored: the expression may match any substring of the
		// captured text
		result = pred.Regexp().MatchString(text)
	case "eq?", "not-eq?":
		left := captureText(m, pred.Args[0].Capture, source)
		right := pred.Args[1].Literal
		if pred.Args[1].IsCapture() {
			right = captureText(m, pred.Args[1].Capture, source)
		}
		result = left == right
	case "any-of?", "not-any-of?":
		text := captureText(m, pred.Args[0].Capture, source)
		for _, alt := range pred.Args[1:] {
			if text == alt.Literal {
				result = true
				break
			}
		}
	default:
		return false
	}

	if pred.Negated {
		return !result
	}
	return result
}

// captureText joins the text of every node bound under the capture, in
// binding order. A capture left unbound by an optional branch yields "".
func captureText(m *Match, name string, source []byte) string {
	nodes := m.NodesFor(name)
	switch len(nodes) {
	case 0:
		return ""
	case 1:
		return nodes[0].Text(source)
	}
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(n.Text(source))
	}
	return sb.String()
}
