package query

import (
	"regexp"
	"sort"
)

// predicateSpec describes one entry of the fixed predicate registry.
// Validation runs at compile time; matching never sees an unknown predicate.
type predicateSpec struct {
	filtering bool
	negated   bool
	check     func(pat *Pattern, pred *Predicate) error
}

var predicateRegistry = map[string]predicateSpec{
	"match?":      {filtering: true, check: checkMatch},
	"not-match?":  {filtering: true, negated: true, check: checkMatch},
	"eq?":         {filtering: true, check: checkEq},
	"not-eq?":     {filtering: true, negated: true, check: checkEq},
	"any-of?":     {filtering: true, check: checkAnyOf},
	"not-any-of?": {filtering: true, negated: true, check: checkAnyOf},
	"set!":        {check: checkSet},
}

// PredicateNames returns the registry's predicate names, sorted, for
// rule-set introspection and diagnostics.
func PredicateNames() []string {
	names := make([]string, 0, len(predicateRegistry))
	for name := range predicateRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsFiltering reports whether the predicate must hold for a match to
// survive. set! attaches metadata and never filters.
func (p Predicate) IsFiltering() bool {
	return predicateRegistry[p.Name].filtering
}

func checkPredicate(pat *Pattern, pred *Predicate) error {
	spec, ok := predicateRegistry[pred.Name]
	if !ok {
		return syntaxErr(0, ErrUnknownPredicate, "#%s", pred.Name)
	}
	pred.Negated = spec.negated

	for _, arg := range pred.Args {
		if arg.IsCapture() && !bindsCapture(pat, arg.Capture) {
			return syntaxErr(0, ErrUnknownCapture, "#%s references @%s", pred.Name, arg.Capture)
		}
	}
	return spec.check(pat, pred)
}

func bindsCapture(pat *Pattern, name string) bool {
	for _, c := range pat.captures {
		if c == name {
			return true
		}
	}
	return false
}

// checkMatch validates (#match? @cap "regex") and compiles the expression.
// The expression is applied unanchored, so "rust" also matches "rustacean";
// rule files that need exact names use eq? or any-of? instead.
func checkMatch(_ *Pattern, pred *Predicate) error {
	if len(pred.Args) != 2 || !pred.Args[0].IsCapture() || pred.Args[1].IsCapture() {
		return syntaxErrf(0, "#%s expects a capture and a regex literal", pred.Name)
	}
	re, err := regexp.Compile(pred.Args[1].Literal)
	if err != nil {
		return syntaxErrf(0, "#%s: invalid regex: %v", pred.Name, err)
	}
	pred.re = re
	return nil
}

// checkEq validates (#eq? @cap "literal") or (#eq? @a @b).
func checkEq(_ *Pattern, pred *Predicate) error {
	if len(pred.Args) != 2 || !pred.Args[0].IsCapture() {
		return syntaxErrf(0, "#%s expects a capture and a literal or second capture", pred.Name)
	}
	return nil
}

// checkAnyOf validates (#any-of? @cap "a" "b" ...).
func checkAnyOf(_ *Pattern, pred *Predicate) error {
	if len(pred.Args) < 2 || !pred.Args[0].IsCapture() {
		return syntaxErrf(0, "#%s expects a capture and at least one literal", pred.Name)
	}
	for _, arg := range pred.Args[1:] {
		if arg.IsCapture() {
			return syntaxErrf(0, "#%s accepts only literal alternatives", pred.Name)
		}
	}
	return nil
}

// checkSet validates (#set! key [value]) and records the property on the
// pattern. A key without a value is a boolean flag, e.g.
// (#set! injection.combined).
func checkSet(pat *Pattern, pred *Predicate) error {
	if len(pred.Args) < 1 || len(pred.Args) > 2 {
		return syntaxErrf(0, "#set! expects a key and an optional value")
	}
	for _, arg := range pred.Args {
		if arg.IsCapture() {
			return syntaxErrf(0, "#set! arguments must be literals")
		}
	}
	if pat.Props == nil {
		pat.Props = make(map[string]string)
	}
	value := ""
	if len(pred.Args) == 2 {
		value = pred.Args[1].Literal
	}
	key := pred.Args[0].Literal
	if _, dup := pat.Props[key]; dup {
		return syntaxErrf(0, "#set! %s declared twice in one pattern", key)
	}
	pat.Props[key] = value
	return nil
}
