// Package langs ships the rule sources bundled with sheen, laid out as
// <language>/highlights.scm plus an optional <language>/injections.scm.
package langs

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed */*.scm
var rules embed.FS

// Highlights returns the bundled highlight rules for a language key.
func Highlights(lang string) (string, bool) {
	return read(lang + "/highlights.scm")
}

// Injections returns the bundled injection rules for a language key, if the
// language has any.
func Injections(lang string) (string, bool) {
	return read(lang + "/injections.scm")
}

func read(path string) (string, bool) {
	data, err := rules.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Keys lists every language with bundled rules, sorted.
func Keys() []string {
	entries, err := fs.ReadDir(rules, ".")
	if err != nil {
		return nil
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys
}
