package sheen

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/syntria/sheen/internal/inject"
	"github.com/syntria/sheen/langs"
)

// builtinAliases maps normalized info-string tags to rule directory keys.
// Config aliases are consulted first and may shadow these.
var builtinAliases = map[string]string{
	"py":      "python",
	"py3":     "python",
	"python3": "python",
	"rs":      "rust",
	"golang":  "go",
	"js":      "javascript",
	"ts":      "typescript",
	"md":      "markdown",
	"mkd":     "markdown",
	"yml":     "yaml",
	"sh":      "shell",
	"bash":    "shell",
	"zsh":     "shell",
	"c++":     "cpp",
	"htm":     "html",
}

// ResolveLanguage turns a raw injection tag into a rule key. It normalizes
// the tag, applies the alias tables, and reports false for anything the
// engine has no rules for.
func (e *Engine) ResolveLanguage(tag string) (string, bool) {
	key := inject.NormalizeTag(tag)
	if key == "" {
		return "", false
	}
	if mapped, ok := e.aliases[key]; ok {
		key = mapped
	} else if mapped, ok := builtinAliases[key]; ok {
		key = mapped
	}
	if !e.hasRules(key) {
		return "", false
	}
	return key, true
}

// hasRules reports whether highlight rules exist for a key, either in the
// override directory or bundled.
func (e *Engine) hasRules(key string) bool {
	if e.rulesDir != "" {
		if _, err := os.Stat(filepath.Join(e.rulesDir, key, "highlights.scm")); err == nil {
			return true
		}
	}
	_, ok := langs.Highlights(key)
	return ok
}

// Languages lists every language key the engine can highlight, sorted.
func (e *Engine) Languages() []string {
	seen := map[string]bool{}
	for _, key := range langs.Keys() {
		seen[key] = true
	}
	if e.rulesDir != "" {
		entries, err := os.ReadDir(e.rulesDir)
		if err == nil {
			for _, ent := range entries {
				if !ent.IsDir() {
					continue
				}
				if _, err := os.Stat(filepath.Join(e.rulesDir, ent.Name(), "highlights.scm")); err == nil {
					seen[ent.Name()] = true
				}
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ruleSource loads the highlight and injection rule text for a key, override
// directory first. The second string is empty when the language has no
// injection rules.
func (e *Engine) ruleSource(key string) (string, string, bool) {
	if e.rulesDir != "" {
		hi, err := os.ReadFile(filepath.Join(e.rulesDir, key, "highlights.scm"))
		if err == nil {
			inj, _ := os.ReadFile(filepath.Join(e.rulesDir, key, "injections.scm"))
			return string(hi), string(inj), true
		}
	}
	hi, ok := langs.Highlights(key)
	if !ok {
		return "", "", false
	}
	inj, _ := langs.Injections(key)
	return hi, inj, true
}
