// Package inject discovers subregions of a document whose content must be
// re-highlighted under a different language's rule set.
package inject

import (
	"sort"
	"strings"

	"github.com/syntria/sheen/internal/matcher"
	"github.com/syntria/sheen/internal/types"
)

// Capture and property names the planner understands, matching the
// vocabulary of tree-sitter injection queries.
const (
	CaptureContent  = "injection.content"
	CaptureLanguage = "injection.language"
	PropLanguage    = "injection.language"
	PropCombined    = "injection.combined"
)

// LanguageResolver maps an info-string language tag (e.g. "py", "Rust") to
// a canonical language key. ok is false for unrecognized tags.
type LanguageResolver func(tag string) (key string, ok bool)

// Plan turns filtered injection-query matches into regions. Each surviving
// match contributes its injection.content node ranges; the target language
// comes from a #set! injection.language property or, dynamically, from the
// text of the injection.language capture. Matches whose language cannot be
// resolved produce no region — the content keeps outer-layer styling only.
//
// Patterns flagged #set! injection.combined aggregate the content ranges of
// every match of that pattern (per resolved language) into one region, so
// discontiguous nodes form a single logical document.
func Plan(matches []matcher.Match, source []byte, resolve LanguageResolver) []types.InjectionRegion {
	var regions []types.InjectionRegion
	combined := map[combinedKey]int{} // into regions

	for _, m := range matches {
		lang, ok := languageFor(&m, source, resolve)
		if !ok {
			continue
		}

		ranges := contentRanges(&m)
		if len(ranges) == 0 {
			continue
		}

		if _, isCombined := m.Pattern.Props[PropCombined]; isCombined {
			key := combinedKey{pattern: m.PatternIndex, language: lang}
			if i, seen := combined[key]; seen {
				regions[i].Ranges = append(regions[i].Ranges, ranges...)
				continue
			}
			combined[key] = len(regions)
			regions = append(regions, types.InjectionRegion{
				Ranges:   ranges,
				Language: lang,
				Combined: true,
			})
			continue
		}

		for _, r := range ranges {
			regions = append(regions, types.InjectionRegion{
				Ranges:   []types.Range{r},
				Language: lang,
			})
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Start() < regions[j].Start()
	})
	return regions
}

type combinedKey struct {
	pattern  int
	language string
}

func languageFor(m *matcher.Match, source []byte, resolve LanguageResolver) (string, bool) {
	if tag, ok := m.Pattern.Props[PropLanguage]; ok && tag != "" {
		return resolve(tag)
	}
	nodes := m.NodesFor(CaptureLanguage)
	if len(nodes) == 0 {
		return "", false
	}
	return resolve(nodes[0].Text(source))
}

func contentRanges(m *matcher.Match) []types.Range {
	var ranges []types.Range
	for _, node := range m.NodesFor(CaptureContent) {
		r := node.Range
		if r.Start >= r.End {
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// NormalizeTag canonicalizes an info-string tag for lookup: whitespace
// trimmed, truncated at the first character outside [a-z0-9_+#-], and
// lowercased. "Python3 {linenos}" becomes "python3".
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	end := len(tag)
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		lower := c | 0x20
		if lower >= 'a' && lower <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '+' || c == '#' || c == '-' {
			continue
		}
		end = i
		break
	}
	return strings.ToLower(tag[:end])
}
