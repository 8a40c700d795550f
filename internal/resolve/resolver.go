// Package resolve merges the capture bindings of filtered matches into the
// final span sequence: one effective style tag per byte range per layer.
package resolve

import (
	"sort"

	"github.com/syntria/sheen/internal/matcher"
	"github.com/syntria/sheen/internal/types"
)

// Spans flattens every capture of every match into candidate spans and
// resolves conflicts:
//
//   - zero-width candidates are dropped;
//   - of two candidates over the exact same byte range, the one with the
//     higher pattern priority wins ("last rule wins" — later-declared
//     patterns override earlier ones);
//   - partially overlapping candidates are both kept as layers, with Depth
//     recording nesting so a renderer can stack styles without splitting
//     ranges.
//
// The output is sorted by start offset, outer spans before inner at equal
// start, and is byte-for-byte reproducible for a given match sequence.
func Spans(matches []matcher.Match) []types.Span {
	byRange := map[types.Range]types.Span{}

	for _, m := range matches {
		for _, capture := range m.Captures {
			for _, node := range capture.Nodes {
				r := node.Range
				if r.Start >= r.End {
					continue // zero-width
				}
				candidate := types.Span{Range: r, Capture: capture.Name, Priority: m.PatternIndex}
				if held, ok := byRange[r]; ok && held.Priority > candidate.Priority {
					continue
				}
				// equal priority resolves to the later candidate, keeping
				// the override direction consistent
				byRange[r] = candidate
			}
		}
	}

	spans := make([]types.Span, 0, len(byRange))
	for _, s := range byRange {
		spans = append(spans, s)
	}
	sortSpans(spans)
	assignDepth(spans)
	return spans
}

// Merge folds nested-pass spans (already translated to absolute offsets)
// into an outer span sequence, re-sorting and re-layering the result.
func Merge(outer, nested []types.Span) []types.Span {
	merged := make([]types.Span, 0, len(outer)+len(nested))
	merged = append(merged, outer...)
	merged = append(merged, nested...)
	sortSpans(merged)
	assignDepth(merged)
	return merged
}

func sortSpans(spans []types.Span) {
	sort.Slice(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.Range.Start != b.Range.Start {
			return a.Range.Start < b.Range.Start
		}
		if a.Range.End != b.Range.End {
			return a.Range.End > b.Range.End // outer span first
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Capture < b.Capture
	})
}

// assignDepth walks the sorted spans with a containment stack: a span's
// depth is the number of spans still open when it starts.
func assignDepth(spans []types.Span) {
	var open []types.Range
	for i := range spans {
		start := spans[i].Range.Start
		for len(open) > 0 && open[len(open)-1].End <= start {
			open = open[:len(open)-1]
		}
		spans[i].Depth = len(open)
		open = append(open, spans[i].Range)
	}
}
