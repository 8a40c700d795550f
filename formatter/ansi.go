// Package formatter renders resolved spans over source text, either as ANSI
// colored terminal output or as machine-readable JSON.
package formatter

import (
	"sort"
	"strings"

	"github.com/syntria/sheen/internal/types"
)

// Render writes the source with each span styled per the theme. Where spans
// overlap, the innermost span decides the style of the shared bytes, so a
// keyword inside a highlighted heading still reads as a keyword.
func Render(source []byte, spans []types.Span, theme Theme) string {
	if len(spans) == 0 {
		return string(source)
	}

	cuts := boundaries(source, spans)

	var builder strings.Builder
	for i := 0; i+1 < len(cuts); i++ {
		start, end := cuts[i], cuts[i+1]
		segment := string(source[start:end])
		if sp, ok := innermost(spans, start, end); ok {
			if style := theme.Style(sp.Capture); style != nil {
				builder.WriteString(style.Sprint(segment))
				continue
			}
		}
		builder.WriteString(segment)
	}
	return builder.String()
}

// boundaries collects the sorted, de-duplicated cut points of the sweep:
// every span edge plus the document edges.
func boundaries(source []byte, spans []types.Span) []uint32 {
	seen := map[uint32]bool{0: true, uint32(len(source)): true}
	for _, sp := range spans {
		seen[sp.Range.Start] = true
		seen[sp.Range.End] = true
	}
	cuts := make([]uint32, 0, len(seen))
	for cut := range seen {
		if cut <= uint32(len(source)) {
			cuts = append(cuts, cut)
		}
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i] < cuts[j] })
	return cuts
}

// innermost picks the deepest span covering [start, end). Segments never
// straddle a span edge, so covering the segment start means covering it all.
func innermost(spans []types.Span, start, end uint32) (types.Span, bool) {
	var best types.Span
	found := false
	for _, sp := range spans {
		if sp.Range.Start <= start && end <= sp.Range.End {
			if !found || sp.Depth >= best.Depth {
				best = sp
				found = true
			}
		}
	}
	return best, found
}
