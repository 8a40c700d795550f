package types

import "fmt"

// Range is a half-open byte interval [Start, End) in the source document.
type Range struct {
	Start uint32
	End   uint32
}

func (r Range) Len() uint32 { return r.End - r.Start }

// Contains reports whether r fully contains other.
func (r Range) Contains(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Span is one resolved styling unit: a byte range carrying the capture name
// that won resolution for that range.
type Span struct {
	Range Range

	// Capture is the full capture name from the rule file, e.g.
	// "punctuation.special". Renderers usually key their theme on the first
	// dot-separated segment.
	Capture string

	// Priority is the declaration index of the pattern that produced the
	// span. Later-declared patterns carry higher priority.
	Priority int

	// Depth is the nesting level of the span among overlapping spans:
	// 0 for outermost, increasing inward. Assigned by the resolver so a
	// renderer can apply layered styles without splitting ranges.
	Depth int
}

// InjectionRegion describes a subregion of the document whose content should
// be highlighted under a different language's rule set.
type InjectionRegion struct {
	// Ranges holds the content byte ranges, in document order. A region has
	// exactly one range unless Combined is set.
	Ranges []Range

	// Language is the canonical language key resolved from the rule's
	// injection metadata or the captured info-string text.
	Language string

	// Combined marks a region aggregated from several discontiguous nodes
	// that form one logical injected document.
	Combined bool
}

// Start returns the first byte covered by the region.
func (ir InjectionRegion) Start() uint32 {
	if len(ir.Ranges) == 0 {
		return 0
	}
	return ir.Ranges[0].Start
}

// TotalLen returns the summed length of all content ranges.
func (ir InjectionRegion) TotalLen() uint32 {
	var n uint32
	for _, r := range ir.Ranges {
		n += r.Len()
	}
	return n
}
