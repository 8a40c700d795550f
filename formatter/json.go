package formatter

import (
	"encoding/json"

	"github.com/syntria/sheen/internal/types"
)

// jsonSpan is the wire form of one span.
type jsonSpan struct {
	Start    uint32 `json:"start"`
	End      uint32 `json:"end"`
	Capture  string `json:"capture"`
	Priority int    `json:"priority"`
	Depth    int    `json:"depth"`
}

// jsonRegion is the wire form of one injection region.
type jsonRegion struct {
	Language string      `json:"language"`
	Combined bool        `json:"combined,omitempty"`
	Ranges   [][2]uint32 `json:"ranges"`
}

type jsonDocument struct {
	Spans   []jsonSpan   `json:"spans"`
	Regions []jsonRegion `json:"regions,omitempty"`
}

// RenderJSON serializes spans and injection regions as indented JSON for
// editor integrations and tests.
func RenderJSON(spans []types.Span, regions []types.InjectionRegion) ([]byte, error) {
	doc := jsonDocument{Spans: make([]jsonSpan, 0, len(spans))}
	for _, sp := range spans {
		doc.Spans = append(doc.Spans, jsonSpan{
			Start:    sp.Range.Start,
			End:      sp.Range.End,
			Capture:  sp.Capture,
			Priority: sp.Priority,
			Depth:    sp.Depth,
		})
	}
	for _, region := range regions {
		jr := jsonRegion{Language: region.Language, Combined: region.Combined}
		for _, r := range region.Ranges {
			jr.Ranges = append(jr.Ranges, [2]uint32{r.Start, r.End})
		}
		doc.Regions = append(doc.Regions, jr)
	}
	return json.MarshalIndent(doc, "", "  ")
}
