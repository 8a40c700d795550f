package formatter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntria/sheen/internal/types"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme(map[string]string{
		"keyword":  "magenta",
		"string":   "#22aa44",
		"function": "Blue",
		"broken":   "not-a-color",
		"alsoBad":  "#12345",
	})

	assert.NotNil(t, theme.Style("keyword"))
	assert.NotNil(t, theme.Style("string"))
	assert.NotNil(t, theme.Style("function"))
	assert.Nil(t, theme.Style("broken"))
	assert.Nil(t, theme.Style("alsoBad"))
	assert.Nil(t, theme.Style("unthemed"))
}

func TestTheme_StyleUsesBaseName(t *testing.T) {
	theme := NewTheme(map[string]string{"punctuation": "yellow"})

	assert.NotNil(t, theme.Style("punctuation"))
	assert.NotNil(t, theme.Style("punctuation.special"))
	assert.Nil(t, theme.Style("constant.numeric"))
}

func TestRender_PreservesText(t *testing.T) {
	source := []byte("# Heading 1\n")
	spans := []types.Span{
		{Range: types.Range{Start: 0, End: 11}, Capture: "type"},
		{Range: types.Range{Start: 0, End: 1}, Capture: "punctuation.special", Depth: 1},
	}
	theme := NewTheme(map[string]string{"type": "cyan", "punctuation": "yellow"})

	got := Render(source, spans, theme)
	assert.Equal(t, string(source), stripSGR(got), "styling must not change the text")
}

func TestRender_NoSpans(t *testing.T) {
	source := []byte("plain text")
	assert.Equal(t, "plain text", Render(source, nil, NewTheme(nil)))
}

func TestRenderJSON(t *testing.T) {
	spans := []types.Span{
		{Range: types.Range{Start: 0, End: 11}, Capture: "type", Priority: 3},
	}
	regions := []types.InjectionRegion{
		{Ranges: []types.Range{{Start: 20, End: 30}, {Start: 40, End: 50}}, Language: "html", Combined: true},
	}

	data, err := RenderJSON(spans, regions)
	require.NoError(t, err)

	var doc struct {
		Spans []struct {
			Start   uint32 `json:"start"`
			End     uint32 `json:"end"`
			Capture string `json:"capture"`
		} `json:"spans"`
		Regions []struct {
			Language string      `json:"language"`
			Combined bool        `json:"combined"`
			Ranges   [][2]uint32 `json:"ranges"`
		} `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	require.Len(t, doc.Spans, 1)
	assert.Equal(t, "type", doc.Spans[0].Capture)
	assert.Equal(t, uint32(11), doc.Spans[0].End)

	require.Len(t, doc.Regions, 1)
	assert.Equal(t, "html", doc.Regions[0].Language)
	assert.True(t, doc.Regions[0].Combined)
	assert.Equal(t, [][2]uint32{{20, 30}, {40, 50}}, doc.Regions[0].Ranges)
}

func TestRenderJSON_EmptySpansStayAnArray(t *testing.T) {
	data, err := RenderJSON(nil, nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"spans": []`)
}

// stripSGR removes ANSI SGR escape sequences.
func stripSGR(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
