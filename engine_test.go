package sheen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntria/sheen/internal/tree"
	"github.com/syntria/sheen/internal/types"
)

func writeRules(t *testing.T, dir, lang, highlights, injections string) {
	t.Helper()
	langDir := filepath.Join(dir, lang)
	require.NoError(t, os.MkdirAll(langDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(langDir, "highlights.scm"), []byte(highlights), 0o644))
	if injections != "" {
		require.NoError(t, os.WriteFile(filepath.Join(langDir, "injections.scm"), []byte(injections), 0o644))
	}
}

func testEngine(t *testing.T, parse ParseFunc) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.RulesDir = dir
	return New(parse, cfg, nil), dir
}

func TestEngine_HighlightBundledMarkdown(t *testing.T) {
	source := []byte("# Heading 1")
	doc := tree.NewNode("document", 0, 11)
	h := tree.NewNode("atx_heading", 0, 11)
	h.AddChild(tree.NewNode("atx_h1_marker", 0, 1))
	h.AddChild(tree.NewNode("inline", 2, 11))
	doc.AddChild(h)

	engine := New(nil, nil, nil)
	result, err := engine.Highlight(context.Background(), "markdown", source, doc)
	require.NoError(t, err)

	require.Len(t, result.Spans, 2)
	assert.Equal(t, types.Range{Start: 0, End: 11}, result.Spans[0].Range)
	assert.Equal(t, "type", result.Spans[0].Capture)
	assert.Equal(t, 0, result.Spans[0].Depth)
	assert.Equal(t, types.Range{Start: 0, End: 1}, result.Spans[1].Range)
	assert.Equal(t, "punctuation.special", result.Spans[1].Capture)
	assert.Equal(t, 1, result.Spans[1].Depth)

	// the pipeline is idempotent
	again, err := engine.Highlight(context.Background(), "markdown", source, doc)
	require.NoError(t, err)
	assert.Equal(t, result.Spans, again.Spans)
}

func TestEngine_MarkdownPythonFence(t *testing.T) {
	// markdown document with a fenced python block; the fake parser stands
	// in for a real python parser over the fence content
	source := []byte("```py\nx = 1\n```\n")
	doc := tree.NewNode("document", 0, 16)
	block := tree.NewNode("fenced_code_block", 0, 16)
	info := tree.NewNode("info_string", 3, 5)
	info.AddChild(tree.NewNode("language", 3, 5))
	block.AddChild(info)
	block.AddChild(tree.NewNode("code_fence_content", 6, 12))
	doc.AddChild(block)

	parse := func(lang string, src []byte) (*tree.Node, error) {
		// "x = 1\n"
		module := tree.NewNode("module", 0, uint32(len(src)))
		assign := tree.NewNode("assignment", 0, 5)
		assign.AddField("left", tree.NewNode("identifier", 0, 1))
		assign.AddChild(tree.NewToken("=", 2, 3))
		assign.AddField("right", tree.NewNode("integer", 4, 5))
		module.AddChild(assign)
		return module, nil
	}

	engine := New(parse, nil, nil)
	result, err := engine.Highlight(context.Background(), "markdown", source, doc)
	require.NoError(t, err)

	// "py" resolves through the alias table
	require.Len(t, result.Regions, 1)
	assert.Equal(t, "python", result.Regions[0].Language)
	assert.Equal(t, []types.Range{{Start: 6, End: 12}}, result.Regions[0].Ranges)

	byCapture := map[string][]types.Range{}
	for _, sp := range result.Spans {
		byCapture[sp.Capture] = append(byCapture[sp.Capture], sp.Range)
	}
	// outer rules style the fence content and the info string
	assert.Contains(t, byCapture, "string")
	assert.Contains(t, byCapture, "constant")
	// nested python rules land at document offsets: "x" at byte 6
	assert.Contains(t, byCapture["variable"], types.Range{Start: 6, End: 7})
	// "1" at byte 10
	assert.Contains(t, byCapture["constant.numeric"], types.Range{Start: 10, End: 11})
}

func TestEngine_UnknownLanguage(t *testing.T) {
	engine := New(nil, nil, nil)
	_, err := engine.Highlight(context.Background(), "klingon", nil, tree.NewNode("x", 0, 0))
	assert.ErrorIs(t, err, ErrLanguageUnavailable)
}

func TestEngine_CompileErrorsAreCachedUntilReload(t *testing.T) {
	engine, dir := testEngine(t, nil)
	writeRules(t, dir, "broken", "(unclosed", "")

	_, err := engine.Rules("broken")
	require.Error(t, err)

	// fixing the file alone does not help, the failure is cached
	writeRules(t, dir, "broken", "(ok) @keyword", "")
	_, err = engine.Rules("broken")
	require.Error(t, err)

	engine.Reload("broken")
	q, err := engine.Rules("broken")
	require.NoError(t, err)
	assert.Equal(t, []string{"keyword"}, q.CaptureNames())
}

func TestEngine_InjectionRecursion(t *testing.T) {
	// outer documents hold one embed node whose content is inner-language
	// text; the fake parser maps any inner fragment to a single text node
	parse := func(lang string, source []byte) (*tree.Node, error) {
		return tree.NewNode("text", 0, uint32(len(source))), nil
	}
	engine, dir := testEngine(t, parse)
	writeRules(t, dir, "outer",
		"(embed) @comment",
		`(embed (lang) @injection.language (content) @injection.content)`)
	writeRules(t, dir, "inner", "(text) @string", "")

	source := []byte("<inner>hello</>")
	doc := tree.NewNode("document", 0, 15)
	embed := tree.NewNode("embed", 0, 15)
	embed.AddChild(tree.NewNode("lang", 1, 6))
	embed.AddChild(tree.NewNode("content", 7, 12))
	doc.AddChild(embed)

	result, err := engine.Highlight(context.Background(), "outer", source, doc)
	require.NoError(t, err)

	require.Len(t, result.Regions, 1)
	assert.Equal(t, "inner", result.Regions[0].Language)
	assert.Equal(t, []types.Range{{Start: 7, End: 12}}, result.Regions[0].Ranges)

	require.Len(t, result.Spans, 2)
	assert.Equal(t, "comment", result.Spans[0].Capture)
	// the nested span is translated back to document offsets and re-layered
	assert.Equal(t, "string", result.Spans[1].Capture)
	assert.Equal(t, types.Range{Start: 7, End: 12}, result.Spans[1].Range)
	assert.Equal(t, 1, result.Spans[1].Depth)
}

func TestEngine_CombinedRegionOffsets(t *testing.T) {
	parse := func(lang string, source []byte) (*tree.Node, error) {
		return tree.NewNode("text", 0, uint32(len(source))), nil
	}
	engine, dir := testEngine(t, parse)
	writeRules(t, dir, "outer",
		"(document) @comment",
		`((chunk) @injection.content
  (#set! injection.language "inner")
  (#set! injection.combined))`)
	writeRules(t, dir, "inner", "(text) @string", "")

	source := []byte("aaa---bbb")
	doc := tree.NewNode("document", 0, 9)
	doc.AddChild(tree.NewNode("chunk", 0, 3))
	doc.AddChild(tree.NewNode("chunk", 6, 9))

	result, err := engine.Highlight(context.Background(), "outer", source, doc)
	require.NoError(t, err)

	require.Len(t, result.Regions, 1)
	region := result.Regions[0]
	assert.True(t, region.Combined)
	assert.Equal(t, []types.Range{{Start: 0, End: 3}, {Start: 6, End: 9}}, region.Ranges)

	// the inner span covered the whole six-byte fragment; translated back it
	// splits at the gap
	var inner []types.Span
	for _, sp := range result.Spans {
		if sp.Capture == "string" {
			inner = append(inner, sp)
		}
	}
	require.Len(t, inner, 2)
	assert.Equal(t, types.Range{Start: 0, End: 3}, inner[0].Range)
	assert.Equal(t, types.Range{Start: 6, End: 9}, inner[1].Range)
}

func TestEngine_UnknownInjectionLanguageDegrades(t *testing.T) {
	parse := func(lang string, source []byte) (*tree.Node, error) {
		return tree.NewNode("text", 0, uint32(len(source))), nil
	}
	engine, dir := testEngine(t, parse)
	writeRules(t, dir, "outer",
		"(embed) @comment",
		`(embed (lang) @injection.language (content) @injection.content)`)

	source := []byte("<nolang>hi</>")
	doc := tree.NewNode("document", 0, 13)
	embed := tree.NewNode("embed", 0, 13)
	embed.AddChild(tree.NewNode("lang", 1, 7))
	embed.AddChild(tree.NewNode("content", 8, 10))
	doc.AddChild(embed)

	result, err := engine.Highlight(context.Background(), "outer", source, doc)
	require.NoError(t, err)

	// no rules for "nolang": no region, outer styling only
	assert.Empty(t, result.Regions)
	require.Len(t, result.Spans, 1)
	assert.Equal(t, "comment", result.Spans[0].Capture)
}

func TestEngine_NilParseReportsRegionsOnly(t *testing.T) {
	engine, dir := testEngine(t, nil)
	writeRules(t, dir, "outer",
		"(embed) @comment",
		`(embed (lang) @injection.language (content) @injection.content)`)
	writeRules(t, dir, "inner", "(text) @string", "")

	source := []byte("<inner>hello</>")
	doc := tree.NewNode("document", 0, 15)
	embed := tree.NewNode("embed", 0, 15)
	embed.AddChild(tree.NewNode("lang", 1, 6))
	embed.AddChild(tree.NewNode("content", 7, 12))
	doc.AddChild(embed)

	result, err := engine.Highlight(context.Background(), "outer", source, doc)
	require.NoError(t, err)

	require.Len(t, result.Regions, 1)
	for _, sp := range result.Spans {
		assert.NotEqual(t, "string", sp.Capture, "nested pass should not run without a parser")
	}
}

func TestEngine_ResolveLanguage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Aliases = map[string]string{"mdown": "markdown"}
	engine := New(nil, cfg, nil)

	tests := []struct {
		tag    string
		want   string
		wantOK bool
	}{
		{"markdown", "markdown", true},
		{"md", "markdown", true},      // builtin alias
		{"mdown", "markdown", true},   // config alias
		{"Python3 {x}", "python", true},
		{"klingon", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := engine.ResolveLanguage(tt.tag)
		assert.Equal(t, tt.wantOK, ok, "tag %q", tt.tag)
		assert.Equal(t, tt.want, got, "tag %q", tt.tag)
	}
}

func TestEngine_Languages(t *testing.T) {
	engine, dir := testEngine(t, nil)
	writeRules(t, dir, "outer", "(x) @y", "")

	keys := engine.Languages()
	assert.Contains(t, keys, "markdown")
	assert.Contains(t, keys, "python")
	assert.Contains(t, keys, "outer")
}
