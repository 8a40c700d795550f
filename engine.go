// Package sheen matches declarative highlight rules against syntax trees and
// produces styled spans plus injection plans for embedded languages.
package sheen

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/syntria/sheen/internal/inject"
	"github.com/syntria/sheen/internal/matcher"
	"github.com/syntria/sheen/internal/resolve"
	"github.com/syntria/sheen/internal/tree"
	"github.com/syntria/sheen/internal/types"
	"github.com/syntria/sheen/query"
)

// ErrLanguageUnavailable marks a language the engine has no highlight rules
// for.
var ErrLanguageUnavailable = errors.New("no highlight rules for language")

// maxInjectionDepth bounds recursion through nested injections so that
// pathological rule sets cannot loop (markdown in html in markdown ...).
const maxInjectionDepth = 8

// ParseFunc produces a syntax tree for a source fragment in the given
// language. The engine calls it when recursing into injection regions; a nil
// ParseFunc leaves regions reported but unhighlighted.
type ParseFunc func(lang string, source []byte) (*tree.Node, error)

// ruleSet is the compiled form of one language's rules. A compile failure is
// cached too: broken rules stay broken until Reload.
type ruleSet struct {
	highlights *query.Query
	injections *query.Query
	err        error
}

// Engine compiles rule files once per language and runs the full highlight
// pipeline over parsed trees.
type Engine struct {
	mu   sync.RWMutex
	sets map[string]*ruleSet

	parse    ParseFunc
	aliases  map[string]string
	rulesDir string
	logger   *zap.Logger
}

// New builds an engine. cfg and logger may be nil; parse may be nil when
// injection recursion is not wanted.
func New(parse ParseFunc, cfg *Config, logger *zap.Logger) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		sets:     make(map[string]*ruleSet),
		parse:    parse,
		aliases:  cfg.Aliases,
		rulesDir: cfg.RulesDir,
		logger:   logger,
	}
}

// Result is the output of one Highlight call.
type Result struct {
	// Spans cover the whole document, nested injection highlights merged
	// in, sorted by start offset with containment depth assigned.
	Spans []types.Span

	// Regions are the top-level injection regions found in the document,
	// whether or not the engine could highlight them.
	Regions []types.InjectionRegion
}

// Rules returns the compiled rule set for a language key, compiling it on
// first use. Both successes and failures are cached.
func (e *Engine) Rules(lang string) (*query.Query, error) {
	rs, err := e.ruleSet(lang)
	if err != nil {
		return nil, err
	}
	return rs.highlights, nil
}

// Reload drops the cached rule set for a language so the next use recompiles
// it. Used after editing rule files in the override directory.
func (e *Engine) Reload(lang string) {
	e.mu.Lock()
	delete(e.sets, lang)
	e.mu.Unlock()
}

func (e *Engine) ruleSet(lang string) (*ruleSet, error) {
	e.mu.RLock()
	rs, ok := e.sets[lang]
	e.mu.RUnlock()
	if ok {
		return rs, rs.err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if rs, ok := e.sets[lang]; ok {
		return rs, rs.err
	}

	rs = e.compile(lang)
	e.sets[lang] = rs
	return rs, rs.err
}

func (e *Engine) compile(lang string) *ruleSet {
	hiSrc, injSrc, ok := e.ruleSource(lang)
	if !ok {
		return &ruleSet{err: fmt.Errorf("%w: %s", ErrLanguageUnavailable, lang)}
	}
	hi, err := query.Compile(hiSrc)
	if err != nil {
		return &ruleSet{err: fmt.Errorf("compiling %s highlights: %w", lang, err)}
	}
	rs := &ruleSet{highlights: hi}
	if injSrc != "" {
		inj, err := query.Compile(injSrc)
		if err != nil {
			return &ruleSet{err: fmt.Errorf("compiling %s injections: %w", lang, err)}
		}
		rs.injections = inj
	}
	return rs
}

// Highlight runs the pipeline for one document: match highlight rules,
// filter by predicates, resolve winning spans, plan injections, recurse into
// each region, and merge the nested spans back at document offsets.
func (e *Engine) Highlight(ctx context.Context, lang string, source []byte, root *tree.Node) (*Result, error) {
	rs, err := e.ruleSet(lang)
	if err != nil {
		return nil, err
	}
	spans, regions, err := e.pass(ctx, rs, source, root, 0)
	if err != nil {
		return nil, err
	}
	return &Result{Spans: spans, Regions: regions}, nil
}

func (e *Engine) pass(ctx context.Context, rs *ruleSet, source []byte, root *tree.Node, depth int) ([]types.Span, []types.InjectionRegion, error) {
	m := matcher.New(rs.highlights)
	matches, err := m.Matches(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	matches = matcher.Filter(matches, source)
	spans := resolve.Spans(matches)

	if rs.injections == nil {
		return spans, nil, nil
	}

	im := matcher.New(rs.injections)
	injMatches, err := im.Matches(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	injMatches = matcher.Filter(injMatches, source)
	regions := inject.Plan(injMatches, source, e.ResolveLanguage)
	if len(regions) == 0 {
		return spans, nil, nil
	}

	nested, err := e.highlightRegions(ctx, source, regions, depth)
	if err != nil {
		return nil, nil, err
	}
	if len(nested) > 0 {
		spans = resolve.Merge(spans, nested)
	}
	return spans, regions, nil
}

// highlightRegions runs the nested passes, one goroutine per region, and
// returns their spans translated back to document offsets. Results are
// collected per region index so output order does not depend on scheduling.
func (e *Engine) highlightRegions(ctx context.Context, source []byte, regions []types.InjectionRegion, depth int) ([]types.Span, error) {
	if e.parse == nil || depth >= maxInjectionDepth {
		return nil, nil
	}

	perRegion := make([][]types.Span, len(regions))
	errs := make([]error, len(regions))

	var wg sync.WaitGroup
	for i, region := range regions {
		wg.Add(1)
		go func(i int, region types.InjectionRegion) {
			defer wg.Done()
			spans, err := e.highlightRegion(ctx, source, region, depth)
			perRegion[i] = spans
			errs[i] = err
		}(i, region)
	}
	wg.Wait()

	var out []types.Span
	for i := range regions {
		if errs[i] != nil {
			return nil, errs[i]
		}
		out = append(out, perRegion[i]...)
	}
	return out, nil
}

func (e *Engine) highlightRegion(ctx context.Context, source []byte, region types.InjectionRegion, depth int) ([]types.Span, error) {
	rs, err := e.ruleSet(region.Language)
	if err != nil {
		// Degrade: the region stays unhighlighted.
		e.logger.Debug("skipping injection region",
			zap.String("language", region.Language),
			zap.Error(err))
		return nil, nil
	}

	text := regionText(source, region)
	sub, err := e.parse(region.Language, text)
	if err != nil {
		e.logger.Debug("parse failed for injection region",
			zap.String("language", region.Language),
			zap.Error(err))
		return nil, nil
	}
	if sub == nil {
		return nil, nil
	}

	spans, _, err := e.pass(ctx, rs, text, sub, depth+1)
	if err != nil {
		return nil, err
	}
	return translateSpans(spans, region.Ranges), nil
}

// regionText concatenates the region's ranges. Combined regions span
// discontiguous ranges of the document; the nested parser sees them as one
// fragment.
func regionText(source []byte, region types.InjectionRegion) []byte {
	if len(region.Ranges) == 1 {
		r := region.Ranges[0]
		return source[r.Start:r.End]
	}
	text := make([]byte, 0, region.TotalLen())
	for _, r := range region.Ranges {
		text = append(text, source[r.Start:r.End]...)
	}
	return text
}

// translateSpans maps fragment-relative spans back to document offsets. A
// span crossing a range boundary splits into one piece per range.
func translateSpans(spans []types.Span, ranges []types.Range) []types.Span {
	var out []types.Span
	for _, sp := range spans {
		rel := uint32(0)
		for _, r := range ranges {
			segEnd := rel + r.Len()
			if sp.Range.Start < segEnd && sp.Range.End > rel {
				start := maxU32(sp.Range.Start, rel)
				end := minU32(sp.Range.End, segEnd)
				piece := sp
				piece.Range = types.Range{
					Start: r.Start + (start - rel),
					End:   r.Start + (end - rel),
				}
				if piece.Range.Start < piece.Range.End {
					out = append(out, piece)
				}
			}
			rel = segEnd
			if sp.Range.End <= rel {
				break
			}
		}
	}
	return out
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
