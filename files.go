package sheen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// FileResult pairs one highlighted file with its detected language.
type FileResult struct {
	Path   string
	Lang   string
	Source []byte
	Result *Result
}

// extLanguages maps file extensions to rule keys for batch runs.
var extLanguages = map[string]string{
	".md":       "markdown",
	".markdown": "markdown",
	".py":       "python",
	".pyi":      "python",
}

// DetectLanguage picks a rule key from a file's extension.
func DetectLanguage(path string) (string, bool) {
	lang, ok := extLanguages[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// ProcessFiles highlights every recognized file under the given paths.
func ProcessFiles(ctx context.Context, logger *zap.Logger, engine *Engine, paths []string) ([]FileResult, error) {
	var all []FileResult
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

// ProcessPath highlights a single file, or every recognized file under a
// directory. Directory runs fan out over a bounded worker pool with a
// progress bar; per-file failures are logged and skipped rather than
// aborting the batch.
func ProcessPath(ctx context.Context, logger *zap.Logger, engine *Engine, path string) ([]FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if _, ok := DetectLanguage(path); !ok {
			return nil, fmt.Errorf("no highlight rules for file %s", path)
		}
		result, err := processFile(ctx, engine, path)
		if err != nil {
			return nil, err
		}
		return []FileResult{result}, nil
	}

	var files []string
	filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !fileInfo.IsDir() {
			if _, ok := DetectLanguage(filePath); ok {
				files = append(files, filePath)
			}
		}
		return nil
	})

	type outcome struct {
		result FileResult
		err    error
	}
	outcomes := make(chan outcome, len(files))

	// limit the number of workers
	maxWorkers := runtime.NumCPU()
	sem := make(chan struct{}, maxWorkers)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	for _, filePath := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			sem <- struct{}{}
			go func(fp string) {
				defer func() { <-sem }()

				result, err := processFile(ctx, engine, fp)
				if err != nil && logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				outcomes <- outcome{result: result, err: err}
				bar.Add(1)
			}(filePath)
		}
	}

	var results []FileResult
	for range files {
		o := <-outcomes
		if o.err != nil {
			continue
		}
		results = append(results, o.result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	fmt.Println()
	return results, nil
}

func processFile(ctx context.Context, engine *Engine, path string) (FileResult, error) {
	lang, ok := DetectLanguage(path)
	if !ok {
		return FileResult{}, fmt.Errorf("cannot detect language of %s", path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, err
	}
	if engine.parse == nil {
		return FileResult{}, fmt.Errorf("no parser configured for batch runs")
	}
	root, err := engine.parse(lang, source)
	if err != nil {
		return FileResult{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	result, err := engine.Highlight(ctx, lang, source, root)
	if err != nil {
		return FileResult{}, err
	}
	return FileResult{Path: path, Lang: lang, Source: source, Result: result}, nil
}
