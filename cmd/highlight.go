package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syntria/sheen"
	"github.com/syntria/sheen/formatter"
	"github.com/syntria/sheen/internal/tree"
)

var (
	highlightLang string
	treePath      string
	jsonOutput    bool
	outPath       string
)

var highlightCmd = &cobra.Command{
	Use:   "highlight [file]",
	Short: "Highlight a source file using a parsed tree dump",
	Long: `Highlight matches the language's rules against a syntax tree and prints
the source with ANSI styling, or the resolved spans as JSON.

The tree is supplied as a dump in the format printed by external parser
CLIs: (node_kind [row, col] - [row, col] ...). When --tree is omitted,
<file>.sexp is used.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		path := args[0]
		lang := highlightLang
		if lang == "" {
			detected, ok := sheen.DetectLanguage(path)
			if !ok {
				logger.Fatal("Cannot detect language, pass --lang", zap.String("file", path))
			}
			lang = detected
		}

		source, err := os.ReadFile(path)
		if err != nil {
			logger.Fatal("Failed to read source file", zap.Error(err))
		}

		dumpPath := treePath
		if dumpPath == "" {
			dumpPath = path + ".sexp"
		}
		dump, err := os.ReadFile(dumpPath)
		if err != nil {
			logger.Fatal("Failed to read tree dump", zap.Error(err))
		}
		root, err := tree.ParseDump(string(dump), source)
		if err != nil {
			logger.Fatal("Failed to parse tree dump", zap.Error(err))
		}

		cfg, err := sheen.LoadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		engine := sheen.New(nil, cfg, logger)
		result, err := engine.Highlight(ctx, lang, source, root)
		if err != nil {
			logger.Fatal("Highlighting failed", zap.Error(err))
		}

		var output []byte
		if jsonOutput {
			output, err = formatter.RenderJSON(result.Spans, result.Regions)
			if err != nil {
				logger.Fatal("Failed to encode JSON", zap.Error(err))
			}
			output = append(output, '\n')
		} else {
			theme := formatter.NewTheme(cfg.Theme)
			output = []byte(formatter.Render(source, result.Spans, theme))
		}

		if outPath != "" {
			if err := os.WriteFile(outPath, output, 0o644); err != nil {
				logger.Fatal("Failed to write output file", zap.Error(err))
			}
			return
		}
		fmt.Print(string(output))
	},
}

func init() {
	highlightCmd.Flags().StringVar(&highlightLang, "lang", "", "language key (detected from the extension when omitted)")
	highlightCmd.Flags().StringVar(&treePath, "tree", "", "path to the tree dump (defaults to <file>.sexp)")
	highlightCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit resolved spans as JSON instead of ANSI output")
	highlightCmd.Flags().StringVarP(&outPath, "output", "o", "", "write output to a file instead of stdout")
}
