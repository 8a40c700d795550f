package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syntria/sheen"
)

var capturesCmd = &cobra.Command{
	Use:   "captures [language]",
	Short: "List the capture names a language's rules can produce",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := sheen.LoadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		engine := sheen.New(nil, cfg, logger)
		q, err := engine.Rules(args[0])
		if err != nil {
			logger.Fatal("Failed to compile rules", zap.String("language", args[0]), zap.Error(err))
		}

		for _, name := range q.CaptureNames() {
			fmt.Println(name)
		}
		fmt.Printf("%d patterns, %d captures\n", q.PatternCount(), len(q.CaptureNames()))
	},
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List every language the engine has rules for",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := sheen.LoadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		engine := sheen.New(nil, cfg, logger)
		for _, key := range engine.Languages() {
			fmt.Println(key)
		}
	},
}
