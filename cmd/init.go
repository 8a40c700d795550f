package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syntria/sheen"
)

// initCmd: sheen init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new highlighting configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = ".sheen.yaml"
		}
		if err := sheen.WriteDefaultConfig(path); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return
		}
		fmt.Printf("Configuration file created: %s\n", path)
	},
}
