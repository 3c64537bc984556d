package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptsuite/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "promptsuite",
	Short: "Turn a project conversation into expert prompts and project documents",
	Long: `promptsuite analyzes a project conversation, selects an expert reasoning
pattern, and produces four professional prompts together with a requirements
document, a technical architecture, a design specification and a project plan.
Every step degrades to a deterministic template when the model is unavailable.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.FileName, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
