package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptsuite/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize promptsuite configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose a provider, model and data directory, and writes a .promptsuite.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
