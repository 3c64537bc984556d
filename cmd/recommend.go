package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptsuite/internal/config"
	"github.com/ziadkadry99/promptsuite/internal/templates"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [project description]",
	Short: "Rank the prompt template catalog against a project description",
	RunE: func(cmd *cobra.Command, args []string) error {
		conversationPath, _ := cmd.Flags().GetString("conversation")
		messages, err := loadConversation(conversationPath)
		if err != nil {
			return err
		}
		text := types.JoinConversation(messages, strings.Join(args, " "))
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("provide a project description or --conversation")
		}

		strong := templates.DefaultStrongMatch
		if cfg, err := config.Load(cfgFile); err == nil && cfg.StrongMatchThreshold > 0 {
			strong = cfg.StrongMatchThreshold
		}

		matches := templates.NewScorer(templates.DefaultCatalog()).Rank(templates.SignalsFromText(text))
		fmt.Println("Template Recommendations")
		fmt.Println("========================")
		for i, m := range matches {
			marker := " "
			if templates.IsStrong(m, strong) {
				marker = "*"
			}
			fmt.Printf("  %s %d. %-24s %3d  %s\n", marker, i+1, m.Template.ID, m.Score, m.Reason)
		}
		fmt.Println()
		fmt.Printf("  * = strong match (score >= %d)\n", strong)
		return nil
	},
}

func init() {
	recommendCmd.Flags().StringP("conversation", "c", "", "conversation file")
	rootCmd.AddCommand(recommendCmd)
}
