package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List expert patterns with their usage and ratings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(context.Background(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Println("Expert Patterns")
		fmt.Println("===============")
		fmt.Printf("  %-22s %-11s %7s %7s %6s %8s %7s\n", "ID", "DOMAIN", "QUALITY", "SUCCESS", "USES", "RATINGS", "EXAMPLES")
		for _, p := range a.repo.All() {
			fmt.Printf("  %-22s %-11s %7.1f %6.0f%% %6d %8d %7d\n",
				p.ID, p.Domain, p.QualityScore, p.SuccessRate*100, p.UsageCount, len(p.RatingHistory), len(p.RelatedCorpusEntries))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}
