package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <run-id>",
	Short: "Rate a generated suite",
	Long:  `Records a rating for a previous run and applies it to the expert pattern that produced it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, _ := cmd.Flags().GetInt("rating")
		result, _ := cmd.Flags().GetString("result")
		comment, _ := cmd.Flags().GetString("comment")
		suggestions, _ := cmd.Flags().GetStringSlice("suggest")

		a, err := openApp(context.Background(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		fb, err := a.recorder.SubmitFeedback(types.UserFeedback{
			TargetID:    args[0],
			Rating:      rating,
			UsageResult: types.UsageResult(result),
			FreeText:    comment,
			Suggestions: suggestions,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Feedback %s recorded for run %s\n", fb.ID, args[0])
		return nil
	},
}

func init() {
	feedbackCmd.Flags().Int("rating", 0, "rating from 1 to 5")
	feedbackCmd.Flags().String("result", string(types.UsageSuccess), "usage result: success, partial or failed")
	feedbackCmd.Flags().String("comment", "", "free-text comment")
	feedbackCmd.Flags().StringSlice("suggest", nil, "improvement suggestions")
	feedbackCmd.MarkFlagRequired("rating")
	rootCmd.AddCommand(feedbackCmd)
}
