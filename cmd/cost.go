package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Summarize model usage and estimated cost of recent runs",
	RunE:  runCost,
}

func init() {
	costCmd.Flags().Int("limit", 20, "number of recent runs to include")
	rootCmd.AddCommand(costCmd)
}

func runCost(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := a.history.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Println("Recent Runs")
	fmt.Println("===========")
	var calls, failed, in, out int
	var total float64
	for _, r := range runs {
		fmt.Printf("  %s  %-6s %-22s %4.1f  %3d calls  $%.4f  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Mode, r.PatternID, r.OverallScore,
			r.Usage.Calls, r.Usage.EstimatedCostUSD, r.ID)
		calls += r.Usage.Calls
		failed += r.Usage.FailedCalls
		in += r.Usage.InputTokens
		out += r.Usage.OutputTokens
		total += r.Usage.EstimatedCostUSD
	}
	fmt.Println()
	fmt.Printf("  Runs:                %d\n", len(runs))
	fmt.Printf("  Model calls:         %d (%d failed)\n", calls, failed)
	fmt.Printf("  Tokens:              %d in / %d out\n", in, out)
	fmt.Printf("  Estimated total:     $%.4f\n", total)
	fmt.Println()
	fmt.Printf("  Provider: %s\n", a.cfg.Provider)
	fmt.Printf("  Model:    %s\n", a.cfg.Model)
	return nil
}
