package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptsuite/internal/export"
	"github.com/ziadkadry99/promptsuite/internal/history"
	"github.com/ziadkadry99/promptsuite/internal/pipeline"
	"github.com/ziadkadry99/promptsuite/internal/progress"
)

var generateCmd = &cobra.Command{
	Use:   "generate [project brief]",
	Short: "Generate the prompt suite and project documents",
	Long: `Analyzes the project conversation and brief, then writes four expert prompts
and four generated documents (requirements, technical architecture, design,
project plan) to the output directory.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("conversation", "c", "", "conversation file: JSON array of {role, content} or plain text; - reads stdin")
	generateCmd.Flags().StringP("out", "o", "promptsuite-out", "output directory")
	generateCmd.Flags().Bool("html", false, "also render the suite as HTML")
	generateCmd.Flags().Bool("simple", false, "use the best catalog template when it is a strong match")
	generateCmd.Flags().Bool("json", false, "print the result as JSON instead of writing files")
	generateCmd.Flags().Int("concurrency", 0, "max parallel document generations (overrides config)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conversationPath, _ := cmd.Flags().GetString("conversation")
	outDir, _ := cmd.Flags().GetString("out")
	asHTML, _ := cmd.Flags().GetBool("html")
	simple, _ := cmd.Flags().GetBool("simple")
	asJSON, _ := cmd.Flags().GetBool("json")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	brief := strings.Join(args, " ")
	messages, err := loadConversation(conversationPath)
	if err != nil {
		return err
	}
	if len(messages) == 0 && strings.TrimSpace(brief) == "" {
		return fmt.Errorf("provide a project brief or --conversation")
	}

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	if concurrency > 0 {
		a.cfg.MaxConcurrency = concurrency
	}

	var reporter progress.Reporter = progress.Nop{}
	if !asJSON {
		reporter = progress.NewReporter()
	}
	p := a.pipeline(reporter)

	var suite *pipeline.Suite
	var result any
	if simple {
		res := p.GenerateSimple(ctx, messages, brief)
		result, suite = res, res.Suite
		if res.Mode == history.ModeSimple && !asJSON {
			printSimple(res)
			return nil
		}
	} else {
		suite = p.Generate(ctx, messages, brief)
		result = suite
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	written, err := export.Writer{Dir: outDir, HTML: asHTML}.WriteSuite(suite)
	if err != nil {
		return fmt.Errorf("writing suite: %w", err)
	}
	printSummary(suite, len(written), outDir, time.Since(start))
	return nil
}

func printSimple(res *pipeline.SimpleResult) {
	fmt.Printf("Template: %s (score %d)\n", res.Match.Template.ID, res.Match.Score)
	fmt.Printf("Run:      %s\n\n", res.RunID)
	fmt.Println("System prompt")
	fmt.Println("=============")
	fmt.Println(res.Prompt.System)
	fmt.Println()
	fmt.Println("User prompt")
	fmt.Println("===========")
	fmt.Println(res.Prompt.User)
	if len(res.Prompt.Missing) > 0 {
		fmt.Printf("\nFill in before use: %s\n", strings.Join(res.Prompt.Missing, ", "))
	}
}

func printSummary(s *pipeline.Suite, files int, outDir string, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("Prompt suite generated")
	fmt.Println("======================")
	fmt.Printf("  Run:                 %s\n", s.RunID)
	fmt.Printf("  Project:             %s (%s)\n", s.Profile.ProjectType, s.Profile.ComplexityLevel)
	fmt.Printf("  Expert pattern:      %s\n", s.PatternID)
	fmt.Printf("  Overall quality:     %.1f/10\n", s.Quality.OverallScore)
	if s.Optimized {
		fmt.Printf("  Optimized:           yes (%d evaluation passes)\n", len(s.QualityHistory))
	}
	fmt.Printf("  Files written:       %d in %s\n", files, outDir)
	fmt.Printf("  Model calls:         %d (%d failed)\n", s.Usage.Calls, s.Usage.FailedCalls)
	fmt.Printf("  Tokens:              %d in / %d out\n", s.Usage.InputTokens, s.Usage.OutputTokens)
	fmt.Printf("  Estimated cost:      $%.4f\n", s.Usage.EstimatedCostUSD)
	fmt.Printf("  Elapsed:             %s\n", elapsed.Round(time.Millisecond))
	if len(s.Fallbacks) > 0 {
		fmt.Printf("  Fallbacks:           %s\n", strings.Join(s.Fallbacks, ", "))
	}
	fmt.Println()
	fmt.Printf("Rate this suite with: promptsuite feedback %s --rating 1-5\n", s.RunID)
}
