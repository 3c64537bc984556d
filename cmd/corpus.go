package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptsuite/internal/corpus"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the corpus of example prompts",
}

var corpusImportCmd = &cobra.Command{
	Use:   "import [files or globs...]",
	Short: "Import corpus entries from JSON or YAML files",
	Long:  `Imports corpus entries from the given files or doublestar globs (defaults to corpus_paths from the config), indexes them and refreshes the expert patterns' related examples.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		patterns := args
		if len(patterns) == 0 {
			patterns = a.cfg.CorpusPaths
		}
		if len(patterns) == 0 {
			return fmt.Errorf("no files given and corpus_paths is empty")
		}

		entries, err := corpus.LoadFiles(patterns)
		if err != nil {
			return err
		}
		res, err := a.corpus.Add(ctx, entries)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d entries (%d duplicates, %d invalid skipped)\n", res.Added, res.Duplicates, res.Invalid)

		if a.index != nil && res.Added > 0 {
			all, err := a.corpus.All(ctx)
			if err != nil {
				return err
			}
			if err := a.index.Add(ctx, all); err != nil {
				return fmt.Errorf("indexing corpus: %w", err)
			}
			if err := a.index.Save(a.cfg.IndexPath()); err != nil {
				return fmt.Errorf("saving corpus index: %w", err)
			}
			fmt.Printf("Semantic index: %d documents\n", a.index.Count())
		}
		return refreshPatterns(ctx, a)
	},
}

var corpusRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute every expert pattern's related corpus examples",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()
		return refreshPatterns(ctx, a)
	},
}

func refreshPatterns(ctx context.Context, a *app) error {
	patterns, err := a.enhancer.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refreshing patterns: %w", err)
	}
	if err := a.patterns.SaveAll(ctx, patterns); err != nil {
		return fmt.Errorf("saving patterns: %w", err)
	}
	for _, p := range patterns {
		fmt.Printf("  %-22s %d related examples\n", p.ID, len(p.RelatedCorpusEntries))
	}
	return nil
}

var corpusSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		ctx := context.Background()
		a, err := openApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		hits, err := corpus.Search(ctx, a.corpus, a.index, strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("No results found.")
			return nil
		}
		for i, h := range hits {
			fmt.Printf("%d. %s [%s]", i+1, h.Entry.Title, h.Entry.Category)
			if h.Similarity > 0 {
				fmt.Printf(" %.1f%%", h.Similarity*100)
			}
			fmt.Println()
			if verbose {
				fmt.Printf("   %s\n", strings.ReplaceAll(h.Entry.Content, "\n", "\n   "))
			}
		}
		return nil
	},
}

func init() {
	corpusSearchCmd.Flags().Int("limit", 5, "maximum number of results")
	corpusCmd.AddCommand(corpusImportCmd, corpusRefreshCmd, corpusSearchCmd)
	rootCmd.AddCommand(corpusCmd)
}
