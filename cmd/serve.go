package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/promptsuite/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing prompt suite generation, template recommendation, corpus search and feedback tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(context.Background(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "promptsuite MCP server started on stdio (provider=%s, patterns=%d)\n", a.cfg.Provider, a.repo.Len())

		srv := mcpserver.NewServer(mcpserver.Deps{
			Pipeline:    a.pipeline(nil),
			Catalog:     a.catalog,
			StrongMatch: a.cfg.StrongMatchThreshold,
			Corpus:      a.corpus,
			Index:       a.index,
			Recorder:    a.recorder,
		})
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
