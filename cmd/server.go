package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptsuite/internal/corpus"
	"github.com/ziadkadry99/promptsuite/internal/expert"
	"github.com/ziadkadry99/promptsuite/internal/history"
	"github.com/ziadkadry99/promptsuite/internal/pipeline"
	"github.com/ziadkadry99/promptsuite/internal/server"
	"github.com/ziadkadry99/promptsuite/internal/templates"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP API server",
	Long:  `Starts the promptsuite REST API: generation, template recommendations, expert patterns, corpus management, run history and feedback.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(context.Background(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}
		srv := server.New(server.Config{
			Port:     port,
			AllowAll: a.cfg.Server.AllowAllOrigins,
		}, a.db, a.log)

		registerAllRoutes(srv, a)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "promptsuite server %s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", a.cfg.DatabasePath())
		fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", a.cfg.Provider, a.cfg.Model)
		fmt.Fprintf(os.Stderr, "  Expert patterns: %d\n", a.repo.Len())

		if err := srv.Start(); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

// registerAllRoutes wires up the feature routes.
func registerAllRoutes(srv *server.Server, a *app) {
	r := srv.Router()

	templates.RegisterRoutes(r, a.catalog, a.cfg.StrongMatchThreshold)
	expert.RegisterRoutes(r, a.repo)
	corpus.RegisterRoutes(r, &corpus.Handlers{
		Store:    a.corpus,
		Enhancer: a.enhancer,
		Index:    a.index,
		Saver:    a.patterns,
	})
	history.RegisterRoutes(r, a.history, a.recorder)
	pipeline.RegisterRoutes(r, a.pipeline(nil))
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
