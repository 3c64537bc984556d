package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ziadkadry99/promptsuite/internal/config"
	"github.com/ziadkadry99/promptsuite/internal/corpus"
	"github.com/ziadkadry99/promptsuite/internal/db"
	"github.com/ziadkadry99/promptsuite/internal/embeddings"
	"github.com/ziadkadry99/promptsuite/internal/expert"
	"github.com/ziadkadry99/promptsuite/internal/history"
	"github.com/ziadkadry99/promptsuite/internal/llm"
	"github.com/ziadkadry99/promptsuite/internal/logger"
	"github.com/ziadkadry99/promptsuite/internal/pipeline"
	"github.com/ziadkadry99/promptsuite/internal/progress"
	"github.com/ziadkadry99/promptsuite/internal/templates"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `promptsuite init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	mode := cfg.LogMode
	if verbose {
		mode = "dev"
	}
	return logger.New(mode)
}

// createLLMProviderFromConfig creates the text-generation provider with rate
// limiting, retries, per-call timeouts and logging applied. The offline
// provider is returned as nil so every stage takes its fallback directly.
func createLLMProviderFromConfig(cfg *config.Config, log *logger.Logger) (llm.Provider, error) {
	if cfg.Provider == config.ProviderOffline {
		return nil, nil
	}
	p, err := llm.NewProvider(string(cfg.Provider), cfg.Model, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.RateLimitRPM > 0 {
		p = llm.NewRateLimitedProvider(p, cfg.RateLimitRPM)
	}
	return llm.Chain(p,
		llm.WithLogging(log),
		llm.WithRetry(cfg.MaxRetries, time.Second),
		llm.WithTimeout(cfg.RequestTimeout),
	), nil
}

// createEmbedderFromConfig returns nil when semantic indexing is disabled.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	return embeddings.New(string(cfg.EmbeddingProvider), cfg.EmbeddingModel, cfg.BaseURL)
}

// app holds the services shared by the commands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *db.DB
	provider llm.Provider
	repo     *expert.Repository
	patterns *expert.Store
	corpus   *corpus.Store
	index    *corpus.Index
	enhancer *corpus.Enhancer
	history  *history.Store
	recorder *history.Recorder
	catalog  *templates.Catalog
}

// openApp loads config, opens the database and builds every service.
// withProvider is false for commands that never call the model.
func openApp(ctx context.Context, withProvider bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, catalog: templates.DefaultCatalog()}
	if withProvider {
		if a.provider, err = createLLMProviderFromConfig(cfg, log); err != nil {
			return nil, fmt.Errorf("creating LLM provider: %w", err)
		}
	}

	if a.db, err = db.Open(cfg.DatabasePath()); err != nil {
		return nil, err
	}
	a.patterns = expert.NewStore(a.db)
	if a.repo, err = expert.LoadRepository(ctx, a.patterns); err != nil {
		a.db.Close()
		return nil, fmt.Errorf("loading expert patterns: %w", err)
	}
	a.corpus = corpus.NewStore(a.db)
	a.enhancer = corpus.NewEnhancer(a.repo, a.corpus, log)
	if a.history, err = history.NewStore(a.db); err != nil {
		a.db.Close()
		return nil, err
	}
	a.recorder = history.NewRecorder(a.history, history.RecorderOptions{
		Patterns: a.patterns,
		Repo:     a.repo,
		Log:      log,
	})

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		log.Warn("semantic corpus index disabled", "error", err)
	} else if embedder != nil {
		if a.index, err = corpus.NewIndex(embedder); err != nil {
			log.Warn("semantic corpus index disabled", "error", err)
		} else if err := a.index.Load(cfg.IndexPath()); err != nil {
			log.Warn("could not load corpus index", "path", cfg.IndexPath(), "error", err)
		}
	}
	return a, nil
}

// pipeline builds the generation pipeline. reporter may be nil.
func (a *app) pipeline(reporter progress.Reporter) *pipeline.Pipeline {
	return pipeline.New(pipeline.Deps{
		Provider: a.provider,
		Model:    a.cfg.Model,
		Repo:     a.repo,
		Enhancer: a.enhancer,
		Catalog:  a.catalog,
		Recorder: a.recorder,
		Reporter: reporter,
		Log:      a.log,
	}, pipeline.Options{
		AcceptThreshold:  a.cfg.AcceptThreshold,
		StrongMatch:      a.cfg.StrongMatchThreshold,
		MaxConcurrency:   a.cfg.MaxConcurrency,
		ExcerptChars:     a.cfg.ExcerptChars,
		MinDocumentChars: a.cfg.MinDocumentChars,
	})
}

// Close drains pending history writes, then closes the database.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.recorder.Close(ctx); err != nil {
		a.log.Warn("history writes still pending at shutdown", "error", err)
	}
	a.db.Close()
	a.log.Sync()
}

// loadConversation reads a conversation file. A JSON array of
// {role, content} objects is used as is; any other content becomes one
// user turn.
func loadConversation(path string) ([]types.ConversationMessage, error) {
	if path == "" {
		return nil, nil
	}
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading conversation: %w", err)
	}
	return parseConversation(data), nil
}

func parseConversation(data []byte) []types.ConversationMessage {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var msgs []types.ConversationMessage
		if err := json.Unmarshal([]byte(trimmed), &msgs); err == nil {
			return msgs
		}
	}
	return []types.ConversationMessage{{Role: types.RoleUser, Content: trimmed}}
}
