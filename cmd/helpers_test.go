package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ziadkadry99/promptsuite/internal/config"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

func TestParseConversation(t *testing.T) {
	msgs := parseConversation([]byte(`[{"role":"user","content":"a todo app"},{"role":"assistant","content":"for whom?"}]`))
	if len(msgs) != 2 || msgs[1].Role != types.RoleAssistant {
		t.Errorf("json conversation = %+v", msgs)
	}

	msgs = parseConversation([]byte("  I need a booking site.\n"))
	if len(msgs) != 1 || msgs[0].Role != types.RoleUser || msgs[0].Content != "I need a booking site." {
		t.Errorf("plain conversation = %+v", msgs)
	}

	msgs = parseConversation([]byte("[not json"))
	if len(msgs) != 1 || msgs[0].Content != "[not json" {
		t.Errorf("malformed json should be kept as text, got %+v", msgs)
	}

	if parseConversation([]byte("   ")) != nil {
		t.Error("blank input should yield no messages")
	}
}

func TestLoadConversationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.txt")
	if err := os.WriteFile(path, []byte("a recipe sharing app"), 0o644); err != nil {
		t.Fatal(err)
	}
	msgs, err := loadConversation(path)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("msgs = %v, err = %v", msgs, err)
	}
	if _, err := loadConversation(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCreateLLMProviderOffline(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider = config.ProviderOffline
	p, err := createLLMProviderFromConfig(cfg, nil)
	if err != nil || p != nil {
		t.Errorf("offline provider = %v, err = %v", p, err)
	}
}

func TestOpenAppOffline(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Provider = config.ProviderOffline
	cfg.Model = "offline"
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.EmbeddingProvider = config.EmbeddingProviderHash
	cfgFile = filepath.Join(dir, config.FileName)
	if err := cfg.Save(cfgFile); err != nil {
		t.Fatal(err)
	}

	a, err := openApp(t.Context(), true)
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	defer a.Close()

	if a.repo.Len() == 0 {
		t.Error("expert patterns should be seeded")
	}
	if a.index == nil {
		t.Error("hash embedder should enable the corpus index")
	}
	s := a.pipeline(nil).Generate(t.Context(), nil, "build a todo app")
	if s.Documents.Requirements.FullContent == "" {
		t.Error("offline generation produced no requirements document")
	}
}
