package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.AcceptThreshold != 8.5 {
		t.Errorf("expected accept_threshold 8.5, got %v", cfg.AcceptThreshold)
	}
	if cfg.StrongMatchThreshold != 40 {
		t.Errorf("expected strong_match_threshold 40, got %d", cfg.StrongMatchThreshold)
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("expected default max_concurrency 4, got %d", cfg.MaxConcurrency)
	}
	if cfg.RequestTimeout != 90*time.Second {
		t.Errorf("expected request_timeout 90s, got %v", cfg.RequestTimeout)
	}
	if got := cfg.DatabasePath(); got != filepath.Join(".promptsuite", "promptsuite.db") {
		t.Errorf("unexpected database path %q", got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.promptsuite.yml")

	original := DefaultConfig()
	original.Provider = ProviderOllama
	original.Model = "llama3:70b"
	original.CorpusPaths = []string{"corpus/**/*.json", "extra.yaml"}
	original.RequestTimeout = 45 * time.Second
	original.AcceptThreshold = 9.0
	original.Server.Port = 9090

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.RequestTimeout != original.RequestTimeout {
		t.Errorf("request_timeout: got %v, want %v", loaded.RequestTimeout, original.RequestTimeout)
	}
	if loaded.AcceptThreshold != original.AcceptThreshold {
		t.Errorf("accept_threshold: got %v, want %v", loaded.AcceptThreshold, original.AcceptThreshold)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("server.port: got %d, want 9090", loaded.Server.Port)
	}
	if len(loaded.CorpusPaths) != len(original.CorpusPaths) {
		t.Fatalf("corpus_paths length: got %d, want %d", len(loaded.CorpusPaths), len(original.CorpusPaths))
	}
	for i, v := range loaded.CorpusPaths {
		if v != original.CorpusPaths[i] {
			t.Errorf("corpus_paths[%d]: got %q, want %q", i, v, original.CorpusPaths[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("PROMPTSUITE_PROVIDER", "offline")
	t.Setenv("PROMPTSUITE_MAX_RETRIES", "5")
	t.Setenv("PROMPTSUITE_SERVER_PORT", "7070")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOffline {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOffline)
	}
	if loaded.MaxRetries != 5 {
		t.Errorf("max_retries: got %d, want 5", loaded.MaxRetries)
	}
	if loaded.Server.Port != 7070 {
		t.Errorf("server.port: got %d, want 7070", loaded.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"offline provider", func(c *Config) { c.Provider = ProviderOffline }, false},
		{"empty provider", func(c *Config) { c.Provider = "" }, true},
		{"invalid provider", func(c *Config) { c.Provider = "anthropic" }, true},
		{"empty model", func(c *Config) { c.Model = "" }, true},
		{"invalid embedding provider", func(c *Config) { c.EmbeddingProvider = "google" }, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"threshold above ten", func(c *Config) { c.AcceptThreshold = 11 }, true},
		{"strong match above hundred", func(c *Config) { c.StrongMatchThreshold = 101 }, true},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }, true},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, true},
		{"zero excerpt", func(c *Config) { c.ExcerptChars = 0 }, true},
		{"bad log mode", func(c *Config) { c.LogMode = "verbose" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	if p := GetPreset(ProviderOllama); p.EmbeddingModel != "nomic-embed-text" {
		t.Errorf("expected nomic-embed-text, got %q", p.EmbeddingModel)
	}
	if p := GetPreset("unknown"); p.Model != "gpt-4o-mini" {
		t.Errorf("expected fallback to gpt-4o-mini, got %q", p.Model)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderOpenRouter, "OPENROUTER_API_KEY"},
		{ProviderOllama, ""},
		{ProviderOffline, ""},
	}
	for _, tt := range tests {
		if got := APIKeyEnvVar(tt.provider); got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.json", []string{"**/*.json"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
