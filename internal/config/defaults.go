package config

import (
	"path/filepath"
	"time"
)

// FileName is the default configuration file name.
const FileName = ".promptsuite.yml"

// DatabaseFile is the SQLite file created inside DataDir.
const DatabaseFile = "promptsuite.db"

// ProviderPreset holds the default models for a provider.
type ProviderPreset struct {
	Model             string
	EmbeddingProvider ProviderType
	EmbeddingModel    string
}

var providerPresets = map[ProviderType]ProviderPreset{
	ProviderOpenAI:     {Model: "gpt-4o-mini", EmbeddingProvider: ProviderOpenAI, EmbeddingModel: "text-embedding-3-small"},
	ProviderOpenRouter: {Model: "openai/gpt-4o-mini", EmbeddingProvider: EmbeddingProviderNone},
	ProviderOllama:     {Model: "llama3", EmbeddingProvider: ProviderOllama, EmbeddingModel: "nomic-embed-text"},
	ProviderOffline:    {Model: "offline", EmbeddingProvider: EmbeddingProviderNone},
}

// GetPreset returns the preset for the given provider, or the OpenAI preset
// if the provider is unknown.
func GetPreset(provider ProviderType) ProviderPreset {
	if p, ok := providerPresets[provider]; ok {
		return p
	}
	return providerPresets[ProviderOpenAI]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:             ProviderOpenAI,
		Model:                "gpt-4o-mini",
		EmbeddingProvider:    EmbeddingProviderNone,
		EmbeddingModel:       "text-embedding-3-small",
		DataDir:              ".promptsuite",
		RequestTimeout:       90 * time.Second,
		MaxRetries:           2,
		RateLimitRPM:         60,
		AcceptThreshold:      8.5,
		StrongMatchThreshold: 40,
		MaxConcurrency:       4,
		ExcerptChars:         600,
		MinDocumentChars:     2000,
		LogMode:              "dev",
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// DatabasePath returns the path of the SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, DatabaseFile)
}

// IndexPath returns the path of the exported semantic corpus index.
func (c *Config) IndexPath() string {
	return filepath.Join(c.DataDir, "corpus-index.gob")
}
