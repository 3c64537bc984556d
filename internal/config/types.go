package config

import "time"

// ProviderType identifies a text-generation provider.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderOllama     ProviderType = "ollama"
	ProviderOffline    ProviderType = "offline"
)

const (
	// EmbeddingProviderNone disables the semantic corpus index.
	EmbeddingProviderNone ProviderType = "none"
	// EmbeddingProviderHash indexes with a local bag-of-words embedder.
	EmbeddingProviderHash ProviderType = "hash"
)

// Config is the top-level promptsuite configuration, corresponding to .promptsuite.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	BaseURL           string       `yaml:"base_url,omitempty" koanf:"base_url"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	DataDir     string   `yaml:"data_dir" koanf:"data_dir"`
	CorpusPaths []string `yaml:"corpus_paths" koanf:"corpus_paths"`

	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries" koanf:"max_retries"`
	RateLimitRPM   int           `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`

	AcceptThreshold      float64 `yaml:"accept_threshold" koanf:"accept_threshold"`
	StrongMatchThreshold int     `yaml:"strong_match_threshold" koanf:"strong_match_threshold"`
	MaxConcurrency       int     `yaml:"max_concurrency" koanf:"max_concurrency"`
	ExcerptChars         int     `yaml:"excerpt_chars" koanf:"excerpt_chars"`
	MinDocumentChars     int     `yaml:"min_document_chars" koanf:"min_document_chars"`

	LogMode string       `yaml:"log_mode" koanf:"log_mode"`
	Server  ServerConfig `yaml:"server" koanf:"server"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
