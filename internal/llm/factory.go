package llm

import (
	"fmt"
	"os"
)

// NewProvider creates a provider by type. Supported types: "openai",
// "openrouter", "ollama", "offline". baseURL overrides the endpoint for
// openai and ollama.
func NewProvider(providerType, model, baseURL string) (Provider, error) {
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model, baseURL), nil

	case "openrouter":
		apiKey := os.Getenv("OPENROUTER_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
		}
		return NewOpenRouterProvider(apiKey, model), nil

	case "ollama":
		host := baseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	case "offline":
		return OfflineProvider{}, nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
