// Package embeddings turns corpus text into vectors for the semantic index.
package embeddings

import (
	"context"
	"fmt"
	"os"
)

// Embedder generates text embeddings.
type Embedder interface {
	// Embed generates one embedding per text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Name returns the name of the embedding model.
	Name() string
}

// New creates an embedder by provider name. Provider "none" or "" returns
// a nil Embedder and no error; callers then skip semantic indexing.
func New(provider, model, baseURL string) (Embedder, error) {
	switch provider {
	case "", "none":
		return nil, nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIEmbedder(apiKey, model, baseURL), nil
	case "ollama":
		if baseURL == "" {
			baseURL = os.Getenv("OLLAMA_HOST")
		}
		return NewOllamaEmbedder(model, baseURL), nil
	case "hash":
		return NewHashEmbedder(256), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
