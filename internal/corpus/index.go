package corpus

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/promptsuite/internal/embeddings"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

const collectionName = "corpus"

// Hit is one semantic search result.
type Hit struct {
	Entry      types.CorpusEntry `json:"entry"`
	Similarity float32           `json:"similarity"`
}

// Index is an optional in-memory semantic index over corpus entries.
type Index struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewIndex creates an empty index that embeds with embedder.
func NewIndex(embedder embeddings.Embedder) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("semantic index needs an embedder")
	}
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)
	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{db: db, collection: col, embedFunc: ef}, nil
}

// Add indexes entries. Re-adding an entry with the same key replaces it.
func (ix *Index) Add(ctx context.Context, entries []types.CorpusEntry) error {
	docs := make([]chromem.Document, 0, len(entries))
	for _, e := range Dedupe(entries) {
		if Validate(e) != nil {
			continue
		}
		emb, err := ix.embedFunc(ctx, e.Title+"\n"+e.Content)
		if err != nil {
			return fmt.Errorf("embedding %q: %w", e.Title, err)
		}
		docs = append(docs, chromem.Document{
			ID:        Key(e),
			Content:   e.Content,
			Embedding: emb,
			Metadata: map[string]string{
				"title":    e.Title,
				"category": strings.ToLower(e.Category),
				"source":   e.Source,
				"tags":     strings.Join(e.Tags, ","),
			},
		})
	}
	if len(docs) == 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.collection.AddDocuments(ctx, docs, 1)
}

// Search returns up to n entries most similar to query. category, when
// set, restricts results to that category.
func (ix *Index) Search(ctx context.Context, query string, n int, category string) ([]Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if n <= 0 {
		n = 5
	}
	// chromem-go requires nResults <= collection size.
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if n > count {
		n = count
	}

	var where map[string]string
	if category != "" {
		where = map[string]string{"category": strings.ToLower(category)}
	}
	results, err := ix.collection.Query(ctx, query, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		var tags []string
		if t := r.Metadata["tags"]; t != "" {
			tags = strings.Split(t, ",")
		}
		hits[i] = Hit{
			Entry: types.CorpusEntry{
				Title:    r.Metadata["title"],
				Content:  r.Content,
				Category: r.Metadata["category"],
				Source:   r.Metadata["source"],
				Tags:     tags,
			},
			Similarity: r.Similarity,
		}
	}
	return hits, nil
}

// Count returns the number of indexed entries.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.collection.Count()
}

// Save exports the index to a compressed file.
func (ix *Index) Save(path string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if err := ix.db.ExportToFile(path, true, ""); err != nil {
		return fmt.Errorf("export index: %w", err)
	}
	return nil
}

// Load replaces the index contents with a previously saved file. A missing
// file leaves the index empty.
func (ix *Index) Load(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("import index: %w", err)
	}
	// Re-acquire collection reference after import.
	col := ix.db.GetCollection(collectionName, ix.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	ix.collection = col
	return nil
}
