// Package corpus stores the guidance documents the chat pipeline grounds
// its responses on, along with their precomputed embeddings.
package corpus

import (
	"context"
	"fmt"
	"strings"

	"github.com/lovepop1/emotiaisupport/config"
	"github.com/lovepop1/emotiaisupport/schema"
)

// Store is the corpus backend abstraction.
//
// Retrieval reads a stable snapshot per call: a concurrent backfill that
// fills embeddings mid-scan never changes the result set of an in-flight
// similarity query.
type Store interface {
	// AddDocs inserts or replaces documents. Documents may arrive without
	// an embedding; they stay invisible to SearchDocs until backfilled.
	AddDocs(ctx context.Context, docs []schema.Document) error

	// ListDocs returns up to limit documents in insertion order.
	ListDocs(ctx context.Context, limit int) ([]schema.Document, error)

	// Missing returns the documents that lack an embedding.
	Missing(ctx context.Context) ([]schema.Document, error)

	// SetVector persists the embedding for a document.
	SetVector(ctx context.Context, id string, vec []float32) error

	// SearchDocs returns the TopK nearest embedded documents by cosine
	// distance, ascending. An empty embedded corpus yields an empty
	// result, not an error.
	SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error)
}

// NewStore creates a corpus store from config.
func NewStore(cfg config.CorpusConfig, dimensions int) (Store, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "memory":
		return NewMemoryStore(nil), nil
	case "pgvector":
		return NewPgVectorStore(cfg.DSN, dimensions)
	case "milvus":
		return NewMilvusStore(context.Background(), cfg, dimensions)
	default:
		return nil, fmt.Errorf("unknown corpus provider: %s", cfg.Provider)
	}
}
