// Package retriever implements similarity search over the guidance corpus.
package retriever

import (
	"context"

	"github.com/lovepop1/emotiaisupport/embedding"
	"github.com/lovepop1/emotiaisupport/schema"
)

// Store is the slice of the corpus store the retriever needs: a similarity
// query over documents that already carry embeddings.
type Store interface {
	SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error)
}

// VectorRetriever embeds a query and runs nearest-neighbor search against
// the corpus store.
//
// An empty embedded corpus yields an empty result, never an error: callers
// degrade to ungrounded generation instead of failing the turn.
type VectorRetriever struct {
	Embed embedding.Provider
	Store Store
	// TopK is the default result count when a call passes topK <= 0.
	TopK int
}

// Search embeds the query text and returns the topK nearest documents by
// cosine distance, ascending.
func (r *VectorRetriever) Search(ctx context.Context, query string, topK int) ([]schema.SearchResult, error) {
	if topK <= 0 {
		if r.TopK > 0 {
			topK = r.TopK
		} else {
			topK = 3
		}
	}
	vec, err := r.Embed.GetEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.Store.SearchDocs(ctx, vec, &schema.SearchOptions{TopK: topK})
}

// SearchVector runs nearest-neighbor search for an already-computed query
// vector, so a turn that embedded the message once does not embed twice.
func (r *VectorRetriever) SearchVector(ctx context.Context, vec []float32, topK int) ([]schema.SearchResult, error) {
	if topK <= 0 {
		if r.TopK > 0 {
			topK = r.TopK
		} else {
			topK = 3
		}
	}
	return r.Store.SearchDocs(ctx, vec, &schema.SearchOptions{TopK: topK})
}
