// Package schema defines the data types shared across the wellness chat
// pipeline: guidance documents, retrieval results and conversation turns.
package schema

import "time"

// Document is a single guidance document from the corpus.
// Vector holds the precomputed embedding; a document with a nil or empty
// Vector is excluded from retrieval until the backfill fills it in.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Vector    []float32 `json:"vector,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Embedded reports whether the document carries a usable embedding.
func (d Document) Embedded() bool { return len(d.Vector) > 0 }

// SearchResult pairs a document with its distance to the query vector.
// Distance is cosine distance (1 - cosine similarity): smaller is more
// relevant. Results are always ordered by non-decreasing distance.
type SearchResult struct {
	Document Document `json:"document"`
	Distance float64  `json:"distance"`
}

// SearchOptions controls a similarity query.
type SearchOptions struct {
	TopK int `json:"top_k"`
}

// ConversationTurn is one user message and the response generated for it.
// Turns are immutable once created and ordered by CreatedAt.
type ConversationTurn struct {
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}
