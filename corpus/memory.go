package corpus

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lovepop1/emotiaisupport/retriever"
	"github.com/lovepop1/emotiaisupport/schema"
)

// MemoryStore keeps the corpus in process memory, preserving insertion
// order. Suited to the small, mostly static corpus this service works
// with, and to tests.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  []schema.Document
	index map[string]int // id -> position in docs
	dist  retriever.DistanceFunc
}

// NewMemoryStore creates an in-memory corpus store. A nil distance
// function defaults to cosine distance.
func NewMemoryStore(dist retriever.DistanceFunc) *MemoryStore {
	if dist == nil {
		dist = retriever.CosineDistance
	}
	return &MemoryStore{index: make(map[string]int), dist: dist}
}

func (s *MemoryStore) AddDocs(ctx context.Context, docs []schema.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.New().String()
		}
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now()
		}
		if pos, ok := s.index[doc.ID]; ok {
			s.docs[pos] = doc
			continue
		}
		s.index[doc.ID] = len(s.docs)
		s.docs = append(s.docs, doc)
	}
	return nil
}

func (s *MemoryStore) ListDocs(ctx context.Context, limit int) ([]schema.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.docs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]schema.Document, n)
	copy(out, s.docs[:n])
	return out, nil
}

func (s *MemoryStore) Missing(ctx context.Context) ([]schema.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schema.Document
	for _, doc := range s.docs {
		if !doc.Embedded() {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *MemoryStore) SetVector(ctx context.Context, id string, vec []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: unknown document %s", schema.ErrPersistence, id)
	}
	v := make([]float32, len(vec))
	copy(v, vec)
	s.docs[pos].Vector = v
	return nil
}

// SearchDocs ranks against a snapshot taken under the read lock, so a
// concurrent backfill cannot change the result set mid-computation.
func (s *MemoryStore) SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	s.mu.RLock()
	snapshot := make([]schema.Document, len(s.docs))
	copy(snapshot, s.docs)
	s.mu.RUnlock()

	topK := 3
	if opts != nil && opts.TopK > 0 {
		topK = opts.TopK
	}
	return retriever.Rank(snapshot, vector, topK, s.dist), nil
}

// seedFile is the YAML shape of a corpus seed document.
type seedFile struct {
	Documents []struct {
		ID      string `yaml:"id"`
		Title   string `yaml:"title"`
		Content string `yaml:"content"`
	} `yaml:"documents"`
}

// LoadSeed reads guidance documents from a YAML file into the store.
// Seeded documents carry no embedding; the backfill fills them in.
func (s *MemoryStore) LoadSeed(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read corpus seed: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parse corpus seed: %w", err)
	}
	docs := make([]schema.Document, 0, len(seed.Documents))
	for _, d := range seed.Documents {
		docs = append(docs, schema.Document{ID: d.ID, Title: d.Title, Content: d.Content})
	}
	if err := s.AddDocs(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}
