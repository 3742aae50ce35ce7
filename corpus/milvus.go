package corpus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/lovepop1/emotiaisupport/config"
	"github.com/lovepop1/emotiaisupport/schema"
)

const (
	milvusFieldID        = "id"
	milvusFieldTitle     = "title"
	milvusFieldContent   = "content"
	milvusFieldEmbedding = "embedding"
	milvusFieldCreatedAt = "created_at"
)

// MilvusStore backs the corpus with a Milvus collection.
//
// Milvus requires a vector on every insert, so documents must arrive
// already embedded and Missing always reports an empty set. Run the
// embedding backfill before handing documents to this store.
type MilvusStore struct {
	cli        client.Client
	collection string
	dimension  int
}

// NewMilvusStore connects to Milvus and ensures the collection and its
// HNSW cosine index exist.
func NewMilvusStore(ctx context.Context, cfg config.CorpusConfig, dimension int) (*MilvusStore, error) {
	if dimension <= 0 {
		dimension = 768
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "wellness_guides"
	}
	cli, err := client.NewClient(ctx, client.Config{
		Address:  fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connect milvus: %v", schema.ErrPersistence, err)
	}
	store := &MilvusStore{cli: cli, collection: collection, dimension: dimension}
	if err := store.ensureCollection(ctx); err != nil {
		cli.Close()
		return nil, err
	}
	return store, nil
}

func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	exists, err := s.cli.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("%w: check collection: %v", schema.ErrPersistence, err)
	}
	if !exists {
		collSchema := entity.NewSchema().
			WithName(s.collection).
			WithField(entity.NewField().WithName(milvusFieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(milvusFieldTitle).WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
			WithField(entity.NewField().WithName(milvusFieldContent).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName(milvusFieldCreatedAt).WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName(milvusFieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dimension)))
		if err := s.cli.CreateCollection(ctx, collSchema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("%w: create collection: %v", schema.ErrPersistence, err)
		}
		index, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
		if err != nil {
			return fmt.Errorf("%w: build index params: %v", schema.ErrPersistence, err)
		}
		if err := s.cli.CreateIndex(ctx, s.collection, milvusFieldEmbedding, index, false); err != nil {
			return fmt.Errorf("%w: create index: %v", schema.ErrPersistence, err)
		}
	}
	if err := s.cli.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("%w: load collection: %v", schema.ErrPersistence, err)
	}
	return nil
}

func (s *MilvusStore) Close() error {
	return s.cli.Close()
}

func (s *MilvusStore) AddDocs(ctx context.Context, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(docs))
	titles := make([]string, 0, len(docs))
	contents := make([]string, 0, len(docs))
	createdAts := make([]int64, 0, len(docs))
	vectors := make([][]float32, 0, len(docs))
	for _, doc := range docs {
		if !doc.Embedded() {
			return fmt.Errorf("%w: document %s has no embedding; milvus requires vectors on insert", schema.ErrInvalidInput, doc.ID)
		}
		if len(doc.Vector) != s.dimension {
			return fmt.Errorf("%w: document %s embedding length %d, want %d", schema.ErrInvalidInput, doc.ID, len(doc.Vector), s.dimension)
		}
		createdAt := doc.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		ids = append(ids, doc.ID)
		titles = append(titles, doc.Title)
		contents = append(contents, doc.Content)
		createdAts = append(createdAts, createdAt.UnixMilli())
		vectors = append(vectors, doc.Vector)
	}
	_, err := s.cli.Upsert(ctx, s.collection, "",
		entity.NewColumnVarChar(milvusFieldID, ids),
		entity.NewColumnVarChar(milvusFieldTitle, titles),
		entity.NewColumnVarChar(milvusFieldContent, contents),
		entity.NewColumnInt64(milvusFieldCreatedAt, createdAts),
		entity.NewColumnFloatVector(milvusFieldEmbedding, s.dimension, vectors),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert guides: %v", schema.ErrPersistence, err)
	}
	return nil
}

func (s *MilvusStore) ListDocs(ctx context.Context, limit int) ([]schema.Document, error) {
	if limit <= 0 {
		limit = 1000
	}
	rs, err := s.cli.Query(ctx, s.collection, nil, "",
		[]string{milvusFieldID, milvusFieldTitle, milvusFieldContent, milvusFieldCreatedAt},
		client.WithLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("%w: list guides: %v", schema.ErrPersistence, err)
	}
	return columnsToDocs(rs)
}

// Missing is always empty: this store only accepts embedded documents.
func (s *MilvusStore) Missing(ctx context.Context) ([]schema.Document, error) {
	return nil, nil
}

// SetVector is not reachable in practice since Missing is empty; a direct
// call reports the document as not updatable in place.
func (s *MilvusStore) SetVector(ctx context.Context, id string, vec []float32) error {
	return fmt.Errorf("%w: milvus store does not update embeddings in place; re-insert document %s", schema.ErrPersistence, id)
}

func (s *MilvusStore) SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	topK := 3
	if opts != nil && opts.TopK > 0 {
		topK = opts.TopK
	}
	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("%w: build search params: %v", schema.ErrPersistence, err)
	}
	res, err := s.cli.Search(ctx, s.collection, nil, "",
		[]string{milvusFieldID, milvusFieldTitle, milvusFieldContent},
		[]entity.Vector{entity.FloatVector(vector)},
		milvusFieldEmbedding, entity.COSINE, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity query: %v", schema.ErrPersistence, err)
	}
	if len(res) == 0 {
		return nil, nil
	}

	hit := res[0]
	docs, err := columnsToDocs(hit.Fields)
	if err != nil {
		return nil, err
	}
	results := make([]schema.SearchResult, 0, len(docs))
	for i, d := range docs {
		// COSINE scores are similarities; convert to the distance the
		// rest of the pipeline ranks by.
		dist := 1.0
		if i < len(hit.Scores) {
			dist = 1.0 - float64(hit.Scores[i])
		}
		results = append(results, schema.SearchResult{Document: d, Distance: dist})
	}
	return results, nil
}

func columnsToDocs(rs client.ResultSet) ([]schema.Document, error) {
	idCol, ok := rs.GetColumn(milvusFieldID).(*entity.ColumnVarChar)
	if !ok {
		return nil, fmt.Errorf("%w: result set missing id column", schema.ErrPersistence)
	}
	titleCol, _ := rs.GetColumn(milvusFieldTitle).(*entity.ColumnVarChar)
	contentCol, _ := rs.GetColumn(milvusFieldContent).(*entity.ColumnVarChar)
	createdCol, _ := rs.GetColumn(milvusFieldCreatedAt).(*entity.ColumnInt64)

	docs := make([]schema.Document, 0, idCol.Len())
	for i := 0; i < idCol.Len(); i++ {
		var d schema.Document
		d.ID, _ = idCol.ValueByIdx(i)
		if titleCol != nil {
			d.Title, _ = titleCol.ValueByIdx(i)
		}
		if contentCol != nil {
			d.Content, _ = contentCol.ValueByIdx(i)
		}
		if createdCol != nil {
			if ms, err := createdCol.ValueByIdx(i); err == nil {
				d.CreatedAt = time.UnixMilli(ms).UTC()
			}
		}
		docs = append(docs, d)
	}
	return docs, nil
}
