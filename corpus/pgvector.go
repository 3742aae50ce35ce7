package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/lovepop1/emotiaisupport/schema"
)

// PgVectorStore backs the corpus with Postgres + pgvector, the layout the
// production deployment uses. Ordering relies on the `<=>` cosine distance
// operator so ranking matches the in-memory store.
type PgVectorStore struct {
	db        *sql.DB
	dimension int
}

// NewPgVectorStore connects to Postgres (with pgvector) and ensures the
// guide table exists.
func NewPgVectorStore(dsn string, dimension int) (*PgVectorStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return NewPgVectorStoreFromDB(db, dimension)
}

// NewPgVectorStoreFromDB reuses an existing *sql.DB.
func NewPgVectorStoreFromDB(db *sql.DB, dimension int) (*PgVectorStore, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if dimension <= 0 {
		dimension = 768
	}
	store := &PgVectorStore{db: db, dimension: dimension}
	if err := store.ensureTable(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PgVectorStore) ensureTable() error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS wellness_guides (
  id         text PRIMARY KEY,
  title      text NOT NULL,
  content    text NOT NULL,
  embedding  vector(%d),
  created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS wellness_guides_embedding_idx ON wellness_guides USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
`, s.dimension)
	_, err := s.db.Exec(ddl)
	return err
}

func (s *PgVectorStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PgVectorStore) AddDocs(ctx context.Context, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", schema.ErrPersistence, err)
	}
	defer tx.Rollback()

	stmt := `
INSERT INTO wellness_guides (id, title, content, embedding, created_at)
 VALUES ($1, $2, $3, $4, $5)
 ON CONFLICT (id) DO UPDATE SET
   title=EXCLUDED.title,
   content=EXCLUDED.content,
   embedding=EXCLUDED.embedding;
`
	for _, doc := range docs {
		var embLit any
		if doc.Embedded() {
			lit, err := toVectorLiteral(doc.Vector, s.dimension)
			if err != nil {
				return err
			}
			embLit = lit
		}
		createdAt := doc.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, stmt, doc.ID, doc.Title, doc.Content, embLit, createdAt); err != nil {
			return fmt.Errorf("%w: upsert guide %s: %v", schema.ErrPersistence, doc.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", schema.ErrPersistence, err)
	}
	return nil
}

func (s *PgVectorStore) ListDocs(ctx context.Context, limit int) ([]schema.Document, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, embedding::text, created_at FROM wellness_guides ORDER BY created_at, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list guides: %v", schema.ErrPersistence, err)
	}
	defer rows.Close()
	return scanDocs(rows)
}

func (s *PgVectorStore) Missing(ctx context.Context) ([]schema.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, embedding::text, created_at FROM wellness_guides WHERE embedding IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list unembedded guides: %v", schema.ErrPersistence, err)
	}
	defer rows.Close()
	return scanDocs(rows)
}

func (s *PgVectorStore) SetVector(ctx context.Context, id string, vec []float32) error {
	lit, err := toVectorLiteral(vec, s.dimension)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE wellness_guides SET embedding = $1 WHERE id = $2`, lit, id)
	if err != nil {
		return fmt.Errorf("%w: set embedding for %s: %v", schema.ErrPersistence, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: unknown document %s", schema.ErrPersistence, id)
	}
	return nil
}

func (s *PgVectorStore) SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	topK := 3
	if opts != nil && opts.TopK > 0 {
		topK = opts.TopK
	}
	lit, err := toVectorLiteral(vector, s.dimension)
	if err != nil {
		return nil, err
	}
	// created_at, id in ORDER BY keeps equal-distance results in stable
	// insertion order.
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, content, embedding <=> $1 AS distance
FROM wellness_guides
WHERE embedding IS NOT NULL
ORDER BY embedding <=> $1, created_at, id
LIMIT $2`, lit, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity query: %v", schema.ErrPersistence, err)
	}
	defer rows.Close()

	var results []schema.SearchResult
	for rows.Next() {
		var r schema.SearchResult
		if err := rows.Scan(&r.Document.ID, &r.Document.Title, &r.Document.Content, &r.Distance); err != nil {
			return nil, fmt.Errorf("%w: scan result: %v", schema.ErrPersistence, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanDocs(rows *sql.Rows) ([]schema.Document, error) {
	var docs []schema.Document
	for rows.Next() {
		var d schema.Document
		var emb sql.NullString
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &emb, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan guide: %v", schema.ErrPersistence, err)
		}
		if emb.Valid {
			vec, err := parseVectorLiteral(emb.String)
			if err != nil {
				return nil, err
			}
			d.Vector = vec
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func toVectorLiteral(vec []float32, dim int) (string, error) {
	if len(vec) == 0 {
		return "", errors.New("embedding is required")
	}
	if dim > 0 && len(vec) != dim {
		return "", fmt.Errorf("embedding length %d does not match dimension %d", len(vec), dim)
	}
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ",")), nil
}

func parseVectorLiteral(lit string) ([]float32, error) {
	lit = strings.Trim(strings.TrimSpace(lit), "[]")
	if lit == "" {
		return nil, nil
	}
	parts := strings.Split(lit, ",")
	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parse vector literal: %w", err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}
