package retriever

import (
	"math"
	"testing"

	"github.com/lovepop1/emotiaisupport/schema"
)

func doc(id string, vec ...float32) schema.Document {
	return schema.Document{ID: id, Title: id, Content: id, Vector: vec}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 0}, b: []float32{1, 0}, want: 0},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 1},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: 2},
		{name: "scale invariant", a: []float32{2, 0}, b: []float32{5, 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineDistance(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("CosineDistance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineDistance_Incomparable(t *testing.T) {
	if got := CosineDistance([]float32{1, 2}, []float32{1, 2, 3}); got != math.MaxFloat64 {
		t.Errorf("mismatched dimensions should rank last, got %v", got)
	}
	if got := CosineDistance([]float32{0, 0}, []float32{1, 2}); got != math.MaxFloat64 {
		t.Errorf("zero-norm vector should rank last, got %v", got)
	}
}

func TestRank_OrderAndCardinality(t *testing.T) {
	docs := []schema.Document{
		doc("far", 0, 1),
		doc("near", 1, 0.05),
		doc("mid", 1, 1),
	}
	query := []float32{1, 0}

	got := Rank(docs, query, 3, CosineDistance)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	wantOrder := []string{"near", "mid", "far"}
	for i, id := range wantOrder {
		if got[i].Document.ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].Document.ID, id)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Distance < got[i-1].Distance {
			t.Errorf("distances not non-decreasing at %d: %v", i, got)
		}
	}
}

func TestRank_SmallCorpusReturnsAll(t *testing.T) {
	docs := []schema.Document{doc("a", 1, 0), doc("b", 0, 1)}

	got := Rank(docs, []float32{1, 0}, 5, CosineDistance)
	if len(got) != 2 {
		t.Fatalf("expected all 2 documents, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, r := range got {
		if seen[r.Document.ID] {
			t.Errorf("duplicate document %s", r.Document.ID)
		}
		seen[r.Document.ID] = true
	}
}

func TestRank_EmptyAndUnembedded(t *testing.T) {
	if got := Rank(nil, []float32{1}, 3, CosineDistance); len(got) != 0 {
		t.Fatalf("empty corpus should yield empty result, got %v", got)
	}
	docs := []schema.Document{{ID: "no-vector", Content: "x"}}
	if got := Rank(docs, []float32{1}, 3, CosineDistance); len(got) != 0 {
		t.Fatalf("unembedded docs should be skipped, got %v", got)
	}
}

func TestRank_TieBreakPreservesInsertionOrder(t *testing.T) {
	// Same vector: identical distance, insertion order must hold.
	docs := []schema.Document{
		doc("first", 1, 1),
		doc("second", 1, 1),
		doc("third", 1, 1),
	}

	got := Rank(docs, []float32{1, 0}, 3, CosineDistance)
	for i, id := range []string{"first", "second", "third"} {
		if got[i].Document.ID != id {
			t.Fatalf("tie-break broke insertion order: %v", got)
		}
	}
}

func TestRank_Deterministic(t *testing.T) {
	docs := []schema.Document{doc("a", 1, 0.3), doc("b", 0.4, 1), doc("c", 0.9, 0.9)}
	query := []float32{0.7, 0.2}

	first := Rank(docs, query, 3, CosineDistance)
	for i := 0; i < 10; i++ {
		again := Rank(docs, query, 3, CosineDistance)
		for j := range first {
			if again[j].Document.ID != first[j].Document.ID {
				t.Fatalf("ordering not deterministic on run %d", i)
			}
		}
	}
}
