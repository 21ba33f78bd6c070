package services

import (
	"context"
	"errors"
	"testing"

	"tutor-rag-platform/models"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeStore struct {
	results       []models.RetrievedChunk
	searchErr     error
	fallback      []models.RetrievedChunk
	fallbackErr   error
	searchCalls   int
	fallbackCalls int
}

func (f *fakeStore) Search(ctx context.Context, vector []float32, classLevel int, subject string, chapterNumbers []int, limit int) ([]models.RetrievedChunk, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if limit < len(f.results) {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func (f *fakeStore) FallbackSearch(ctx context.Context, classLevel int, subject string, chapterNumbers []int, limit int) ([]models.RetrievedChunk, error) {
	f.fallbackCalls++
	return f.fallback, f.fallbackErr
}

func chunk(text string, similarity float64) models.RetrievedChunk {
	return models.RetrievedChunk{Text: text, ChapterNumber: 1, ChapterTitle: "Test", Similarity: similarity}
}

func TestRetrieveFiltersAndSorts(t *testing.T) {
	store := &fakeStore{results: []models.RetrievedChunk{
		chunk("low", 0.2),
		chunk("high", 0.9),
		chunk("mid", 0.6),
		chunk("edge", 0.5),
	}}
	r := NewRetriever(&fakeEmbedder{}, store, 5, 0.5, nil)

	got, err := r.Retrieve(context.Background(), "what is velocity", 9, "Physics", []int{2}, 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d chunks, want 3 above threshold", len(got))
	}
	if got[0].Text != "high" || got[1].Text != "mid" || got[2].Text != "edge" {
		t.Errorf("order: %q %q %q", got[0].Text, got[1].Text, got[2].Text)
	}
}

func TestRetrieveTruncatesToTopK(t *testing.T) {
	store := &fakeStore{results: []models.RetrievedChunk{
		chunk("a", 0.9), chunk("b", 0.8), chunk("c", 0.7), chunk("d", 0.6),
	}}
	r := NewRetriever(&fakeEmbedder{}, store, 5, 0.5, nil)

	got, err := r.Retrieve(context.Background(), "query", 9, "Physics", nil, 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d chunks, want topK=2", len(got))
	}
}

func TestRetrieveFallsBackOnSearchError(t *testing.T) {
	store := &fakeStore{
		searchErr: errors.New("index unavailable"),
		fallback:  []models.RetrievedChunk{chunk("fallback", FallbackPlaceholderSimilarity)},
	}
	r := NewRetriever(&fakeEmbedder{}, store, 5, 0.5, nil)

	got, err := r.Retrieve(context.Background(), "query", 9, "Physics", []int{1}, 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if store.fallbackCalls != 1 {
		t.Errorf("fallback calls = %d, want 1", store.fallbackCalls)
	}
	if len(got) != 1 || got[0].Similarity != FallbackPlaceholderSimilarity {
		t.Errorf("fallback results not passed through: %+v", got)
	}
}

func TestRetrieveFallbackErrorSurfaces(t *testing.T) {
	store := &fakeStore{
		searchErr:   errors.New("index unavailable"),
		fallbackErr: errors.New("mongo down"),
	}
	r := NewRetriever(&fakeEmbedder{}, store, 5, 0.5, nil)

	if _, err := r.Retrieve(context.Background(), "query", 9, "Physics", nil, 5); err == nil {
		t.Fatalf("expected error when both paths fail")
	}
}

func TestRetrieveEmbedderErrorSurfaces(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{err: errors.New("quota")}, &fakeStore{}, 5, 0.5, nil)
	if _, err := r.Retrieve(context.Background(), "query", 9, "Physics", nil, 5); err == nil {
		t.Fatalf("expected embedder error to surface")
	}
}

func TestRetrieveWithExpansionDeduplicates(t *testing.T) {
	// Same chunks come back for each query variant: merged output must
	// contain each distinct chunk once.
	store := &fakeStore{results: []models.RetrievedChunk{
		chunk("photosynthesis converts light energy", 0.9),
		chunk("chlorophyll absorbs light", 0.7),
	}}
	r := NewRetriever(&fakeEmbedder{}, store, 5, 0.5, nil)

	got, err := r.RetrieveWithExpansion(context.Background(), "photosynthesis", 9, "Biology", []int{4})
	if err != nil {
		t.Fatalf("RetrieveWithExpansion: %v", err)
	}
	// Declarative query expands to two variants: three searches total.
	if store.searchCalls != 3 {
		t.Errorf("search calls = %d, want 3", store.searchCalls)
	}
	if len(got) != 2 {
		t.Errorf("got %d chunks after dedupe, want 2", len(got))
	}
	if got[0].Similarity < got[1].Similarity {
		t.Errorf("merged results not sorted")
	}
}

func TestExpandQuery(t *testing.T) {
	if got := expandQuery("What is inertia"); got != nil {
		t.Errorf("question query expanded: %v", got)
	}
	if got := expandQuery("Explain osmosis"); got != nil {
		t.Errorf("explain query expanded: %v", got)
	}
	got := expandQuery("newton's laws")
	if len(got) != 2 || got[0] != "What is newton's laws" || got[1] != "Explain newton's laws" {
		t.Errorf("expansion = %v", got)
	}
}
