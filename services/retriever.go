package services

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"

	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/internal/telemetry"
	"tutor-rag-platform/models"
)

// QueryEmbedder embeds query text. Satisfied by ai.EmbeddingClient.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SearchStore is the retrieval surface of the vector store.
type SearchStore interface {
	Search(ctx context.Context, vector []float32, classLevel int, subject string, chapterNumbers []int, limit int) ([]models.RetrievedChunk, error)
	FallbackSearch(ctx context.Context, classLevel int, subject string, chapterNumbers []int, limit int) ([]models.RetrievedChunk, error)
}

// Retriever executes chapter-scoped similarity search with a threshold
// filter. When the search stage errors it degrades to the store's direct
// fallback so availability wins over ranking precision.
type Retriever struct {
	embedder  QueryEmbedder
	store     SearchStore
	topK      int
	threshold float64
	metrics   *telemetry.Metrics
}

func NewRetriever(embedder QueryEmbedder, store SearchStore, topK int, threshold float64, metrics *telemetry.Metrics) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		embedder:  embedder,
		store:     store,
		topK:      topK,
		threshold: threshold,
		metrics:   metrics,
	}
}

// Retrieve returns up to topK chunks ordered by similarity descending, all
// at or above the similarity threshold. topK <= 0 uses the configured
// default. An empty result is a valid terminal state, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, classLevel int, subject string, chapterNumbers []int, topK int) ([]models.RetrievedChunk, error) {
	if topK <= 0 {
		topK = r.topK
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	// Over-fetch so the threshold filter still leaves enough candidates.
	results, err := r.store.Search(ctx, vector, classLevel, subject, chapterNumbers, topK*2)
	if err != nil {
		logger.Warn("vector search degraded to direct query",
			"error", err,
			"class_level", classLevel,
			"subject", subject)
		if r.metrics != nil {
			r.metrics.RecordDegradedSearch(ctx, "vector_search_error")
		}

		fallback, ferr := r.store.FallbackSearch(ctx, classLevel, subject, chapterNumbers, topK)
		if ferr != nil {
			return nil, ferr
		}
		return fallback, nil
	}

	filtered := results[:0:0]
	for _, chunk := range results {
		if chunk.Similarity >= r.threshold {
			filtered = append(filtered, chunk)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Similarity > filtered[j].Similarity
	})

	if len(filtered) > topK {
		filtered = filtered[:topK]
	}

	return filtered, nil
}

// RetrieveWithExpansion is the recall-oriented entry point: for queries not
// already phrased as a question it also runs "What is X" and "Explain X"
// variants, dedupes by leading-text hash, and re-ranks the merged pool.
func (r *Retriever) RetrieveWithExpansion(ctx context.Context, query string, classLevel int, subject string, chapterNumbers []int) ([]models.RetrievedChunk, error) {
	queries := append([]string{query}, expandQuery(query)...)

	var merged []models.RetrievedChunk
	seen := make(map[uint64]bool)

	for _, q := range queries {
		chunks, err := r.Retrieve(ctx, q, classLevel, subject, chapterNumbers, r.topK)
		if err != nil {
			return nil, err
		}

		for _, chunk := range chunks {
			h := leadingTextHash(chunk.Text)
			if seen[h] {
				continue
			}
			seen[h] = true
			merged = append(merged, chunk)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})

	if len(merged) > r.topK {
		merged = merged[:r.topK]
	}

	return merged, nil
}

// expandQuery synthesizes definitional variants for queries that are not
// already phrased as questions.
func expandQuery(query string) []string {
	lower := strings.ToLower(query)
	for _, prefix := range []string{"what", "how", "why", "define", "explain"} {
		if strings.HasPrefix(lower, prefix) {
			return nil
		}
	}
	return []string{"What is " + query, "Explain " + query}
}

// leadingTextHash hashes the first 100 bytes of chunk text for dedupe.
func leadingTextHash(text string) uint64 {
	if len(text) > 100 {
		text = text[:100]
	}
	h := fnv.New64a()
	h.Write([]byte(text))
	return h.Sum64()
}
