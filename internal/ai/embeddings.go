package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
)

const embedMaxRetries = 8

// EmbeddingClient generates embeddings with the Gemini API. Document and
// query embeddings use distinct task types (asymmetric retrieval). Rate
// limits are absorbed by rotating across all configured keys, with a capped
// exponential backoff once a full rotation is exhausted.
type EmbeddingClient struct {
	rotator *KeyRotator
	model   string
	dim     int

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func NewEmbeddingClient(cfg *config.Config) (*EmbeddingClient, error) {
	rotator, err := NewKeyRotator(cfg.GeminiAPIKeys, "gemini-embeddings")
	if err != nil {
		return nil, err
	}
	return &EmbeddingClient{
		rotator: rotator,
		model:   cfg.EmbeddingsModel,
		dim:     cfg.EmbeddingDimensions,
		clients: make(map[string]*genai.Client),
	}, nil
}

// Dimension is the fixed vector length for this client. It must stay
// constant for a given store so vectors remain comparable.
func (ec *EmbeddingClient) Dimension() int {
	return ec.dim
}

// EmbedDocument embeds passage text for storage.
func (ec *EmbeddingClient) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return ec.embed(ctx, text, genai.TaskTypeRetrievalDocument)
}

// EmbedQuery embeds a search query.
func (ec *EmbeddingClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return ec.embed(ctx, text, genai.TaskTypeRetrievalQuery)
}

// EmbedBatch embeds a slice of documents sequentially, preserving order.
func (ec *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vec, err := ec.EmbedDocument(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding %d/%d failed: %w", i+1, len(texts), err)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (ec *EmbeddingClient) embed(ctx context.Context, text string, taskType genai.TaskType) ([]float32, error) {
	keysTried := 0
	totalKeys := ec.rotator.Count()

	for attempt := 0; attempt < embedMaxRetries; attempt++ {
		client, err := ec.getClient(ctx, ec.rotator.Current())
		if err != nil {
			return nil, err
		}

		model := client.EmbeddingModel(ec.model)
		model.TaskType = taskType
		resp, err := model.EmbedContent(ctx, genai.Text(text))
		if err == nil {
			if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
				return nil, fmt.Errorf("no embedding returned")
			}
			return resp.Embedding.Values, nil
		}

		if !IsRateLimited(err) {
			return nil, err
		}

		keysTried++
		ec.rotator.Next()

		if keysTried >= totalKeys {
			// All keys hit - backoff before the next round
			wait := backoffDelay(attempt - totalKeys + 1)
			logger.Warn("all embedding keys rate-limited, backing off",
				"keys", totalKeys, "wait", wait.String(),
				"attempt", attempt+1, "max", embedMaxRetries)
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
			keysTried = 0
		}
	}

	return nil, fmt.Errorf("embedding failed after %d retries due to rate limiting", embedMaxRetries)
}

func (ec *EmbeddingClient) getClient(ctx context.Context, key string) (*genai.Client, error) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if client, ok := ec.clients[key]; ok {
		return client, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	ec.clients[key] = client
	return client, nil
}

// Close releases all per-key clients.
func (ec *EmbeddingClient) Close() error {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	var firstErr error
	for _, client := range ec.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	ec.clients = make(map[string]*genai.Client)
	return firstErr
}

// IsRateLimited reports whether err is a provider rate-limit response.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// backoffDelay returns 2^round seconds capped at 60s, minimum 1s.
func backoffDelay(round int) time.Duration {
	if round < 0 {
		round = 0
	}
	secs := 1 << round
	if secs > 60 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
