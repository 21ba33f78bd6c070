package ai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
)

const completionMaxRetries = 10

// CompletionClient issues structured-output chat completions against the
// Gemini API. It layers three protections around every call: an RPM rate
// limiter, a circuit breaker, and key rotation with capped backoff on 429.
// Responses are requested as JSON but treated as untrusted text; parsing is
// the caller's concern (see jsonx.go).
type CompletionClient struct {
	rotator *KeyRotator
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func NewCompletionClient(cfg *config.Config) (*CompletionClient, error) {
	rotator, err := NewKeyRotator(cfg.GeminiAPIKeys, "gemini-completions")
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiCompletions",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	// 10 RPM free-tier default with some buffer
	limiter := rate.NewLimiter(rate.Limit(10*0.9/60.0), 1)

	return &CompletionClient{
		rotator: rotator,
		breaker: breaker,
		limiter: limiter,
		clients: make(map[string]*genai.Client),
	}, nil
}

// Complete sends a system+user prompt pair and returns the raw text of the
// first candidate. A JSON MIME type is requested so the model returns a
// structured object, but no parsing or validation happens here.
func (cc *CompletionClient) Complete(ctx context.Context, system, user, model string, temperature float32) (string, error) {
	tracer := otel.Tracer("completion-client")
	ctx, span := tracer.Start(ctx, "gemini.complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", model),
		attribute.Float64("gemini.temperature", float64(temperature)),
	)

	if err := cc.limiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	// Key rotation happens inside the breaker so 429s absorbed by rotation
	// never count as breaker failures.
	result, err := cc.breaker.Execute(func() (interface{}, error) {
		return cc.completeWithRotation(ctx, system, user, model, temperature)
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", err
	}

	span.SetAttributes(attribute.Bool("gemini.success", true))
	return result.(string), nil
}

func (cc *CompletionClient) completeWithRotation(ctx context.Context, system, user, model string, temperature float32) (string, error) {
	keysTried := 0
	totalKeys := cc.rotator.Count()

	for attempt := 0; attempt < completionMaxRetries; attempt++ {
		client, err := cc.getClient(ctx, cc.rotator.Current())
		if err != nil {
			return "", err
		}

		gm := client.GenerativeModel(model)
		gm.SetTemperature(temperature)
		gm.SetMaxOutputTokens(2048)
		gm.ResponseMIMEType = "application/json"
		if system != "" {
			gm.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(system)},
			}
		}

		resp, err := gm.GenerateContent(ctx, genai.Text(user))
		if err == nil {
			return extractText(resp)
		}

		if !IsRateLimited(err) {
			return "", err
		}

		keysTried++
		cc.rotator.Next()

		if keysTried >= totalKeys {
			wait := backoffDelay(attempt - totalKeys + 1)
			logger.Warn("all completion keys rate-limited, backing off",
				"keys", totalKeys, "wait", wait.String(),
				"attempt", attempt+1, "max", completionMaxRetries)
			if err := sleepCtx(ctx, wait); err != nil {
				return "", err
			}
			keysTried = 0
		}
	}

	return "", fmt.Errorf("completion failed after %d retries due to rate limiting", completionMaxRetries)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	var out string
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out += string(text)
			}
		}
	}
	if out == "" {
		return "", fmt.Errorf("completion response had no text parts")
	}
	return out, nil
}

func (cc *CompletionClient) getClient(ctx context.Context, key string) (*genai.Client, error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if client, ok := cc.clients[key]; ok {
		return client, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	cc.clients[key] = client
	return client, nil
}

// Close releases all per-key clients.
func (cc *CompletionClient) Close() error {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	var firstErr error
	for _, client := range cc.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	cc.clients = make(map[string]*genai.Client)
	return firstErr
}
