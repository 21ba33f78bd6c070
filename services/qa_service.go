package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tutor-rag-platform/internal/ai"
	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/internal/telemetry"
	"tutor-rag-platform/models"
)

const (
	qaTopK       = 5
	qaMaxSources = 3
	qaSnippetLen = 200

	noContextAnswer = "I couldn't find relevant information to answer your question."
	noContextScore  = 0.3

	fallbackAnswerConfidence = 0.5
)

// QAService answers student questions with retrieval-grounded
// completions: rewrite the query, route it to chapters, pull the best
// chunks, then ask the model to answer from those chunks only.
type QAService struct {
	llm       Completer
	router    *ChapterRouter
	retriever *Retriever
	model     string
	modelFast string
	chatLogs  *mongo.Collection
	metrics   *telemetry.Metrics
}

func NewQAService(llm Completer, router *ChapterRouter, retriever *Retriever, cfg *config.Config, client *mongo.Client, metrics *telemetry.Metrics) *QAService {
	var logs *mongo.Collection
	if client != nil {
		logs = client.Database(cfg.DBName).Collection("chat_logs")
	}
	return &QAService{
		llm:       llm,
		router:    router,
		retriever: retriever,
		model:     cfg.CompletionModel,
		modelFast: cfg.CompletionModelFast,
		chatLogs:  logs,
		metrics:   metrics,
	}
}

// Answer runs the full question pipeline. Retrieval uses the rewritten
// query; the final answer is generated against the student's original
// wording so phrasing nuances survive.
func (s *QAService) Answer(ctx context.Context, req models.ChatRequest, userID primitive.ObjectID, requestID string) (*models.ChatResponse, error) {
	start := time.Now()
	classLevel := req.ClassLevel
	if classLevel == 0 {
		classLevel = 9
	}
	subject := req.Subject
	if subject == "" {
		subject = "Physics"
	}

	retrievalQuery := s.rewriteQuery(ctx, req.Query, subject)

	routing, err := s.router.Route(ctx, retrievalQuery, classLevel, subject)
	if err != nil {
		return nil, fmt.Errorf("route query: %w", err)
	}
	if routing.Corrected && s.metrics != nil {
		s.metrics.RecordRoutingCorrection(ctx, "chapter_validation")
	}

	chapters := []int{routing.PrimaryChapter}
	if len(routing.SecondaryChapters) > 0 {
		chapters = append(chapters, routing.SecondaryChapters[0])
	}

	chunks, err := s.retriever.Retrieve(ctx, retrievalQuery, classLevel, subject, chapters, qaTopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks: %w", err)
	}

	answer, explanation, answerConfidence := s.generateAnswer(ctx, req.Query, chunks, classLevel, req.Language)

	resp := &models.ChatResponse{
		Answer:      answer,
		Explanation: explanation,
		Sources:     buildSources(chunks),
		Confidence:  min(routing.Confidence, answerConfidence),
		ChapterUsed: routing.PrimaryChapter,
	}

	s.logExchange(ctx, req, resp, userID, requestID, classLevel, subject, time.Since(start))
	return resp, nil
}

// rewriteQuery cleans up spelling and phrasing with the fast model so
// retrieval matches textbook wording. Any failure falls back to the
// original query.
func (s *QAService) rewriteQuery(ctx context.Context, query, subject string) string {
	system := fmt.Sprintf(
		"You are a query rewriter for a %s tutoring system. "+
			"Rewrite the student's question to fix spelling, grammar, and clarity. "+
			"Keep the meaning the same. Return ONLY the rewritten question, nothing else.",
		subject)

	rewritten, err := s.llm.Complete(ctx, system, query, s.modelFast, 0)
	if err != nil {
		logger.Debug("query rewrite failed, using original", "error", err)
		return query
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return query
	}
	return rewritten
}

func (s *QAService) generateAnswer(ctx context.Context, query string, chunks []models.RetrievedChunk, classLevel int, language string) (answer, explanation string, confidence float64) {
	if len(chunks) == 0 {
		return noContextAnswer, "", noContextScore
	}

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[Chapter %d: %s]\n%s", c.ChapterNumber, c.ChapterTitle, c.Text)
	}
	reference := strings.Join(parts, "\n\n---\n\n")

	var languageInstruction string
	switch language {
	case "ur":
		languageInstruction = "Respond in Urdu."
	case "ur-roman":
		languageInstruction = "Respond in Roman Urdu (Urdu written in English letters)."
	}

	prompt := fmt.Sprintf(`You are a helpful tutor for Class %d Physics students.

REFERENCE MATERIAL:
%s

STUDENT QUESTION: %s

%s

Instructions:
1. Answer based ONLY on the reference material provided
2. Use simple language appropriate for Class %d
3. If the answer requires formulas, show them clearly
4. If the reference material doesn't fully answer the question, say so
5. Keep the answer concise but complete (2-3 paragraphs max)

Respond with ONLY valid JSON:
{
    "answer": "<your answer>",
    "explanation": "<optional additional explanation>",
    "confidence": <0.0 to 1.0 based on how well the reference material answers the question>,
    "formulas_used": ["<formula1>", "<formula2>"]
}`, classLevel, reference, query, languageInstruction, classLevel)

	raw, err := s.llm.Complete(ctx, "You are a physics tutor. Always respond with JSON.", prompt, s.model, 0.5)
	if err != nil {
		logger.Error("answer generation failed", "error", err)
		return noContextAnswer, "", noContextScore
	}

	decoded := ai.DecodeObject(raw)
	if decoded.Fallback {
		// Model ignored the JSON contract; serve its text verbatim.
		return strings.TrimSpace(decoded.Raw), "", fallbackAnswerConfidence
	}
	answer = ai.GetString(decoded.Fields, "answer", "I couldn't find an answer.")
	explanation = ai.GetString(decoded.Fields, "explanation", "")
	confidence = ai.GetFloat(decoded.Fields, "confidence", 0.8)
	return answer, explanation, confidence
}

func buildSources(chunks []models.RetrievedChunk) []models.SourceInfo {
	n := len(chunks)
	if n > qaMaxSources {
		n = qaMaxSources
	}
	sources := make([]models.SourceInfo, 0, n)
	for _, c := range chunks[:n] {
		snippet := c.Text
		if len(snippet) > qaSnippetLen {
			snippet = snippet[:qaSnippetLen] + "..."
		}
		sources = append(sources, models.SourceInfo{
			Chapter:   c.ChapterNumber,
			Title:     c.ChapterTitle,
			Snippet:   snippet,
			Relevance: roundTo(c.Similarity, 3),
		})
	}
	return sources
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int(v*scale+0.5)) / scale
}

func (s *QAService) logExchange(ctx context.Context, req models.ChatRequest, resp *models.ChatResponse, userID primitive.ObjectID, requestID string, classLevel int, subject string, elapsed time.Duration) {
	if s.chatLogs == nil {
		return
	}
	log := models.ChatLog{
		UserID:      userID,
		RequestID:   requestID,
		Query:       req.Query,
		Answer:      resp.Answer,
		ClassLevel:  classLevel,
		Subject:     subject,
		Language:    req.Language,
		ChapterUsed: resp.ChapterUsed,
		Confidence:  resp.Confidence,
		LatencyMS:   elapsed.Milliseconds(),
		Timestamp:   time.Now(),
	}
	if _, err := s.chatLogs.InsertOne(ctx, log); err != nil {
		logger.Warn("failed to persist chat log", "error", err)
	}
}
