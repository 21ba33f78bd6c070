package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatHistoryMessage is one prior turn supplied by the client.
type ChatHistoryMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// ChatRequest is the body of POST /chat/ask.
type ChatRequest struct {
	Query      string               `json:"query" binding:"required,min=1"`
	ClassLevel int                  `json:"class_level" binding:"omitempty,min=9,max=10"`
	Subject    string               `json:"subject"`
	Language   string               `json:"language" binding:"omitempty,oneof=en ur ur-roman"`
	History    []ChatHistoryMessage `json:"history" binding:"omitempty,max=10"`
}

// SourceInfo cites one retrieved chunk in a chat response.
type SourceInfo struct {
	Chapter   int     `json:"chapter"`
	Title     string  `json:"title"`
	Snippet   string  `json:"snippet"`
	Relevance float64 `json:"relevance"`
}

// ChatResponse is the grounded answer returned to the student.
type ChatResponse struct {
	Answer      string       `json:"answer"`
	Explanation string       `json:"explanation,omitempty"`
	Sources     []SourceInfo `json:"sources"`
	Confidence  float64      `json:"confidence"`
	ChapterUsed int          `json:"chapter_used,omitempty"`
}

// ChatLog is the persisted record of one question/answer exchange.
type ChatLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	RequestID   string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Query       string             `bson:"query" json:"query"`
	Answer      string             `bson:"answer" json:"answer"`
	ClassLevel  int                `bson:"class_level" json:"class_level"`
	Subject     string             `bson:"subject" json:"subject"`
	Language    string             `bson:"language" json:"language"`
	ChapterUsed int                `bson:"chapter_used" json:"chapter_used"`
	Confidence  float64            `bson:"confidence" json:"confidence"`
	LatencyMS   int64              `bson:"latency_ms" json:"latency_ms"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}
