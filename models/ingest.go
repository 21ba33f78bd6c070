package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IngestReport summarizes the outcome of ingesting one source file.
type IngestReport struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Filename       string             `bson:"filename" json:"filename"`
	ClassLevel     int                `bson:"class_level" json:"class_level"`
	Subject        string             `bson:"subject" json:"subject"`
	ChapterNumber  int                `bson:"chapter_number" json:"chapter_number"`
	ChapterTitle   string             `bson:"chapter_title" json:"chapter_title"`
	SectionCount   int                `bson:"section_count" json:"section_count"`
	ChunkCount     int                `bson:"chunk_count" json:"chunk_count"`
	InsertedCount  int                `bson:"inserted_count" json:"inserted_count"`
	FailedBatches  int                `bson:"failed_batches" json:"failed_batches"`
	DurationMillis int64              `bson:"duration_ms" json:"duration_ms"`
	Error          string             `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
