package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chapter is the curriculum unit that scopes chunks and routing.
// Unique per (class_level, subject, chapter_number).
type Chapter struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClassLevel    int                `bson:"class_level" json:"class_level"`
	Subject       string             `bson:"subject" json:"subject"`
	ChapterNumber int                `bson:"chapter_number" json:"chapter_number"`
	ChapterTitle  string             `bson:"chapter_title" json:"chapter_title"`
	Description   string             `bson:"chapter_description,omitempty" json:"chapter_description,omitempty"`
	Topics        []string           `bson:"topics,omitempty" json:"topics,omitempty"`
	SourceFile    string             `bson:"source_file,omitempty" json:"source_file,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// DocumentChunk is the stored vector row for one chunk.
// Keeping a dedicated collection enables efficient $vectorSearch with
// metadata filters.
type DocumentChunk struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChapterID     primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`
	ClassLevel    int                `bson:"class_level" json:"class_level"`
	Subject       string             `bson:"subject" json:"subject"`
	ChapterNumber int                `bson:"chapter_number" json:"chapter_number"`
	ChapterTitle  string             `bson:"chapter_title" json:"chapter_title"`
	ChunkText     string             `bson:"chunk_text" json:"chunk_text"`
	ChunkIndex    int                `bson:"chunk_index" json:"chunk_index"`
	Embedding     []float32          `bson:"embedding" json:"-"`
	Metadata      ChunkMetadata      `bson:"metadata" json:"metadata"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// RetrievedChunk is a read-only retrieval projection, never persisted.
type RetrievedChunk struct {
	Text          string        `json:"text"`
	ChapterNumber int           `json:"chapter_number"`
	ChapterTitle  string        `json:"chapter_title"`
	Similarity    float64       `json:"similarity"`
	Metadata      ChunkMetadata `json:"metadata"`
}

// SourceArchive keeps the compressed full text of an ingested file so a
// chapter can be re-processed without the original upload.
type SourceArchive struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChapterID   primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`
	Filename    string             `bson:"filename" json:"filename"`
	Compressed  []byte             `bson:"compressed" json:"-"`
	Compression string             `bson:"compression" json:"compression"`
	RawBytes    int                `bson:"raw_bytes" json:"raw_bytes"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
