package models

// Content types assigned by the chunkers. Stored in chunk metadata and used
// as a retrieval filter.
const (
	ContentTypeDefinition     = "definition"
	ContentTypeExample        = "example"
	ContentTypeFormula        = "formula"
	ContentTypeExercise       = "exercise"
	ContentTypeExplanation    = "explanation"
	ContentTypeQuestion       = "question"
	ContentTypeSolution       = "solution"
	ContentTypeFormulaSummary = "formula_summary"
	ContentTypeQuestionAnswer = "question_answer"
)

// Chunk is a bounded unit of text produced at ingestion time. One chunk maps
// to exactly one stored vector row.
type Chunk struct {
	Text       string        `json:"text" bson:"text"`
	ChunkIndex int           `json:"chunk_index" bson:"chunk_index"`
	Metadata   ChunkMetadata `json:"metadata" bson:"metadata"`
}

// ChunkMetadata carries the filterable attributes of a chunk.
type ChunkMetadata struct {
	SectionTitle  string `json:"section_title" bson:"section_title"`
	ChapterTitle  string `json:"chapter_title" bson:"chapter_title"`
	ExerciseTitle string `json:"exercise_title,omitempty" bson:"exercise_title,omitempty"`
	ContentType   string `json:"content_type" bson:"content_type"`
	HasFormula    bool   `json:"has_formula" bson:"has_formula"`
	HasTable      bool   `json:"has_table" bson:"has_table"`
	HasDiagram    bool   `json:"has_diagram" bson:"has_diagram"`
	WordCount     int    `json:"word_count" bson:"word_count"`
}
