package models

// Section is one titled block of a source document, in document order.
type Section struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Level      int    `json:"level"`
	HasFormula bool   `json:"has_formula"`
	HasTable   bool   `json:"has_table"`
}

// ExtractedDocument is the output of a section extractor (DOCX, LaTeX, PDF).
type ExtractedDocument struct {
	Filename      string            `json:"filename"`
	ChapterNumber int               `json:"chapter_number"`
	Sections      []Section         `json:"sections"`
	FullText      string            `json:"full_text"`
	Metadata      DocumentMetadata  `json:"metadata"`
}

// DocumentMetadata summarizes an extracted document.
type DocumentMetadata struct {
	TotalSections int    `json:"total_sections"`
	HasTables     bool   `json:"has_tables"`
	HasFormulas   bool   `json:"has_formulas"`
	WordCount     int    `json:"word_count"`
	ExerciseTitle string `json:"exercise_title,omitempty"`
}
