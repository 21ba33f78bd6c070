package services

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"tutor-rag-platform/models"
)

// Extractor turns a source file into titled, ordered sections.
type Extractor interface {
	Extract(path string) (*models.ExtractedDocument, error)
}

var chapterNumberRegex = regexp.MustCompile(`(?i)Chapter\s+(\d+)`)

// ExtractorForFile selects an extractor by file extension.
func ExtractorForFile(path string) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return NewDocxExtractor(), nil
	case ".tex":
		return NewLatexExtractor(), nil
	case ".pdf":
		return NewPDFExtractor(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// extractChapterNumber reads the chapter number from a filename like
// "Chapter 1 - Notes (Final 1).docx". Returns 0 when absent.
func extractChapterNumber(filename string) int {
	m := chapterNumberRegex.FindStringSubmatch(filename)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// buildDocumentMetadata summarizes extracted sections.
func buildDocumentMetadata(sections []models.Section, fullText, exerciseTitle string) models.DocumentMetadata {
	hasTables := false
	hasFormulas := false
	for _, s := range sections {
		hasTables = hasTables || s.HasTable
		hasFormulas = hasFormulas || s.HasFormula
	}
	return models.DocumentMetadata{
		TotalSections: len(sections),
		HasTables:     hasTables,
		HasFormulas:   hasFormulas,
		WordCount:     wordCount(fullText),
		ExerciseTitle: exerciseTitle,
	}
}
