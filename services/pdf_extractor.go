package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/models"
)

// PDFExtractor reads PDF notes page by page. PDFs carry no reliable
// heading styles, so sections are recovered with the same text heuristic
// the DOCX extractor falls back to.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) Extract(path string) (*models.ExtractedDocument, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	var lines []string
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("pdf page extraction failed", "page", i, "error", err)
			continue
		}

		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("no text extracted from pdf")
	}

	filename := filepath.Base(path)
	sections := sectionsFromLines(lines)

	var contents []string
	for _, s := range sections {
		contents = append(contents, s.Content)
	}
	fullText := strings.Join(contents, "\n\n")

	return &models.ExtractedDocument{
		Filename:      filename,
		ChapterNumber: extractChapterNumber(filename),
		Sections:      sections,
		FullText:      fullText,
		Metadata:      buildDocumentMetadata(sections, fullText, ""),
	}, nil
}

func sectionsFromLines(lines []string) []models.Section {
	paragraphs := make([]docxParagraph, 0, len(lines))
	for _, line := range lines {
		paragraphs = append(paragraphs, docxParagraph{text: line})
	}
	return buildSections(paragraphs)
}
