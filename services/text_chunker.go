package services

import (
	"regexp"
	"strings"

	"tutor-rag-platform/models"
)

// TextChunker splits extracted sections into bounded, overlap-aware chunks.
//
// Strategy:
//  1. Prefer semantic boundaries (sections, paragraphs)
//  2. Keep formulas and definitions intact
//  3. Add overlap for context continuity
//  4. Target chunkSize words per chunk
type TextChunker struct {
	chunkSize    int // target words per chunk
	chunkOverlap int // overlap words carried across chunk boundaries
	minChunkSize int // minimum words for a trailing chunk
}

var (
	paragraphSplitRegex = regexp.MustCompile(`\n\s*\n`)
	sentenceSplitRegex  = regexp.MustCompile(`([.!?])\s+`)
	definitionRegex     = regexp.MustCompile(`definition|is defined as|refers to`)
	exampleRegex        = regexp.MustCompile(`example|for instance|consider|suppose|let us`)
	formulaCueRegex     = regexp.MustCompile(`formula|equation|[A-Za-z]\s*=\s*[A-Za-z]`)
	exerciseRegex       = regexp.MustCompile(`exercise|question|problem|solve|calculate|find`)
	formulaExprRegex    = regexp.MustCompile(`[A-Za-z]\s*=\s*[A-Za-z0-9*/+\-^]+`)
)

// NewTextChunker creates a chunker with the given word-count bounds.
func NewTextChunker(chunkSize, chunkOverlap, minChunkSize int) *TextChunker {
	return &TextChunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		minChunkSize: minChunkSize,
	}
}

// ChunkDocument chunks the sections of one document into RAG-ready chunks.
// Sections are processed independently in document order. If no section
// yields a chunk (all individually too small), all content is combined and
// re-chunked with a lower trailing minimum so a non-empty document always
// produces at least one chunk.
func (tc *TextChunker) ChunkDocument(sections []models.Section, chapterTitle string) []models.Chunk {
	var chunks []models.Chunk
	chunkIndex := 0

	for _, section := range sections {
		sectionChunks := tc.chunkSection(section, chapterTitle, chunkIndex)
		chunks = append(chunks, sectionChunks...)
		chunkIndex += len(sectionChunks)
	}

	if len(chunks) == 0 && len(sections) > 0 {
		chunks = tc.chunkCombined(sections, chapterTitle)
	}

	return chunks
}

func (tc *TextChunker) chunkSection(section models.Section, chapterTitle string, startIndex int) []models.Chunk {
	if strings.TrimSpace(section.Content) == "" {
		return nil
	}

	paragraphs := splitParagraphs(section.Content)

	var chunks []models.Chunk
	var current []string
	currentWords := 0

	flush := func() {
		chunks = append(chunks, tc.createChunk(
			strings.Join(current, "\n\n"),
			startIndex+len(chunks),
			section.Title,
			chapterTitle,
			section.HasFormula,
			section.HasTable,
		))
	}

	for _, para := range paragraphs {
		paraWords := wordCount(para)

		// A single paragraph larger than the chunk size is split at
		// sentence boundaries, with no overlap between the pieces.
		if paraWords > tc.chunkSize {
			if len(current) > 0 {
				flush()
				current = nil
				currentWords = 0
			}

			for _, piece := range tc.splitBySentences(para) {
				chunks = append(chunks, tc.createChunk(
					piece,
					startIndex+len(chunks),
					section.Title,
					chapterTitle,
					section.HasFormula,
					section.HasTable,
				))
			}
			continue
		}

		if currentWords+paraWords > tc.chunkSize && len(current) > 0 {
			flush()

			// Seed the next chunk with the trailing overlap window.
			overlap := tc.overlapText(current)
			current = nil
			currentWords = 0
			if overlap != "" {
				current = []string{overlap}
				currentWords = wordCount(overlap)
			}
		}

		current = append(current, para)
		currentWords += paraWords
	}

	if len(current) > 0 {
		if currentWords >= tc.minChunkSize {
			flush()
		} else if len(chunks) > 0 {
			// Too small to stand alone: merge into the previous chunk.
			last := &chunks[len(chunks)-1]
			last.Text += "\n\n" + strings.Join(current, "\n\n")
			last.Metadata.WordCount = wordCount(last.Text)
		}
	}

	return chunks
}

// chunkCombined concatenates all section contents and re-runs the paragraph
// pass with a 50-word trailing floor instead of minChunkSize.
func (tc *TextChunker) chunkCombined(sections []models.Section, chapterTitle string) []models.Chunk {
	var parts []string
	hasFormula := false
	hasTable := false

	for _, s := range sections {
		if strings.TrimSpace(s.Content) == "" {
			continue
		}
		if s.Title != "" && s.Title != "Introduction" {
			parts = append(parts, s.Title+"\n"+s.Content)
		} else {
			parts = append(parts, s.Content)
		}
		hasFormula = hasFormula || s.HasFormula
		hasTable = hasTable || s.HasTable
	}

	content := strings.Join(parts, "\n\n")
	if strings.TrimSpace(content) == "" {
		return nil
	}

	paragraphs := splitParagraphs(content)

	var chunks []models.Chunk
	var current []string
	currentWords := 0

	for _, para := range paragraphs {
		paraWords := wordCount(para)

		if currentWords+paraWords > tc.chunkSize && len(current) > 0 {
			chunks = append(chunks, tc.createChunk(
				strings.Join(current, "\n\n"), len(chunks),
				"Combined", chapterTitle, hasFormula, hasTable,
			))
			overlap := tc.overlapText(current)
			current = nil
			currentWords = 0
			if overlap != "" {
				current = []string{overlap}
				currentWords = wordCount(overlap)
			}
		}

		current = append(current, para)
		currentWords += paraWords
	}

	const combinedMinWords = 50
	if len(current) > 0 && currentWords >= combinedMinWords {
		chunks = append(chunks, tc.createChunk(
			strings.Join(current, "\n\n"), len(chunks),
			"Combined", chapterTitle, hasFormula, hasTable,
		))
	} else if len(current) > 0 && len(chunks) > 0 {
		last := &chunks[len(chunks)-1]
		last.Text += "\n\n" + strings.Join(current, "\n\n")
		last.Metadata.WordCount = wordCount(last.Text)
	}

	return chunks
}

func (tc *TextChunker) splitBySentences(text string) []string {
	sentences := splitSentences(text)

	var pieces []string
	var current []string
	currentWords := 0

	for _, sent := range sentences {
		sentWords := wordCount(sent)
		if currentWords+sentWords > tc.chunkSize && len(current) > 0 {
			pieces = append(pieces, strings.Join(current, " "))
			current = nil
			currentWords = 0
		}
		current = append(current, sent)
		currentWords += sentWords
	}

	if len(current) > 0 {
		pieces = append(pieces, strings.Join(current, " "))
	}

	return pieces
}

// overlapText returns the trailing chunkOverlap words of the last buffered
// paragraph, preserving local context across the chunk boundary.
func (tc *TextChunker) overlapText(parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	words := strings.Fields(parts[len(parts)-1])
	if len(words) <= tc.chunkOverlap {
		return parts[len(parts)-1]
	}

	return strings.Join(words[len(words)-tc.chunkOverlap:], " ")
}

func (tc *TextChunker) createChunk(text string, index int, sectionTitle, chapterTitle string, hasFormula, hasTable bool) models.Chunk {
	return models.Chunk{
		Text:       text,
		ChunkIndex: index,
		Metadata: models.ChunkMetadata{
			SectionTitle: sectionTitle,
			ChapterTitle: chapterTitle,
			ContentType:  DetectContentType(text),
			HasFormula:   hasFormula || HasFormula(text),
			HasTable:     hasTable,
			WordCount:    wordCount(text),
		},
	}
}

// DetectContentType classifies chunk text by regex cues. Pure function;
// first match wins in the order definition, example, formula, exercise.
func DetectContentType(text string) string {
	textLower := strings.ToLower(text)

	switch {
	case definitionRegex.MatchString(textLower):
		return models.ContentTypeDefinition
	case exampleRegex.MatchString(textLower):
		return models.ContentTypeExample
	case formulaCueRegex.MatchString(text):
		return models.ContentTypeFormula
	case exerciseRegex.MatchString(textLower):
		return models.ContentTypeExercise
	default:
		return models.ContentTypeExplanation
	}
}

// HasFormula reports whether text contains an equation-like expression.
func HasFormula(text string) bool {
	return formulaExprRegex.MatchString(text)
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range paragraphSplitRegex.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// splitSentences splits on terminal punctuation followed by whitespace,
// keeping the punctuation attached to the preceding sentence.
func splitSentences(text string) []string {
	marked := sentenceSplitRegex.ReplaceAllString(text, "$1\x00")
	var sentences []string
	for _, s := range strings.Split(marked, "\x00") {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
