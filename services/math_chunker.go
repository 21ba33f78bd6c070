package services

import (
	"fmt"
	"strings"

	"tutor-rag-platform/models"
)

// SolutionSeparator is the marker the LaTeX extractor inserts between the
// question and solution halves of a worked problem.
const SolutionSeparator = "--- SOLUTION ---"

// MathChunker chunks structured math sections with atomicity guarantees the
// generic TextChunker cannot give:
//
//   - A formula summary section is always ONE chunk, never split.
//   - A question/answer section is one chunk while it fits in maxWords.
//     Oversized pairs are split once at the solution separator into a
//     question chunk and a solution chunk; with no separator the oversized
//     content stays whole rather than risk cutting mid-formula.
//
// Every chunk is prefixed with a context header so disambiguating context
// is embedded alongside the content.
type MathChunker struct {
	maxWords int
}

func NewMathChunker(maxWords int) *MathChunker {
	return &MathChunker{maxWords: maxWords}
}

// ChunkDocument converts math sections into chunks, one logical unit each.
func (mc *MathChunker) ChunkDocument(sections []models.Section, chapterTitle string, classLevel int, subject, exerciseTitle string) []models.Chunk {
	var chunks []models.Chunk
	idx := 0

	prefix := fmt.Sprintf("Class %d %s, %s", classLevel, subject, chapterTitle)
	if exerciseTitle != "" {
		prefix += fmt.Sprintf(" (%s)", exerciseTitle)
	}

	for _, section := range sections {
		isFormula := strings.HasPrefix(section.Title, "Formula Summary")
		contentType := models.ContentTypeQuestionAnswer
		if isFormula {
			contentType = models.ContentTypeFormulaSummary
		}

		words := wordCount(section.Content)
		hasDiagram := strings.Contains(section.Content, "[Diagram]")

		header := prefix + " - " + section.Title
		fullText := header + "\n\n" + section.Content

		meta := models.ChunkMetadata{
			SectionTitle:  section.Title,
			ChapterTitle:  chapterTitle,
			ExerciseTitle: exerciseTitle,
			ContentType:   contentType,
			HasFormula:    section.HasFormula,
			HasDiagram:    hasDiagram,
		}

		if words <= mc.maxWords || isFormula {
			meta.WordCount = wordCount(fullText)
			chunks = append(chunks, models.Chunk{Text: fullText, ChunkIndex: idx, Metadata: meta})
			idx++
			continue
		}

		question, solution, ok := splitAtSolution(section.Content)
		if !ok {
			meta.WordCount = wordCount(fullText)
			chunks = append(chunks, models.Chunk{Text: fullText, ChunkIndex: idx, Metadata: meta})
			idx++
			continue
		}

		qText := header + " [Question]\n\n" + question
		qMeta := meta
		qMeta.ContentType = models.ContentTypeQuestion
		qMeta.WordCount = wordCount(qText)
		chunks = append(chunks, models.Chunk{Text: qText, ChunkIndex: idx, Metadata: qMeta})
		idx++

		sText := header + " [Solution]\n\n" + solution
		sMeta := meta
		sMeta.ContentType = models.ContentTypeSolution
		sMeta.WordCount = wordCount(sText)
		chunks = append(chunks, models.Chunk{Text: sText, ChunkIndex: idx, Metadata: sMeta})
		idx++
	}

	return chunks
}

func splitAtSolution(content string) (question, solution string, ok bool) {
	before, after, found := strings.Cut(content, SolutionSeparator)
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(before), strings.TrimSpace(after), true
}
