package services

import (
	"fmt"
	"strings"
	"testing"

	"tutor-rag-platform/models"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(parts, " ")
}

func sentences(n, wordsEach int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(words(wordsEach))
		sb.WriteString(". ")
	}
	return sb.String()
}

func TestChunkDocumentRespectsSizeBounds(t *testing.T) {
	tc := NewTextChunker(500, 50, 100)

	// Three paragraphs of 200 words each: first two fill one chunk, the
	// third lands in a second chunk seeded with overlap.
	content := words(200) + "\n\n" + words(200) + "\n\n" + words(200)
	sections := []models.Section{{Title: "Motion", Content: content}}

	chunks := tc.ChunkDocument(sections, "Kinematics")
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if c.Metadata.WordCount > 500+50 {
			t.Errorf("chunk %d has %d words, exceeds size plus overlap", i, c.Metadata.WordCount)
		}
		if c.Metadata.SectionTitle != "Motion" || c.Metadata.ChapterTitle != "Kinematics" {
			t.Errorf("chunk %d metadata = %+v", i, c.Metadata)
		}
	}
}

func TestChunkDocumentMergesSmallTrailing(t *testing.T) {
	tc := NewTextChunker(500, 50, 100)

	// After the second flush only the 50-word overlap plus a 30-word
	// paragraph remain, below the 100-word minimum: the leftover must be
	// merged into the previous chunk, not emitted alone.
	content := words(450) + "\n\n" + words(480) + "\n\n" + words(30)
	sections := []models.Section{{Title: "Forces", Content: content}}

	chunks := tc.ChunkDocument(sections, "Dynamics")
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	last := chunks[len(chunks)-1]
	if last.Metadata.WordCount < 100 {
		t.Errorf("trailing chunk has %d words, merge did not happen", last.Metadata.WordCount)
	}
	if !strings.Contains(last.Text, "word29") {
		t.Errorf("trailing words were dropped")
	}
}

func TestChunkDocumentSplitsOversizedParagraphBySentences(t *testing.T) {
	tc := NewTextChunker(500, 50, 100)

	// One 1200-word paragraph with no blank lines: it must be split at
	// sentence boundaries into at least three pieces, with no overlap.
	content := sentences(60, 20)
	sections := []models.Section{{Title: "Energy", Content: content}}

	chunks := tc.ChunkDocument(sections, "Work and Energy")
	if len(chunks) < 3 {
		t.Fatalf("got %d chunks, want at least 3", len(chunks))
	}
	for i, c := range chunks {
		if c.Metadata.WordCount > 500 {
			t.Errorf("chunk %d has %d words, want <= 500", i, c.Metadata.WordCount)
		}
	}
	// Sentence splitting carries no overlap: total words must equal input.
	total := 0
	for _, c := range chunks {
		total += c.Metadata.WordCount
	}
	if total != 60*20 {
		t.Errorf("total words = %d, want %d (overlap should not apply)", total, 60*20)
	}
}

func TestChunkDocumentCombinedFallback(t *testing.T) {
	tc := NewTextChunker(500, 50, 100)

	// Every section is under the minimum on its own, but together they
	// clear the combined 50-word floor.
	sections := []models.Section{
		{Title: "Introduction", Content: words(30)},
		{Title: "Summary", Content: words(40)},
	}

	chunks := tc.ChunkDocument(sections, "Heat")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 combined chunk", len(chunks))
	}
	c := chunks[0]
	if c.Metadata.SectionTitle != "Combined" {
		t.Errorf("section title = %q, want Combined", c.Metadata.SectionTitle)
	}
	if !strings.Contains(c.Text, "Summary") {
		t.Errorf("non-introduction section title should prefix its content")
	}
	if strings.Contains(c.Text, "Introduction") {
		t.Errorf("Introduction title should not be embedded in combined text")
	}
}

func TestChunkDocumentEmptySections(t *testing.T) {
	tc := NewTextChunker(500, 50, 100)

	if got := tc.ChunkDocument(nil, "Anything"); got != nil {
		t.Errorf("nil sections produced %d chunks", len(got))
	}
	sections := []models.Section{{Title: "Blank", Content: "   \n\n  "}}
	if got := tc.ChunkDocument(sections, "Anything"); len(got) != 0 {
		t.Errorf("whitespace-only section produced %d chunks", len(got))
	}
}

func TestDetectContentType(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Velocity is defined as the rate of change of displacement.", models.ContentTypeDefinition},
		{"For example, consider a car moving at constant speed.", models.ContentTypeExample},
		{"The equation v = u + at relates the quantities.", models.ContentTypeFormula},
		{"Solve the following problem and calculate the distance.", models.ContentTypeExercise},
		{"Heat flows from hot bodies to cold bodies.", models.ContentTypeExplanation},
	}
	for _, c := range cases {
		if got := DetectContentType(c.text); got != c.want {
			t.Errorf("DetectContentType(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestHasFormula(t *testing.T) {
	if !HasFormula("From F = ma we see force scales with mass.") {
		t.Errorf("expected formula detection for F = ma")
	}
	if HasFormula("Plain prose with no equations at all.") {
		t.Errorf("false positive on plain prose")
	}
}
