package services

import (
	"strings"
	"testing"

	"tutor-rag-platform/models"
)

func TestMathChunkerFormulaSummaryNeverSplit(t *testing.T) {
	mc := NewMathChunker(800)

	// Far past the word limit, but formula summaries are atomic.
	sections := []models.Section{{
		Title:      "Formula Summary - Exercise 2.1",
		Content:    words(2000),
		HasFormula: true,
	}}

	chunks := mc.ChunkDocument(sections, "Quadratic Equations", 9, "Math", "Exercise 2.1")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	c := chunks[0]
	if c.Metadata.ContentType != models.ContentTypeFormulaSummary {
		t.Errorf("content type = %q", c.Metadata.ContentType)
	}
	if !c.Metadata.HasFormula {
		t.Errorf("formula flag lost")
	}
}

func TestMathChunkerContextPrefix(t *testing.T) {
	mc := NewMathChunker(800)

	sections := []models.Section{{Title: "Q1", Content: "Solve x + 2 = 5."}}
	chunks := mc.ChunkDocument(sections, "Linear Equations", 9, "Math", "Exercise 1.1")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	wantPrefix := "Class 9 Math, Linear Equations (Exercise 1.1) - Q1"
	if !strings.HasPrefix(chunks[0].Text, wantPrefix) {
		t.Errorf("chunk text starts %q, want prefix %q", truncate(chunks[0].Text, 60), wantPrefix)
	}
	if chunks[0].Metadata.ExerciseTitle != "Exercise 1.1" {
		t.Errorf("exercise title = %q", chunks[0].Metadata.ExerciseTitle)
	}
}

func TestMathChunkerOversizedPairSplitsAtSolution(t *testing.T) {
	mc := NewMathChunker(100)

	content := words(80) + "\n" + SolutionSeparator + "\n" + words(90)
	sections := []models.Section{{Title: "Q3", Content: content}}

	chunks := mc.ChunkDocument(sections, "Trigonometry", 10, "Math", "Exercise 7.2")
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want question+solution", len(chunks))
	}
	q, s := chunks[0], chunks[1]
	if q.Metadata.ContentType != models.ContentTypeQuestion {
		t.Errorf("first chunk type = %q", q.Metadata.ContentType)
	}
	if s.Metadata.ContentType != models.ContentTypeSolution {
		t.Errorf("second chunk type = %q", s.Metadata.ContentType)
	}
	if !strings.Contains(q.Text, "[Question]") || !strings.Contains(s.Text, "[Solution]") {
		t.Errorf("split chunks missing role markers")
	}
	if strings.Contains(q.Text, SolutionSeparator) || strings.Contains(s.Text, SolutionSeparator) {
		t.Errorf("separator leaked into chunk text")
	}
	if q.ChunkIndex != 0 || s.ChunkIndex != 1 {
		t.Errorf("indices = %d,%d", q.ChunkIndex, s.ChunkIndex)
	}
}

func TestMathChunkerOversizedPairWithoutSeparatorStaysWhole(t *testing.T) {
	mc := NewMathChunker(100)

	sections := []models.Section{{Title: "Q4", Content: words(300)}}
	chunks := mc.ChunkDocument(sections, "Trigonometry", 10, "Math", "Exercise 7.3")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 unsplit chunk", len(chunks))
	}
	if chunks[0].Metadata.ContentType != models.ContentTypeQuestionAnswer {
		t.Errorf("content type = %q", chunks[0].Metadata.ContentType)
	}
}

func TestMathChunkerDiagramDetection(t *testing.T) {
	mc := NewMathChunker(800)

	sections := []models.Section{
		{Title: "Q5", Content: "Refer to the figure. [Diagram] Find the angle."},
		{Title: "Q6", Content: "No figure here."},
	}
	chunks := mc.ChunkDocument(sections, "Geometry", 9, "Math", "Exercise 4.1")
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	if !chunks[0].Metadata.HasDiagram {
		t.Errorf("diagram marker missed")
	}
	if chunks[1].Metadata.HasDiagram {
		t.Errorf("diagram flagged without marker")
	}
}
