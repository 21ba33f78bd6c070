package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// scriptedCompleter returns queued responses in order, recording prompts.
type scriptedCompleter struct {
	responses []string
	err       error
	prompts   []string
}

func (s *scriptedCompleter) Complete(ctx context.Context, system, user, model string, temperature float32) (string, error) {
	s.prompts = append(s.prompts, user)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("no scripted response left")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func TestRouteSelectsMatchingChapter(t *testing.T) {
	llm := &scriptedCompleter{responses: []string{
		`{"action": "COMPLETE", "primary_chapter": 1, "secondary_chapters": [], "confidence": 0.9, "reasoning": "measurement instrument", "topics_identified": ["vernier caliper"]}`,
	}}
	cr := NewChapterRouter(llm, "test-model", 2)

	result, err := cr.Route(context.Background(), "How do I read a vernier caliper?", 9, "Physics")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if result.PrimaryChapter != 1 {
		t.Errorf("primary = %d, want 1", result.PrimaryChapter)
	}
	if result.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9 (no correction)", result.Confidence)
	}
	if result.Corrected {
		t.Errorf("valid plan flagged as corrected")
	}
	// COMPLETE on the first pass means exactly one planning call.
	if len(llm.prompts) != 1 {
		t.Errorf("planning calls = %d, want 1", len(llm.prompts))
	}
	// The sensed keyword must surface in the planning prompt.
	if !strings.Contains(llm.prompts[0], "vernier caliper") {
		t.Errorf("detected keyword missing from prompt")
	}
}

func TestRouteCorrectsUnknownPrimary(t *testing.T) {
	llm := &scriptedCompleter{responses: []string{
		`{"action": "COMPLETE", "primary_chapter": 42, "secondary_chapters": [], "confidence": 0.8, "reasoning": "", "topics_identified": []}`,
	}}
	cr := NewChapterRouter(llm, "test-model", 2)

	result, err := cr.Route(context.Background(), "something obscure", 9, "Physics")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if result.PrimaryChapter != 1 {
		t.Errorf("primary = %d, want fallback 1", result.PrimaryChapter)
	}
	if !result.Corrected {
		t.Errorf("correction not reported")
	}
	want := 0.8 * correctedConfidenceFactor
	if diff := result.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("confidence = %v, want %v", result.Confidence, want)
	}
}

func TestRouteFiltersSecondaryChapters(t *testing.T) {
	llm := &scriptedCompleter{responses: []string{
		`{"action": "COMPLETE", "primary_chapter": 2, "secondary_chapters": [2, 99, 3, 4, 5], "confidence": 1.0, "reasoning": "", "topics_identified": []}`,
	}}
	cr := NewChapterRouter(llm, "test-model", 2)

	result, err := cr.Route(context.Background(), "motion and forces", 9, "Physics")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(result.SecondaryChapters) != 2 {
		t.Fatalf("secondary = %v, want exactly 2", result.SecondaryChapters)
	}
	for _, c := range result.SecondaryChapters {
		if c == result.PrimaryChapter {
			t.Errorf("secondary repeats the primary: %v", result.SecondaryChapters)
		}
		if c == 99 {
			t.Errorf("unknown chapter survived validation")
		}
	}
}

func TestRouteUnparseablePlanUsesDefaults(t *testing.T) {
	llm := &scriptedCompleter{responses: []string{
		"I think chapter two is the best fit for this question.",
	}}
	cr := NewChapterRouter(llm, "test-model", 2)

	result, err := cr.Route(context.Background(), "anything", 9, "Physics")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if result.PrimaryChapter != 1 || result.Confidence != 0.5 {
		t.Errorf("defaults not applied: primary=%d confidence=%v", result.PrimaryChapter, result.Confidence)
	}
}

func TestRouteIteratesWhenPlanIncomplete(t *testing.T) {
	llm := &scriptedCompleter{responses: []string{
		`{"action": "CONTINUE", "primary_chapter": 3, "secondary_chapters": [], "confidence": 0.4, "reasoning": "", "topics_identified": []}`,
		`{"action": "COMPLETE", "primary_chapter": 3, "secondary_chapters": [4], "confidence": 0.85, "reasoning": "", "topics_identified": []}`,
	}}
	cr := NewChapterRouter(llm, "test-model", 2)

	result, err := cr.Route(context.Background(), "turning effect of forces", 9, "Physics")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(llm.prompts) != 2 {
		t.Errorf("planning calls = %d, want 2", len(llm.prompts))
	}
	if result.PrimaryChapter != 3 || result.Confidence != 0.85 {
		t.Errorf("final plan not used: %+v", result)
	}
}

func TestRouteUnknownSubject(t *testing.T) {
	cr := NewChapterRouter(&scriptedCompleter{}, "test-model", 2)
	if _, err := cr.Route(context.Background(), "anything", 9, "Astronomy"); err == nil {
		t.Fatalf("expected error for unknown subject")
	}
}

func TestRouteCompletionError(t *testing.T) {
	cr := NewChapterRouter(&scriptedCompleter{err: errors.New("backend down")}, "test-model", 2)
	if _, err := cr.Route(context.Background(), "anything", 9, "Physics"); err == nil {
		t.Fatalf("expected error when planning call fails")
	}
}
