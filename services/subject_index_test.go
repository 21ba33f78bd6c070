package services

import "testing"

func TestIndexForKnownAndUnknown(t *testing.T) {
	idx := IndexFor(9, "Physics")
	if idx == nil {
		t.Fatal("class 9 Physics index missing")
	}
	if idx.ClassLevel != 9 || idx.Subject != "Physics" {
		t.Errorf("index identity = %d %s", idx.ClassLevel, idx.Subject)
	}
	if !idx.HasChapter(1) {
		t.Errorf("chapter 1 missing")
	}
	if idx.HasChapter(99) {
		t.Errorf("phantom chapter 99")
	}

	if IndexFor(9, "Astronomy") != nil {
		t.Errorf("unknown subject returned an index")
	}
	if IndexFor(11, "Physics") != nil {
		t.Errorf("unknown class level returned an index")
	}
}

func TestIndexForClass10(t *testing.T) {
	for _, subject := range []string{"Physics", "Chemistry", "Biology"} {
		if IndexFor(10, subject) == nil {
			t.Errorf("class 10 %s index missing", subject)
		}
	}
}

func TestChapterTitle(t *testing.T) {
	idx := IndexFor(9, "Physics")
	if got := idx.ChapterTitle(1); got != "Physical Quantities and Measurement" {
		t.Errorf("chapter 1 title = %q", got)
	}
	if got := idx.ChapterTitle(99); got != "Unknown" {
		t.Errorf("unknown chapter title = %q", got)
	}
}

func TestMatchKeywords(t *testing.T) {
	idx := IndexFor(9, "Physics")

	matches := idx.MatchKeywords("How do I use a Vernier Caliper to measure length?")
	found := false
	for _, m := range matches {
		if m == "vernier caliper" {
			found = true
		}
	}
	if !found {
		t.Errorf("vernier caliper not sensed in %v", matches)
	}

	if got := idx.MatchKeywords("completely unrelated gibberish zzz"); len(got) != 0 {
		t.Errorf("unexpected matches: %v", got)
	}
}
