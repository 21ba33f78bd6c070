package ai

import "testing"

func TestDecodeObjectDirect(t *testing.T) {
	d := DecodeObject(`{"primary_chapter": 3, "confidence": 0.9}`)
	if d.Fallback {
		t.Fatalf("expected direct parse, got fallback")
	}
	if got := GetInt(d.Fields, "primary_chapter", 0); got != 3 {
		t.Errorf("primary_chapter = %d, want 3", got)
	}
	if got := GetFloat(d.Fields, "confidence", 0); got != 0.9 {
		t.Errorf("confidence = %v, want 0.9", got)
	}
}

func TestDecodeObjectFenced(t *testing.T) {
	cases := []string{
		"```json\n{\"answer\": \"ok\"}\n```",
		"Here you go:\n```\n{\"answer\": \"ok\"}\n```",
	}
	for _, raw := range cases {
		d := DecodeObject(raw)
		if d.Fallback {
			t.Fatalf("fenced input fell back: %q", raw)
		}
		if got := GetString(d.Fields, "answer", ""); got != "ok" {
			t.Errorf("answer = %q, want ok", got)
		}
	}
}

func TestDecodeObjectSanitizesBackslashes(t *testing.T) {
	// \frac is not a valid JSON escape; the sanitation pass must rescue it.
	raw := `{"answer": "use \frac{1}{2} m v^2"}`
	d := DecodeObject(raw)
	if d.Fallback {
		t.Fatalf("expected sanitized parse, got fallback")
	}
	if got := GetString(d.Fields, "answer", ""); got != `use \frac{1}{2} m v^2` {
		t.Errorf("answer = %q", got)
	}
}

func TestDecodeObjectSanitizesLiteralNewlines(t *testing.T) {
	raw := "{\"answer\": \"line one\nline two\"}"
	d := DecodeObject(raw)
	if d.Fallback {
		t.Fatalf("expected sanitized parse, got fallback")
	}
	if got := GetString(d.Fields, "answer", ""); got != "line one\nline two" {
		t.Errorf("answer = %q", got)
	}
}

func TestDecodeObjectPreservesValidEscapes(t *testing.T) {
	raw := `{"answer": "a \"quoted\" word\nnext"}`
	d := DecodeObject(raw)
	if d.Fallback {
		t.Fatalf("valid JSON fell back")
	}
	if got := GetString(d.Fields, "answer", ""); got != "a \"quoted\" word\nnext" {
		t.Errorf("answer = %q", got)
	}
}

func TestDecodeObjectFallback(t *testing.T) {
	raw := "Sorry, I cannot answer in JSON today."
	d := DecodeObject(raw)
	if !d.Fallback {
		t.Fatalf("expected fallback for non-JSON text")
	}
	if d.Raw != raw {
		t.Errorf("raw = %q, want original text", d.Raw)
	}
}

func TestFieldAccessors(t *testing.T) {
	d := DecodeObject(`{
		"secondary_chapters": [2, 5],
		"topics_identified": ["force", "momentum"],
		"confidence": 0.8
	}`)
	if d.Fallback {
		t.Fatal("unexpected fallback")
	}
	secondary := GetIntSlice(d.Fields, "secondary_chapters")
	if len(secondary) != 2 || secondary[0] != 2 || secondary[1] != 5 {
		t.Errorf("secondary = %v", secondary)
	}
	topics := GetStringSlice(d.Fields, "topics_identified")
	if len(topics) != 2 || topics[0] != "force" {
		t.Errorf("topics = %v", topics)
	}
	if got := GetInt(d.Fields, "missing", 7); got != 7 {
		t.Errorf("missing default = %d, want 7", got)
	}
	if got := GetStringSlice(d.Fields, "confidence"); got != nil {
		t.Errorf("wrong-typed slice = %v, want nil", got)
	}
}
