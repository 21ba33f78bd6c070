package ai

import (
	"encoding/json"
	"strings"
)

// Decoded is the tagged result of parsing an LLM response. When Fallback is
// true the response could not be parsed as a JSON object even after
// sanitation and Raw holds the original text; callers substitute safe
// defaults instead of failing the request.
type Decoded struct {
	Fields   map[string]any
	Fallback bool
	Raw      string
}

// DecodeObject parses a JSON object out of raw model output. It strips
// markdown code fences, attempts a direct parse, and on failure runs a
// character-level sanitation pass before retrying. Generated text routinely
// contains unescaped formula markup, so this never returns an error.
func DecodeObject(raw string) Decoded {
	text := StripCodeFences(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err == nil {
		return Decoded{Fields: fields}
	}

	if err := json.Unmarshal([]byte(sanitizeJSON(text)), &fields); err == nil {
		return Decoded{Fields: fields}
	}

	return Decoded{Fallback: true, Raw: strings.TrimSpace(raw)}
}

// StripCodeFences removes a surrounding ```json ... ``` (or plain ```)
// block if present.
func StripCodeFences(text string) string {
	if i := strings.Index(text, "```json"); i >= 0 {
		text = text[i+len("```json"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	} else if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+len("```"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	}
	return strings.TrimSpace(text)
}

// sanitizeJSON escapes invalid backslash sequences and literal control
// characters found inside string values. LaTeX-heavy answers produce both.
func sanitizeJSON(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)

	inString := false
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if !inString {
			if r == '"' {
				inString = true
			}
			b.WriteRune(r)
			continue
		}

		switch r {
		case '"':
			inString = false
			b.WriteRune(r)
		case '\\':
			if i+1 < len(runes) && isValidEscape(runes[i+1]) {
				b.WriteRune(r)
				b.WriteRune(runes[i+1])
				i++
			} else {
				// lone backslash, e.g. \frac
				b.WriteString(`\\`)
			}
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func isValidEscape(r rune) bool {
	switch r {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return false
}

// Field accessors tolerating the loose typing of decoded LLM JSON
// (numbers arrive as float64, lists as []any).

func GetString(fields map[string]any, key, def string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return def
}

func GetFloat(fields map[string]any, key string, def float64) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func GetInt(fields map[string]any, key string, def int) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func GetIntSlice(fields map[string]any, key string) []int {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		if f, ok := item.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}

func GetStringSlice(fields map[string]any, key string) []string {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
