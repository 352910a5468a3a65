package llm

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned when no balanced JSON value can be located in the
// model output.
var ErrNoJSON = errors.New("no JSON value found in model output")

// ExtractJSON locates the first balanced {...} or [...] span in free-form
// model output. Markdown code fences are stripped first, so both bare JSON
// and fenced JSON answers are accepted. The extractor is tolerant of prose
// around the value but does not repair malformed JSON.
func ExtractJSON(text string) (string, error) {
	text = stripFences(text)

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", ErrNoJSON
	}

	open := text[start]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
			// Brackets inside strings do not count.
		case ch == open:
			depth++
		case ch == closer:
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", ErrNoJSON
}

// stripFences unwraps the first markdown code fence if one is present,
// dropping an optional language tag like ```json.
func stripFences(text string) string {
	idx := strings.Index(text, "```")
	if idx < 0 {
		return text
	}
	rest := text[idx+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		// A language tag has no spaces; anything else is fence content.
		if firstLine == "" || !strings.ContainsAny(firstLine, " \t{[") {
			rest = rest[nl+1:]
		}
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		return rest[:end]
	}
	return rest
}
