package perception

import (
	"encoding/json"
	"strings"
)

// Model responses that are supposed to be JSON routinely arrive wrapped in
// prose or markdown fences. ExtractJSON pulls the first balanced JSON value
// out of mixed text; the Decode helpers layer schema-strict parsing with a
// typed empty default on top, which is what every pipeline stage wants: a
// malformed response degrades to a no-op, never an abort.

// ExtractJSON extracts the first JSON object or array from mixed-format text.
// Returns "{}" when no opening brace or bracket is present.
func ExtractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		start = strings.Index(text, "[")
	}
	if start == -1 {
		return "{}"
	}

	depth := 0
	inString := false
	escaped := false
	startChar := rune(text[start])
	endChar := '}'
	if startChar == '[' {
		endChar = ']'
	}

	for i := start; i < len(text); i++ {
		ch := rune(text[i])

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}

		if !inString {
			if ch == startChar || ch == '{' || ch == '[' {
				depth++
			} else if ch == endChar || ch == '}' || ch == ']' {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return ""
}

// DecodeStringList decodes a model response expected to be a JSON array of
// strings. Malformed output yields nil.
func DecodeStringList(response string) []string {
	var out []string
	if err := json.Unmarshal([]byte(ExtractJSON(response)), &out); err != nil {
		return nil
	}
	return out
}

// DecodeScoreMap decodes a model response expected to be a JSON object
// mapping item to numeric score. Malformed output yields an empty map.
func DecodeScoreMap(response string) map[string]float64 {
	var out map[string]float64
	if err := json.Unmarshal([]byte(ExtractJSON(response)), &out); err != nil {
		return map[string]float64{}
	}
	if out == nil {
		out = map[string]float64{}
	}
	return out
}
