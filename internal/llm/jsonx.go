package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Permissive JSON handling for oracle output. Malformed content is never
// retried against the oracle; it degrades to an empty value locally.

var (
	codeFenceRe     = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
)

// StripCodeFence removes a markdown code fence wrapping, if present.
// An unterminated opening fence is also stripped.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+len("```json"):]
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// CleanJSON strips fences and repairs common oracle JSON defects
// (trailing commas, Python None literals).
func CleanJSON(s string) string {
	s = StripCodeFence(s)
	s = strings.ReplaceAll(s, ": None", ": null")
	if json.Valid([]byte(s)) {
		return s
	}
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// DecodeObject parses an oracle response into a generic object. Any
// failure yields an empty map rather than an error.
func DecodeObject(raw string) map[string]any {
	cleaned := CleanJSON(raw)
	var m map[string]any
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		return map[string]any{}
	}
	return m
}

// StringField reads a string-valued field from a decoded object,
// returning "" when absent or of another type.
func StringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// TruncateToLastObject cuts a partial JSON buffer back to its last fully
// closed object, keeping a trailing comma if one follows the brace.
func TruncateToLastObject(s string) string {
	last := strings.LastIndexByte(s, '}')
	if last == -1 {
		return s
	}
	end := last + 1
	if end < len(s) && s[end] == ',' {
		end++
	}
	return s[:end]
}

// BalanceBrackets appends the closing brackets and braces a truncated
// JSON buffer is missing.
func BalanceBrackets(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ",")
	var openBraces, openBrackets int
	inString := false
	escaped := false
	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				openBraces++
			}
		case '}':
			if !inString {
				openBraces--
			}
		case '[':
			if !inString {
				openBrackets++
			}
		case ']':
			if !inString {
				openBrackets--
			}
		}
	}
	for ; openBrackets > 0; openBrackets-- {
		s += "]"
	}
	for ; openBraces > 0; openBraces-- {
		s += "}"
	}
	return s
}
