package toc

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/pagetree/internal/llm"
)

// Entry is one flat table-of-contents record. StartIndex is the resolved
// physical page index; Page is the nominal page number printed in the raw
// TOC, which generally differs from the physical index by a constant offset.
type Entry struct {
	Structure     string // dot-separated hierarchy code ("1.2.3"), "" when absent
	Title         string
	Page          *int   // nominal page number, nil when absent
	PhysicalIndex string // raw marker as returned by the oracle, e.g. "<physical_index_12>"
	StartIndex    *int   // resolved physical index, nil until resolution
	EndIndex      *int   // computed during tree assembly
	AppearStart   string // "yes", "no", or "" when unchecked
}

var nonDigitRe = regexp.MustCompile(`[^0-9-]`)

// ParsePhysicalIndex extracts the integer from a physical-index marker.
// Accepts "physical_index_5", "<physical_index_5>", and bare "5".
func ParsePhysicalIndex(s string) (int, bool) {
	s = strings.NewReplacer("<", "", ">", "", "/", "").Replace(s)
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "physical_index_"))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatPhysicalIndex renders the canonical marker for an index.
func FormatPhysicalIndex(n int) string {
	return "physical_index_" + strconv.Itoa(n)
}

// CoercePhysicalIndices fills StartIndex from each entry's textual marker.
// Entries whose marker does not parse keep a nil StartIndex.
func CoercePhysicalIndices(entries []Entry) []Entry {
	for i := range entries {
		if entries[i].PhysicalIndex == "" {
			continue
		}
		if n, ok := ParsePhysicalIndex(entries[i].PhysicalIndex); ok {
			idx := n
			entries[i].StartIndex = &idx
		}
	}
	return entries
}

// DecodeEntries parses an oracle response into entries. The response may
// be a bare array or an object wrapping one under "table_of_contents".
// Malformed input yields an empty slice, never an error.
func DecodeEntries(raw string) []Entry {
	cleaned := llm.CleanJSON(raw)

	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil
	}
	return decodeEntryValue(value)
}

func decodeEntryValue(value any) []Entry {
	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case map[string]any:
		for _, key := range []string{"table_of_contents", "items", "structure"} {
			if arr, ok := v[key].([]any); ok {
				items = arr
				break
			}
		}
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var e Entry
		if s, ok := m["structure"].(string); ok && !strings.EqualFold(s, "none") {
			e.Structure = s
		} else if f, ok := m["structure"].(float64); ok {
			e.Structure = strconv.Itoa(int(f))
		}
		e.Title, _ = m["title"].(string)
		if page, ok := convertPage(m["page"]); ok {
			e.Page = &page
		}
		switch pi := m["physical_index"].(type) {
		case string:
			if !strings.EqualFold(strings.TrimSpace(pi), "none") {
				e.PhysicalIndex = pi
			}
		case float64:
			e.PhysicalIndex = FormatPhysicalIndex(int(pi))
		}
		entries = append(entries, e)
	}
	return entries
}

// convertPage tolerates nominal page numbers given as numbers or as
// strings with stray prose around the digits.
func convertPage(v any) (int, bool) {
	switch p := v.(type) {
	case float64:
		return int(p), true
	case string:
		s := nonDigitRe.ReplaceAllString(p, "")
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// PromptJSON renders entries as the JSON array shown to the oracle.
// Nominal pages and physical markers are included only when present.
func PromptJSON(entries []Entry, includePages bool) string {
	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		m := map[string]any{
			"title": e.Title,
		}
		if e.Structure != "" {
			m["structure"] = e.Structure
		}
		if includePages && e.Page != nil {
			m["page"] = *e.Page
		}
		if e.StartIndex != nil {
			m["physical_index"] = FormatPhysicalIndex(*e.StartIndex)
		} else if e.PhysicalIndex != "" {
			m["physical_index"] = e.PhysicalIndex
		}
		items = append(items, m)
	}
	out, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(out)
}

// RemovePages returns a copy of entries with nominal page numbers dropped,
// so index extraction cannot be biased by them.
func RemovePages(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	for i := range out {
		out[i].Page = nil
	}
	return out
}

// FilterResolved keeps only entries with a resolved physical index.
func FilterResolved(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.StartIndex != nil {
			out = append(out, e)
		}
	}
	return out
}

// ClipToBounds drops entries whose resolved index falls outside
// [1, lastIndex]. Unresolved entries are kept; they count against
// verification accuracy and may still be repaired.
func ClipToBounds(entries []Entry, lastIndex int) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.StartIndex != nil && (*e.StartIndex < 1 || *e.StartIndex > lastIndex) {
			continue
		}
		out = append(out, e)
	}
	return out
}
