package pagestore

import (
	"fmt"
	"strings"
)

// Page is one physical page of the source document.
// PhysicalIndex is the 1-based position of the page in the document.
type Page struct {
	PhysicalIndex int
	Text          string
	TokenCount    int
}

// Store holds the ordered, gapless page sequence for one document.
// It is read-only after construction.
type Store struct {
	pages []Page
}

// New builds a Store from page texts, assigning physical indices 1..n
// and counting tokens per page.
func New(texts []string, counter *TokenCounter) *Store {
	pages := make([]Page, len(texts))
	for i, text := range texts {
		pages[i] = Page{
			PhysicalIndex: i + 1,
			Text:          text,
			TokenCount:    counter.Count(text),
		}
	}
	return &Store{pages: pages}
}

// FromPages builds a Store from already-counted pages. The pages must be
// ordered by PhysicalIndex with no gaps.
func FromPages(pages []Page) *Store {
	return &Store{pages: pages}
}

// Len returns the number of pages.
func (s *Store) Len() int {
	return len(s.pages)
}

// LastIndex returns the physical index of the final page, 0 for an empty store.
func (s *Store) LastIndex() int {
	if len(s.pages) == 0 {
		return 0
	}
	return s.pages[len(s.pages)-1].PhysicalIndex
}

// Page returns the page with the given physical index.
func (s *Store) Page(physicalIndex int) (Page, bool) {
	i := physicalIndex - 1
	if i < 0 || i >= len(s.pages) {
		return Page{}, false
	}
	return s.pages[i], true
}

// Pages returns the full page sequence.
func (s *Store) Pages() []Page {
	return s.pages
}

// Slice returns the pages in the inclusive physical range [start, end],
// clipped to the document's bounds.
func (s *Store) Slice(start, end int) []Page {
	if start < 1 {
		start = 1
	}
	if end > len(s.pages) {
		end = len(s.pages)
	}
	if start > end {
		return nil
	}
	return s.pages[start-1 : end]
}

// TokenSum returns the total token count over the inclusive physical
// range [start, end], clipped to the document's bounds.
func (s *Store) TokenSum(start, end int) int {
	total := 0
	for _, p := range s.Slice(start, end) {
		total += p.TokenCount
	}
	return total
}

// TagPage wraps a page's text in its physical-index markers. This is the
// convention the oracle sees and echoes back.
func TagPage(physicalIndex int, text string) string {
	return fmt.Sprintf("<physical_index_%d>\n%s\n</physical_index_%d>\n\n", physicalIndex, text, physicalIndex)
}

// TaggedRange concatenates the tagged text of every page in the inclusive
// physical range [start, end], clipped to the document's bounds.
func (s *Store) TaggedRange(start, end int) string {
	var sb strings.Builder
	for _, p := range s.Slice(start, end) {
		sb.WriteString(TagPage(p.PhysicalIndex, p.Text))
	}
	return sb.String()
}
