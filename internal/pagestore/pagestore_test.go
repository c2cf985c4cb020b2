package pagestore

import (
	"strings"
	"testing"
)

func testStore() *Store {
	return FromPages([]Page{
		{PhysicalIndex: 1, Text: "alpha", TokenCount: 10},
		{PhysicalIndex: 2, Text: "beta", TokenCount: 20},
		{PhysicalIndex: 3, Text: "gamma", TokenCount: 30},
	})
}

func TestStoreLenAndLastIndex(t *testing.T) {
	s := testStore()
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
	if s.LastIndex() != 3 {
		t.Errorf("LastIndex = %d, want 3", s.LastIndex())
	}

	empty := FromPages(nil)
	if empty.LastIndex() != 0 {
		t.Errorf("empty LastIndex = %d, want 0", empty.LastIndex())
	}
}

func TestStorePageLookup(t *testing.T) {
	s := testStore()
	p, ok := s.Page(2)
	if !ok || p.Text != "beta" {
		t.Errorf("Page(2) = %+v, %v", p, ok)
	}
	if _, ok := s.Page(0); ok {
		t.Error("Page(0) should miss")
	}
	if _, ok := s.Page(4); ok {
		t.Error("Page(4) should miss")
	}
}

func TestStoreSliceClipsToBounds(t *testing.T) {
	s := testStore()
	got := s.Slice(-5, 99)
	if len(got) != 3 {
		t.Fatalf("expected full range, got %d pages", len(got))
	}
	if got[0].PhysicalIndex != 1 || got[2].PhysicalIndex != 3 {
		t.Errorf("unexpected indices: %d..%d", got[0].PhysicalIndex, got[2].PhysicalIndex)
	}
	if s.Slice(3, 2) != nil {
		t.Error("inverted range should be nil")
	}
}

func TestStoreTokenSum(t *testing.T) {
	s := testStore()
	if got := s.TokenSum(2, 3); got != 50 {
		t.Errorf("TokenSum(2, 3) = %d, want 50", got)
	}
	if got := s.TokenSum(1, 99); got != 60 {
		t.Errorf("TokenSum clipped = %d, want 60", got)
	}
}

func TestTagPage(t *testing.T) {
	got := TagPage(7, "body")
	want := "<physical_index_7>\nbody\n</physical_index_7>\n\n"
	if got != want {
		t.Errorf("TagPage = %q, want %q", got, want)
	}
}

func TestTaggedRange(t *testing.T) {
	s := testStore()
	got := s.TaggedRange(1, 2)
	if !strings.Contains(got, "<physical_index_1>\nalpha\n</physical_index_1>") {
		t.Errorf("missing page 1 tags: %q", got)
	}
	if strings.Contains(got, "gamma") {
		t.Errorf("page 3 leaked into range: %q", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty text = %d, want 0", got)
	}
	if got := EstimateTokens("word"); got != 1 {
		t.Errorf("single word = %d, want 1", got)
	}
	// 100 words at ~1.33 tokens each.
	text := strings.Repeat("word ", 100)
	if got := EstimateTokens(text); got != 133 {
		t.Errorf("100 words = %d, want 133", got)
	}
}
