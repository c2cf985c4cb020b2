package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/pagetree/internal/pagestore"
)

func makePages(n, tokensEach int) []pagestore.Page {
	pages := make([]pagestore.Page, n)
	for i := 0; i < n; i++ {
		pages[i] = pagestore.Page{
			PhysicalIndex: i + 1,
			Text:          fmt.Sprintf("page %d body", i+1),
			TokenCount:    tokensEach,
		}
	}
	return pages
}

func TestPlanGroups_SmallDocumentFitsOneGroup(t *testing.T) {
	pages := makePages(5, 100)
	groups := PlanGroups(pages, 1000, 1)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.StartIndex != 1 || g.EndIndex != 5 {
		t.Errorf("expected range 1-5, got %d-%d", g.StartIndex, g.EndIndex)
	}
	if g.Tokens != 500 {
		t.Errorf("expected 500 tokens, got %d", g.Tokens)
	}
}

func TestPlanGroups_LargeDocumentSplits(t *testing.T) {
	pages := makePages(20, 100)
	groups := PlanGroups(pages, 600, 1)

	if len(groups) < 2 {
		t.Fatalf("expected multiple groups, got %d", len(groups))
	}
	for i, g := range groups {
		if g.Tokens > 1200 {
			t.Errorf("group %d: %d tokens is far above the ceiling", i, g.Tokens)
		}
		if g.StartIndex > g.EndIndex {
			t.Errorf("group %d: inverted range %d-%d", i, g.StartIndex, g.EndIndex)
		}
	}
}

func TestPlanGroups_OverlapSharesBoundaryPages(t *testing.T) {
	pages := makePages(20, 100)
	groups := PlanGroups(pages, 600, 1)

	for i := 1; i < len(groups); i++ {
		prev, cur := groups[i-1], groups[i]
		if cur.StartIndex != prev.EndIndex {
			t.Errorf("group %d should re-include the previous boundary page: prev end %d, start %d",
				i, prev.EndIndex, cur.StartIndex)
		}
	}
}

func TestPlanGroups_EveryPageCovered(t *testing.T) {
	pages := makePages(37, 90)
	groups := PlanGroups(pages, 500, 2)

	seen := make(map[int]bool)
	for _, g := range groups {
		for idx := g.StartIndex; idx <= g.EndIndex; idx++ {
			seen[idx] = true
		}
	}
	for _, p := range pages {
		if !seen[p.PhysicalIndex] {
			t.Errorf("page %d missing from all groups", p.PhysicalIndex)
		}
	}

	// Groups come out in document order.
	for i := 1; i < len(groups); i++ {
		if groups[i].StartIndex < groups[i-1].StartIndex {
			t.Errorf("group %d out of order: start %d after %d", i, groups[i].StartIndex, groups[i-1].StartIndex)
		}
	}
}

func TestPlanGroups_TextCarriesPageTags(t *testing.T) {
	pages := makePages(3, 50)
	groups := PlanGroups(pages, 1000, 1)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	for _, idx := range []int{1, 2, 3} {
		open := fmt.Sprintf("<physical_index_%d>", idx)
		closing := fmt.Sprintf("</physical_index_%d>", idx)
		if !strings.Contains(groups[0].Text, open) || !strings.Contains(groups[0].Text, closing) {
			t.Errorf("expected group text to carry tags for page %d", idx)
		}
	}
}

func TestPlanGroups_DefaultsApplied(t *testing.T) {
	pages := makePages(3, 50)
	// Zero maxTokens and negative overlap fall back to defaults.
	groups := PlanGroups(pages, 0, -1)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group with defaults, got %d", len(groups))
	}
}

func TestPlanGroups_Empty(t *testing.T) {
	if groups := PlanGroups(nil, 1000, 1); groups != nil {
		t.Errorf("expected nil for no pages, got %d groups", len(groups))
	}
}
