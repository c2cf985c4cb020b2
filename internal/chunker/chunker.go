package chunker

import (
	"math"
	"strings"

	"github.com/dgallion1/pagetree/internal/pagestore"
)

// Group is a token-bounded run of consecutive pages, tagged and
// concatenated for oracle consumption. Consecutive groups share overlap
// pages so section starts on a boundary are visible to both.
type Group struct {
	Text       string
	StartIndex int // physical index of the first page in the group
	EndIndex   int // physical index of the last page in the group
	Tokens     int
}

// DefaultMaxTokens is the per-group token ceiling.
const DefaultMaxTokens = 20000

// DefaultOverlap is the number of boundary pages re-included in the next group.
const DefaultOverlap = 1

// PlanGroups splits pages into token-bounded groups. If the total fits
// under maxTokens a single group covering the whole range is returned.
// Otherwise the target group size is the midpoint between an even split
// and maximal packing, and pages are packed greedily; each new group
// re-includes the last overlap pages of the previous one.
//
// Every page appears in at least one group and groups are emitted in
// document order.
func PlanGroups(pages []pagestore.Page, maxTokens, overlap int) []Group {
	if len(pages) == 0 {
		return nil
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}

	total := 0
	for _, p := range pages {
		total += p.TokenCount
	}

	if total <= maxTokens {
		return []Group{makeGroup(pages)}
	}

	parts := int(math.Ceil(float64(total) / float64(maxTokens)))
	avg := int(math.Ceil((float64(total)/float64(parts) + float64(maxTokens)) / 2))

	var groups []Group
	var current []pagestore.Page
	currentTokens := 0

	for i, page := range pages {
		if currentTokens+page.TokenCount > avg && len(current) > 0 {
			groups = append(groups, makeGroup(current))

			// Carry the boundary pages into the next group.
			overlapStart := i - overlap
			if overlapStart < 0 {
				overlapStart = 0
			}
			current = append([]pagestore.Page(nil), pages[overlapStart:i]...)
			currentTokens = 0
			for _, p := range current {
				currentTokens += p.TokenCount
			}
		}
		current = append(current, page)
		currentTokens += page.TokenCount
	}

	if len(current) > 0 {
		groups = append(groups, makeGroup(current))
	}

	return groups
}

func makeGroup(pages []pagestore.Page) Group {
	var sb strings.Builder
	tokens := 0
	for _, p := range pages {
		sb.WriteString(pagestore.TagPage(p.PhysicalIndex, p.Text))
		tokens += p.TokenCount
	}
	return Group{
		Text:       sb.String(),
		StartIndex: pages[0].PhysicalIndex,
		EndIndex:   pages[len(pages)-1].PhysicalIndex,
		Tokens:     tokens,
	}
}
