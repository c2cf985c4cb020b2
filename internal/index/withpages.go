package index

import (
	"context"

	"github.com/dgallion1/pagetree/internal/toc"
)

// Pair is a TOC entry resolved both ways: its printed page number and
// the physical index the oracle found it at.
type Pair struct {
	Title    string
	Nominal  int
	Physical int
}

// InferOffset returns the most frequent physical-minus-nominal delta
// across pairs. Ties break to the delta seen first, so the result is
// deterministic for a given pair order. Returns false for no pairs.
func InferOffset(pairs []Pair) (int, bool) {
	if len(pairs) == 0 {
		return 0, false
	}
	counts := make(map[int]int, len(pairs))
	best := 0
	bestCount := 0
	for _, p := range pairs {
		delta := p.Physical - p.Nominal
		counts[delta]++
		if counts[delta] > bestCount {
			best = delta
			bestCount = counts[delta]
		}
	}
	return best, true
}

// ResolveWithPageNumbers resolves entries whose raw TOC carried printed
// page numbers. The oracle tags a bounded post-TOC window; entries found
// there pair with their printed numbers to yield a document-wide offset,
// which is applied uniformly. Leftover entries are located individually
// inside the window bounded by their nearest resolved neighbors.
func (r *Resolver) ResolveWithPageNumbers(ctx context.Context, entries []toc.Entry, tocPages []int, checkPages int) ([]toc.Entry, error) {
	if len(entries) == 0 {
		return entries, nil
	}

	windowStart := 1
	if len(tocPages) > 0 {
		windowStart = tocPages[len(tocPages)-1] + 1
	}
	windowEnd := min(windowStart+checkPages-1, r.store.LastIndex())

	// A copy without printed numbers, so the oracle cannot echo them
	// back as physical indices.
	stripped := toc.RemovePages(entries)
	tagged, err := r.oracle.Call(ctx, extractIndicesPrompt(
		toc.PromptJSON(stripped, false),
		r.store.TaggedRange(windowStart, windowEnd),
	))
	if err != nil {
		return nil, err
	}
	found := toc.CoercePhysicalIndices(toc.DecodeEntries(tagged.Content))

	pairs := matchPairs(entries, found, windowStart)
	r.log.Info("matching pairs for offset inference", "pairs", len(pairs))

	if offset, ok := InferOffset(pairs); ok {
		r.log.Info("page offset inferred", "offset", offset)
		for i := range entries {
			if entries[i].Page != nil {
				idx := *entries[i].Page + offset
				entries[i].StartIndex = &idx
				entries[i].PhysicalIndex = toc.FormatPhysicalIndex(idx)
			}
		}
	}

	return r.resolveRemaining(ctx, entries)
}

// matchPairs joins oracle-tagged entries to the original numbered
// entries by exact title. Tags pointing back into the TOC pages are
// discarded; the oracle sometimes matches the contents listing itself.
func matchPairs(numbered, found []toc.Entry, windowStart int) []Pair {
	var pairs []Pair
	for _, f := range found {
		if f.StartIndex == nil || *f.StartIndex < windowStart {
			continue
		}
		for _, n := range numbered {
			if n.Page != nil && n.Title != "" && n.Title == f.Title {
				pairs = append(pairs, Pair{Title: f.Title, Nominal: *n.Page, Physical: *f.StartIndex})
				break
			}
		}
	}
	return pairs
}

// resolveRemaining locates every still-unresolved entry inside the
// window bounded by its nearest resolved neighbors in list order,
// defaulting to the document bounds.
func (r *Resolver) resolveRemaining(ctx context.Context, entries []toc.Entry) ([]toc.Entry, error) {
	for i := range entries {
		if entries[i].StartIndex != nil {
			continue
		}

		start := 1
		for j := i - 1; j >= 0; j-- {
			if entries[j].StartIndex != nil {
				start = *entries[j].StartIndex
				break
			}
		}
		end := r.store.LastIndex()
		for j := i + 1; j < len(entries); j++ {
			if entries[j].StartIndex != nil {
				end = *entries[j].StartIndex
				break
			}
		}

		idx, ok, err := r.Locate(ctx, entries[i].Title, start, end)
		if err != nil {
			return nil, err
		}
		if ok {
			entries[i].StartIndex = &idx
			entries[i].PhysicalIndex = toc.FormatPhysicalIndex(idx)
		}
	}
	return entries, nil
}
