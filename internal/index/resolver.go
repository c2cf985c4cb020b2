// Package index resolves table-of-contents entries to physical page
// indices. Three interchangeable strategies exist: offset inference from
// nominal page numbers, sequential chunked tagging when the TOC has no
// page numbers, and fully generative extraction when there is no TOC.
package index

import (
	"context"
	"log/slog"

	"github.com/dgallion1/pagetree/internal/llm"
	"github.com/dgallion1/pagetree/internal/pagestore"
	"github.com/dgallion1/pagetree/internal/toc"
)

// Resolver runs the index-resolution strategies against one document.
type Resolver struct {
	oracle llm.Oracle
	store  *pagestore.Store
	log    *slog.Logger
}

func NewResolver(oracle llm.Oracle, store *pagestore.Store, log *slog.Logger) *Resolver {
	return &Resolver{oracle: oracle, store: store, log: log}
}

// Locate asks the oracle to find the start page of a section within the
// inclusive physical range [start, end]. Returns false when the oracle
// gives no parseable index.
func (r *Resolver) Locate(ctx context.Context, title string, start, end int) (int, bool, error) {
	content := r.store.TaggedRange(start, end)
	resp, err := r.oracle.Call(ctx, locatePrompt(title, content))
	if err != nil {
		return 0, false, err
	}
	m := llm.DecodeObject(resp.Content)
	idx, ok := toc.ParsePhysicalIndex(llm.StringField(m, "physical_index"))
	if !ok {
		return 0, false, nil
	}
	return idx, true, nil
}

// mergeResolved copies resolved indices from update into base without
// overwriting indices base already has. Entries are matched positionally
// when the lists line up, by title otherwise.
func mergeResolved(base, update []toc.Entry) []toc.Entry {
	if len(update) == 0 {
		return base
	}
	if len(base) == len(update) {
		for i := range base {
			if base[i].StartIndex == nil && update[i].StartIndex != nil {
				base[i].StartIndex = update[i].StartIndex
				base[i].PhysicalIndex = update[i].PhysicalIndex
			}
		}
		return base
	}

	byTitle := make(map[string]*toc.Entry, len(update))
	for i := range update {
		if update[i].StartIndex != nil {
			byTitle[update[i].Title] = &update[i]
		}
	}
	for i := range base {
		if base[i].StartIndex != nil {
			continue
		}
		if u, ok := byTitle[base[i].Title]; ok {
			base[i].StartIndex = u.StartIndex
			base[i].PhysicalIndex = u.PhysicalIndex
		}
	}
	return base
}
