package index

import (
	"context"

	"github.com/dgallion1/pagetree/internal/chunker"
	"github.com/dgallion1/pagetree/internal/toc"
)

// ResolveNoPageNumbers resolves entries for a TOC that carries no
// printed page numbers. The document is fed to the oracle chunk by
// chunk together with the structure filled in so far; each pass only
// adds indices for sections starting in the current chunk.
func (r *Resolver) ResolveNoPageNumbers(ctx context.Context, entries []toc.Entry, maxTokens, overlap int) ([]toc.Entry, error) {
	if len(entries) == 0 {
		return entries, nil
	}

	groups := chunker.PlanGroups(r.store.Pages(), maxTokens, overlap)
	r.log.Info("chunked document for sequential resolution", "groups", len(groups))

	for _, group := range groups {
		resp, err := r.oracle.Call(ctx, fillIndicesPrompt(group.Text, toc.PromptJSON(entries, false)))
		if err != nil {
			return nil, err
		}
		update := toc.CoercePhysicalIndices(toc.DecodeEntries(resp.Content))
		entries = mergeResolved(entries, update)
	}

	return entries, nil
}
