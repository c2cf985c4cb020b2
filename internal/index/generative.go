package index

import (
	"context"
	"fmt"

	"github.com/dgallion1/pagetree/internal/chunker"
	"github.com/dgallion1/pagetree/internal/llm"
	"github.com/dgallion1/pagetree/internal/pagestore"
	"github.com/dgallion1/pagetree/internal/toc"
)

// ResolveGenerative invents a structure directly from page text, used
// when no table of contents exists. The first chunk seeds the structure;
// each further chunk extends it with new entries only. Also run by the
// node splitter over a single node's page range.
func (r *Resolver) ResolveGenerative(ctx context.Context, pages []pagestore.Page, maxTokens, overlap int) ([]toc.Entry, error) {
	groups := chunker.PlanGroups(pages, maxTokens, overlap)
	if len(groups) == 0 {
		return nil, nil
	}
	r.log.Info("chunked range for generative resolution", "groups", len(groups))

	resp, err := r.oracle.Call(ctx, generateInitPrompt(groups[0].Text))
	if err != nil {
		return nil, err
	}
	if resp.Status == llm.StatusTruncated {
		return nil, fmt.Errorf("generative structure output truncated on initial chunk")
	}
	entries := toc.DecodeEntries(resp.Content)

	for _, group := range groups[1:] {
		resp, err := r.oracle.Call(ctx, generateContinuePrompt(toc.PromptJSON(entries, false), group.Text))
		if err != nil {
			return nil, err
		}
		if resp.Status == llm.StatusTruncated {
			return nil, fmt.Errorf("generative structure output truncated on continuation chunk")
		}
		entries = append(entries, toc.DecodeEntries(resp.Content)...)
	}

	return toc.CoercePhysicalIndices(entries), nil
}
