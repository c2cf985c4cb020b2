package verify

import (
	"context"
	"log/slog"

	"github.com/dgallion1/pagetree/internal/index"
	"github.com/dgallion1/pagetree/internal/pagestore"
	"github.com/dgallion1/pagetree/internal/toc"
	"github.com/dgallion1/pagetree/internal/workpool"
)

// DefaultAttempts is the repair pass budget. The cap, not convergence,
// guarantees termination.
const DefaultAttempts = 3

// Fixer re-resolves entries the verifier flagged, bounding each search
// by the nearest still-correct neighbors in list order.
type Fixer struct {
	resolver *index.Resolver
	verifier *Verifier
	store    *pagestore.Store
	pool     *workpool.Pool
	log      *slog.Logger
}

func NewFixer(resolver *index.Resolver, verifier *Verifier, store *pagestore.Store, pool *workpool.Pool, log *slog.Logger) *Fixer {
	return &Fixer{resolver: resolver, verifier: verifier, store: store, pool: pool, log: log}
}

type repairResult struct {
	outcome Outcome
	index   int
	valid   bool
}

// Repair runs up to attempts passes over the incorrect set. Each pass
// relocates every flagged entry concurrently and commits candidates
// that pass the title-appearance check. Entries still flagged after the
// budget are returned unchanged.
func (f *Fixer) Repair(ctx context.Context, entries []toc.Entry, incorrect []Outcome, attempts int) ([]toc.Entry, []Outcome, error) {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	for attempt := 1; attempt <= attempts && len(incorrect) > 0; attempt++ {
		f.log.Info("repair pass", "attempt", attempt, "incorrect", len(incorrect))

		remaining, err := f.repairPass(ctx, entries, incorrect)
		if err != nil {
			return nil, nil, err
		}
		incorrect = remaining
	}

	if len(incorrect) > 0 {
		f.log.Warn("repair budget exhausted", "remaining", len(incorrect))
	}
	return entries, incorrect, nil
}

func (f *Fixer) repairPass(ctx context.Context, entries []toc.Entry, incorrect []Outcome) ([]Outcome, error) {
	flagged := make(map[int]bool, len(incorrect))
	for _, out := range incorrect {
		flagged[out.ListIndex] = true
	}

	results := make([]repairResult, len(incorrect))
	err := f.pool.ForEach(ctx, len(incorrect), func(i int) error {
		out := incorrect[i]
		results[i] = repairResult{outcome: out}
		if out.ListIndex < 0 || out.ListIndex >= len(entries) {
			return nil
		}

		start, end := f.anchors(entries, flagged, out.ListIndex)
		idx, ok, err := f.resolver.Locate(ctx, out.Title, start, end)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		correct, err := f.verifier.CheckTitleOnPage(ctx, out.Title, idx)
		if err != nil {
			return err
		}
		results[i] = repairResult{outcome: out, index: idx, valid: correct}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Commit sequentially after the fan-out so entries are not written
	// from multiple goroutines.
	var remaining []Outcome
	for _, res := range results {
		if res.valid {
			idx := res.index
			entries[res.outcome.ListIndex].StartIndex = &idx
			entries[res.outcome.ListIndex].PhysicalIndex = toc.FormatPhysicalIndex(idx)
		} else {
			remaining = append(remaining, res.outcome)
		}
	}
	return remaining, nil
}

// anchors returns the search window for one flagged entry: the resolved
// indices of the nearest unflagged neighbors before and after it in
// list order, defaulting to the document bounds.
func (f *Fixer) anchors(entries []toc.Entry, flagged map[int]bool, listIndex int) (int, int) {
	start := 1
	for i := listIndex - 1; i >= 0; i-- {
		if !flagged[i] && entries[i].StartIndex != nil {
			start = *entries[i].StartIndex
			break
		}
	}
	end := f.store.LastIndex()
	for i := listIndex + 1; i < len(entries); i++ {
		if !flagged[i] && entries[i].StartIndex != nil {
			end = *entries[i].StartIndex
			break
		}
	}
	return start, end
}
