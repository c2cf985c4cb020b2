// Package verify samples resolved entries and checks, via the oracle,
// that each title actually appears on its mapped page. Flagged entries
// are handed to the Fixer for bounded repair.
package verify

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/dgallion1/pagetree/internal/llm"
	"github.com/dgallion1/pagetree/internal/pagestore"
	"github.com/dgallion1/pagetree/internal/toc"
	"github.com/dgallion1/pagetree/internal/workpool"
)

// Outcome is one entry's verification verdict. ListIndex addresses the
// entry in the original flat list so the fixer can commit repairs.
type Outcome struct {
	ListIndex int
	Title     string
	Page      int // resolved physical index, 0 when unresolved
	Correct   bool
}

// Result is one verification pass.
type Result struct {
	Accuracy  float64
	Incorrect []Outcome
}

// Verifier checks entry-to-page mappings concurrently.
type Verifier struct {
	oracle llm.Oracle
	store  *pagestore.Store
	pool   *workpool.Pool
	log    *slog.Logger
}

func NewVerifier(oracle llm.Oracle, store *pagestore.Store, pool *workpool.Pool, log *slog.Logger) *Verifier {
	return &Verifier{oracle: oracle, store: store, pool: pool, log: log}
}

// Verify samples entries and checks each sampled title against its
// mapped page. sampleSize <= 0 checks every entry; otherwise a uniform
// random sample without replacement is drawn. If the last resolved
// index covers less than half the document the structure is rejected
// outright without spending oracle calls.
func (v *Verifier) Verify(ctx context.Context, entries []toc.Entry, sampleSize int) (Result, error) {
	if len(entries) == 0 {
		return Result{}, nil
	}

	var lastResolved *int
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].StartIndex != nil {
			lastResolved = entries[i].StartIndex
			break
		}
	}
	if lastResolved == nil || *lastResolved < v.store.Len()/2 {
		v.log.Info("structure rejected by coverage gate", "last_resolved", lastResolved)
		return Result{}, nil
	}

	sample := sampleIndices(len(entries), sampleSize)
	v.log.Info("verifying entries", "sampled", len(sample), "total", len(entries))

	outcomes := make([]Outcome, len(sample))
	err := v.pool.ForEach(ctx, len(sample), func(i int) error {
		entry := entries[sample[i]]
		out := Outcome{ListIndex: sample[i], Title: entry.Title}
		if entry.StartIndex == nil {
			outcomes[i] = out
			return nil
		}
		out.Page = *entry.StartIndex
		correct, err := v.CheckTitleOnPage(ctx, entry.Title, *entry.StartIndex)
		if err != nil {
			return err
		}
		out.Correct = correct
		outcomes[i] = out
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	correct := 0
	var incorrect []Outcome
	for _, out := range outcomes {
		if out.Correct {
			correct++
		} else {
			incorrect = append(incorrect, out)
		}
	}

	result := Result{
		Accuracy:  float64(correct) / float64(len(sample)),
		Incorrect: incorrect,
	}
	v.log.Info("verification pass complete", "accuracy", result.Accuracy, "incorrect", len(incorrect))
	return result, nil
}

// sampleIndices draws n distinct list positions, or all of them when
// n <= 0 or n >= total.
func sampleIndices(total, n int) []int {
	if n <= 0 || n >= total {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return rand.Perm(total)[:n]
}

// CheckTitleOnPage asks the oracle whether a title appears or starts on
// the page at the given physical index. Out-of-range indices are
// incorrect without an oracle call.
func (v *Verifier) CheckTitleOnPage(ctx context.Context, title string, physicalIndex int) (bool, error) {
	page, ok := v.store.Page(physicalIndex)
	if !ok {
		return false, nil
	}
	resp, err := v.oracle.Call(ctx, titleCheckPrompt(title, page.Text))
	if err != nil {
		return false, err
	}
	m := llm.DecodeObject(resp.Content)
	return strings.EqualFold(llm.StringField(m, "answer"), "yes"), nil
}

// CheckStartAppearance marks every resolved entry with whether its
// title is the first content on its start page. Unresolved entries are
// marked "no". The checks fan out over the pool.
func (v *Verifier) CheckStartAppearance(ctx context.Context, entries []toc.Entry) ([]toc.Entry, error) {
	var resolved []int
	for i := range entries {
		if entries[i].StartIndex == nil {
			entries[i].AppearStart = "no"
		} else {
			resolved = append(resolved, i)
		}
	}

	answers := make([]string, len(resolved))
	err := v.pool.ForEach(ctx, len(resolved), func(i int) error {
		entry := entries[resolved[i]]
		page, ok := v.store.Page(*entry.StartIndex)
		if !ok {
			answers[i] = "no"
			return nil
		}
		resp, err := v.oracle.Call(ctx, titleStartPrompt(entry.Title, page.Text))
		if err != nil {
			return err
		}
		m := llm.DecodeObject(resp.Content)
		if strings.EqualFold(llm.StringField(m, "start_begin"), "yes") {
			answers[i] = "yes"
		} else {
			answers[i] = "no"
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, listIdx := range resolved {
		entries[listIdx].AppearStart = answers[i]
	}
	return entries, nil
}
