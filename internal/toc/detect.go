package toc

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dgallion1/pagetree/internal/llm"
	"github.com/dgallion1/pagetree/internal/pagestore"
	"github.com/dgallion1/pagetree/internal/workpool"
)

// DefaultCheckPages is how many leading pages are scanned for a table
// of contents.
const DefaultCheckPages = 20

// Detector locates table-of-contents pages near the front of a document.
type Detector struct {
	oracle     llm.Oracle
	pool       *workpool.Pool
	log        *slog.Logger
	checkPages int
}

func NewDetector(oracle llm.Oracle, pool *workpool.Pool, checkPages int, log *slog.Logger) *Detector {
	if checkPages <= 0 {
		checkPages = DefaultCheckPages
	}
	return &Detector{oracle: oracle, pool: pool, log: log, checkPages: checkPages}
}

// FindTOCPages returns the physical indices of the contiguous run of
// TOC pages, or an empty slice if none are detected. The leading window
// is checked concurrently; if the run reaches the window's edge the
// scan continues page by page until the run ends.
func (d *Detector) FindTOCPages(ctx context.Context, store *pagestore.Store) ([]int, error) {
	pages := store.Pages()
	limit := min(d.checkPages, len(pages))
	if limit == 0 {
		return nil, nil
	}

	results := make([]bool, limit)
	err := d.pool.ForEach(ctx, limit, func(i int) error {
		detected, err := d.PageHasTOC(ctx, pages[i].Text)
		if err != nil {
			return err
		}
		results[i] = detected
		return nil
	})
	if err != nil {
		return nil, err
	}

	var tocPages []int
	for i := 0; i < limit; i++ {
		if results[i] {
			tocPages = append(tocPages, pages[i].PhysicalIndex)
		} else if len(tocPages) > 0 {
			break
		}
	}

	// The run may extend past the checked window.
	if len(tocPages) > 0 && tocPages[len(tocPages)-1] == pages[limit-1].PhysicalIndex {
		for i := limit; i < len(pages); i++ {
			detected, err := d.PageHasTOC(ctx, pages[i].Text)
			if err != nil {
				return nil, err
			}
			if !detected {
				break
			}
			tocPages = append(tocPages, pages[i].PhysicalIndex)
		}
	}

	if len(tocPages) == 0 {
		d.log.Info("no toc pages detected", "checked", limit)
	} else {
		d.log.Info("toc pages detected", "first", tocPages[0], "last", tocPages[len(tocPages)-1])
	}
	return tocPages, nil
}

// PageHasTOC asks the oracle whether a single page contains a table of
// contents. Lists of figures, tables, or notation do not count.
func (d *Detector) PageHasTOC(ctx context.Context, pageText string) (bool, error) {
	resp, err := d.oracle.Call(ctx, detectPrompt(pageText))
	if err != nil {
		return false, err
	}
	m := llm.DecodeObject(resp.Content)
	return strings.EqualFold(llm.StringField(m, "toc_detected"), "yes"), nil
}

// HasPageNumbers asks the oracle whether the extracted TOC text carries
// printed page numbers.
func (d *Detector) HasPageNumbers(ctx context.Context, tocContent string) (bool, error) {
	resp, err := d.oracle.Call(ctx, pageNumbersPrompt(tocContent))
	if err != nil {
		return false, err
	}
	m := llm.DecodeObject(resp.Content)
	return strings.EqualFold(llm.StringField(m, "page_index_given_in_toc"), "yes"), nil
}
