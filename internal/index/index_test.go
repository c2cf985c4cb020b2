package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/pagetree/internal/llm"
	"github.com/dgallion1/pagetree/internal/pagestore"
	"github.com/dgallion1/pagetree/internal/toc"
)

type stubOracle struct {
	handle func(prompt string) llm.Response
}

func (s *stubOracle) Call(_ context.Context, prompt string) (llm.Response, error) {
	return s.handle(prompt), nil
}

func (s *stubOracle) CallWithHistory(ctx context.Context, prompt string, _ []llm.Message) (llm.Response, error) {
	return s.Call(ctx, prompt)
}

func testStore(n int) *pagestore.Store {
	pages := make([]pagestore.Page, n)
	for i := 0; i < n; i++ {
		pages[i] = pagestore.Page{
			PhysicalIndex: i + 1,
			Text:          fmt.Sprintf("text of page %d", i+1),
			TokenCount:    10,
		}
	}
	return pagestore.FromPages(pages)
}

func TestInferOffset(t *testing.T) {
	pairs := []Pair{
		{Title: "Intro", Nominal: 1, Physical: 8},
		{Title: "Methods", Nominal: 5, Physical: 12},
		{Title: "Results", Nominal: 9, Physical: 16},
	}
	offset, ok := InferOffset(pairs)
	require.True(t, ok)
	assert.Equal(t, 7, offset)
}

func TestInferOffsetTieBreaksFirstSeen(t *testing.T) {
	pairs := []Pair{
		{Title: "A", Nominal: 1, Physical: 4},
		{Title: "B", Nominal: 2, Physical: 7},
	}
	offset, ok := InferOffset(pairs)
	require.True(t, ok)
	assert.Equal(t, 3, offset)

	_, ok = InferOffset(nil)
	assert.False(t, ok)
}

func TestResolveWithPageNumbersAppliesOffset(t *testing.T) {
	// The oracle finds two titles in the post-TOC window, both at
	// nominal+7. Every numbered entry must end up shifted by 7.
	oracle := &stubOracle{handle: func(prompt string) llm.Response {
		if strings.Contains(prompt, "add the physical_index to the table of contents") {
			return llm.Response{Content: `[
				{"structure": "1", "title": "Intro", "physical_index": "<physical_index_8>"},
				{"structure": "2", "title": "Methods", "physical_index": "<physical_index_12>"}
			]`, Status: llm.StatusFinished}
		}
		t.Fatalf("unexpected prompt: %s", prompt[:60])
		return llm.Response{}
	}}

	page := func(n int) *int { return &n }
	entries := []toc.Entry{
		{Structure: "1", Title: "Intro", Page: page(1)},
		{Structure: "2", Title: "Methods", Page: page(5)},
		{Structure: "3", Title: "Results", Page: page(20)},
	}

	r := NewResolver(oracle, testStore(40), slog.New(slog.NewTextHandler(io.Discard, nil)))
	resolved, err := r.ResolveWithPageNumbers(context.Background(), entries, []int{2}, 20)
	require.NoError(t, err)

	require.NotNil(t, resolved[0].StartIndex)
	assert.Equal(t, 8, *resolved[0].StartIndex)
	require.NotNil(t, resolved[1].StartIndex)
	assert.Equal(t, 12, *resolved[1].StartIndex)
	// Results was never seen by the oracle, offset applies uniformly.
	require.NotNil(t, resolved[2].StartIndex)
	assert.Equal(t, 27, *resolved[2].StartIndex)
}

func TestResolveRemainingUsesNeighborWindow(t *testing.T) {
	var sawWindow string
	oracle := &stubOracle{handle: func(prompt string) llm.Response {
		if strings.Contains(prompt, "find the physical index of the start page") {
			sawWindow = prompt
			return llm.Response{Content: `{"physical_index": "<physical_index_6>"}`, Status: llm.StatusFinished}
		}
		return llm.Response{Content: "[]", Status: llm.StatusFinished}
	}}

	idx := func(n int) *int { return &n }
	entries := []toc.Entry{
		{Title: "A", StartIndex: idx(4)},
		{Title: "B"},
		{Title: "C", StartIndex: idx(9)},
	}

	r := NewResolver(oracle, testStore(20), slog.New(slog.NewTextHandler(io.Discard, nil)))
	resolved, err := r.resolveRemaining(context.Background(), entries)
	require.NoError(t, err)

	require.NotNil(t, resolved[1].StartIndex)
	assert.Equal(t, 6, *resolved[1].StartIndex)
	// The search window is bounded by the resolved neighbors.
	assert.Contains(t, sawWindow, "<physical_index_4>")
	assert.Contains(t, sawWindow, "<physical_index_9>")
	assert.NotContains(t, sawWindow, "<physical_index_10>")
}

func TestResolveNoPageNumbersPreservesEarlierResults(t *testing.T) {
	calls := 0
	oracle := &stubOracle{handle: func(prompt string) llm.Response {
		calls++
		// First chunk resolves A, second chunk tries to move A and adds B.
		if calls == 1 {
			return llm.Response{Content: `[
				{"title": "A", "start": "yes", "physical_index": "<physical_index_2>"},
				{"title": "B", "start": "no", "physical_index": null}
			]`, Status: llm.StatusFinished}
		}
		return llm.Response{Content: `[
			{"title": "A", "start": "yes", "physical_index": "<physical_index_9>"},
			{"title": "B", "start": "yes", "physical_index": "<physical_index_12>"}
		]`, Status: llm.StatusFinished}
	}}

	entries := []toc.Entry{{Title: "A"}, {Title: "B"}}
	r := NewResolver(oracle, testStore(30), slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Force at least two chunks: 30 pages x 10 tokens with a 120 ceiling.
	resolved, err := r.ResolveNoPageNumbers(context.Background(), entries, 120, 1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, calls, 2)

	require.NotNil(t, resolved[0].StartIndex)
	assert.Equal(t, 2, *resolved[0].StartIndex, "earlier result must not be overwritten")
	require.NotNil(t, resolved[1].StartIndex)
	assert.Equal(t, 12, *resolved[1].StartIndex)
}

func TestResolveGenerativeAppendsAcrossChunks(t *testing.T) {
	initSeen := false
	continueCalls := 0
	oracle := &stubOracle{handle: func(prompt string) llm.Response {
		if strings.Contains(prompt, "continue the tree structure") {
			continueCalls++
			if continueCalls > 1 {
				return llm.Response{Content: `[]`, Status: llm.StatusFinished}
			}
			return llm.Response{Content: `[
				{"structure": "2", "title": "Second", "physical_index": "<physical_index_20>"}
			]`, Status: llm.StatusFinished}
		}
		initSeen = true
		return llm.Response{Content: `[
			{"structure": "1", "title": "First", "physical_index": "<physical_index_1>"}
		]`, Status: llm.StatusFinished}
	}}

	store := testStore(30)
	r := NewResolver(oracle, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	entries, err := r.ResolveGenerative(context.Background(), store.Pages(), 120, 1)
	require.NoError(t, err)
	require.True(t, initSeen)

	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].StartIndex)
	assert.Equal(t, 1, *entries[0].StartIndex)
	require.NotNil(t, entries[1].StartIndex)
	assert.Equal(t, 20, *entries[1].StartIndex)
}

func TestResolveGenerativeTruncatedFails(t *testing.T) {
	oracle := &stubOracle{handle: func(string) llm.Response {
		return llm.Response{Content: `[`, Status: llm.StatusTruncated}
	}}
	store := testStore(5)
	r := NewResolver(oracle, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := r.ResolveGenerative(context.Background(), store.Pages(), 0, 1)
	assert.Error(t, err)
}
