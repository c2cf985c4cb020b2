package tree

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgallion1/pagetree/internal/llm"
	"github.com/dgallion1/pagetree/internal/pagestore"
	"github.com/dgallion1/pagetree/internal/workpool"
)

// Enricher fills optional node fields after assembly: raw page text,
// per-node summaries, and the one-line document description.
type Enricher struct {
	oracle llm.Oracle
	store  *pagestore.Store
	pool   *workpool.Pool
	log    *slog.Logger
}

func NewEnricher(oracle llm.Oracle, store *pagestore.Store, pool *workpool.Pool, log *slog.Logger) *Enricher {
	return &Enricher{oracle: oracle, store: store, pool: pool, log: log}
}

// AddNodeText fills each node's Text with the concatenated text of its
// page span.
func (e *Enricher) AddNodeText(nodes []*Node) {
	Walk(nodes, func(n *Node) {
		var sb strings.Builder
		for _, p := range e.store.Slice(n.StartIndex, n.EndIndex) {
			sb.WriteString(p.Text)
		}
		n.Text = sb.String()
	})
}

// Summarize generates a summary for every node that has text, fanning
// out over the pool. Nodes without text are skipped.
func (e *Enricher) Summarize(ctx context.Context, nodes []*Node) error {
	flat := Flatten(nodes)
	e.log.Info("summarizing nodes", "count", len(flat))

	return e.pool.ForEach(ctx, len(flat), func(i int) error {
		node := flat[i]
		if node.Text == "" {
			return nil
		}
		resp, err := e.oracle.Call(ctx, nodeSummaryPrompt(node.Text))
		if err != nil {
			return err
		}
		node.Summary = strings.TrimSpace(resp.Content)
		return nil
	})
}

// DocDescription asks the oracle for a one-sentence description of the
// whole document based on its section outline.
func (e *Enricher) DocDescription(ctx context.Context, nodes []*Node) (string, error) {
	resp, err := e.oracle.Call(ctx, docDescriptionPrompt(Outline(nodes)))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// Outline renders the tree as an indented bullet list of titles and
// page ranges, used for description prompts.
func Outline(nodes []*Node) string {
	var sb strings.Builder
	var walk func([]*Node, int)
	walk = func(ns []*Node, depth int) {
		for _, n := range ns {
			sb.WriteString(strings.Repeat("  ", depth))
			sb.WriteString("- ")
			sb.WriteString(n.Title)
			if n.StartIndex > 0 {
				sb.WriteString(" (pages ")
				sb.WriteString(strconv.Itoa(n.StartIndex))
				sb.WriteString("-")
				sb.WriteString(strconv.Itoa(n.EndIndex))
				sb.WriteString(")")
			}
			sb.WriteString("\n")
			walk(n.Nodes, depth+1)
		}
	}
	walk(nodes, 0)
	return sb.String()
}
