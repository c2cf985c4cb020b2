package tree

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dgallion1/pagetree/internal/index"
	"github.com/dgallion1/pagetree/internal/pagestore"
	"github.com/dgallion1/pagetree/internal/toc"
	"github.com/dgallion1/pagetree/internal/verify"
	"github.com/dgallion1/pagetree/internal/workpool"
)

// Recursion stops when no generated child strictly shrinks its span;
// the depth cap bounds it regardless.
const maxSplitDepth = 8

// Splitter re-runs generative resolution over any node whose page span
// and token sum both exceed their limits, replacing the node's subtree
// with the regenerated structure.
type Splitter struct {
	resolver    *index.Resolver
	verifier    *verify.Verifier
	store       *pagestore.Store
	pool        *workpool.Pool
	log         *slog.Logger
	maxPages    int
	maxTokens   int
	groupTokens int
	overlap     int
}

// SplitterConfig carries the node-size limits and chunking parameters.
type SplitterConfig struct {
	MaxPages    int // page-span limit before a node is split
	MaxTokens   int // token floor; both conditions must hold
	GroupTokens int // chunk ceiling for the generative re-run
	Overlap     int
}

func NewSplitter(resolver *index.Resolver, verifier *verify.Verifier, store *pagestore.Store, pool *workpool.Pool, cfg SplitterConfig, log *slog.Logger) *Splitter {
	return &Splitter{
		resolver:    resolver,
		verifier:    verifier,
		store:       store,
		pool:        pool,
		log:         log,
		maxPages:    cfg.MaxPages,
		maxTokens:   cfg.MaxTokens,
		groupTokens: cfg.GroupTokens,
		overlap:     cfg.Overlap,
	}
}

// SplitAll processes every root node, recursing into the resulting
// children. Subtrees are disjoint, so siblings run in parallel.
func (s *Splitter) SplitAll(ctx context.Context, nodes []*Node) error {
	return s.pool.ForEach(ctx, len(nodes), func(i int) error {
		return s.split(ctx, nodes[i], 0)
	})
}

func (s *Splitter) split(ctx context.Context, node *Node, depth int) error {
	if depth >= maxSplitDepth {
		s.log.Warn("split depth cap reached", "title", node.Title, "depth", depth)
		return nil
	}

	if s.needsSplit(node) {
		if err := s.regenerate(ctx, node); err != nil {
			return err
		}
	}

	return s.pool.ForEach(ctx, len(node.Nodes), func(i int) error {
		return s.split(ctx, node.Nodes[i], depth+1)
	})
}

func (s *Splitter) needsSplit(node *Node) bool {
	span := node.EndIndex - node.StartIndex
	if span <= s.maxPages {
		return false
	}
	tokens := s.store.TokenSum(node.StartIndex, node.EndIndex)
	return tokens >= s.maxTokens
}

// regenerate runs the generative strategy over the node's page range
// and swaps in the resulting child list. If the first generated item is
// the node's own title, it stands for the node itself and only the
// remainder become children.
func (s *Splitter) regenerate(ctx context.Context, node *Node) error {
	s.log.Info("splitting oversized node", "title", node.Title, "start", node.StartIndex, "end", node.EndIndex)

	entries, err := s.resolver.ResolveGenerative(ctx, s.store.Slice(node.StartIndex, node.EndIndex), s.groupTokens, s.overlap)
	if err != nil {
		return err
	}
	entries, err = s.verifier.CheckStartAppearance(ctx, entries)
	if err != nil {
		return err
	}
	valid := toc.FilterResolved(entries)
	if len(valid) == 0 {
		return nil
	}

	selfMatch := strings.TrimSpace(valid[0].Title) == strings.TrimSpace(node.Title)
	if selfMatch && len(valid) > 1 {
		children := Assemble(valid[1:], node.EndIndex)
		node.Nodes = children
		node.EndIndex = *valid[1].StartIndex
	} else {
		children := Assemble(valid, node.EndIndex)
		node.Nodes = children
		node.EndIndex = *valid[0].StartIndex
	}
	return nil
}
