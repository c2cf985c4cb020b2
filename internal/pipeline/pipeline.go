// Package pipeline drives one document through TOC detection, the
// mode cascade, verification and repair, tree assembly, and node
// splitting, producing the final section tree.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/pagetree/internal/index"
	"github.com/dgallion1/pagetree/internal/llm"
	"github.com/dgallion1/pagetree/internal/pagestore"
	"github.com/dgallion1/pagetree/internal/toc"
	"github.com/dgallion1/pagetree/internal/tree"
	"github.com/dgallion1/pagetree/internal/verify"
	"github.com/dgallion1/pagetree/internal/workpool"
)

// Config is the per-run tuning surface.
type Config struct {
	TOCCheckPages    int
	MaxPagesPerNode  int
	MaxTokensPerNode int
	FixAttempts      int
	VerifySample     int // 0 verifies every entry
	GroupMaxTokens   int
	GroupOverlap     int
	WorkerLimit      int

	AddNodeText       bool
	AddNodeSummary    bool
	AddDocDescription bool
	AddNodeID         bool
}

// Pipeline wires the components for one document. The worker pool is
// created here and torn down with the run; nothing is process-global.
type Pipeline struct {
	store *pagestore.Store
	pool  *workpool.Pool
	log   *slog.Logger
	cfg   Config

	detector    *toc.Detector
	extractor   *toc.Extractor
	transformer *toc.Transformer
	resolver    *index.Resolver
	verifier    *verify.Verifier
	fixer       *verify.Fixer
	splitter    *tree.Splitter
	enricher    *tree.Enricher
}

func New(oracle llm.Oracle, store *pagestore.Store, cfg Config, log *slog.Logger) *Pipeline {
	limit := cfg.WorkerLimit
	if limit <= 0 {
		limit = workpool.DefaultLimit()
	}
	pool := workpool.New(limit)

	detector := toc.NewDetector(oracle, pool, cfg.TOCCheckPages, log)
	resolver := index.NewResolver(oracle, store, log)
	verifier := verify.NewVerifier(oracle, store, pool, log)

	return &Pipeline{
		store:       store,
		pool:        pool,
		log:         log,
		cfg:         cfg,
		detector:    detector,
		extractor:   toc.NewExtractor(oracle, detector, log),
		transformer: toc.NewTransformer(oracle, log),
		resolver:    resolver,
		verifier:    verifier,
		fixer:       verify.NewFixer(resolver, verifier, store, pool, log),
		splitter: tree.NewSplitter(resolver, verifier, store, pool, tree.SplitterConfig{
			MaxPages:    cfg.MaxPagesPerNode,
			MaxTokens:   cfg.MaxTokensPerNode,
			GroupTokens: cfg.GroupMaxTokens,
			Overlap:     cfg.GroupOverlap,
		}, log),
		enricher: tree.NewEnricher(oracle, store, pool, log),
	}
}

// Run processes the whole document and returns its section tree. Any
// transport-level failure that survives the retry budget aborts the
// run; there is no partial output.
func (p *Pipeline) Run(ctx context.Context, docName string) (*tree.Tree, error) {
	tocPages, err := p.detector.FindTOCPages(ctx, p.store)
	if err != nil {
		return nil, err
	}

	mode := ModeNoTOC
	var info toc.Info
	if len(tocPages) > 0 {
		info, err = p.extractor.Extract(ctx, p.store, tocPages)
		if err != nil {
			return nil, err
		}
		if info.HasPageNumbers {
			mode = ModeWithPageNumbers
		} else {
			mode = ModeNoPageNumbers
		}
	}
	p.log.Info("mode cascade starting", "mode", mode.String(), "toc_pages", len(tocPages))

	entries, err := p.cascade(ctx, mode, info, tocPages)
	if err != nil {
		return nil, err
	}

	entries = toc.FilterResolved(entries)
	entries = tree.AddPreface(entries)
	entries, err = p.verifier.CheckStartAppearance(ctx, entries)
	if err != nil {
		return nil, err
	}

	nodes := tree.Assemble(entries, p.store.LastIndex())
	if err := p.splitter.SplitAll(ctx, nodes); err != nil {
		return nil, err
	}

	out := &tree.Tree{DocName: docName, Nodes: nodes}
	if err := p.enrich(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// cascade tries each mode in order until one yields an acceptable
// structure. A perfect verification accepts directly; accuracy above
// the repair floor accepts after repair regardless of what remains
// flagged; anything lower discards the candidate entirely.
func (p *Pipeline) cascade(ctx context.Context, mode Mode, info toc.Info, tocPages []int) ([]toc.Entry, error) {
	for {
		entries, err := p.resolve(ctx, mode, info, tocPages)
		if err != nil {
			return nil, err
		}
		entries = toc.ClipToBounds(entries, p.store.LastIndex())

		result, err := p.verifier.Verify(ctx, entries, p.cfg.VerifySample)
		if err != nil {
			return nil, err
		}
		p.log.Info("mode verified", "mode", mode.String(), "accuracy", result.Accuracy, "entries", len(entries))

		switch {
		case len(entries) > 0 && result.Accuracy == 1.0:
			return entries, nil
		case result.Accuracy > repairFloor:
			repaired, remaining, err := p.fixer.Repair(ctx, entries, result.Incorrect, p.cfg.FixAttempts)
			if err != nil {
				return nil, err
			}
			if len(remaining) > 0 {
				p.log.Warn("accepting structure with unrepaired entries", "remaining", len(remaining))
			}
			return repaired, nil
		}

		next, ok := mode.Next()
		if !ok {
			return nil, ErrModesExhausted
		}
		p.log.Warn("mode rejected, falling through", "from", mode.String(), "to", next.String())
		mode = next
	}
}

func (p *Pipeline) resolve(ctx context.Context, mode Mode, info toc.Info, tocPages []int) ([]toc.Entry, error) {
	switch mode {
	case ModeWithPageNumbers, ModeNoPageNumbers:
		result, err := p.transformer.Transform(ctx, info.Content)
		if err != nil {
			return nil, err
		}
		if !result.Complete {
			p.log.Warn("toc transformation partial", "reason", result.Reason, "entries", len(result.Entries))
		}
		if mode == ModeWithPageNumbers {
			return p.resolver.ResolveWithPageNumbers(ctx, result.Entries, tocPages, p.cfg.TOCCheckPages)
		}
		return p.resolver.ResolveNoPageNumbers(ctx, result.Entries, p.cfg.GroupMaxTokens, p.cfg.GroupOverlap)
	default:
		return p.resolver.ResolveGenerative(ctx, p.store.Pages(), p.cfg.GroupMaxTokens, p.cfg.GroupOverlap)
	}
}

// enrich fills the optional output fields. Node text is always built
// when summaries are requested, then dropped again unless text itself
// was asked for.
func (p *Pipeline) enrich(ctx context.Context, t *tree.Tree) error {
	if p.cfg.AddNodeText || p.cfg.AddNodeSummary {
		p.enricher.AddNodeText(t.Nodes)
	}
	if p.cfg.AddNodeSummary {
		if err := p.enricher.Summarize(ctx, t.Nodes); err != nil {
			return err
		}
	}
	if !p.cfg.AddNodeText {
		tree.Walk(t.Nodes, func(n *tree.Node) { n.Text = "" })
	}
	if p.cfg.AddDocDescription {
		desc, err := p.enricher.DocDescription(ctx, t.Nodes)
		if err != nil {
			return err
		}
		t.DocDescription = desc
	}
	if p.cfg.AddNodeID {
		tree.AssignNodeIDs(t.Nodes)
	}
	return nil
}
