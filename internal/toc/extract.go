package toc

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dgallion1/pagetree/internal/llm"
	"github.com/dgallion1/pagetree/internal/pagestore"
)

// Info is the raw TOC pulled out of the document.
type Info struct {
	Content        string
	Pages          []int // physical indices of the TOC pages, in order
	HasPageNumbers bool
}

// Extractor concatenates the detected TOC pages and normalizes dot
// leaders so nominal page numbers survive later parsing.
type Extractor struct {
	oracle   llm.Oracle
	detector *Detector
	log      *slog.Logger
}

func NewExtractor(oracle llm.Oracle, detector *Detector, log *slog.Logger) *Extractor {
	return &Extractor{oracle: oracle, detector: detector, log: log}
}

var (
	dotLeaderRe       = regexp.MustCompile(`\.{5,}`)
	spacedDotLeaderRe = regexp.MustCompile(`(?:\. ){5,}\.?`)
)

// NormalizeDotLeaders rewrites runs of leader dots ("Chapter 1 ...... 9"
// and the spaced ". . . . ." variant) to a colon separator.
func NormalizeDotLeaders(text string) string {
	text = dotLeaderRe.ReplaceAllString(text, ": ")
	return spacedDotLeaderRe.ReplaceAllString(text, ": ")
}

// Extract gathers the text of the TOC pages, normalizes leader dots and
// reports whether the content carries printed page numbers.
func (e *Extractor) Extract(ctx context.Context, store *pagestore.Store, tocPages []int) (Info, error) {
	var sb strings.Builder
	for _, idx := range tocPages {
		if p, ok := store.Page(idx); ok {
			sb.WriteString(p.Text)
		}
	}
	content := NormalizeDotLeaders(sb.String())

	hasPages, err := e.detector.HasPageNumbers(ctx, content)
	if err != nil {
		return Info{}, err
	}

	e.log.Info("toc extracted", "pages", len(tocPages), "has_page_numbers", hasPages, "length", len(content))
	return Info{Content: content, Pages: tocPages, HasPageNumbers: hasPages}, nil
}

// ExtractFromText asks the oracle to pull a full TOC out of free text,
// used when the TOC pages mix contents with other front matter.
func (e *Extractor) ExtractFromText(ctx context.Context, content string) (string, error) {
	resp, err := e.oracle.Call(ctx, extractPrompt(content))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// IsComplete asks the oracle whether the extracted TOC covers all main
// sections visible in the given document text.
func (e *Extractor) IsComplete(ctx context.Context, documentText, tocContent string) (bool, error) {
	resp, err := e.oracle.Call(ctx, extractCompletePrompt(documentText, tocContent))
	if err != nil {
		return false, err
	}
	m := llm.DecodeObject(resp.Content)
	return strings.EqualFold(llm.StringField(m, "completed"), "yes"), nil
}
