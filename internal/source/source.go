package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pagetree/internal/pagestore"
)

// Extractor converts raw document bytes into ordered page texts.
// Formats without physical pages (markdown, html, docx, plain text) are
// paginated synthetically so the rest of the pipeline sees a uniform
// page sequence.
type Extractor interface {
	Extract(r io.Reader, filename string) ([]string, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// defaultPageTokens is the target size of a synthetic page.
const defaultPageTokens = 1000

// block is one unit of extracted content. Headings prefer to start a
// new synthetic page so section boundaries line up with page boundaries.
type block struct {
	text    string
	heading bool
}

// paginate packs blocks into synthetic pages of roughly targetTokens.
// A heading forces a page break once the current page is half full.
func paginate(blocks []block, targetTokens int) []string {
	if targetTokens <= 0 {
		targetTokens = defaultPageTokens
	}

	var pages []string
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() > 0 {
			pages = append(pages, current.String())
			current.Reset()
			currentTokens = 0
		}
	}

	for _, b := range blocks {
		if b.text == "" {
			continue
		}
		tokens := pagestore.EstimateTokens(b.text)
		switch {
		case currentTokens > 0 && currentTokens+tokens > targetTokens:
			flush()
		case b.heading && currentTokens > targetTokens/2:
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(b.text)
		currentTokens += tokens
	}
	flush()

	return pages
}
