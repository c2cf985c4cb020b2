package source

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	cases := []struct {
		filename string
		wantErr  bool
	}{
		{"report.pdf", false},
		{"notes.txt", false},
		{"README.md", false},
		{"page.html", false},
		{"page.htm", false},
		{"memo.docx", false},
		{"archive.zip", true},
		{"noext", true},
	}
	for _, tc := range cases {
		_, err := ForFile(tc.filename)
		if (err != nil) != tc.wantErr {
			t.Errorf("ForFile(%q): err = %v, wantErr %v", tc.filename, err, tc.wantErr)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("Report.PDF") {
		t.Error("expected .PDF to be supported case-insensitively")
	}
	if IsSupportedExtension("data.csv") {
		t.Error("expected .csv to be unsupported")
	}
}

func TestTextExtractorFormFeeds(t *testing.T) {
	input := "page one text\fpage two text\fpage three text"
	pages, err := (&TextExtractor{}).Extract(strings.NewReader(input), "doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[1] != "page two text" {
		t.Errorf("page 2: got %q", pages[1])
	}
}

func TestTextExtractorParagraphs(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph."
	pages, err := (&TextExtractor{}).Extract(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page for short input, got %d", len(pages))
	}
	if !strings.Contains(pages[0], "Second paragraph.") {
		t.Errorf("page missing second paragraph: %q", pages[0])
	}
}

func TestTextExtractorEmpty(t *testing.T) {
	pages, err := (&TextExtractor{}).Extract(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected 0 pages for empty input, got %d", len(pages))
	}
}

func TestMarkdownExtractorHeadings(t *testing.T) {
	input := "# Title\n\nSome intro text.\n\n## Section\n\nBody of the section."
	pages, err := (&MarkdownExtractor{}).Extract(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page for short input, got %d", len(pages))
	}
	if !strings.Contains(pages[0], "# Title") {
		t.Errorf("expected heading marker in page, got %q", pages[0])
	}
	if !strings.Contains(pages[0], "Body of the section.") {
		t.Errorf("expected body text in page, got %q", pages[0])
	}
}

func TestHTMLExtractor(t *testing.T) {
	input := `<html><head><title>Doc</title><script>junk()</script></head>
<body><h1>Chapter 1</h1><p>First paragraph.</p><p>Second paragraph.</p></body></html>`
	pages, err := (&HTMLExtractor{}).Extract(strings.NewReader(input), "doc.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if !strings.Contains(pages[0], "Chapter 1") {
		t.Errorf("expected heading text, got %q", pages[0])
	}
	if strings.Contains(pages[0], "junk()") {
		t.Errorf("script content leaked into page: %q", pages[0])
	}
}

func TestPaginateBreaksAtHeadings(t *testing.T) {
	long := strings.Repeat("word ", 900) // ~1200 estimated tokens
	blocks := []block{
		{text: "# One", heading: true},
		{text: long},
		{text: "# Two", heading: true},
		{text: long},
	}
	pages := paginate(blocks, 1000)
	if len(pages) < 2 {
		t.Fatalf("expected multiple pages, got %d", len(pages))
	}
	if !strings.HasPrefix(pages[0], "# One") {
		t.Errorf("page 1 should start with first heading, got %q", pages[0])
	}
}
