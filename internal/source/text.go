package source

import (
	"bufio"
	"io"
	"strings"
)

// TextExtractor handles plain text files. Form feeds are honored as page
// breaks when present; otherwise paragraphs are packed into synthetic
// pages.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, _ string) ([]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(raw)

	if strings.Contains(text, "\f") {
		pages := strings.Split(strings.TrimRight(text, "\f"), "\f")
		return pages, nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []block
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			blocks = append(blocks, block{text: current.String()})
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return paginate(blocks, defaultPageTokens), nil
}
