package tree

import (
	"strings"

	"github.com/dgallion1/pagetree/internal/toc"
)

// AddPreface inserts a synthetic front-matter entry when the first
// resolved entry starts after page 1, so the tree covers the document
// from its first page.
func AddPreface(entries []toc.Entry) []toc.Entry {
	if len(entries) == 0 || entries[0].StartIndex == nil || *entries[0].StartIndex <= 1 {
		return entries
	}
	one := 1
	preface := toc.Entry{
		Structure:     "0",
		Title:         "Preface",
		PhysicalIndex: toc.FormatPhysicalIndex(1),
		StartIndex:    &one,
	}
	return append([]toc.Entry{preface}, entries...)
}

// Assemble converts a flat, resolved entry list into a tree. End
// indices follow the boundary rule: a section ends the page before the
// next section when that section starts at the top of its page, and
// shares the boundary page otherwise. The last entry runs to lastIndex.
// Entries must all carry a resolved StartIndex.
func Assemble(entries []toc.Entry, lastIndex int) []*Node {
	if len(entries) == 0 {
		return nil
	}

	ends := make([]int, len(entries))
	for i := range entries {
		if i == len(entries)-1 {
			ends[i] = lastIndex
			continue
		}
		next := entries[i+1]
		if next.StartIndex == nil {
			ends[i] = lastIndex
			continue
		}
		if strings.EqualFold(next.AppearStart, "yes") {
			ends[i] = *next.StartIndex - 1
		} else {
			ends[i] = *next.StartIndex
		}
	}

	return listToTree(entries, ends)
}

// listToTree nests entries by their structure codes. An entry attaches
// to the entry whose code is its own minus the last segment; entries
// with no such parent in the list become roots (orphan promotion).
func listToTree(entries []toc.Entry, ends []int) []*Node {
	byCode := make(map[string]*Node, len(entries))
	var roots []*Node

	for i, e := range entries {
		node := &Node{
			Title:    e.Title,
			EndIndex: ends[i],
		}
		if e.StartIndex != nil {
			node.StartIndex = *e.StartIndex
		}

		if e.Structure != "" {
			byCode[e.Structure] = node
		}

		parent := parentCode(e.Structure)
		if parent != "" {
			if p, ok := byCode[parent]; ok {
				p.Nodes = append(p.Nodes, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}

// parentCode strips the last dotted segment: "1.2.3" yields "1.2",
// "1" and "" yield "".
func parentCode(code string) string {
	if code == "" {
		return ""
	}
	i := strings.LastIndexByte(code, '.')
	if i == -1 {
		return ""
	}
	return code[:i]
}
