// Package tree assembles resolved flat entries into the nested section
// tree and re-subdivides oversized nodes.
package tree

import "fmt"

// Node is one section of the final tree. A node exclusively owns its
// children; the splitter replaces a children list wholesale rather than
// rewiring nodes.
type Node struct {
	Title      string  `json:"title"`
	NodeID     string  `json:"node_id,omitempty"`
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Text       string  `json:"text,omitempty"`
	Summary    string  `json:"summary,omitempty"`
	Nodes      []*Node `json:"nodes,omitempty"`
}

// Tree is the pipeline's final output for one document.
type Tree struct {
	DocName        string  `json:"doc_name"`
	DocDescription string  `json:"doc_description,omitempty"`
	Nodes          []*Node `json:"nodes"`
}

// AssignNodeIDs numbers every node in depth-first document order.
func AssignNodeIDs(nodes []*Node) {
	counter := 0
	var walk func([]*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			n.NodeID = fmt.Sprintf("%04d", counter)
			counter++
			walk(n.Nodes)
		}
	}
	walk(nodes)
}

// Walk visits every node in depth-first document order.
func Walk(nodes []*Node, fn func(*Node)) {
	for _, n := range nodes {
		fn(n)
		Walk(n.Nodes, fn)
	}
}

// Flatten returns every node in depth-first document order.
func Flatten(nodes []*Node) []*Node {
	var out []*Node
	Walk(nodes, func(n *Node) {
		out = append(out, n)
	})
	return out
}
