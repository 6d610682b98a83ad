package pagerank

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/nao1215/websearch/internal/model"
)

// ErrUnknownNode is returned when an edge references a node not in the graph.
var ErrUnknownNode = errors.New("unknown node")

// Graph is a directed link graph over doc_ids.
// Self links and parallel edges are not stored.
type Graph struct {
	nodes []int       // sorted doc_ids
	index map[int]int // doc_id -> position in nodes
	out   [][]int     // out[i] are sorted positions
	in    [][]int     // in[i] are sorted positions
	edges int
}

// NewGraph creates a graph with the given nodes and no edges.
func NewGraph(docIDs []int) *Graph {
	nodes := slices.Clone(docIDs)
	sort.Ints(nodes)
	nodes = slices.Compact(nodes)

	g := &Graph{
		nodes: nodes,
		index: make(map[int]int, len(nodes)),
		out:   make([][]int, len(nodes)),
		in:    make([][]int, len(nodes)),
	}
	for i, id := range nodes {
		g.index[id] = i
	}
	return g
}

// BuildGraph derives the link graph of a corpus. Outlinks are resolved
// through the documents' URLs; links to pages that were not crawled are
// dropped.
func BuildGraph(docs []*model.Document) *Graph {
	ids := make([]int, 0, len(docs))
	urlToID := make(map[string]int, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.DocID)
		urlToID[doc.URL] = doc.DocID
	}

	g := NewGraph(ids)
	for _, doc := range docs {
		for _, link := range doc.Outlinks {
			if target, ok := urlToID[link]; ok {
				// Both ends are known nodes.
				_ = g.AddEdge(doc.DocID, target)
			}
		}
	}
	return g
}

// AddEdge adds a link from one doc_id to another.
// Self links and duplicates are ignored.
func (g *Graph) AddEdge(from, to int) error {
	f, ok := g.index[from]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, from)
	}
	t, ok := g.index[to]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, to)
	}
	if f == t {
		return nil
	}

	pos, found := slices.BinarySearch(g.out[f], t)
	if found {
		return nil
	}
	g.out[f] = slices.Insert(g.out[f], pos, t)

	pos, _ = slices.BinarySearch(g.in[t], f)
	g.in[t] = slices.Insert(g.in[t], pos, f)

	g.edges++
	return nil
}

// Nodes returns the doc_ids in ascending order.
func (g *Graph) Nodes() []int {
	return slices.Clone(g.nodes)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// OutLinks returns the targets of a node's edges, ascending.
func (g *Graph) OutLinks(docID int) []int {
	i, ok := g.index[docID]
	if !ok {
		return nil
	}
	targets := make([]int, len(g.out[i]))
	for k, pos := range g.out[i] {
		targets[k] = g.nodes[pos]
	}
	return targets
}

// DanglingCount returns the number of nodes without out-links.
func (g *Graph) DanglingCount() int {
	n := 0
	for _, targets := range g.out {
		if len(targets) == 0 {
			n++
		}
	}
	return n
}
