// Package export renders the combined graph of one batch as labeled nodes
// and typed edges, for JSONL streams or a Neo4j database. It exists for
// inspection and debugging of batches; the encoder itself never depends
// on it.
package export

import (
	"fmt"

	"astenc/internal/encoder"
)

// Node is one combined-graph node with a stable string id of the form
// t<tree>n<node>.
type Node struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Properties map[string]interface{} `json:"properties"`
}

// Edge is one directed combined-graph edge, typed by relation kind.
type Edge struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Type     string `json:"type"`
}

func nodeID(ref encoder.NodeRef) string {
	return fmt.Sprintf("t%dn%d", ref.Tree, ref.Node)
}

// CombinedGraph converts an index and its relations into an exportable node
// and edge list. Nodes appear in combined-id order; edges follow relation
// order.
func CombinedGraph(trees []encoder.Tree, index *encoder.NodeIndex, relations []encoder.Relation) ([]Node, []Edge, error) {
	nodes := make([]Node, 0, index.Len())
	for id := 0; id < index.Len(); id++ {
		ref, ok := index.Ref(id)
		if !ok {
			return nil, nil, fmt.Errorf("combined id %d: %w", id, encoder.ErrMissingNodeMapping)
		}
		astNode, ok := trees[ref.Tree].Node(ref.Node)
		if !ok {
			return nil, nil, fmt.Errorf("tree %d node %d: %w", ref.Tree, ref.Node, encoder.ErrMissingNodeMapping)
		}

		props := map[string]interface{}{
			"tree":     ref.Tree,
			"node":     ref.Node,
			"combined": id,
		}
		label := "NonTerminal"
		if astNode.Terminal {
			label = "Terminal"
			props["ident"] = astNode.Ident
		} else {
			props["kind"] = astNode.Kind
		}
		nodes = append(nodes, Node{ID: nodeID(ref), Label: label, Properties: props})
	}

	var edges []Edge
	for _, r := range relations {
		for _, e := range r.Edges {
			src, ok := index.Ref(e.Source)
			if !ok {
				return nil, nil, fmt.Errorf("relation %s source %d: %w", r.Kind, e.Source, encoder.ErrMissingNodeMapping)
			}
			tgt, ok := index.Ref(e.Target)
			if !ok {
				return nil, nil, fmt.Errorf("relation %s target %d: %w", r.Kind, e.Target, encoder.ErrMissingNodeMapping)
			}
			edges = append(edges, Edge{SourceID: nodeID(src), TargetID: nodeID(tgt), Type: r.Kind})
		}
	}
	return nodes, edges, nil
}
