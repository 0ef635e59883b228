package encoder

import "fmt"

// Relation kinds. CHILD points parent→child, PARENT is its reverse;
// NEXT_TOKEN chains consecutive terminal nodes left to right, PREV_TOKEN is
// its reverse.
const (
	RelChild     = "CHILD"
	RelParent    = "PARENT"
	RelNextToken = "NEXT_TOKEN"
	RelPrevToken = "PREV_TOKEN"
)

// Edge is a directed pair of combined ids.
type Edge struct {
	Source int
	Target int
}

// Relation is a named directed edge list over combined ids, together with
// the number of nodes the ids range over so the propagation engine can size
// its internal structures.
type Relation struct {
	Kind      string
	Edges     []Edge
	NodeCount int
}

// BuildRelations emits the directed relations for one batch over the given
// index. CHILD and PARENT are always present. NEXT_TOKEN and PREV_TOKEN are
// appended only when at least one adjacent-terminal pair exists anywhere in
// the batch; the decision is batch-wide, never per tree.
//
// A terminal-chain pair referencing a node absent from the index means a
// terminal that appears in no parent/child edge, which is a malformed tree;
// it fails the whole batch with ErrMissingNodeMapping.
func BuildRelations(trees []Tree, index *NodeIndex) ([]Relation, error) {
	n := index.Len()

	var child, parent, next, prev []Edge

	for treeID, tree := range trees {
		for _, e := range tree.ParentChildEdges() {
			p, ok := index.ID(NodeRef{Tree: treeID, Node: e.From})
			if !ok {
				return nil, fmt.Errorf("tree %d node %d: %w", treeID, e.From, ErrMissingNodeMapping)
			}
			c, ok := index.ID(NodeRef{Tree: treeID, Node: e.To})
			if !ok {
				return nil, fmt.Errorf("tree %d node %d: %w", treeID, e.To, ErrMissingNodeMapping)
			}
			child = append(child, Edge{Source: p, Target: c})
			parent = append(parent, Edge{Source: c, Target: p})
		}

		for _, e := range tree.AdjacentTerminalPairs() {
			a, ok := index.ID(NodeRef{Tree: treeID, Node: e.From})
			if !ok {
				return nil, fmt.Errorf("tree %d terminal %d: %w", treeID, e.From, ErrMissingNodeMapping)
			}
			b, ok := index.ID(NodeRef{Tree: treeID, Node: e.To})
			if !ok {
				return nil, fmt.Errorf("tree %d terminal %d: %w", treeID, e.To, ErrMissingNodeMapping)
			}
			next = append(next, Edge{Source: a, Target: b})
			prev = append(prev, Edge{Source: b, Target: a})
		}
	}

	relations := []Relation{
		{Kind: RelChild, Edges: child, NodeCount: n},
		{Kind: RelParent, Edges: parent, NodeCount: n},
	}
	if len(next) > 0 {
		relations = append(relations,
			Relation{Kind: RelNextToken, Edges: next, NodeCount: n},
			Relation{Kind: RelPrevToken, Edges: prev, NodeCount: n},
		)
	}
	return relations, nil
}
