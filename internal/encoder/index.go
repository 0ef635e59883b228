package encoder

// NodeRef addresses one node of one tree within a batch.
type NodeRef struct {
	Tree int
	Node int
}

// NodeIndex is the bijective mapping between NodeRefs and combined ids for
// one batch call. It is an explicit bidirectional table: an ordered-insertion
// map from NodeRef to combined id plus its exact inverse array, so the
// combined-id order never depends on map iteration order.
type NodeIndex struct {
	ids  map[NodeRef]int
	refs []NodeRef
}

// NewNodeIndex creates an empty index.
func NewNodeIndex() *NodeIndex {
	return &NodeIndex{ids: make(map[NodeRef]int)}
}

// Add returns the combined id for ref, assigning the next id if ref has not
// been seen before.
func (x *NodeIndex) Add(ref NodeRef) int {
	if id, ok := x.ids[ref]; ok {
		return id
	}
	id := len(x.refs)
	x.ids[ref] = id
	x.refs = append(x.refs, ref)
	return id
}

// ID resolves a NodeRef to its combined id.
func (x *NodeIndex) ID(ref NodeRef) (int, bool) {
	id, ok := x.ids[ref]
	return id, ok
}

// Ref resolves a combined id back to its NodeRef.
func (x *NodeIndex) Ref(id int) (NodeRef, bool) {
	if id < 0 || id >= len(x.refs) {
		return NodeRef{}, false
	}
	return x.refs[id], true
}

// Len returns the number of assigned combined ids.
func (x *NodeIndex) Len() int {
	return len(x.refs)
}

// BuildIndex assigns combined ids to every node that appears in a
// parent/child edge, in strict first-encounter order: trees in batch order,
// edges in per-tree order, the parent endpoint before the child. The counter
// is shared across the whole batch. Nodes that appear in no parent/child
// edge (single-node trees) are never assigned an id.
func BuildIndex(trees []Tree) *NodeIndex {
	index := NewNodeIndex()
	for treeID, tree := range trees {
		for _, e := range tree.ParentChildEdges() {
			index.Add(NodeRef{Tree: treeID, Node: e.From})
			index.Add(NodeRef{Tree: treeID, Node: e.To})
		}
	}
	return index
}
