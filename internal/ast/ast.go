package ast

import "fmt"

// Node is a single syntax-tree node with an id unique within its tree.
// Terminal nodes carry the variable identifier they spell; non-terminal
// nodes carry their syntax kind.
type Node struct {
	ID       int
	Terminal bool
	Ident    string
	Kind     string
}

// Edge is a directed pair of local node ids within one tree.
type Edge struct {
	From int
	To   int
}

// Tree is an ordered, rooted syntax tree. The order in which edges and
// terminals are added is preserved and drives the deterministic index
// assignment downstream, so builders must add them in traversal order.
type Tree struct {
	nodes     map[int]*Node
	edges     []Edge
	terminals []int
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[int]*Node)}
}

// AddNonTerminal registers an internal node carrying a syntax kind.
func (t *Tree) AddNonTerminal(id int, kind string) (*Node, error) {
	return t.add(&Node{ID: id, Kind: kind})
}

// AddTerminal registers a leaf node carrying a variable identifier and
// appends it to the left-to-right terminal sequence.
func (t *Tree) AddTerminal(id int, ident string) (*Node, error) {
	n, err := t.add(&Node{ID: id, Terminal: true, Ident: ident})
	if err != nil {
		return nil, err
	}
	t.terminals = append(t.terminals, id)
	return n, nil
}

func (t *Tree) add(n *Node) (*Node, error) {
	if _, exists := t.nodes[n.ID]; exists {
		return nil, fmt.Errorf("duplicate node id %d", n.ID)
	}
	t.nodes[n.ID] = n
	return n, nil
}

// AddEdge records a parent→child edge. Both endpoints must already be
// registered nodes.
func (t *Tree) AddEdge(parent, child int) error {
	if _, ok := t.nodes[parent]; !ok {
		return fmt.Errorf("edge references unknown parent %d", parent)
	}
	if _, ok := t.nodes[child]; !ok {
		return fmt.Errorf("edge references unknown child %d", child)
	}
	t.edges = append(t.edges, Edge{From: parent, To: child})
	return nil
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	return len(t.nodes)
}

// Node looks up a node by its local id.
func (t *Tree) Node(id int) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// ParentChildEdges returns the parent→child edges in insertion order. The
// returned slice is shared; callers must not mutate it.
func (t *Tree) ParentChildEdges() []Edge {
	return t.edges
}

// AdjacentTerminalPairs returns one edge per pair of consecutive terminal
// nodes in left-to-right order.
func (t *Tree) AdjacentTerminalPairs() []Edge {
	if len(t.terminals) < 2 {
		return nil
	}
	pairs := make([]Edge, 0, len(t.terminals)-1)
	for i := 0; i+1 < len(t.terminals); i++ {
		pairs = append(pairs, Edge{From: t.terminals[i], To: t.terminals[i+1]})
	}
	return pairs
}

// Terminals returns the terminal node ids in left-to-right order. The
// returned slice is shared; callers must not mutate it.
func (t *Tree) Terminals() []int {
	return t.terminals
}
