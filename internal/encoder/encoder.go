// Package encoder flattens a batch of syntax trees into one combined
// multi-relational graph, runs a propagation engine over it, and unpacks the
// per-node result into padded, masked per-tree encodings.
package encoder

import (
	"fmt"
	"sort"

	"astenc/internal/ast"
)

// Tree is the view of a syntax tree the encoder consumes. ast.Tree
// satisfies it.
type Tree interface {
	Size() int
	Node(id int) (*ast.Node, bool)
	ParentChildEdges() []ast.Edge
	AdjacentTerminalPairs() []ast.Edge
}

// Vocab resolves variable identifiers of terminal nodes to feature indices.
type Vocab interface {
	IndexOf(ident string) (int, bool)
	Size() int
}

// Grammar resolves syntax kinds of non-terminal nodes to feature indices.
// The encoder offsets these by the vocabulary size, keeping the two index
// ranges disjoint within one shared feature table.
type Grammar interface {
	IndexOf(kind string) (int, bool)
}

// Propagator is the black-box message-passing engine. It receives one
// vector per combined id plus the relation set and must return vectors of
// the same count and width. It is invoked exactly once per batch and owns
// the input vectors; it may mutate them in place.
type Propagator interface {
	Propagate(vectors [][]float32, relations []Relation) ([][]float32, error)
}

// BatchEncoding is the unpacked result of one batch call. Encodings is
// shaped (batch, maxNodes, width) and Mask (batch, maxNodes); mask entry 1
// marks a real node, 0 marks padding, and every padded position holds the
// zero vector.
type BatchEncoding struct {
	Encodings [][][]float32
	Mask      [][]float32
}

// BatchEncoder wires the lookup tables, the feature table, and the
// propagation engine into the batch-encode operation. All fields are
// read-only during Encode; the combined graph built inside a call never
// outlives it.
type BatchEncoder struct {
	Vocab    Vocab
	Grammar  Grammar
	Features FeatureSource
	Engine   Propagator
}

// Encode flattens the batch, propagates once, and unpacks. Any failure
// aborts the whole batch; there is no partial per-tree result.
func (e *BatchEncoder) Encode(trees []Tree) (*BatchEncoding, error) {
	if len(trees) == 0 {
		return nil, ErrEmptyBatch
	}

	index := BuildIndex(trees)
	if index.Len() == 0 {
		return nil, fmt.Errorf("no node appears in any parent/child edge: %w", ErrEmptyBatch)
	}

	relations, err := BuildRelations(trees, index)
	if err != nil {
		return nil, err
	}

	initial, err := e.initialVectors(trees, index)
	if err != nil {
		return nil, err
	}

	propagated, err := e.Engine.Propagate(initial, relations)
	if err != nil {
		return nil, fmt.Errorf("propagation failed: %w", err)
	}
	if err := e.checkContract(propagated, index.Len()); err != nil {
		return nil, err
	}

	return unpack(trees, index, propagated, e.Features.Width()), nil
}

// initialVectors resolves each combined id, in order, to its feature-table
// row: vocabulary index for terminals, offset grammar index otherwise.
func (e *BatchEncoder) initialVectors(trees []Tree, index *NodeIndex) ([][]float32, error) {
	vectors := make([][]float32, index.Len())
	for id := 0; id < index.Len(); id++ {
		ref, ok := index.Ref(id)
		if !ok {
			return nil, fmt.Errorf("combined id %d: %w", id, ErrMissingNodeMapping)
		}
		node, ok := trees[ref.Tree].Node(ref.Node)
		if !ok {
			return nil, fmt.Errorf("tree %d node %d: %w", ref.Tree, ref.Node, ErrMissingNodeMapping)
		}

		var featIdx int
		if node.Terminal {
			idx, ok := e.Vocab.IndexOf(node.Ident)
			if !ok {
				return nil, fmt.Errorf("tree %d node %d identifier %q: %w", ref.Tree, ref.Node, node.Ident, ErrUnknownIdentifier)
			}
			featIdx = idx
		} else {
			idx, ok := e.Grammar.IndexOf(node.Kind)
			if !ok {
				return nil, fmt.Errorf("tree %d node %d kind %q: %w", ref.Tree, ref.Node, node.Kind, ErrUnknownSyntaxKind)
			}
			featIdx = idx + e.Vocab.Size()
		}

		vec, err := e.Features.Vector(featIdx)
		if err != nil {
			return nil, fmt.Errorf("tree %d node %d: %w", ref.Tree, ref.Node, err)
		}
		// The engine owns its input; feature rows are shared across batch
		// calls and must not be reachable through it.
		vectors[id] = append([]float32(nil), vec...)
	}
	return vectors, nil
}

func (e *BatchEncoder) checkContract(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("engine returned %d vectors, want %d: %w", len(vectors), want, ErrPropagation)
	}
	width := e.Features.Width()
	for i, v := range vectors {
		if len(v) != width {
			return fmt.Errorf("engine vector %d has width %d, want %d: %w", i, len(v), width, ErrPropagation)
		}
	}
	return nil
}

// unpack gathers each tree's combined ids sorted by local node id into row
// tree-index of a zero-padded tensor, with a parallel validity mask. Trees
// without any mapped node (single-node trees) keep an all-zero, all-masked
// row. Padding positions are freshly zeroed rather than whatever the gather
// source held.
func unpack(trees []Tree, index *NodeIndex, vectors [][]float32, width int) *BatchEncoding {
	type mapped struct {
		local    int
		combined int
	}
	perTree := make([][]mapped, len(trees))
	for id := 0; id < index.Len(); id++ {
		ref, _ := index.Ref(id)
		perTree[ref.Tree] = append(perTree[ref.Tree], mapped{local: ref.Node, combined: id})
	}

	maxNodes := 0
	for _, nodes := range perTree {
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].local < nodes[j].local })
		if len(nodes) > maxNodes {
			maxNodes = len(nodes)
		}
	}

	enc := &BatchEncoding{
		Encodings: make([][][]float32, len(trees)),
		Mask:      make([][]float32, len(trees)),
	}
	for treeID, nodes := range perTree {
		rows := make([][]float32, maxNodes)
		mask := make([]float32, maxNodes)
		for pos := range rows {
			rows[pos] = make([]float32, width)
			if pos < len(nodes) {
				copy(rows[pos], vectors[nodes[pos].combined])
				mask[pos] = 1
			}
		}
		enc.Encodings[treeID] = rows
		enc.Mask[treeID] = mask
	}
	return enc
}
