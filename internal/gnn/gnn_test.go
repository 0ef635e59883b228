package gnn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astenc/internal/encoder"
)

func star() ([][]float32, []encoder.Relation) {
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		{0, -1},
	}
	relations := []encoder.Relation{
		{
			Kind:      encoder.RelChild,
			Edges:     []encoder.Edge{{Source: 0, Target: 1}, {Source: 0, Target: 2}},
			NodeCount: 3,
		},
		{
			Kind:      encoder.RelParent,
			Edges:     []encoder.Edge{{Source: 1, Target: 0}, {Source: 2, Target: 0}},
			NodeCount: 3,
		},
	}
	return vectors, relations
}

func TestEngine_PreservesShape(t *testing.T) {
	vectors, relations := star()
	out, err := New().Propagate(vectors, relations)
	require.NoError(t, err)

	require.Len(t, out, len(vectors))
	for _, v := range out {
		assert.Len(t, v, 2)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	vectors, relations := star()
	engine := New(3, 3)

	a, err := engine.Propagate(vectors, relations)
	require.NoError(t, err)
	b, err := engine.Propagate(vectors, relations)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEngine_DoesNotMutateInput(t *testing.T) {
	vectors, relations := star()
	snapshot := make([][]float32, len(vectors))
	for i, v := range vectors {
		snapshot[i] = append([]float32(nil), v...)
	}

	_, err := New(2).Propagate(vectors, relations)
	require.NoError(t, err)
	assert.Equal(t, snapshot, vectors)
}

func TestEngine_IsolatedNodeKeepsState(t *testing.T) {
	vectors := [][]float32{{1, 2}, {3, 4}}
	relations := []encoder.Relation{
		{Kind: encoder.RelChild, Edges: []encoder.Edge{{Source: 0, Target: 0}}, NodeCount: 2},
		{Kind: encoder.RelParent, Edges: []encoder.Edge{{Source: 0, Target: 0}}, NodeCount: 2},
	}

	out, err := New(1).Propagate(vectors, relations)
	require.NoError(t, err)
	// Node 1 receives no message anywhere in the schedule.
	assert.Equal(t, []float32{3, 4}, out[1])
}

func TestEngine_MessagesFlow(t *testing.T) {
	vectors := [][]float32{{1, 1}, {0, 0}}
	relations := []encoder.Relation{
		{Kind: encoder.RelChild, Edges: []encoder.Edge{{Source: 0, Target: 1}}, NodeCount: 2},
	}

	out, err := New(1).Propagate(vectors, relations)
	require.NoError(t, err)
	// One step, gate 0.5: node 1 becomes half of node 0's state.
	assert.Equal(t, []float32{0.5, 0.5}, out[1])
}

func TestEngine_RejectsBadRelations(t *testing.T) {
	vectors := [][]float32{{1, 2}}

	t.Run("node count mismatch", func(t *testing.T) {
		_, err := New().Propagate(vectors, []encoder.Relation{{Kind: encoder.RelChild, NodeCount: 5}})
		assert.Error(t, err)
	})

	t.Run("edge out of range", func(t *testing.T) {
		_, err := New().Propagate(vectors, []encoder.Relation{
			{Kind: encoder.RelChild, Edges: []encoder.Edge{{Source: 0, Target: 3}}, NodeCount: 1},
		})
		assert.Error(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := New().Propagate(nil, nil)
		assert.Error(t, err)
	})

	t.Run("ragged input", func(t *testing.T) {
		_, err := New().Propagate([][]float32{{1, 2}, {3}}, nil)
		assert.Error(t, err)
	})
}
