package encoder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astenc/internal/ast"
	"astenc/internal/encoder"
)

// chainTree builds root→t1, root→t2, root→t3 with t1..t3 terminal, so the
// terminal chain is t1→t2→t3.
func chainTree(t *testing.T) *ast.Tree {
	t.Helper()
	tree := ast.NewTree()
	_, err := tree.AddNonTerminal(0, "root")
	require.NoError(t, err)
	for i, ident := range []string{"t1", "t2", "t3"} {
		_, err := tree.AddTerminal(i+1, ident)
		require.NoError(t, err)
		require.NoError(t, tree.AddEdge(0, i+1))
	}
	return tree
}

func relationByKind(t *testing.T, relations []encoder.Relation, kind string) encoder.Relation {
	t.Helper()
	for _, r := range relations {
		if r.Kind == kind {
			return r
		}
	}
	t.Fatalf("no relation of kind %s", kind)
	return encoder.Relation{}
}

func TestBuildRelations_TreeOnly(t *testing.T) {
	trees := []encoder.Tree{fork(t, 2)}
	index := encoder.BuildIndex(trees)

	relations, err := encoder.BuildRelations(trees, index)
	require.NoError(t, err)

	// No adjacent-terminal pair anywhere: exactly the two tree relations.
	require.Len(t, relations, 2)
	child := relationByKind(t, relations, encoder.RelChild)
	parent := relationByKind(t, relations, encoder.RelParent)

	assert.Equal(t, []encoder.Edge{{Source: 0, Target: 1}, {Source: 0, Target: 2}}, child.Edges)
	assert.Equal(t, []encoder.Edge{{Source: 1, Target: 0}, {Source: 2, Target: 0}}, parent.Edges)
	assert.Equal(t, 3, child.NodeCount)
	assert.Equal(t, 3, parent.NodeCount)
}

func TestBuildRelations_ChainIncludedBatchWide(t *testing.T) {
	// One tree with a chain is enough to include the chain relations for
	// the whole batch, even though the fork tree has none.
	trees := []encoder.Tree{fork(t, 2), chainTree(t)}
	index := encoder.BuildIndex(trees)

	relations, err := encoder.BuildRelations(trees, index)
	require.NoError(t, err)
	require.Len(t, relations, 4)

	next := relationByKind(t, relations, encoder.RelNextToken)
	// chainTree is the second tree: its root is combined id 3, terminals
	// 4, 5, 6 in edge order.
	assert.Equal(t, []encoder.Edge{{Source: 4, Target: 5}, {Source: 5, Target: 6}}, next.Edges)
}

func TestBuildRelations_ReversePairSymmetry(t *testing.T) {
	trees := []encoder.Tree{chainTree(t), fork(t, 3)}
	index := encoder.BuildIndex(trees)

	relations, err := encoder.BuildRelations(trees, index)
	require.NoError(t, err)
	require.Len(t, relations, 4)

	pairs := [][2]string{
		{encoder.RelChild, encoder.RelParent},
		{encoder.RelNextToken, encoder.RelPrevToken},
	}
	for _, p := range pairs {
		fwd := relationByKind(t, relations, p[0])
		rev := relationByKind(t, relations, p[1])
		require.Equal(t, len(fwd.Edges), len(rev.Edges))
		assert.Equal(t, fwd.NodeCount, rev.NodeCount)
		// Same endpoint set, reversed, edge for edge.
		for i, e := range fwd.Edges {
			assert.Equal(t, encoder.Edge{Source: e.Target, Target: e.Source}, rev.Edges[i])
		}
	}
}

func TestBuildRelations_ChainReferencesUnmappedNode(t *testing.T) {
	// Terminals 2 and 3 form a chain pair but appear in no parent/child
	// edge, so they never received a combined id.
	tree := ast.NewTree()
	_, err := tree.AddNonTerminal(0, "root")
	require.NoError(t, err)
	_, err = tree.AddNonTerminal(1, "body")
	require.NoError(t, err)
	require.NoError(t, tree.AddEdge(0, 1))
	_, err = tree.AddTerminal(2, "a")
	require.NoError(t, err)
	_, err = tree.AddTerminal(3, "b")
	require.NoError(t, err)

	trees := []encoder.Tree{tree}
	index := encoder.BuildIndex(trees)

	_, err = encoder.BuildRelations(trees, index)
	require.Error(t, err)
	assert.ErrorIs(t, err, encoder.ErrMissingNodeMapping)
}
