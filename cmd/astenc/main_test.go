package main

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astenc/internal/vocab"
)

func writeSource(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "add.c"),
		[]byte(`int add(int a, int b) { return a + b; }`), 0644))
	return dir
}

func setTablePaths(t *testing.T) (string, string) {
	t.Helper()
	tmp := t.TempDir()
	vocabPath := filepath.Join(tmp, "vocab.yaml")
	grammarPath := filepath.Join(tmp, "grammar.yaml")
	t.Setenv("ASTENC_VOCAB", vocabPath)
	t.Setenv("ASTENC_GRAMMAR", grammarPath)
	return vocabPath, grammarPath
}

func TestHandleBuildVocabThenEncode(t *testing.T) {
	dir := writeSource(t)
	vocabPath, _ := setTablePaths(t)
	t.Setenv("ASTENC_ENCODING_SIZE", "8")
	t.Setenv("ASTENC_TIMESTEPS", "1")

	require.NoError(t, handleBuildVocab([]string{"-dir", dir}))

	v, err := vocab.Load(vocabPath)
	require.NoError(t, err)
	assert.Greater(t, v.Size(), 0)

	outPath := filepath.Join(t.TempDir(), "rows.jsonl")
	require.NoError(t, handleEncode([]string{"-dir", dir, "-out", outPath}))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lines := 0
	for scanner.Scan() {
		lines++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 1, lines)
}

func TestHandleEncode_MissingTables(t *testing.T) {
	dir := writeSource(t)
	setTablePaths(t) // paths set but never written

	assert.Error(t, handleEncode([]string{"-dir", dir}))
}

func TestHandleExportGraph_JSONL(t *testing.T) {
	dir := writeSource(t)

	outPath := filepath.Join(t.TempDir(), "graph.jsonl")
	require.NoError(t, handleExportGraph([]string{"-dir", dir, "-out", outPath}))

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportToNeo4j_RequiresURI(t *testing.T) {
	t.Setenv("NEO4J_URI", "")
	assert.Error(t, exportToNeo4j(nil, nil, false))
}

func TestIdentityPropagator(t *testing.T) {
	in := [][]float32{{1, 2}, {3, 4}}
	out, err := identityPropagator{}.Propagate(in, nil)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
