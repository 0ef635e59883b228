package encoder

import (
	"fmt"
	"math/rand"
)

// FeatureSource resolves a feature index to its vector. It is the one piece
// of state shared across batch calls and must not be mutated concurrently
// with an Encode call; that discipline is the caller's responsibility.
type FeatureSource interface {
	Width() int
	Vector(index int) ([]float32, error)
}

// EmbeddingTable is a dense, seeded FeatureSource: one row per feature
// index. Rows cover the vocabulary indices first and the offset grammar
// indices after them, so the table size is vocab size plus grammar size.
type EmbeddingTable struct {
	rows  [][]float32
	width int
}

// NewEmbeddingTable creates a table of rows×width values drawn from a
// seeded PRNG in [-1, 1). The same (rows, width, seed) always produces the
// same table.
func NewEmbeddingTable(rows, width int, seed int64) *EmbeddingTable {
	rng := rand.New(rand.NewSource(seed))
	table := make([][]float32, rows)
	for i := range table {
		row := make([]float32, width)
		for j := range row {
			row[j] = rng.Float32()*2 - 1
		}
		table[i] = row
	}
	return &EmbeddingTable{rows: table, width: width}
}

// Width returns the vector width of every row.
func (t *EmbeddingTable) Width() int {
	return t.width
}

// Vector returns the row for the given feature index. The row is shared;
// callers must not mutate it.
func (t *EmbeddingTable) Vector(index int) ([]float32, error) {
	if index < 0 || index >= len(t.rows) {
		return nil, fmt.Errorf("feature index %d out of range [0, %d)", index, len(t.rows))
	}
	return t.rows[index], nil
}
