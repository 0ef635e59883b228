// Package gnn provides the default propagation engine: deterministic gated
// message passing over the relation set. The encoder treats any Propagator
// as a black box; this one exists so the pipeline runs without an external
// learned model attached.
package gnn

import (
	"fmt"

	"astenc/internal/encoder"
)

// gate blends the previous node state with the aggregated neighbor message
// at every step.
const gate = 0.5

// Engine refines node vectors by averaging incoming messages along every
// relation. Timesteps holds the number of refinement steps per pass over the
// whole relation set, mirroring the layered step schedule of gated graph
// networks.
type Engine struct {
	Timesteps []int
}

// New creates an engine with the given step schedule. With no arguments it
// defaults to two passes of five steps.
func New(timesteps ...int) *Engine {
	if len(timesteps) == 0 {
		timesteps = []int{5, 5}
	}
	return &Engine{Timesteps: timesteps}
}

// Propagate runs the step schedule and returns one vector per input vector,
// same order and width. The input is never mutated.
func (e *Engine) Propagate(vectors [][]float32, relations []encoder.Relation) ([][]float32, error) {
	n := len(vectors)
	if n == 0 {
		return nil, fmt.Errorf("no vectors to propagate")
	}
	width := len(vectors[0])

	state := make([][]float32, n)
	for i, v := range vectors {
		if len(v) != width {
			return nil, fmt.Errorf("vector %d has width %d, want %d", i, len(v), width)
		}
		state[i] = append([]float32(nil), v...)
	}

	for _, r := range relations {
		if r.NodeCount != n {
			return nil, fmt.Errorf("relation %s sized for %d nodes, have %d", r.Kind, r.NodeCount, n)
		}
		for _, edge := range r.Edges {
			if edge.Source < 0 || edge.Source >= n || edge.Target < 0 || edge.Target >= n {
				return nil, fmt.Errorf("relation %s edge (%d, %d) out of range [0, %d)", r.Kind, edge.Source, edge.Target, n)
			}
		}
	}

	for _, steps := range e.Timesteps {
		for s := 0; s < steps; s++ {
			state = e.step(state, relations, width)
		}
	}
	return state, nil
}

// step aggregates each node's incoming messages across all relations and
// gates them into the node state. Nodes with no incoming edge keep their
// state unchanged.
func (e *Engine) step(state [][]float32, relations []encoder.Relation, width int) [][]float32 {
	n := len(state)
	sum := make([][]float32, n)
	degree := make([]float32, n)
	for i := range sum {
		sum[i] = make([]float32, width)
	}

	for _, r := range relations {
		for _, edge := range r.Edges {
			src, tgt := state[edge.Source], sum[edge.Target]
			for j := 0; j < width; j++ {
				tgt[j] += src[j]
			}
			degree[edge.Target]++
		}
	}

	next := make([][]float32, n)
	for i := range next {
		row := make([]float32, width)
		if degree[i] == 0 {
			copy(row, state[i])
		} else {
			for j := 0; j < width; j++ {
				row[j] = (1-gate)*state[i][j] + gate*sum[i][j]/degree[i]
			}
		}
		next[i] = row
	}
	return next
}
