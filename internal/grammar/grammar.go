// Package grammar maintains the syntax-kind table for non-terminal nodes.
// Its indices are offset by the vocabulary size at lookup time so that
// identifier and syntax-kind indices occupy disjoint ranges of one shared
// feature table.
package grammar

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"astenc/internal/ast"
)

// Grammar is an ordered syntax-kind table.
type Grammar struct {
	ids   map[string]int
	kinds []string
}

// New creates an empty grammar.
func New() *Grammar {
	return &Grammar{ids: make(map[string]int)}
}

// Add inserts a syntax kind if absent and returns its index.
func (g *Grammar) Add(kind string) int {
	if id, ok := g.ids[kind]; ok {
		return id
	}
	id := len(g.kinds)
	g.ids[kind] = id
	g.kinds = append(g.kinds, kind)
	return id
}

// IndexOf resolves a syntax kind to its index.
func (g *Grammar) IndexOf(kind string) (int, bool) {
	id, ok := g.ids[kind]
	return id, ok
}

// Size returns the number of syntax kinds in the table.
func (g *Grammar) Size() int {
	return len(g.kinds)
}

// Kinds returns the syntax kinds in index order. The returned slice is
// shared; callers must not mutate it.
func (g *Grammar) Kinds() []string {
	return g.kinds
}

// Collect adds the syntax kind of every non-terminal node reachable through
// the parent/child edges of the given trees, in edge order.
func (g *Grammar) Collect(trees []*ast.Tree) {
	for _, tree := range trees {
		for _, e := range tree.ParentChildEdges() {
			for _, id := range []int{e.From, e.To} {
				if n, ok := tree.Node(id); ok && !n.Terminal {
					g.Add(n.Kind)
				}
			}
		}
	}
}

type grammarFile struct {
	Kinds []string `yaml:"kinds"`
}

// Load reads a grammar from a YAML file written by Save.
func Load(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file: %w", err)
	}

	var f grammarFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse grammar file %s: %w", path, err)
	}

	g := New()
	for _, kind := range f.Kinds {
		g.Add(kind)
	}
	return g, nil
}

// Save writes the grammar to a YAML file, preserving index order.
func (g *Grammar) Save(path string) error {
	data, err := yaml.Marshal(grammarFile{Kinds: g.kinds})
	if err != nil {
		return fmt.Errorf("failed to marshal grammar: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write grammar file: %w", err)
	}
	return nil
}
