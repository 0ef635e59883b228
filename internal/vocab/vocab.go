// Package vocab maintains the variable-identifier table that maps terminal
// tokens to dense integer indices for the shared feature table.
package vocab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"astenc/internal/ast"
)

// Vocab is an ordered identifier table. Indices are assigned in insertion
// order and never reused.
type Vocab struct {
	ids    map[string]int
	idents []string
}

// New creates an empty vocabulary.
func New() *Vocab {
	return &Vocab{ids: make(map[string]int)}
}

// Add inserts an identifier if absent and returns its index.
func (v *Vocab) Add(ident string) int {
	if id, ok := v.ids[ident]; ok {
		return id
	}
	id := len(v.idents)
	v.ids[ident] = id
	v.idents = append(v.idents, ident)
	return id
}

// IndexOf resolves an identifier to its index.
func (v *Vocab) IndexOf(ident string) (int, bool) {
	id, ok := v.ids[ident]
	return id, ok
}

// Size returns the number of identifiers in the table.
func (v *Vocab) Size() int {
	return len(v.idents)
}

// Idents returns the identifiers in index order. The returned slice is
// shared; callers must not mutate it.
func (v *Vocab) Idents() []string {
	return v.idents
}

// Collect adds every terminal identifier of the given trees, in tree order
// then left-to-right terminal order.
func (v *Vocab) Collect(trees []*ast.Tree) {
	for _, tree := range trees {
		for _, id := range tree.Terminals() {
			if n, ok := tree.Node(id); ok {
				v.Add(n.Ident)
			}
		}
	}
}

type vocabFile struct {
	Idents []string `yaml:"idents"`
}

// Load reads a vocabulary from a YAML file written by Save.
func Load(path string) (*Vocab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocab file: %w", err)
	}

	var f vocabFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse vocab file %s: %w", path, err)
	}

	v := New()
	for _, ident := range f.Idents {
		v.Add(ident)
	}
	return v, nil
}

// Save writes the vocabulary to a YAML file, preserving index order.
func (v *Vocab) Save(path string) error {
	data, err := yaml.Marshal(vocabFile{Idents: v.idents})
	if err != nil {
		return fmt.Errorf("failed to marshal vocab: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write vocab file: %w", err)
	}
	return nil
}
