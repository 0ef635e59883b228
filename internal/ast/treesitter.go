package ast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// TreeSitterParser lowers tree-sitter parse trees into the Tree shape the
// encoder consumes: every leaf token becomes a terminal node carrying its
// source text, every named or structural node above it becomes a
// non-terminal carrying its tree-sitter type. Node ids are assigned in
// depth-first pre-order with the root at 0, which also fixes the edge and
// terminal-chain order.
type TreeSitterParser struct {
	lang *sitter.Language
}

func init() {
	cParser := &TreeSitterParser{lang: c.GetLanguage()}
	RegisterParser(".c", cParser)
	RegisterParser(".h", cParser)

	cppParser := &TreeSitterParser{lang: cpp.GetLanguage()}
	RegisterParser(".cpp", cppParser)
	RegisterParser(".cc", cppParser)
	RegisterParser(".hpp", cppParser)
}

// NewTreeSitterParser creates a parser for the given tree-sitter language.
func NewTreeSitterParser(lang *sitter.Language) *TreeSitterParser {
	return &TreeSitterParser{lang: lang}
}

// ParseSource parses content and lowers the result into a Tree.
func (p *TreeSitterParser) ParseSource(filePath string, content []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(p.lang)

	parsed, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	defer parsed.Close()

	tree := NewTree()
	nextID := 0

	register := func(n *sitter.Node, id int) error {
		if n.ChildCount() == 0 {
			_, err := tree.AddTerminal(id, n.Content(content))
			return err
		}
		_, err := tree.AddNonTerminal(id, n.Type())
		return err
	}

	// Both endpoints of an edge must be registered before the edge itself,
	// so each child node is added first, then its incoming edge, then its
	// own subtree. Ids stay pre-order and every parent edge still precedes
	// the child's subtree edges.
	var lower func(n *sitter.Node, id int) error
	lower = func(n *sitter.Node, id int) error {
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			child := n.Child(i)
			childID := nextID
			nextID++
			if err := register(child, childID); err != nil {
				return err
			}
			if err := tree.AddEdge(id, childID); err != nil {
				return err
			}
			if err := lower(child, childID); err != nil {
				return err
			}
		}
		return nil
	}

	rootID := nextID
	nextID++
	if err := register(parsed.RootNode(), rootID); err != nil {
		return nil, fmt.Errorf("failed to lower %s: %w", filePath, err)
	}
	if err := lower(parsed.RootNode(), rootID); err != nil {
		return nil, fmt.Errorf("failed to lower %s: %w", filePath, err)
	}

	return tree, nil
}
