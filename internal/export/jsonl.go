package export

import (
	"encoding/json"
	"io"
	"sync"
)

// Emitter receives the node and edge stream of a combined graph.
type Emitter interface {
	EmitNode(node Node) error
	EmitEdge(edge Edge) error
	Close() error
}

// JSONLEmitter writes nodes and edges as one flattened JSON object per
// line: node properties at the root, the label under "type". Safe for
// concurrent use.
type JSONLEmitter struct {
	w       io.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONLEmitter creates a JSONLEmitter writing to w.
func NewJSONLEmitter(w io.Writer) *JSONLEmitter {
	return &JSONLEmitter{w: w, encoder: json.NewEncoder(w)}
}

func (e *JSONLEmitter) EmitNode(node Node) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]interface{}, len(node.Properties)+2)
	for k, v := range node.Properties {
		out[k] = v
	}
	out["id"] = node.ID
	out["type"] = node.Label
	return e.encoder.Encode(out)
}

func (e *JSONLEmitter) EmitEdge(edge Edge) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := map[string]string{
		"source": edge.SourceID,
		"target": edge.TargetID,
		"type":   edge.Type,
	}
	return e.encoder.Encode(out)
}

// Close closes the underlying writer if it implements io.Closer.
func (e *JSONLEmitter) Close() error {
	if c, ok := e.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
