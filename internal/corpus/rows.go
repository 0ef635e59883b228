package corpus

import (
	"encoding/json"
	"io"
	"sync"
)

// Row is the per-tree encoding record: only the real (unmasked) positions
// are kept, in local-node-id order.
type Row struct {
	Path    string      `json:"path"`
	Nodes   int         `json:"nodes"`
	Width   int         `json:"width"`
	Vectors [][]float32 `json:"vectors"`
}

// RowEmitter receives encoded rows.
type RowEmitter interface {
	EmitRow(row Row) error
	Close() error
}

// JSONLRowEmitter writes one JSON row per line. Safe for concurrent use.
type JSONLRowEmitter struct {
	w       io.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONLRowEmitter creates a row emitter writing to w.
func NewJSONLRowEmitter(w io.Writer) *JSONLRowEmitter {
	return &JSONLRowEmitter{w: w, encoder: json.NewEncoder(w)}
}

func (e *JSONLRowEmitter) EmitRow(row Row) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encoder.Encode(row)
}

// Close closes the underlying writer if it implements io.Closer.
func (e *JSONLRowEmitter) Close() error {
	if c, ok := e.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
