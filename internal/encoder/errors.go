package encoder

import "errors"

// Sentinel errors for the failure kinds a batch call can surface. Every one
// of them aborts the whole batch; callers that want to retry do so with a
// fresh batch.
var (
	// ErrEmptyBatch rejects batches with no trees, and batches in which no
	// node received a combined id (every tree degenerate).
	ErrEmptyBatch = errors.New("empty batch")

	// ErrMissingNodeMapping signals an internal-consistency violation: a
	// terminal-chain pair or an unpacking step referenced a node that never
	// appeared in any parent/child edge.
	ErrMissingNodeMapping = errors.New("missing node mapping")

	// ErrUnknownIdentifier signals a terminal whose identifier is absent
	// from the vocabulary.
	ErrUnknownIdentifier = errors.New("unknown identifier")

	// ErrUnknownSyntaxKind signals a non-terminal whose syntax kind is
	// absent from the grammar.
	ErrUnknownSyntaxKind = errors.New("unknown syntax kind")

	// ErrPropagation signals a propagation engine that violated its
	// contract (wrong vector count or width).
	ErrPropagation = errors.New("propagation contract violation")
)
