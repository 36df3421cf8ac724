package cell

import "errors"

var (
	// ErrNotAChild is returned when a child operation names a node that is not
	// a child of the receiver.
	ErrNotAChild = errors.New("cell: node is not a child of this parent")

	// ErrInvalidComponents is returned when a $components value is not a
	// sequence of Genotypes.
	ErrInvalidComponents = errors.New("cell: $components expects a sequence of Genotypes")

	// ErrNoDocument is returned when a Reconciler has no host Document.
	ErrNoDocument = errors.New("cell: no host document")
)
