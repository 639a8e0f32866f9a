package statementq

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator creates record and batch identifiers.
type IDGenerator interface {
	// New returns a new identifier.
	New() (string, error)
}

// UUIDv7Generator produces time-ordered UUID v7 identifiers.
//
// Ordering by id therefore approximates ordering by creation time, which the stores rely
// on when listing records.
type UUIDv7Generator struct{}

// New creates a new UUID v7 identifier.
func (UUIDv7Generator) New() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("statementq: generate id: %w", err)
	}

	return id.String(), nil
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() (string, error)

// New implements IDGenerator.
func (fn IDGeneratorFunc) New() (string, error) {
	return fn()
}
