package vector

import (
	"errors"
	"fmt"
)

var (
	errNil      = errors.New("embedding cannot be nil")
	errNoID     = errors.New("embedding ID cannot be empty")
	errNoVector = errors.New("embedding vector cannot be empty")
)

// DimensionError reports a vector whose length does not match the index.
// It usually means the collection was built with another embedding model.
type DimensionError struct {
	Want, Got int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: expected %d, got %d", e.Want, e.Got)
}
