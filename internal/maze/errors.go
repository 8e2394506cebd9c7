package maze

import (
	"errors"
	"fmt"
)

// Domain errors for grid construction.
var (
	// ErrInvalidSize indicates a grid with fewer than two cells.
	ErrInvalidSize = errors.New("maze: grid needs at least two cells")

	// ErrInvalidWidth indicates a width that does not tile the grid.
	ErrInvalidWidth = errors.New("maze: width must be positive and divide the grid size")

	// ErrIndexOutOfRange indicates a cell index outside [0, size).
	ErrIndexOutOfRange = errors.New("maze: cell index out of range")

	// ErrStartIsEnd indicates coinciding start and end cells.
	ErrStartIsEnd = errors.New("maze: start and end must differ")

	// ErrInvalidProbability indicates a wall probability outside [0, 1).
	ErrInvalidProbability = errors.New("maze: wall probability must be in [0, 1)")

	// ErrWallOnEndpoint indicates a stored wall set that covers start or end.
	ErrWallOnEndpoint = errors.New("maze: wall placed on start or end")
)

// GenerationError wraps a construction error with the offending field.
type GenerationError struct {
	Field   string
	Value   any
	Wrapped error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s (%s=%v)", e.Wrapped.Error(), e.Field, e.Value)
}

func (e *GenerationError) Unwrap() error {
	return e.Wrapped
}

func invalid(field string, value any, err error) error {
	return &GenerationError{Field: field, Value: value, Wrapped: err}
}
