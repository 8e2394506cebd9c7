package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAlgorithm indicates an algorithm name the service does not serve.
	ErrUnknownAlgorithm = errors.New("solver: unknown algorithm")

	// ErrTransport indicates the request never produced a response.
	ErrTransport = errors.New("solver: transport failure")

	// ErrStatus indicates a non-success HTTP status.
	ErrStatus = errors.New("solver: unexpected response status")

	// ErrDecode indicates a response body that is not a valid search result.
	ErrDecode = errors.New("solver: malformed response")
)

// SolveError is the single failure surfaced for a Solve call.
type SolveError struct {
	Algorithm  Algorithm
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *SolveError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("solve %s via %s: status %d: %v", e.Algorithm, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("solve %s via %s: %v", e.Algorithm, e.Endpoint, e.Err)
}

func (e *SolveError) Unwrap() error {
	return e.Err
}
