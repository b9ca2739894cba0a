package model

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist or is not
// visible to the caller.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a row changed between read and write.
var ErrConflict = errors.New("conflict")

// ValidationError lists every problem found in a request before any write.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Add records a problem.
func (e *ValidationError) Add(problem string) { e.Problems = append(e.Problems, problem) }

// Err returns e when problems were recorded, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Invalid builds a ValidationError with a single problem.
func Invalid(problem string) error {
	return &ValidationError{Problems: []string{problem}}
}
