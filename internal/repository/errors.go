package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a compare-and-set style write loses to
	// a concurrent writer or targets an entity in the wrong state.
	ErrConflict = errors.New("entity state conflict")
)
