package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when no row matches an id or slug.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownField is returned when a change or filter names a field the
	// record kind does not have.
	ErrUnknownField = errors.New("unknown field")

	// ErrReadOnlyField is returned when a change targets a field that is
	// assigned at creation (id, createdAt, derived fingerprints).
	ErrReadOnlyField = errors.New("read-only field")

	// ErrInvalidValue is returned when a change or filter holds a value that
	// has no column representation, such as a nested object.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNoChanges is returned for an update with an empty change set.
	ErrNoChanges = errors.New("no changes")

	// ErrConflict is returned when a write hits a unique constraint.
	ErrConflict = errors.New("conflict")

	// ErrInvalidReference is returned when a write points at a missing row.
	ErrInvalidReference = errors.New("invalid reference")
)

// classify maps SQLite constraint failures onto the package sentinels.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return err
}
