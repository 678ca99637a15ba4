// ABOUTME: Error taxonomy for the persistence layer
// ABOUTME: Sentinel errors for CRUD failures plus typed migration and codec errors

package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for storage operations. Callers match with errors.Is;
// wrapped variants carry the underlying SQLite error.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConnectionFailed is returned when the database cannot be opened
	// or the store has already been closed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrQueryFailed is returned when a read operation fails.
	ErrQueryFailed = errors.New("query failed")

	// ErrInsertFailed is returned when an insert fails or the entity is
	// not insertable (pre-set identifier, missing required fields).
	ErrInsertFailed = errors.New("insert failed")

	// ErrUpdateFailed is returned when an update fails, including updates
	// of entities that have never been persisted.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete statement fails. Deleting
	// a row that is already absent is not an error.
	ErrDeleteFailed = errors.New("delete failed")
)

// MigrationError reports a schema migration that failed to apply. The
// stored schema version remains at its last successfully recorded value.
type MigrationError struct {
	Version int
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration to version %d failed: %v", e.Version, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// EncodeError reports a field that could not be serialized for storage.
type EncodeError struct {
	Field string
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s: %v", e.Field, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports a stored value that could not be parsed back.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
