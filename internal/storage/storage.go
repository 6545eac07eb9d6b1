// Package storage defines the Storage interface, the contract that any
// document store backend must satisfy to work with this application.
//
// Handlers depend only on this interface. Concrete backends live in
// sub-packages:
//
//   - storage/mongodb: MongoDB collection (the production store)
//   - storage/sqlite: single-file SQLite table
//   - storage/memory: process-local map, used by tests and quick demos
//
// main.go picks one at startup based on configuration and passes it to the
// handlers explicitly.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/studentdb-api/internal/types"
)

var (
	// ErrNotFound is returned when an id does not resolve to a record.
	// Malformed ids (e.g. a non-hex string for the Mongo backend) are
	// reported the same way: they cannot resolve to anything.
	ErrNotFound = errors.New("student not found")

	// ErrUnavailable is returned by backend constructors when the store
	// cannot be reached.
	ErrUnavailable = errors.New("storage unavailable")
)

// Storage is the database contract.
// Every method takes the request context so a cancelled client request
// stops its store call as well.
type Storage interface {
	// CreateStudent persists a new record and returns it with the
	// generated ID and timestamps filled in.
	CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error)

	// GetStudents returns every record. Returns an empty slice (not nil)
	// if there are none.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// GetStudentByID fetches a single record, or ErrNotFound.
	GetStudentByID(ctx context.Context, id string) (types.Student, error)

	// UpdateStudentByID overwrites only the fields set in patch, bumps
	// UpdatedAt, and returns the post-update record, or ErrNotFound.
	UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error)

	// DeleteStudentByID removes a record and returns it as it was before
	// deletion, or ErrNotFound.
	DeleteStudentByID(ctx context.Context, id string) (types.Student, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close(ctx context.Context) error
}
