// Package storage defines the Storage interface — the contract any
// database backend must satisfy to persist student records.
//
// Handlers depend only on this interface, never on a concrete
// database. Swapping backends means implementing these methods and
// changing one line in main; tests pass a stub instead of a real
// database.
package storage

import (
	"context"
	"errors"

	"github.com/priyanshgupta/tuition-admin-api/internal/types"
)

// Sentinel errors every backend must return for the two business
// failures the handlers translate into client-facing responses.
// Anything else is treated as an internal storage failure.
var (
	// ErrStudentNotFound means no record exists for the given id.
	ErrStudentNotFound = errors.New("student not found")

	// ErrEmailTaken means the write would violate the case-insensitive
	// email uniqueness invariant.
	ErrEmailTaken = errors.New("email already registered")
)

// Storage is the persistence contract for student records.
//
// The email uniqueness invariant is owned here: implementations must
// reject a conflicting write atomically (a structural unique
// constraint, not just a read-then-check), so concurrent creates with
// the same email cannot both succeed.
type Storage interface {
	// CreateStudent persists a validated record, assigning ID,
	// CreatedAt and UpdatedAt. Returns ErrEmailTaken if the email is
	// already registered to any student.
	CreateStudent(ctx context.Context, student types.Student) (types.Student, error)

	// GetStudentByID fetches a single record by its id.
	GetStudentByID(ctx context.Context, id string) (types.Student, error)

	// GetStudents returns all records, newest-created first.
	// Returns an empty slice (not nil) when there are none.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID replaces every business field of an existing
	// record and refreshes UpdatedAt. ID and CreatedAt are untouched.
	// Returns ErrEmailTaken if the new email belongs to another
	// student.
	UpdateStudentByID(ctx context.Context, id string, student types.Student) (types.Student, error)

	// DeleteStudentByID permanently removes a record and returns the
	// id and name of what was removed.
	DeleteStudentByID(ctx context.Context, id string) (types.DeletedStudent, error)
}
