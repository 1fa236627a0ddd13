// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using database/sql and mattn/go-sqlite3.
//
// The UNIQUE index on the email column is the authoritative guard for
// the uniqueness invariant: emails are normalized to lower case before
// every write, so two spellings of the same address always collide at
// the index. The SELECT pre-checks in Create/Update exist only to
// produce friendlier error messages on the common path — the race
// between check and write is resolved by the constraint, not by them.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/priyanshgupta/tuition-admin-api/internal/config"
	"github.com/priyanshgupta/tuition-admin-api/internal/storage"
	"github.com/priyanshgupta/tuition-admin-api/internal/types"
)

// timeLayout is how timestamps are stored: RFC 3339 with fixed-width
// nanoseconds, always UTC, so lexicographic order matches
// chronological order. time.RFC3339Nano would not do here — it trims
// trailing zeros, and ".1Z" sorts after ".15Z" as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite is the concrete implementation of storage.Storage.
// The embedded *sql.DB is a connection pool and is safe for
// concurrent use.
type SQLite struct {
	db      *sql.DB
	timeout time.Duration
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the database at cfg.StoragePath and creates the students
// table if it does not exist yet. Every query issued through the
// returned SQLite carries cfg.QueryTimeout as its deadline.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// id is an opaque UUID assigned on insert; email carries the
	// unique index that enforces the invariant.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			email             TEXT NOT NULL UNIQUE,
			phone             TEXT NOT NULL,
			course            TEXT NOT NULL,
			fees              REAL NOT NULL,
			date_of_admission TEXT NOT NULL,
			created_at        TEXT NOT NULL,
			updated_at        TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{db: db, timeout: cfg.QueryTimeout}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// opCtx bounds a storage operation so a wedged database surfaces as a
// timely error instead of a hung request.
func (s *SQLite) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// CreateStudent inserts a validated record, assigning id and
// timestamps. The email pre-check gives the usual duplicate a clean
// error before the insert; the unique index catches the rest.
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	email := strings.ToLower(student.Email)

	var existing string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM students WHERE email = ? LIMIT 1", email,
	).Scan(&existing)
	switch {
	case err == nil:
		return types.Student{}, storage.ErrEmailTaken
	case !errors.Is(err, sql.ErrNoRows):
		return types.Student{}, fmt.Errorf("CreateStudent: email check: %w", err)
	}

	now := time.Now().UTC()
	student.ID = uuid.NewString()
	student.Email = email
	student.CreatedAt = now
	student.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO students
			(id, name, email, phone, course, fees, date_of_admission, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		student.ID,
		student.Name,
		student.Email,
		student.Phone,
		student.Course,
		student.Fees,
		student.DateOfAdmission.UTC().Format(timeLayout),
		now.Format(timeLayout),
		now.Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent insert won the race; the index is the
			// authoritative answer.
			return types.Student{}, storage.ErrEmailTaken
		}
		return types.Student{}, fmt.Errorf("CreateStudent: insert: %w", err)
	}

	return student, nil
}

// GetStudentByID fetches a single record by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, course, fees, date_of_admission, created_at, updated_at
		FROM students WHERE id = ? LIMIT 1`, id)

	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrStudentNotFound
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}
	return student, nil
}

// GetStudents returns every record, newest-created first. The rowid
// tie-break keeps the order deterministic for records created within
// the same nanosecond.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, course, fees, date_of_admission, created_at, updated_at
		FROM students ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty table encodes as [] in JSON, not null.
	students := make([]types.Student, 0)

	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudentByID replaces all business fields of an existing
// record. CreatedAt is never written; UpdatedAt is refreshed.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id string, student types.Student) (types.Student, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	email := strings.ToLower(student.Email)

	// Fast-path check: does the new email belong to someone else?
	var existing string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM students WHERE email = ? AND id != ? LIMIT 1", email, id,
	).Scan(&existing)
	switch {
	case err == nil:
		return types.Student{}, storage.ErrEmailTaken
	case !errors.Is(err, sql.ErrNoRows):
		return types.Student{}, fmt.Errorf("UpdateStudentByID: email check: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE students
		SET name = ?, email = ?, phone = ?, course = ?, fees = ?,
		    date_of_admission = ?, updated_at = ?
		WHERE id = ?`,
		student.Name,
		email,
		student.Phone,
		student.Course,
		student.Fees,
		student.DateOfAdmission.UTC().Format(timeLayout),
		time.Now().UTC().Format(timeLayout),
		id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Student{}, storage.ErrEmailTaken
		}
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Student{}, storage.ErrStudentNotFound
	}

	// Re-fetch so the caller sees exactly what is stored.
	return s.GetStudentByID(ctx, id)
}

// DeleteStudentByID permanently removes a record and reports the id
// and name of what was removed.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) (types.DeletedStudent, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM students WHERE id = ? LIMIT 1", id,
	).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.DeletedStudent{}, storage.ErrStudentNotFound
		}
		return types.DeletedStudent{}, fmt.Errorf("DeleteStudentByID: lookup: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id); err != nil {
		return types.DeletedStudent{}, fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	return types.DeletedStudent{ID: id, Name: name}, nil
}

// isUniqueViolation reports whether the driver rejected a write
// because of the UNIQUE email index (or the primary key).
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// scanStudent reads one row's columns in SELECT order. It accepts
// both *sql.Row and *sql.Rows.
func scanStudent(row interface{ Scan(dest ...any) error }) (types.Student, error) {
	var (
		s                          types.Student
		admitted, created, updated string
	)
	if err := row.Scan(
		&s.ID, &s.Name, &s.Email, &s.Phone, &s.Course, &s.Fees,
		&admitted, &created, &updated,
	); err != nil {
		return types.Student{}, err
	}

	var err error
	if s.DateOfAdmission, err = time.Parse(timeLayout, admitted); err != nil {
		return types.Student{}, fmt.Errorf("parse date_of_admission: %w", err)
	}
	if s.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return types.Student{}, fmt.Errorf("parse created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return types.Student{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return s, nil
}
