package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshgupta/tuition-admin-api/internal/config"
	"github.com/priyanshgupta/tuition-admin-api/internal/storage"
	"github.com/priyanshgupta/tuition-admin-api/internal/types"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()

	cfg := &config.Config{
		Env:          "dev",
		StoragePath:  filepath.Join(t.TempDir(), "students.db"),
		QueryTimeout: 5 * time.Second,
	}
	store, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleStudent(email string) types.Student {
	return types.Student{
		Name:            "Ada Lovelace",
		Email:           email,
		Phone:           "9876543210",
		Course:          "Mathematics",
		Fees:            5000,
		DateOfAdmission: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateAndGetRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateStudent(ctx, sampleStudent("ada@x.com"))
	require.NoError(t, err)

	require.NoError(t, uuid.Validate(created.ID))
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := store.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "ada@x.com", got.Email)
	assert.Equal(t, "9876543210", got.Phone)
	assert.Equal(t, "Mathematics", got.Course)
	assert.Equal(t, 5000.0, got.Fees)
	assert.True(t, got.DateOfAdmission.Equal(created.DateOfAdmission))
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
}

func TestCreateDuplicateEmailCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateStudent(ctx, sampleStudent("A@x.com"))
	require.NoError(t, err)
	// emails are normalized on the way in
	assert.Equal(t, "a@x.com", created.Email)

	_, err = store.CreateStudent(ctx, sampleStudent("a@x.com"))
	assert.ErrorIs(t, err, storage.ErrEmailTaken)

	_, err = store.CreateStudent(ctx, sampleStudent("A@X.COM"))
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
}

func TestGetStudentByIDNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetStudentByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)
}

func TestGetStudentsEmpty(t *testing.T) {
	store := newTestStore(t)

	students, err := store.GetStudents(context.Background())
	require.NoError(t, err)
	require.NotNil(t, students)
	assert.Len(t, students, 0)
}

func TestGetStudentsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, email := range []string{"first@x.com", "second@x.com", "third@x.com"} {
		created, err := store.CreateStudent(ctx, sampleStudent(email))
		require.NoError(t, err)
		ids = append(ids, created.ID)
		time.Sleep(5 * time.Millisecond)
	}

	students, err := store.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)

	assert.Equal(t, ids[2], students[0].ID)
	assert.Equal(t, ids[1], students[1].ID)
	assert.Equal(t, ids[0], students[2].ID)
}

// rawInsert writes a row directly through the db handle, bypassing
// CreateStudent and its email pre-check.
func rawInsert(t *testing.T, store *SQLite, id, email string, createdAt time.Time) error {
	t.Helper()

	_, err := store.db.Exec(`
		INSERT INTO students
			(id, name, email, phone, course, fees, date_of_admission, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, "Ada Lovelace", email, "9876543210", "Mathematics", 5000.0,
		createdAt.Format(timeLayout),
		createdAt.Format(timeLayout),
		createdAt.Format(timeLayout),
	)
	return err
}

// Stored timestamps must sort as text the way they sort as time.
// A layout that trims trailing fractional zeros breaks this for
// records created within the same second (".1Z" > ".15Z" as text).
func TestGetStudentsOrderWithinSameSecond(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	older := base.Add(100 * time.Millisecond)
	newer := base.Add(150 * time.Millisecond)

	// inserted newest-first on purpose so the rowid tie-break cannot
	// mask a bad created_at sort
	require.NoError(t, rawInsert(t, store, "id-newer", "newer@x.com", newer))
	require.NoError(t, rawInsert(t, store, "id-older", "older@x.com", older))

	students, err := store.GetStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "id-newer", students[0].ID)
	assert.Equal(t, "id-older", students[1].ID)
}

// The UNIQUE index is the authoritative duplicate guard: a write that
// slips past the SELECT pre-check must still be rejected by the
// constraint, and that rejection must be recognisable.
func TestUniqueIndexIsAuthoritative(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateStudent(ctx, sampleStudent("ada@x.com"))
	require.NoError(t, err)

	err = rawInsert(t, store, uuid.NewString(), "ada@x.com", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err), "constraint rejection must map to ErrEmailTaken")

	// unrelated errors are not mistaken for a duplicate
	assert.False(t, isUniqueViolation(context.DeadlineExceeded))
}

func TestUpdateStudent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateStudent(ctx, sampleStudent("ada@x.com"))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	replacement := sampleStudent("ada@x.com")
	replacement.Fees = 7500

	updated, err := store.UpdateStudentByID(ctx, created.ID, replacement)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 7500.0, updated.Fees)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt), "createdAt must not change")
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updatedAt must advance")
}

func TestUpdateStudentNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdateStudentByID(context.Background(), uuid.NewString(), sampleStudent("ada@x.com"))
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)
}

func TestUpdateStudentEmailTakenByAnother(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateStudent(ctx, sampleStudent("ada@x.com"))
	require.NoError(t, err)

	other, err := store.CreateStudent(ctx, sampleStudent("grace@x.com"))
	require.NoError(t, err)

	// stealing ada's email, even spelled differently, is rejected
	replacement := sampleStudent("ADA@X.com")
	_, err = store.UpdateStudentByID(ctx, other.ID, replacement)
	assert.ErrorIs(t, err, storage.ErrEmailTaken)

	// keeping your own email is not a conflict
	replacement = sampleStudent("grace@x.com")
	replacement.Fees = 100
	updated, err := store.UpdateStudentByID(ctx, other.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.Fees)
}

func TestDeleteStudent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateStudent(ctx, sampleStudent("ada@x.com"))
	require.NoError(t, err)

	deleted, err := store.DeleteStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, types.DeletedStudent{ID: created.ID, Name: "Ada Lovelace"}, deleted)

	_, err = store.GetStudentByID(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)

	// the email is free again after the delete
	_, err = store.CreateStudent(ctx, sampleStudent("ada@x.com"))
	assert.NoError(t, err)
}

func TestDeleteStudentNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.DeleteStudentByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)
}
