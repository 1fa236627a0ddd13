// Package student contains the HTTP handlers for the student
// resource.
//
// Handlers follow the closure/factory pattern: each exported function
// accepts its dependencies (the storage backend) and returns an
// http.HandlerFunc that closes over them. The factory runs once at
// route registration; the returned handler runs on every request.
//
// This layer owns the mapping from outcomes to the response envelope:
// validation failures and duplicate emails become 400s with field
// detail, missing records become 404s, and anything unexpected from
// storage becomes a generic 500 that never leaks internals.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/priyanshgupta/tuition-admin-api/internal/storage"
	"github.com/priyanshgupta/tuition-admin-api/internal/types"
	"github.com/priyanshgupta/tuition-admin-api/internal/utils/response"
	"github.com/priyanshgupta/tuition-admin-api/internal/validation"
)

// New handles POST /api/students: validate the candidate payload and
// create the record.
//
//	201 {success:true, message, data:Student}
//	400 {success:false, message, errors?}   — bad body, validation, duplicate email
//	500 {success:false, message}            — storage failure
func New(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		input, ok := decodeInput(w, r)
		if !ok {
			return
		}

		candidate, fieldErrs := validation.Student(input, time.Now())
		if len(fieldErrs) > 0 {
			slog.Info("student validation failed", slog.Int("errors", len(fieldErrs)))
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationFailed(fieldErrs))
			return
		}

		// Detached from r.Context(): a client that disconnects must
		// not abort an in-flight write. The storage layer applies its
		// own timeout.
		created, err := st.CreateStudent(context.Background(), candidate)
		if err != nil {
			if errors.Is(err, storage.ErrEmailTaken) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.Err("A student with this email already exists"))
				return
			}
			slog.Error("error creating student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Err("Server Error: Could not create student"))
			return
		}

		slog.Info("student created", slog.String("id", created.ID))
		response.WriteJSON(w, http.StatusCreated,
			response.OK("Student created successfully", created))
	}
}

// GetList handles GET /api/students: every record, newest first.
// An empty collection is a success with count 0, not an error.
func GetList(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := st.GetStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Err("Server Error: Could not fetch students"))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.List(len(students), students))
	}
}

// GetByID handles GET /api/students/{id}.
//
//	200 {success:true, data:Student}
//	400 — id is not a UUID
//	404 — no record with that id
func GetByID(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := studentID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.String("id", id))

		student, err := st.GetStudentByID(r.Context(), id)
		if err != nil {
			writeLookupError(w, "fetch", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Data(student))
	}
}

// Update handles PUT /api/students/{id}: a full-field replace.
// Partial updates are not supported — every business field is
// re-validated and rewritten, exactly like create.
func Update(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := studentID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a student", slog.String("id", id))

		input, ok := decodeInput(w, r)
		if !ok {
			return
		}

		candidate, fieldErrs := validation.Student(input, time.Now())
		if len(fieldErrs) > 0 {
			slog.Info("student validation failed", slog.Int("errors", len(fieldErrs)))
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationFailed(fieldErrs))
			return
		}

		// Detached context: same reasoning as create.
		updated, err := st.UpdateStudentByID(context.Background(), id, candidate)
		if err != nil {
			if errors.Is(err, storage.ErrEmailTaken) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.Err("Another student with this email already exists"))
				return
			}
			writeLookupError(w, "update", err)
			return
		}

		slog.Info("student updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK,
			response.OK("Student updated successfully", updated))
	}
}

// Delete handles DELETE /api/students/{id}: a permanent removal.
// The response echoes the id and name of the removed record.
func Delete(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := studentID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.String("id", id))

		deleted, err := st.DeleteStudentByID(context.Background(), id)
		if err != nil {
			writeLookupError(w, "delete", err)
			return
		}

		slog.Info("student deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK,
			response.OK("Student deleted successfully", deleted))
	}
}

// studentID extracts and checks the {id} path segment. A malformed id
// is rejected before storage is touched. Only the canonical 36-char
// form is accepted: braced, URN and bare-hex encodings parse as UUIDs
// but can never match a stored id.
func studentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if parsed, err := uuid.Parse(id); err != nil || parsed.String() != id {
		response.WriteJSON(w, http.StatusBadRequest,
			response.Err("Invalid student ID format"))
		return "", false
	}
	return id, true
}

// decodeInput reads the candidate payload from the request body.
func decodeInput(w http.ResponseWriter, r *http.Request) (types.StudentInput, bool) {
	var input types.StudentInput
	err := json.NewDecoder(r.Body).Decode(&input)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.Err("Request body is empty"))
		return types.StudentInput{}, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.Err("Invalid request body"))
		return types.StudentInput{}, false
	}
	return input, true
}

// writeLookupError maps a storage failure from a by-id operation:
// a missing record is the caller's 404, everything else is a 500
// with a generic message.
func writeLookupError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, storage.ErrStudentNotFound) {
		response.WriteJSON(w, http.StatusNotFound,
			response.Err("Student not found"))
		return
	}
	slog.Error("storage failure", slog.String("op", op), slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError,
		response.Err("Server Error: Could not "+op+" student"))
}
