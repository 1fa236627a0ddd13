// Package response provides helpers for writing the uniform JSON
// envelope every endpoint returns:
//
//	{ "success": true,  "message": "...", "data": ... }
//	{ "success": false, "message": "...", "errors": [{"field","message"}] }
//
// Consistent shapes keep the client facade trivial: it only ever
// looks at success, message, errors and data.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/priyanshgupta/tuition-admin-api/internal/validation"
)

// Response is the standard envelope. Message, Data and Errors are
// omitted when empty, so success payloads stay minimal.
type Response struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message,omitempty"`
	Data    any                     `json:"data,omitempty"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

// ListResponse is the envelope for collection endpoints. Count is
// always present — a count of 0 with an empty list is a success, not
// an error, and the client should be able to rely on the field.
type ListResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

// WriteJSON writes a JSON-encoded body with the given HTTP status
// code. Headers must be set before WriteHeader, and WriteHeader
// before the body — this helper keeps that order in one place.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK wraps a success payload with a human-readable message.
func OK(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Data wraps a success payload with no message.
func Data(data any) Response {
	return Response{Success: true, Data: data}
}

// List wraps a collection payload with its count.
func List(count int, data any) ListResponse {
	return ListResponse{Success: true, Count: count, Data: data}
}

// Err wraps a failure with a single human-readable message.
func Err(message string) Response {
	return Response{Success: false, Message: message}
}

// ValidationFailed wraps the full set of field errors produced by the
// validator, so a form can highlight every broken input at once.
func ValidationFailed(errs []validation.FieldError) Response {
	return Response{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	}
}
