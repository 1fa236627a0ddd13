// Package client is the typed data-access facade for the student
// records API. It speaks the service's envelope protocol, unwraps the
// data payload on success, and normalizes every failure — business or
// transport — into a single *Error carrying a human-readable message,
// so callers never need to distinguish a refused connection from a
// 404 from a validation reject unless they want to.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultTimeout bounds each request when the caller does not supply
// its own http.Client or context deadline.
const defaultTimeout = 10 * time.Second

// Student mirrors the record JSON shape served by the API.
type Student struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Course          string    `json:"course"`
	Fees            float64   `json:"fees"`
	DateOfAdmission time.Time `json:"dateOfAdmission"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// StudentInput is the payload for create and update. The server
// performs all validation; this type just shapes the JSON.
type StudentInput struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Course          string  `json:"course"`
	Fees            float64 `json:"fees"`
	DateOfAdmission string  `json:"dateOfAdmission,omitempty"`
}

// DeletedStudent is the confirmation returned by DeleteStudent.
type DeletedStudent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FieldError is one field-level validation failure reported by the
// server.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the single error type every Client method returns on
// failure. StatusCode is 0 when the request never reached the server.
// Fields is populated for validation rejects.
type Error struct {
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *Error) Error() string { return e.Message }

// IsNotFound reports whether err is a server-side 404 — either a
// missing record or an unmatched route.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsValidation reports whether err carries field-level validation
// detail.
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && len(apiErr.Fields) > 0
}

// Client calls the student records API at a fixed base URL.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying http.Client, e.g. to add
// a transport with custom TLS or retry behaviour.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// New builds a Client for the API rooted at baseURL, e.g.
// "http://localhost:8082".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListStudents fetches every record, newest first.
func (c *Client) ListStudents(ctx context.Context) ([]Student, error) {
	var students []Student
	if err := c.do(ctx, http.MethodGet, "/api/students", nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// GetStudent fetches one record by id.
func (c *Client) GetStudent(ctx context.Context, id string) (Student, error) {
	var student Student
	if err := c.do(ctx, http.MethodGet, "/api/students/"+url.PathEscape(id), nil, &student); err != nil {
		return Student{}, err
	}
	return student, nil
}

// CreateStudent submits a candidate record and returns the stored
// form (normalized fields plus server-assigned id and timestamps).
func (c *Client) CreateStudent(ctx context.Context, input StudentInput) (Student, error) {
	var student Student
	if err := c.do(ctx, http.MethodPost, "/api/students", input, &student); err != nil {
		return Student{}, err
	}
	return student, nil
}

// UpdateStudent replaces every business field of an existing record.
func (c *Client) UpdateStudent(ctx context.Context, id string, input StudentInput) (Student, error) {
	var student Student
	if err := c.do(ctx, http.MethodPut, "/api/students/"+url.PathEscape(id), input, &student); err != nil {
		return Student{}, err
	}
	return student, nil
}

// DeleteStudent permanently removes a record.
func (c *Client) DeleteStudent(ctx context.Context, id string) (DeletedStudent, error) {
	var deleted DeletedStudent
	if err := c.do(ctx, http.MethodDelete, "/api/students/"+url.PathEscape(id), nil, &deleted); err != nil {
		return DeletedStudent{}, err
	}
	return deleted, nil
}

// envelope is the wire shape shared by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

// do performs one request/response cycle: encode the body, send,
// normalize any failure, and unwrap the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: "could not encode request: " + err.Error()}
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &Error{Message: "could not build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return normalizeTransport(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		// Not our envelope at all — fall back to a status-derived
		// message.
		return &Error{StatusCode: resp.StatusCode, Message: statusMessage(resp.StatusCode)}
	}

	if resp.StatusCode >= 400 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = statusMessage(resp.StatusCode)
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg, Fields: env.Errors}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{StatusCode: resp.StatusCode, Message: "could not decode response: " + err.Error()}
		}
	}
	return nil
}

// normalizeTransport turns a failure that never produced a response
// into the shared error vocabulary.
func normalizeTransport(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return &Error{Message: "Request timeout. Please check your connection."}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Message: "Request timeout. Please check your connection."}
	}
	return &Error{Message: "Network error. Please check if the server is running."}
}

// statusMessage is the fallback text when the server did not supply a
// message of its own.
func statusMessage(code int) string {
	switch {
	case code == http.StatusNotFound:
		return "Resource not found."
	case code >= 500:
		return "Server error. Please try again later."
	default:
		return fmt.Sprintf("Request failed with status %d", code)
	}
}
