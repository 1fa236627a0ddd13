package student

import (
	"fmt"
	"net/http"

	"github.com/priyanshgupta/tuition-admin-api/internal/storage"
	"github.com/priyanshgupta/tuition-admin-api/internal/utils/response"
)

// Routes builds the full route table for the service.
//
//	POST   /api/students        → create a new student
//	GET    /api/students        → list all students (newest first)
//	GET    /api/students/{id}   → get one student by ID
//	PUT    /api/students/{id}   → full-field update
//	DELETE /api/students/{id}   → permanent delete
//	GET    /                    → service info
//	(anything else)             → 404 envelope
func Routes(st storage.Storage) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("POST /api/students", New(st))
	router.HandleFunc("GET /api/students", GetList(st))
	router.HandleFunc("GET /api/students/{id}", GetByID(st))
	router.HandleFunc("PUT /api/students/{id}", Update(st))
	router.HandleFunc("DELETE /api/students/{id}", Delete(st))

	// "GET /{$}" matches the root path exactly; the bare "/" pattern
	// is the catch-all for everything no other route claims.
	router.HandleFunc("GET /{$}", Root())
	router.HandleFunc("/", NotFound())

	return router
}

// Root handles GET / with a small service description, useful as a
// liveness check and as a pointer to the API for anyone poking at the
// base URL.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK,
			response.OK("Tuition Class Admin Panel API", map[string]any{
				"version":  "1.0.0",
				"students": "/api/students",
				"methods":  []string{"GET", "POST", "PUT", "DELETE"},
			}))
	}
}

// NotFound is the fallback for unmatched routes. It answers with the
// same envelope as every other failure so clients never see the
// plain-text default.
func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusNotFound,
			response.Err(fmt.Sprintf("Route %s not found", r.URL.Path)))
	}
}
