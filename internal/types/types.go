// Package types holds the shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and validation can all import types without
// depending on each other.
package types

import "time"

// Courses is the fixed set of courses the tuition class offers.
// A student record is only valid if its course matches one of these
// values exactly.
var Courses = []string{
	"Mathematics",
	"Physics",
	"Chemistry",
	"Biology",
	"Computer Science",
	"English",
	"Economics",
	"Accountancy",
}

// ValidCourse reports whether name is one of the offered courses.
func ValidCourse(name string) bool {
	for _, c := range Courses {
		if c == name {
			return true
		}
	}
	return false
}

// Student represents a persisted student record.
//
// ID is assigned by the storage layer on creation and never changes.
// Email is always stored lower-cased. CreatedAt is set once on
// creation; UpdatedAt is refreshed on every mutation.
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

// StudentInput is the unvalidated candidate payload submitted on
// create and update. It is deliberately a separate type from Student:
// a StudentInput has not passed validation yet and carries no
// server-assigned fields.
//
// Fees is a pointer so that an absent field can be told apart from a
// legitimate zero (free admission). DateOfAdmission stays a string
// until validation parses it; an empty string means "admitted now".
//
// The validate:"..." tags are checked by go-playground/validator.
// studentname, emailaddr, phonedigits and course are custom tags
// registered by the validation package.
type StudentInput struct {
	Name            string   `json:"name"            validate:"required,min=2,max=50,studentname"`
	Email           string   `json:"email"           validate:"required,emailaddr"`
	Phone           string   `json:"phone"           validate:"required,phonedigits"`
	Course          string   `json:"course"          validate:"required,course"`
	Fees            *float64 `json:"fees"            validate:"required,gte=0,lte=100000"`
	DateOfAdmission string   `json:"dateOfAdmission"`
}

// DeletedStudent is the confirmation payload returned after a
// successful delete: just enough for the client to show who was
// removed.
type DeletedStudent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
