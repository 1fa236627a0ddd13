// Package validation converts an unvalidated candidate payload into a
// normalized student record, or into a complete list of field errors.
//
// It is the only place where business rules about record shape live.
// Handlers never inspect raw validator errors; they receive
// []FieldError values that are already attributable to a JSON field
// and carry a message fit for display next to a form input.
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/priyanshgupta/tuition-admin-api/internal/types"
)

// FieldError pins a single rule violation to the JSON field that
// caused it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	nameRegex  = regexp.MustCompile(`^[A-Za-z ]+$`)
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)

	validate = newValidator()
)

// newValidator builds the shared validator instance with the custom
// tags used by types.StudentInput. Validation is stateless, so one
// instance serves the whole process.
func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names in errors instead of Go struct names,
	// so a form can match an error to its input.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "studentname", func(fl validator.FieldLevel) bool {
		return nameRegex.MatchString(fl.Field().String())
	})
	mustRegister(v, "emailaddr", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
	mustRegister(v, "phonedigits", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	mustRegister(v, "course", func(fl validator.FieldLevel) bool {
		return types.ValidCourse(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// messages maps "field tag" pairs to the user-facing text returned to
// the client.
var messages = map[string]string{
	"name required":    "Student name is required",
	"name min":         "Name must be between 2 and 50 characters",
	"name max":         "Name must be between 2 and 50 characters",
	"name studentname": "Name can only contain letters and spaces",

	"email required":  "Email is required",
	"email emailaddr": "Please provide a valid email address",

	"phone required":    "Phone number is required",
	"phone phonedigits": "Please provide a valid 10-digit phone number",

	"course required": "Course is required",
	"course course":   "Please select a valid course",

	"fees required": "Fees amount is required",
	"fees gte":      "Fees must be between 0 and 1,00,000",
	"fees lte":      "Fees must be between 0 and 1,00,000",
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+" "+fe.Tag()]; ok {
		return msg
	}
	return "field " + fe.Field() + " is invalid"
}

// Student validates a candidate payload against the record rules.
//
// On success it returns the normalized business fields of a student
// record: name/phone trimmed, email trimmed and lower-cased, and the
// admission date parsed (defaulting to now when absent). Server
// fields (ID, CreatedAt, UpdatedAt) are left zero for the storage
// layer to assign.
//
// On failure it returns every violation at once — one FieldError per
// broken field — so a form can highlight all problems in a single
// round trip.
func Student(in types.StudentInput, now time.Time) (types.Student, []FieldError) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Course = strings.TrimSpace(in.Course)
	in.DateOfAdmission = strings.TrimSpace(in.DateOfAdmission)

	var fieldErrs []FieldError
	if err := validate.Struct(in); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   fe.Field(),
				Message: message(fe),
			})
		}
	}

	// The admission date is validated by hand rather than by tag:
	// the rule depends on the injected clock, and an absent value is
	// substituted, not rejected.
	admitted := now
	if in.DateOfAdmission != "" {
		parsed, err := parseDate(in.DateOfAdmission)
		switch {
		case err != nil:
			fieldErrs = append(fieldErrs, FieldError{
				Field:   "dateOfAdmission",
				Message: "Please provide a valid date",
			})
		case parsed.After(now):
			fieldErrs = append(fieldErrs, FieldError{
				Field:   "dateOfAdmission",
				Message: "Date of admission cannot be in the future",
			})
		default:
			admitted = parsed
		}
	}

	if len(fieldErrs) > 0 {
		return types.Student{}, fieldErrs
	}

	return types.Student{
		Name:            in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		Course:          in.Course,
		Fees:            *in.Fees,
		DateOfAdmission: admitted,
	}, nil
}

// parseDate accepts a plain calendar date (2006-01-02) or a full
// RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
