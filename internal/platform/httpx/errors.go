package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by handlers.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// ErrorClass maps a family of errors onto one problem status.
type ErrorClass struct {
	Status int
	Title  string
	Errors []error
}

// Matches reports whether err wraps any member of the class.
func (c ErrorClass) Matches(err error) bool {
	for _, target := range c.Errors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var baseClasses = []ErrorClass{
	{Status: http.StatusNotFound, Title: "Not Found", Errors: []error{ErrNotFound}},
	{Status: http.StatusConflict, Title: "Conflict", Errors: []error{ErrConflict}},
	{Status: http.StatusUnprocessableEntity, Title: "Validation Failed", Errors: []error{ErrValidation}},
}

// RespondError writes err as an RFC7807 problem. Caller classes are tried
// before the package sentinels; anything unmatched is a 500 with no detail.
func RespondError(w http.ResponseWriter, err error, classes ...ErrorClass) {
	for _, set := range [][]ErrorClass{classes, baseClasses} {
		for _, class := range set {
			if class.Matches(err) {
				Problem(w, class.Status, class.Title, err.Error())
				return
			}
		}
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
