package apierror

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"net/http"
	"strings"
)

// ErrorResponse is returned by services and written as the JSON body by routes.
type ErrorResponse interface {
	error
	Code() int
}

type Simple struct {
	Status  int               `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (s *Simple) Code() int {
	return s.Status
}

func (s *Simple) Error() string {
	return s.Message
}

func NewSimple(code int, message string) *Simple {
	return &Simple{Status: code, Message: message}
}

var (
	InternalServerError = NewSimple(http.StatusInternalServerError, "Internal server error")
	NotFoundError       = NewSimple(http.StatusNotFound, "Resource not found")
	MalformedBodyError  = NewSimple(http.StatusBadRequest, "Malformed request body")
	RateLimitedError    = NewSimple(http.StatusTooManyRequests, "Too many requests")
)

func NewMissingParamError(param string) *Simple {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Missing required parameter '%s'", param))
}

func NewInvalidParamTypeError(param, expected string) *Simple {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Parameter '%s' must be of type %s", param, expected))
}

func NewInvalidFieldError(field, message string) *Simple {
	return &Simple{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Details: map[string]string{field: message},
	}
}

// NewBookingRejectedError reports a booking that broke one of the link's rules.
func NewBookingRejectedError(reason, message string) *Simple {
	return &Simple{
		Status:  http.StatusUnprocessableEntity,
		Message: message,
		Details: map[string]string{"reason": reason},
	}
}

// FromValidationError maps validator failures to a 400 with one detail per field.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[jsonName(fe)] = describe(fe)
	}
	return &Simple{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Details: details,
	}
}

func jsonName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gtfield":
		return "must be after " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "iso8601":
		return "must be an RFC 3339 timestamp"
	case "hhmm":
		return "must be a time of day formatted HH:MM"
	default:
		return "failed '" + fe.Tag() + "' check"
	}
}
