package handler

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/dmitrymomot/mailcanvas/pkg/validator"
)

var (
	ErrNilResponse       = errors.New("handler returned nil response")
	ErrSSENotInitialized = errors.New("SSE not initialized for this request")
)

// HTTPError carries a status code and a stable error code for clients.
// Message is optional human readable text.
type HTTPError struct {
	Code    int
	Key     string
	Message string
	Err     error
}

func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Key + ": " + e.Message
	}
	return e.Key
}

func (e HTTPError) Unwrap() error { return e.Err }

// WithMessage returns a copy of e with a message.
func (e HTTPError) WithMessage(format string, args ...any) HTTPError {
	e.Message = fmt.Sprintf(format, args...)
	return e
}

// Wrap returns a copy of e wrapping err.
func (e HTTPError) Wrap(err error) HTTPError {
	e.Err = err
	if e.Message == "" && err != nil {
		e.Message = err.Error()
	}
	return e
}

func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

var (
	ErrBadRequest           = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrNotFound             = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict             = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnsupportedMediaType = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
	ErrUnprocessableEntity  = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrTooManyRequests      = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
	ErrInternalServerError  = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrBadGateway           = HTTPError{Code: http.StatusBadGateway, Key: "bad_gateway"}
	ErrServiceUnavailable   = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
)

// ValidationError maps fields to messages. It renders as 422.
type ValidationError map[string][]string

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(e[f]) > 0 {
			parts = append(parts, f+": "+e[f][0])
		}
	}
	return "validation error: " + strings.Join(parts, ", ")
}

func (e ValidationError) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Validate runs rules and converts failures to a ValidationError.
func Validate(rules ...validator.Rule) error {
	err := validator.Apply(rules...)
	if err == nil {
		return nil
	}
	return ValidationError(validator.ExtractValidationErrors(err).Fields())
}

// asBadRequest gives errors without a status a 400.
func asBadRequest(err error) error {
	var httpErr HTTPError
	var valErr ValidationError
	if errors.As(err, &httpErr) || errors.As(err, &valErr) {
		return err
	}
	return ErrBadRequest.Wrap(err)
}
