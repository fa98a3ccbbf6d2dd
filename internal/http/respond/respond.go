// Package respond renders JSON bodies and the error envelope shared by
// every handler.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
)

// ErrorBody is the wire form of every failed request.
type ErrorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrDuplicateFile),
		errors.Is(err, apperr.ErrConflictPending),
		errors.Is(err, apperr.ErrLinkageBlocked),
		errors.Is(err, apperr.ErrStateTransition):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUpstreamTransient):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperr.ErrUpstreamFatal):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err in the envelope. Internal failures are logged and
// reported without detail.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)

	body := ErrorBody{Code: apperr.Code(err), Message: err.Error(), Errors: apperr.FieldsOf(err)}
	if body.Errors == nil {
		body.Errors = []apperr.FieldError{}
	}

	var e *apperr.Error
	if errors.As(err, &e) {
		body.Message = e.Message
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Message = "internal error"
	}

	JSON(w, status, body)
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return apperr.Validation("body", err.Error())
	}

	return nil
}

// ID parses the named URL parameter as a UUID.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validation(name, "must be a UUID")
	}

	return id, nil
}

// OptionalID parses a query parameter as a UUID; empty yields nil.
func OptionalID(r *http.Request, name string) (*uuid.UUID, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperr.Validation(name, "must be a UUID")
	}

	return &id, nil
}

// Page reads limit/offset query parameters.
func Page(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &limit}, {"offset", &offset}} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}

		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 0 {
			return 0, 0, apperr.Validation(p.name, fmt.Sprintf("must be a non-negative integer, got %q", s))
		}

		*p.dst = n
	}

	return limit, offset, nil
}

// Bool reads an optional boolean query parameter.
func Bool(r *http.Request, name string) (*bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, apperr.Validation(name, "must be true or false")
	}

	return &b, nil
}
