package errors

import (
	"net/http"

	"github.com/go-playground/validator/v10"
)

// APIError is the one error type the transport layer knows how to render.
// Kind is the stable machine-readable taxonomy; Message is the toast-ready
// user-facing string; Internal carries the wrapped cause for logs only.
type APIError struct {
	Status   int    `json:"-"`
	Kind     string `json:"error"`
	Message  string `json:"message"`
	Internal error  `json:"-"`
}

const (
	KindUnauthorized   = "unauthorized"
	KindNotEligible    = "not_eligible"
	KindAlreadyDecided = "already_decided"
	KindValidation     = "validation_error"
	KindNotFound       = "not_found"
	KindBadRequest     = "bad_request"
	KindInternal       = "internal_error"
)

func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Internal
}

func newError(status int, kind, message string, err error) *APIError {
	return &APIError{Status: status, Kind: kind, Message: message, Internal: err}
}

// Unauthorized: the actor lacks the role or ownership the action requires.
func Unauthorized(message string, err error) *APIError {
	return newError(http.StatusUnauthorized, KindUnauthorized, message, err)
}

// Forbidden: the actor has the right role but the entity's current state
// forbids the action (wrong status, quorum not met, self-review, already
// reviewed).
func Forbidden(message string, err error) *APIError {
	return newError(http.StatusForbidden, KindNotEligible, message, err)
}

// Conflict: a race or duplicate submission was caught at a uniqueness
// boundary (double decision, double review, double proposal response).
func Conflict(message string, err error) *APIError {
	return newError(http.StatusConflict, KindAlreadyDecided, message, err)
}

// UnprocessableEntity: malformed input the state machine never saw.
func UnprocessableEntity(message string, err error) *APIError {
	return newError(http.StatusUnprocessableEntity, KindValidation, message, err)
}

func NotFound(message string, err error) *APIError {
	return newError(http.StatusNotFound, KindNotFound, message, err)
}

func BadRequest(message string, err error) *APIError {
	return newError(http.StatusBadRequest, KindBadRequest, message, err)
}

func Internal(err error) *APIError {
	return newError(http.StatusInternalServerError, KindInternal, "Internal server error", err)
}

// NewValidationError wraps a gin binding failure. Field-level validator
// errors keep their first offending field in the message so the client can
// highlight it.
func NewValidationError(err error) *APIError {
	message := "Invalid request"
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		message = "Invalid value for " + verrs[0].Field()
	}
	return newError(http.StatusUnprocessableEntity, KindValidation, message, err)
}
