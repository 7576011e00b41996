package apierror

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrTransient      ErrorCode = "TRANSIENT"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	logrus.Error(details)
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// MapSQLError converts a raw database error into an APIError. Unique and
// foreign-key violations map to caller errors; serialization failures and
// deadlocks map to TRANSIENT so callers can retry the whole operation.
func MapSQLError(err error, notFoundMsg string) APIError {
	if errors.Is(err, sql.ErrNoRows) {
		return NewAPIError(ErrNotFound, notFoundMsg, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return NewAPIError(ErrConflict, "Resource already exists", err)
		case "foreign_key_violation":
			return NewAPIError(ErrBadRequest, "Referenced resource does not exist", err)
		case "serialization_failure", "deadlock_detected":
			return NewAPIError(ErrTransient, "Transaction aborted by the store, retry the operation", err)
		}
	}
	return NewAPIError(ErrInternalServer, "Database error occurred", err)
}

// IsRetryable reports whether the error is a TRANSIENT store failure that is
// safe to retry from scratch. Every mutating operation is all-or-nothing, so
// a retry never observes partial progress.
func IsRetryable(err error) bool {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrTransient
	}
	return false
}

func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := err.(APIError); ok {
		switch apiErr.Code {
		case ErrNotFound:
			return http.StatusNotFound
		case ErrConflict:
			return http.StatusConflict
		case ErrInvalidInput:
			return http.StatusBadRequest
		case ErrBadRequest:
			return http.StatusBadRequest
		case ErrTransient:
			return http.StatusServiceUnavailable
		case ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
