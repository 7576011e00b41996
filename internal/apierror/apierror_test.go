package apierror

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestAPIErrorError(t *testing.T) {
	err := NewAPIError(ErrConflict, "duplicate version label", nil)
	assert.Equal(t, "CONFLICT: duplicate version label", err.Error())
}

func TestMapSQLError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505"}, ErrConflict},
		{"foreign key violation", &pq.Error{Code: "23503"}, ErrBadRequest},
		{"serialization failure", &pq.Error{Code: "40001"}, ErrTransient},
		{"deadlock", &pq.Error{Code: "40P01"}, ErrTransient},
		{"anything else", errors.New("boom"), ErrInternalServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapSQLError(tt.err, "not found")
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewAPIError(ErrTransient, "retry me", nil)))
	assert.False(t, IsRetryable(NewAPIError(ErrConflict, "nope", nil)))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrTransient, http.StatusServiceUnavailable},
		{ErrInternalServer, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapErrorToHTTPStatus(NewAPIError(tt.code, "m", nil)))
	}
	assert.Equal(t, http.StatusInternalServerError, MapErrorToHTTPStatus(errors.New("plain")))
}
