package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", NewValidationError("title", "is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("create: %w", NewValidationError("location", "is required")), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"report not found", fmt.Errorf("load: %w", ErrReportNotFound), http.StatusNotFound, "REPORT_NOT_FOUND"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"transition", &InvalidTransitionError{From: "resolved", To: "pending"}, http.StatusConflict, "INVALID_TRANSITION"},
		{"duplicate email", ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
		{"bad credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"upstream", ErrUpstream, http.StatusInternalServerError, "UPSTREAM_ERROR"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_FieldIsReported(t *testing.T) {
	httpErr := MapErrorToHTTP(NewValidationError("category", "must be one of waste toilet"))
	resp := httpErr.ToErrorResponse()
	assert.Equal(t, "category", resp.Field)
	assert.Contains(t, resp.Error, "category")
}

func TestMapErrorToHTTP_UnknownErrorHidesDetails(t *testing.T) {
	httpErr := MapErrorToHTTP(fmt.Errorf("dial tcp 10.0.0.1:3306: refused"))
	assert.Equal(t, "internal server error", httpErr.Message)
}
