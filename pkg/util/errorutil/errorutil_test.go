package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatusAndCode(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), CodeValidation, http.StatusBadRequest},
		{NewNotFound("incident", nil), CodeNotFound, http.StatusNotFound},
		{NewInvalidTransition("no", nil), CodeInvalidTransition, http.StatusBadRequest},
		{NewInvalidState("no", nil), CodeInvalidState, http.StatusBadRequest},
		{NewConflict("busy", nil), CodeConflict, http.StatusConflict},
		{NewNoEligibleWorker("OIT"), CodeNoEligibleWorker, http.StatusConflict},
		{NewUnmappedCategory("Ruido"), CodeUnmappedCategory, http.StatusBadRequest},
		{NewTokenExpired(), CodeTokenExpired, http.StatusUnauthorized},
		{NewUnauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
		{NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{NewInternalError(errors.New("boom")), CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		domainErr := ToDomainError(tt.err)
		require.NotNil(t, domainErr)
		assert.Equal(t, tt.code, domainErr.Code)
		assert.Equal(t, tt.status, domainErr.HTTPStatus)
	}
}

func TestTokenExpiredDetails(t *testing.T) {
	domainErr := ToDomainError(NewTokenExpired())
	assert.Equal(t, true, domainErr.Details["expired"])
}

func TestToDomainErrorWrapsForeignErrors(t *testing.T) {
	cause := errors.New("connection refused")
	domainErr := ToDomainError(cause)
	assert.Equal(t, CodeInternal, domainErr.Code)
	assert.ErrorIs(t, domainErr, cause)

	assert.Nil(t, ToDomainError(nil))
}

func TestToDomainErrorUnwrapsWrapped(t *testing.T) {
	inner := NewConflict("busy", nil)
	wrapped := fmt.Errorf("while assigning: %w", inner)
	assert.Equal(t, CodeConflict, ToDomainError(wrapped).Code)
	assert.Equal(t, CodeConflict, CodeOf(wrapped))
}
