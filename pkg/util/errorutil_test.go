package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomyStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewUnauthorized("no token"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewForbidden("wrong password"), "FORBIDDEN", http.StatusForbidden},
		{NewNotFound("task", nil), "NOT_FOUND", http.StatusNotFound},
		{NewValidationError("bad input", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewConflict("duplicate email", nil), "CONFLICT", http.StatusConflict},
		{NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		var domainErr *DomainError
		require.ErrorAs(t, tc.err, &domainErr, tc.code)
		assert.Equal(t, tc.code, domainErr.Code)
		assert.Equal(t, tc.status, domainErr.HTTPStatus)
	}
}

func TestNewFieldValidationErrorCarriesFieldDetails(t *testing.T) {
	err := NewFieldValidationError(map[string][]string{
		"title": {"this field is required"},
		"email": {"enter a valid email address"},
	})

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, []string{"this field is required"}, domainErr.Details["title"])
	assert.Equal(t, []string{"enter a valid email address"}, domainErr.Details["email"])
}

func TestNotFoundMessageNamesResource(t *testing.T) {
	var domainErr *DomainError
	require.ErrorAs(t, NewNotFound("task", nil), &domainErr)
	assert.Equal(t, "task not found", domainErr.Message)
}

func TestIsCode(t *testing.T) {
	err := NewForbidden("wrong password")

	assert.True(t, IsCode(err, "FORBIDDEN"))
	assert.False(t, IsCode(err, "NOT_FOUND"))
	assert.False(t, IsCode(errors.New("plain"), "FORBIDDEN"))
	assert.False(t, IsCode(nil, "FORBIDDEN"))
}

func TestIsCodeSeesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewConflict("duplicate username", nil))
	assert.True(t, IsCode(wrapped, "CONFLICT"))
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewForbidden("nope")
	converted := ToDomainError(original)

	var domainErr *DomainError
	require.ErrorAs(t, original, &domainErr)
	assert.Same(t, domainErr, converted)
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	converted := ToDomainError(sql.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", converted.Code)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection reset")
	converted := ToDomainError(cause)

	assert.Equal(t, "INTERNAL_ERROR", converted.Code)
	assert.ErrorIs(t, converted, cause)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}
