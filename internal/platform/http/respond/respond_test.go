package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile_backend/internal/api"
	authusecase "profile_backend/internal/feature/auth/usecase"
	userusecase "profile_backend/internal/feature/user/usecase"
	"profile_backend/internal/platform/imaging"
	"profile_backend/internal/platform/validation"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "validation", err: validation.NewError(validation.FieldError{Field: "name", Message: "is required"}), wantCode: http.StatusBadRequest, wantBody: api.CodeValidationFailed},
		{name: "unauthorized", err: userusecase.ErrUnauthorized, wantCode: http.StatusUnauthorized, wantBody: api.CodeUnauthorized},
		{name: "forbidden collapses to 401", err: userusecase.ErrForbidden, wantCode: http.StatusUnauthorized, wantBody: api.CodeUnauthorized},
		{name: "revoked session", err: authusecase.ErrSessionRevoked, wantCode: http.StatusUnauthorized, wantBody: api.CodeUnauthorized},
		{name: "bad credentials", err: authusecase.ErrInvalidCredentials, wantCode: http.StatusUnauthorized, wantBody: api.CodeUnauthorized},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", userusecase.ErrUserNotFound), wantCode: http.StatusNotFound, wantBody: api.CodeNotFound},
		{name: "duplicate email", err: userusecase.ErrEmailAlreadyExists, wantCode: http.StatusConflict, wantBody: api.CodeConflict},
		{name: "image too large", err: imaging.ErrImageTooLarge, wantCode: http.StatusRequestEntityTooLarge, wantBody: api.CodeValidationFailed},
		{name: "storage unavailable", err: userusecase.ErrStorageUnavailable, wantCode: http.StatusServiceUnavailable, wantBody: api.CodeUnavailable},
		{name: "unknown", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantBody: api.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, body := Status(tt.err, "Failed")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantBody, body.Code)
		})
	}
}

func TestError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/api/user", nil)

	Error(c, errors.New("pq: connection reset"), "Failed to update profile")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, c.IsAborted())
	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to update profile", body.Error)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestError_ValidationDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/api/user", nil)

	Error(c, validation.NewError(
		validation.FieldError{Field: "role", Message: "is not allowed"},
		validation.FieldError{Field: "name", Message: "must be at least 1 characters long"},
	), "Failed")

	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Details, 2)
	assert.Equal(t, "role", body.Details[0].Field)
	assert.Equal(t, "is not allowed", body.Details[0].Message)
}
