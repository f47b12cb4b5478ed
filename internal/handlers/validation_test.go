package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appValidator "github.com/dolapkampus/backend/pkg/validator"
)

type samplePayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=2"`
}

func bindOn(t *testing.T, body string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var payload samplePayload
	return w, bindAndValidate(c, &payload)
}

func TestBindAndValidateRejectsMalformedJSON(t *testing.T) {
	w, ok := bindOn(t, "{not json")
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid JSON payload")
}

func TestBindAndValidateRejectsInvalidFields(t *testing.T) {
	w, ok := bindOn(t, `{"email":"not-an-email","name":"x"}`)
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "email failed on email")
}

func TestBindAndValidateAcceptsValidPayload(t *testing.T) {
	w, ok := bindOn(t, `{"email":"ayse@sakarya.edu.tr","name":"Ayşe"}`)
	require.True(t, ok)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestFormatValidationError(t *testing.T) {
	require.Equal(t, "invalid request payload", formatValidationError(nil))

	err := appValidator.ValidationErrors{
		{Field: "email", Tag: "required"},
		{Field: "name", Tag: "min", Param: "2"},
	}
	require.Equal(t, "email failed on required; name failed on min=2", formatValidationError(err))
}
