package response

import (
	appErrors "github.com/dolapkampus/backend/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape returned for every failed request.
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// OK writes a JSON success payload. Handlers own the exact payload shape because the
// mobile client expects flat response bodies rather than a data envelope.
func OK(c *gin.Context, statusCode int, payload any) {
	c.JSON(statusCode, payload)
}

// Error renders an application error with its mapped HTTP status code.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr == nil {
		appErr = appErrors.ErrInternalServer
	}

	c.JSON(appErr.StatusCode, ErrorBody{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
	})
}

// AbortError renders the error and stops the middleware chain.
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
