package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Email or password is incorrect",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidToken = &AppError{
		Code:       "INVALID_TOKEN",
		Message:    "Invalid or expired token",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	// ErrInvalidUniversityEmail rejects addresses outside academic domains.
	ErrInvalidUniversityEmail = &AppError{
		Code:       "INVALID_UNIVERSITY_EMAIL",
		Message:    "Please use a valid university email address (.edu, .edu.tr, .ac.uk etc.)",
		StatusCode: http.StatusBadRequest,
	}

	// ErrUniversityNotFound means the email domain matched no known institution.
	ErrUniversityNotFound = &AppError{
		Code:       "UNIVERSITY_NOT_FOUND",
		Message:    "No university was found for this email address",
		StatusCode: http.StatusBadRequest,
	}

	// ErrEmailTaken signals a registration attempt for an already existing account.
	ErrEmailTaken = &AppError{
		Code:       "EMAIL_TAKEN",
		Message:    "This email is already registered",
		StatusCode: http.StatusConflict,
	}

	// ErrNoPendingRegistration means verify/resend was called without a prior registration.
	ErrNoPendingRegistration = &AppError{
		Code:       "NO_PENDING_REGISTRATION",
		Message:    "No pending registration was found for this email. Please register first.",
		StatusCode: http.StatusBadRequest,
	}

	// ErrInvalidVerificationCode leaves the pending registration intact so the caller may retry.
	ErrInvalidVerificationCode = &AppError{
		Code:       "INVALID_VERIFICATION_CODE",
		Message:    "Invalid verification code",
		StatusCode: http.StatusBadRequest,
	}

	// ErrVerificationCodeExpired is destructive: the pending registration is removed and
	// the caller must register again.
	ErrVerificationCodeExpired = &AppError{
		Code:       "VERIFICATION_CODE_EXPIRED",
		Message:    "The verification code has expired. Please register again.",
		StatusCode: http.StatusGone,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}
