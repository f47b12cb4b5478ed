package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dolapkampus/backend/internal/services"
	"github.com/dolapkampus/backend/pkg/errors"
	"github.com/dolapkampus/backend/pkg/response"
)

// AuthHandler serves the registration / verification pipeline and the login flows.
type AuthHandler struct {
	registrations *services.RegistrationService
	universities  *services.UniversityService
	users         *services.UserService
}

func NewAuthHandler(
	registrations *services.RegistrationService,
	universities *services.UniversityService,
	users *services.UserService,
) *AuthHandler {
	return &AuthHandler{
		registrations: registrations,
		universities:  universities,
		users:         users,
	}
}

// GET /auth/detect-university?email=
//
// Pre-registration UI hint: resolves the university and its departments for an email
// address before the client submits the registration form.
func (h *AuthHandler) DetectUniversity(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		response.Error(c, errors.NewBadRequest("email query parameter is required"))
		return
	}

	institution, err := h.universities.ResolveByEmail(requestContext(c), email)
	if err != nil {
		response.Error(c, err)
		return
	}

	departments := h.universities.DepartmentsForInstitution(institution.Name)

	response.OK(c, http.StatusOK, gin.H{
		"success": true,
		"university": gin.H{
			"id":          institution.ID,
			"name":        institution.Name,
			"city":        institution.City,
			"emailDomain": institution.EmailDomain,
		},
		"departments":     departments,
		"departmentCount": len(departments),
	})
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.registrations.Register(requestContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"success":              true,
		"message":              "Verification code sent to your email address",
		"email":                result.Email,
		"requiresVerification": result.RequiresVerification,
	})
}

type verifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// POST /auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.registrations.VerifyEmail(requestContext(c), req.Email, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"access_token": result.AccessToken,
		"user":         result.User,
		"message":      "Email verified, account created",
	})
}

type resendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /auth/resend-code
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req resendCodeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.registrations.ResendCode(requestContext(c), req.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"success": true,
		"message": "A new verification code was sent",
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.registrations.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// POST /auth/admin-login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.registrations.LoginAdmin(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"access_token": result.AccessToken,
		"admin":        result.User,
	})
}

// GET /auth/verify (behind auth middleware)
func (h *AuthHandler) Verify(c *gin.Context) {
	user, err := h.users.Profile(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"valid": true,
		"user":  user,
	})
}
