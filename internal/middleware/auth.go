package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/dolapkampus/backend/internal/auth"
	"github.com/dolapkampus/backend/pkg/errors"
	"github.com/dolapkampus/backend/pkg/response"
)

const (
	CtxClaimsKey        = "authClaims"
	CtxUserIDKey        = "userID"
	CtxInstitutionIDKey = "institutionID"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.AbortError(c, errors.ErrUnauthorized)
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.AbortError(c, errors.ErrInvalidToken)
			return
		}

		// Propagate identity into request context
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		if claims.InstitutionID != "" {
			c.Set(CtxInstitutionIDKey, claims.InstitutionID)
		}

		c.Next()
	}
}
