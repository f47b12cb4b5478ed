package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dolapkampus/backend/pkg/response"
)

// Health returns a simple status payload useful for readiness checks.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.OK(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
