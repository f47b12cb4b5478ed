package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dolapkampus/backend/internal/services"
	"github.com/dolapkampus/backend/pkg/errors"
	"github.com/dolapkampus/backend/pkg/response"
)

// UniversityHandler serves the institution listings used by registration screens.
type UniversityHandler struct {
	universities *services.UniversityService
}

func NewUniversityHandler(universities *services.UniversityService) *UniversityHandler {
	return &UniversityHandler{universities: universities}
}

// GET /universities
func (h *UniversityHandler) List(c *gin.Context) {
	institutions, err := h.universities.ListInstitutions(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"success":      true,
		"universities": institutions,
		"count":        len(institutions),
	})
}

// GET /universities/search?q=
func (h *UniversityHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		response.Error(c, errors.NewBadRequest("q query parameter is required"))
		return
	}

	results := h.universities.SearchInstitutions(term)

	response.OK(c, http.StatusOK, gin.H{
		"success": true,
		"results": results,
		"count":   len(results),
	})
}

// GET /universities/departments?name=
func (h *UniversityHandler) Departments(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		response.Error(c, errors.NewBadRequest("name query parameter is required"))
		return
	}

	departments := h.universities.DepartmentsForInstitution(name)

	response.OK(c, http.StatusOK, gin.H{
		"success":     true,
		"departments": departments,
		"count":       len(departments),
	})
}
