package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTerm handles GET /api/admin/term. The singleton row is created on
// first read; there is no delete.
func (h *Handler) GetTerm(c *gin.Context) {
	term, err := h.store.CurrentTerm(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load current term"})
		return
	}
	c.JSON(http.StatusOK, term)
}

type termRequest struct {
	AcademicYear string `json:"academic_year" binding:"required"`
	Semester     string `json:"semester" binding:"required,oneof=1st 2nd summer summer2"`
}

// SetTerm handles PUT /api/admin/term. A single-row atomic update:
// in-flight decisions use whichever term they read at decision start,
// and controllers detect the change through the staleness check.
func (h *Handler) SetTerm(c *gin.Context) {
	var req termRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	term, err := h.store.SetTerm(c.Request.Context(), req.AcademicYear, req.Semester)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update term"})
		return
	}
	c.JSON(http.StatusOK, term)
}
