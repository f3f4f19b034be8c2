package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/database"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/models"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/openai"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	products  *database.ProductService
	questions *database.QuestionService
	reports   *database.ReportService
	ai        *openai.Client

	// baseline overrides the scorer's fallback randomness in tests.
	baseline func(n int) int
}

// NewHandlers creates a new handlers instance
func NewHandlers(products *database.ProductService, questions *database.QuestionService, reports *database.ReportService, ai *openai.Client) *Handlers {
	return &Handlers{
		products:  products,
		questions: questions,
		reports:   reports,
		ai:        ai,
	}
}

// HealthCheck returns the service health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "veriscope-ai-backend",
	})
}

// storeError maps store-layer failures onto the response envelope:
// ErrNotFound becomes 404, validation failures 400 with field details,
// anything else a 500 without internal detail.
func storeError(c *gin.Context, err error, notFoundMsg string) {
	var vErr *models.ValidationError
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": notFoundMsg})
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "validation failed",
			"details": gin.H{vErr.Field: vErr.Message},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}
}
