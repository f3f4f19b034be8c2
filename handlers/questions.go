package handlers

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/models"
)

// GenerateQuestions handles POST /api/questions/generate. Question
// generation is idempotent per product: if questions already exist they
// are returned as-is instead of asking the AI again.
func (h *Handlers) GenerateQuestions(c *gin.Context) {
	var req models.GenerateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body", "details": err.Error()})
		return
	}

	product, err := h.products.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		storeError(c, err, "product not found")
		return
	}

	existing, err := h.questions.ListByProduct(c.Request.Context(), product.ID)
	if err != nil {
		log.Errorf("Failed to list questions for product %s: %v", product.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	if len(existing) > 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"questions": existing}})
		return
	}

	generated := h.ai.GenerateQuestions(c.Request.Context(), product)

	questions := make([]models.Question, len(generated))
	for i, g := range generated {
		questions[i] = models.Question{
			Question: g.Question,
			Type:     g.Type,
			Options:  g.Options,
			Required: g.Required,
		}
	}

	questions, err = h.questions.InsertBatch(c.Request.Context(), product.ID, questions)
	if err != nil {
		log.Errorf("Failed to store questions for product %s: %v", product.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"questions": questions}})
}

// ListQuestions handles GET /api/questions/product/:productId.
func (h *Handlers) ListQuestions(c *gin.Context) {
	productID := c.Param("productId")

	if _, err := h.products.Get(c.Request.Context(), productID); err != nil {
		storeError(c, err, "product not found")
		return
	}

	questions, err := h.questions.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		log.Errorf("Failed to list questions for product %s: %v", productID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"questions": questions}})
}

// AnswerQuestion handles PUT /api/questions/:id/answer.
func (h *Handlers) AnswerQuestion(c *gin.Context) {
	var req models.AnswerQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body", "details": err.Error()})
		return
	}

	if err := h.questions.Answer(c.Request.Context(), c.Param("id"), req.Answer); err != nil {
		storeError(c, err, "question not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"message": "answer saved"}})
}
