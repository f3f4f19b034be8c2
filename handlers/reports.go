package handlers

import (
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/metrics"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/middleware"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/models"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/services"
)

// CreateReport handles POST /api/reports. It loads the product, asks the
// AI gateway for an analysis (falling back locally when the service is
// unreachable), computes the transparency score and persists the report
// as completed.
func (h *Handlers) CreateReport(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body", "details": err.Error()})
		return
	}
	if req.Answers == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation failed", "details": gin.H{"answers": "answers must be an object"}})
		return
	}

	product, err := h.products.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		storeError(c, err, "product not found")
		return
	}

	// The AI call never fails outward; unavailability degrades to the
	// local fallback, which simply leaves the score to the baseline.
	result := h.ai.AnalyzeProduct(c.Request.Context(), product, req.Answers)

	score := services.TransparencyScore(services.ScoreInput{
		AIScore:           result.TransparencyScore,
		ExpectedQuestions: len(result.Questions),
		Category:          product.Category,
		Answers:           req.Answers,
	}, h.baseline)

	summary := truncateSummary(result.Summary, models.SummaryMaxChars)

	report := &models.Report{
		ProductID:         product.ID,
		UserID:            userID,
		Summary:           summary,
		TransparencyScore: score,
		Analysis:          result.Analysis,
		Answers:           req.Answers,
		Status:            models.StatusCompleted,
	}

	if err := h.reports.Create(c.Request.Context(), report); err != nil {
		log.Errorf("Failed to create report for user %s: %v", userID, err)
		storeError(c, err, "report not found")
		return
	}

	metrics.ReportsCreatedTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": report})
}

// ListReports handles GET /api/reports. The listing is always scoped to
// the caller's own reports.
func (h *Handlers) ListReports(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	query := models.ReportListQuery{
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 20),
		Status: c.Query("status"),
	}
	if query.Status != "" && !models.IsValidStatus(query.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation failed", "details": gin.H{"status": "status must be draft, pending or completed"}})
		return
	}
	if v, ok, err := optionalIntQuery(c, "minScore"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation failed", "details": gin.H{"minScore": "minScore must be an integer"}})
		return
	} else if ok {
		query.MinScore = &v
	}
	if v, ok, err := optionalIntQuery(c, "maxScore"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation failed", "details": gin.H{"maxScore": "maxScore must be an integer"}})
		return
	} else if ok {
		query.MaxScore = &v
	}

	reports, total, err := h.reports.List(c.Request.Context(), userID, query)
	if err != nil {
		log.Errorf("Failed to list reports for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"reports": reports,
			"total":   total,
			"page":    query.Page,
			"limit":   query.Limit,
		},
	})
}

// GetReport handles GET /api/reports/:id with the owner-or-admin rule.
func (h *Handlers) GetReport(c *gin.Context) {
	report, ok := h.loadOwnedReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// UpdateReport handles PUT /api/reports/:id as a partial field merge.
// Concurrent updates are last-write-wins.
func (h *Handlers) UpdateReport(c *gin.Context) {
	report, ok := h.loadOwnedReport(c)
	if !ok {
		return
	}

	var req models.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body", "details": err.Error()})
		return
	}

	if req.Summary != nil {
		report.Summary = *req.Summary
	}
	if req.TransparencyScore != nil {
		report.TransparencyScore = *req.TransparencyScore
	}
	if req.Analysis != nil {
		report.Analysis = *req.Analysis
	}
	if req.Answers != nil {
		report.Answers = *req.Answers
	}
	if req.PDFURL != nil {
		report.PDFURL = *req.PDFURL
	}
	if req.Status != nil {
		report.Status = *req.Status
	}

	if err := h.reports.Update(c.Request.Context(), report); err != nil {
		storeError(c, err, "report not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// DeleteReport handles DELETE /api/reports/:id.
func (h *Handlers) DeleteReport(c *gin.Context) {
	report, ok := h.loadOwnedReport(c)
	if !ok {
		return
	}

	if err := h.reports.Delete(c.Request.Context(), report.ID); err != nil {
		storeError(c, err, "report not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"message": "report deleted"}})
}

// GetReportStats handles GET /api/reports/stats/overview, aggregating over
// the caller's own reports.
func (h *Handlers) GetReportStats(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	stats, err := h.reports.Stats(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("Failed to aggregate report stats for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// loadOwnedReport fetches the report from the path id and enforces the
// owner-or-admin rule. It writes the error response itself when the
// report is missing or access is forbidden.
func (h *Handlers) loadOwnedReport(c *gin.Context) (*models.Report, bool) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "report not found")
		return nil, false
	}

	actorID := c.GetString(middleware.ContextUserID)
	actorRole := c.GetString(middleware.ContextRole)
	if !middleware.CanModify(actorID, actorRole, report.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "you do not have permission to access this report"})
		return nil, false
	}

	return report, true
}

func intQuery(c *gin.Context, key string, defaultValue int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return defaultValue
}

func optionalIntQuery(c *gin.Context, key string) (int, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// truncateSummary caps a summary at max characters without splitting a
// multi-byte rune at the boundary.
func truncateSummary(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
