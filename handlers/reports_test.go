package handlers

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/database"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/middleware"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/models"
)

func newTestHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	h := NewHandlers(
		database.NewProductService(db),
		database.NewQuestionService(db),
		database.NewReportService(db),
		nil, // nil AI client: every analysis takes the fallback path
	)
	h.baseline = func(int) int { return 17 }
	return h, mock, func() { db.Close() }
}

func reportRouter(h *Handlers, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
	})
	api := router.Group("/api")
	api.POST("/reports", h.CreateReport)
	api.GET("/reports", h.ListReports)
	api.GET("/reports/stats/overview", h.GetReportStats)
	api.GET("/reports/:id", h.GetReport)
	api.PUT("/reports/:id", h.UpdateReport)
	api.DELETE("/reports/:id", h.DeleteReport)
	return router
}

var productColumns = []string{
	"id", "name", "category", "brand", "ingredients", "description",
	"certifications", "packaging", "sustainability", "created_at", "updated_at",
}

var reportColumns = []string{
	"id", "product_id", "user_id", "summary", "transparency_score",
	"analysis", "answers", "pdf_url", "status", "created_at", "updated_at",
}

func expectProductRow(mock sqlmock.Sqlmock, id string) {
	now := time.Now().UTC().Truncate(time.Second)
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(
			id, "Gentle Cleanser", models.CategorySkincare, "PureSkin",
			[]byte(`["water","glycerin"]`), "", []byte(`[]`), "", "", now, now))
}

func expectReportRow(mock sqlmock.Sqlmock, id, ownerID string, score int, status string) {
	now := time.Now().UTC().Truncate(time.Second)
	row := []driver.Value{
		id, "prod-1", ownerID, "a summary", score,
		[]byte(`{"strengths":[],"improvements":[],"recommendations":[]}`),
		[]byte(`{}`), nil, status, now, now,
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM reports WHERE id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(reportColumns).AddRow(row...))
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateReportProductNotFound(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	router := reportRouter(h, "user-1", "user")
	rec := doJSON(router, "POST", "/api/reports", gin.H{
		"productId": "missing",
		"answers":   gin.H{"q1": "a"},
	})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	// No report row may be written for a missing product.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected store access: %v", err)
	}
}

func TestCreateReportMissingAnswers(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	router := reportRouter(h, "user-1", "user")
	rec := doJSON(router, "POST", "/api/reports", gin.H{"productId": "prod-1"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("store touched before validation: %v", err)
	}
}

func TestCreateReportFallbackScore(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	expectProductRow(mock, "prod-1")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reports")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	router := reportRouter(h, "user-1", "user")
	rec := doJSON(router, "POST", "/api/reports", gin.H{
		"productId": "prod-1",
		"answers":   gin.H{"sustainability": "recycled packaging"},
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool          `json:"success"`
		Data    models.Report `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success envelope")
	}
	// Baseline 17 means base 40+17=57; one answer with no declared
	// questions gives completeness 1: round(57*0.6+40)+5 = 79.
	if resp.Data.TransparencyScore != 79 {
		t.Errorf("expected fallback score 79, got %d", resp.Data.TransparencyScore)
	}
	if resp.Data.Status != models.StatusCompleted {
		t.Errorf("expected completed status, got %q", resp.Data.Status)
	}
	if resp.Data.UserID != "user-1" {
		t.Errorf("report should be owned by the caller, got %q", resp.Data.UserID)
	}
	if resp.Data.Summary == "" {
		t.Error("fallback summary missing")
	}
}

func TestCreateReportStoreFailure(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	expectProductRow(mock, "prod-1")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reports")).
		WillReturnError(errors.New("connection refused"))

	router := reportRouter(h, "user-1", "user")
	rec := doJSON(router, "POST", "/api/reports", gin.H{
		"productId": "prod-1",
		"answers":   gin.H{"q1": "a"},
	})

	// An insert failure is a server fault; the product was found.
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "not found") {
		t.Errorf("store failure must not be reported as not found: %s", rec.Body.String())
	}
}

func TestGetReportOwnership(t *testing.T) {
	testCases := []struct {
		name       string
		actorID    string
		actorRole  string
		wantStatus int
	}{
		{"owner can read", "owner-1", "user", http.StatusOK},
		{"stranger is forbidden", "user-2", "user", http.StatusForbidden},
		{"admin can read", "admin-1", "admin", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, mock, done := newTestHandlers(t)
			defer done()

			expectReportRow(mock, "rep-1", "owner-1", 87, models.StatusCompleted)

			router := reportRouter(h, tc.actorID, tc.actorRole)
			rec := doJSON(router, "GET", "/api/reports/rep-1", nil)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetReportNotFound(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("FROM reports WHERE id = ?")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	router := reportRouter(h, "user-1", "user")
	rec := doJSON(router, "GET", "/api/reports/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateReportForbiddenWritesNothing(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	expectReportRow(mock, "rep-1", "owner-1", 87, models.StatusCompleted)

	router := reportRouter(h, "user-2", "user")
	rec := doJSON(router, "PUT", "/api/reports/rep-1", gin.H{"summary": "hijacked"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("forbidden update must not touch the store: %v", err)
	}
}

func TestUpdateReportRejectsNegativeCompletedScore(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	expectReportRow(mock, "rep-1", "owner-1", 87, models.StatusCompleted)

	router := reportRouter(h, "owner-1", "user")
	rec := doJSON(router, "PUT", "/api/reports/rep-1", gin.H{"transparencyScore": -5})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateReportPartialMerge(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	expectReportRow(mock, "rep-1", "owner-1", 87, models.StatusCompleted)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	router := reportRouter(h, "owner-1", "user")
	rec := doJSON(router, "PUT", "/api/reports/rep-1", gin.H{"summary": "updated summary"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.Report `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Data.Summary != "updated summary" {
		t.Errorf("summary not merged: %q", resp.Data.Summary)
	}
	if resp.Data.TransparencyScore != 87 {
		t.Errorf("unset fields must survive the merge, got score %d", resp.Data.TransparencyScore)
	}
}

func TestDeleteReportByAdmin(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	expectReportRow(mock, "rep-1", "owner-1", 87, models.StatusCompleted)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reports WHERE id = ?")).
		WithArgs("rep-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	router := reportRouter(h, "admin-1", "admin")
	rec := doJSON(router, "DELETE", "/api/reports/rep-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListReportsBadScoreFilter(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	router := reportRouter(h, "user-1", "user")
	rec := doJSON(router, "GET", "/api/reports?minScore=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("store touched on invalid filter: %v", err)
	}
}

func TestTruncateSummaryRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", models.SummaryMaxChars+7)
	got := truncateSummary(long, models.SummaryMaxChars)
	if n := utf8.RuneCountInString(got); n != models.SummaryMaxChars {
		t.Errorf("expected %d runes after truncation, got %d", models.SummaryMaxChars, n)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation split a rune and produced invalid UTF-8")
	}

	short := "café"
	if truncateSummary(short, models.SummaryMaxChars) != short {
		t.Error("short summaries must pass through unchanged")
	}
}

func TestReportStatsEmpty(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	statsColumns := []string{
		"count", "avg", "max", "min",
		"draft", "pending", "completed",
		"b0", "b1", "b2", "b3", "b4",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM reports WHERE user_id = ?")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(statsColumns).AddRow(0, 0.0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0))

	router := reportRouter(h, "user-1", "user")
	rec := doJSON(router, "GET", "/api/reports/stats/overview", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats on empty set must be 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.ReportStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.TotalReports != 0 || resp.Data.AverageScore != 0 {
		t.Errorf("expected zeroed stats, got %+v", resp.Data)
	}
}
