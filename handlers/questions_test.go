package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/middleware"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/models"
)

var questionColumns = []string{
	"id", "product_id", "question", "type", "options", "required",
	"display_order", "answer", "created_at",
}

func questionRouter(h *Handlers, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
	})
	api := router.Group("/api")
	api.POST("/questions/generate", h.GenerateQuestions)
	api.GET("/questions/product/:productId", h.ListQuestions)
	api.PUT("/questions/:id/answer", h.AnswerQuestion)
	api.DELETE("/products/:id", h.DeleteProduct)
	return router
}

func TestGenerateQuestionsProductNotFound(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	router := questionRouter(h, "user-1", "user")
	rec := doJSON(router, "POST", "/api/questions/generate", gin.H{"productId": "missing"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateQuestionsIdempotent(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	expectProductRow(mock, "prod-1")

	now := time.Now().UTC().Truncate(time.Second)
	mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE product_id = ?")).
		WithArgs("prod-1").
		WillReturnRows(sqlmock.NewRows(questionColumns).
			AddRow("q-1", "prod-1", "Where are ingredients sourced?", models.QuestionTypeText, []byte(`[]`), true, 0, "", now))

	router := questionRouter(h, "user-1", "user")
	rec := doJSON(router, "POST", "/api/questions/generate", gin.H{"productId": "prod-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("existing questions should be returned with 200, got %d: %s", rec.Code, rec.Body.String())
	}
	// No new rows may be generated for a product that already has a set.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected store access: %v", err)
	}
}

func TestGenerateQuestionsFallback(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	expectProductRow(mock, "prod-1")
	mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE product_id = ?")).
		WithArgs("prod-1").
		WillReturnRows(sqlmock.NewRows(questionColumns))

	// Skincare gets the five base questions plus one category question.
	mock.ExpectBegin()
	for i := 0; i < 6; i++ {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO questions")).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	router := questionRouter(h, "user-1", "user")
	rec := doJSON(router, "POST", "/api/questions/generate", gin.H{"productId": "prod-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Questions []models.Question `json:"questions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data.Questions) != 6 {
		t.Fatalf("expected 6 generated questions, got %d", len(resp.Data.Questions))
	}
	for i, q := range resp.Data.Questions {
		if q.Order != i {
			t.Errorf("question %d has order %d", i, q.Order)
		}
		if q.ProductID != "prod-1" {
			t.Errorf("question %d bound to product %q", i, q.ProductID)
		}
	}
}

func TestAnswerQuestionNotFoundStatus(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM questions WHERE id = ?")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	router := questionRouter(h, "user-1", "user")
	rec := doJSON(router, "PUT", "/api/questions/missing/answer", gin.H{"answer": "organic"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteProductRequiresAdmin(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	router := questionRouter(h, "user-1", "user")
	rec := doJSON(router, "DELETE", "/api/products/prod-1", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin delete, got %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("forbidden delete must not touch the store: %v", err)
	}
}

func TestDeleteProductAsAdmin(t *testing.T) {
	h, mock, done := newTestHandlers(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = ?")).
		WithArgs("prod-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	router := questionRouter(h, "admin-1", middleware.RoleAdmin)
	rec := doJSON(router, "DELETE", "/api/products/prod-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
