package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/models"
)

// QuestionService handles the ordered disclosure questions of a product.
type QuestionService struct {
	db *sql.DB
}

// NewQuestionService creates a new question service instance
func NewQuestionService(db *sql.DB) *QuestionService {
	return &QuestionService{db: db}
}

// InsertBatch persists a generated question set in a single transaction:
// a set is stored whole or not at all. Ids, order and timestamps are
// assigned here; order follows slice position.
func (s *QuestionService) InsertBatch(ctx context.Context, productID string, questions []models.Question) ([]models.Question, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Errorf("Failed to begin transaction for product %s: %v", productID, err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Second)

	for i := range questions {
		q := &questions[i]
		q.ID = uuid.New().String()
		q.ProductID = productID
		q.Order = i
		q.CreatedAt = now

		options, err := json.Marshal(optionsOrEmpty(q.Options))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal options: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO questions (id, product_id, question, type, options, required, display_order, answer, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?)`,
			q.ID, q.ProductID, q.Question, q.Type, options, q.Required, q.Order, q.CreatedAt)
		if err != nil {
			log.Errorf("Failed to insert question for product %s: %v", productID, err)
			return nil, fmt.Errorf("failed to insert question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit questions: %w", err)
	}

	return questions, nil
}

// ListByProduct returns the questions of a product in display order.
func (s *QuestionService) ListByProduct(ctx context.Context, productID string) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, question, type, options, required, display_order, answer, created_at
		FROM questions WHERE product_id = ?
		ORDER BY display_order ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		var options []byte
		var answer sql.NullString

		if err := rows.Scan(&q.ID, &q.ProductID, &q.Question, &q.Type, &options, &q.Required, &q.Order, &answer, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &q.Options); err != nil {
				return nil, fmt.Errorf("failed to unmarshal options: %w", err)
			}
		}
		q.Answer = answer.String
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	return questions, nil
}

// CountByProduct returns how many questions exist for a product.
func (s *QuestionService) CountByProduct(ctx context.Context, productID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions WHERE product_id = ?", productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// Answer attaches an answer to a question. Existence is checked first
// because MySQL reports zero affected rows for a no-op update.
func (s *QuestionService) Answer(ctx context.Context, id, answer string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM questions WHERE id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up question: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "UPDATE questions SET answer = ? WHERE id = ?", answer, id); err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}
	return nil
}

func optionsOrEmpty(options []string) []string {
	if options == nil {
		return []string{}
	}
	return options
}
