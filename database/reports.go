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

// ReportService handles transparency report persistence, listing and
// aggregation. Ownership checks happen at the handler layer; every query
// here that takes a userID is already identity-scoped.
type ReportService struct {
	db *sql.DB
}

// NewReportService creates a new report service instance
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{db: db}
}

// Create validates and persists a new report.
func (s *ReportService) Create(ctx context.Context, r *models.Report) error {
	if err := models.ValidateReport(r); err != nil {
		return err
	}

	r.ID = uuid.New().String()
	now := time.Now().UTC().Truncate(time.Second)
	r.CreatedAt = now
	r.UpdatedAt = now

	analysis, answers, err := marshalReportDocs(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, product_id, user_id, summary, transparency_score, analysis, answers, pdf_url, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProductID, r.UserID, r.Summary, r.TransparencyScore, analysis, answers, nullable(r.PDFURL), r.Status, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		log.Errorf("Failed to insert report for product %s: %v", r.ProductID, err)
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

// Get returns a single report by id, or ErrNotFound.
func (s *ReportService) Get(ctx context.Context, id string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, user_id, summary, transparency_score, analysis, answers, pdf_url, status, created_at, updated_at
		FROM reports WHERE id = ?`, id)

	var r models.Report
	var analysis, answers []byte
	var pdfURL sql.NullString

	err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Summary, &r.TransparencyScore, &analysis, &answers, &pdfURL, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	if err := unmarshalReportDocs(&r, analysis, answers); err != nil {
		return nil, err
	}
	r.PDFURL = pdfURL.String

	return &r, nil
}

// List returns one page of the user's reports matching the query filters,
// together with the total matching count.
func (s *ReportService) List(ctx context.Context, userID string, q models.ReportListQuery) ([]models.Report, int, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	where := " WHERE user_id = ?"
	args := []interface{}{userID}
	if q.Status != "" {
		where += " AND status = ?"
		args = append(args, q.Status)
	}
	if q.MinScore != nil {
		where += " AND transparency_score >= ?"
		args = append(args, *q.MinScore)
	}
	if q.MaxScore != nil {
		where += " AND transparency_score <= ?"
		args = append(args, *q.MaxScore)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	args = append(args, q.Limit, (q.Page-1)*q.Limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, user_id, summary, transparency_score, analysis, answers, pdf_url, status, created_at, updated_at
		FROM reports`+where+`
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var r models.Report
		var analysis, answers []byte
		var pdfURL sql.NullString

		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Summary, &r.TransparencyScore, &analysis, &answers, &pdfURL, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan report: %w", err)
		}
		if err := unmarshalReportDocs(&r, analysis, answers); err != nil {
			return nil, 0, err
		}
		r.PDFURL = pdfURL.String
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, total, nil
}

// Update writes the merged report back. The merge itself happens at the
// handler after the ownership check; concurrent updates are
// last-write-wins.
func (s *ReportService) Update(ctx context.Context, r *models.Report) error {
	if err := models.ValidateReport(r); err != nil {
		return err
	}

	r.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	analysis, answers, err := marshalReportDocs(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE reports
		SET summary = ?, transparency_score = ?, analysis = ?, answers = ?, pdf_url = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		r.Summary, r.TransparencyScore, analysis, answers, nullable(r.PDFURL), r.Status, r.UpdatedAt, r.ID)
	if err != nil {
		log.Errorf("Failed to update report %s: %v", r.ID, err)
		return fmt.Errorf("failed to update report: %w", err)
	}

	return nil
}

// Delete removes a report. Deleting an already-removed id yields
// ErrNotFound.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the user's reports: totals, score spread, per-status
// counts and a fixed five-bucket score histogram. An empty report set
// yields zeroed fields, not an error.
func (s *ReportService) Stats(ctx context.Context, userID string) (*models.ReportStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(AVG(transparency_score), 0),
			COALESCE(MAX(transparency_score), 0),
			COALESCE(MIN(transparency_score), 0),
			COALESCE(SUM(CASE WHEN status = 'draft' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transparency_score < 20 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transparency_score >= 20 AND transparency_score < 40 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transparency_score >= 40 AND transparency_score < 60 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transparency_score >= 60 AND transparency_score < 80 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transparency_score >= 80 THEN 1 ELSE 0 END), 0)
		FROM reports WHERE user_id = ?`, userID)

	stats := &models.ReportStats{}
	var draft, pending, completed int
	var b0, b1, b2, b3, b4 int

	err := row.Scan(&stats.TotalReports, &stats.AverageScore, &stats.MaxScore, &stats.MinScore,
		&draft, &pending, &completed, &b0, &b1, &b2, &b3, &b4)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate report stats: %w", err)
	}

	stats.ByStatus = map[string]int{
		models.StatusDraft:     draft,
		models.StatusPending:   pending,
		models.StatusCompleted: completed,
	}
	stats.ScoreRanges = map[string]int{
		"0-19":   b0,
		"20-39":  b1,
		"40-59":  b2,
		"60-79":  b3,
		"80-100": b4,
	}

	return stats, nil
}

func marshalReportDocs(r *models.Report) ([]byte, []byte, error) {
	analysis, err := json.Marshal(r.Analysis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	if r.Answers == nil {
		r.Answers = map[string]interface{}{}
	}
	answers, err := json.Marshal(r.Answers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal answers: %w", err)
	}
	return analysis, answers, nil
}

func unmarshalReportDocs(r *models.Report, analysis, answers []byte) error {
	if len(analysis) > 0 {
		if err := json.Unmarshal(analysis, &r.Analysis); err != nil {
			return fmt.Errorf("failed to unmarshal analysis: %w", err)
		}
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &r.Answers); err != nil {
			return fmt.Errorf("failed to unmarshal answers: %w", err)
		}
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
