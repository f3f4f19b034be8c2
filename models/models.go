package models

import "time"

// Product categories supported by the catalog.
const (
	CategorySkincare     = "Skincare"
	CategoryFoodBeverage = "Food & Beverage"
	CategoryPersonalCare = "Personal Care"
	CategoryCleaning     = "Cleaning Products"
	CategoryClothing     = "Clothing"
	CategoryElectronics  = "Electronics"
	CategoryOther        = "Other"
)

// Categories lists every valid product category.
var Categories = []string{
	CategorySkincare,
	CategoryFoodBeverage,
	CategoryPersonalCare,
	CategoryCleaning,
	CategoryClothing,
	CategoryElectronics,
	CategoryOther,
}

// IsValidCategory reports whether category is one of the supported values.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Report statuses.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// IsValidStatus reports whether status is a known report status.
func IsValidStatus(status string) bool {
	return status == StatusDraft || status == StatusPending || status == StatusCompleted
}

// Question types.
const (
	QuestionTypeText        = "text"
	QuestionTypeSelect      = "select"
	QuestionTypeMultiSelect = "multiselect"
)

// User is the external identity record. It is referenced read-only for
// ownership and role checks; user management lives in the identity service.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Product is a shared catalog entity, owned by no user.
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Brand          string    `json:"brand"`
	Ingredients    []string  `json:"ingredients"`
	Description    string    `json:"description,omitempty"`
	Certifications []string  `json:"certifications,omitempty"`
	Packaging      string    `json:"packaging,omitempty"`
	Sustainability string    `json:"sustainability,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Question is a disclosure question attached to a product. Questions are
// ordered per product and keep the submitted answer once one is attached.
type Question struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Question  string    `json:"question"`
	Type      string    `json:"type"`
	Options   []string  `json:"options,omitempty"`
	Required  bool      `json:"required"`
	Order     int       `json:"order"`
	Answer    string    `json:"answer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Analysis holds the qualitative part of a transparency report.
type Analysis struct {
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	Recommendations []string `json:"recommendations"`
}

// Report is a scored transparency report, exclusively owned by the user
// who submitted it.
type Report struct {
	ID                string                 `json:"id"`
	ProductID         string                 `json:"product_id"`
	UserID            string                 `json:"user_id"`
	Summary           string                 `json:"summary"`
	TransparencyScore int                    `json:"transparency_score"`
	Analysis          Analysis               `json:"analysis"`
	Answers           map[string]interface{} `json:"answers"`
	PDFURL            string                 `json:"pdf_url,omitempty"`
	Status            string                 `json:"status"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// ReportStats is the aggregation returned by the stats overview endpoint.
// All fields are zero when the caller has no reports.
type ReportStats struct {
	TotalReports int            `json:"total_reports"`
	AverageScore float64        `json:"average_score"`
	MaxScore     int            `json:"max_score"`
	MinScore     int            `json:"min_score"`
	ByStatus     map[string]int `json:"by_status"`
	ScoreRanges  map[string]int `json:"score_ranges"`
}

// CreateProductRequest is the body of POST /api/products.
type CreateProductRequest struct {
	Name           string   `json:"name" binding:"required"`
	Category       string   `json:"category" binding:"required"`
	Brand          string   `json:"brand" binding:"required"`
	Ingredients    []string `json:"ingredients" binding:"required"`
	Description    string   `json:"description"`
	Certifications []string `json:"certifications"`
	Packaging      string   `json:"packaging"`
	Sustainability string   `json:"sustainability"`
}

// UpdateProductRequest is the body of PUT /api/products/:id. Nil fields
// are left untouched.
type UpdateProductRequest struct {
	Name           *string   `json:"name"`
	Category       *string   `json:"category"`
	Brand          *string   `json:"brand"`
	Ingredients    *[]string `json:"ingredients"`
	Description    *string   `json:"description"`
	Certifications *[]string `json:"certifications"`
	Packaging      *string   `json:"packaging"`
	Sustainability *string   `json:"sustainability"`
}

// CreateReportRequest is the body of POST /api/reports.
type CreateReportRequest struct {
	ProductID string                 `json:"productId" binding:"required"`
	Answers   map[string]interface{} `json:"answers"`
}

// UpdateReportRequest is the body of PUT /api/reports/:id. Nil fields are
// left untouched; the merge is last-write-wins.
type UpdateReportRequest struct {
	Summary           *string                 `json:"summary"`
	TransparencyScore *int                    `json:"transparencyScore"`
	Analysis          *Analysis               `json:"analysis"`
	Answers           *map[string]interface{} `json:"answers"`
	PDFURL            *string                 `json:"pdfUrl"`
	Status            *string                 `json:"status"`
}

// GenerateQuestionsRequest is the body of POST /api/questions/generate.
type GenerateQuestionsRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// AnswerQuestionRequest is the body of PUT /api/questions/:id/answer.
type AnswerQuestionRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// ReportListQuery carries the filters of GET /api/reports.
type ReportListQuery struct {
	Page     int
	Limit    int
	Status   string
	MinScore *int
	MaxScore *int
}
