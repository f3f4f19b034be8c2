package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError describes a single invalid field. It is checked with
// errors.As at the HTTP boundary and mapped to a 400 response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateProduct is invoked before every product persistence call.
func ValidateProduct(p *Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(p.Brand) == "" {
		return &ValidationError{Field: "brand", Message: "brand is required"}
	}
	if !IsValidCategory(p.Category) {
		return &ValidationError{Field: "category", Message: fmt.Sprintf("category must be one of: %s", strings.Join(Categories, ", "))}
	}
	if len(p.Ingredients) == 0 {
		return &ValidationError{Field: "ingredients", Message: "at least one ingredient is required"}
	}
	for _, ing := range p.Ingredients {
		if strings.TrimSpace(ing) == "" {
			return &ValidationError{Field: "ingredients", Message: "ingredients must not be empty strings"}
		}
	}
	return nil
}

// SummaryMaxChars caps report summaries, counted in runes.
const SummaryMaxChars = 2000

// ValidateReport is invoked before every report persistence call.
func ValidateReport(r *Report) error {
	if utf8.RuneCountInString(r.Summary) > SummaryMaxChars {
		return &ValidationError{Field: "summary", Message: "summary must be at most 2000 characters"}
	}
	if !IsValidStatus(r.Status) {
		return &ValidationError{Field: "status", Message: "status must be draft, pending or completed"}
	}
	if r.Status == StatusCompleted && r.TransparencyScore < 0 {
		return &ValidationError{Field: "transparencyScore", Message: "a completed report requires a transparency score of at least 0"}
	}
	return nil
}
