package services

import (
	"math"
	"math/rand"
	"strings"
)

// ScoreInput carries everything the transparency scorer looks at.
type ScoreInput struct {
	// AIScore is the score reported by the AI service, if any. Non-finite
	// values are treated as absent.
	AIScore *float64
	// ExpectedQuestions is the number of questions the AI declared for the
	// product, or 0 when unknown.
	ExpectedQuestions int
	// Category is the product category string.
	Category string
	// Answers is the submitted answer mapping.
	Answers map[string]interface{}
}

// categoryBoosts rewards disclosure in high-scrutiny product categories.
// Matched case-insensitively by substring, first hit wins.
var categoryBoosts = []struct {
	substr string
	boost  int
}{
	{"skincare", 5},
	{"food", 4},
	{"personal", 3},
	{"care", 3},
	{"cleaning", 3},
	{"clothing", 2},
	{"apparel", 2},
	{"electronics", 1},
}

// CategoryBoost returns the fixed bonus for a product category.
func CategoryBoost(category string) int {
	lower := strings.ToLower(category)
	for _, cb := range categoryBoosts {
		if strings.Contains(lower, cb.substr) {
			return cb.boost
		}
	}
	return 0
}

// TransparencyScore blends the AI-provided score with answer completeness
// and the category boost into a final integer score in [0,100].
//
// baseline supplies the fallback base when the AI gave no usable score: it
// is called as baseline(40) and the result is added to 40, yielding a value
// in [40,79]. Pass nil to use math/rand. Tests inject a fixed source so the
// function stays deterministic.
func TransparencyScore(in ScoreInput, baseline func(n int) int) int {
	if baseline == nil {
		baseline = rand.Intn
	}

	var base float64
	if in.AIScore != nil && !math.IsNaN(*in.AIScore) && !math.IsInf(*in.AIScore, 0) {
		base = clamp(*in.AIScore, 0, 100)
	} else {
		base = float64(40 + baseline(40))
	}

	answered := len(in.Answers)
	questionCount := in.ExpectedQuestions
	if questionCount <= 0 {
		questionCount = answered
		if questionCount < 1 {
			questionCount = 1
		}
	}

	ratio := float64(answered) / float64(questionCount)
	if ratio > 1 {
		ratio = 1
	}

	computed := math.Round(base*0.6 + math.Round(ratio*100)*0.4)
	if ratio >= 0.5 {
		computed += float64(CategoryBoost(in.Category))
	} else {
		computed -= math.Floor((1 - ratio) * 5)
	}

	return int(clamp(computed, 0, 100))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
