package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/metrics"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/models"
)

// DefaultEndpoint is the OpenAI chat completions endpoint.
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalysisResult is what the report-creation flow gets back from the
// gateway. TransparencyScore is nil when the AI gave no usable score,
// which forces the scorer onto its fallback baseline.
type AnalysisResult struct {
	Summary           string          `json:"summary"`
	TransparencyScore *float64        `json:"transparencyScore,omitempty"`
	Analysis          models.Analysis `json:"analysis"`
	Questions         []string        `json:"questions,omitempty"`
}

// GeneratedQuestion is a single disclosure question produced for a product.
type GeneratedQuestion struct {
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required"`
}

// analysisWire tolerates both score field spellings the model may emit.
type analysisWire struct {
	Summary           string          `json:"summary"`
	TransparencyScore *float64        `json:"transparencyScore"`
	Score             *float64        `json:"score"`
	Analysis          models.Analysis `json:"analysis"`
	Questions         []string        `json:"questions"`
}

// Client calls the external AI service. A nil client or an empty API key
// keeps every operation on the local fallback generator, so callers never
// have to care whether the upstream is reachable.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewClient creates a new AI gateway client. The endpoint is injected so
// tests can point it at a fake server.
func NewClient(endpoint, apiKey, model string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

// AnalyzeProduct asks the AI service for a transparency analysis of the
// product given the submitted answers. Any transport, status or parse
// failure degrades to FallbackAnalysis; the caller never sees an error.
func (c *Client) AnalyzeProduct(ctx context.Context, product *models.Product, answers map[string]interface{}) AnalysisResult {
	if c == nil || c.apiKey == "" {
		metrics.AIRequestsTotal.WithLabelValues("fallback").Inc()
		return FallbackAnalysis(product, answers)
	}

	answersJSON, _ := json.Marshal(answers)
	prompt := fmt.Sprintf(`You are a product transparency auditor. Analyze the following product and the disclosure answers provided by its submitter.

Product: %s
Brand: %s
Category: %s
Ingredients: %s
Answers: %s

Respond with JSON only, in this exact shape:
{
  "summary": "one-paragraph transparency summary",
  "transparencyScore": [0-100],
  "analysis": {
    "strengths": ["..."],
    "improvements": ["..."],
    "recommendations": ["..."]
  },
  "questions": ["the disclosure questions you expected answers for"]
}`,
		product.Name, product.Brand, product.Category,
		strings.Join(product.Ingredients, ", "), string(answersJSON))

	start := time.Now()
	content, err := c.chat(ctx, prompt)
	metrics.AIRequestDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		log.WithError(err).Errorf("AI analysis failed for product %s, using fallback", product.ID)
		metrics.AIRequestsTotal.WithLabelValues("fallback").Inc()
		return FallbackAnalysis(product, answers)
	}

	var wire analysisWire
	if err := json.Unmarshal([]byte(extractJSON(content)), &wire); err != nil {
		log.Errorf("Failed to parse AI analysis response %q: %v", content, err)
		metrics.AIRequestsTotal.WithLabelValues("fallback").Inc()
		return FallbackAnalysis(product, answers)
	}

	score := wire.TransparencyScore
	if score == nil {
		score = wire.Score
	}

	result := AnalysisResult{
		Summary:           wire.Summary,
		TransparencyScore: score,
		Analysis:          wire.Analysis,
		Questions:         wire.Questions,
	}
	if result.Summary == "" {
		result.Summary = fallbackSummary(product)
	}

	metrics.AIRequestsTotal.WithLabelValues("ok").Inc()
	return result
}

// GenerateQuestions asks the AI service for disclosure questions for a
// product, degrading to FallbackQuestions on any failure.
func (c *Client) GenerateQuestions(ctx context.Context, product *models.Product) []GeneratedQuestion {
	if c == nil || c.apiKey == "" {
		metrics.AIRequestsTotal.WithLabelValues("fallback").Inc()
		return FallbackQuestions(product)
	}

	prompt := fmt.Sprintf(`Generate disclosure questions for a product transparency report.

Product: %s
Brand: %s
Category: %s
Ingredients: %s

Respond with JSON only: an array of objects {"question": "...", "type": "text"|"select"|"multiselect", "options": ["..."], "required": true|false}. 5 to 8 questions.`,
		product.Name, product.Brand, product.Category, strings.Join(product.Ingredients, ", "))

	start := time.Now()
	content, err := c.chat(ctx, prompt)
	metrics.AIRequestDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		log.WithError(err).Errorf("AI question generation failed for product %s, using fallback", product.ID)
		metrics.AIRequestsTotal.WithLabelValues("fallback").Inc()
		return FallbackQuestions(product)
	}

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(extractJSON(content)), &questions); err != nil || len(questions) == 0 {
		log.Errorf("Failed to parse AI question response %q: %v", content, err)
		metrics.AIRequestsTotal.WithLabelValues("fallback").Inc()
		return FallbackQuestions(product)
	}

	metrics.AIRequestsTotal.WithLabelValues("ok").Inc()
	return questions
}

// chat performs a single chat completion call. No retries: one failed
// attempt means the caller falls back.
func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	reqBody := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// extractJSON strips markdown code fences the model sometimes wraps its
// JSON output in.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}

func fallbackSummary(product *models.Product) string {
	return fmt.Sprintf("Transparency report for %s by %s. This report was generated from the disclosure answers submitted for the product.",
		product.Name, product.Brand)
}

// FallbackAnalysis builds a deterministic local analysis when the AI
// service is unavailable. The transparency score is intentionally omitted
// so the scorer applies its own baseline.
func FallbackAnalysis(product *models.Product, answers map[string]interface{}) AnalysisResult {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var strengths []string
	hasSustainability := false
	hasPackaging := false
	hasCertifications := false
	for _, k := range keys {
		lower := strings.ToLower(k)
		switch {
		case strings.Contains(lower, "sustainab"):
			hasSustainability = true
		case strings.Contains(lower, "packag"):
			hasPackaging = true
		case strings.Contains(lower, "certif"):
			hasCertifications = true
		}
	}

	if hasSustainability {
		strengths = append(strengths, "Sustainability practices were disclosed")
	}
	if hasCertifications {
		strengths = append(strengths, "Certification details were provided")
	}
	if len(product.Ingredients) > 0 {
		strengths = append(strengths, "Full ingredient list is available")
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "Disclosure answers were submitted for review")
	}

	var improvements []string
	if !hasPackaging {
		improvements = append(improvements, "Disclose packaging materials and disposal guidance")
	}
	if !hasSustainability {
		improvements = append(improvements, "Provide information about sustainability practices")
	}
	if len(answers) < 3 {
		improvements = append(improvements, "Answer more of the disclosure questions to improve the report")
	}
	if len(improvements) == 0 {
		improvements = append(improvements, "Keep disclosures up to date as the product changes")
	}

	recommendations := []string{
		"Publish sourcing details for every listed ingredient",
		"Obtain third-party certification for key product claims",
	}

	return AnalysisResult{
		Summary:  fallbackSummary(product),
		Analysis: models.Analysis{
			Strengths:       strengths,
			Improvements:    improvements,
			Recommendations: recommendations,
		},
	}
}

// baseQuestions are asked for every product regardless of category.
var baseQuestions = []GeneratedQuestion{
	{Question: "Where are the primary ingredients or materials sourced from?", Type: models.QuestionTypeText, Required: true},
	{Question: "Which certifications does this product hold?", Type: models.QuestionTypeMultiSelect, Options: []string{"Organic", "Fair Trade", "Cruelty-Free", "Vegan", "None"}, Required: true},
	{Question: "What packaging materials are used?", Type: models.QuestionTypeSelect, Options: []string{"Recyclable", "Biodegradable", "Mixed", "Non-recyclable"}, Required: true},
	{Question: "Describe the sustainability practices in your supply chain.", Type: models.QuestionTypeText, Required: false},
	{Question: "How is product quality tested before release?", Type: models.QuestionTypeText, Required: false},
}

// categoryQuestions adds one category-specific question when the product
// category matches.
var categoryQuestions = map[string]GeneratedQuestion{
	models.CategorySkincare:     {Question: "Are any ingredients known allergens or irritants?", Type: models.QuestionTypeText, Required: true},
	models.CategoryFoodBeverage: {Question: "What is the nutritional profile per serving?", Type: models.QuestionTypeText, Required: true},
	models.CategoryPersonalCare: {Question: "Is the product tested on animals at any stage?", Type: models.QuestionTypeSelect, Options: []string{"Yes", "No"}, Required: true},
	models.CategoryCleaning:     {Question: "Which active chemicals does the formula contain?", Type: models.QuestionTypeText, Required: true},
	models.CategoryClothing:     {Question: "Under what labor conditions is the garment produced?", Type: models.QuestionTypeText, Required: true},
	models.CategoryElectronics:  {Question: "How should the product be recycled at end of life?", Type: models.QuestionTypeText, Required: true},
}

// FallbackQuestions builds the deterministic local question set used when
// the AI service is unavailable.
func FallbackQuestions(product *models.Product) []GeneratedQuestion {
	questions := make([]GeneratedQuestion, len(baseQuestions))
	copy(questions, baseQuestions)
	if q, ok := categoryQuestions[product.Category]; ok {
		questions = append(questions, q)
	}
	return questions
}
