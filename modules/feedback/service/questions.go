package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/andreypavlenko/scout/internal/platform/llm"
	"github.com/andreypavlenko/scout/modules/feedback/model"
	"github.com/google/uuid"
)

const questionGenSystemPrompt = `You prepare three short feedback questions for a conference attendee who just met a startup. Given the startup's name and description, return a JSON array of exactly three objects:
[{"text": "...", "placeholder": "..."}, ...]

Question 1 covers the technical side of what they saw, question 2 the business fit, question 3 the concrete next action. Keep each question under 20 words. Return only the JSON array.`

// generateQuestions asks the LLM for three tailored questions, falling back
// to templates so a session can always start.
func (s *FeedbackService) generateQuestions(ctx context.Context, startupName, startupDescription string) []model.Question {
	if s.gateway != nil && s.gateway.Available() {
		if questions, err := s.generateQuestionsLLM(ctx, startupName, startupDescription); err == nil {
			return questions
		}
	}
	return templateQuestions(startupName)
}

func (s *FeedbackService) generateQuestionsLLM(ctx context.Context, startupName, startupDescription string) ([]model.Question, error) {
	prompt := fmt.Sprintf("Startup: %s\nDescription: %s", startupName, startupDescription)

	resp, err := s.gateway.Complete(ctx, &llm.Request{
		System:    questionGenSystemPrompt,
		Messages:  []llm.Message{llm.NewUserMessage(prompt)},
		MaxTokens: 500,
	})
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Text        string `json:"text"`
		Placeholder string `json:"placeholder"`
	}
	content := extractJSONArray(resp.Content)
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("unparseable question payload: %w", err)
	}
	if len(raw) != model.QuestionCount {
		return nil, fmt.Errorf("expected %d questions, got %d", model.QuestionCount, len(raw))
	}

	categories := []model.QuestionCategory{
		model.CategoryTechnical,
		model.CategoryBusiness,
		model.CategoryAction,
	}

	questions := make([]model.Question, 0, model.QuestionCount)
	for i, q := range raw {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, fmt.Errorf("question %d is empty", i+1)
		}
		questions = append(questions, model.Question{
			ID:          uuid.New().String(),
			Text:        text,
			Category:    categories[i],
			Placeholder: strings.TrimSpace(q.Placeholder),
		})
	}
	return questions, nil
}

// templateQuestions are the deterministic offline fallback, in the fixed
// Technical, Business, Action order.
func templateQuestions(startupName string) []model.Question {
	return []model.Question{
		{
			ID:          uuid.New().String(),
			Text:        fmt.Sprintf("What stood out technically in what %s showed you?", startupName),
			Category:    model.CategoryTechnical,
			Placeholder: "e.g. their architecture, demo, or integration story",
		},
		{
			ID:          uuid.New().String(),
			Text:        fmt.Sprintf("Where could %s fit your business, and what value would that unlock?", startupName),
			Category:    model.CategoryBusiness,
			Placeholder: "e.g. a use case, team, or expected impact",
		},
		{
			ID:          uuid.New().String(),
			Text:        "What is the concrete next step after this meeting?",
			Category:    model.CategoryAction,
			Placeholder: "e.g. schedule a demo, intro to a team, pass",
		},
	}
}

// extractJSONArray trims prose around a JSON array in model output.
func extractJSONArray(content string) string {
	start := strings.IndexByte(content, '[')
	end := strings.LastIndexByte(content, ']')
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
