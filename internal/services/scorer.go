package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// AnswerScore is the external Answer Scorer's verdict for one answer.
type AnswerScore struct {
	OverallScore float64          `json:"overall_score"`
	Passed       bool             `json:"passed"`
	PerCriterion []CriterionScore `json:"per_criterion"`
}

type CriterionScore struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	RedFlag bool    `json:"red_flag"`
}

// ScorerService is the scoring collaborator the navigation engine
// consumes. The reference implementation is Gemini-backed; the engine
// itself never calls it.
type ScorerService interface {
	ScoreAnswer(ctx context.Context, questionText, answerText string, criteria []ScoringCriterion) (*AnswerScore, error)
}

type geminiScorer struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewGeminiScorer(gemini GeminiService, maxRetries int) ScorerService {
	return &geminiScorer{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

// ScoreAnswer implements ScorerService.
func (s *geminiScorer) ScoreAnswer(ctx context.Context, questionText, answerText string, criteria []ScoringCriterion) (*AnswerScore, error) {
	prompt := s.promptBuilder.BuildAnswerScoringPrompt(questionText, answerText, criteria)

	response, err := s.gemini.GenerateTextWithRetry(ctx, prompt, 0.3, s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to score answer: %w", err)
	}

	var score AnswerScore
	if err := json.Unmarshal([]byte(extractJSON(response)), &score); err != nil {
		return nil, fmt.Errorf("failed to parse scorer response: %w", err)
	}

	score.OverallScore = clamp01(score.OverallScore)
	for i := range score.PerCriterion {
		score.PerCriterion[i].Score = clamp01(score.PerCriterion[i].Score)
	}
	return &score, nil
}

// extractJSON tries to extract JSON from text that might contain markdown
// or other formatting around it.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}
	if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
