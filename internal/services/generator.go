package services

import (
	"context"
	"fmt"
	"strings"
)

// QuestionGenerator is the Question Text Generator collaborator. The slot
// manager decides when to call it and with what context; prose generation
// itself lives behind this interface.
type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, sourceKey, sourceValue, relatedFacts string) (string, error)
}

type geminiQuestionGenerator struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewGeminiQuestionGenerator(gemini GeminiService, maxRetries int) QuestionGenerator {
	return &geminiQuestionGenerator{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

// GenerateQuestion implements QuestionGenerator.
func (g *geminiQuestionGenerator) GenerateQuestion(ctx context.Context, sourceKey, sourceValue, relatedFacts string) (string, error) {
	prompt := g.promptBuilder.BuildContextualQuestionPrompt(sourceKey, sourceValue, relatedFacts)

	text, err := g.gemini.GenerateTextWithRetry(ctx, prompt, 0.7, g.maxRetries)
	if err != nil {
		return "", fmt.Errorf("failed to generate contextual question: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("generator returned empty question text")
	}
	return text, nil
}
