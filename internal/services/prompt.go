package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// ScoringCriterion is one criterion the scorer grades an answer against.
type ScoringCriterion struct {
	ID        string
	SkillName string
	Weight    float64
	Mandatory bool
}

// BuildAnswerScoringPrompt creates the prompt for scoring a candidate's
// answer against the node's criteria.
func (pb *PromptBuilder) BuildAnswerScoringPrompt(questionText, answerText string, criteria []ScoringCriterion) string {
	var criteriaLines []string
	for _, c := range criteria {
		mandatory := ""
		if c.Mandatory {
			mandatory = " (mandatory)"
		}
		criteriaLines = append(criteriaLines, fmt.Sprintf("- id: %s, skill: %s, weight: %.2f%s", c.ID, c.SkillName, c.Weight, mandatory))
	}
	if len(criteriaLines) == 0 {
		criteriaLines = append(criteriaLines, "- id: overall, skill: overall, weight: 1.00")
	}

	return fmt.Sprintf(`You are an expert technical interviewer scoring a candidate's answer.

QUESTION:
%s

CANDIDATE'S ANSWER:
%s

SCORING CRITERIA:
%s

Score the answer against each criterion on a 0.0-1.0 scale. Mark a
criterion as a red flag when the answer reveals a concerning gap,
dishonesty, or a disqualifying attitude for that skill.

Return your response in the following JSON format:
{
  "overall_score": <0.0-1.0, weighted by the criterion weights>,
  "passed": <true if overall_score >= 0.5 and no red flags>,
  "per_criterion": [
    {"id": "<criterion id>", "score": <0.0-1.0>, "red_flag": <true/false>}
  ]
}

Be objective. Quote specific parts of the answer to justify low scores or red flags.`,
		questionText, answerText, strings.Join(criteriaLines, "\n"))
}

// BuildContextualQuestionPrompt creates the prompt for generating one
// ad-hoc follow-up question from a candidate-specific context source.
func (pb *PromptBuilder) BuildContextualQuestionPrompt(sourceKey, sourceValue, relatedFacts string) string {
	if relatedFacts == "" {
		relatedFacts = "No additional resume context available."
	}

	return fmt.Sprintf(`You are an expert technical interviewer preparing a follow-up question.

CONTEXT SOURCE (%s):
%s

RELATED RESUME CONTEXT:
%s

Write exactly ONE interview question that digs into this context. The
question must be specific to the candidate's stated experience, open
ended, and answerable in 1-2 minutes of speech.

Return ONLY the question text, no preamble and no JSON.`,
		sourceKey, sourceValue, relatedFacts)
}

// BuildRetrievalQuery creates the query used to pull related resume
// chunks for a context source before question generation.
func (pb *PromptBuilder) BuildRetrievalQuery(sourceKey, sourceValue string) string {
	switch {
	case strings.HasPrefix(sourceKey, "resume.skill."):
		return fmt.Sprintf("Projects and experience with %s", strings.TrimPrefix(sourceKey, "resume.skill."))
	case strings.HasPrefix(sourceKey, "answer."):
		return fmt.Sprintf("Background related to: %s", truncate(sourceValue, 200))
	default:
		return truncate(sourceValue, 200)
	}
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
