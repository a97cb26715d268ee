package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

// ContextualQuestionService is the slot manager: it decides which prior
// context sources still deserve an ad-hoc question at a node, delegates
// prose to the question generator and tracks consumption.
type ContextualQuestionService interface {
	MaybeGenerate(ctx context.Context, sessionID, nodeID uuid.UUID, maxQuestions int) ([]models.ContextualQuestion, error)
	MarkUsed(questionID uuid.UUID) error
}

type contextualQuestionService struct {
	contextualRepo repositories.ContextualQuestionRepository
	sessionRepo    repositories.SessionRepository
	generator      QuestionGenerator
	gemini         GeminiService
	resumeIndex    ResumeIndexService
	promptBuilder  *PromptBuilder
	defaultMax     int
}

func NewContextualQuestionService(
	contextualRepo repositories.ContextualQuestionRepository,
	sessionRepo repositories.SessionRepository,
	generator QuestionGenerator,
	gemini GeminiService,
	resumeIndex ResumeIndexService,
	defaultMax int,
) ContextualQuestionService {
	return &contextualQuestionService{
		contextualRepo: contextualRepo,
		sessionRepo:    sessionRepo,
		generator:      generator,
		gemini:         gemini,
		resumeIndex:    resumeIndex,
		promptBuilder:  NewPromptBuilder(),
		defaultMax:     defaultMax,
	}
}

// MaybeGenerate implements ContextualQuestionService. Sources already
// covered by an existing question for this session are never used again,
// so the call is idempotent under retry.
func (s *contextualQuestionService) MaybeGenerate(ctx context.Context, sessionID, nodeID uuid.UUID, maxQuestions int) ([]models.ContextualQuestion, error) {
	maxQuestions = s.clampMax(maxQuestions)

	session, err := s.sessionRepo.FindSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	sessionCtx, err := s.sessionRepo.FindContextBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	data, err := sessionCtx.Data()
	if err != nil {
		return nil, err
	}

	existing, err := s.contextualRepo.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}
	covered := make(map[string]bool, len(existing))
	for _, q := range existing {
		covered[q.ContextSource] = true
	}

	// Sorted keys keep source selection deterministic.
	sources := make([]string, 0, len(data))
	for key := range data {
		if !covered[key] && strings.TrimSpace(data[key]) != "" {
			sources = append(sources, key)
		}
	}
	sort.Strings(sources)

	var generated []models.ContextualQuestion
	for _, sourceKey := range sources {
		if len(generated) >= maxQuestions {
			break
		}

		relatedFacts := s.retrieveRelatedFacts(ctx, session, sourceKey, data[sourceKey])

		questionText, err := s.generator.GenerateQuestion(ctx, sourceKey, data[sourceKey], relatedFacts)
		if err != nil {
			return generated, fmt.Errorf("failed to generate question for source %q: %w", sourceKey, err)
		}

		question := models.ContextualQuestion{
			ID:             uuid.New(),
			SessionID:      sessionID,
			ScenarioNodeID: nodeID,
			QuestionText:   questionText,
			QuestionType:   classifySource(sourceKey),
			ContextSource:  sourceKey,
			GeneratedAt:    time.Now(),
			IsUsed:         false,
		}
		if err := s.contextualRepo.Create(&question); err != nil {
			// A concurrent retry may have inserted the same source; the
			// unique index makes that row the winner.
			log.Printf("⚠️  Skipping contextual question for source %q: %v\n", sourceKey, err)
			continue
		}
		generated = append(generated, question)
	}

	if len(generated) > 0 {
		log.Printf("💬 Generated %d contextual question(s) for session %s at node %s\n", len(generated), sessionID, nodeID)
	}
	return generated, nil
}

// MarkUsed implements ContextualQuestionService. A question is consumed
// exactly once.
func (s *contextualQuestionService) MarkUsed(questionID uuid.UUID) error {
	question, err := s.contextualRepo.FindByID(questionID)
	if err != nil {
		return err
	}
	if question.IsUsed {
		return fmt.Errorf("%w: question %s", ErrAlreadyUsed, questionID)
	}

	now := time.Now()
	question.IsUsed = true
	question.UsedAt = &now
	return s.contextualRepo.Save(question)
}

// retrieveRelatedFacts pulls resume chunks relevant to a context source.
// Retrieval failures only degrade the context bundle, never the call.
func (s *contextualQuestionService) retrieveRelatedFacts(ctx context.Context, session *models.InterviewSession, sourceKey, sourceValue string) string {
	if s.resumeIndex == nil || s.gemini == nil || session.ResumeID == nil {
		return ""
	}

	query := s.promptBuilder.BuildRetrievalQuery(sourceKey, sourceValue)
	embedding, err := s.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		log.Printf("⚠️  Failed to embed retrieval query: %v\n", err)
		return ""
	}

	chunks, err := s.resumeIndex.SearchChunks(ctx, embedding, *session.ResumeID, 3)
	if err != nil {
		log.Printf("⚠️  Failed to search resume chunks: %v\n", err)
		return ""
	}

	var parts []string
	for _, chunk := range chunks {
		parts = append(parts, strings.TrimSpace(chunk.Text))
	}
	return strings.Join(parts, "\n\n")
}

func (s *contextualQuestionService) clampMax(max int) int {
	if max <= 0 {
		max = s.defaultMax
	}
	if max < 1 {
		max = 1
	}
	if max > 5 {
		max = 5
	}
	return max
}

func classifySource(sourceKey string) models.ContextualQuestionType {
	switch {
	case strings.HasPrefix(sourceKey, "answer."):
		return models.ContextualTechnical
	case strings.HasPrefix(sourceKey, "resume.project"):
		return models.ContextualProject
	default:
		return models.ContextualExperience
	}
}
