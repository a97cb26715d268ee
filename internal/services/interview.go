package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

// AnswerOutcome bundles what one answered question produced: the score
// the external scorer assigned and the navigation step it caused.
type AnswerOutcome struct {
	Score            *AnswerScore
	Navigation       *NavigationResult
	NextQuestionText string
}

// InterviewService orchestrates one interview session: it invokes the
// scorer around the navigation engine, never from within it.
type InterviewService interface {
	StartSession(scenarioID uuid.UUID, resumeID *uuid.UUID, candidateName string) (*models.InterviewSession, *models.SessionContext, error)
	SubmitAnswer(ctx context.Context, sessionID, nodeID uuid.UUID, answerText string) (*AnswerOutcome, error)
	ForceAdvance(sessionID uuid.UUID, targetNodeID *uuid.UUID) (*NavigationResult, string, error)
	SessionState(sessionID uuid.UUID) (*models.InterviewSession, *models.SessionContext, error)
}

type interviewService struct {
	sessionRepo  repositories.SessionRepository
	resumeRepo   repositories.ResumeRepository
	questionRepo repositories.QuestionRepository
	criteriaRepo repositories.CriteriaRepository
	contextStore SessionContextService
	navigator    NavigatorService
	scorer       ScorerService
	graphs       *GraphCache
	minScore     float64
}

func NewInterviewService(
	sessionRepo repositories.SessionRepository,
	resumeRepo repositories.ResumeRepository,
	questionRepo repositories.QuestionRepository,
	criteriaRepo repositories.CriteriaRepository,
	contextStore SessionContextService,
	navigator NavigatorService,
	scorer ScorerService,
	graphs *GraphCache,
	minScore float64,
) InterviewService {
	return &interviewService{
		sessionRepo:  sessionRepo,
		resumeRepo:   resumeRepo,
		questionRepo: questionRepo,
		criteriaRepo: criteriaRepo,
		contextStore: contextStore,
		navigator:    navigator,
		scorer:       scorer,
		graphs:       graphs,
		minScore:     minScore,
	}
}

// StartSession implements InterviewService. Resume facts, when a resume
// is attached and ingested, seed the session's context data.
func (s *interviewService) StartSession(scenarioID uuid.UUID, resumeID *uuid.UUID, candidateName string) (*models.InterviewSession, *models.SessionContext, error) {
	seedData := map[string]string{}
	if resumeID != nil {
		resume, err := s.resumeRepo.FindByID(*resumeID)
		if err != nil {
			return nil, nil, err
		}
		if resume.Status == models.ResumeCompleted {
			facts, err := resume.FactMap()
			if err != nil {
				return nil, nil, err
			}
			seedData = facts
		} else {
			log.Printf("⚠️  Resume %s not ingested yet (status %s), starting without facts\n", resume.ID, resume.Status)
		}
	}

	session := &models.InterviewSession{
		ID:            uuid.New(),
		ScenarioID:    scenarioID,
		ResumeID:      resumeID,
		CandidateName: candidateName,
		Status:        models.SessionActive,
	}
	if err := s.sessionRepo.CreateSession(session); err != nil {
		return nil, nil, err
	}

	sessionCtx, err := s.contextStore.CreateFor(session.ID, scenarioID, seedData)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("🎤 Interview session %s started on scenario %s\n", session.ID, scenarioID)
	return session, sessionCtx, nil
}

// SubmitAnswer implements InterviewService: score the answer against the
// scenario's criteria, record the outcome, then advance.
func (s *interviewService) SubmitAnswer(ctx context.Context, sessionID, nodeID uuid.UUID, answerText string) (*AnswerOutcome, error) {
	sessionCtx, err := s.sessionRepo.FindContextBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if sessionCtx.CurrentNodeID != nodeID {
		return nil, fmt.Errorf("node %s is not the session's current node", nodeID)
	}

	graph, err := s.graphs.Get(sessionCtx.ScenarioID)
	if err != nil {
		return nil, err
	}
	node, ok := graph.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("node %s not found in scenario %s", nodeID, sessionCtx.ScenarioID)
	}
	if node.NodeType != models.NodeTypeQuestion {
		return nil, fmt.Errorf("node %s is a %s node, answers require a question node", nodeID, node.NodeType)
	}

	questionText := ""
	if node.QuestionID != nil {
		question, err := s.questionRepo.FindByID(*node.QuestionID)
		if err != nil {
			return nil, err
		}
		questionText = question.Text
	}

	mappings, err := s.criteriaRepo.FindMappingsByScenario(sessionCtx.ScenarioID)
	if err != nil {
		return nil, err
	}

	criteria := make([]ScoringCriterion, 0, len(mappings))
	for _, m := range mappings {
		criteria = append(criteria, ScoringCriterion{
			ID:        m.CriterionID.String(),
			SkillName: m.Criterion.SkillName,
			Weight:    m.Weight,
			Mandatory: m.IsMandatory,
		})
	}

	score, err := s.scorer.ScoreAnswer(ctx, questionText, answerText, criteria)
	if err != nil {
		return nil, err
	}

	flags := s.buildFlags(mappings, score)
	if err := s.contextStore.RecordAnswer(sessionID, nodeID, answerText, flags); err != nil {
		return nil, err
	}

	navigation, err := s.navigator.Advance(sessionID, score.OverallScore)
	if err != nil {
		return nil, err
	}

	nextQuestionText, err := s.questionTextFor(navigation)
	if err != nil {
		return nil, err
	}

	return &AnswerOutcome{
		Score:            score,
		Navigation:       navigation,
		NextQuestionText: nextQuestionText,
	}, nil
}

// ForceAdvance implements InterviewService.
func (s *interviewService) ForceAdvance(sessionID uuid.UUID, targetNodeID *uuid.UUID) (*NavigationResult, string, error) {
	navigation, err := s.navigator.ForceAdvance(sessionID, targetNodeID)
	if err != nil {
		return nil, "", err
	}
	nextQuestionText, err := s.questionTextFor(navigation)
	if err != nil {
		return nil, "", err
	}
	return navigation, nextQuestionText, nil
}

// SessionState implements InterviewService.
func (s *interviewService) SessionState(sessionID uuid.UUID) (*models.InterviewSession, *models.SessionContext, error) {
	session, err := s.sessionRepo.FindSessionByID(sessionID)
	if err != nil {
		return nil, nil, err
	}
	sessionCtx, err := s.sessionRepo.FindContextBySessionID(sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, sessionCtx, nil
}

// buildFlags maps the scorer's per-criterion verdicts back onto the
// scenario's criteria bindings.
func (s *interviewService) buildFlags(mappings []models.ScenarioCriteriaMapping, score *AnswerScore) []CriterionFlag {
	byID := make(map[string]*models.ScenarioCriteriaMapping, len(mappings))
	for i := range mappings {
		byID[mappings[i].CriterionID.String()] = &mappings[i]
	}

	var flags []CriterionFlag
	for _, result := range score.PerCriterion {
		mapping, ok := byID[result.ID]
		if !ok {
			continue
		}
		minScore := s.minScore
		if mapping.MinScore != nil {
			minScore = *mapping.MinScore
		}
		flags = append(flags, CriterionFlag{
			CriterionID: mapping.CriterionID,
			SkillName:   mapping.Criterion.SkillName,
			Score:       result.Score,
			RedFlag:     result.RedFlag,
			MustHave:    mapping.IsMandatory,
			MinScore:    minScore,
		})
	}
	return flags
}

func (s *interviewService) questionTextFor(navigation *NavigationResult) (string, error) {
	if navigation.NextQuestionID == nil {
		return "", nil
	}
	question, err := s.questionRepo.FindByID(*navigation.NextQuestionID)
	if err != nil {
		return "", err
	}
	return question.Text, nil
}
