package services

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

// CriterionFlag is the per-criterion outcome the external scorer produced
// for one answer.
type CriterionFlag struct {
	CriterionID uuid.UUID
	SkillName   string
	Score       float64
	RedFlag     bool
	MustHave    bool
	MinScore    float64
}

type SessionContextService interface {
	CreateFor(sessionID, scenarioID uuid.UUID, seedData map[string]string) (*models.SessionContext, error)
	RecordAnswer(sessionID, nodeID uuid.UUID, answerText string, flags []CriterionFlag) error
}

type sessionContextService struct {
	sessionRepo repositories.SessionRepository
	graphs      *GraphCache
	locks       *SessionLocks
}

func NewSessionContextService(
	sessionRepo repositories.SessionRepository,
	graphs *GraphCache,
	locks *SessionLocks,
) SessionContextService {
	return &sessionContextService{
		sessionRepo: sessionRepo,
		graphs:      graphs,
		locks:       locks,
	}
}

// CreateFor implements SessionContextService. The context starts at the
// scenario's start node with the start node already on the path; seedData
// (resume facts) becomes the initial contextData.
func (s *sessionContextService) CreateFor(sessionID, scenarioID uuid.UUID, seedData map[string]string) (*models.SessionContext, error) {
	graph, err := s.graphs.Get(scenarioID)
	if err != nil {
		return nil, err
	}

	ctx := &models.SessionContext{
		ID:            uuid.New(),
		SessionID:     sessionID,
		ScenarioID:    scenarioID,
		CurrentNodeID: graph.StartNodeID,
	}
	if err := ctx.SetSkills(map[string]float64{}); err != nil {
		return nil, err
	}
	if err := ctx.SetNegatives(map[string]bool{}); err != nil {
		return nil, err
	}
	if err := ctx.SetPath([]uuid.UUID{graph.StartNodeID}); err != nil {
		return nil, err
	}
	if seedData == nil {
		seedData = map[string]string{}
	}
	if err := ctx.SetData(seedData); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.CreateContext(ctx); err != nil {
		return nil, err
	}

	log.Printf("✅ Session context created for session %s at node %s\n", sessionID, graph.StartNodeID)
	return ctx, nil
}

// RecordAnswer implements SessionContextService. Skill assessments use
// overwrite semantics; a negative flag, once set for a node, is never
// cleared. The path is untouched here: path updates happen on navigation.
func (s *sessionContextService) RecordAnswer(sessionID, nodeID uuid.UUID, answerText string, flags []CriterionFlag) error {
	unlock := s.locks.Acquire(sessionID)
	defer unlock()

	ctx, err := s.sessionRepo.FindContextBySessionID(sessionID)
	if err != nil {
		return err
	}

	skills, err := ctx.Skills()
	if err != nil {
		return err
	}
	negatives, err := ctx.Negatives()
	if err != nil {
		return err
	}
	data, err := ctx.Data()
	if err != nil {
		return err
	}

	negative := false
	for _, flag := range flags {
		if flag.SkillName != "" {
			skills[flag.SkillName] = flag.Score
		}
		if flag.RedFlag {
			negative = true
		}
		if flag.MustHave && flag.Score < flag.MinScore {
			negative = true
		}
	}
	if negative {
		negatives[nodeID.String()] = true
		log.Printf("🚩 Negative response recorded for session %s at node %s\n", sessionID, nodeID)
	}

	if answerText != "" {
		data[answerKey(nodeID)] = answerText
	}

	if err := ctx.SetSkills(skills); err != nil {
		return err
	}
	if err := ctx.SetNegatives(negatives); err != nil {
		return err
	}
	if err := ctx.SetData(data); err != nil {
		return err
	}

	if err := s.sessionRepo.SaveContext(ctx); err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	return nil
}

func answerKey(nodeID uuid.UUID) string {
	return "answer." + nodeID.String()
}
