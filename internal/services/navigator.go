package services

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

// NavigationResult is what one committed advance step tells the caller.
type NavigationResult struct {
	NextNodeID                   uuid.UUID
	NextQuestionID               *uuid.UUID
	ShouldTerminate              bool
	ContextualQuestionsAvailable bool
}

type NavigatorService interface {
	Advance(sessionID uuid.UUID, answerScore float64) (*NavigationResult, error)
	ForceAdvance(sessionID uuid.UUID, targetNodeID *uuid.UUID) (*NavigationResult, error)
}

type navigator struct {
	sessionRepo repositories.SessionRepository
	graphs      *GraphCache
	locks       *SessionLocks
}

func NewNavigatorService(
	sessionRepo repositories.SessionRepository,
	graphs *GraphCache,
	locks *SessionLocks,
) NavigatorService {
	return &navigator{
		sessionRepo: sessionRepo,
		graphs:      graphs,
		locks:       locks,
	}
}

// Advance implements NavigatorService. Transitions are evaluated in
// (priority, id) order and the first match is committed; the commit
// writes path and pointer together or not at all. On a dead-end the
// session is marked stalled and the context is left unchanged.
func (n *navigator) Advance(sessionID uuid.UUID, answerScore float64) (*NavigationResult, error) {
	unlock := n.locks.Acquire(sessionID)
	defer unlock()

	session, ctx, graph, err := n.load(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, fmt.Errorf("%w: session %s is %s", ErrSessionNotActive, sessionID, session.Status)
	}

	in, err := n.conditionInput(ctx, answerScore)
	if err != nil {
		return nil, err
	}

	// A session should never rest on a skip node, but if it does the skip
	// chain is resolved silently before evaluating conditions.
	current := ctx.CurrentNodeID
	trail, current, err := n.resolveSkips(graph, nil, current, in)
	if err != nil {
		return nil, n.stall(sessionID, err)
	}

	in.CurrentNodeID = current
	transition := n.selectTransition(graph, current, in)
	if transition == nil {
		return nil, n.stall(sessionID, fmt.Errorf("%w: node %s with score %.2f", ErrNoMatchingTransition, current, answerScore))
	}

	trail = append(trail, transition.ToNodeID)
	trail, final, err := n.resolveSkips(graph, trail, transition.ToNodeID, in)
	if err != nil {
		return nil, n.stall(sessionID, err)
	}

	return n.commit(session, ctx, graph, trail, final)
}

// ForceAdvance implements NavigatorService. Condition evaluation is
// bypassed: the override follows the lowest-priority transition, or the
// caller-chosen target when it is a valid outgoing transition target.
func (n *navigator) ForceAdvance(sessionID uuid.UUID, targetNodeID *uuid.UUID) (*NavigationResult, error) {
	unlock := n.locks.Acquire(sessionID)
	defer unlock()

	session, ctx, graph, err := n.load(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionCompleted {
		return nil, fmt.Errorf("%w: session %s is completed", ErrSessionNotActive, sessionID)
	}

	outgoing := graph.OutgoingTransitions(ctx.CurrentNodeID)
	if len(outgoing) == 0 {
		return nil, fmt.Errorf("%w: node %s has no outgoing transitions", ErrInvalidForcedTransition, ctx.CurrentNodeID)
	}

	var transition *CompiledTransition
	if targetNodeID != nil {
		for i := range outgoing {
			if outgoing[i].ToNodeID == *targetNodeID {
				transition = &outgoing[i]
				break
			}
		}
		if transition == nil {
			return nil, fmt.Errorf("%w: node %s has no transition to %s", ErrInvalidForcedTransition, ctx.CurrentNodeID, *targetNodeID)
		}
	} else {
		transition = &outgoing[0]
	}

	in, err := n.conditionInput(ctx, 0)
	if err != nil {
		return nil, err
	}

	trail := []uuid.UUID{transition.ToNodeID}
	trail, final, err := n.resolveSkips(graph, trail, transition.ToNodeID, in)
	if err != nil {
		return nil, n.stall(sessionID, err)
	}

	// A forced advance can rescue a stalled session.
	if session.Status == models.SessionStalled {
		if err := n.sessionRepo.UpdateSessionStatus(session.ID, models.SessionActive); err != nil {
			return nil, err
		}
		session.Status = models.SessionActive
	}

	log.Printf("⏭️  Forced advance for session %s to node %s\n", sessionID, final)
	return n.commit(session, ctx, graph, trail, final)
}

func (n *navigator) load(sessionID uuid.UUID) (*models.InterviewSession, *models.SessionContext, *Graph, error) {
	session, err := n.sessionRepo.FindSessionByID(sessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, err := n.sessionRepo.FindContextBySessionID(sessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	graph, err := n.graphs.Get(ctx.ScenarioID)
	if err != nil {
		return nil, nil, nil, err
	}
	return session, ctx, graph, nil
}

func (n *navigator) conditionInput(ctx *models.SessionContext, answerScore float64) (ConditionInput, error) {
	skills, err := ctx.Skills()
	if err != nil {
		return ConditionInput{}, err
	}
	negatives, err := ctx.Negatives()
	if err != nil {
		return ConditionInput{}, err
	}
	return ConditionInput{
		AnswerScore:       answerScore,
		CurrentNodeID:     ctx.CurrentNodeID,
		SkillAssessments:  skills,
		NegativeResponses: negatives,
	}, nil
}

// selectTransition returns the first transition whose condition matches,
// in the graph's pre-sorted order, or nil when none does.
func (n *navigator) selectTransition(graph *Graph, nodeID uuid.UUID, in ConditionInput) *CompiledTransition {
	outgoing := graph.OutgoingTransitions(nodeID)
	for i := range outgoing {
		if outgoing[i].Condition.Matches(in) {
			return &outgoing[i]
		}
	}
	return nil
}

// resolveSkips follows skip nodes until a non-skip node is reached,
// appending every traversed node to trail. Skip nodes are never surfaced
// to the caller.
func (n *navigator) resolveSkips(graph *Graph, trail []uuid.UUID, nodeID uuid.UUID, in ConditionInput) ([]uuid.UUID, uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	for {
		node, ok := graph.Node(nodeID)
		if !ok {
			return nil, uuid.Nil, fmt.Errorf("%w: unknown node %s", ErrNoMatchingTransition, nodeID)
		}
		if node.NodeType != models.NodeTypeSkip {
			return trail, nodeID, nil
		}
		if seen[nodeID] {
			return nil, uuid.Nil, fmt.Errorf("%w: skip cycle at node %s", ErrNoMatchingTransition, nodeID)
		}
		seen[nodeID] = true

		in.CurrentNodeID = nodeID
		transition := n.selectTransition(graph, nodeID, in)
		if transition == nil {
			return nil, uuid.Nil, fmt.Errorf("%w: skip node %s has no matching transition", ErrNoMatchingTransition, nodeID)
		}
		nodeID = transition.ToNodeID
		trail = append(trail, nodeID)
	}
}

// commit appends the traversed trail to the path and moves the pointer in
// a single context save.
func (n *navigator) commit(session *models.InterviewSession, ctx *models.SessionContext, graph *Graph, trail []uuid.UUID, final uuid.UUID) (*NavigationResult, error) {
	path, err := ctx.Path()
	if err != nil {
		return nil, err
	}
	path = append(path, trail...)
	if err := ctx.SetPath(path); err != nil {
		return nil, err
	}
	ctx.CurrentNodeID = final

	if err := n.sessionRepo.SaveContext(ctx); err != nil {
		return nil, err
	}

	node, _ := graph.Node(final)
	result := &NavigationResult{NextNodeID: final}
	if node.NodeType == models.NodeTypeEnd {
		result.ShouldTerminate = true
		if err := n.sessionRepo.UpdateSessionStatus(session.ID, models.SessionCompleted); err != nil {
			return nil, err
		}
		log.Printf("🏁 Session %s completed at node %s\n", session.ID, final)
	}
	if node.NodeType == models.NodeTypeQuestion {
		result.NextQuestionID = node.QuestionID
		result.ContextualQuestionsAvailable = graph.NodeConfig(final).Contextual
	}
	return result, nil
}

// stall marks the session as requiring operator intervention and passes
// the navigation error through. The context itself is never touched.
func (n *navigator) stall(sessionID uuid.UUID, cause error) error {
	if err := n.sessionRepo.UpdateSessionStatus(sessionID, models.SessionStalled); err != nil {
		log.Printf("⚠️  Failed to mark session %s as stalled: %v\n", sessionID, err)
	}
	log.Printf("🛑 Session %s stalled: %v\n", sessionID, cause)
	return cause
}
