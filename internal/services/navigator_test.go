package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"alfredoptarigan/ai-interviewer/internal/models"
)

// branchFixture is start -> q1 with a high branch (score >= 0.7), a mid
// branch (score >= 0.4) and an always fallback, all converging on end.
type branchFixture struct {
	scenarioID uuid.UUID
	start      uuid.UUID
	q1         uuid.UUID
	high       uuid.UUID
	mid        uuid.UUID
	low        uuid.UUID
	end        uuid.UUID
}

func buildBranchScenario(t *testing.T, db *gorm.DB) branchFixture {
	t.Helper()
	b := newScenarioBuilder()
	fx := branchFixture{}
	fx.start = b.node(models.NodeTypeStart)
	fx.q1 = b.questionNode(uuid.Nil, nil)
	fx.high = b.questionNode(uuid.Nil, nil)
	fx.mid = b.questionNode(uuid.Nil, nil)
	fx.low = b.questionNode(uuid.Nil, nil)
	fx.end = b.node(models.NodeTypeEnd)

	b.transition(fx.start, fx.q1, models.ConditionAlways, nil, 0)
	// Registered out of priority order on purpose.
	b.transition(fx.q1, fx.low, models.ConditionAlways, nil, 3)
	b.transition(fx.q1, fx.high, models.ConditionScoreThreshold, jsonPayload(t, map[string]interface{}{"min": 0.7}), 1)
	b.transition(fx.q1, fx.mid, models.ConditionScoreThreshold, jsonPayload(t, map[string]interface{}{"min": 0.4}), 2)
	b.transition(fx.high, fx.end, models.ConditionAlways, nil, 0)
	b.transition(fx.mid, fx.end, models.ConditionAlways, nil, 0)
	b.transition(fx.low, fx.end, models.ConditionAlways, nil, 0)

	fx.scenarioID = b.persist(t, db).ID
	return fx
}

func advanceTo(t *testing.T, f *navFixture, sessionID uuid.UUID, score float64) *NavigationResult {
	t.Helper()
	result, err := f.navigator.Advance(sessionID, score)
	require.NoError(t, err)
	return result
}

func TestAdvance_PicksFirstMatchingByPriority(t *testing.T) {
	db := setupTestDB(t)
	fx := buildBranchScenario(t, db)
	f := newNavFixture(t, db)
	session := f.startSession(t, fx.scenarioID)

	advanceTo(t, f, session.ID, 1.0) // start -> q1

	// 0.9 matches both score branches; priority 1 wins.
	result := advanceTo(t, f, session.ID, 0.9)
	assert.Equal(t, fx.high, result.NextNodeID)
}

func TestAdvance_MidBranchWhenHighDoesNotMatch(t *testing.T) {
	db := setupTestDB(t)
	fx := buildBranchScenario(t, db)
	f := newNavFixture(t, db)
	session := f.startSession(t, fx.scenarioID)

	advanceTo(t, f, session.ID, 1.0)
	result := advanceTo(t, f, session.ID, 0.5)
	assert.Equal(t, fx.mid, result.NextNodeID)
}

func TestAdvance_AlwaysFallback(t *testing.T) {
	db := setupTestDB(t)
	fx := buildBranchScenario(t, db)
	f := newNavFixture(t, db)
	session := f.startSession(t, fx.scenarioID)

	advanceTo(t, f, session.ID, 1.0)
	result := advanceTo(t, f, session.ID, 0.1)
	assert.Equal(t, fx.low, result.NextNodeID)
}

func TestAdvance_IsDeterministic(t *testing.T) {
	db := setupTestDB(t)
	fx := buildBranchScenario(t, db)
	f := newNavFixture(t, db)

	var destinations []uuid.UUID
	for i := 0; i < 5; i++ {
		session := f.startSession(t, fx.scenarioID)
		advanceTo(t, f, session.ID, 1.0)
		result := advanceTo(t, f, session.ID, 0.9)
		destinations = append(destinations, result.NextNodeID)
	}
	for _, dest := range destinations {
		assert.Equal(t, fx.high, dest)
	}
}

func TestAdvance_AppendsTrailToPath(t *testing.T) {
	db := setupTestDB(t)
	fx := buildBranchScenario(t, db)
	f := newNavFixture(t, db)
	session := f.startSession(t, fx.scenarioID)

	advanceTo(t, f, session.ID, 1.0)
	advanceTo(t, f, session.ID, 0.9)

	ctx := f.context(t, session.ID)
	path, err := ctx.Path()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{fx.start, fx.q1, fx.high}, path)
	assert.Equal(t, fx.high, ctx.CurrentNodeID)
}

func TestAdvance_DeadEndStallsAndPreservesContext(t *testing.T) {
	db := setupTestDB(t)
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	q1 := b.questionNode(uuid.Nil, nil)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, q1, models.ConditionAlways, nil, 0)
	// Only a high branch, no fallback: a low score has nowhere to go.
	b.transition(q1, end, models.ConditionScoreThreshold, jsonPayload(t, map[string]interface{}{"min": 0.9}), 0)
	scenario := b.persist(t, db)

	f := newNavFixture(t, db)
	session := f.startSession(t, scenario.ID)
	advanceTo(t, f, session.ID, 1.0)

	before := f.context(t, session.ID)
	pathBefore, err := before.Path()
	require.NoError(t, err)

	_, err = f.navigator.Advance(session.ID, 0.2)
	require.ErrorIs(t, err, ErrNoMatchingTransition)

	assert.Equal(t, models.SessionStalled, f.session(t, session.ID).Status)

	after := f.context(t, session.ID)
	pathAfter, err := after.Path()
	require.NoError(t, err)
	assert.Equal(t, pathBefore, pathAfter)
	assert.Equal(t, before.CurrentNodeID, after.CurrentNodeID)
}

func TestAdvance_SkipChainIsTransparent(t *testing.T) {
	db := setupTestDB(t)
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	q1 := b.questionNode(uuid.Nil, nil)
	skip1 := b.node(models.NodeTypeSkip)
	skip2 := b.node(models.NodeTypeSkip)
	questionID := uuid.New()
	q2 := b.questionNode(questionID, nil)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, q1, models.ConditionAlways, nil, 0)
	b.transition(q1, skip1, models.ConditionAlways, nil, 0)
	b.transition(skip1, skip2, models.ConditionAlways, nil, 0)
	b.transition(skip2, q2, models.ConditionAlways, nil, 0)
	b.transition(q2, end, models.ConditionAlways, nil, 0)
	scenario := b.persist(t, db)

	f := newNavFixture(t, db)
	session := f.startSession(t, scenario.ID)
	advanceTo(t, f, session.ID, 1.0)

	// The skip chain is resolved inside one advance; the caller only ever
	// sees the question node.
	result := advanceTo(t, f, session.ID, 0.5)
	assert.Equal(t, q2, result.NextNodeID)
	require.NotNil(t, result.NextQuestionID)
	assert.Equal(t, questionID, *result.NextQuestionID)

	path, err := f.context(t, session.ID).Path()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{start, q1, skip1, skip2, q2}, path)
}

func TestAdvance_SkipCycleStalls(t *testing.T) {
	db := setupTestDB(t)
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	q1 := b.questionNode(uuid.Nil, nil)
	skip1 := b.node(models.NodeTypeSkip)
	skip2 := b.node(models.NodeTypeSkip)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, q1, models.ConditionAlways, nil, 0)
	b.transition(q1, end, models.ConditionScoreThreshold, jsonPayload(t, map[string]interface{}{"min": 0.9}), 0)
	b.transition(q1, skip1, models.ConditionAlways, nil, 1)
	b.transition(skip1, skip2, models.ConditionAlways, nil, 0)
	b.transition(skip2, skip1, models.ConditionAlways, nil, 0)
	scenario := b.persist(t, db)

	f := newNavFixture(t, db)
	session := f.startSession(t, scenario.ID)
	advanceTo(t, f, session.ID, 1.0)

	_, err := f.navigator.Advance(session.ID, 0.1)
	require.ErrorIs(t, err, ErrNoMatchingTransition)
	assert.Equal(t, models.SessionStalled, f.session(t, session.ID).Status)
}

func TestAdvance_ReachingEndCompletesSession(t *testing.T) {
	db := setupTestDB(t)
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	q1 := b.questionNode(uuid.Nil, nil)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, q1, models.ConditionAlways, nil, 0)
	b.transition(q1, end, models.ConditionAlways, nil, 0)
	scenario := b.persist(t, db)

	f := newNavFixture(t, db)
	session := f.startSession(t, scenario.ID)
	advanceTo(t, f, session.ID, 1.0)

	result := advanceTo(t, f, session.ID, 0.8)
	assert.True(t, result.ShouldTerminate)
	assert.Equal(t, end, result.NextNodeID)
	assert.Equal(t, models.SessionCompleted, f.session(t, session.ID).Status)

	_, err := f.navigator.Advance(session.ID, 0.8)
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestAdvance_SurfacesContextualAvailability(t *testing.T) {
	db := setupTestDB(t)
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	questionID := uuid.New()
	q1 := b.questionNode(questionID, jsonPayload(t, map[string]interface{}{"contextual": true}))
	end := b.node(models.NodeTypeEnd)
	b.transition(start, q1, models.ConditionAlways, nil, 0)
	b.transition(q1, end, models.ConditionAlways, nil, 0)
	scenario := b.persist(t, db)

	f := newNavFixture(t, db)
	session := f.startSession(t, scenario.ID)

	result := advanceTo(t, f, session.ID, 0)
	assert.Equal(t, q1, result.NextNodeID)
	assert.True(t, result.ContextualQuestionsAvailable)
	require.NotNil(t, result.NextQuestionID)
	assert.Equal(t, questionID, *result.NextQuestionID)
}

func TestForceAdvance_DefaultsToLowestPriority(t *testing.T) {
	db := setupTestDB(t)
	fx := buildBranchScenario(t, db)
	f := newNavFixture(t, db)
	session := f.startSession(t, fx.scenarioID)
	advanceTo(t, f, session.ID, 1.0)

	// No target given: the priority-1 high branch is used regardless of
	// any score.
	result, err := f.navigator.ForceAdvance(session.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, fx.high, result.NextNodeID)
}

func TestForceAdvance_HonorsValidTarget(t *testing.T) {
	db := setupTestDB(t)
	fx := buildBranchScenario(t, db)
	f := newNavFixture(t, db)
	session := f.startSession(t, fx.scenarioID)
	advanceTo(t, f, session.ID, 1.0)

	result, err := f.navigator.ForceAdvance(session.ID, &fx.low)
	require.NoError(t, err)
	assert.Equal(t, fx.low, result.NextNodeID)

	path, err := f.context(t, session.ID).Path()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{fx.start, fx.q1, fx.low}, path)
}

func TestForceAdvance_RejectsInvalidTarget(t *testing.T) {
	db := setupTestDB(t)
	fx := buildBranchScenario(t, db)
	f := newNavFixture(t, db)
	session := f.startSession(t, fx.scenarioID)
	advanceTo(t, f, session.ID, 1.0)

	bogus := fx.end // end is not directly reachable from q1
	_, err := f.navigator.ForceAdvance(session.ID, &bogus)
	require.ErrorIs(t, err, ErrInvalidForcedTransition)

	// State untouched by the rejected override.
	assert.Equal(t, fx.q1, f.context(t, session.ID).CurrentNodeID)
	assert.Equal(t, models.SessionActive, f.session(t, session.ID).Status)
}

func TestForceAdvance_RejectsTerminalNode(t *testing.T) {
	db := setupTestDB(t)
	fx := buildBranchScenario(t, db)
	f := newNavFixture(t, db)
	session := f.startSession(t, fx.scenarioID)

	// Park the session on the end node while keeping it active.
	ctx := f.context(t, session.ID)
	ctx.CurrentNodeID = fx.end
	require.NoError(t, f.sessionRepo.SaveContext(ctx))

	_, err := f.navigator.ForceAdvance(session.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidForcedTransition)
}

func TestForceAdvance_RescuesStalledSession(t *testing.T) {
	db := setupTestDB(t)
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	q1 := b.questionNode(uuid.Nil, nil)
	q2 := b.questionNode(uuid.Nil, nil)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, q1, models.ConditionAlways, nil, 0)
	b.transition(q1, q2, models.ConditionScoreThreshold, jsonPayload(t, map[string]interface{}{"min": 0.9}), 0)
	b.transition(q2, end, models.ConditionAlways, nil, 0)
	scenario := b.persist(t, db)

	f := newNavFixture(t, db)
	session := f.startSession(t, scenario.ID)
	advanceTo(t, f, session.ID, 1.0)

	_, err := f.navigator.Advance(session.ID, 0.1)
	require.ErrorIs(t, err, ErrNoMatchingTransition)
	require.Equal(t, models.SessionStalled, f.session(t, session.ID).Status)

	result, err := f.navigator.ForceAdvance(session.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, q2, result.NextNodeID)
	assert.Equal(t, models.SessionActive, f.session(t, session.ID).Status)
}

func TestForceAdvance_RejectsCompletedSession(t *testing.T) {
	db := setupTestDB(t)
	b := newScenarioBuilder()
	start := b.node(models.NodeTypeStart)
	end := b.node(models.NodeTypeEnd)
	b.transition(start, end, models.ConditionAlways, nil, 0)
	scenario := b.persist(t, db)

	f := newNavFixture(t, db)
	session := f.startSession(t, scenario.ID)
	result := advanceTo(t, f, session.ID, 0)
	require.True(t, result.ShouldTerminate)

	_, err := f.navigator.ForceAdvance(session.ID, nil)
	assert.ErrorIs(t, err, ErrSessionNotActive)
}
