package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

type stubGenerator struct {
	calls int
	fail  bool
}

func (g *stubGenerator) GenerateQuestion(ctx context.Context, sourceKey, sourceValue, relatedFacts string) (string, error) {
	g.calls++
	if g.fail {
		return "", errors.New("generator unavailable")
	}
	return "Tell me more about " + sourceKey, nil
}

type contextualFixture struct {
	svc       ContextualQuestionService
	generator *stubGenerator
	nav       *navFixture
	sessionID uuid.UUID
	nodeID    uuid.UUID
}

func newContextualFixture(t *testing.T, seedData map[string]string) *contextualFixture {
	t.Helper()
	db := setupTestDB(t)
	scenario := buildBranchScenario(t, db)
	nav := newNavFixture(t, db)

	session := &models.InterviewSession{ID: uuid.New(), ScenarioID: scenario.scenarioID, Status: models.SessionActive}
	require.NoError(t, nav.sessionRepo.CreateSession(session))
	_, err := nav.contextStore.CreateFor(session.ID, scenario.scenarioID, seedData)
	require.NoError(t, err)

	generator := &stubGenerator{}
	svc := NewContextualQuestionService(
		repositories.NewContextualQuestionRepository(db),
		nav.sessionRepo,
		generator,
		nil,
		nil,
		3,
	)
	return &contextualFixture{
		svc:       svc,
		generator: generator,
		nav:       nav,
		sessionID: session.ID,
		nodeID:    scenario.q1,
	}
}

func TestMaybeGenerate_OnePerContextSource(t *testing.T) {
	fx := newContextualFixture(t, map[string]string{
		"resume.skill.Go":  "shipped a trading engine in Go",
		"resume.project.1": "led migration to Kubernetes",
	})

	questions, err := fx.svc.MaybeGenerate(context.Background(), fx.sessionID, fx.nodeID, 5)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	sources := map[string]bool{}
	for _, q := range questions {
		assert.False(t, sources[q.ContextSource], "source %q used twice", q.ContextSource)
		sources[q.ContextSource] = true
		assert.NotEmpty(t, q.QuestionText)
		assert.False(t, q.IsUsed)
	}
}

func TestMaybeGenerate_IsIdempotentPerSession(t *testing.T) {
	fx := newContextualFixture(t, map[string]string{
		"resume.skill.Go": "shipped a trading engine in Go",
	})

	first, err := fx.svc.MaybeGenerate(context.Background(), fx.sessionID, fx.nodeID, 5)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Same session, same sources: nothing new to generate.
	second, err := fx.svc.MaybeGenerate(context.Background(), fx.sessionID, fx.nodeID, 5)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, 1, fx.generator.calls)
}

func TestMaybeGenerate_RespectsMaxQuestions(t *testing.T) {
	fx := newContextualFixture(t, map[string]string{
		"resume.skill.Go":     "Go",
		"resume.skill.SQL":    "SQL",
		"resume.skill.Docker": "Docker",
		"resume.project.1":    "k8s migration",
	})

	questions, err := fx.svc.MaybeGenerate(context.Background(), fx.sessionID, fx.nodeID, 2)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestMaybeGenerate_ZeroMaxFallsBackToDefault(t *testing.T) {
	fx := newContextualFixture(t, map[string]string{
		"resume.skill.Go":     "Go",
		"resume.skill.SQL":    "SQL",
		"resume.skill.Docker": "Docker",
		"resume.project.1":    "k8s migration",
	})

	// Fixture default is 3.
	questions, err := fx.svc.MaybeGenerate(context.Background(), fx.sessionID, fx.nodeID, 0)
	require.NoError(t, err)
	assert.Len(t, questions, 3)
}

func TestMaybeGenerate_ClampsOversizedMax(t *testing.T) {
	seed := map[string]string{
		"resume.skill.Go":     "Go",
		"resume.skill.SQL":    "SQL",
		"resume.skill.Docker": "Docker",
		"resume.skill.K8s":    "Kubernetes",
		"resume.project.1":    "k8s migration",
		"resume.project.2":    "billing rewrite",
		"resume.summary":      "ten years of backend work",
	}
	fx := newContextualFixture(t, seed)

	questions, err := fx.svc.MaybeGenerate(context.Background(), fx.sessionID, fx.nodeID, 50)
	require.NoError(t, err)
	assert.Len(t, questions, 5)
}

func TestMaybeGenerate_DeterministicSourceOrder(t *testing.T) {
	seed := map[string]string{
		"resume.skill.Go":  "Go",
		"resume.skill.SQL": "SQL",
		"answer.intro":     "I work on infra",
	}

	fx := newContextualFixture(t, seed)
	questions, err := fx.svc.MaybeGenerate(context.Background(), fx.sessionID, fx.nodeID, 2)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	// Sources are consumed in sorted key order.
	assert.Equal(t, "answer.intro", questions[0].ContextSource)
	assert.Equal(t, "resume.skill.Go", questions[1].ContextSource)
}

func TestMaybeGenerate_SkipsEmptySources(t *testing.T) {
	fx := newContextualFixture(t, map[string]string{
		"resume.skill.Go": "   ",
		"resume.summary":  "backend engineer",
	})

	questions, err := fx.svc.MaybeGenerate(context.Background(), fx.sessionID, fx.nodeID, 5)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "resume.summary", questions[0].ContextSource)
}

func TestMaybeGenerate_ClassifiesSources(t *testing.T) {
	fx := newContextualFixture(t, map[string]string{
		"answer." + uuid.NewString(): "I prefer event sourcing",
		"resume.project.1":           "rebuilt the billing pipeline",
		"resume.skill.Go":            "Go since 2016",
	})

	questions, err := fx.svc.MaybeGenerate(context.Background(), fx.sessionID, fx.nodeID, 5)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	types := map[string]models.ContextualQuestionType{}
	for _, q := range questions {
		types[q.ContextSource] = q.QuestionType
	}
	assert.Equal(t, models.ContextualProject, types["resume.project.1"])
	assert.Equal(t, models.ContextualExperience, types["resume.skill.Go"])
	for source, questionType := range types {
		if questionType == models.ContextualTechnical {
			assert.Contains(t, source, "answer.")
		}
	}
}

func TestMaybeGenerate_GeneratorFailureStopsBatch(t *testing.T) {
	fx := newContextualFixture(t, map[string]string{
		"resume.skill.Go": "Go",
	})
	fx.generator.fail = true

	_, err := fx.svc.MaybeGenerate(context.Background(), fx.sessionID, fx.nodeID, 5)
	assert.Error(t, err)
}

func TestMarkUsed_ConsumesExactlyOnce(t *testing.T) {
	fx := newContextualFixture(t, map[string]string{
		"resume.skill.Go": "Go",
	})

	questions, err := fx.svc.MaybeGenerate(context.Background(), fx.sessionID, fx.nodeID, 1)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	require.NoError(t, fx.svc.MarkUsed(questions[0].ID))

	err = fx.svc.MarkUsed(questions[0].ID)
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestMarkUsed_UnknownQuestionFails(t *testing.T) {
	fx := newContextualFixture(t, nil)
	assert.Error(t, fx.svc.MarkUsed(uuid.New()))
}
