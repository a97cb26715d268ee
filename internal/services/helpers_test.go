package services

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Question{},
		&models.Scenario{},
		&models.ScenarioNode{},
		&models.ScenarioTransition{},
		&models.InterviewSession{},
		&models.SessionContext{},
		&models.DynamicCriterion{},
		&models.ScenarioCriteriaMapping{},
		&models.ContextualQuestion{},
		&models.Resume{},
	))
	return db
}

func floatPtr(v float64) *float64 {
	return &v
}

func jsonPayload(t *testing.T, payload map[string]interface{}) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return raw
}

// scenarioBuilder assembles scenario fixtures node by node.
type scenarioBuilder struct {
	scenario models.Scenario
}

func newScenarioBuilder() *scenarioBuilder {
	return &scenarioBuilder{
		scenario: models.Scenario{
			ID:       uuid.New(),
			Name:     "backend interview",
			Version:  1,
			IsActive: true,
		},
	}
}

func (b *scenarioBuilder) node(nodeType models.NodeType) uuid.UUID {
	id := uuid.New()
	b.scenario.Nodes = append(b.scenario.Nodes, models.ScenarioNode{
		ID:         id,
		ScenarioID: b.scenario.ID,
		NodeType:   nodeType,
	})
	return id
}

func (b *scenarioBuilder) questionNode(questionID uuid.UUID, config datatypes.JSON) uuid.UUID {
	id := uuid.New()
	node := models.ScenarioNode{
		ID:         id,
		ScenarioID: b.scenario.ID,
		NodeType:   models.NodeTypeQuestion,
		NodeConfig: config,
	}
	if questionID != uuid.Nil {
		node.QuestionID = &questionID
	}
	b.scenario.Nodes = append(b.scenario.Nodes, node)
	return id
}

func (b *scenarioBuilder) transition(from, to uuid.UUID, condType models.ConditionType, payload datatypes.JSON, priority int) uuid.UUID {
	id := uuid.New()
	b.transitionWithID(id, from, to, condType, payload, priority)
	return id
}

func (b *scenarioBuilder) transitionWithID(id, from, to uuid.UUID, condType models.ConditionType, payload datatypes.JSON, priority int) {
	b.scenario.Transitions = append(b.scenario.Transitions, models.ScenarioTransition{
		ID:             id,
		ScenarioID:     b.scenario.ID,
		FromNodeID:     from,
		ToNodeID:       to,
		ConditionType:  condType,
		ConditionValue: payload,
		Priority:       priority,
	})
}

func (b *scenarioBuilder) build() *models.Scenario {
	return &b.scenario
}

func (b *scenarioBuilder) persist(t *testing.T, db *gorm.DB) *models.Scenario {
	t.Helper()
	require.NoError(t, db.Create(&b.scenario).Error)
	return &b.scenario
}

// navFixture wires the navigation engine over a persisted scenario.
type navFixture struct {
	db           *gorm.DB
	sessionRepo  repositories.SessionRepository
	graphs       *GraphCache
	locks        *SessionLocks
	contextStore SessionContextService
	navigator    NavigatorService
}

func newNavFixture(t *testing.T, db *gorm.DB) *navFixture {
	t.Helper()
	sessionRepo := repositories.NewSessionRepository(db)
	graphs := NewGraphCache(repositories.NewScenarioRepository(db))
	locks := NewSessionLocks()
	return &navFixture{
		db:           db,
		sessionRepo:  sessionRepo,
		graphs:       graphs,
		locks:        locks,
		contextStore: NewSessionContextService(sessionRepo, graphs, locks),
		navigator:    NewNavigatorService(sessionRepo, graphs, locks),
	}
}

func (f *navFixture) startSession(t *testing.T, scenarioID uuid.UUID) *models.InterviewSession {
	t.Helper()
	session := &models.InterviewSession{
		ID:         uuid.New(),
		ScenarioID: scenarioID,
		Status:     models.SessionActive,
	}
	require.NoError(t, f.sessionRepo.CreateSession(session))
	_, err := f.contextStore.CreateFor(session.ID, scenarioID, nil)
	require.NoError(t, err)
	return session
}

func (f *navFixture) context(t *testing.T, sessionID uuid.UUID) *models.SessionContext {
	t.Helper()
	ctx, err := f.sessionRepo.FindContextBySessionID(sessionID)
	require.NoError(t, err)
	return ctx
}

func (f *navFixture) session(t *testing.T, sessionID uuid.UUID) *models.InterviewSession {
	t.Helper()
	session, err := f.sessionRepo.FindSessionByID(sessionID)
	require.NoError(t, err)
	return session
}
