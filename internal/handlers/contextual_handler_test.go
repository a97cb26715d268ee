package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type stubContextualService struct {
	questions   []models.ContextualQuestion
	generateErr error
	markUsedErr error
}

func (s *stubContextualService) MaybeGenerate(ctx context.Context, sessionID, nodeID uuid.UUID, maxQuestions int) ([]models.ContextualQuestion, error) {
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return s.questions, nil
}

func (s *stubContextualService) MarkUsed(questionID uuid.UUID) error {
	return s.markUsedErr
}

func newContextualApp(stub *stubContextualService) *fiber.App {
	handler := NewContextualQuestionHandler(stub)
	app := fiber.New()
	app.Post("/sessions/:id/contextual-questions", handler.HandleGenerate)
	app.Post("/contextual-questions/:id/use", handler.HandleMarkUsed)
	return app
}

func TestHandleGenerate_ReturnsQuestions(t *testing.T) {
	questions := []models.ContextualQuestion{
		{ID: uuid.New(), QuestionText: "You mentioned Kafka. What throughput did you handle?", ContextSource: "answer.intro"},
	}
	app := newContextualApp(&stubContextualService{questions: questions})

	resp := postJSON(t, app, "/sessions/"+uuid.NewString()+"/contextual-questions", models.ContextualGenerateRequest{
		NodeID: uuid.NewString(),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Questions []models.ContextualQuestion `json:"questions"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Questions, 1)
	assert.Equal(t, questions[0].ID, body.Questions[0].ID)
}

func TestHandleGenerate_InvalidNodeID(t *testing.T) {
	app := newContextualApp(&stubContextualService{})

	resp := postJSON(t, app, "/sessions/"+uuid.NewString()+"/contextual-questions", models.ContextualGenerateRequest{
		NodeID: "not-a-uuid",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleGenerate_ServiceFailure(t *testing.T) {
	app := newContextualApp(&stubContextualService{generateErr: errors.New("generator down")})

	resp := postJSON(t, app, "/sessions/"+uuid.NewString()+"/contextual-questions", models.ContextualGenerateRequest{
		NodeID: uuid.NewString(),
	})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHandleMarkUsed_Succeeds(t *testing.T) {
	app := newContextualApp(&stubContextualService{})

	req := httptest.NewRequest(http.MethodPost, "/contextual-questions/"+uuid.NewString()+"/use", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestHandleMarkUsed_AlreadyUsedMapsToConflict(t *testing.T) {
	app := newContextualApp(&stubContextualService{markUsedErr: services.ErrAlreadyUsed})

	req := httptest.NewRequest(http.MethodPost, "/contextual-questions/"+uuid.NewString()+"/use", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestHandleMarkUsed_UnknownQuestionMapsToNotFound(t *testing.T) {
	app := newContextualApp(&stubContextualService{markUsedErr: errors.New("record not found")})

	req := httptest.NewRequest(http.MethodPost, "/contextual-questions/"+uuid.NewString()+"/use", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
