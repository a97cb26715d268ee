package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type SessionHandler struct {
	interviewService services.InterviewService
}

func NewSessionHandler(interviewService services.InterviewService) *SessionHandler {
	return &SessionHandler{interviewService: interviewService}
}

// HandleCreate handles POST /sessions
func (h *SessionHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.SessionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	scenarioID, err := uuid.Parse(req.ScenarioID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid scenario_id format",
		})
	}

	var resumeID *uuid.UUID
	if req.ResumeID != "" {
		id, err := uuid.Parse(req.ResumeID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid resume_id format",
			})
		}
		resumeID = &id
	}

	session, sessionCtx, err := h.interviewService.StartSession(scenarioID, resumeID, req.CandidateName)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(sessionResponse(session, sessionCtx))
}

// HandleGet handles GET /sessions/:id
func (h *SessionHandler) HandleGet(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	session, sessionCtx, err := h.interviewService.SessionState(sessionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	return c.JSON(sessionResponse(session, sessionCtx))
}

// HandleAnswer handles POST /sessions/:id/answers — scores the answer,
// records it and advances the session.
func (h *SessionHandler) HandleAnswer(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	var req models.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}
	if req.AnswerText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "answer_text is required",
		})
	}
	nodeID, err := uuid.Parse(req.NodeID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid node_id format",
		})
	}

	outcome, err := h.interviewService.SubmitAnswer(c.Context(), sessionID, nodeID, req.AnswerText)
	if err != nil {
		return navigationError(c, err)
	}

	response := navigationResponse(outcome.Navigation, outcome.NextQuestionText)
	response.AnswerScore = &outcome.Score.OverallScore
	return c.JSON(response)
}

// HandleForceAdvance handles POST /sessions/:id/advance — operator
// override that bypasses condition evaluation.
func (h *SessionHandler) HandleForceAdvance(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	var req models.ForceAdvanceRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	var targetNodeID *uuid.UUID
	if req.TargetNodeID != "" {
		id, err := uuid.Parse(req.TargetNodeID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid target_node_id format",
			})
		}
		targetNodeID = &id
	}

	navigation, nextQuestionText, err := h.interviewService.ForceAdvance(sessionID, targetNodeID)
	if err != nil {
		return navigationError(c, err)
	}

	return c.JSON(navigationResponse(navigation, nextQuestionText))
}

func sessionResponse(session *models.InterviewSession, sessionCtx *models.SessionContext) models.SessionResponse {
	response := models.SessionResponse{
		ID:            session.ID.String(),
		ScenarioID:    session.ScenarioID.String(),
		Status:        string(session.Status),
		CurrentNodeID: sessionCtx.CurrentNodeID.String(),
	}
	if path, err := sessionCtx.Path(); err == nil {
		for _, nodeID := range path {
			response.Path = append(response.Path, nodeID.String())
		}
	}
	return response
}

func navigationResponse(navigation *services.NavigationResult, nextQuestionText string) models.NavigationResponse {
	response := models.NavigationResponse{
		NextNodeID:                   navigation.NextNodeID.String(),
		NextQuestionText:             nextQuestionText,
		ShouldTerminate:              navigation.ShouldTerminate,
		ContextualQuestionsAvailable: navigation.ContextualQuestionsAvailable,
	}
	if navigation.NextQuestionID != nil {
		id := navigation.NextQuestionID.String()
		response.NextQuestionID = &id
	}
	return response
}

// navigationError maps the navigation error taxonomy onto HTTP statuses.
func navigationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNoMatchingTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  err.Error(),
			"status": string(models.SessionStalled),
		})
	case errors.Is(err, services.ErrInvalidForcedTransition):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, services.ErrSessionNotActive):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
