package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type ContextualQuestionHandler struct {
	contextualService services.ContextualQuestionService
}

func NewContextualQuestionHandler(contextualService services.ContextualQuestionService) *ContextualQuestionHandler {
	return &ContextualQuestionHandler{contextualService: contextualService}
}

// HandleGenerate handles POST /sessions/:id/contextual-questions
func (h *ContextualQuestionHandler) HandleGenerate(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	var req models.ContextualGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}
	nodeID, err := uuid.Parse(req.NodeID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid node_id format",
		})
	}

	questions, err := h.contextualService.MaybeGenerate(c.Context(), sessionID, nodeID, req.MaxQuestions)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate contextual questions",
		})
	}

	return c.JSON(fiber.Map{
		"questions": questions,
	})
}

// HandleMarkUsed handles POST /contextual-questions/:id/use — a question
// is consumed exactly once.
func (h *ContextualQuestionHandler) HandleMarkUsed(c *fiber.Ctx) error {
	questionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question ID format",
		})
	}

	if err := h.contextualService.MarkUsed(questionID); err != nil {
		if errors.Is(err, services.ErrAlreadyUsed) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Contextual question not found",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
