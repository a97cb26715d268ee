package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type CriteriaHandler struct {
	criteriaService services.CriteriaService
}

func NewCriteriaHandler(criteriaService services.CriteriaService) *CriteriaHandler {
	return &CriteriaHandler{criteriaService: criteriaService}
}

// HandleDerive handles POST /vacancies/:id/criteria
func (h *CriteriaHandler) HandleDerive(c *fiber.Ctx) error {
	vacancyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid vacancy ID format",
		})
	}

	var req models.DeriveCriteriaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}
	if len(req.Skills) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "skills is required",
		})
	}

	scenarioID, err := uuid.Parse(req.ScenarioID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid scenario_id format",
		})
	}

	skills := make([]services.VacancySkill, 0, len(req.Skills))
	for _, s := range req.Skills {
		skills = append(skills, services.VacancySkill{
			Name:       s.Name,
			Prominence: s.Prominence,
			Mandatory:  s.Mandatory,
		})
	}

	mappings, err := h.criteriaService.DeriveAndBind(vacancyID, skills, scenarioID, req.ForceRegenerate)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to derive criteria",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"mappings": mappings,
	})
}

// HandleDelete handles DELETE /criteria/:id — removes the criterion and
// its scenario mappings.
func (h *CriteriaHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid criterion ID format",
		})
	}

	if err := h.criteriaService.DeleteCriterion(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Criterion not found",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
