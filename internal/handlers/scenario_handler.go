package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type ScenarioHandler struct {
	scenarioRepo repositories.ScenarioRepository
	questionRepo repositories.QuestionRepository
}

func NewScenarioHandler(
	scenarioRepo repositories.ScenarioRepository,
	questionRepo repositories.QuestionRepository,
) *ScenarioHandler {
	return &ScenarioHandler{
		scenarioRepo: scenarioRepo,
		questionRepo: questionRepo,
	}
}

// HandleCreate handles POST /scenarios. The graph is validated before
// anything is persisted; a new version number is assigned per
// (vacancy, name) and previous versions are deactivated. Sessions pinned
// to older versions keep resolving against them.
func (h *ScenarioHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.ScenarioCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}

	scenario, questions, err := h.buildScenario(&req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if violations := services.ValidateScenario(scenario); len(violations) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ValidationResponse{
			Valid:      false,
			Violations: violations,
		})
	}

	latest, err := h.scenarioRepo.LatestVersion(scenario.Name, scenario.VacancyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve scenario version",
		})
	}
	scenario.Version = latest + 1
	scenario.IsActive = true

	for _, question := range questions {
		if err := h.questionRepo.Create(question); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create question",
			})
		}
	}

	if err := h.scenarioRepo.Create(scenario); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create scenario",
		})
	}

	if err := h.scenarioRepo.DeactivatePrevious(scenario.Name, scenario.VacancyID, scenario.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to deactivate previous versions",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.ScenarioCreateResponse{
		ID:      scenario.ID.String(),
		Name:    scenario.Name,
		Version: scenario.Version,
	})
}

// HandleGet handles GET /scenarios/:id
func (h *ScenarioHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid scenario ID format",
		})
	}

	scenario, err := h.scenarioRepo.FindByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Scenario not found",
		})
	}

	return c.JSON(scenario)
}

// HandleValidate handles POST /scenarios/validate — a dry run that
// reports every structural violation without persisting anything.
func (h *ScenarioHandler) HandleValidate(c *fiber.Ctx) error {
	var req models.ScenarioCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	scenario, _, err := h.buildScenario(&req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	violations := services.ValidateScenario(scenario)
	return c.JSON(models.ValidationResponse{
		Valid:      len(violations) == 0,
		Violations: violations,
	})
}

// buildScenario turns the wire payload into model rows, creating question
// bank entries for question nodes that carry inline text.
func (h *ScenarioHandler) buildScenario(req *models.ScenarioCreateRequest) (*models.Scenario, []*models.Question, error) {
	scenario := &models.Scenario{
		ID:   uuid.New(),
		Name: req.Name,
	}
	if req.VacancyID != "" {
		vacancyID, err := uuid.Parse(req.VacancyID)
		if err != nil {
			return nil, nil, errors.New("invalid vacancy_id format")
		}
		scenario.VacancyID = &vacancyID
	}

	var questions []*models.Question
	for _, nodeReq := range req.Nodes {
		nodeID, err := uuid.Parse(nodeReq.ID)
		if err != nil {
			return nil, nil, errors.New("invalid node id format")
		}

		node := models.ScenarioNode{
			ID:         nodeID,
			ScenarioID: scenario.ID,
			NodeType:   models.NodeType(nodeReq.NodeType),
			PositionX:  nodeReq.PositionX,
			PositionY:  nodeReq.PositionY,
		}
		if len(nodeReq.NodeConfig) > 0 {
			node.NodeConfig = datatypes.JSON(nodeReq.NodeConfig)
		}
		if node.NodeType == models.NodeTypeQuestion && nodeReq.QuestionText != "" {
			question := &models.Question{
				ID:        uuid.New(),
				Text:      nodeReq.QuestionText,
				SkillName: nodeReq.QuestionSkill,
			}
			questions = append(questions, question)
			node.QuestionID = &question.ID
		}
		scenario.Nodes = append(scenario.Nodes, node)
	}

	for _, trReq := range req.Transitions {
		trID, err := uuid.Parse(trReq.ID)
		if err != nil {
			return nil, nil, errors.New("invalid transition id format")
		}
		fromID, err := uuid.Parse(trReq.FromNodeID)
		if err != nil {
			return nil, nil, errors.New("invalid from_node_id format")
		}
		toID, err := uuid.Parse(trReq.ToNodeID)
		if err != nil {
			return nil, nil, errors.New("invalid to_node_id format")
		}

		transition := models.ScenarioTransition{
			ID:              trID,
			ScenarioID:      scenario.ID,
			FromNodeID:      fromID,
			ToNodeID:        toID,
			ConditionType:   models.ConditionType(trReq.ConditionType),
			Priority:        trReq.Priority,
			TransitionLabel: trReq.TransitionLabel,
		}
		if len(trReq.ConditionValue) > 0 {
			transition.ConditionValue = datatypes.JSON(trReq.ConditionValue)
		}
		scenario.Transitions = append(scenario.Transitions, transition)
	}

	return scenario, questions, nil
}
