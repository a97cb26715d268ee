package services

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

// VacancySkill is one skill extracted from a vacancy description.
// Prominence reflects how heavily the source text features the skill.
type VacancySkill struct {
	Name       string
	Prominence float64
	Mandatory  bool
}

type CriteriaService interface {
	DeriveAndBind(vacancyID uuid.UUID, skills []VacancySkill, scenarioID uuid.UUID, forceRegenerate bool) ([]models.ScenarioCriteriaMapping, error)
	DeleteCriterion(id uuid.UUID) error
	CriteriaForScenario(scenarioID uuid.UUID) ([]models.ScenarioCriteriaMapping, error)
}

type criteriaService struct {
	criteriaRepo    repositories.CriteriaRepository
	mandatoryFloor  float64
	defaultMinScore float64
}

func NewCriteriaService(
	criteriaRepo repositories.CriteriaRepository,
	mandatoryFloor float64,
	defaultMinScore float64,
) CriteriaService {
	return &criteriaService{
		criteriaRepo:    criteriaRepo,
		mandatoryFloor:  mandatoryFloor,
		defaultMinScore: defaultMinScore,
	}
}

// DeriveAndBind implements CriteriaService. Derivation is idempotent in
// skill coverage: with forceRegenerate=false an existing criterion for
// (vacancy, skill) is reused as-is; with forceRegenerate=true its
// volatile fields (importance) are recomputed from the current skills.
func (s *criteriaService) DeriveAndBind(vacancyID uuid.UUID, skills []VacancySkill, scenarioID uuid.UUID, forceRegenerate bool) ([]models.ScenarioCriteriaMapping, error) {
	var mappings []models.ScenarioCriteriaMapping

	for _, skill := range skills {
		profile := LookupSkill(skill.Name)

		importance := clamp01(skill.Prominence)
		if skill.Mandatory && importance < s.mandatoryFloor {
			importance = s.mandatoryFloor
		}

		criterion, err := s.criteriaRepo.FindByVacancyAndSkill(vacancyID, profile.Canonical)
		if err != nil {
			return nil, err
		}

		switch {
		case criterion == nil:
			alternatives, err := json.Marshal(profile.Alternatives)
			if err != nil {
				return nil, fmt.Errorf("failed to encode alternatives: %w", err)
			}
			criterion = &models.DynamicCriterion{
				ID:            uuid.New(),
				VacancyID:     vacancyID,
				SkillName:     profile.Canonical,
				Category:      profile.Category,
				Importance:    importance,
				RequiredLevel: profile.RequiredLevel,
				IsMandatory:   skill.Mandatory,
				Alternatives:  alternatives,
			}
			if err := s.criteriaRepo.CreateCriterion(criterion); err != nil {
				return nil, err
			}
			log.Printf("✅ Derived criterion %q (%s) for vacancy %s\n", profile.Canonical, profile.Category, vacancyID)
		case forceRegenerate:
			criterion.Importance = importance
			criterion.IsMandatory = skill.Mandatory
			if err := s.criteriaRepo.SaveCriterion(criterion); err != nil {
				return nil, err
			}
			log.Printf("🔄 Regenerated criterion %q for vacancy %s\n", profile.Canonical, vacancyID)
		default:
			// Existing row reused; duplicate derivation is not an error.
		}

		mapping, err := s.bindToScenario(scenarioID, criterion)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, *mapping)
	}

	return mappings, nil
}

// bindToScenario assigns weight = importance and copies the mandatory
// flag, reusing an existing mapping when the pair is already bound.
func (s *criteriaService) bindToScenario(scenarioID uuid.UUID, criterion *models.DynamicCriterion) (*models.ScenarioCriteriaMapping, error) {
	existing, err := s.criteriaRepo.FindMapping(scenarioID, criterion.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	minScore := s.defaultMinScore
	mapping := &models.ScenarioCriteriaMapping{
		ID:          uuid.New(),
		ScenarioID:  scenarioID,
		CriterionID: criterion.ID,
		Weight:      criterion.Importance,
		IsMandatory: criterion.IsMandatory,
		MinScore:    &minScore,
	}
	if err := s.criteriaRepo.CreateMapping(mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// DeleteCriterion implements CriteriaService. Dependent mappings are
// removed in the same operation.
func (s *criteriaService) DeleteCriterion(id uuid.UUID) error {
	return s.criteriaRepo.DeleteCriterion(id)
}

// CriteriaForScenario implements CriteriaService.
func (s *criteriaService) CriteriaForScenario(scenarioID uuid.UUID) ([]models.ScenarioCriteriaMapping, error) {
	return s.criteriaRepo.FindMappingsByScenario(scenarioID)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
