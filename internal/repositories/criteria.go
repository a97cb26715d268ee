package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/ai-interviewer/internal/models"
)

type CriteriaRepository interface {
	CreateCriterion(criterion *models.DynamicCriterion) error
	SaveCriterion(criterion *models.DynamicCriterion) error
	FindByVacancy(vacancyID uuid.UUID) ([]models.DynamicCriterion, error)
	FindByVacancyAndSkill(vacancyID uuid.UUID, skillName string) (*models.DynamicCriterion, error)
	CreateMapping(mapping *models.ScenarioCriteriaMapping) error
	FindMapping(scenarioID, criterionID uuid.UUID) (*models.ScenarioCriteriaMapping, error)
	FindMappingsByScenario(scenarioID uuid.UUID) ([]models.ScenarioCriteriaMapping, error)
	DeleteCriterion(id uuid.UUID) error
}

type criteriaRepository struct {
	db *gorm.DB
}

func NewCriteriaRepository(db *gorm.DB) CriteriaRepository {
	return &criteriaRepository{db: db}
}

// CreateCriterion implements CriteriaRepository.
func (r *criteriaRepository) CreateCriterion(criterion *models.DynamicCriterion) error {
	if err := r.db.Create(criterion).Error; err != nil {
		return fmt.Errorf("failed to create criterion: %w", err)
	}
	return nil
}

// SaveCriterion implements CriteriaRepository.
func (r *criteriaRepository) SaveCriterion(criterion *models.DynamicCriterion) error {
	if err := r.db.Save(criterion).Error; err != nil {
		return fmt.Errorf("failed to save criterion: %w", err)
	}
	return nil
}

// FindByVacancy implements CriteriaRepository.
func (r *criteriaRepository) FindByVacancy(vacancyID uuid.UUID) ([]models.DynamicCriterion, error) {
	var criteria []models.DynamicCriterion
	if err := r.db.Where("vacancy_id = ?", vacancyID).Find(&criteria).Error; err != nil {
		return nil, fmt.Errorf("failed to find criteria: %w", err)
	}
	return criteria, nil
}

// FindByVacancyAndSkill implements CriteriaRepository. Returns nil, nil
// when no matching row exists.
func (r *criteriaRepository) FindByVacancyAndSkill(vacancyID uuid.UUID, skillName string) (*models.DynamicCriterion, error) {
	var criterion models.DynamicCriterion
	err := r.db.
		Where("vacancy_id = ? AND skill_name = ?", vacancyID, skillName).
		First(&criterion).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find criterion: %w", err)
	}
	return &criterion, nil
}

// CreateMapping implements CriteriaRepository.
func (r *criteriaRepository) CreateMapping(mapping *models.ScenarioCriteriaMapping) error {
	if err := r.db.Create(mapping).Error; err != nil {
		return fmt.Errorf("failed to create criteria mapping: %w", err)
	}
	return nil
}

// FindMapping implements CriteriaRepository. Returns nil, nil when the
// criterion is not bound to the scenario.
func (r *criteriaRepository) FindMapping(scenarioID, criterionID uuid.UUID) (*models.ScenarioCriteriaMapping, error) {
	var mapping models.ScenarioCriteriaMapping
	err := r.db.
		Where("scenario_id = ? AND criterion_id = ?", scenarioID, criterionID).
		First(&mapping).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find criteria mapping: %w", err)
	}
	return &mapping, nil
}

// FindMappingsByScenario implements CriteriaRepository.
func (r *criteriaRepository) FindMappingsByScenario(scenarioID uuid.UUID) ([]models.ScenarioCriteriaMapping, error) {
	var mappings []models.ScenarioCriteriaMapping
	err := r.db.
		Preload("Criterion").
		Where("scenario_id = ?", scenarioID).
		Find(&mappings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find criteria mappings: %w", err)
	}
	return mappings, nil
}

// DeleteCriterion implements CriteriaRepository. The cascade to mappings
// is an explicit transaction so the invariant holds regardless of the
// storage engine's referential actions.
func (r *criteriaRepository) DeleteCriterion(id uuid.UUID) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("criterion_id = ?", id).Delete(&models.ScenarioCriteriaMapping{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.DynamicCriterion{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("criterion not found: %w", err)
		}
		return fmt.Errorf("failed to delete criterion: %w", err)
	}
	return nil
}
