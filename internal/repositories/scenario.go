package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/ai-interviewer/internal/models"
)

type ScenarioRepository interface {
	Create(scenario *models.Scenario) error
	FindByID(id uuid.UUID) (*models.Scenario, error)
	LatestVersion(name string, vacancyID *uuid.UUID) (int, error)
	DeactivatePrevious(name string, vacancyID *uuid.UUID, keepID uuid.UUID) error
}

type scenarioRepository struct {
	db *gorm.DB
}

func NewScenarioRepository(db *gorm.DB) ScenarioRepository {
	return &scenarioRepository{db: db}
}

// Create implements ScenarioRepository. Nodes and transitions are saved
// together with the scenario row.
func (r *scenarioRepository) Create(scenario *models.Scenario) error {
	if err := r.db.Create(scenario).Error; err != nil {
		return fmt.Errorf("failed to create scenario: %w", err)
	}
	return nil
}

// FindByID implements ScenarioRepository.
func (r *scenarioRepository) FindByID(id uuid.UUID) (*models.Scenario, error) {
	var scenario models.Scenario
	err := r.db.
		Preload("Nodes").
		Preload("Transitions").
		Where("id = ?", id).
		First(&scenario).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("scenario not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find scenario: %w", err)
	}
	return &scenario, nil
}

// LatestVersion implements ScenarioRepository. Returns 0 when no version
// of the named scenario exists yet.
func (r *scenarioRepository) LatestVersion(name string, vacancyID *uuid.UUID) (int, error) {
	query := r.db.Model(&models.Scenario{}).Where("name = ?", name)
	if vacancyID != nil {
		query = query.Where("vacancy_id = ?", *vacancyID)
	} else {
		query = query.Where("vacancy_id IS NULL")
	}

	var latest *int
	if err := query.Select("MAX(version)").Scan(&latest).Error; err != nil {
		return 0, fmt.Errorf("failed to find latest scenario version: %w", err)
	}
	if latest == nil {
		return 0, nil
	}
	return *latest, nil
}

// DeactivatePrevious implements ScenarioRepository. Older versions stay
// readable for sessions pinned to them, but stop being offered for new
// sessions.
func (r *scenarioRepository) DeactivatePrevious(name string, vacancyID *uuid.UUID, keepID uuid.UUID) error {
	query := r.db.Model(&models.Scenario{}).Where("name = ? AND id != ?", name, keepID)
	if vacancyID != nil {
		query = query.Where("vacancy_id = ?", *vacancyID)
	} else {
		query = query.Where("vacancy_id IS NULL")
	}
	if err := query.Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate previous versions: %w", err)
	}
	return nil
}
