package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/ai-interviewer/internal/models"
)

type ContextualQuestionRepository interface {
	Create(question *models.ContextualQuestion) error
	Save(question *models.ContextualQuestion) error
	FindByID(id uuid.UUID) (*models.ContextualQuestion, error)
	FindBySession(sessionID uuid.UUID) ([]models.ContextualQuestion, error)
}

type contextualQuestionRepository struct {
	db *gorm.DB
}

func NewContextualQuestionRepository(db *gorm.DB) ContextualQuestionRepository {
	return &contextualQuestionRepository{db: db}
}

// Create implements ContextualQuestionRepository.
func (r *contextualQuestionRepository) Create(question *models.ContextualQuestion) error {
	if err := r.db.Create(question).Error; err != nil {
		return fmt.Errorf("failed to create contextual question: %w", err)
	}
	return nil
}

// Save implements ContextualQuestionRepository.
func (r *contextualQuestionRepository) Save(question *models.ContextualQuestion) error {
	if err := r.db.Save(question).Error; err != nil {
		return fmt.Errorf("failed to save contextual question: %w", err)
	}
	return nil
}

// FindByID implements ContextualQuestionRepository.
func (r *contextualQuestionRepository) FindByID(id uuid.UUID) (*models.ContextualQuestion, error) {
	var question models.ContextualQuestion
	if err := r.db.Where("id = ?", id).First(&question).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("contextual question not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find contextual question: %w", err)
	}
	return &question, nil
}

// FindBySession implements ContextualQuestionRepository. Ordered by
// generation time so presentation order is stable.
func (r *contextualQuestionRepository) FindBySession(sessionID uuid.UUID) ([]models.ContextualQuestion, error) {
	var questions []models.ContextualQuestion
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("generated_at ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find contextual questions: %w", err)
	}
	return questions, nil
}
