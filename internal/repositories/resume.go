package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/ai-interviewer/internal/models"
)

type ResumeRepository interface {
	Create(resume *models.Resume) error
	FindByID(id uuid.UUID) (*models.Resume, error)
	UpdateStatus(id uuid.UUID, status models.ResumeStatus) error
	UpdateIngestion(id uuid.UUID, facts datatypes.JSON, chunkCount int) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPending(limit int) ([]models.Resume, error)
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

// Create implements ResumeRepository.
func (r *resumeRepository) Create(resume *models.Resume) error {
	if err := r.db.Create(resume).Error; err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

// FindByID implements ResumeRepository.
func (r *resumeRepository) FindByID(id uuid.UUID) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.Where("id = ?", id).First(&resume).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("resume not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}
	return &resume, nil
}

// UpdateStatus implements ResumeRepository.
func (r *resumeRepository) UpdateStatus(id uuid.UUID, status models.ResumeStatus) error {
	result := r.db.Model(&models.Resume{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update resume status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("resume not found")
	}
	return nil
}

// UpdateIngestion implements ResumeRepository.
func (r *resumeRepository) UpdateIngestion(id uuid.UUID, facts datatypes.JSON, chunkCount int) error {
	result := r.db.Model(&models.Resume{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      models.ResumeCompleted,
			"facts":       facts,
			"chunk_count": chunkCount,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update resume ingestion: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("resume not found")
	}
	return nil
}

// UpdateError implements ResumeRepository.
func (r *resumeRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.Resume{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.ResumeFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update resume error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("resume not found")
	}
	return nil
}

// FindPending implements ResumeRepository.
func (r *resumeRepository) FindPending(limit int) ([]models.Resume, error) {
	var resumes []models.Resume
	err := r.db.
		Where("status = ?", models.ResumeQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&resumes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending resumes: %w", err)
	}
	return resumes, nil
}
