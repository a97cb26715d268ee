package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/ai-interviewer/internal/models"
)

type SessionRepository interface {
	CreateSession(session *models.InterviewSession) error
	FindSessionByID(id uuid.UUID) (*models.InterviewSession, error)
	UpdateSessionStatus(id uuid.UUID, status models.SessionStatus) error
	CreateContext(ctx *models.SessionContext) error
	FindContextBySessionID(sessionID uuid.UUID) (*models.SessionContext, error)
	SaveContext(ctx *models.SessionContext) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// CreateSession implements SessionRepository.
func (r *sessionRepository) CreateSession(session *models.InterviewSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindSessionByID implements SessionRepository.
func (r *sessionRepository) FindSessionByID(id uuid.UUID) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("session not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

// UpdateSessionStatus implements SessionRepository.
func (r *sessionRepository) UpdateSessionStatus(id uuid.UUID, status models.SessionStatus) error {
	result := r.db.Model(&models.InterviewSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update session status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

// CreateContext implements SessionRepository.
func (r *sessionRepository) CreateContext(ctx *models.SessionContext) error {
	if err := r.db.Create(ctx).Error; err != nil {
		return fmt.Errorf("failed to create session context: %w", err)
	}
	return nil
}

// FindContextBySessionID implements SessionRepository.
func (r *sessionRepository) FindContextBySessionID(sessionID uuid.UUID) (*models.SessionContext, error) {
	var ctx models.SessionContext
	if err := r.db.Where("session_id = ?", sessionID).First(&ctx).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("session context not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find session context: %w", err)
	}
	return &ctx, nil
}

// SaveContext implements SessionRepository. The whole row is written in
// one statement so the path, pointer and maps commit together.
func (r *sessionRepository) SaveContext(ctx *models.SessionContext) error {
	ctx.UpdatedAt = time.Now()
	if err := r.db.Save(ctx).Error; err != nil {
		return fmt.Errorf("failed to save session context: %w", err)
	}
	return nil
}
