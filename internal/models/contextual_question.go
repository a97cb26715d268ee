package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContextualQuestionType string

const (
	ContextualExperience ContextualQuestionType = "experience"
	ContextualProject    ContextualQuestionType = "project"
	ContextualTechnical  ContextualQuestionType = "technical"
)

// ContextualQuestion is an ad-hoc question generated from candidate
// specific context (resume facts, prior answers). One row per
// (session, context source); consumed exactly once.
type ContextualQuestion struct {
	ID             uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	SessionID      uuid.UUID              `gorm:"type:uuid;not null;index:idx_ctx_question_source,unique" json:"session_id"`
	ScenarioNodeID uuid.UUID              `gorm:"type:uuid;not null" json:"scenario_node_id"`
	QuestionText   string                 `gorm:"type:text;not null" json:"question_text"`
	QuestionType   ContextualQuestionType `gorm:"type:text;not null" json:"question_type"`
	ContextSource  string                 `gorm:"type:text;not null;index:idx_ctx_question_source,unique" json:"context_source"`
	GeneratedAt    time.Time              `gorm:"type:timestamp" json:"generated_at"`
	IsUsed         bool                   `gorm:"not null;default:false" json:"is_used"`
	UsedAt         *time.Time             `gorm:"type:timestamp" json:"used_at,omitempty"`
}

func (ContextualQuestion) TableName() string {
	return "contextual_questions"
}

func (q *ContextualQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.GeneratedAt.IsZero() {
		q.GeneratedAt = time.Now()
	}
	return nil
}
