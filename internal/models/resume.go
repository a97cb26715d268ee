package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResumeStatus string

const (
	ResumeQueued     ResumeStatus = "queued"
	ResumeProcessing ResumeStatus = "processing"
	ResumeCompleted  ResumeStatus = "completed"
	ResumeFailed     ResumeStatus = "failed"
)

// Resume is an uploaded candidate resume. Ingestion (PDF extraction,
// chunk embedding, fact extraction) runs asynchronously in the worker.
type Resume struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CandidateName    string         `gorm:"type:text" json:"candidate_name"`
	Filename         string         `gorm:"type:text" json:"filename"`
	OriginalFileName string         `gorm:"type:text" json:"original_filename"`
	FilePath         string         `gorm:"type:text" json:"file_path"`
	Status           ResumeStatus   `gorm:"type:text;not null;default:'queued'" json:"status"`
	Facts            datatypes.JSON `gorm:"type:jsonb" json:"facts,omitempty"`
	ChunkCount       int            `gorm:"default:0" json:"chunk_count"`
	ErrorMessage     *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time      `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"type:timestamp" json:"updated_at"`
}

func (Resume) TableName() string {
	return "resumes"
}

func (r *Resume) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Resume) FactMap() (map[string]string, error) {
	facts := map[string]string{}
	if len(r.Facts) == 0 {
		return facts, nil
	}
	if err := json.Unmarshal(r.Facts, &facts); err != nil {
		return nil, fmt.Errorf("failed to decode resume facts: %w", err)
	}
	return facts, nil
}

func (r *Resume) SetFacts(facts map[string]string) error {
	raw, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("failed to encode resume facts: %w", err)
	}
	r.Facts = raw
	return nil
}
