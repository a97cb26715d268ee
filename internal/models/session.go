package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionStalled   SessionStatus = "stalled"
	SessionExpired   SessionStatus = "expired"
)

type InterviewSession struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	ScenarioID    uuid.UUID     `gorm:"type:uuid;not null" json:"scenario_id"`
	ResumeID      *uuid.UUID    `gorm:"type:uuid" json:"resume_id,omitempty"`
	CandidateName string        `gorm:"type:text" json:"candidate_name"`
	Status        SessionStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt     time.Time     `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"type:timestamp" json:"updated_at"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

func (s *InterviewSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SessionContext is the per-session state the navigation engine reads and
// writes. The JSON columns are accessed through the typed getters below;
// writes go through the setters so a half-updated context is never saved.
type SessionContext struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SessionID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	ScenarioID        uuid.UUID      `gorm:"type:uuid;not null" json:"scenario_id"`
	CurrentNodeID     uuid.UUID      `gorm:"type:uuid;not null" json:"current_node_id"`
	SkillAssessments  datatypes.JSON `gorm:"type:jsonb" json:"skill_assessments,omitempty"`
	NegativeResponses datatypes.JSON `gorm:"type:jsonb" json:"negative_responses,omitempty"`
	CurrentPath       datatypes.JSON `gorm:"type:jsonb" json:"current_path,omitempty"`
	ContextData       datatypes.JSON `gorm:"type:jsonb" json:"context_data,omitempty"`
	UpdatedAt         time.Time      `gorm:"type:timestamp" json:"updated_at"`
}

func (SessionContext) TableName() string {
	return "session_contexts"
}

func (c *SessionContext) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *SessionContext) Skills() (map[string]float64, error) {
	skills := map[string]float64{}
	if len(c.SkillAssessments) == 0 {
		return skills, nil
	}
	if err := json.Unmarshal(c.SkillAssessments, &skills); err != nil {
		return nil, fmt.Errorf("failed to decode skill assessments: %w", err)
	}
	return skills, nil
}

func (c *SessionContext) SetSkills(skills map[string]float64) error {
	raw, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("failed to encode skill assessments: %w", err)
	}
	c.SkillAssessments = raw
	return nil
}

func (c *SessionContext) Negatives() (map[string]bool, error) {
	flags := map[string]bool{}
	if len(c.NegativeResponses) == 0 {
		return flags, nil
	}
	if err := json.Unmarshal(c.NegativeResponses, &flags); err != nil {
		return nil, fmt.Errorf("failed to decode negative responses: %w", err)
	}
	return flags, nil
}

func (c *SessionContext) SetNegatives(flags map[string]bool) error {
	raw, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("failed to encode negative responses: %w", err)
	}
	c.NegativeResponses = raw
	return nil
}

func (c *SessionContext) Path() ([]uuid.UUID, error) {
	var path []uuid.UUID
	if len(c.CurrentPath) == 0 {
		return path, nil
	}
	if err := json.Unmarshal(c.CurrentPath, &path); err != nil {
		return nil, fmt.Errorf("failed to decode current path: %w", err)
	}
	return path, nil
}

func (c *SessionContext) SetPath(path []uuid.UUID) error {
	raw, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("failed to encode current path: %w", err)
	}
	c.CurrentPath = raw
	return nil
}

func (c *SessionContext) Data() (map[string]string, error) {
	data := map[string]string{}
	if len(c.ContextData) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(c.ContextData, &data); err != nil {
		return nil, fmt.Errorf("failed to decode context data: %w", err)
	}
	return data, nil
}

func (c *SessionContext) SetData(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode context data: %w", err)
	}
	c.ContextData = raw
	return nil
}
