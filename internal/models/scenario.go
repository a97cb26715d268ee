package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NodeType string

const (
	NodeTypeStart     NodeType = "start"
	NodeTypeQuestion  NodeType = "question"
	NodeTypeCondition NodeType = "condition"
	NodeTypeEnd       NodeType = "end"
	NodeTypeSkip      NodeType = "skip"
)

type ConditionType string

const (
	ConditionScoreThreshold   ConditionType = "score_threshold"
	ConditionNegativeResponse ConditionType = "negative_response"
	ConditionSkillMissing     ConditionType = "skill_missing"
	ConditionAlways           ConditionType = "always"
)

// Scenario is one immutable version of a vacancy's interview flow.
// Editing a scenario creates a new row with a bumped version; sessions
// keep resolving against the version they were created with.
type Scenario struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	VacancyID *uuid.UUID `gorm:"type:uuid" json:"vacancy_id,omitempty"`
	Name      string     `gorm:"type:text;not null" json:"name"`
	Version   int        `gorm:"not null;default:1" json:"version"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt time.Time  `gorm:"type:timestamp" json:"updated_at"`

	// Relations
	Nodes       []ScenarioNode       `gorm:"foreignKey:ScenarioID" json:"nodes"`
	Transitions []ScenarioTransition `gorm:"foreignKey:ScenarioID" json:"transitions"`
}

func (Scenario) TableName() string {
	return "scenarios"
}

func (s *Scenario) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type ScenarioNode struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ScenarioID uuid.UUID      `gorm:"type:uuid;not null;index" json:"scenario_id"`
	QuestionID *uuid.UUID     `gorm:"type:uuid" json:"question_id,omitempty"`
	NodeType   NodeType       `gorm:"type:text;not null" json:"node_type"`
	PositionX  float64        `gorm:"default:0" json:"position_x"`
	PositionY  float64        `gorm:"default:0" json:"position_y"`
	NodeConfig datatypes.JSON `gorm:"type:jsonb" json:"node_config,omitempty"`
}

func (ScenarioNode) TableName() string {
	return "scenario_nodes"
}

func (n *ScenarioNode) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// NodeConfig is the decoded form of ScenarioNode.NodeConfig.
type NodeConfig struct {
	Label      string  `json:"label,omitempty"`
	Weight     float64 `json:"weight,omitempty"`
	MustHave   bool    `json:"must_have,omitempty"`
	SkipReason string  `json:"skip_reason,omitempty"`
	Contextual bool    `json:"contextual,omitempty"`
}

type ScenarioTransition struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ScenarioID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"scenario_id"`
	FromNodeID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"from_node_id"`
	ToNodeID        uuid.UUID      `gorm:"type:uuid;not null" json:"to_node_id"`
	ConditionType   ConditionType  `gorm:"type:text;not null" json:"condition_type"`
	ConditionValue  datatypes.JSON `gorm:"type:jsonb" json:"condition_value,omitempty"`
	Priority        int            `gorm:"not null;default:0" json:"priority"`
	TransitionLabel string         `gorm:"type:text" json:"transition_label,omitempty"`
}

func (ScenarioTransition) TableName() string {
	return "scenario_transitions"
}

func (t *ScenarioTransition) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Question is an entry in the question bank referenced by question nodes.
type Question struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	SkillName string    `gorm:"type:text" json:"skill_name,omitempty"`
	Category  string    `gorm:"type:text" json:"category,omitempty"`
	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
