package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DynamicCriterion is a scoring dimension derived from one required
// vacancy skill. Rows are keyed by (vacancy_id, skill_name) so re-running
// derivation reuses existing criteria instead of duplicating them.
type DynamicCriterion struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	VacancyID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_criteria_vacancy_skill,unique" json:"vacancy_id"`
	SkillName     string         `gorm:"type:text;not null;index:idx_criteria_vacancy_skill,unique" json:"skill_name"`
	Category      string         `gorm:"type:text" json:"category"`
	Importance    float64        `gorm:"not null;default:0.5" json:"importance"`
	RequiredLevel float64        `gorm:"not null;default:0.5" json:"required_level"`
	IsMandatory   bool           `gorm:"not null;default:false" json:"is_mandatory"`
	Alternatives  datatypes.JSON `gorm:"type:jsonb" json:"alternatives,omitempty"`
	CreatedAt     time.Time      `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"type:timestamp" json:"updated_at"`
}

func (DynamicCriterion) TableName() string {
	return "dynamic_criteria"
}

func (c *DynamicCriterion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *DynamicCriterion) AlternativeNames() []string {
	var names []string
	if len(c.Alternatives) == 0 {
		return names
	}
	// A malformed list is treated as empty; alternatives only widen matching.
	_ = json.Unmarshal(c.Alternatives, &names)
	return names
}

// ScenarioCriteriaMapping binds a criterion to a scenario with a weight.
// Deleting a criterion removes its mappings as well.
type ScenarioCriteriaMapping struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ScenarioID  uuid.UUID `gorm:"type:uuid;not null;index:idx_mapping_scenario_criterion,unique" json:"scenario_id"`
	CriterionID uuid.UUID `gorm:"type:uuid;not null;index:idx_mapping_scenario_criterion,unique" json:"criterion_id"`
	Weight      float64   `gorm:"not null;default:0.5" json:"weight"`
	IsMandatory bool      `gorm:"not null;default:false" json:"is_mandatory"`
	MinScore    *float64  `gorm:"type:decimal(3,2)" json:"min_score,omitempty"`
	CreatedAt   time.Time `gorm:"type:timestamp" json:"created_at"`

	// Relations
	Criterion DynamicCriterion `gorm:"foreignKey:CriterionID" json:"-"`
}

func (ScenarioCriteriaMapping) TableName() string {
	return "scenario_criteria_mappings"
}

func (m *ScenarioCriteriaMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
