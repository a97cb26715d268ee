package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
)

// ConditionInput is the snapshot a transition condition is evaluated
// against. It is assembled once per advance call, so evaluation itself
// never touches the database or the clock.
type ConditionInput struct {
	AnswerScore       float64
	CurrentNodeID     uuid.UUID
	SkillAssessments  map[string]float64
	NegativeResponses map[string]bool
}

// Condition is a decoded transition condition. Payloads are decoded once
// at graph load, not re-parsed per evaluation.
type Condition interface {
	Matches(in ConditionInput) bool
}

type scoreThresholdCondition struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

func (c scoreThresholdCondition) Matches(in ConditionInput) bool {
	if c.Min != nil && in.AnswerScore < *c.Min {
		return false
	}
	if c.Max != nil && in.AnswerScore > *c.Max {
		return false
	}
	return true
}

type negativeResponseCondition struct{}

func (negativeResponseCondition) Matches(in ConditionInput) bool {
	return in.NegativeResponses[in.CurrentNodeID.String()]
}

type skillMissingCondition struct {
	Skill    string   `json:"skill"`
	MinLevel *float64 `json:"min_level"`
}

func (c skillMissingCondition) Matches(in ConditionInput) bool {
	level, ok := in.SkillAssessments[c.Skill]
	if !ok {
		return true
	}
	return c.MinLevel != nil && level < *c.MinLevel
}

type alwaysCondition struct{}

func (alwaysCondition) Matches(ConditionInput) bool {
	return true
}

func decodeCondition(condType models.ConditionType, raw []byte) (Condition, error) {
	switch condType {
	case models.ConditionScoreThreshold:
		var cond scoreThresholdCondition
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &cond); err != nil {
				return nil, fmt.Errorf("failed to decode score_threshold payload: %w", err)
			}
		}
		if cond.Min == nil && cond.Max == nil {
			return nil, fmt.Errorf("score_threshold requires min and/or max")
		}
		return cond, nil
	case models.ConditionNegativeResponse:
		return negativeResponseCondition{}, nil
	case models.ConditionSkillMissing:
		var cond skillMissingCondition
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &cond); err != nil {
				return nil, fmt.Errorf("failed to decode skill_missing payload: %w", err)
			}
		}
		if cond.Skill == "" {
			return nil, fmt.Errorf("skill_missing requires a skill name")
		}
		return cond, nil
	case models.ConditionAlways:
		return alwaysCondition{}, nil
	default:
		return nil, fmt.Errorf("unknown condition type: %s", condType)
	}
}
