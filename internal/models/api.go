package models

import "encoding/json"

// Request/response payloads for the HTTP API.

type ScenarioNodeRequest struct {
	ID            string          `json:"id" validate:"required,uuid"`
	NodeType      string          `json:"node_type" validate:"required"`
	QuestionText  string          `json:"question_text,omitempty"`
	QuestionSkill string          `json:"question_skill,omitempty"`
	PositionX     float64         `json:"position_x"`
	PositionY     float64         `json:"position_y"`
	NodeConfig    json.RawMessage `json:"node_config,omitempty"`
}

type ScenarioTransitionRequest struct {
	ID              string          `json:"id" validate:"required,uuid"`
	FromNodeID      string          `json:"from_node_id" validate:"required,uuid"`
	ToNodeID        string          `json:"to_node_id" validate:"required,uuid"`
	ConditionType   string          `json:"condition_type" validate:"required"`
	ConditionValue  json.RawMessage `json:"condition_value,omitempty"`
	Priority        int             `json:"priority"`
	TransitionLabel string          `json:"transition_label,omitempty"`
}

type ScenarioCreateRequest struct {
	Name        string                      `json:"name" validate:"required"`
	VacancyID   string                      `json:"vacancy_id,omitempty"`
	Nodes       []ScenarioNodeRequest       `json:"nodes" validate:"required"`
	Transitions []ScenarioTransitionRequest `json:"transitions" validate:"required"`
}

type ScenarioCreateResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version int    `json:"version"`
}

type ValidationResponse struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

type VacancySkillRequest struct {
	Name       string  `json:"name" validate:"required"`
	Prominence float64 `json:"prominence"`
	Mandatory  bool    `json:"mandatory"`
}

type DeriveCriteriaRequest struct {
	Skills          []VacancySkillRequest `json:"skills" validate:"required"`
	ScenarioID      string                `json:"scenario_id" validate:"required,uuid"`
	ForceRegenerate bool                  `json:"force_regenerate"`
}

type SessionCreateRequest struct {
	ScenarioID    string `json:"scenario_id" validate:"required,uuid"`
	ResumeID      string `json:"resume_id,omitempty"`
	CandidateName string `json:"candidate_name,omitempty"`
}

type SessionResponse struct {
	ID            string   `json:"id"`
	ScenarioID    string   `json:"scenario_id"`
	Status        string   `json:"status"`
	CurrentNodeID string   `json:"current_node_id"`
	Path          []string `json:"path"`
}

type AnswerRequest struct {
	NodeID     string `json:"node_id" validate:"required,uuid"`
	AnswerText string `json:"answer_text" validate:"required"`
}

type ForceAdvanceRequest struct {
	TargetNodeID string `json:"target_node_id,omitempty"`
}

type NavigationResponse struct {
	NextNodeID                   string   `json:"next_node_id"`
	NextQuestionID               *string  `json:"next_question_id,omitempty"`
	NextQuestionText             string   `json:"next_question_text,omitempty"`
	ShouldTerminate              bool     `json:"should_terminate"`
	ContextualQuestionsAvailable bool     `json:"contextual_questions_available"`
	AnswerScore                  *float64 `json:"answer_score,omitempty"`
}

type ContextualGenerateRequest struct {
	NodeID       string `json:"node_id" validate:"required,uuid"`
	MaxQuestions int    `json:"max_questions,omitempty"`
}

type ResumeUploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Status       string `json:"status"`
}
