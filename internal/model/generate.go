package model

// SectionSpec describes one section to generate.
type SectionSpec struct {
	Name             string `json:"name" binding:"required,min=1,max=100"`
	TimeLimitMinutes int    `json:"time_limit_minutes" binding:"required,min=1,max=240"`
	QuestionCount    int    `json:"question_count" binding:"required,min=1,max=50"`
	// PassageBased asks the generator to group questions under shared
	// reading passages (VARC-style) instead of standalone questions.
	PassageBased bool `json:"passage_based"`
}

// GenerateTestRequest is the payload for generating a new mock test from
// uploaded source material.
type GenerateTestRequest struct {
	Title      string        `json:"title" binding:"required,min=3,max=255"`
	Type       TestType      `json:"type" binding:"required,oneof=FULL SECTIONAL"`
	SourceText string        `json:"source_text" binding:"required,min=1"`
	Sections   []SectionSpec `json:"sections" binding:"required,min=1,max=10,dive"`
}

// UpdateSettingsRequest updates the stored AI credential and model settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

// LoginRequest is the single-user access code login payload.
type LoginRequest struct {
	AccessCode string `json:"access_code" binding:"required,min=4,max=128"`
}
