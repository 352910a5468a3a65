package model

import "time"

// AppSetting represents a key-value pair for global application configuration.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Setting keys recognized by the settings endpoint.
const (
	SettingAIBaseURL = "ai_base_url"
	SettingAIAPIKey  = "ai_api_key"
	SettingAIModel   = "ai_model"
)
