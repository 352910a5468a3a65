package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/prepforge/mockexam-backend/internal/config"
	"github.com/prepforge/mockexam-backend/internal/model"
	"github.com/prepforge/mockexam-backend/internal/repository"
)

// SettingService stores the AI credential and model configuration. Database
// values override the bootstrap config, so the key can be rotated at runtime.
type SettingService struct {
	cfg         *config.Config
	settingRepo *repository.SettingRepository
	log         zerolog.Logger
}

func NewSettingService(cfg *config.Config, settingRepo *repository.SettingRepository, log zerolog.Logger) *SettingService {
	return &SettingService{
		cfg:         cfg,
		settingRepo: settingRepo,
		log:         log.With().Str("component", "setting_service").Logger(),
	}
}

// GetAllSettings returns the stored settings with the API key masked.
func (s *SettingService) GetAllSettings(ctx context.Context) (map[string]string, error) {
	settingsList, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get all settings")
		return nil, err
	}

	settingsMap := make(map[string]string)
	for _, setting := range settingsList {
		if setting.Key == model.SettingAIAPIKey {
			settingsMap[setting.Key] = maskSecret(setting.Value)
			continue
		}
		settingsMap[setting.Key] = setting.Value
	}
	return settingsMap, nil
}

// UpdateSettings upserts the given keys. Unknown keys are ignored so stale
// clients cannot pollute the settings table.
func (s *SettingService) UpdateSettings(ctx context.Context, settingsMap map[string]string) error {
	for key, value := range settingsMap {
		switch key {
		case model.SettingAIBaseURL, model.SettingAIAPIKey, model.SettingAIModel:
		default:
			s.log.Warn().Str("key", key).Msg("ignoring unknown setting key")
			continue
		}
		if err := s.settingRepo.Upsert(ctx, key, value); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("failed to update setting")
			return err
		}
	}
	return nil
}

// AICredentials resolves the effective AI endpoint configuration, preferring
// stored settings over environment bootstrap values. An empty API key means
// generation and analysis are unavailable.
func (s *SettingService) AICredentials(ctx context.Context) (baseURL, apiKey, modelName string, err error) {
	baseURL, err = s.settingRepo.GetByKey(ctx, model.SettingAIBaseURL)
	if err != nil {
		return "", "", "", err
	}
	apiKey, err = s.settingRepo.GetByKey(ctx, model.SettingAIAPIKey)
	if err != nil {
		return "", "", "", err
	}
	modelName, err = s.settingRepo.GetByKey(ctx, model.SettingAIModel)
	if err != nil {
		return "", "", "", err
	}

	if baseURL == "" {
		baseURL = s.cfg.AIBaseURL
	}
	if apiKey == "" {
		apiKey = s.cfg.AIAPIKey
	}
	if modelName == "" {
		modelName = s.cfg.AIModel
	}
	return baseURL, apiKey, modelName, nil
}

func maskSecret(v string) string {
	if len(v) <= 8 {
		return "********"
	}
	return v[:4] + "..." + v[len(v)-4:]
}
