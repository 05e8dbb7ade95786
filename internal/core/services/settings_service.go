package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	"livecast/pkg/validation"
)

type settingsService struct {
	repo     ports.SettingsRepository
	defaults domain.StreamSettings
	logger   *zap.SugaredLogger
}

// NewSettingsService returns a SettingsService that falls back to the
// given defaults until the operator saves settings for the first time.
func NewSettingsService(repo ports.SettingsRepository, defaults domain.StreamSettings, logger *zap.SugaredLogger) ports.SettingsService {
	return &settingsService{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

func (s *settingsService) GetSettings(ctx context.Context) (*domain.StreamSettings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			defaults := s.defaults
			return &defaults, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, settings *domain.StreamSettings) (*domain.StreamSettings, error) {
	if err := validation.ValidateQuality(settings.Quality); err != nil {
		return nil, err
	}
	if err := validation.ValidateBitrate(settings.Bitrate); err != nil {
		return nil, err
	}

	settings.UpdatedAt = time.Now()
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Infow("stream settings updated",
		"quality", settings.Quality,
		"bitrate", settings.Bitrate,
		"auto_queue", settings.AutoQueue,
		"notifications", settings.Notifications)

	return settings, nil
}

func (s *settingsService) GetCredentials(ctx context.Context) (*domain.Credentials, error) {
	creds, err := s.repo.GetCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return creds, nil
}

func (s *settingsService) UpdateCredentials(ctx context.Context, creds *domain.Credentials) (*domain.Credentials, error) {
	if err := validation.ValidatePageID(creds.PageID); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonEmptyString(creds.AccessToken, "access_token"); err != nil {
		return nil, err
	}

	creds.UpdatedAt = time.Now()
	if err := s.repo.SaveCredentials(ctx, creds); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	s.logger.Infow("platform credentials updated", "page_id", creds.PageID)

	return creds, nil
}
