package memory

import (
	"context"
	"sync"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

// MemorySettingsRepository stores the single settings and credentials
// records. Both start absent and report sentinel errors until saved.
type MemorySettingsRepository struct {
	settings *domain.StreamSettings
	creds    *domain.Credentials
	mu       sync.RWMutex
}

func NewMemorySettingsRepository() ports.SettingsRepository {
	return &MemorySettingsRepository{}
}

func (r *MemorySettingsRepository) GetSettings(ctx context.Context) (*domain.StreamSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return nil, domain.ErrSettingsNotFound
	}

	copied := *r.settings
	return &copied, nil
}

func (r *MemorySettingsRepository) SaveSettings(ctx context.Context, settings *domain.StreamSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *settings
	r.settings = &copied
	return nil
}

func (r *MemorySettingsRepository) GetCredentials(ctx context.Context) (*domain.Credentials, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.creds == nil {
		return nil, domain.ErrCredentialsNotFound
	}

	copied := *r.creds
	return &copied, nil
}

func (r *MemorySettingsRepository) SaveCredentials(ctx context.Context, creds *domain.Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *creds
	r.creds = &copied
	return nil
}
