package app

import (
	"context"

	"github.com/yldst-dev/anitime/internal/domain"
	"github.com/yldst-dev/anitime/internal/ports"
)

type SettingsService struct {
	repo ports.SettingsRepository
}

func NewSettingsService(repo ports.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	return s.repo.Get(ctx)
}

func (s *SettingsService) Put(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	// Validation légère: toute valeur non positive retombe sur le défaut.
	def := domain.DefaultSettings()
	if settings.GeneralRefreshSeconds <= 0 {
		settings.GeneralRefreshSeconds = def.GeneralRefreshSeconds
	}
	if settings.SubscriptionRefreshSeconds <= 0 {
		settings.SubscriptionRefreshSeconds = def.SubscriptionRefreshSeconds
	}
	if settings.MaxConcurrentFetches <= 0 {
		settings.MaxConcurrentFetches = def.MaxConcurrentFetches
	}
	return s.repo.Put(ctx, settings)
}
