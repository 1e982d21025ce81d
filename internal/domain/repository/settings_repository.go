package repository

import (
	"context"

	"embrel-service/internal/domain/entity"
)

// SettingsRepository defines the interface for the settings singleton
type SettingsRepository interface {
	Get(ctx context.Context) (*entity.Settings, error)
	Save(ctx context.Context, settings *entity.Settings) error
}
