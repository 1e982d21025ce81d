package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"embrel-service/internal/domain/entity"
	"embrel-service/internal/domain/repository"
)

// GormSettingsRepository implements the SettingsRepository interface
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GORM settings repository
func NewGormSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &GormSettingsRepository{
		db: db,
	}
}

// AppSettings GORM model for database mapping
type AppSettings struct {
	ID                 string `gorm:"primaryKey"`
	SoundEnabled       bool   `gorm:"column:sound_enabled;default:true"`
	VibrationEnabled   bool   `gorm:"column:vibration_enabled;default:true"`
	AutoScanEnabled    bool   `gorm:"column:auto_scan_enabled;default:false"`
	DesktopModeEnabled bool   `gorm:"column:desktop_mode_enabled;default:false"`
	UpdatedAt          time.Time
}

// TableName overrides the default table name
func (AppSettings) TableName() string {
	return "settings"
}

// Get returns the settings singleton, falling back to defaults when the row
// does not exist yet
func (r *GormSettingsRepository) Get(ctx context.Context) (*entity.Settings, error) {
	var row AppSettings
	result := r.db.WithContext(ctx).Where("id = ?", "main").First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return entity.DefaultSettings(), nil
		}
		return nil, result.Error
	}

	return &entity.Settings{
		ID:                 row.ID,
		SoundEnabled:       row.SoundEnabled,
		VibrationEnabled:   row.VibrationEnabled,
		AutoScanEnabled:    row.AutoScanEnabled,
		DesktopModeEnabled: row.DesktopModeEnabled,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}

// Save upserts the settings singleton
func (r *GormSettingsRepository) Save(ctx context.Context, settings *entity.Settings) error {
	row := &AppSettings{
		ID:                 "main",
		SoundEnabled:       settings.SoundEnabled,
		VibrationEnabled:   settings.VibrationEnabled,
		AutoScanEnabled:    settings.AutoScanEnabled,
		DesktopModeEnabled: settings.DesktopModeEnabled,
		UpdatedAt:          time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error
}
