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

// GormConnectionRepository implements the ConnectionRepository interface.
// A single row holds the one remembered desktop endpoint.
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GORM connection repository
func NewGormConnectionRepository(db *gorm.DB) repository.ConnectionRepository {
	return &GormConnectionRepository{
		db: db,
	}
}

// DesktopConnections GORM model for database mapping
type DesktopConnections struct {
	ID            string    `gorm:"primaryKey"`
	URL           string    `gorm:"column:url"`
	LastConnected time.Time `gorm:"column:last_connected"`
	Name          string    `gorm:"column:name"`
}

// TableName overrides the default table name
func (DesktopConnections) TableName() string {
	return "desktop_connections"
}

// Get returns the stored connection, or nil when none is remembered
func (r *GormConnectionRepository) Get(ctx context.Context) (*entity.DesktopConnection, error) {
	var row DesktopConnections
	result := r.db.WithContext(ctx).Where("id = ?", "main").First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &entity.DesktopConnection{
		URL:           row.URL,
		LastConnected: row.LastConnected,
		Name:          row.Name,
	}, nil
}

// Save upserts the single stored connection
func (r *GormConnectionRepository) Save(ctx context.Context, connection *entity.DesktopConnection) error {
	row := &DesktopConnections{
		ID:            "main",
		URL:           connection.URL,
		LastConnected: connection.LastConnected,
		Name:          connection.Name,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error
}

// Clear forgets the stored connection
func (r *GormConnectionRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("id = ?", "main").Delete(&DesktopConnections{}).Error
}
