package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"embrel-service/internal/domain/entity"
	"embrel-service/internal/domain/repository"
)

// GormSessionRepository implements the SessionRepository interface
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GORM session repository
func NewGormSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &GormSessionRepository{
		db: db,
	}
}

// Sessions GORM model for database mapping
type Sessions struct {
	ID              string `gorm:"primaryKey"`
	FlightNumber    string `gorm:"column:flight_number;index"`
	FlightRoute     string `gorm:"column:flight_route"`
	FlightDate      string `gorm:"column:flight_date"`
	FlightTime      string `gorm:"column:flight_time"`
	Status          string `gorm:"column:status"`
	TotalPassengers int    `gorm:"column:total_passengers;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName overrides the default table name
func (Sessions) TableName() string {
	return "sessions"
}

func toSessionEntity(row *Sessions) *entity.Session {
	return &entity.Session{
		ID:              row.ID,
		FlightNumber:    row.FlightNumber,
		FlightRoute:     row.FlightRoute,
		FlightDate:      row.FlightDate,
		FlightTime:      row.FlightTime,
		Status:          entity.SessionStatus(row.Status),
		TotalPassengers: row.TotalPassengers,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

// Create stores a new session
func (r *GormSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	row := &Sessions{
		ID:              session.ID,
		FlightNumber:    session.FlightNumber,
		FlightRoute:     session.FlightRoute,
		FlightDate:      session.FlightDate,
		FlightTime:      session.FlightTime,
		Status:          string(session.Status),
		TotalPassengers: session.TotalPassengers,
		CreatedAt:       session.CreatedAt,
		UpdatedAt:       session.UpdatedAt,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// GetByID finds a session by id
func (r *GormSessionRepository) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	var row Sessions
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	return toSessionEntity(&row), nil
}

// GetActiveByFlightNumber finds the non-archived session for a flight
// number, if one exists
func (r *GormSessionRepository) GetActiveByFlightNumber(ctx context.Context, flightNumber string) (*entity.Session, error) {
	var row Sessions
	result := r.db.WithContext(ctx).
		Where("flight_number = ? AND status <> ?", flightNumber, string(entity.SessionArchived)).
		Order("created_at desc").
		First(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	return toSessionEntity(&row), nil
}

// List returns all sessions, newest first
func (r *GormSessionRepository) List(ctx context.Context) ([]*entity.Session, error) {
	var rows []Sessions
	result := r.db.WithContext(ctx).Order("created_at desc").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	sessions := make([]*entity.Session, 0, len(rows))
	for i := range rows {
		sessions = append(sessions, toSessionEntity(&rows[i]))
	}
	return sessions, nil
}

// UpdateStatus changes a session's lifecycle status
func (r *GormSessionRepository) UpdateStatus(ctx context.Context, id string, status entity.SessionStatus) error {
	return r.db.WithContext(ctx).Model(&Sessions{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		}).Error
}

// UpdateTotalPassengers writes the denormalized passenger count
func (r *GormSessionRepository) UpdateTotalPassengers(ctx context.Context, id string, total int) error {
	return r.db.WithContext(ctx).Model(&Sessions{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_passengers": total,
			"updated_at":       time.Now(),
		}).Error
}

// Delete removes a session
func (r *GormSessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Sessions{}).Error
}
