package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"embrel-service/internal/domain/entity"
	"embrel-service/internal/domain/repository"
)

// GormPassengerRepository implements the PassengerRepository interface
type GormPassengerRepository struct {
	db *gorm.DB
}

// NewGormPassengerRepository creates a new GORM passenger repository
func NewGormPassengerRepository(db *gorm.DB) repository.PassengerRepository {
	return &GormPassengerRepository{
		db: db,
	}
}

// Passengers GORM model for database mapping
type Passengers struct {
	ID             string `gorm:"primaryKey"`
	PassengerName  string `gorm:"column:passenger"`
	PNR            string `gorm:"column:pnr"`
	FlightNumber   string `gorm:"column:flight"`
	Seat           string `gorm:"column:seat"`
	SequenceNumber string `gorm:"column:seq"`
	Timestamp      time.Time
	RawData        string `gorm:"column:raw_data"`
	SessionID      string `gorm:"column:session_id;index"`
}

// TableName overrides the default table name
func (Passengers) TableName() string {
	return "passengers"
}

func toPassengerEntity(row *Passengers) *entity.Passenger {
	return &entity.Passenger{
		ID:             row.ID,
		PassengerName:  row.PassengerName,
		PNR:            row.PNR,
		FlightNumber:   row.FlightNumber,
		Seat:           row.Seat,
		SequenceNumber: row.SequenceNumber,
		Timestamp:      row.Timestamp,
		RawData:        row.RawData,
		SessionID:      row.SessionID,
	}
}

// Create stores a new passenger record
func (r *GormPassengerRepository) Create(ctx context.Context, passenger *entity.Passenger) error {
	row := &Passengers{
		ID:             passenger.ID,
		PassengerName:  passenger.PassengerName,
		PNR:            passenger.PNR,
		FlightNumber:   passenger.FlightNumber,
		Seat:           passenger.Seat,
		SequenceNumber: passenger.SequenceNumber,
		Timestamp:      passenger.Timestamp,
		RawData:        passenger.RawData,
		SessionID:      passenger.SessionID,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// GetByID finds a passenger by id
func (r *GormPassengerRepository) GetByID(ctx context.Context, id string) (*entity.Passenger, error) {
	var row Passengers
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	return toPassengerEntity(&row), nil
}

// ListBySession returns all passengers of one session, oldest first
func (r *GormPassengerRepository) ListBySession(ctx context.Context, sessionID string) ([]*entity.Passenger, error) {
	var rows []Passengers
	result := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("timestamp asc").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	passengers := make([]*entity.Passenger, 0, len(rows))
	for i := range rows {
		passengers = append(passengers, toPassengerEntity(&rows[i]))
	}
	return passengers, nil
}

// CountBySession counts the passengers of one session
func (r *GormPassengerRepository) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&Passengers{}).Where("session_id = ?", sessionID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(count), nil
}

// Delete removes one passenger record
func (r *GormPassengerRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Passengers{}).Error
}

// DeleteBySession removes all passengers of one session
func (r *GormPassengerRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&Passengers{}).Error
}
