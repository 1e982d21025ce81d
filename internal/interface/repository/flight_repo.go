package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"embrel-service/internal/domain/entity"
	"embrel-service/internal/domain/repository"
)

// GormFlightRepository implements the FlightRepository interface
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new GORM flight repository
func NewGormFlightRepository(db *gorm.DB) repository.FlightRepository {
	return &GormFlightRepository{
		db: db,
	}
}

// UserFlights GORM model for database mapping
type UserFlights struct {
	ID           string `gorm:"primaryKey"`
	FlightNumber string `gorm:"column:flight_number;index"`
	Route        string `gorm:"column:route"`
	Date         string `gorm:"column:date"`
	Time         string `gorm:"column:time"`
	Description  string `gorm:"column:description"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the default table name
func (UserFlights) TableName() string {
	return "user_flights"
}

func toFlightEntity(row *UserFlights) *entity.Flight {
	return &entity.Flight{
		ID:           row.ID,
		FlightNumber: row.FlightNumber,
		Route:        row.Route,
		Date:         row.Date,
		Time:         row.Time,
		Description:  row.Description,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// Create stores a new flight template
func (r *GormFlightRepository) Create(ctx context.Context, flight *entity.Flight) error {
	row := &UserFlights{
		ID:           flight.ID,
		FlightNumber: flight.FlightNumber,
		Route:        flight.Route,
		Date:         flight.Date,
		Time:         flight.Time,
		Description:  flight.Description,
		CreatedAt:    flight.CreatedAt,
		UpdatedAt:    flight.UpdatedAt,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// GetByID finds a flight by id
func (r *GormFlightRepository) GetByID(ctx context.Context, id string) (*entity.Flight, error) {
	var row UserFlights
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	return toFlightEntity(&row), nil
}

// GetByFlightNumber finds a flight template by flight number
func (r *GormFlightRepository) GetByFlightNumber(ctx context.Context, flightNumber string) (*entity.Flight, error) {
	var row UserFlights
	result := r.db.WithContext(ctx).Where("flight_number = ?", flightNumber).First(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	return toFlightEntity(&row), nil
}

// List returns all flight templates
func (r *GormFlightRepository) List(ctx context.Context) ([]*entity.Flight, error) {
	var rows []UserFlights
	result := r.db.WithContext(ctx).Order("created_at desc").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	flights := make([]*entity.Flight, 0, len(rows))
	for i := range rows {
		flights = append(flights, toFlightEntity(&rows[i]))
	}
	return flights, nil
}

// Delete removes a flight template
func (r *GormFlightRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserFlights{}).Error
}
