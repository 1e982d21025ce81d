package repository

import (
	"context"

	"embrel-service/internal/domain/entity"
)

// FlightRepository defines the interface for flight template operations
type FlightRepository interface {
	Create(ctx context.Context, flight *entity.Flight) error
	GetByID(ctx context.Context, id string) (*entity.Flight, error)
	GetByFlightNumber(ctx context.Context, flightNumber string) (*entity.Flight, error)
	List(ctx context.Context) ([]*entity.Flight, error)
	Delete(ctx context.Context, id string) error
}
