package repository

import (
	"context"

	"embrel-service/internal/domain/entity"
)

// PassengerRepository defines the interface for passenger record operations
type PassengerRepository interface {
	Create(ctx context.Context, passenger *entity.Passenger) error
	GetByID(ctx context.Context, id string) (*entity.Passenger, error)
	ListBySession(ctx context.Context, sessionID string) ([]*entity.Passenger, error)
	CountBySession(ctx context.Context, sessionID string) (int, error)
	Delete(ctx context.Context, id string) error
	DeleteBySession(ctx context.Context, sessionID string) error
}
