package repository

import (
	"context"

	"embrel-service/internal/domain/entity"
)

// SessionRepository defines the interface for boarding session operations
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	GetActiveByFlightNumber(ctx context.Context, flightNumber string) (*entity.Session, error)
	List(ctx context.Context) ([]*entity.Session, error)
	UpdateStatus(ctx context.Context, id string, status entity.SessionStatus) error
	UpdateTotalPassengers(ctx context.Context, id string, total int) error
	Delete(ctx context.Context, id string) error
}
