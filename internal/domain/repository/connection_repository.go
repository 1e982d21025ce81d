package repository

import (
	"context"

	"embrel-service/internal/domain/entity"
)

// ConnectionRepository persists the remembered desktop relay endpoint
type ConnectionRepository interface {
	Get(ctx context.Context) (*entity.DesktopConnection, error)
	Save(ctx context.Context, connection *entity.DesktopConnection) error
	Clear(ctx context.Context) error
}
