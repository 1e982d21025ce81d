package repository

import (
	"context"

	"embrel-service/internal/domain/entity"
)

// ScanEventRepository is the desktop-side audit log of received scans
type ScanEventRepository interface {
	Append(ctx context.Context, event *entity.ScanEvent) error
	ListRecent(ctx context.Context, limit int) ([]*entity.ScanEvent, error)
}
