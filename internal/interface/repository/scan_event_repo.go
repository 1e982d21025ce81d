package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"embrel-service/internal/domain/entity"
	"embrel-service/internal/domain/repository"
)

// GormScanEventRepository implements the ScanEventRepository interface
type GormScanEventRepository struct {
	db *gorm.DB
}

// NewGormScanEventRepository creates a new GORM scan event repository
func NewGormScanEventRepository(db *gorm.DB) repository.ScanEventRepository {
	return &GormScanEventRepository{
		db: db,
	}
}

// ScanEvents GORM model for database mapping
type ScanEvents struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	SequenceNumber string `gorm:"column:sequence_number"`
	PassengerName  string `gorm:"column:passenger_name"`
	FlightNumber   string `gorm:"column:flight_number"`
	SeatNumber     string `gorm:"column:seat_number"`
	Timestamp      string `gorm:"column:timestamp"`
	Source         string `gorm:"column:source"`
	ReceivedAt     time.Time
}

// TableName overrides the default table name
func (ScanEvents) TableName() string {
	return "scan_events"
}

// Append stores one received scan event
func (r *GormScanEventRepository) Append(ctx context.Context, event *entity.ScanEvent) error {
	row := &ScanEvents{
		SequenceNumber: event.SequenceNumber,
		PassengerName:  event.PassengerName,
		FlightNumber:   event.FlightNumber,
		SeatNumber:     event.SeatNumber,
		Timestamp:      event.Timestamp,
		Source:         event.Source,
		ReceivedAt:     time.Now(),
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// ListRecent returns the most recently received events, newest first
func (r *GormScanEventRepository) ListRecent(ctx context.Context, limit int) ([]*entity.ScanEvent, error) {
	var rows []ScanEvents
	result := r.db.WithContext(ctx).Order("received_at desc").Limit(limit).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	events := make([]*entity.ScanEvent, 0, len(rows))
	for i := range rows {
		events = append(events, &entity.ScanEvent{
			SequenceNumber: rows[i].SequenceNumber,
			PassengerName:  rows[i].PassengerName,
			FlightNumber:   rows[i].FlightNumber,
			SeatNumber:     rows[i].SeatNumber,
			Timestamp:      rows[i].Timestamp,
			Source:         rows[i].Source,
		})
	}
	return events, nil
}
