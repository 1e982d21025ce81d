package entity

import (
	"time"
)

// SessionStatus is the lifecycle state of a boarding session
type SessionStatus string

const (
	SessionReady     SessionStatus = "ready"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionArchived  SessionStatus = "archived"
)

// Session represents one flight's boarding activity window.
// totalPassengers is denormalized and recomputed after every add/remove.
type Session struct {
	ID              string
	FlightNumber    string
	FlightRoute     string
	FlightDate      string
	FlightTime      string
	Status          SessionStatus
	TotalPassengers int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsScannable reports whether ingestion is permitted for this session
func (s *Session) IsScannable() bool {
	return s.Status == SessionActive
}
