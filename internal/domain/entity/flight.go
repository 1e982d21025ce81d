package entity

import (
	"time"
)

// Flight is a reusable flight template created by the user.
// One flight may spawn many sessions over time, one per operational day.
type Flight struct {
	ID           string
	FlightNumber string
	Route        string
	Date         string
	Time         string
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
