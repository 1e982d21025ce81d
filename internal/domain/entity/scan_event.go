package entity

import (
	"time"
)

// ScanEvent is the wire payload pushed from the scanner to the desktop relay
type ScanEvent struct {
	SequenceNumber string `json:"sequenceNumber"`
	PassengerName  string `json:"passengerName,omitempty"`
	FlightNumber   string `json:"flightNumber,omitempty"`
	SeatNumber     string `json:"seatNumber,omitempty"`
	Timestamp      string `json:"timestamp"`
	Source         string `json:"source"`
}

// NewScanEvent builds the relay payload for an accepted passenger
func NewScanEvent(p *Passenger) *ScanEvent {
	return &ScanEvent{
		SequenceNumber: p.SequenceNumber,
		PassengerName:  p.PassengerName,
		FlightNumber:   p.FlightNumber,
		SeatNumber:     p.Seat,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Source:         "mobile",
	}
}
