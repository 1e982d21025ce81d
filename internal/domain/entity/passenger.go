package entity

import (
	"time"
)

// Passenger represents one boarding event recorded from a scanned pass.
// Records are immutable after creation; removal is the only mutation.
type Passenger struct {
	ID             string
	PassengerName  string
	PNR            string
	FlightNumber   string
	Seat           string
	SequenceNumber string
	Timestamp      time.Time
	RawData        string
	SessionID      string
}

// DedupKey identifies a boarding event for relay-side send suppression
func (p *Passenger) DedupKey() string {
	return p.SequenceNumber + "-" + p.PNR
}
