package usecase

import (
	"embrel-service/internal/domain/entity"
	"embrel-service/pkg/barcode"
)

// RejectionKind classifies why a scan was not accepted
type RejectionKind string

const (
	RejectInvalidBarcode   RejectionKind = "invalid_barcode"
	RejectNoActiveSession  RejectionKind = "no_active_session"
	RejectSessionNotActive RejectionKind = "session_not_active"
	RejectWrongFlight      RejectionKind = "wrong_flight"
	RejectDuplicate        RejectionKind = "duplicate"
	RejectScanInProgress   RejectionKind = "scan_in_progress"
	RejectStorageFailure   RejectionKind = "storage_failure"
)

// ScanResult is the typed outcome of one scan attempt. Call sites switch on
// Accepted/Kind instead of handling errors; the fields carry the context the
// UI needs for its message (expected vs found flight, the pre-existing
// duplicate record, the extraction failure).
type ScanResult struct {
	Accepted   bool
	Kind       RejectionKind
	Passenger  *entity.Passenger
	Extraction *barcode.ExtractionError
	Duplicate  *entity.Passenger
	Expected   string
	Found      string
	RelaySent  bool
	Err        error
}

// ValidateCandidate applies the boarding rules to an extraction candidate:
// flight match against the session, then duplicate detection on the
// (sequenceNumber, passengerName) pair. First failing rule wins. Pure
// function over the supplied passenger list, no side effects.
func ValidateCandidate(candidate *barcode.Candidate, session *entity.Session, passengers []*entity.Passenger) *ScanResult {
	if session == nil {
		return &ScanResult{Kind: RejectNoActiveSession}
	}

	if candidate.FlightNumber != session.FlightNumber {
		return &ScanResult{
			Kind:     RejectWrongFlight,
			Expected: session.FlightNumber,
			Found:    candidate.FlightNumber,
		}
	}

	for _, existing := range passengers {
		if existing.SequenceNumber == candidate.SequenceNumber && existing.PassengerName == candidate.PassengerName {
			return &ScanResult{
				Kind:      RejectDuplicate,
				Duplicate: existing,
			}
		}
	}

	return &ScanResult{Accepted: true}
}

// IsEmergencyExitRow reports whether a seat sits in an exit row. This is a
// presentation advisory only; it never blocks acceptance.
func IsEmergencyExitRow(seat string) bool {
	row := 0
	for _, r := range seat {
		if r < '0' || r > '9' {
			break
		}
		row = row*10 + int(r-'0')
	}
	return row == 12 || row == 14
}
