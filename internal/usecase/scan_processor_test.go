package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"embrel-service/internal/domain/entity"
	"embrel-service/pkg/barcode"
	"embrel-service/pkg/logger"
)

const bcbpSample = "M1FERNANDEZ/MARIA     EQYT82Q RELAEPJA 3192 173Y003A0171 147"

func newProcessorFixture(relay *fakeRelay) (*ScanProcessor, *fakeSessionRepo, *fakePassengerRepo) {
	sessionRepo := newFakeSessionRepo()
	passengerRepo := newFakePassengerRepo()
	settingsRepo := &fakeSettingsRepo{settings: &entity.Settings{
		ID:                 "main",
		DesktopModeEnabled: true,
	}}

	processor := NewScanProcessor(sessionRepo, passengerRepo, settingsRepo, relay, nil, logger.NewNop(), nil)
	return processor, sessionRepo, passengerRepo
}

func seedActiveSession(t *testing.T, sessionRepo *fakeSessionRepo) *entity.Session {
	t.Helper()
	session := &entity.Session{
		ID:           "sess-1",
		FlightNumber: "3192",
		Status:       entity.SessionActive,
		CreatedAt:    time.Now(),
	}
	if err := sessionRepo.Create(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}

func TestProcessScanAccepts(t *testing.T) {
	relay := &fakeRelay{connected: true, sendOK: true}
	processor, sessionRepo, passengerRepo := newProcessorFixture(relay)
	session := seedActiveSession(t, sessionRepo)

	result := processor.ProcessScan(context.Background(), session.ID, bcbpSample, "qr")
	if !result.Accepted {
		t.Fatalf("rejected with %v", result.Kind)
	}
	if result.Passenger.PassengerName != "FERNANDEZ MARIA" {
		t.Errorf("PassengerName = %q", result.Passenger.PassengerName)
	}
	if result.Passenger.SessionID != session.ID {
		t.Errorf("SessionID = %q", result.Passenger.SessionID)
	}
	if result.Passenger.ID == "" || result.Passenger.Timestamp.IsZero() {
		t.Error("identity not stamped onto the record")
	}
	if result.Passenger.RawData != bcbpSample {
		t.Error("raw payload not retained")
	}
	if !result.RelaySent {
		t.Error("relay send did not happen")
	}

	count, _ := passengerRepo.CountBySession(context.Background(), session.ID)
	if count != 1 {
		t.Errorf("persisted count = %d, want 1", count)
	}
	stored, _ := sessionRepo.GetByID(context.Background(), session.ID)
	if stored.TotalPassengers != 1 {
		t.Errorf("TotalPassengers = %d, want 1", stored.TotalPassengers)
	}
}

func TestProcessScanNoSession(t *testing.T) {
	processor, _, _ := newProcessorFixture(&fakeRelay{})

	result := processor.ProcessScan(context.Background(), "missing", bcbpSample, "qr")
	if result.Accepted || result.Kind != RejectNoActiveSession {
		t.Fatalf("got %+v, want %v", result.Kind, RejectNoActiveSession)
	}
}

func TestProcessScanSessionNotActive(t *testing.T) {
	processor, sessionRepo, _ := newProcessorFixture(&fakeRelay{})
	session := seedActiveSession(t, sessionRepo)
	sessionRepo.UpdateStatus(context.Background(), session.ID, entity.SessionReady)

	result := processor.ProcessScan(context.Background(), session.ID, bcbpSample, "qr")
	if result.Accepted || result.Kind != RejectSessionNotActive {
		t.Fatalf("got %v, want %v", result.Kind, RejectSessionNotActive)
	}
}

func TestProcessScanExtractionFailure(t *testing.T) {
	processor, sessionRepo, _ := newProcessorFixture(&fakeRelay{})
	session := seedActiveSession(t, sessionRepo)

	result := processor.ProcessScan(context.Background(), session.ID, "tiny", "qr")
	if result.Kind != RejectInvalidBarcode {
		t.Fatalf("got %v, want %v", result.Kind, RejectInvalidBarcode)
	}
	if result.Extraction == nil || result.Extraction.Kind != barcode.KindTooShort {
		t.Errorf("extraction failure not surfaced: %+v", result.Extraction)
	}
}

func TestProcessScanDuplicate(t *testing.T) {
	relay := &fakeRelay{connected: true, sendOK: true}
	processor, sessionRepo, _ := newProcessorFixture(relay)
	session := seedActiveSession(t, sessionRepo)

	first := processor.ProcessScan(context.Background(), session.ID, bcbpSample, "qr")
	if !first.Accepted {
		t.Fatalf("first scan rejected with %v", first.Kind)
	}

	second := processor.ProcessScan(context.Background(), session.ID, bcbpSample, "qr")
	if second.Accepted || second.Kind != RejectDuplicate {
		t.Fatalf("got %v, want %v", second.Kind, RejectDuplicate)
	}
	if second.Duplicate == nil || second.Duplicate.SequenceNumber != "171" {
		t.Errorf("duplicate record not surfaced: %+v", second.Duplicate)
	}
	if relay.sentCount() != 1 {
		t.Errorf("relay sends = %d, want 1", relay.sentCount())
	}
}

func TestProcessScanWrongFlight(t *testing.T) {
	processor, sessionRepo, _ := newProcessorFixture(&fakeRelay{})
	session := &entity.Session{
		ID:           "sess-2",
		FlightNumber: "2001",
		Status:       entity.SessionActive,
	}
	sessionRepo.Create(context.Background(), session)

	result := processor.ProcessScan(context.Background(), session.ID, bcbpSample, "qr")
	// The extractor already checks the allow-list, so the mismatch is
	// reported as an extraction failure carrying both values
	if result.Accepted {
		t.Fatal("scan should be rejected")
	}
	if result.Extraction == nil || result.Extraction.Kind != barcode.KindFlightNotAllowed {
		t.Fatalf("got %+v, want flight_not_allowed", result.Extraction)
	}
	if result.Extraction.Found != "3192" {
		t.Errorf("Found = %q", result.Extraction.Found)
	}
}

func TestProcessScanStorageFailure(t *testing.T) {
	relay := &fakeRelay{connected: true, sendOK: true}
	processor, sessionRepo, passengerRepo := newProcessorFixture(relay)
	session := seedActiveSession(t, sessionRepo)
	passengerRepo.createErr = errors.New("disk full")

	result := processor.ProcessScan(context.Background(), session.ID, bcbpSample, "qr")
	if result.Accepted || result.Kind != RejectStorageFailure {
		t.Fatalf("got %v, want %v", result.Kind, RejectStorageFailure)
	}
	if relay.sentCount() != 0 {
		t.Error("relay send must not happen when persistence fails")
	}
}

func TestProcessScanReentrancyGate(t *testing.T) {
	processor, sessionRepo, _ := newProcessorFixture(&fakeRelay{})
	session := seedActiveSession(t, sessionRepo)

	if !processor.acquire() {
		t.Fatal("gate should be free")
	}
	result := processor.ProcessScan(context.Background(), session.ID, bcbpSample, "qr")
	if result.Kind != RejectScanInProgress {
		t.Fatalf("got %v, want %v", result.Kind, RejectScanInProgress)
	}
	processor.release()

	if result := processor.ProcessScan(context.Background(), session.ID, bcbpSample, "qr"); !result.Accepted {
		t.Fatalf("gate not released, got %v", result.Kind)
	}
}

func TestForwardDedupReleasedOnFailure(t *testing.T) {
	relay := &fakeRelay{connected: true, sendOK: false}
	processor, sessionRepo, _ := newProcessorFixture(relay)
	seedActiveSession(t, sessionRepo)

	passenger := &entity.Passenger{SequenceNumber: "171", PNR: "EQYT82Q"}
	if processor.forwardToDesktop(context.Background(), passenger) {
		t.Fatal("send should fail")
	}
	// Key was released, so the same record may be retried
	relay.sendOK = true
	if !processor.forwardToDesktop(context.Background(), passenger) {
		t.Fatal("retry should succeed")
	}
	// A successful send suppresses an immediate repeat of the same key
	if processor.forwardToDesktop(context.Background(), passenger) {
		t.Fatal("repeat send of the same key should be suppressed")
	}
	if relay.sentCount() != 2 {
		t.Errorf("relay sends = %d, want 2", relay.sentCount())
	}

	processor.ResetSendDedup()
	if !processor.forwardToDesktop(context.Background(), passenger) {
		t.Fatal("send should be possible after dedup reset")
	}
}

func TestForwardSkippedWhenDesktopModeDisabled(t *testing.T) {
	relay := &fakeRelay{connected: true, sendOK: true}
	sessionRepo := newFakeSessionRepo()
	passengerRepo := newFakePassengerRepo()
	settingsRepo := &fakeSettingsRepo{settings: &entity.Settings{ID: "main"}}
	processor := NewScanProcessor(sessionRepo, passengerRepo, settingsRepo, relay, nil, logger.NewNop(), nil)

	passenger := &entity.Passenger{SequenceNumber: "171", PNR: "EQYT82Q"}
	if processor.forwardToDesktop(context.Background(), passenger) {
		t.Fatal("desktop mode disabled, send must be skipped")
	}
	if relay.sentCount() != 0 {
		t.Errorf("relay sends = %d, want 0", relay.sentCount())
	}
}
