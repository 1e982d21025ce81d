package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"embrel-service/internal/domain/entity"
	"embrel-service/pkg/logger"
)

func newManagerFixture(t *testing.T) (*SessionManager, *fakeSessionRepo, *fakePassengerRepo, *entity.Flight) {
	t.Helper()
	sessionRepo := newFakeSessionRepo()
	passengerRepo := newFakePassengerRepo()
	flightRepo := newFakeFlightRepo()

	flight := &entity.Flight{
		ID:           "flight-1",
		FlightNumber: "3192",
		Route:        "REL-EZE",
		CreatedAt:    time.Now(),
	}
	if err := flightRepo.Create(context.Background(), flight); err != nil {
		t.Fatalf("seed flight: %v", err)
	}

	manager := NewSessionManager(sessionRepo, passengerRepo, flightRepo, logger.NewNop())
	return manager, sessionRepo, passengerRepo, flight
}

func TestCreateSessionStartsReady(t *testing.T) {
	manager, _, _, flight := newManagerFixture(t)

	session, err := manager.CreateSession(context.Background(), flight.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.Status != entity.SessionReady {
		t.Errorf("Status = %v, want ready", session.Status)
	}
	if session.FlightNumber != "3192" || session.FlightRoute != "REL-EZE" {
		t.Errorf("flight fields not copied: %+v", session)
	}
}

func TestCreateSessionReusesExisting(t *testing.T) {
	manager, _, _, flight := newManagerFixture(t)

	first, err := manager.CreateSession(context.Background(), flight.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	second, err := manager.CreateSession(context.Background(), flight.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("a second session was created for the same flight")
	}
}

func TestCreateSessionAfterArchive(t *testing.T) {
	manager, _, _, flight := newManagerFixture(t)

	first, _ := manager.CreateSession(context.Background(), flight.ID)
	if err := manager.Archive(context.Background(), first.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	second, err := manager.CreateSession(context.Background(), flight.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if second.ID == first.ID {
		t.Error("archived session must not be reused")
	}
}

func TestStartScanningIsIdempotent(t *testing.T) {
	manager, sessionRepo, _, flight := newManagerFixture(t)
	session, _ := manager.CreateSession(context.Background(), flight.ID)

	activated, err := manager.StartScanning(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("StartScanning: %v", err)
	}
	if activated.Status != entity.SessionActive {
		t.Errorf("Status = %v, want active", activated.Status)
	}

	again, err := manager.StartScanning(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("second StartScanning: %v", err)
	}
	if again.Status != entity.SessionActive {
		t.Errorf("Status = %v, want active", again.Status)
	}

	stored, _ := sessionRepo.GetByID(context.Background(), session.ID)
	if stored.Status != entity.SessionActive {
		t.Errorf("stored status = %v", stored.Status)
	}
}

func TestStartScanningRejectsFinishedSession(t *testing.T) {
	manager, _, _, flight := newManagerFixture(t)
	session, _ := manager.CreateSession(context.Background(), flight.ID)
	manager.StartScanning(context.Background(), session.ID)
	if err := manager.Complete(context.Background(), session.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if _, err := manager.StartScanning(context.Background(), session.ID); !errors.Is(err, ErrSessionFinished) {
		t.Fatalf("got %v, want ErrSessionFinished", err)
	}
}

func TestCompleteRequiresActive(t *testing.T) {
	manager, _, _, flight := newManagerFixture(t)
	session, _ := manager.CreateSession(context.Background(), flight.ID)

	if err := manager.Complete(context.Background(), session.ID); !errors.Is(err, ErrNotActive) {
		t.Fatalf("got %v, want ErrNotActive", err)
	}
}

func TestDeleteSessionCascades(t *testing.T) {
	manager, sessionRepo, passengerRepo, flight := newManagerFixture(t)
	session, _ := manager.CreateSession(context.Background(), flight.ID)

	for _, seq := range []string{"170", "171"} {
		passengerRepo.Create(context.Background(), &entity.Passenger{
			ID:             "pax_" + seq,
			SequenceNumber: seq,
			SessionID:      session.ID,
		})
	}

	if err := manager.DeleteSession(context.Background(), session.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := sessionRepo.GetByID(context.Background(), session.ID); err == nil {
		t.Error("session still present")
	}
	count, _ := passengerRepo.CountBySession(context.Background(), session.ID)
	if count != 0 {
		t.Errorf("orphaned passengers: %d", count)
	}
}

func TestRemovePassengerUpdatesTotal(t *testing.T) {
	manager, sessionRepo, passengerRepo, flight := newManagerFixture(t)
	session, _ := manager.CreateSession(context.Background(), flight.ID)

	passengerRepo.Create(context.Background(), &entity.Passenger{
		ID:             "pax_171",
		SequenceNumber: "171",
		SessionID:      session.ID,
	})
	sessionRepo.UpdateTotalPassengers(context.Background(), session.ID, 1)

	if err := manager.RemovePassenger(context.Background(), "pax_171"); err != nil {
		t.Fatalf("RemovePassenger: %v", err)
	}
	stored, _ := sessionRepo.GetByID(context.Background(), session.ID)
	if stored.TotalPassengers != 0 {
		t.Errorf("TotalPassengers = %d, want 0", stored.TotalPassengers)
	}
}
