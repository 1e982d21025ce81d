package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"embrel-service/internal/domain/entity"
	"embrel-service/internal/domain/repository"
	"embrel-service/pkg/logger"
)

// ErrSessionFinished is returned when scanning is started on a session that
// has already been completed or archived
var ErrSessionFinished = errors.New("session is already completed or archived")

// ErrNotActive is returned when a completing action targets a session that
// never became active
var ErrNotActive = errors.New("session is not active")

// SessionManager owns the boarding-session lifecycle: creation from a
// flight template, the ready/active/completed/archived transitions, and
// cascading deletion of owned passengers.
type SessionManager struct {
	sessionRepo   repository.SessionRepository
	passengerRepo repository.PassengerRepository
	flightRepo    repository.FlightRepository
	logger        logger.Logger
}

// NewSessionManager creates a session manager
func NewSessionManager(
	sessionRepo repository.SessionRepository,
	passengerRepo repository.PassengerRepository,
	flightRepo repository.FlightRepository,
	log logger.Logger,
) *SessionManager {
	return &SessionManager{
		sessionRepo:   sessionRepo,
		passengerRepo: passengerRepo,
		flightRepo:    flightRepo,
		logger:        log,
	}
}

// CreateSession opens a boarding session for a flight template. At most one
// non-archived session exists per flight number; when one already exists it
// is returned instead of creating a second.
func (m *SessionManager) CreateSession(ctx context.Context, flightID string) (*entity.Session, error) {
	flight, err := m.flightRepo.GetByID(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flight: %w", err)
	}

	existing, err := m.sessionRepo.GetActiveByFlightNumber(ctx, flight.FlightNumber)
	if err == nil && existing != nil {
		m.logger.Info("Reusing existing session", "sessionId", existing.ID, "flight", flight.FlightNumber)
		return existing, nil
	}

	now := time.Now()
	session := &entity.Session{
		ID:           uuid.NewString(),
		FlightNumber: flight.FlightNumber,
		FlightRoute:  flight.Route,
		FlightDate:   flight.Date,
		FlightTime:   flight.Time,
		Status:       entity.SessionReady,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.logger.Info("Session created", "sessionId", session.ID, "flight", session.FlightNumber)
	return session, nil
}

// StartScanning moves a ready session to active. Calling it on an already
// active session is a no-op; sessions past active cannot be restarted.
func (m *SessionManager) StartScanning(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := m.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	switch session.Status {
	case entity.SessionActive:
		return session, nil
	case entity.SessionReady:
		if err := m.sessionRepo.UpdateStatus(ctx, session.ID, entity.SessionActive); err != nil {
			return nil, fmt.Errorf("failed to activate session: %w", err)
		}
		session.Status = entity.SessionActive
		m.logger.Info("Session activated", "sessionId", session.ID)
		return session, nil
	default:
		return nil, ErrSessionFinished
	}
}

// Complete finalizes an active session
func (m *SessionManager) Complete(ctx context.Context, sessionID string) error {
	session, err := m.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session.Status != entity.SessionActive {
		return ErrNotActive
	}
	if err := m.sessionRepo.UpdateStatus(ctx, sessionID, entity.SessionCompleted); err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	m.logger.Info("Session completed", "sessionId", sessionID, "passengers", session.TotalPassengers)
	return nil
}

// Archive moves a session to the archived terminal state, reachable from
// any state
func (m *SessionManager) Archive(ctx context.Context, sessionID string) error {
	if err := m.sessionRepo.UpdateStatus(ctx, sessionID, entity.SessionArchived); err != nil {
		return fmt.Errorf("failed to archive session: %w", err)
	}
	m.logger.Info("Session archived", "sessionId", sessionID)
	return nil
}

// DeleteSession removes a session and all its passengers
func (m *SessionManager) DeleteSession(ctx context.Context, sessionID string) error {
	if err := m.passengerRepo.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session passengers: %w", err)
	}
	if err := m.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	m.logger.Info("Session deleted", "sessionId", sessionID)
	return nil
}

// RemovePassenger deletes one record and recomputes the session total
func (m *SessionManager) RemovePassenger(ctx context.Context, passengerID string) error {
	passenger, err := m.passengerRepo.GetByID(ctx, passengerID)
	if err != nil {
		return fmt.Errorf("failed to load passenger: %w", err)
	}
	if err := m.passengerRepo.Delete(ctx, passengerID); err != nil {
		return fmt.Errorf("failed to delete passenger: %w", err)
	}

	count, err := m.passengerRepo.CountBySession(ctx, passenger.SessionID)
	if err != nil {
		return fmt.Errorf("failed to count passengers: %w", err)
	}
	if err := m.sessionRepo.UpdateTotalPassengers(ctx, passenger.SessionID, count); err != nil {
		return fmt.Errorf("failed to update passenger total: %w", err)
	}
	return nil
}

// ListSessions returns all sessions
func (m *SessionManager) ListSessions(ctx context.Context) ([]*entity.Session, error) {
	return m.sessionRepo.List(ctx)
}

// ListPassengers returns the passengers of one session
func (m *SessionManager) ListPassengers(ctx context.Context, sessionID string) ([]*entity.Passenger, error) {
	return m.passengerRepo.ListBySession(ctx, sessionID)
}
