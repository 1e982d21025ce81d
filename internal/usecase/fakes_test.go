package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"embrel-service/internal/domain/entity"
)

var errNotFound = errors.New("record not found")

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) GetActiveByFlightNumber(ctx context.Context, flightNumber string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.FlightNumber == flightNumber && session.Status != entity.SessionArchived {
			copied := *session
			return &copied, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeSessionRepo) List(ctx context.Context) ([]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]*entity.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		copied := *session
		sessions = append(sessions, &copied)
	}
	return sessions, nil
}

func (r *fakeSessionRepo) UpdateStatus(ctx context.Context, id string, status entity.SessionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return errNotFound
	}
	session.Status = status
	session.UpdatedAt = time.Now()
	return nil
}

func (r *fakeSessionRepo) UpdateTotalPassengers(ctx context.Context, id string, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return errNotFound
	}
	session.TotalPassengers = total
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

type fakePassengerRepo struct {
	mu         sync.Mutex
	passengers map[string]*entity.Passenger
	createErr  error
}

func newFakePassengerRepo() *fakePassengerRepo {
	return &fakePassengerRepo{passengers: make(map[string]*entity.Passenger)}
}

func (r *fakePassengerRepo) Create(ctx context.Context, passenger *entity.Passenger) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *passenger
	r.passengers[passenger.ID] = &copied
	return nil
}

func (r *fakePassengerRepo) GetByID(ctx context.Context, id string) (*entity.Passenger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	passenger, ok := r.passengers[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *passenger
	return &copied, nil
}

func (r *fakePassengerRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.Passenger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var passengers []*entity.Passenger
	for _, passenger := range r.passengers {
		if passenger.SessionID == sessionID {
			copied := *passenger
			passengers = append(passengers, &copied)
		}
	}
	return passengers, nil
}

func (r *fakePassengerRepo) CountBySession(ctx context.Context, sessionID string) (int, error) {
	passengers, _ := r.ListBySession(ctx, sessionID)
	return len(passengers), nil
}

func (r *fakePassengerRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.passengers, id)
	return nil
}

func (r *fakePassengerRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, passenger := range r.passengers {
		if passenger.SessionID == sessionID {
			delete(r.passengers, id)
		}
	}
	return nil
}

type fakeFlightRepo struct {
	mu      sync.Mutex
	flights map[string]*entity.Flight
}

func newFakeFlightRepo() *fakeFlightRepo {
	return &fakeFlightRepo{flights: make(map[string]*entity.Flight)}
}

func (r *fakeFlightRepo) Create(ctx context.Context, flight *entity.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *flight
	r.flights[flight.ID] = &copied
	return nil
}

func (r *fakeFlightRepo) GetByID(ctx context.Context, id string) (*entity.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	flight, ok := r.flights[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *flight
	return &copied, nil
}

func (r *fakeFlightRepo) GetByFlightNumber(ctx context.Context, flightNumber string) (*entity.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, flight := range r.flights {
		if flight.FlightNumber == flightNumber {
			copied := *flight
			return &copied, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeFlightRepo) List(ctx context.Context) ([]*entity.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	flights := make([]*entity.Flight, 0, len(r.flights))
	for _, flight := range r.flights {
		copied := *flight
		flights = append(flights, &copied)
	}
	return flights, nil
}

func (r *fakeFlightRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flights, id)
	return nil
}

type fakeSettingsRepo struct {
	settings *entity.Settings
}

func (r *fakeSettingsRepo) Get(ctx context.Context) (*entity.Settings, error) {
	if r.settings == nil {
		return entity.DefaultSettings(), nil
	}
	return r.settings, nil
}

func (r *fakeSettingsRepo) Save(ctx context.Context, settings *entity.Settings) error {
	r.settings = settings
	return nil
}

type fakeRelay struct {
	mu        sync.Mutex
	connected bool
	sendOK    bool
	sent      []*entity.ScanEvent
}

func (r *fakeRelay) SendScanEvent(ctx context.Context, event *entity.ScanEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, event)
	return r.sendOK
}

func (r *fakeRelay) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

func (r *fakeRelay) sentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}
