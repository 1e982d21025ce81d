package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"embrel-service/internal/domain/entity"
	"embrel-service/internal/domain/repository"
	"embrel-service/pkg/barcode"
	"embrel-service/pkg/logger"
	"embrel-service/pkg/metrics"
)

// RelaySender is the desktop relay client as seen by the scan pipeline
type RelaySender interface {
	SendScanEvent(ctx context.Context, event *entity.ScanEvent) bool
	IsConnected() bool
}

// AnalyticsSink receives fire-and-forget usage events. Never required for
// correctness; a nil sink is valid.
type AnalyticsSink interface {
	Track(event string, properties map[string]interface{})
}

// ScanProcessor runs the ingestion pipeline for one scan: extraction,
// validation against the session, persistence, and immediate relay
// forwarding. One processor serves one scanning device.
type ScanProcessor struct {
	sessionRepo   repository.SessionRepository
	passengerRepo repository.PassengerRepository
	settingsRepo  repository.SettingsRepository
	relay         RelaySender
	analytics     AnalyticsSink
	logger        logger.Logger
	metrics       *metrics.Metrics

	mu       sync.Mutex
	inFlight bool
	// Last relay dedup key sent. A scan can hit multiple relay
	// opportunities; suppressing repeats here keeps duplicate keystrokes
	// out of the downstream system the desktop drives.
	lastSentKey string
}

// NewScanProcessor creates the scan pipeline
func NewScanProcessor(
	sessionRepo repository.SessionRepository,
	passengerRepo repository.PassengerRepository,
	settingsRepo repository.SettingsRepository,
	relay RelaySender,
	analytics AnalyticsSink,
	log logger.Logger,
	m *metrics.Metrics,
) *ScanProcessor {
	return &ScanProcessor{
		sessionRepo:   sessionRepo,
		passengerRepo: passengerRepo,
		settingsRepo:  settingsRepo,
		relay:         relay,
		analytics:     analytics,
		logger:        log,
		metrics:       m,
	}
}

func (p *ScanProcessor) track(event string, properties map[string]interface{}) {
	if p.analytics != nil {
		p.analytics.Track(event, properties)
	}
}

func (p *ScanProcessor) countRejection(kind RejectionKind) {
	if p.metrics != nil {
		p.metrics.ScansRejected.WithLabelValues(string(kind)).Inc()
	}
}

// acquire takes the re-entrancy gate. While a candidate is in flight,
// further decode callbacks are dropped so at most one candidate exists at
// any time.
func (p *ScanProcessor) acquire() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight {
		return false
	}
	p.inFlight = true
	return true
}

func (p *ScanProcessor) release() {
	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()
}

// ProcessScan ingests one raw barcode payload against a session. Every
// failure path returns a typed result and leaves the pipeline ready for the
// next scan; nothing here panics or propagates transport errors.
func (p *ScanProcessor) ProcessScan(ctx context.Context, sessionID, rawText, symbology string) *ScanResult {
	if !p.acquire() {
		return &ScanResult{Kind: RejectScanInProgress}
	}
	defer p.release()

	start := time.Now()
	if p.metrics != nil {
		p.metrics.ScansProcessed.Inc()
		defer func() {
			p.metrics.ScanLatency.Observe(time.Since(start).Seconds())
		}()
	}

	session, err := p.sessionRepo.GetByID(ctx, sessionID)
	if err != nil || session == nil {
		p.logger.Warn("Scan without an active session", "sessionId", sessionID)
		p.countRejection(RejectNoActiveSession)
		return &ScanResult{Kind: RejectNoActiveSession}
	}
	if !session.IsScannable() {
		p.logger.Warn("Scan against non-active session", "sessionId", sessionID, "status", session.Status)
		p.countRejection(RejectSessionNotActive)
		return &ScanResult{Kind: RejectSessionNotActive}
	}

	candidate, extractErr := barcode.Extract(rawText, symbology, []string{session.FlightNumber})
	if extractErr != nil {
		p.logger.Info("Extraction failed", "kind", extractErr.Kind, "error", extractErr.Message)
		p.countRejection(RejectInvalidBarcode)
		p.track("scan_extraction_failed", map[string]interface{}{"kind": string(extractErr.Kind)})
		return &ScanResult{Kind: RejectInvalidBarcode, Extraction: extractErr}
	}

	passengers, err := p.passengerRepo.ListBySession(ctx, session.ID)
	if err != nil {
		p.logger.Error("Failed to load passenger list", "sessionId", session.ID, "error", err)
		p.countRejection(RejectStorageFailure)
		return &ScanResult{Kind: RejectStorageFailure, Err: err}
	}

	result := ValidateCandidate(candidate, session, passengers)
	if !result.Accepted {
		p.logger.Info("Scan rejected", "kind", result.Kind, "flight", candidate.FlightNumber)
		p.countRejection(result.Kind)
		p.track("scan_rejected", map[string]interface{}{"kind": string(result.Kind)})
		return result
	}

	passenger := &entity.Passenger{
		ID:             "pax_" + uuid.NewString(),
		PassengerName:  candidate.PassengerName,
		PNR:            candidate.PNR,
		FlightNumber:   candidate.FlightNumber,
		Seat:           candidate.Seat,
		SequenceNumber: candidate.SequenceNumber,
		Timestamp:      time.Now(),
		RawData:        candidate.RawData,
		SessionID:      session.ID,
	}

	if err := p.passengerRepo.Create(ctx, passenger); err != nil {
		p.logger.Error("Failed to persist passenger", "passenger", passenger.PassengerName, "error", err)
		p.countRejection(RejectStorageFailure)
		// Not retried automatically: the operator re-scans
		return &ScanResult{Kind: RejectStorageFailure, Err: err}
	}
	p.refreshTotal(ctx, session.ID)

	if p.metrics != nil {
		p.metrics.ScansAccepted.Inc()
	}
	p.logger.Info("Passenger accepted",
		"passenger", passenger.PassengerName,
		"seq", passenger.SequenceNumber,
		"seat", passenger.Seat,
		"sessionId", session.ID)
	p.track("scan_accepted", map[string]interface{}{"flight": passenger.FlightNumber})

	result.Passenger = passenger
	result.RelaySent = p.forwardToDesktop(ctx, passenger)
	return result
}

// forwardToDesktop pushes the accepted record to the relay client right
// away, before any user confirmation. A failed send releases the dedup key
// so a later attempt is possible; it never reverses local acceptance.
func (p *ScanProcessor) forwardToDesktop(ctx context.Context, passenger *entity.Passenger) bool {
	if p.relay == nil {
		return false
	}

	settings, err := p.settingsRepo.Get(ctx)
	if err != nil || settings == nil || !settings.DesktopModeEnabled {
		return false
	}
	if !p.relay.IsConnected() {
		return false
	}

	key := passenger.DedupKey()
	p.mu.Lock()
	if p.lastSentKey == key {
		p.mu.Unlock()
		return false
	}
	p.lastSentKey = key
	p.mu.Unlock()

	sent := p.relay.SendScanEvent(ctx, entity.NewScanEvent(passenger))
	if !sent {
		p.logger.Warn("Relay send failed", "seq", passenger.SequenceNumber)
		p.mu.Lock()
		p.lastSentKey = ""
		p.mu.Unlock()
	}
	if p.metrics != nil {
		if sent {
			p.metrics.RelaySends.WithLabelValues("ok").Inc()
		} else {
			p.metrics.RelaySends.WithLabelValues("failed").Inc()
		}
	}
	return sent
}

// ResetSendDedup clears the relay send-suppression key, e.g. when the
// operator dismisses the confirmation and a re-send should be allowed
func (p *ScanProcessor) ResetSendDedup() {
	p.mu.Lock()
	p.lastSentKey = ""
	p.mu.Unlock()
}

func (p *ScanProcessor) refreshTotal(ctx context.Context, sessionID string) {
	count, err := p.passengerRepo.CountBySession(ctx, sessionID)
	if err != nil {
		p.logger.Error("Failed to count passengers", "sessionId", sessionID, "error", err)
		return
	}
	if err := p.sessionRepo.UpdateTotalPassengers(ctx, sessionID, count); err != nil {
		p.logger.Error("Failed to update passenger total", "sessionId", sessionID, "error", err)
	}
}
