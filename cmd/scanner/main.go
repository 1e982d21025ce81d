package main

import (
	"bufio"
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"embrel-service/internal/domain/entity"
	"embrel-service/internal/infrastructure/config"
	"embrel-service/internal/infrastructure/persistence"
	"embrel-service/internal/interface/relay"
	"embrel-service/internal/interface/repository"
	"embrel-service/internal/usecase"
	"embrel-service/pkg/logger"
	"embrel-service/pkg/metrics"
)

// logAnalytics is a fire-and-forget analytics sink backed by the log
type logAnalytics struct {
	logger logger.Logger
}

func (a *logAnalytics) Track(event string, properties map[string]interface{}) {
	a.logger.Debug("analytics", "event", event, "properties", properties)
}

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting EMBREL Scanner")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	flightNumber := os.Getenv("FLIGHT_NUMBER")
	if flightNumber == "" {
		log.Fatal("FLIGHT_NUMBER is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open local database
	db, err := persistence.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to open database", "error", err)
	}

	// Set up repositories
	sessionRepo := repository.NewGormSessionRepository(db)
	passengerRepo := repository.NewGormPassengerRepository(db)
	flightRepo := repository.NewGormFlightRepository(db)
	settingsRepo := repository.NewGormSettingsRepository(db)
	connectionRepo := repository.NewGormConnectionRepository(db)

	m := metrics.NewMetrics("embrel")

	// Relay client for desktop forwarding
	clientConfig := relay.DefaultClientConfig()
	clientConfig.MaxReconnectAttempts = cfg.MaxReconnectAttempts
	clientConfig.BackoffStep = cfg.BackoffStep
	clientConfig.MaxBackoff = cfg.MaxBackoff
	clientConfig.ProbeTimeout = cfg.ProbeTimeout
	relayClient := relay.NewClient(clientConfig, connectionRepo, log, m)
	relayClient.AddConnectionListener(func(connected bool) {
		log.Info("Desktop connection state changed", "connected", connected)
	})

	if cfg.DesktopURL != "" {
		url := cfg.DesktopURL
		if strings.HasPrefix(url, relay.ConnectQRPrefix) {
			parsed, err := relay.ParseConnectQR(url)
			if err != nil {
				log.Fatal("Invalid connection code", "error", err)
			}
			url = parsed
		}
		if relayClient.TestConnection(ctx, url) {
			if err := relayClient.SaveConnection(ctx, url, ""); err != nil {
				log.Error("Failed to store desktop connection", "error", err)
			}
			relayClient.Connect(url,
				func() { log.Info("Desktop mode ready", "url", url) },
				func(err error) { log.Error("Desktop connection error", "error", err) })
		} else {
			log.Warn("Desktop health probe failed, continuing without relay", "url", url)
		}
	} else if stored, err := relayClient.StoredConnection(ctx); err == nil && stored != nil {
		relayClient.Connect(stored.URL,
			func() { log.Info("Reconnected to desktop", "url", stored.URL) },
			func(err error) { log.Error("Desktop connection error", "error", err) })
	}

	sessionManager := usecase.NewSessionManager(sessionRepo, passengerRepo, flightRepo, log)
	processor := usecase.NewScanProcessor(
		sessionRepo, passengerRepo, settingsRepo,
		relayClient, &logAnalytics{logger: log}, log, m)

	// Resolve the flight template, creating it on first use
	flight, err := flightRepo.GetByFlightNumber(ctx, flightNumber)
	if err != nil {
		now := time.Now()
		flight = &entity.Flight{
			ID:           uuid.NewString(),
			FlightNumber: flightNumber,
			Route:        os.Getenv("FLIGHT_ROUTE"),
			Date:         now.Format("2006-01-02"),
			Time:         now.Format("15:04"),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := flightRepo.Create(ctx, flight); err != nil {
			log.Fatal("Failed to create flight", "error", err)
		}
		log.Info("Flight created", "flight", flightNumber)
	}

	session, err := sessionManager.CreateSession(ctx, flight.ID)
	if err != nil {
		log.Fatal("Failed to open session", "error", err)
	}
	if _, err := sessionManager.StartScanning(ctx, session.ID); err != nil {
		log.Fatal("Failed to start scanning", "error", err)
	}
	log.Info("Scanning session active", "sessionId", session.ID, "flight", session.FlightNumber)

	// Read barcode payloads line by line; an optional "qr:" or "pdf417:"
	// prefix carries the symbology, defaulting to qr
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		symbology := "qr"
		payload := line
		if idx := strings.Index(line, ":"); idx > 0 {
			prefix := strings.ToLower(line[:idx])
			if prefix == "qr" || prefix == "pdf417" {
				symbology = prefix
				payload = line[idx+1:]
			}
		}

		result := processor.ProcessScan(ctx, session.ID, payload, symbology)
		switch {
		case result.Accepted:
			log.Info("Boarding accepted",
				"passenger", result.Passenger.PassengerName,
				"seq", result.Passenger.SequenceNumber,
				"seat", result.Passenger.Seat,
				"relayed", result.RelaySent,
				"exitRow", usecase.IsEmergencyExitRow(result.Passenger.Seat))
		case result.Kind == usecase.RejectDuplicate:
			log.Warn("Duplicate passenger",
				"passenger", result.Duplicate.PassengerName,
				"seq", result.Duplicate.SequenceNumber)
		case result.Kind == usecase.RejectWrongFlight:
			log.Warn("Wrong flight", "expected", result.Expected, "found", result.Found)
		case result.Extraction != nil:
			log.Warn("Unreadable boarding pass", "kind", result.Extraction.Kind, "detail", result.Extraction.Message)
		default:
			log.Warn("Scan rejected", "kind", result.Kind, "error", result.Err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error("Input error", "error", err)
	}

	relayClient.Disconnect()
	log.Info("EMBREL Scanner stopped")
}
