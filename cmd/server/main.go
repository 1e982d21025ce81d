package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"embrel-service/internal/domain/entity"
	domainrepo "embrel-service/internal/domain/repository"
	"embrel-service/internal/infrastructure/config"
	"embrel-service/internal/infrastructure/persistence"
	"embrel-service/internal/interface/relay"
	"embrel-service/internal/interface/repository"
	"embrel-service/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// auditSink forwards relayed scans to the log and the local audit table.
// It stands in for the keystroke injector the desktop ultimately drives.
type auditSink struct {
	logger logger.Logger
	events domainrepo.ScanEventRepository
}

func (s *auditSink) OnScanReceived(event *entity.ScanEvent) {
	s.logger.Info("Scan relayed",
		"seq", event.SequenceNumber,
		"passenger", event.PassengerName,
		"flight", event.FlightNumber,
		"seat", event.SeatNumber)
	if err := s.events.Append(context.Background(), event); err != nil {
		s.logger.Error("Failed to record scan event", "error", err)
	}
}

func (s *auditSink) OnDeviceConnected() {
	s.logger.Info("Scanner device connected")
}

func (s *auditSink) OnDeviceDisconnected() {
	s.logger.Info("Scanner device disconnected")
}

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting EMBREL Desktop Relay")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Open local database
	db, err := persistence.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to open database", "error", err)
	}

	sink := &auditSink{
		logger: log,
		events: repository.NewGormScanEventRepository(db),
	}

	// Start the relay server with port fallback
	server := relay.NewServer(sink, log)
	port, err := server.Start(cfg.PreferredPort)
	if err != nil {
		log.Fatal("Failed to start relay server", "error", err)
	}

	status := server.Status()
	for _, payload := range status.QRPayloads {
		log.Info("Connection code", "qr", payload)
	}
	log.Info("Relay server listening", "port", port, "addresses", status.Addresses)

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: mux,
	}
	go func() {
		log.Info("Starting metrics server", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Metrics server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	server.Stop()
	metricsServer.Close()

	log.Info("EMBREL Desktop Relay stopped")
}
