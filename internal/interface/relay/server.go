package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"embrel-service/internal/domain/entity"
	"embrel-service/pkg/logger"
)

// ScanSink is the embedding host that consumes relayed scans, e.g. the
// keystroke injector. The server performs no business validation of its
// own; it is a dumb relay.
type ScanSink interface {
	OnScanReceived(event *entity.ScanEvent)
	OnDeviceConnected()
	OnDeviceDisconnected()
}

// ServerStatus describes a running relay server for connection discovery
type ServerStatus struct {
	Port             int      `json:"port"`
	Addresses        []string `json:"addresses"`
	ConnectedClients int      `json:"connected"`
	QRPayloads       []string `json:"qrPayloads"`
}

type scanAck struct {
	Success  bool   `json:"success"`
	Received string `json:"received,omitempty"`
	Error    string `json:"error,omitempty"`
}

type welcomeFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

const welcomeMessage = "Connected to EMBREL Desktop"

// maxPortAttempts bounds the sequential port probe when the preferred port
// is occupied
const maxPortAttempts = 10

// Server is the desktop-side HTTP+WebSocket listener. WebSocket is the
// primary path; POST /scan is the plain-HTTP fallback on the same port.
type Server struct {
	sink     ScanSink
	logger   logger.Logger
	upgrader websocket.Upgrader

	mu         sync.Mutex
	httpServer *http.Server
	port       int
	clients    map[*websocket.Conn]struct{}
}

// NewServer creates a relay server forwarding to the given sink
func NewServer(sink ScanSink, log logger.Logger) *Server {
	return &Server{
		sink:   sink,
		logger: log,
		upgrader: websocket.Upgrader{
			// The peer is discovered over a trusted local network; no
			// origin policy applies
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Start binds the listener, probing subsequent ports when the preferred one
// is occupied. Returns the port actually bound.
func (s *Server) Start(preferredPort int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return s.port, nil
	}

	var listener net.Listener
	var port int
	for attempt := 0; attempt < maxPortAttempts; attempt++ {
		port = preferredPort + attempt
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			if errors.Is(err, syscall.EADDRINUSE) {
				s.logger.Info("Port busy, trying next", "port", port)
				continue
			}
			return 0, fmt.Errorf("failed to bind port %d: %w", port, err)
		}
		listener = ln
		break
	}
	if listener == nil {
		return 0, fmt.Errorf("no available port in range %d-%d", preferredPort, preferredPort+maxPortAttempts-1)
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/scan", s.handleScanPost).Methods("POST")
	router.HandleFunc("/status", s.handleStatus).Methods("GET")
	router.HandleFunc("/ws", s.handleWebSocket)
	// The mobile client dials the bare base URL, so the root path must
	// accept the upgrade too
	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			s.handleWebSocket(w, r)
			return
		}
		http.NotFound(w, r)
	})

	s.httpServer = &http.Server{Handler: router}
	s.port = port

	go func(srv *http.Server, ln net.Listener) {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Relay server stopped", "error", err)
		}
	}(s.httpServer, listener)

	s.logger.Info("Relay server ready", "port", port)
	return port, nil
}

// Stop closes all client transports and then the listener. Idempotent.
func (s *Server) Stop() {
	s.mu.Lock()
	server := s.httpServer
	s.httpServer = nil
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.clients = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	if server != nil {
		server.Close()
		s.logger.Info("Relay server stopped")
	}
}

// Port returns the port the server is bound to
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *Server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Status enumerates the non-loopback IPv4 addresses of the host so a
// connecting client can be shown directly usable URLs
func (s *Server) Status() *ServerStatus {
	s.mu.Lock()
	port := s.port
	connected := len(s.clients)
	s.mu.Unlock()

	addresses := hostAddresses()
	payloads := make([]string, 0, len(addresses))
	for _, address := range addresses {
		payloads = append(payloads, FormatConnectQR(address, port))
	}

	return &ServerStatus{
		Port:             port,
		Addresses:        addresses,
		ConnectedClients: connected,
		QRPayloads:       payloads,
	}
}

func hostAddresses() []string {
	var addresses []string
	interfaceAddrs, err := net.InterfaceAddrs()
	if err != nil {
		return addresses
	}
	for _, addr := range interfaceAddrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			addresses = append(addresses, ip4.String())
		}
	}
	return addresses
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"connected": s.clientCount(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Status())
}

// handleScanPost is the plain-HTTP fallback path; it forwards to the sink
// exactly as the websocket path does
func (s *Server) handleScanPost(w http.ResponseWriter, r *http.Request) {
	var event entity.ScanEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(scanAck{Success: false, Error: "Invalid message format"})
		return
	}

	s.logger.Info("Scan received via HTTP", "seq", event.SequenceNumber)
	s.sink.OnScanReceived(&event)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("Device connected", "remote", conn.RemoteAddr().String())
	s.sink.OnDeviceConnected()

	conn.WriteJSON(welcomeFrame{Type: "welcome", Message: welcomeMessage})

	go s.readClient(conn)
}

// readClient handles one device connection. Malformed messages get an error
// acknowledgment, never a disconnect: one bad frame at an airport gate must
// not cost the live connection.
func (s *Server) readClient(conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
		s.logger.Info("Device disconnected")
		s.sink.OnDeviceDisconnected()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var event entity.ScanEvent
		if err := json.Unmarshal(message, &event); err != nil {
			s.logger.Warn("Malformed scan message", "error", err)
			conn.WriteJSON(scanAck{Success: false, Error: "Invalid message format"})
			continue
		}

		s.logger.Info("Scan received", "seq", event.SequenceNumber, "passenger", event.PassengerName)
		s.sink.OnScanReceived(&event)
		conn.WriteJSON(scanAck{Success: true, Received: event.SequenceNumber})
	}
}
