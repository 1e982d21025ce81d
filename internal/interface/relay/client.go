package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"embrel-service/internal/domain/entity"
	"embrel-service/internal/domain/repository"
	"embrel-service/pkg/logger"
	"embrel-service/pkg/metrics"
)

// connState is the relay client connection state machine. Modelling backoff
// as an explicit state keeps manual-reconnect and timer races out of the
// design instead of guarding them by convention.
type connState int

const (
	stateIdle connState = iota
	stateConnecting
	stateConnected
	stateBackoff
)

// ClientConfig tunes the reconnect and probe behavior
type ClientConfig struct {
	MaxReconnectAttempts int
	BackoffStep          time.Duration
	MaxBackoff           time.Duration
	DialTimeout          time.Duration
	ProbeTimeout         time.Duration
	SendTimeout          time.Duration
}

// DefaultClientConfig returns the production reconnect policy: three
// automatic attempts at 5s, 10s, 15s after a drop
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		MaxReconnectAttempts: 3,
		BackoffStep:          5 * time.Second,
		MaxBackoff:           30 * time.Second,
		DialTimeout:          10 * time.Second,
		ProbeTimeout:         5 * time.Second,
		SendTimeout:          10 * time.Second,
	}
}

// ConnectionListener observes connection-state transitions
type ConnectionListener func(connected bool)

// Client maintains the best-effort, auto-reconnecting connection to one
// desktop peer. It exclusively owns the websocket handle; every send goes
// through SendScanEvent.
type Client struct {
	config   ClientConfig
	connRepo repository.ConnectionRepository
	logger   logger.Logger
	metrics  *metrics.Metrics

	httpClient *http.Client

	mu                sync.Mutex
	writeMu           sync.Mutex
	conn              *websocket.Conn
	state             connState
	isConnected       bool
	reconnectAttempts int
	currentURL        string
	reconnectTimer    *time.Timer

	listenerMu     sync.Mutex
	listeners      map[int]ConnectionListener
	nextListenerID int
}

// NewClient creates a relay client. One client per process; it owns its own
// timer and listener set.
func NewClient(config ClientConfig, connRepo repository.ConnectionRepository, log logger.Logger, m *metrics.Metrics) *Client {
	return &Client{
		config:     config,
		connRepo:   connRepo,
		logger:     log,
		metrics:    m,
		httpClient: &http.Client{Timeout: config.SendTimeout},
		listeners:  make(map[int]ConnectionListener),
	}
}

// toWebSocketURL converts the discovered HTTP base URL to its websocket form
func toWebSocketURL(url string) string {
	url = strings.Replace(url, "http://", "ws://", 1)
	return strings.Replace(url, "https://", "wss://", 1)
}

// AddConnectionListener registers an observer for connection-state changes
// and returns its unsubscribe function
func (c *Client) AddConnectionListener(listener ConnectionListener) func() {
	c.listenerMu.Lock()
	id := c.nextListenerID
	c.nextListenerID++
	c.listeners[id] = listener
	c.listenerMu.Unlock()

	return func() {
		c.listenerMu.Lock()
		delete(c.listeners, id)
		c.listenerMu.Unlock()
	}
}

func (c *Client) notifyListeners(connected bool) {
	c.listenerMu.Lock()
	snapshot := make([]ConnectionListener, 0, len(c.listeners))
	for _, listener := range c.listeners {
		snapshot = append(snapshot, listener)
	}
	c.listenerMu.Unlock()

	for _, listener := range snapshot {
		listener(connected)
	}
}

// IsConnected reports whether the websocket transport is currently live
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected
}

// TestConnection probes a candidate URL's health endpoint. Single attempt,
// short timeout, no retries; used before persisting a new connection.
func (c *Client) TestConnection(ctx context.Context, url string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Connect tears down any existing transport and dials the peer. onConnected
// fires on a successful open; onError fires only for the first failure of a
// connection attempt cycle so automatic retries don't spam the caller.
func (c *Client) Connect(url string, onConnected func(), onError func(err error)) {
	c.dial(url, onConnected, onError, false)
}

// dial opens the transport. Automatic redials abort under the lock when the
// connection was deliberately torn down or replaced in the meantime, so a
// racing Disconnect can never be undone by a timer that already fired.
func (c *Client) dial(url string, onConnected func(), onError func(err error), auto bool) {
	c.mu.Lock()
	if auto && (c.isConnected || c.currentURL != url) {
		c.mu.Unlock()
		return
	}
	c.cancelReconnectTimerLocked()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.currentURL = url
	c.state = stateConnecting
	first := c.reconnectAttempts == 0
	c.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: c.config.DialTimeout}
	conn, resp, err := dialer.Dial(toWebSocketURL(url), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.logger.Warn("Desktop connection failed", "url", url, "error", err)
		if first && onError != nil {
			onError(err)
		}
		c.handleDisconnect()
		return
	}

	c.mu.Lock()
	c.conn = conn
	c.isConnected = true
	c.reconnectAttempts = 0
	c.state = stateConnected
	c.mu.Unlock()

	c.logger.Info("Connected to desktop", "url", url)
	c.notifyListeners(true)
	if onConnected != nil {
		onConnected()
	}

	go c.readLoop(conn)
}

// readLoop drains inbound frames (welcome and delivery acks) until the
// transport dies, then runs the disconnect path
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}
		c.logger.Debug("Message from desktop", "message", string(message))
	}

	c.mu.Lock()
	stale := c.conn != conn
	c.mu.Unlock()
	if stale {
		// A newer connection replaced this one; nothing to do
		return
	}
	c.handleDisconnect()
}

// handleDisconnect marks the transport down and, while attempts remain and
// a URL is still remembered, schedules the next automatic reconnect with
// linear backoff. Disconnect clears the URL first, so a deliberate teardown
// observes "no URL" here and schedules nothing.
func (c *Client) handleDisconnect() {
	c.mu.Lock()
	c.isConnected = false
	c.conn = nil

	if c.currentURL != "" && c.reconnectAttempts < c.config.MaxReconnectAttempts {
		c.reconnectAttempts++
		attempt := c.reconnectAttempts
		delay := c.config.BackoffStep * time.Duration(attempt)
		if delay > c.config.MaxBackoff {
			delay = c.config.MaxBackoff
		}
		url := c.currentURL
		c.state = stateBackoff
		c.logger.Info("Scheduling reconnect",
			"delayMs", delay.Milliseconds(),
			"attempt", attempt,
			"maxAttempts", c.config.MaxReconnectAttempts)
		c.reconnectTimer = time.AfterFunc(delay, func() {
			if c.metrics != nil {
				c.metrics.RelayReconnects.Inc()
			}
			c.dial(url, nil, nil, true)
		})
	} else {
		c.state = stateIdle
	}
	c.mu.Unlock()

	c.logger.Info("Disconnected from desktop")
	c.notifyListeners(false)
}

func (c *Client) cancelReconnectTimerLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
}

// Disconnect deliberately tears the connection down. The remembered URL is
// cleared before the transport closes so the close path cannot schedule a
// reconnect; the pending timer is also cancelled outright.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.currentURL = ""
	c.reconnectAttempts = 0
	c.cancelReconnectTimerLocked()
	conn := c.conn
	c.conn = nil
	c.isConnected = false
	c.state = stateIdle
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
		c.notifyListeners(false)
	}
}

// Reconnect manually re-arms the connection after automatic attempts were
// exhausted: the attempt counter resets and the remembered URL is redialed.
// Any pending automatic reconnect is cancelled first so two attempts never
// race.
func (c *Client) Reconnect() {
	c.mu.Lock()
	c.cancelReconnectTimerLocked()
	c.reconnectAttempts = 0
	url := c.currentURL
	c.mu.Unlock()

	if url != "" {
		c.dial(url, nil, nil, false)
	}
}

// SendScanEvent delivers one scan event, websocket first with a single HTTP
// POST fallback to the stored connection's base URL. Returns whether either
// path succeeded; never returns an error.
func (c *Client) SendScanEvent(ctx context.Context, event *entity.ScanEvent) bool {
	c.mu.Lock()
	conn := c.conn
	connected := c.isConnected
	c.mu.Unlock()

	if conn != nil && connected {
		c.writeMu.Lock()
		err := conn.WriteJSON(event)
		c.writeMu.Unlock()
		if err == nil {
			return true
		}
		c.logger.Warn("WebSocket send failed, falling back to HTTP", "error", err)
	}

	stored, err := c.connRepo.Get(ctx)
	if err != nil || stored == nil {
		return false
	}

	body, err := json.Marshal(event)
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, stored.URL+"/scan", bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("HTTP fallback send failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// SaveConnection persists the relay endpoint for reconnection across
// process restarts
func (c *Client) SaveConnection(ctx context.Context, url, name string) error {
	return c.connRepo.Save(ctx, &entity.DesktopConnection{
		URL:           url,
		LastConnected: time.Now(),
		Name:          name,
	})
}

// StoredConnection returns the remembered endpoint, or nil when none is saved
func (c *Client) StoredConnection(ctx context.Context) (*entity.DesktopConnection, error) {
	return c.connRepo.Get(ctx)
}

// ClearConnection forgets the stored endpoint and disconnects
func (c *Client) ClearConnection(ctx context.Context) error {
	if err := c.connRepo.Clear(ctx); err != nil {
		return err
	}
	c.Disconnect()
	return nil
}
