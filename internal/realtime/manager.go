// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

// =============================================================================
// EVENTS
// =============================================================================

// Local and server event names.
const (
	EventConnect       = "connect"
	EventDisconnect    = "disconnect"
	EventConnectError  = "connect_error"
	EventVideoProgress = "video_progress"
)

// Disconnect reasons.
const (
	ReasonServerDisconnect = "io server disconnect"
	ReasonClientDisconnect = "io client disconnect"
	ReasonTransportClose   = "transport close"
)

// Outbound room events.
const (
	emitJoinSession  = "join_session"
	emitLeaveSession = "leave_session"
)

// ErrClosed is returned once Close has been called.
var ErrClosed = errors.New("realtime: manager closed")

// ErrNotConnected is returned by Emit without a live connection.
var ErrNotConnected = errors.New("realtime: not connected")

// Event is delivered to listeners. Only the fields relevant to Name are set.
type Event struct {
	Name     string
	SocketID string
	Reason   string
	Err      error
	Data     json.RawMessage
}

// Listener receives events. It runs on the connection's goroutine and
// must not block.
type Listener func(Event)

// Timer is a pending reconnect.
type Timer interface {
	Stop() bool
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds configuration options for the Manager.
type Config struct {
	// URL is the websocket endpoint, see EndpointURL.
	URL string

	// MaxReconnectAttempts caps backoff reconnects (default: 5)
	MaxReconnectAttempts int

	// ReconnectDelay is the base backoff delay (default: 1s)
	ReconnectDelay time.Duration

	// ConnectTimeout bounds dial plus handshake (default: 60s)
	ConnectTimeout time.Duration

	Dialer Dialer
	Logger *slog.Logger

	// AfterFunc schedules reconnects (default: time.AfterFunc).
	AfterFunc func(d time.Duration, f func()) Timer
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns one Socket.IO connection.
//
// The Manager is thread-safe for concurrent use.
type Manager struct {
	cfg Config
	log *slog.Logger

	mu        sync.Mutex
	conn      Conn
	gen       uint64
	connected bool
	socketID  string
	sessionID string
	attempts  int
	closed    bool
	timer     Timer
	listeners map[string][]listenerEntry
	nextID    int

	writeMu sync.Mutex
}

type listenerEntry struct {
	id int
	fn Listener
}

// NewManager creates a Manager. It does not connect.
func NewManager(cfg Config) *Manager {
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = 5
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 60 * time.Second
	}
	if cfg.Dialer == nil {
		cfg.Dialer = WebsocketDialer{HandshakeTimeout: cfg.ConnectTimeout}
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		cfg:       cfg,
		log:       logger.With("component", "realtime"),
		listeners: make(map[string][]listenerEntry),
	}
}

// =============================================================================
// STATE
// =============================================================================

// IsConnected reports whether the connection is live.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// SocketID returns the server-assigned id, or "" when disconnected.
func (m *Manager) SocketID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ""
	}
	return m.socketID
}

// SessionID returns the session rejoined after reconnects.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Attempts returns the number of backoff reconnects since the last
// successful connect.
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// =============================================================================
// LISTENERS
// =============================================================================

// On registers fn for the named event and returns a function removing it.
func (m *Manager) On(name string, fn Listener) func() {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners[name] = append(m.listeners[name], listenerEntry{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		entries := m.listeners[name]
		for i, e := range entries {
			if e.id == id {
				m.listeners[name] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// OnVideoProgress registers fn for decoded video_progress events.
// Undecodable payloads are logged and dropped.
func (m *Manager) OnVideoProgress(fn func(model.ProgressEvent)) func() {
	return m.On(EventVideoProgress, func(ev Event) {
		progress, err := DecodeProgress(ev.Data)
		if err != nil {
			m.log.Warn("dropping video_progress", "error", err)
			return
		}
		fn(progress)
	})
}

// DecodeProgress parses a video_progress payload.
func DecodeProgress(data json.RawMessage) (model.ProgressEvent, error) {
	var ev model.ProgressEvent
	if len(data) == 0 {
		return ev, fmt.Errorf("%w: empty progress payload", ErrMalformedPacket)
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, err
	}
	return ev, nil
}

func (m *Manager) emit(ev Event) {
	m.mu.Lock()
	entries := append([]listenerEntry(nil), m.listeners[ev.Name]...)
	m.mu.Unlock()

	for _, e := range entries {
		m.call(e.fn, ev)
	}
}

func (m *Manager) call(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("listener panicked", "event", ev.Name, "panic", r)
		}
	}()
	fn(ev)
}

// =============================================================================
// CONNECTION
// =============================================================================

// Start connects in the background, falling back to backoff reconnects
// when the first attempt fails.
func (m *Manager) Start(ctx context.Context) {
	go m.connectOrRetry(ctx)
}

func (m *Manager) connectOrRetry(ctx context.Context) {
	if err := m.Connect(ctx); err != nil {
		if errors.Is(err, ErrClosed) {
			return
		}
		m.log.Warn("connect failed", "error", err)
		m.emit(Event{Name: EventConnectError, Err: err})
		m.scheduleReconnect()
	}
}

// Connect dials and performs the Socket.IO handshake. On success the
// attempt counter resets, the stored session is rejoined and connect
// listeners run.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()

	conn, err := m.cfg.Dialer.Dial(ctx, m.cfg.URL)
	if err != nil {
		return err
	}
	sid, err := handshake(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	m.gen++
	gen := m.gen
	m.conn = conn
	m.connected = true
	m.socketID = sid
	m.attempts = 0
	session := m.sessionID
	m.mu.Unlock()

	m.log.Info("connected", "sid", sid)
	go m.readLoop(gen, conn)

	if session != "" {
		m.JoinSession(session)
	}
	m.emit(Event{Name: EventConnect, SocketID: sid})
	return nil
}

// handshake reads the Engine.IO open packet, requests the default
// namespace and waits for its ack.
func handshake(ctx context.Context, conn Conn) (string, error) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	_, data, err := conn.ReadMessage()
	if err != nil {
		return "", handshakeErr(ctx, err)
	}
	f, err := decodeFrame(data)
	if err != nil {
		return "", err
	}
	if f.eio != eioOpen {
		return "", fmt.Errorf("%w: expected open packet, got %q", ErrMalformedPacket, string(data))
	}

	if err := conn.WriteMessage(websocket.TextMessage, connectPacket()); err != nil {
		return "", handshakeErr(ctx, err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return "", handshakeErr(ctx, err)
		}
		f, err := decodeFrame(data)
		if err != nil {
			return "", err
		}
		switch {
		case f.eio == eioPing:
			if err := conn.WriteMessage(websocket.TextMessage, pongPacket()); err != nil {
				return "", handshakeErr(ctx, err)
			}
		case f.eio == eioMessage && f.sio == sioConnect:
			var ack connectPayload
			if len(f.body) > 0 {
				_ = json.Unmarshal(f.body, &ack)
			}
			return ack.SID, nil
		case f.eio == eioMessage && f.sio == sioConnectError:
			var ack connectPayload
			_ = json.Unmarshal(f.body, &ack)
			if ack.Message == "" {
				ack.Message = string(f.body)
			}
			return "", fmt.Errorf("realtime: connection refused: %s", ack.Message)
		case f.eio == eioClose:
			return "", fmt.Errorf("realtime: closed during handshake")
		}
	}
}

func handshakeErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("realtime: handshake: %w", ctx.Err())
	}
	return err
}

func (m *Manager) readLoop(gen uint64, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.handleDisconnect(gen, ReasonTransportClose)
			return
		}
		f, err := decodeFrame(data)
		if err != nil {
			m.log.Warn("bad frame", "error", err)
			continue
		}
		switch f.eio {
		case eioPing:
			if err := m.write(gen, pongPacket()); err != nil {
				m.log.Warn("pong failed", "error", err)
			}
		case eioClose:
			_ = conn.Close()
			m.handleDisconnect(gen, ReasonTransportClose)
			return
		case eioMessage:
			switch f.sio {
			case sioEvent:
				m.emit(Event{Name: f.event, Data: f.payload})
			case sioDisconnect:
				_ = conn.Close()
				m.handleDisconnect(gen, ReasonServerDisconnect)
				return
			}
		}
	}
}

func (m *Manager) handleDisconnect(gen uint64, reason string) {
	m.mu.Lock()
	if gen != m.gen || !m.connected {
		m.mu.Unlock()
		return
	}
	m.connected = false
	m.conn = nil
	closed := m.closed
	m.mu.Unlock()

	m.log.Info("disconnected", "reason", reason)
	m.emit(Event{Name: EventDisconnect, Reason: reason})

	if closed {
		return
	}
	if reason == ReasonServerDisconnect {
		m.mu.Lock()
		m.timer = m.cfg.AfterFunc(0, m.reconnect)
		m.mu.Unlock()
		return
	}
	m.scheduleReconnect()
}

// scheduleReconnect arms the next backoff attempt, or gives up at the cap.
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.attempts >= m.cfg.MaxReconnectAttempts {
		attempts := m.attempts
		m.mu.Unlock()
		m.log.Error("max reconnection attempts reached", "attempts", attempts)
		return
	}
	m.attempts++
	attempt := m.attempts
	delay := BackoffDelay(m.cfg.ReconnectDelay, attempt)
	m.timer = m.cfg.AfterFunc(delay, m.reconnect)
	m.mu.Unlock()

	m.log.Info("reconnecting", "delay", delay, "attempt", attempt, "max", m.cfg.MaxReconnectAttempts)
}

func (m *Manager) reconnect() {
	m.connectOrRetry(context.Background())
}

// BackoffDelay returns base * 2^(attempt-1).
func BackoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << uint(attempt-1)
}

// Close disconnects without reconnecting.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	conn := m.conn
	wasConnected := m.connected
	m.conn = nil
	m.connected = false
	m.gen++
	m.mu.Unlock()

	if conn == nil {
		return nil
	}
	m.writeMu.Lock()
	_ = conn.WriteMessage(websocket.TextMessage, disconnectPacket())
	m.writeMu.Unlock()
	err := conn.Close()
	if wasConnected {
		m.emit(Event{Name: EventDisconnect, Reason: ReasonClientDisconnect})
	}
	return err
}

// =============================================================================
// EMIT / ROOMS
// =============================================================================

func (m *Manager) write(gen uint64, data []byte) error {
	m.mu.Lock()
	conn := m.conn
	live := m.connected && gen == m.gen
	m.mu.Unlock()
	if !live || conn == nil {
		return ErrNotConnected
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Emit sends a named event with an optional JSON payload.
func (m *Manager) Emit(name string, payload interface{}) error {
	data, err := encodeEvent(name, payload)
	if err != nil {
		return err
	}
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()
	return m.write(gen, data)
}

type roomPayload struct {
	SessionID string `json:"session_id"`
}

// JoinSession joins the session's broadcast room and remembers it for
// reconnects. It returns false when not connected; the session is still
// remembered and joined by the next successful connect.
func (m *Manager) JoinSession(sessionID string) bool {
	m.mu.Lock()
	m.sessionID = sessionID
	connected := m.connected
	m.mu.Unlock()
	if !connected {
		m.log.Warn("cannot join session: not connected", "session", sessionID)
		return false
	}

	if err := m.Emit(emitJoinSession, roomPayload{SessionID: sessionID}); err != nil {
		m.log.Warn("join_session failed", "session", sessionID, "error", err)
	}
	m.log.Debug("joining session", "session", sessionID)
	return true
}

// LeaveSession leaves the room. The remembered session is cleared when it
// matches. It returns false when not connected.
func (m *Manager) LeaveSession(sessionID string) bool {
	if !m.IsConnected() {
		m.log.Warn("cannot leave session: not connected", "session", sessionID)
		return false
	}
	if err := m.Emit(emitLeaveSession, roomPayload{SessionID: sessionID}); err != nil {
		m.log.Warn("leave_session failed", "session", sessionID, "error", err)
	}

	m.mu.Lock()
	if m.sessionID == sessionID {
		m.sessionID = ""
	}
	m.mu.Unlock()
	m.log.Debug("leaving session", "session", sessionID)
	return true
}
