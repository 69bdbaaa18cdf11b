// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/binary"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/chat"
	"github.com/jeranaias/emlinh-tui/internal/events"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
)

// Toast texts.
const (
	ToastNewSession  = "Đã bắt đầu phiên chat mới"
	ToastHistoryFail = "Lỗi khi tải lịch sử chat"
)

// Joiner is the real-time channel. *realtime.Manager implements it.
type Joiner interface {
	JoinSession(sessionID string) bool
	LeaveSession(sessionID string) bool
}

// Store is the backend surface the manager needs. *api.Client implements it.
type Store interface {
	History(ctx context.Context, sessionID string) ([]model.HistoryEntry, error)
	Session(ctx context.Context, sessionID string) (*model.SessionSummary, error)
	UpdateSession(ctx context.Context, sessionID string, patch api.SessionPatch) error
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Options configure a Manager.
type Options struct {
	Store    Store
	Joiner   Joiner
	View     *chat.Transcript
	Notifier notify.Notifier
	Bus      *events.Bus
	Logger   *slog.Logger
	Timeout  time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Manager tracks the current session.
type Manager struct {
	mu sync.Mutex

	sessionID    string
	startTime    time.Time
	lastActivity time.Time

	store   Store
	joiner  Joiner
	view    *chat.Transcript
	notify  notify.Notifier
	bus     *events.Bus
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewManager creates a manager with no session. Call Init before use.
func NewManager(opts Options) *Manager {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus(opts.Logger)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	now := opts.Now()
	return &Manager{
		startTime:    now,
		lastActivity: now,
		store:        opts.Store,
		joiner:       opts.Joiner,
		view:         opts.View,
		notify:       opts.Notifier,
		bus:          opts.Bus,
		log:          opts.Logger.With("component", "session"),
		timeout:      opts.Timeout,
		now:          opts.Now,
	}
}

// SessionID returns the current session ID.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// SetJoiner wires the real-time channel after construction.
func (m *Manager) SetJoiner(j Joiner) {
	m.mu.Lock()
	m.joiner = j
	m.mu.Unlock()
}

func (m *Manager) setID(id string) {
	m.mu.Lock()
	m.sessionID = id
	now := m.now()
	m.startTime = now
	m.lastActivity = now
	m.mu.Unlock()
	if m.view != nil {
		m.view.SetSessionID(id)
	}
}

func (m *Manager) join(id string) {
	m.mu.Lock()
	j := m.joiner
	m.mu.Unlock()
	if j == nil {
		return
	}
	if !j.JoinSession(id) {
		m.log.Debug("join deferred until connected", "session", id)
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// HistoryMsg carries the stored exchanges of a session.
type HistoryMsg struct {
	SessionID string
	Entries   []model.HistoryEntry
	Err       error
}

// Init adopts initial when it is set, clearing the transcript and
// returning a command that loads its history. Otherwise a fresh id is
// generated and the command is nil. The session is joined either way.
func (m *Manager) Init(initial string) tea.Cmd {
	initial = strings.TrimSpace(initial)
	if initial == "" {
		id := GenerateID(m.now())
		m.setID(id)
		m.join(id)
		m.log.Info("session created", "session", id)
		return nil
	}

	m.setID(initial)
	m.join(initial)
	m.log.Info("session adopted", "session", initial)
	if m.view != nil {
		m.view.Clear()
	}
	return m.LoadHistory(initial)
}

// Switch leaves the current room and adopts id as Init does. It is used
// when a stored conversation is reopened.
func (m *Manager) Switch(id string) tea.Cmd {
	id = strings.TrimSpace(id)
	old := m.SessionID()
	if id == "" || id == old {
		return nil
	}
	m.mu.Lock()
	j := m.joiner
	m.mu.Unlock()
	if old != "" && j != nil {
		j.LeaveSession(old)
	}
	return m.Init(id)
}

// LoadHistory fetches the exchanges of sessionID.
func (m *Manager) LoadHistory(sessionID string) tea.Cmd {
	store, timeout := m.store, m.timeout
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		entries, err := store.History(ctx, sessionID)
		return HistoryMsg{SessionID: sessionID, Entries: entries, Err: err}
	}
}

// HandleHistory replays the loaded exchanges. Results for a session that
// is no longer current are dropped.
func (m *Manager) HandleHistory(msg HistoryMsg) {
	if msg.SessionID != m.SessionID() {
		m.log.Debug("dropping stale history", "session", msg.SessionID)
		return
	}
	if msg.Err != nil {
		m.log.Warn("history load failed", "session", msg.SessionID, "error", msg.Err)
		m.notify.Notify(notify.Error, ToastHistoryFail)
		return
	}
	if m.view == nil {
		return
	}
	for _, e := range msg.Entries {
		m.view.AddExchange(e.UserMessage, e.AIResponse, e.Timestamp.Time)
	}
	m.view.ScrollToBottom()
	m.log.Info("history loaded", "session", msg.SessionID, "entries", len(msg.Entries))
}

// StartNew leaves the current room, switches to a fresh id, joins it and
// publishes NewSession. It returns the new id.
func (m *Manager) StartNew() string {
	old := m.SessionID()
	m.mu.Lock()
	j := m.joiner
	m.mu.Unlock()
	if old != "" && j != nil {
		j.LeaveSession(old)
	}

	id := GenerateID(m.now())
	for id == old {
		id = GenerateID(m.now())
	}
	m.setID(id)
	m.join(id)
	m.log.Info("new session", "session", id, "previous", old)

	m.bus.Publish(events.Event{Kind: events.NewSession, SessionID: id})
	return id
}

// ResetView is the NewSession handler for the chat transcript.
func (m *Manager) ResetView(events.Event) {
	if m.view != nil {
		m.view.Clear()
		m.view.AddWelcome()
	}
	m.notify.Notify(notify.Success, ToastNewSession)
}

// =============================================================================
// ACTIVITY TRACKING
// =============================================================================

// RecordActivity updates the last activity timestamp.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = m.now()
}

// Duration returns how long the session has been active.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Sub(m.startTime)
}

// IdleTime returns how long since last activity.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Sub(m.lastActivity)
}

// Status represents the current session status.
type Status struct {
	SessionID string
	StartTime time.Time
	Duration  time.Duration
	IdleTime  time.Duration
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	return Status{
		SessionID: m.sessionID,
		StartTime: m.startTime,
		Duration:  now.Sub(m.startTime),
		IdleTime:  now.Sub(m.lastActivity),
	}
}

// TickMsg refreshes the status bar clock.
type TickMsg struct {
	Time time.Time
}

// TickCmd returns a command that ticks every second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

const suffixLen = 9

// GenerateID creates "session_<unix ms>_<9 base36 chars>".
func GenerateID(now time.Time) string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8])
	suffix := strconv.FormatUint(n, 36)
	if len(suffix) < suffixLen {
		suffix = strings.Repeat("0", suffixLen-len(suffix)) + suffix
	}
	suffix = suffix[len(suffix)-suffixLen:]
	return "session_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	if d >= time.Hour {
		h := int(d.Hours())
		mins := int(d.Minutes()) % 60
		return strconv.Itoa(h) + "h " + strconv.Itoa(mins) + "m"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
