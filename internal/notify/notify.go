// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify provides transient toast notifications.
//
// Components report outcomes through the Notifier interface. The TUI
// backs it with a Manager that keeps a short, self-expiring stack of
// toasts; the command line backs it with a Console that prints colored
// lines.
package notify

import (
	"sync"
	"time"
)

// =============================================================================
// KINDS
// =============================================================================

// Kind is the severity of a toast.
type Kind int

const (
	Info Kind = iota
	Success
	Warning
	Error
)

// String returns the contextual color name used by the web front end.
func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "danger"
	default:
		return "info"
	}
}

// ParseKind accepts the names returned by String plus "error".
func ParseKind(s string) Kind {
	switch s {
	case "success":
		return Success
	case "warning":
		return Warning
	case "danger", "error":
		return Error
	default:
		return Info
	}
}

// Auto-dismiss durations. Errors stay longer so they can be read.
const (
	DefaultDuration = 4 * time.Second
	WarningDuration = 6 * time.Second
	ErrorDuration   = 8 * time.Second
)

// Duration returns the auto-dismiss duration for k.
func (k Kind) Duration() time.Duration {
	switch k {
	case Warning:
		return WarningDuration
	case Error:
		return ErrorDuration
	default:
		return DefaultDuration
	}
}

// Notifier receives toasts.
type Notifier interface {
	Notify(kind Kind, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind Kind, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(kind Kind, message string) {
	f(kind, message)
}

// Discard drops every toast.
var Discard Notifier = NotifierFunc(func(Kind, string) {})

// =============================================================================
// TOAST
// =============================================================================

// Toast is one notification.
type Toast struct {
	ID        int
	Message   string
	Kind      Kind
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the toast should be dismissed at now.
func (t Toast) IsExpired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// TimeRemaining returns how long until auto-dismiss at now.
func (t Toast) TimeRemaining(now time.Time) time.Duration {
	remaining := t.Duration - now.Sub(t.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// MANAGER
// =============================================================================

// MaxToasts is the number of toasts kept at once.
const MaxToasts = 5

// Manager keeps the visible toast stack, newest first.
type Manager struct {
	mu     sync.Mutex
	toasts []Toast
	nextID int
	max    int
	now    func() time.Time
}

// NewManager creates an empty toast stack.
func NewManager() *Manager {
	return &Manager{nextID: 1, max: MaxToasts, now: time.Now}
}

// SetClock replaces the time source.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Notify implements Notifier.
func (m *Manager) Notify(kind Kind, message string) {
	m.Add(kind, message)
}

// Add pushes a toast and returns its ID.
func (m *Manager) Add(kind Kind, message string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	toast := Toast{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: m.now(),
		Duration:  kind.Duration(),
	}
	m.nextID++

	m.toasts = append([]Toast{toast}, m.toasts...)
	if len(m.toasts) > m.max {
		m.toasts = m.toasts[:m.max]
	}
	return toast.ID
}

// Success adds a success toast.
func (m *Manager) Success(message string) int { return m.Add(Success, message) }

// Error adds an error toast.
func (m *Manager) Error(message string) int { return m.Add(Error, message) }

// Warning adds a warning toast.
func (m *Manager) Warning(message string) int { return m.Add(Warning, message) }

// Info adds an info toast.
func (m *Manager) Info(message string) int { return m.Add(Info, message) }

// Dismiss removes a toast by ID.
func (m *Manager) Dismiss(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, toast := range m.toasts {
		if toast.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// DismissNewest removes the most recent toast.
func (m *Manager) DismissNewest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.toasts) > 0 {
		m.toasts = m.toasts[1:]
	}
}

// Tick drops expired toasts and returns the remaining ones.
func (m *Manager) Tick() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0]
	for _, toast := range m.toasts {
		if !toast.IsExpired(now) {
			active = append(active, toast)
		}
	}
	m.toasts = active
	return append([]Toast(nil), m.toasts...)
}

// Toasts returns a copy of the current stack.
func (m *Manager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Toast(nil), m.toasts...)
}

// Len returns the number of toasts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts)
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now()
}

// Clear removes all toasts.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}
