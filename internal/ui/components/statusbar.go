// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/emlinh-tui/internal/ui/styles"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Connection is the real-time channel state shown in the status bar.
type Connection int

const (
	ConnDisabled Connection = iota
	ConnConnecting
	ConnConnected
	ConnDisconnected
)

// String returns the display string for the connection.
func (c Connection) String() string {
	switch c {
	case ConnConnecting:
		return "Đang kết nối"
	case ConnConnected:
		return "Đã kết nối"
	case ConnDisconnected:
		return "Mất kết nối"
	default:
		return "Realtime tắt"
	}
}

// StatusBar is the bottom line: connection, session, mode and busy state.
type StatusBar struct {
	Connection  Connection
	SessionID   string
	Duration    string
	MessageType string
	Busy        string
	System      string
	Width       int
	theme       *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

func (s *StatusBar) connectionView() string {
	switch s.Connection {
	case ConnConnected:
		return s.theme.Connected.Render(styles.StatusIndicators.Connected + " " + s.Connection.String())
	case ConnDisabled:
		return s.theme.ShortcutDesc.Render(styles.StatusIndicators.Disconnected + " " + s.Connection.String())
	default:
		return s.theme.Disconnected.Render(styles.StatusIndicators.Disconnected + " " + s.Connection.String())
	}
}

// View renders the status bar. Narrow terminals drop the session id and
// the mode first.
func (s *StatusBar) View() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	left := []string{s.connectionView()}
	if s.Width >= 60 && s.MessageType != "" {
		left = append(left, s.MessageType)
	}
	if s.Busy != "" {
		left = append(left, s.theme.TypingText.Render(s.Busy))
	}

	var right []string
	if s.System != "" {
		right = append(right, s.System)
	}
	if s.Width >= 90 && s.SessionID != "" {
		right = append(right, s.theme.ShortcutDesc.Render(util.TruncateWidth(s.SessionID, 32)))
	}
	if s.Duration != "" {
		right = append(right, s.Duration)
	}
	right = append(right, s.theme.ShortcutKey.Render("F1")+" "+s.theme.ShortcutDesc.Render("help"))

	l := strings.Join(left, sep)
	r := strings.Join(right, sep)
	gap := s.Width - lipgloss.Width(l) - lipgloss.Width(r) - 2
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Width(s.Width).Render(l + strings.Repeat(" ", gap) + r)
}
