// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/notify"
)

// Health toasts.
const (
	ToastHealthy     = "✅ Hệ thống hoạt động bình thường. Database: "
	ToastUnhealthy   = "❌ Hệ thống có vấn đề"
	ToastUnreachable = "❌ Không thể kết nối với server"
)

// Status bar texts after a health check.
const (
	SystemOKText  = "✅ Hoạt động tốt"
	SystemBadText = "❌ Có lỗi"
)

// StatusHealthy is the status reported by a working backend.
const StatusHealthy = "healthy"

// HealthDelay is how long after startup the first check runs.
const HealthDelay = 2 * time.Second

// HealthMsg carries the result of a health check.
type HealthMsg struct {
	Health *api.HealthResponse
	Err    error
}

// OK reports whether the backend answered healthy.
func (m HealthMsg) OK() bool {
	return m.Err == nil && m.Health != nil && m.Health.Status == StatusHealthy
}

// CheckHealth calls GET /health.
func (a *App) CheckHealth() tea.Cmd {
	client, timeout := a.Client, a.Config.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		h, err := client.Health(ctx)
		return HealthMsg{Health: h, Err: err}
	}
}

// ScheduleHealthCheck checks once after HealthDelay.
func (a *App) ScheduleHealthCheck() tea.Cmd {
	check := a.CheckHealth()
	return tea.Tick(HealthDelay, func(time.Time) tea.Msg {
		return check()
	})
}

// SystemText is the status bar label for a health check result.
func SystemText(ok bool) string {
	if ok {
		return SystemOKText
	}
	return SystemBadText
}

// HandleHealth toasts the check result and reports whether it was healthy.
func (a *App) HandleHealth(msg HealthMsg) bool {
	switch {
	case msg.Err != nil:
		a.Logger.Warn("health check failed", "error", msg.Err)
		a.Notifier.Notify(notify.Error, ToastUnreachable)
		return false
	case msg.OK():
		a.Notifier.Notify(notify.Success, ToastHealthy+msg.Health.Database)
		return true
	default:
		a.Notifier.Notify(notify.Error, ToastUnhealthy)
		return false
	}
}
