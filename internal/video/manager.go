// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package video

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/chat"
	"github.com/jeranaias/emlinh-tui/internal/events"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
)

// Toast texts.
const (
	ToastCreated = "🎬 Video đã được tạo thành công!"
	ToastFailed  = "Tạo video thất bại"
	ToastBusy    = "Đang có video được tạo, vui lòng chờ hoàn tất"
)

// Creator starts video jobs. *api.Client implements it.
type Creator interface {
	CreateVideo(ctx context.Context, req api.CreateVideoRequest) (*api.CreateVideoResponse, error)
}

// SessionSource supplies the current session id.
type SessionSource interface {
	SessionID() string
}

// =============================================================================
// REQUESTS
// =============================================================================

// CreateRequest holds the parameters of a new video. Zero fields take the
// manager defaults.
type CreateRequest struct {
	Topic       string
	Duration    int
	Composition string
	Background  string
	Voice       string
}

// DefaultRequest returns the built-in parameters.
func DefaultRequest() CreateRequest {
	return CreateRequest{
		Duration:    15,
		Composition: "Scene-Landscape",
		Background:  "office",
		Voice:       "nova",
	}
}

func (r CreateRequest) withDefaults(d CreateRequest) CreateRequest {
	if r.Duration <= 0 {
		r.Duration = d.Duration
	}
	if r.Composition == "" {
		r.Composition = d.Composition
	}
	if r.Background == "" {
		r.Background = d.Background
	}
	if r.Voice == "" {
		r.Voice = d.Voice
	}
	return r
}

// CreateResultMsg carries the settled create request.
type CreateResultMsg struct {
	Topic    string
	Response *api.CreateVideoResponse
	Err      error
}

// ProgressMsg wraps a realtime progress event for the Bubble Tea loop.
type ProgressMsg struct {
	Event model.ProgressEvent
}

// =============================================================================
// MANAGER
// =============================================================================

// Options configure a Manager.
type Options struct {
	Client           Creator
	Session          SessionSource
	View             *chat.Transcript
	Notifier         notify.Notifier
	Bus              *events.Bus
	Logger           *slog.Logger
	Defaults         CreateRequest
	RejectConcurrent bool
	Timeout          time.Duration
}

// Manager starts jobs and applies their progress to the transcript.
type Manager struct {
	client  Creator
	session SessionSource
	view    *chat.Transcript
	notify  notify.Notifier
	bus     *events.Bus
	log     *slog.Logger

	defaults         CreateRequest
	rejectConcurrent bool
	timeout          time.Duration

	tracker Tracker
}

// NewManager creates a Manager.
func NewManager(opts Options) *Manager {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus(opts.Logger)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	return &Manager{
		client:           opts.Client,
		session:          opts.Session,
		view:             opts.View,
		notify:           opts.Notifier,
		bus:              opts.Bus,
		log:              opts.Logger.With("component", "video"),
		defaults:         opts.Defaults.withDefaults(DefaultRequest()),
		rejectConcurrent: opts.RejectConcurrent,
		timeout:          opts.Timeout,
	}
}

// Tracker exposes the current job state.
func (m *Manager) Tracker() *Tracker {
	return &m.tracker
}

// SetRejectConcurrent changes the policy for a create while pending.
func (m *Manager) SetRejectConcurrent(reject bool) {
	m.rejectConcurrent = reject
}

// CreateVideo starts a job. A blank topic is dropped silently. While a
// job is pending the new one replaces it, unless concurrent creates are
// rejected.
func (m *Manager) CreateVideo(req CreateRequest) tea.Cmd {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil
	}
	if m.tracker.Pending() && m.rejectConcurrent {
		m.notify.Notify(notify.Warning, ToastBusy)
		return nil
	}

	req = req.withDefaults(m.defaults)
	m.view.AddUserMessage("Tạo video về: " + topic)
	m.view.ShowTyping()

	body := api.CreateVideoRequest{
		Topic:       topic,
		Duration:    req.Duration,
		Composition: req.Composition,
		Background:  req.Background,
		Voice:       req.Voice,
		SessionID:   m.sessionID(),
	}
	client := m.client
	timeout := m.timeout
	m.log.Info("creating video", "topic", topic, "session", body.SessionID)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := client.CreateVideo(ctx, body)
		return CreateResultMsg{Topic: topic, Response: resp, Err: err}
	}
}

// HandleCreateResult records the job id or reports the failure. On
// failure the tracker is left as it was.
func (m *Manager) HandleCreateResult(msg CreateResultMsg) {
	defer m.view.ScrollToBottom()

	if msg.Err != nil {
		m.log.Warn("video create failed", "topic", msg.Topic, "error", msg.Err)
		m.view.HideTyping()
		if text, ok := api.BackendMessage(msg.Err); ok {
			m.view.ShowError("Lỗi tạo video: " + text)
			return
		}
		m.view.ShowError("Lỗi kết nối khi tạo video: " + msg.Err.Error())
		return
	}

	m.tracker.Start(msg.Response.JobID)
	m.log.Info("video job started", "job", msg.Response.JobID)
}

// HandleProgress applies an event for the current job. It returns false,
// with no effect, for any other job.
func (m *Manager) HandleProgress(ev model.ProgressEvent) bool {
	if !m.tracker.Matches(ev.JobID) {
		m.log.Debug("ignoring progress", "job", ev.JobID, "current", m.tracker.Current())
		return false
	}

	m.view.SetTypingStatus(FormatProgress(ev))

	switch ev.Step {
	case model.StepCompleted:
		m.tracker.Clear()
		m.view.HideTyping()
		m.notify.Notify(notify.Success, ToastCreated)
		if id := ev.Data.VideoID; !id.IsZero() {
			ref := &model.VideoRef{ID: id, Title: ev.Data.Topic}
			m.view.AddAIMessageWithVideo(CompletedMessage(id, ev.Data.Topic), time.Time{}, ref)
			m.bus.Publish(events.Event{Kind: events.VideosUpdated})
		}
		m.view.ScrollToBottom()
		m.log.Info("video job completed", "job", ev.JobID, "video", ev.Data.VideoID)

	case model.StepFailed:
		m.tracker.Clear()
		m.view.HideTyping()
		reason := ev.Message
		if reason == "" {
			reason = ev.Error
		}
		m.notify.Notify(notify.Error, ToastFailed+": "+reason)
		m.view.ShowError("Lỗi tạo video: " + reason)
		m.view.ScrollToBottom()
		m.log.Warn("video job failed", "job", ev.JobID, "reason", reason)
	}
	return true
}

// Reset drops the current job, used when the session changes.
func (m *Manager) Reset() {
	m.tracker.Clear()
}

func (m *Manager) sessionID() string {
	if m.session == nil {
		return ""
	}
	return m.session.SessionID()
}
