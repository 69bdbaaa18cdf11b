// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/notify"
)

// Toast texts for the edit dialog.
const (
	ToastNoSessionToEdit = "Chưa có cuộc hội thoại để chỉnh sửa"
	ToastNoMessages      = "Chưa có tin nhắn nào trong cuộc hội thoại"
	ToastNoSession       = "Không có session để cập nhật"
	ToastTitleRequired   = "Vui lòng nhập tiêu đề cuộc hội thoại"
	ToastDetailsSaved    = "Thông tin cuộc hội thoại đã được cập nhật"
	ToastDetailsFailed   = "Lỗi khi cập nhật thông tin"
)

// Details are the editable fields of a session.
type Details struct {
	Title       string
	Description string
	Tags        []string
}

// TagsText joins the tags for an input field.
func (d Details) TagsText() string {
	return strings.Join(d.Tags, ", ")
}

// ParseTags splits a comma separated list, dropping blanks.
func ParseTags(s string) []string {
	tags := []string{}
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// DetailsMsg carries the loaded details. Load failures yield empty
// details, since a fresh session may not be stored yet.
type DetailsMsg struct {
	SessionID string
	Details   Details
}

// DetailsSavedMsg carries the result of SaveDetails.
type DetailsSavedMsg struct {
	SessionID string
	Err       error
}

// LoadDetails fetches the current session's details for editing. It
// returns nil, with an error toast, when there is nothing to edit.
func (m *Manager) LoadDetails() tea.Cmd {
	id := m.SessionID()
	if id == "" {
		m.notify.Notify(notify.Error, ToastNoSessionToEdit)
		return nil
	}
	if m.view != nil && !m.view.HasUserMessages() {
		m.notify.Notify(notify.Error, ToastNoMessages)
		return nil
	}
	store, timeout, log := m.store, m.timeout, m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s, err := store.Session(ctx, id)
		if err != nil {
			log.Debug("session details unavailable", "session", id, "error", err)
			return DetailsMsg{SessionID: id}
		}
		return DetailsMsg{SessionID: id, Details: Details{
			Title:       s.Title,
			Description: s.Description,
			Tags:        s.Tags,
		}}
	}
}

// SaveDetails validates and sends the edited fields. tags is the raw
// comma separated input.
func (m *Manager) SaveDetails(title, description, tags string) tea.Cmd {
	id := m.SessionID()
	if id == "" {
		m.notify.Notify(notify.Error, ToastNoSession)
		return nil
	}
	title = strings.TrimSpace(title)
	if title == "" {
		m.notify.Notify(notify.Error, ToastTitleRequired)
		return nil
	}
	description = strings.TrimSpace(description)

	patch := api.SessionPatch{
		Title:       &title,
		Description: &description,
		Tags:        ParseTags(tags),
		SetTags:     true,
	}
	store, timeout := m.store, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return DetailsSavedMsg{SessionID: id, Err: store.UpdateSession(ctx, id, patch)}
	}
}

// HandleDetailsSaved reports the save result. It returns true on success
// so the caller can close the dialog.
func (m *Manager) HandleDetailsSaved(msg DetailsSavedMsg) bool {
	if msg.Err == nil {
		m.notify.Notify(notify.Success, ToastDetailsSaved)
		return true
	}
	m.log.Warn("session update failed", "session", msg.SessionID, "error", msg.Err)
	if text, ok := api.BackendMessage(msg.Err); ok {
		m.notify.Notify(notify.Error, "Lỗi khi cập nhật: "+text)
		return false
	}
	m.notify.Notify(notify.Error, ToastDetailsFailed)
	return false
}
