// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/notify"
	"github.com/jeranaias/emlinh-tui/internal/session"
)

// Toast texts.
const (
	ToastUpdated      = "Đã cập nhật thành công"
	ToastUpdateFailed = "Lỗi khi cập nhật"
	ToastDeleted      = "Đã xóa cuộc hội thoại"
	ToastDeleteFailed = "Lỗi khi xóa"
)

// Action names a mutation of the selected session.
type Action int

const (
	ActionSave Action = iota
	ActionFavorite
	ActionArchive
	ActionDelete
)

// ActionMsg carries the result of a mutation.
type ActionMsg struct {
	Action    Action
	SessionID string
	Err       error
}

// Save replaces the title, description and tags of the selected session.
// tags is the raw comma separated input.
func (b *Browser) Save(title, description, tags string) tea.Cmd {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	return b.update(ActionSave, api.SessionPatch{
		Title:       &title,
		Description: &description,
		Tags:        session.ParseTags(tags),
		SetTags:     true,
	})
}

// ToggleFavorite flips the favorite flag of the selected session.
func (b *Browser) ToggleFavorite() tea.Cmd {
	s := b.Selected()
	if s == nil {
		return nil
	}
	v := !s.IsFavorite
	return b.update(ActionFavorite, api.SessionPatch{IsFavorite: &v})
}

// ToggleArchive flips the archived flag of the selected session.
func (b *Browser) ToggleArchive() tea.Cmd {
	s := b.Selected()
	if s == nil {
		return nil
	}
	v := !s.IsArchived
	return b.update(ActionArchive, api.SessionPatch{IsArchived: &v})
}

func (b *Browser) update(action Action, patch api.SessionPatch) tea.Cmd {
	id := b.selectedID
	if id == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		return ActionMsg{Action: action, SessionID: id, Err: b.store.UpdateSession(ctx, id, patch)}
	}
}

// Delete removes the selected session. Confirmation is the caller's job.
func (b *Browser) Delete() tea.Cmd {
	id := b.selectedID
	if id == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		return ActionMsg{Action: ActionDelete, SessionID: id, Err: b.store.DeleteSession(ctx, id)}
	}
}

// HandleAction reports a mutation and, on success, reloads the list.
func (b *Browser) HandleAction(msg ActionMsg) tea.Cmd {
	if msg.Err != nil {
		b.log.Warn("session action failed", "session", msg.SessionID, "action", int(msg.Action), "error", msg.Err)
		prefix, fallback := ToastUpdateFailed, ToastUpdateFailed
		if msg.Action == ActionDelete {
			prefix, fallback = ToastDeleteFailed, ToastDeleteFailed
		}
		if text, ok := api.BackendMessage(msg.Err); ok {
			b.notify.Notify(notify.Error, prefix+": "+text)
		} else {
			b.notify.Notify(notify.Error, fallback)
		}
		return nil
	}

	switch msg.Action {
	case ActionDelete:
		if b.selectedID == msg.SessionID {
			b.ClearSelection()
		}
		b.notify.Notify(notify.Success, ToastDeleted)
	case ActionFavorite, ActionArchive:
		for i := range b.sessions {
			if b.sessions[i].SessionID != msg.SessionID {
				continue
			}
			if msg.Action == ActionFavorite {
				b.sessions[i].IsFavorite = !b.sessions[i].IsFavorite
			} else {
				b.sessions[i].IsArchived = !b.sessions[i].IsArchived
			}
		}
		b.notify.Notify(notify.Success, ToastUpdated)
	default:
		b.notify.Notify(notify.Success, ToastUpdated)
	}
	return b.Load()
}
