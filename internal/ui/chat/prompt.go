// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/video"
)

// =============================================================================
// PROMPT LINE
// =============================================================================

func (m Model) openPrompt(kind promptKind, placeholder, value string) (Model, tea.Cmd) {
	m.prompt = kind
	if kind.isConfirm() {
		return m, nil
	}
	m.promptInput.Placeholder = placeholder
	m.promptInput.SetValue(value)
	m.promptInput.CursorEnd()
	cmd := m.promptInput.Focus()
	return m, cmd
}

func (k promptKind) isConfirm() bool {
	return k == promptConfirmVideoDelete || k == promptConfirmSessionDelete
}

func (m Model) closePrompt() Model {
	m.prompt = promptNone
	m.pendingDelete = ""
	m.promptInput.Blur()
	m.promptInput.Reset()
	return m
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.prompt.isConfirm() {
		return m.handleConfirmKey(msg)
	}

	switch msg.Type {
	case tea.KeyEsc:
		if m.prompt == promptHistorySearch {
			m.app.History.SetSearch("")
			m.historyCursor = 0
		}
		return m.closePrompt(), nil
	case tea.KeyEnter:
		return m.submitPrompt()
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	switch m.prompt {
	case promptHistorySearch:
		m.app.History.SetSearch(m.promptInput.Value())
		m.historyCursor = 0
	case promptLibrarySearch:
		m.videoCursor = 0
		cmd = tea.Batch(cmd, m.app.Library.SetSearch(m.promptInput.Value()))
	}
	return m, cmd
}

func (m Model) submitPrompt() (Model, tea.Cmd) {
	value := strings.TrimSpace(m.promptInput.Value())
	kind := m.prompt
	m = m.closePrompt()

	switch kind {
	case promptVideoTopic:
		m.tab = TabChat
		m.input.Focus()
		return m, m.app.Video.CreateVideo(video.CreateRequest{Topic: value})
	case promptLibrarySearch:
		return m, m.app.Library.SetSearch(value)
	case promptHistorySearch:
		m.app.History.SetSearch(value)
	case promptRename:
		title, desc, tags := splitRename(value)
		return m, m.app.History.Save(title, desc, tags)
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		kind, id := m.prompt, m.pendingDelete
		m = m.closePrompt()
		if kind == promptConfirmVideoDelete {
			return m, m.app.Library.Delete(id)
		}
		return m, m.app.History.Delete()
	case key.Matches(msg, m.keys.No):
		return m.closePrompt(), nil
	}
	return m, nil
}

// promptLine renders the active prompt above the status bar.
func (m Model) promptLine() string {
	t := m.theme
	switch m.prompt {
	case promptConfirmVideoDelete:
		return t.WarningStyle.Render("Bạn có chắc chắn muốn xóa video " + m.pendingDelete.String() + "? [y/n]")
	case promptConfirmSessionDelete:
		return t.WarningStyle.Render("Bạn có chắc chắn muốn xóa cuộc hội thoại này? [y/n]")
	case promptNone:
		return ""
	}
	return t.InputPrompt.Render(promptLabel(m.prompt)) + m.promptInput.View()
}

func promptLabel(k promptKind) string {
	switch k {
	case promptVideoTopic:
		return "🎬 Chủ đề: "
	case promptRename:
		return "✏ Sửa: "
	default:
		return "🔍 "
	}
}

