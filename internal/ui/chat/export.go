// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/export"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
)

// exportedMsg carries the result of an export.
type exportedMsg struct {
	Path string
	Err  error
}

// exportCmd writes the transcript in format. The conversation is cloned
// so the write does not race with the UI.
func (m Model) exportCmd(format string) tea.Cmd {
	conv := m.app.Transcript.Conversation().Clone()
	if conv.IsEmpty() {
		m.app.Notifier.Notify(notify.Warning, "Không có tin nhắn để export")
		return nil
	}
	baseURL := m.app.Client.BaseURL()
	opts := export.DefaultOptions()
	opts.OutputDir = m.opts.ExportDir
	opts.IncludeTimestamps = m.app.Config.UI.ShowTimestamps
	if m.theme.IsDark {
		opts.Theme = "dark"
	}
	return func() tea.Msg {
		path, err := export.Conversation(conv, baseURL, format, opts)
		return exportedMsg{Path: path, Err: err}
	}
}

func (m Model) handleExported(msg exportedMsg) {
	if msg.Err != nil {
		m.app.Logger.Warn("export failed", "error", msg.Err)
		m.app.Notifier.Notify(notify.Error, "Lỗi khi export: "+msg.Err.Error())
		return
	}
	m.app.Logger.Info("chat exported", "path", msg.Path)
	m.app.Notifier.Notify(notify.Success, export.ToastExported+": "+msg.Path)
}

// =============================================================================
// CLIPBOARD
// =============================================================================

func (m Model) copyText(text string) {
	if strings.TrimSpace(text) == "" {
		m.app.Notifier.Notify(notify.Error, export.ToastCopyFail)
		return
	}
	if err := m.clipboard(text); err != nil {
		m.app.Logger.Warn("clipboard write failed", "error", err)
		m.app.Notifier.Notify(notify.Error, export.ToastCopyFail)
		return
	}
	m.app.Notifier.Notify(notify.Success, export.ToastCopied)
}

// copyLastReply copies the newest AI message as markdown.
func (m Model) copyLastReply() {
	msg := m.app.Transcript.LastAIMessage()
	if msg == nil {
		m.app.Notifier.Notify(notify.Error, export.ToastCopyFail)
		return
	}
	m.copyText(m.markdownOf(msg))
}

func (m Model) markdownOf(msg *model.Message) string {
	if m.term == nil {
		return msg.Content
	}
	return m.term.Markdown(msg)
}
