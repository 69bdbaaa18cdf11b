// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/emlinh-tui/internal/history"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/ui/styles"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

// renameSep separates title, description and tags in the rename prompt.
const renameSep = " | "

// =============================================================================
// HISTORY TAB
// =============================================================================

func (m Model) currentSession() (model.SessionSummary, bool) {
	list := m.app.History.Visible()
	if m.historyCursor < 0 || m.historyCursor >= len(list) {
		return model.SessionSummary{}, false
	}
	return list[m.historyCursor], true
}

// selectCursor previews the highlighted session.
func (m *Model) selectCursor() tea.Cmd {
	s, ok := m.currentSession()
	if !ok || s.SessionID == m.app.History.SelectedID() {
		return nil
	}
	cmd := m.app.History.Select(s.SessionID)
	m.refreshHistoryView()
	return cmd
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	h := m.app.History
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.historyCursor > 0 {
			m.historyCursor--
		}
		cmd := m.selectCursor()
		return m, cmd
	case key.Matches(msg, m.keys.Down):
		if m.historyCursor < len(h.Visible())-1 {
			m.historyCursor++
		}
		cmd := m.selectCursor()
		return m, cmd
	case key.Matches(msg, m.keys.Continue):
		s, ok := m.currentSession()
		if !ok {
			return m, nil
		}
		if s.SessionID != h.SelectedID() {
			cmd := m.selectCursor()
			return m, cmd
		}
		return m.continueSession()
	case key.Matches(msg, m.keys.Back):
		h.ClearSelection()
		m.refreshHistoryView()
	case key.Matches(msg, m.keys.Filter):
		h.SetFilter(h.Filter().Next())
		m.historyCursor = 0
	case key.Matches(msg, m.keys.Search):
		return m.openPrompt(promptHistorySearch, "Tìm kiếm cuộc hội thoại...", h.Search())
	case key.Matches(msg, m.keys.Favorite):
		return m, h.ToggleFavorite()
	case key.Matches(msg, m.keys.Archive):
		return m, h.ToggleArchive()
	case key.Matches(msg, m.keys.Rename):
		if s := h.Selected(); s != nil {
			value := strings.Join([]string{s.Title, s.Description, strings.Join(s.Tags, ", ")}, renameSep)
			return m.openPrompt(promptRename, "Tiêu đề | Mô tả | tag1, tag2", value)
		}
	case key.Matches(msg, m.keys.Delete):
		if h.Selected() != nil {
			return m.openPrompt(promptConfirmSessionDelete, "", "")
		}
	case msg.String() == "pgup":
		m.historyView.HalfViewUp()
	case msg.String() == "pgdown":
		m.historyView.HalfViewDown()
	}
	return m, nil
}

// continueSession reopens the selected conversation in the chat tab.
func (m Model) continueSession() (Model, tea.Cmd) {
	id, ok := m.app.History.Continue()
	if !ok {
		return m, nil
	}
	m.app.Video.Reset()
	cmd := m.app.Session.Switch(id)
	m.app.Logger.Info("continuing session", "session", id)
	model, tabCmd := m.switchTab(TabChat)
	return model, tea.Batch(cmd, tabCmd)
}

// splitRename parses "title | description | tags".
func splitRename(value string) (title, description, tags string) {
	parts := strings.SplitN(value, "|", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
}

// refreshHistoryView renders the selected conversation into its viewport.
func (m *Model) refreshHistoryView() {
	h := m.app.History
	t := m.theme
	entries, state, errText := h.Messages()

	var b strings.Builder
	switch state {
	case history.StateIdle:
		b.WriteString(t.Muted.Render("Chọn một cuộc hội thoại để xem"))
	case history.StateLoading:
		b.WriteString(t.Muted.Render("Đang tải tin nhắn..."))
	case history.StateFailed:
		b.WriteString(t.ErrorStyle.Render(errText))
	default:
		if len(entries) == 0 {
			b.WriteString(t.Muted.Render(history.NoMessagesText))
		}
		width := max(m.historyView.Width-4, 10)
		for _, e := range entries {
			ts := e.Timestamp.Local().Format("15:04 02/01")
			b.WriteString(t.RoleLabel.Render("👤 Bạn") + " " + t.Timestamp.Render(ts) + "\n")
			b.WriteString(lipgloss.NewStyle().Width(width).Render(e.UserMessage) + "\n\n")
			b.WriteString(t.RoleLabel.Render("🤖 AI") + "\n")
			b.WriteString(lipgloss.NewStyle().Width(width).Render(m.plainReply(e.AIResponse)) + "\n\n")
		}
	}
	m.historyView.SetContent(b.String())
	m.historyView.GotoTop()
}

func (m Model) plainReply(text string) string {
	if m.term == nil {
		return text
	}
	return m.term.Markdown(&model.Message{Role: model.RoleAI, Content: text})
}

func (m Model) viewHistory(width, height int) string {
	h := m.app.History
	t := m.theme
	listWidth := width - m.historyView.Width - 2
	if listWidth < 30 {
		listWidth = width
	}

	var b strings.Builder
	b.WriteString(t.PanelTitle.Render("📚 Lịch sử chat"))
	b.WriteString("\n")
	filters := t.Meta.Render("Lọc: ") + h.Filter().String()
	if q := h.Search(); q != "" {
		filters += t.Muted.Render("  │  ") + t.Meta.Render("Tìm: ") + q
	}
	b.WriteString(filters + "\n\n")

	state, errText := h.ListState()
	list := h.Visible()
	switch {
	case state == history.StateLoading && len(list) == 0:
		b.WriteString(t.Muted.Render("Đang tải..."))
	case state == history.StateFailed:
		b.WriteString(t.ErrorStyle.Render(errText))
	case h.EmptyText() != "":
		b.WriteString(t.Muted.Render(h.EmptyText()))
	default:
		rows := max((height-4)/2, 1)
		start := 0
		if m.historyCursor >= rows {
			start = m.historyCursor - rows + 1
		}
		for i := start; i < len(list) && i < start+rows; i++ {
			b.WriteString(m.sessionRow(list[i], i == m.historyCursor, listWidth))
			b.WriteString("\n")
		}
	}

	left := lipgloss.NewStyle().Width(listWidth).MaxHeight(height).Render(b.String())
	if listWidth == width {
		return left
	}
	right := t.Detail.Render(m.historyView.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (m Model) sessionRow(s model.SessionSummary, selected bool, width int) string {
	t := m.theme
	title := s.DisplayTitle()
	if s.IsFavorite {
		title = styles.StatusIndicators.Favorite + " " + title
	}
	if s.IsArchived {
		title += " " + t.Muted.Render(styles.StatusIndicators.Archived)
	}
	meta := fmt.Sprintf("%d tin nhắn · %s", s.MessageCount, m.app.History.TimeAgo(s.LastMessageAt.Time))
	preview := util.TruncateText(history.PreviewOf(s), max(width-4, 10))
	line := util.TruncateText(title, max(width-4, 10)) + "\n  " + t.Meta.Render(preview+" · "+meta)
	if selected {
		return t.ListSelected.Render("▸ " + line)
	}
	return t.ListItem.Render("  " + line)
}
