// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	chatcore "github.com/jeranaias/emlinh-tui/internal/chat"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/ui/components"
)

// defaultTypingText is shown while waiting for a reply without a status.
const defaultTypingText = "AI đang soạn tin..."

// =============================================================================
// MAIN RENDER
// =============================================================================

// View implements tea.Model.
// Layout: header + body + [toasts] + [help] + [prompt] + status bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Đang khởi động..."
	}

	header := m.renderHeader()
	status := m.statusBar.View()

	var footer []string
	if m.app.Toasts != nil {
		if toasts := components.RenderToastStack(m.app.Toasts.Toasts(), m.app.Toasts.Now(), min(m.width, 60)); toasts != "" {
			footer = append(footer, toasts)
		}
	}
	if m.showHelp {
		footer = append(footer, m.help.View(helpMap{keys: m.keys, tab: m.tab}))
	}
	if line := m.promptLine(); line != "" {
		footer = append(footer, line)
	}
	extra := strings.Join(footer, "\n")

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(status)
	if extra != "" {
		bodyHeight -= lipgloss.Height(extra)
	}
	bodyHeight = max(bodyHeight, 3)

	var body string
	switch m.tab {
	case TabVideos:
		body = m.viewVideos(m.width, bodyHeight)
	case TabHistory:
		body = m.viewHistory(m.width, bodyHeight)
	default:
		body = m.viewChat(bodyHeight)
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	parts := []string{header, body}
	if extra != "" {
		parts = append(parts, extra)
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	t := m.theme
	tabs := []string{t.HeaderBrand.Render("Em Linh")}
	for tab := Tab(0); tab < tabCount; tab++ {
		if tab == m.tab {
			tabs = append(tabs, t.TabActive.Render(tab.String()))
		} else {
			tabs = append(tabs, t.Tab.Render(tab.String()))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return t.Header.Width(m.width).MaxHeight(1).Render(line)
}

// =============================================================================
// CHAT TAB
// =============================================================================

func (m Model) viewChat(height int) string {
	t := m.theme
	parts := []string{m.viewport.View()}

	if typing := m.app.Transcript.Typing(); typing.Visible {
		text := typing.Status
		if text == "" {
			text = defaultTypingText
		}
		parts = append(parts, m.typing.View(text, m.chatWidth()))
	}

	if m.input.Value() == "" && !m.app.Transcript.HasUserMessages() {
		parts = append(parts, m.quickPromptHint())
	}
	parts = append(parts, t.InputContainer.Width(max(m.chatWidth()-2, 10)).Render(m.input.View()))

	main := lipgloss.NewStyle().Width(m.chatWidth()).MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	if !m.showSidebar() {
		return main
	}

	p := m.app.Ideas
	sidebar := t.Sidebar.Width(sidebarWidth - 2).Height(max(height-2, 1)).MaxHeight(height).
		Render(components.RenderIdeas(t, p.State(), p.Ideas(), p.Message(), sidebarWidth-4))
	return lipgloss.JoinHorizontal(lipgloss.Top, main, sidebar)
}

func (m Model) quickPromptHint() string {
	t := m.theme
	hints := make([]string, 0, len(chatcore.QuickPrompts))
	for i, qp := range chatcore.QuickPrompts {
		hints = append(hints, t.ShortcutKey.Render("alt+"+strconv.Itoa(i+1))+" "+t.ShortcutDesc.Render(qp.Type.Icon()+" "+qp.Label))
	}
	return strings.Join(hints, "  ")
}

// renderTranscript renders every message, reusing cached bubbles.
func (m *Model) renderTranscript() string {
	msgs := m.app.Transcript.Messages()
	if len(msgs) == 0 {
		return m.theme.Muted.Render("Chưa có tin nhắn nào")
	}
	width := max(m.chatWidth()-4, 20)
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		out, ok := m.cache[msg.ID]
		if !ok {
			out = m.renderMessage(msg, width)
			m.cache[msg.ID] = out
		}
		blocks = append(blocks, out)
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg *model.Message, width int) string {
	t := m.theme
	cfg := m.app.Config.UI

	label := t.RoleLabel.Render(msg.Role.Avatar() + " " + msg.Role.DisplayName())
	if cfg.ShowTimestamps {
		label += " " + t.Timestamp.Render(msg.TimeLabel())
	}

	var body string
	switch {
	case m.term == nil:
		body = msg.Content
	case cfg.Markdown:
		body = m.term.Render(msg)
	default:
		body = m.term.Markdown(msg)
	}

	bubble := t.AssistantBubble
	switch {
	case msg.IsError:
		bubble = t.ErrorBubble
	case msg.Role == model.RoleUser:
		bubble = t.UserBubble
	}
	return label + "\n" + bubble.MaxWidth(width).Render(body)
}
