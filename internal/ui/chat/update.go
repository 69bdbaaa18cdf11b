// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/app"
	chatcore "github.com/jeranaias/emlinh-tui/internal/chat"
	"github.com/jeranaias/emlinh-tui/internal/config"
	"github.com/jeranaias/emlinh-tui/internal/events"
	"github.com/jeranaias/emlinh-tui/internal/history"
	"github.com/jeranaias/emlinh-tui/internal/ideas"
	"github.com/jeranaias/emlinh-tui/internal/library"
	"github.com/jeranaias/emlinh-tui/internal/notify"
	"github.com/jeranaias/emlinh-tui/internal/session"
	"github.com/jeranaias/emlinh-tui/internal/ui/components"
	"github.com/jeranaias/emlinh-tui/internal/video"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()

	case tea.KeyMsg:
		model, cmd := m.handleKey(msg)
		m = model
		cmds = append(cmds, cmd)

	// Chat turns
	case chatcore.ReplyMsg:
		m.app.Chat.HandleReply(msg)
	case chatcore.QuickPromptMsg:
		m.pushInput()
		cmds = append(cmds, m.app.Chat.HandleQuickPrompt(msg))
		m.pullInput()

	// Video jobs
	case video.CreateResultMsg:
		m.app.Video.HandleCreateResult(msg)
	case video.ProgressMsg:
		m.applyProgress(msg)
		cmds = append(cmds, m.app.WaitForUpdate())

	// Background stream
	case app.ConnectionMsg:
		m.applyConnection(msg)
		cmds = append(cmds, m.app.WaitForUpdate())
	case app.BusMsg:
		cmds = append(cmds, m.handleBus(msg.Event), m.app.WaitForUpdate())
	case app.HealthMsg:
		ok := m.app.HandleHealth(msg)
		m.statusBar.System = app.SystemText(ok)

	// Session
	case session.HistoryMsg:
		m.app.Session.HandleHistory(msg)
	case session.TickMsg:
		cmds = append(cmds, session.TickCmd())

	// Ideas
	case ideas.LoadedMsg:
		m.app.Ideas.HandleLoaded(msg)
	case ideas.ReloadMsg:
		cmds = append(cmds, m.app.Ideas.HandleReload(msg))

	// History
	case history.SessionsMsg:
		m.app.History.HandleSessions(msg)
		m.clampHistoryCursor()
	case history.MessagesMsg:
		m.app.History.HandleMessages(msg)
		m.refreshHistoryView()
	case history.ActionMsg:
		cmds = append(cmds, m.app.History.HandleAction(msg))
		m.clampHistoryCursor()

	// Library
	case library.PageMsg:
		m.app.Library.HandlePage(msg)
		m.clampVideoCursor()
	case library.SearchMsg:
		cmds = append(cmds, m.app.Library.HandleSearch(msg))
		m.clampVideoCursor()
	case library.DetailMsg:
		m.app.Library.HandleDetail(msg)
	case library.DeletedMsg:
		cmds = append(cmds, m.app.Library.HandleDeleted(msg))
	case library.DownloadProgress:
		p := msg
		m.download = &p
	case library.DownloadedMsg:
		m.download = nil
		m.app.Library.HandleDownloaded(msg)

	case exportedMsg:
		m.handleExported(msg)

	case ConfigReloadedMsg:
		m.applyConfig(msg.Config)

	case components.ToastTickMsg:
		if m.app.Toasts != nil {
			m.app.Toasts.Tick()
		}
		cmds = append(cmds, components.ToastTickCmd())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.typing, cmd = m.typing.Update(msg)
		cmds = append(cmds, cmd)

	default:
		if m.tab == TabChat && m.prompt == promptNone {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.syncStatus()
	m.syncTranscript()
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % tabCount)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.tab + tabCount - 1) % tabCount)
	case key.Matches(msg, m.keys.NewSession):
		return m.startNewSession()
	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd("json")
	case key.Matches(msg, m.keys.CopyReply):
		m.copyLastReply()
		return m, nil
	case key.Matches(msg, m.keys.CopyID):
		m.copyText(m.app.Session.SessionID())
		return m, nil
	case key.Matches(msg, m.keys.CycleType):
		m.cycleMessageType()
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadTab()
	case key.Matches(msg, m.keys.Dismiss):
		if m.app.Toasts != nil {
			m.app.Toasts.DismissNewest()
		}
		return m, nil
	}

	switch m.tab {
	case TabVideos:
		return m.handleVideosKey(msg)
	case TabHistory:
		return m.handleHistoryKey(msg)
	default:
		return m.handleChatKey(msg)
	}
}

func (m Model) switchTab(t Tab) (Model, tea.Cmd) {
	m.tab = t
	if t == TabChat {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.layout()
	return m, nil
}

func (m Model) reloadTab() tea.Cmd {
	switch m.tab {
	case TabVideos:
		return m.app.Library.Load()
	case TabHistory:
		return m.app.History.Load()
	default:
		return m.app.Ideas.Load()
	}
}

func (m Model) startNewSession() (Model, tea.Cmd) {
	m.app.Session.StartNew()
	m.typing.Reset()
	m.input.Reset()
	return m, nil
}

// =============================================================================
// CHAT TAB
// =============================================================================

func (m Model) handleChatKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keys.QuickPrompt):
		if len(msg.Runes) == 0 {
			return m, nil
		}
		return m.useQuickPrompt(int(msg.Runes[0] - '1'))
	}

	m.app.Session.RecordActivity()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	text := m.input.Value()
	if isCommand(text) {
		m.input.Reset()
		return m.runCommand(text)
	}
	m.app.Session.RecordActivity()
	m.pushInput()
	cmd := m.app.Chat.Submit()
	m.pullInput()
	return m, cmd
}

func (m Model) useQuickPrompt(idx int) (Model, tea.Cmd) {
	if idx < 0 || idx >= len(chatcore.QuickPrompts) {
		return m, nil
	}
	qp := chatcore.QuickPrompts[idx]
	cmd := m.app.Chat.UseQuickPrompt(qp.Prompt, qp.Type)
	m.pullInput()
	return m, cmd
}

func (m *Model) cycleMessageType() {
	m.app.Chat.SetMessageType(nextMessageType(m.app.Chat.MessageType()))
	m.input.Placeholder = m.app.Transcript.Placeholder()
}

// pushInput copies the prompt box into the transcript before the chat
// core reads it.
func (m *Model) pushInput() {
	m.app.Transcript.SetInput(m.input.Value())
}

// pullInput copies the transcript prompt back after the chat core wrote it.
func (m *Model) pullInput() {
	if v := m.app.Transcript.RawInput(); v != m.input.Value() {
		m.input.SetValue(v)
	}
	m.input.Placeholder = m.app.Transcript.Placeholder()
}

// =============================================================================
// BACKGROUND EVENTS
// =============================================================================

func (m *Model) applyProgress(msg video.ProgressMsg) {
	if !m.app.Video.HandleProgress(msg.Event) {
		return
	}
	if msg.Event.IsTerminal() {
		m.typing.Reset()
		return
	}
	m.typing.SetProgress(msg.Event.Progress)
}

func (m *Model) applyConnection(msg app.ConnectionMsg) {
	if msg.Connected {
		m.conn = components.ConnConnected
		return
	}
	m.conn = components.ConnDisconnected
	if msg.Err != nil {
		m.app.Logger.Debug("realtime connect error", "error", msg.Err)
	}
}

func (m Model) handleBus(ev events.Event) tea.Cmd {
	switch ev.Kind {
	case events.IdeasUpdated:
		return m.app.Ideas.Load()
	case events.VideosUpdated:
		return m.app.Library.Load()
	}
	return nil
}

func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.app.ApplyConfig(cfg)
	m.term = nil
	m.ensureTerminal(m.chatWidth())
	m.app.Notifier.Notify(notify.Info, ToastConfigReloaded)
}

// =============================================================================
// LAYOUT AND SYNC
// =============================================================================

const (
	sidebarWidth    = 32
	sidebarMinWidth = 100
	inputHeight     = 4
	headerHeight    = 1
	statusHeight    = 1
)

func (m Model) showSidebar() bool {
	return m.width >= sidebarMinWidth
}

func (m Model) chatWidth() int {
	w := m.width
	if m.showSidebar() {
		w -= sidebarWidth
	}
	return max(w, 20)
}

func (m *Model) layout() {
	if !m.ready {
		return
	}
	m.statusBar.SetWidth(m.width)
	m.help.Width = m.width
	m.input.SetWidth(max(m.chatWidth()-2, 10))

	body := m.bodyHeight()
	m.viewport.Width = m.chatWidth()
	m.viewport.Height = max(body-inputHeight-2, 3)
	m.historyView.Width = max(m.width/2, 20)
	m.historyView.Height = max(body-2, 3)

	m.ensureTerminal(m.chatWidth() - 8)
	m.rendered = -1
}

func (m Model) bodyHeight() int {
	h := m.height - headerHeight - statusHeight
	if m.showHelp {
		h -= 4
	}
	return max(h, 5)
}

func (m *Model) syncStatus() {
	st := m.app.Session.GetStatus()
	m.statusBar.Connection = m.conn
	m.statusBar.SessionID = st.SessionID
	m.statusBar.Duration = session.FormatDuration(st.Duration)
	m.statusBar.MessageType = m.app.Chat.MessageType().Icon() + " " + string(m.app.Chat.MessageType())
	m.statusBar.Busy = ""
	if m.app.Transcript.Loading() {
		m.statusBar.Busy = "Đang gửi..."
	} else if m.app.Video.Tracker().Pending() {
		m.statusBar.Busy = "Đang tạo video..."
	}
}

// syncTranscript re-renders the viewport when the transcript changed.
func (m *Model) syncTranscript() {
	if !m.ready {
		return
	}
	t := m.app.Transcript
	if v := t.Version(); v != m.rendered {
		m.viewport.SetContent(m.renderTranscript())
		m.rendered = v
	}
	if seq := t.ScrollSeq(); seq != m.scrollSeq {
		m.scrollSeq = seq
		m.viewport.GotoBottom()
	}
}

func (m *Model) clampVideoCursor() {
	n := len(m.app.Library.Visible())
	if m.videoCursor >= n {
		m.videoCursor = max(n-1, 0)
	}
}

func (m *Model) clampHistoryCursor() {
	n := len(m.app.History.Visible())
	if m.historyCursor >= n {
		m.historyCursor = max(n-1, 0)
	}
}
