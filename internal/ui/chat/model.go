// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/app"
	"github.com/jeranaias/emlinh-tui/internal/config"
	"github.com/jeranaias/emlinh-tui/internal/library"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/render"
	"github.com/jeranaias/emlinh-tui/internal/session"
	"github.com/jeranaias/emlinh-tui/internal/ui/components"
	"github.com/jeranaias/emlinh-tui/internal/ui/styles"
)

// =============================================================================
// TABS
// =============================================================================

// Tab is a top-level view.
type Tab int

const (
	TabChat Tab = iota
	TabVideos
	TabHistory
	tabCount
)

// String returns the tab label.
func (t Tab) String() string {
	switch t {
	case TabVideos:
		return "🎬 Video"
	case TabHistory:
		return "📚 Lịch sử"
	default:
		return "💬 Chat"
	}
}

// promptKind is the active single-line prompt, if any.
type promptKind int

const (
	promptNone promptKind = iota
	promptVideoTopic
	promptLibrarySearch
	promptHistorySearch
	promptRename
	promptConfirmVideoDelete
	promptConfirmSessionDelete
)

// =============================================================================
// RELAY
// =============================================================================

// Relay forwards messages from goroutines outside the program. Messages
// sent before Attach are dropped.
type Relay struct {
	mu sync.Mutex
	p  *tea.Program
}

// Attach binds the relay to a running program.
func (r *Relay) Attach(p *tea.Program) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

// Send delivers msg to the program.
func (r *Relay) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// ConfigReloadedMsg carries a configuration reloaded from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// MODEL
// =============================================================================

// Options tune New.
type Options struct {
	// InitialSession reopens a stored conversation.
	InitialSession string

	// ExportDir is where /export writes. Default: working directory.
	ExportDir string

	// Clipboard overrides the system clipboard.
	Clipboard func(string) error

	// Relay delivers download progress and config reloads.
	Relay *Relay
}

// Model is the root Bubble Tea model.
type Model struct {
	app   *app.App
	theme *styles.Theme
	keys  KeyMap
	help  help.Model
	opts  Options

	tab      Tab
	width    int
	height   int
	ready    bool
	showHelp bool
	quitting bool

	// Chat tab
	input     textarea.Model
	viewport  viewport.Model
	typing    components.TypingIndicator
	statusBar *components.StatusBar
	term      *render.Terminal
	termWidth int
	cache     map[string]string
	rendered  int
	scrollSeq int
	conn      components.Connection

	// Videos tab
	videoCursor int
	download    *library.DownloadProgress

	// History tab
	historyCursor int
	historyView   viewport.Model

	prompt        promptKind
	promptInput   textinput.Model
	pendingDelete model.ID

	clipboard func(string) error
	relay     *Relay
}

// New creates the model. a must be fully wired.
func New(a *app.App, opts Options) Model {
	theme := styles.NewTheme()

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = "› "
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Placeholder = a.Transcript.Placeholder()
	ta.Focus()

	ti := textinput.New()
	ti.CharLimit = 200

	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Relay == nil {
		opts.Relay = &Relay{}
	}

	conn := components.ConnDisabled
	if a.Socket != nil {
		conn = components.ConnConnecting
	}

	return Model{
		app:         a,
		theme:       theme,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		opts:        opts,
		input:       ta,
		viewport:    viewport.New(80, 20),
		historyView: viewport.New(40, 20),
		typing:      components.NewTypingIndicator(theme),
		statusBar:   components.NewStatusBar(theme),
		cache:       make(map[string]string),
		rendered:    -1,
		conn:        conn,
		promptInput: ti,
		clipboard:   opts.Clipboard,
		relay:       opts.Relay,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	a := m.app
	cmds := []tea.Cmd{
		textarea.Blink,
		m.typing.Tick(),
		components.ToastTickCmd(),
		session.TickCmd(),
		a.WaitForUpdate(),
		a.Ideas.Load(),
		a.Library.Load(),
		a.History.Load(),
		a.ScheduleHealthCheck(),
	}
	if cmd := a.Session.Init(m.opts.InitialSession); cmd != nil {
		cmds = append(cmds, cmd)
	} else if a.Config.Chat.ShowWelcome {
		a.Transcript.AddWelcome()
	}
	return tea.Batch(cmds...)
}

// Tab returns the active tab.
func (m Model) Tab() Tab {
	return m.tab
}

// ensureTerminal rebuilds the markdown renderer when the width changes.
func (m *Model) ensureTerminal(width int) {
	if m.term != nil && m.termWidth == width {
		return
	}
	cfg := m.app.Config
	style := cfg.UI.GlamourStyle
	if style == "" || style == "auto" {
		style = m.theme.GlamourStyle()
	}
	wrap := width
	if cfg.UI.WordWrap > 0 && cfg.UI.WordWrap < wrap {
		wrap = cfg.UI.WordWrap
	}
	term, err := render.NewTerminal(style, wrap, m.app.Client.BaseURL())
	if err != nil {
		m.app.Logger.Warn("markdown renderer unavailable", "style", style, "error", err)
		term, _ = render.NewTerminal("notty", wrap, m.app.Client.BaseURL())
	}
	m.term = term
	m.termWidth = width
	m.cache = make(map[string]string)
	m.rendered = -1
}
