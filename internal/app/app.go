// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/chat"
	"github.com/jeranaias/emlinh-tui/internal/config"
	"github.com/jeranaias/emlinh-tui/internal/events"
	"github.com/jeranaias/emlinh-tui/internal/history"
	"github.com/jeranaias/emlinh-tui/internal/ideas"
	"github.com/jeranaias/emlinh-tui/internal/library"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
	"github.com/jeranaias/emlinh-tui/internal/realtime"
	"github.com/jeranaias/emlinh-tui/internal/session"
	"github.com/jeranaias/emlinh-tui/internal/video"
)

// updateBuffer sizes the channel between background goroutines and the UI.
const updateBuffer = 256

// =============================================================================
// UPDATE MESSAGES
// =============================================================================

// ConnectionMsg reports a real-time connection change.
type ConnectionMsg struct {
	Connected bool
	SocketID  string
	Reason    string
	Err       error
}

// BusMsg carries a bus event that needs work on the UI goroutine.
type BusMsg struct {
	Event events.Event
}

// =============================================================================
// APP
// =============================================================================

// Options tune New.
type Options struct {
	// Notifier receives toasts. Default: a new notify.Manager.
	Notifier notify.Notifier

	// Dialer overrides the websocket dialer.
	Dialer realtime.Dialer

	// DisableRealtime skips the socket even when the config enables it.
	DisableRealtime bool
}

// App is the wired component graph.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Client   *api.Client
	Socket   *realtime.Manager
	Bus      *events.Bus
	Toasts   *notify.Manager
	Notifier notify.Notifier

	Transcript *chat.Transcript
	Chat       *chat.Core
	Session    *session.Manager
	Video      *video.Manager
	Ideas      *ideas.Panel
	History    *history.Browser
	Library    *library.Browser

	updates chan tea.Msg
	done    chan struct{}

	mu     sync.Mutex
	unsubs []func()
	closed bool
}

// New wires every component from cfg. Nothing touches the network until
// Start is called.
func New(cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Bus:     events.NewBus(logger),
		updates: make(chan tea.Msg, updateBuffer),
		done:    make(chan struct{}),
	}

	a.Notifier = opts.Notifier
	if a.Notifier == nil {
		a.Toasts = notify.NewManager()
		a.Notifier = a.Toasts
	}

	a.Client = api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:           cfg.Server.BaseURL,
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
	})

	if cfg.Realtime.Enabled && !opts.DisableRealtime {
		endpoint, err := realtime.EndpointURL(cfg.Server.BaseURL, cfg.Realtime.Path)
		if err != nil {
			return nil, fmt.Errorf("realtime endpoint: %w", err)
		}
		a.Socket = realtime.NewManager(realtime.Config{
			URL:                  endpoint,
			MaxReconnectAttempts: cfg.Realtime.MaxReconnectAttempts,
			ReconnectDelay:       cfg.ReconnectDelay(),
			ConnectTimeout:       cfg.ConnectTimeout(),
			Dialer:               opts.Dialer,
			Logger:               logger,
		})
	}

	a.Transcript = chat.NewTranscript()

	sessOpts := session.Options{
		Store:    a.Client,
		View:     a.Transcript,
		Notifier: a.Notifier,
		Bus:      a.Bus,
		Logger:   logger,
		Timeout:  cfg.Timeout(),
	}
	if a.Socket != nil {
		sessOpts.Joiner = a.Socket
	}
	a.Session = session.NewManager(sessOpts)

	msgType, _ := model.ParseMessageType(cfg.Chat.DefaultType)
	a.Chat = chat.NewCore(chat.Options{
		Client:           a.Client,
		Session:          a.Session,
		View:             a.Transcript,
		Notifier:         a.Notifier,
		Bus:              a.Bus,
		Logger:           logger,
		QuickPromptDelay: cfg.QuickPromptDelay(),
		DefaultType:      msgType,
	})

	a.Video = video.NewManager(video.Options{
		Client:   a.Client,
		Session:  a.Session,
		View:     a.Transcript,
		Notifier: a.Notifier,
		Bus:      a.Bus,
		Logger:   logger,
		Defaults: video.CreateRequest{
			Duration:    cfg.Video.Duration,
			Composition: cfg.Video.Composition,
			Background:  cfg.Video.Background,
			Voice:       cfg.Video.Voice,
		},
		RejectConcurrent: cfg.Video.RejectConcurrent,
		Timeout:          cfg.Timeout(),
	})

	a.Ideas = ideas.NewPanel(ideas.Options{
		Client:      a.Client,
		PerPage:     cfg.Ideas.PerPage,
		MinInterval: cfg.IdeasReloadInterval(),
		Timeout:     cfg.Timeout(),
		Logger:      logger,
	})

	a.History = history.NewBrowser(history.Options{
		Store:    a.Client,
		Notifier: a.Notifier,
		Logger:   logger,
		Timeout:  cfg.Timeout(),
	})

	a.Library = library.NewBrowser(library.Options{
		Store:          a.Client,
		Notifier:       a.Notifier,
		Logger:         logger,
		PerPage:        cfg.Library.PerPage,
		SearchDebounce: cfg.SearchDebounce(),
		Timeout:        cfg.Timeout(),
	})

	a.subscribe()
	return a, nil
}

// subscribe connects the bus and the socket. Handlers that only touch
// in-memory state run inline; anything that fetches goes through updates.
func (a *App) subscribe() {
	a.Bus.Subscribe(events.NewSession, a.Session.ResetView)
	a.Bus.Subscribe(events.NewSession, func(events.Event) { a.Video.Reset() })
	a.Bus.Subscribe(events.IdeasUpdated, a.forwardBus)
	a.Bus.Subscribe(events.VideosUpdated, a.forwardBus)

	if a.Socket == nil {
		return
	}
	a.unsubs = append(a.unsubs,
		a.Socket.OnVideoProgress(func(ev model.ProgressEvent) {
			a.post(video.ProgressMsg{Event: ev})
		}),
		a.Socket.On(realtime.EventConnect, func(ev realtime.Event) {
			a.post(ConnectionMsg{Connected: true, SocketID: ev.SocketID})
		}),
		a.Socket.On(realtime.EventDisconnect, func(ev realtime.Event) {
			a.post(ConnectionMsg{Reason: ev.Reason})
		}),
		a.Socket.On(realtime.EventConnectError, func(ev realtime.Event) {
			a.post(ConnectionMsg{Err: ev.Err})
		}),
	)
}

func (a *App) forwardBus(ev events.Event) {
	a.post(BusMsg{Event: ev})
}

// post queues msg for the UI. It blocks while the buffer is full and gives
// up once the app is closed.
func (a *App) post(msg tea.Msg) {
	select {
	case a.updates <- msg:
	case <-a.done:
	}
}

// Updates is the stream of background messages.
func (a *App) Updates() <-chan tea.Msg {
	return a.updates
}

// WaitForUpdate returns a command yielding the next background message.
// Re-issue it after every delivery.
func (a *App) WaitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-a.updates:
			return msg
		case <-a.done:
			return nil
		}
	}
}

// Start begins the real-time connection.
func (a *App) Start(ctx context.Context) {
	if a.Socket != nil {
		a.Socket.Start(ctx)
	}
}

// Close tears down the socket and stops update delivery. It is idempotent.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	unsubs := a.unsubs
	a.unsubs = nil
	a.mu.Unlock()

	for _, fn := range unsubs {
		fn()
	}
	close(a.done)
	if a.Socket != nil {
		return a.Socket.Close()
	}
	return nil
}

// ApplyConfig pushes hot-reloadable settings into running components.
func (a *App) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.mu.Lock()
	a.Config = cfg
	a.mu.Unlock()
	a.Video.SetRejectConcurrent(cfg.Video.RejectConcurrent)
	a.Logger.Info("config reloaded")
}
