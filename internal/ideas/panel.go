// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ideas keeps the "recent ideas" sidebar in sync with the backend.
package ideas

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

// Panel texts.
const (
	EmptyText  = "Chưa có ý tưởng nào được tạo"
	ErrorText  = "Lỗi khi tải ý tưởng"
	DefaultPer = 5
)

// Lister fetches recent ideas. *api.Client implements it.
type Lister interface {
	Ideas(ctx context.Context, perPage int) ([]model.Idea, error)
}

// State is the panel display state.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateEmpty
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return "loading"
	}
}

// LoadedMsg carries a settled fetch.
type LoadedMsg struct {
	Seq   int
	Ideas []model.Idea
	Err   error
}

// ReloadMsg fires when a throttled reload is due.
type ReloadMsg struct{}

// Options configure a Panel.
type Options struct {
	Client  Lister
	PerPage int
	// MinInterval is the shortest gap between fetches. Bursts of
	// ideasUpdated collapse into one deferred reload.
	MinInterval time.Duration
	Timeout     time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

// Panel holds the recent ideas.
type Panel struct {
	client  Lister
	perPage int
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time

	limiter   *rate.Limiter
	scheduled bool
	seq       int

	state State
	ideas []model.Idea
}

// NewPanel creates a panel in the loading state.
func NewPanel(opts Options) *Panel {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPer
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	return &Panel{
		client:  opts.Client,
		perPage: opts.PerPage,
		timeout: opts.Timeout,
		log:     opts.Logger.With("component", "ideas"),
		now:     opts.Now,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// State returns the display state.
func (p *Panel) State() State { return p.state }

// Ideas returns the loaded ideas.
func (p *Panel) Ideas() []model.Idea { return p.ideas }

// Message is the placeholder line for the empty and error states.
func (p *Panel) Message() string {
	switch p.state {
	case StateEmpty:
		return EmptyText
	case StateError:
		return ErrorText
	}
	return ""
}

// Load fetches now, or schedules one reload when called too soon after
// the previous fetch. Calls while a reload is scheduled are absorbed.
func (p *Panel) Load() tea.Cmd {
	if p.scheduled {
		return nil
	}
	now := p.now()
	r := p.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay <= 0 {
		return p.fetch()
	}
	p.scheduled = true
	p.log.Debug("ideas reload deferred", "delay", delay)
	return tea.Tick(delay, func(time.Time) tea.Msg { return ReloadMsg{} })
}

// HandleReload runs the deferred fetch.
func (p *Panel) HandleReload(ReloadMsg) tea.Cmd {
	p.scheduled = false
	return p.fetch()
}

func (p *Panel) fetch() tea.Cmd {
	p.seq++
	seq := p.seq
	client, perPage, timeout := p.client, p.perPage, p.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ideas, err := client.Ideas(ctx, perPage)
		return LoadedMsg{Seq: seq, Ideas: ideas, Err: err}
	}
}

// HandleLoaded applies a fetch result. Results older than the newest
// fetch are dropped.
func (p *Panel) HandleLoaded(msg LoadedMsg) {
	if msg.Seq != p.seq {
		return
	}
	switch {
	case msg.Err != nil:
		p.log.Warn("ideas load failed", "error", msg.Err)
		p.state = StateError
		p.ideas = nil
	case len(msg.Ideas) == 0:
		p.state = StateEmpty
		p.ideas = nil
	default:
		p.state = StateLoaded
		p.ideas = msg.Ideas
	}
}

// StatusColor maps an idea status to its badge color.
func StatusColor(status string) string {
	switch status {
	case "draft":
		return "secondary"
	case "in_progress":
		return "warning"
	case "completed":
		return "success"
	case "published":
		return "primary"
	default:
		return "secondary"
	}
}
