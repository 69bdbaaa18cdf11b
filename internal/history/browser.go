// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

// Store is the backend surface of the browser. *api.Client implements it.
type Store interface {
	Sessions(ctx context.Context) ([]model.SessionSummary, error)
	History(ctx context.Context, sessionID string) ([]model.HistoryEntry, error)
	UpdateSession(ctx context.Context, sessionID string, patch api.SessionPatch) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// Placeholder texts.
const (
	LoadingText       = "Đang tải lịch sử chat..."
	ListFailedText    = "Không thể tải danh sách cuộc hội thoại"
	ListErrorText     = "Lỗi khi tải dữ liệu"
	NoSessionsText    = "Chưa có cuộc hội thoại nào"
	NoResultsText     = "Không tìm thấy kết quả"
	MessagesFailed    = "Không thể tải tin nhắn"
	MessagesErrorText = "Lỗi khi tải tin nhắn"
	NoMessagesText    = "Chưa có tin nhắn nào"
	PreviewLen        = 60
)

// =============================================================================
// FILTER
// =============================================================================

// Filter selects which sessions are listed.
type Filter int

const (
	// FilterAll lists every session that is not archived.
	FilterAll Filter = iota
	FilterFavorite
	FilterArchived
)

func (f Filter) String() string {
	switch f {
	case FilterFavorite:
		return "favorite"
	case FilterArchived:
		return "archived"
	default:
		return "all"
	}
}

// ParseFilter maps a name to a Filter, defaulting to FilterAll.
func ParseFilter(s string) Filter {
	switch s {
	case "favorite":
		return FilterFavorite
	case "archived":
		return FilterArchived
	default:
		return FilterAll
	}
}

// Next cycles all → favorite → archived.
func (f Filter) Next() Filter {
	return (f + 1) % 3
}

func (f Filter) keep(s model.SessionSummary) bool {
	switch f {
	case FilterFavorite:
		return s.IsFavorite
	case FilterArchived:
		return s.IsArchived
	default:
		return !s.IsArchived
	}
}

// =============================================================================
// BROWSER
// =============================================================================

// LoadState is the state of an asynchronous section.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateReady
	StateFailed
)

// SessionsMsg carries the session list.
type SessionsMsg struct {
	Seq      int
	Sessions []model.SessionSummary
	Err      error
}

// MessagesMsg carries the exchanges of one session.
type MessagesMsg struct {
	SessionID string
	Entries   []model.HistoryEntry
	Err       error
}

// Options configure a Browser.
type Options struct {
	Store    Store
	Notifier notify.Notifier
	Logger   *slog.Logger
	Timeout  time.Duration
	Now      func() time.Time
}

// Browser is the state of the history view.
type Browser struct {
	store   Store
	notify  notify.Notifier
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time

	sessions  []model.SessionSummary
	listState LoadState
	listErr   string
	listSeq   int

	filter Filter
	search string

	selectedID string
	msgState   LoadState
	msgErr     string
	messages   []model.HistoryEntry
}

// NewBrowser creates an empty browser.
func NewBrowser(opts Options) *Browser {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Browser{
		store:   opts.Store,
		notify:  opts.Notifier,
		log:     opts.Logger.With("component", "history"),
		timeout: opts.Timeout,
		now:     opts.Now,
	}
}

func (b *Browser) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

// Load fetches the session list.
func (b *Browser) Load() tea.Cmd {
	b.listState = StateLoading
	b.listSeq++
	seq := b.listSeq
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		sessions, err := b.store.Sessions(ctx)
		return SessionsMsg{Seq: seq, Sessions: sessions, Err: err}
	}
}

// HandleSessions applies a list result.
func (b *Browser) HandleSessions(msg SessionsMsg) {
	if msg.Seq != b.listSeq {
		return
	}
	if msg.Err != nil {
		b.log.Warn("sessions load failed", "error", msg.Err)
		b.listState = StateFailed
		if api.IsBackend(msg.Err) {
			b.listErr = ListFailedText
		} else {
			b.listErr = ListErrorText
		}
		return
	}
	b.listState = StateReady
	b.listErr = ""
	b.sessions = msg.Sessions
}

// ListState returns the state of the session list and its error text.
func (b *Browser) ListState() (LoadState, string) {
	return b.listState, b.listErr
}

// Sessions returns every loaded session, unfiltered.
func (b *Browser) Sessions() []model.SessionSummary {
	return b.sessions
}

// SetFilter changes the list filter.
func (b *Browser) SetFilter(f Filter) { b.filter = f }

// Filter returns the list filter.
func (b *Browser) Filter() Filter { return b.filter }

// SetSearch changes the search term.
func (b *Browser) SetSearch(q string) { b.search = q }

// Search returns the search term.
func (b *Browser) Search() string { return b.search }

// Visible returns the sessions passing the filter and search.
func (b *Browser) Visible() []model.SessionSummary {
	out := make([]model.SessionSummary, 0, len(b.sessions))
	for _, s := range b.sessions {
		if !b.filter.keep(s) {
			continue
		}
		if !util.ContainsFold(s.Title, b.search) && !util.ContainsFold(s.Description, b.search) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// EmptyText explains an empty list, or returns "" when there is
// something to show.
func (b *Browser) EmptyText() string {
	if len(b.sessions) == 0 {
		return NoSessionsText
	}
	if len(b.Visible()) == 0 {
		return NoResultsText
	}
	return ""
}

// =============================================================================
// SELECTION
// =============================================================================

// Select makes id current and loads its exchanges.
func (b *Browser) Select(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	b.selectedID = id
	b.msgState = StateLoading
	b.msgErr = ""
	b.messages = nil
	return b.loadMessages(id)
}

// Retry reloads the exchanges of the current session.
func (b *Browser) Retry() tea.Cmd {
	if b.selectedID == "" {
		return nil
	}
	b.msgState = StateLoading
	return b.loadMessages(b.selectedID)
}

func (b *Browser) loadMessages(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		entries, err := b.store.History(ctx, id)
		return MessagesMsg{SessionID: id, Entries: entries, Err: err}
	}
}

// HandleMessages applies loaded exchanges if they are still current.
func (b *Browser) HandleMessages(msg MessagesMsg) {
	if msg.SessionID != b.selectedID {
		return
	}
	if msg.Err != nil {
		b.log.Warn("messages load failed", "session", msg.SessionID, "error", msg.Err)
		b.msgState = StateFailed
		if api.IsBackend(msg.Err) {
			b.msgErr = MessagesFailed
		} else {
			b.msgErr = MessagesErrorText
		}
		return
	}
	b.msgState = StateReady
	b.messages = msg.Entries
}

// Selected returns the current session, or nil.
func (b *Browser) Selected() *model.SessionSummary {
	for i := range b.sessions {
		if b.sessions[i].SessionID == b.selectedID {
			return &b.sessions[i]
		}
	}
	return nil
}

// SelectedID returns the id of the current session.
func (b *Browser) SelectedID() string { return b.selectedID }

// Messages returns the loaded exchanges and their state.
func (b *Browser) Messages() ([]model.HistoryEntry, LoadState, string) {
	return b.messages, b.msgState, b.msgErr
}

// ClearSelection drops the current session.
func (b *Browser) ClearSelection() {
	b.selectedID = ""
	b.messages = nil
	b.msgState = StateIdle
	b.msgErr = ""
}

// Continue returns the session to reopen in the chat view.
func (b *Browser) Continue() (string, bool) {
	return b.selectedID, b.selectedID != ""
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatTimeAgo renders the age of t relative to now in whole days,
// hours or minutes.
func FormatTimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "Vừa xong"
	}
	d := now.Sub(t)
	days := int(d.Hours()) / 24
	hours := int(d.Hours())
	minutes := int(d.Minutes())
	switch {
	case days > 0:
		return strconv.Itoa(days) + " ngày trước"
	case hours > 0:
		return strconv.Itoa(hours) + " giờ trước"
	case minutes > 0:
		return strconv.Itoa(minutes) + " phút trước"
	default:
		return "Vừa xong"
	}
}

// TimeAgo formats t against the browser clock.
func (b *Browser) TimeAgo(t time.Time) string {
	return FormatTimeAgo(t, b.now())
}

// PreviewOf returns the truncated list preview of s.
func PreviewOf(s model.SessionSummary) string {
	return util.TruncateText(s.Preview(), PreviewLen)
}
