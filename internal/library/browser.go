// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

// Store is the backend surface of the library. *api.Client implements it.
type Store interface {
	Videos(ctx context.Context, q api.VideoQuery) (*api.VideoList, error)
	Video(ctx context.Context, id model.ID) (*model.Video, error)
	DeleteVideo(ctx context.Context, id model.ID) error
	OpenVideoFile(ctx context.Context, id model.ID) (io.ReadCloser, int64, error)
}

// Texts.
const (
	DefaultPerPage = 12
	LoadingText    = "Đang tải danh sách video..."
	EmptyText      = "Chưa có video nào"
	EmptyHint      = "Hãy tạo video đầu tiên của bạn bằng cách chat với AI!"
	NoMatchText    = "Không tìm thấy video phù hợp"

	ToastDeleted      = "Video đã được xóa thành công"
	ToastDownloading  = "Đang tải video..."
	listConnectionErr = "Lỗi kết nối khi tải danh sách video"
)

// =============================================================================
// SORT
// =============================================================================

// Sort orders the visible page.
type Sort int

const (
	SortNewest Sort = iota
	SortOldest
	SortTitle
)

func (s Sort) String() string {
	switch s {
	case SortOldest:
		return "oldest"
	case SortTitle:
		return "title"
	default:
		return "newest"
	}
}

// ParseSort maps a name to a Sort, defaulting to SortNewest.
func ParseSort(s string) Sort {
	switch s {
	case "oldest":
		return SortOldest
	case "title":
		return SortTitle
	default:
		return SortNewest
	}
}

// Next cycles newest → oldest → title.
func (s Sort) Next() Sort {
	return (s + 1) % 3
}

// Statuses lists the filter values, "" meaning all.
var Statuses = []string{"", model.VideoRendering, model.VideoCompleted, model.VideoFailed}

// =============================================================================
// MESSAGES
// =============================================================================

// PageMsg carries a loaded page.
type PageMsg struct {
	Seq  int
	List *api.VideoList
	Err  error
}

// SearchMsg fires when the search input has been idle long enough.
type SearchMsg struct {
	Seq int
}

// DetailMsg carries a loaded video.
type DetailMsg struct {
	ID    model.ID
	Video *model.Video
	Err   error
}

// DeletedMsg carries the result of a delete.
type DeletedMsg struct {
	ID  model.ID
	Err error
}

// =============================================================================
// BROWSER
// =============================================================================

// State is the state of the list.
type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

// Options configure a Browser.
type Options struct {
	Store          Store
	Notifier       notify.Notifier
	Logger         *slog.Logger
	PerPage        int
	SearchDebounce time.Duration
	Timeout        time.Duration
}

// Browser is the state of the library view.
type Browser struct {
	store    Store
	notify   notify.Notifier
	log      *slog.Logger
	timeout  time.Duration
	debounce time.Duration

	page    int
	perPage int
	status  string
	order   Sort
	search  string
	pending string

	searchSeq int
	seq       int

	state      State
	errText    string
	videos     []model.Video
	pagination model.Pagination

	detail *model.Video
}

// NewBrowser creates a browser on page 1 with no filters.
func NewBrowser(opts Options) *Browser {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = 500 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Browser{
		store:    opts.Store,
		notify:   opts.Notifier,
		log:      opts.Logger.With("component", "library"),
		timeout:  opts.Timeout,
		debounce: opts.SearchDebounce,
		page:     1,
		perPage:  opts.PerPage,
	}
}

func (b *Browser) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

// Load fetches the current page.
func (b *Browser) Load() tea.Cmd {
	b.state = StateLoading
	b.seq++
	seq := b.seq
	q := api.VideoQuery{Page: b.page, PerPage: b.perPage, Status: b.status}
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		list, err := b.store.Videos(ctx, q)
		return PageMsg{Seq: seq, List: list, Err: err}
	}
}

// HandlePage applies a page result.
func (b *Browser) HandlePage(msg PageMsg) {
	if msg.Seq != b.seq {
		return
	}
	if msg.Err != nil {
		b.log.Warn("video list failed", "page", b.page, "error", msg.Err)
		b.state = StateFailed
		if text, ok := api.BackendMessage(msg.Err); ok {
			b.errText = "Lỗi khi tải danh sách video: " + text
		} else {
			b.errText = listConnectionErr
		}
		return
	}
	b.state = StateReady
	b.errText = ""
	b.videos = msg.List.Videos
	b.pagination = msg.List.Pagination
	if b.pagination.Page > 0 {
		b.page = b.pagination.Page
	}
}

// State returns the list state and its error text.
func (b *Browser) State() (State, string) { return b.state, b.errText }

// Page returns the current page number.
func (b *Browser) Page() int { return b.page }

// Pagination returns the paging block of the last load.
func (b *Browser) Pagination() model.Pagination { return b.pagination }

// Status returns the status filter, "" for all.
func (b *Browser) Status() string { return b.status }

// Sort returns the sort order.
func (b *Browser) Sort() Sort { return b.order }

// Search returns the applied search term.
func (b *Browser) Search() string { return b.search }

// Visible returns the loaded page after search and sort.
func (b *Browser) Visible() []model.Video {
	out := b.matches()
	switch b.order {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt.Time) })
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool { return util.Fold(out[i].Title) < util.Fold(out[j].Title) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt.Time) })
	}
	return out
}

type videoSource []model.Video

func (s videoSource) String(i int) string { return util.Fold(s[i].Title + " " + s[i].Topic) }
func (s videoSource) Len() int            { return len(s) }

func (b *Browser) matches() []model.Video {
	q := util.Fold(strings.TrimSpace(b.search))
	if q == "" {
		return append([]model.Video(nil), b.videos...)
	}
	found := fuzzy.FindFrom(q, videoSource(b.videos))
	out := make([]model.Video, 0, len(found))
	for _, m := range found {
		out = append(out, b.videos[m.Index])
	}
	return out
}

// EmptyText explains an empty list, or returns "".
func (b *Browser) EmptyText() string {
	if len(b.videos) == 0 {
		return EmptyText
	}
	if len(b.Visible()) == 0 {
		return NoMatchText
	}
	return ""
}

// =============================================================================
// FILTERS AND PAGING
// =============================================================================

// SetStatus filters by status and returns to page 1.
func (b *Browser) SetStatus(status string) tea.Cmd {
	b.status = status
	b.page = 1
	return b.Load()
}

// CycleStatus moves to the next status filter.
func (b *Browser) CycleStatus() tea.Cmd {
	for i, s := range Statuses {
		if s == b.status {
			return b.SetStatus(Statuses[(i+1)%len(Statuses)])
		}
	}
	return b.SetStatus("")
}

// SetSort changes the order of the visible page.
func (b *Browser) SetSort(s Sort) { b.order = s }

// SetSearch records the input and schedules it after the debounce
// interval. Only the last call within the interval takes effect.
func (b *Browser) SetSearch(q string) tea.Cmd {
	b.pending = q
	b.searchSeq++
	seq := b.searchSeq
	return tea.Tick(b.debounce, func(time.Time) tea.Msg { return SearchMsg{Seq: seq} })
}

// HandleSearch applies the pending search if no newer input arrived.
func (b *Browser) HandleSearch(msg SearchMsg) tea.Cmd {
	if msg.Seq != b.searchSeq {
		return nil
	}
	b.search = b.pending
	b.page = 1
	return b.Load()
}

// GoToPage loads page n, clamped to the known range.
func (b *Browser) GoToPage(n int) tea.Cmd {
	if n < 1 {
		n = 1
	}
	if pages := b.pagination.Pages; pages > 0 && n > pages {
		n = pages
	}
	b.page = n
	return b.Load()
}

// NextPage loads the following page, if any.
func (b *Browser) NextPage() tea.Cmd {
	if b.page >= b.pagination.Pages {
		return nil
	}
	return b.GoToPage(b.page + 1)
}

// PrevPage loads the previous page, if any.
func (b *Browser) PrevPage() tea.Cmd {
	if b.page <= 1 {
		return nil
	}
	return b.GoToPage(b.page - 1)
}

// PageRange returns the page links to show: up to two either side of
// the current page. It is empty when there is a single page.
func (b *Browser) PageRange() []int {
	return PageRange(b.pagination)
}

// PageRange computes the page links for p.
func PageRange(p model.Pagination) []int {
	if p.Pages <= 1 {
		return nil
	}
	start := max(1, p.Page-2)
	end := min(p.Pages, p.Page+2)
	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out
}

// ClearFilters resets status, sort and search and reloads page 1.
func (b *Browser) ClearFilters() tea.Cmd {
	b.status = ""
	b.order = SortNewest
	b.search = ""
	b.pending = ""
	b.searchSeq++
	b.page = 1
	return b.Load()
}

// =============================================================================
// DETAIL AND DELETE
// =============================================================================

// Detail loads one video for the detail view.
func (b *Browser) Detail(id model.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		v, err := b.store.Video(ctx, id)
		return DetailMsg{ID: id, Video: v, Err: err}
	}
}

// HandleDetail opens the detail view or reports the failure.
func (b *Browser) HandleDetail(msg DetailMsg) {
	if msg.Err != nil {
		b.log.Warn("video detail failed", "video", msg.ID, "error", msg.Err)
		if text, ok := api.BackendMessage(msg.Err); ok {
			b.notify.Notify(notify.Error, "Lỗi khi tải chi tiết video: "+text)
		} else {
			b.notify.Notify(notify.Error, "Lỗi kết nối khi tải chi tiết video")
		}
		return
	}
	b.detail = msg.Video
}

// Selected returns the video in the detail view, or nil.
func (b *Browser) Selected() *model.Video { return b.detail }

// CloseDetail leaves the detail view.
func (b *Browser) CloseDetail() { b.detail = nil }

// Delete removes a video. Confirmation is the caller's job.
func (b *Browser) Delete(id model.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		return DeletedMsg{ID: id, Err: b.store.DeleteVideo(ctx, id)}
	}
}

// HandleDeleted reports a delete and reloads the list on success.
func (b *Browser) HandleDeleted(msg DeletedMsg) tea.Cmd {
	if msg.Err != nil {
		b.log.Warn("video delete failed", "video", msg.ID, "error", msg.Err)
		if text, ok := api.BackendMessage(msg.Err); ok {
			b.notify.Notify(notify.Error, "Lỗi khi xóa video: "+text)
		} else {
			b.notify.Notify(notify.Error, "Lỗi kết nối khi xóa video")
		}
		return nil
	}
	if b.detail != nil && b.detail.ID == msg.ID {
		b.detail = nil
	}
	b.notify.Notify(notify.Success, ToastDeleted)
	return b.Load()
}
