// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
)

type fakeStore struct {
	sessions    []model.SessionSummary
	sessionsErr error
	history     []model.HistoryEntry
	historyErr  error
	patches     map[string][]api.SessionPatch
	updateErr   error
	deleted     []string
	deleteErr   error
}

func (f *fakeStore) Sessions(context.Context) ([]model.SessionSummary, error) {
	return f.sessions, f.sessionsErr
}

func (f *fakeStore) History(context.Context, string) ([]model.HistoryEntry, error) {
	return f.history, f.historyErr
}

func (f *fakeStore) UpdateSession(_ context.Context, id string, p api.SessionPatch) error {
	if f.patches == nil {
		f.patches = map[string][]api.SessionPatch{}
	}
	f.patches[id] = append(f.patches[id], p)
	return f.updateErr
}

func (f *fakeStore) DeleteSession(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

type recorder struct{ toasts []string }

func (r *recorder) Notify(_ notify.Kind, text string) { r.toasts = append(r.toasts, text) }

func sampleSessions() []model.SessionSummary {
	return []model.SessionSummary{
		{SessionID: "a", Title: "Du lịch Việt Nam", MessageCount: 3},
		{SessionID: "b", Title: "Công thức", Description: "nấu phở", IsFavorite: true},
		{SessionID: "c", Title: "Cũ", IsArchived: true},
	}
}

func newLoaded(t *testing.T) (*Browser, *fakeStore, *recorder) {
	t.Helper()
	store := &fakeStore{sessions: sampleSessions()}
	rec := &recorder{}
	b := NewBrowser(Options{Store: store, Notifier: rec})
	b.HandleSessions(b.Load()().(SessionsMsg))
	return b, store, rec
}

func ids(list []model.SessionSummary) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.SessionID
	}
	return out
}

func TestFilters(t *testing.T) {
	b, _, _ := newLoaded(t)

	assert.Equal(t, []string{"a", "b"}, ids(b.Visible()))
	b.SetFilter(FilterFavorite)
	assert.Equal(t, []string{"b"}, ids(b.Visible()))
	b.SetFilter(FilterArchived)
	assert.Equal(t, []string{"c"}, ids(b.Visible()))
	assert.Equal(t, FilterAll, FilterArchived.Next())
	assert.Equal(t, FilterFavorite, ParseFilter("favorite"))
}

func TestSearchFoldsDiacritics(t *testing.T) {
	b, _, _ := newLoaded(t)

	b.SetSearch("viet")
	assert.Equal(t, []string{"a"}, ids(b.Visible()))
	b.SetSearch("PHO")
	assert.Equal(t, []string{"b"}, ids(b.Visible()))
	b.SetSearch("zzz")
	assert.Empty(t, b.Visible())
	assert.Equal(t, NoResultsText, b.EmptyText())
}

func TestLoadErrors(t *testing.T) {
	store := &fakeStore{sessionsErr: &api.ClientError{Type: api.ErrTypeBackend}}
	b := NewBrowser(Options{Store: store})
	b.HandleSessions(b.Load()().(SessionsMsg))
	state, text := b.ListState()
	assert.Equal(t, StateFailed, state)
	assert.Equal(t, ListFailedText, text)

	store.sessionsErr = errors.New("refused")
	b.HandleSessions(b.Load()().(SessionsMsg))
	_, text = b.ListState()
	assert.Equal(t, ListErrorText, text)

	store.sessionsErr = nil
	store.sessions = nil
	b.HandleSessions(b.Load()().(SessionsMsg))
	assert.Equal(t, NoSessionsText, b.EmptyText())
}

func TestSelectAndContinue(t *testing.T) {
	b, store, _ := newLoaded(t)
	store.history = []model.HistoryEntry{{UserMessage: "hi", AIResponse: "hello"}}

	_, ok := b.Continue()
	assert.False(t, ok)

	b.HandleMessages(b.Select("a")().(MessagesMsg))
	entries, state, _ := b.Messages()
	assert.Equal(t, StateReady, state)
	assert.Len(t, entries, 1)
	assert.Equal(t, "Du lịch Việt Nam", b.Selected().DisplayTitle())

	id, ok := b.Continue()
	assert.True(t, ok)
	assert.Equal(t, "a", id)
}

func TestSelect_StaleMessagesDropped(t *testing.T) {
	b, store, _ := newLoaded(t)
	store.history = []model.HistoryEntry{{UserMessage: "old"}}
	first := b.Select("a")
	b.Select("b")
	b.HandleMessages(first().(MessagesMsg))

	entries, state, _ := b.Messages()
	assert.Empty(t, entries)
	assert.Equal(t, StateLoading, state)
}

func TestToggleFavorite(t *testing.T) {
	b, store, rec := newLoaded(t)
	b.Select("a")

	cmd := b.HandleAction(b.ToggleFavorite()().(ActionMsg))
	require.NotNil(t, cmd, "success reloads the list")

	p := store.patches["a"][0]
	require.NotNil(t, p.IsFavorite)
	assert.True(t, *p.IsFavorite)
	assert.Nil(t, p.Title)
	assert.True(t, b.Selected().IsFavorite)
	assert.Equal(t, []string{ToastUpdated}, rec.toasts)
}

func TestToggleArchive(t *testing.T) {
	b, store, _ := newLoaded(t)
	b.Select("c")
	b.HandleAction(b.ToggleArchive()().(ActionMsg))

	assert.False(t, *store.patches["c"][0].IsArchived)
	assert.False(t, b.Selected().IsArchived)
}

func TestSave(t *testing.T) {
	b, store, _ := newLoaded(t)
	assert.Nil(t, b.Save("x", "", ""), "nothing selected")

	b.Select("a")
	b.HandleAction(b.Save(" Mới ", " d ", "x, ,y")().(ActionMsg))
	p := store.patches["a"][0]
	assert.Equal(t, "Mới", *p.Title)
	assert.Equal(t, "d", *p.Description)
	assert.Equal(t, []string{"x", "y"}, p.Tags)
}

func TestActionErrors(t *testing.T) {
	b, store, rec := newLoaded(t)
	b.Select("a")

	store.updateErr = &api.ClientError{Type: api.ErrTypeBackend, Message: "nope"}
	assert.Nil(t, b.HandleAction(b.ToggleFavorite()().(ActionMsg)))
	store.updateErr = errors.New("refused")
	b.HandleAction(b.ToggleFavorite()().(ActionMsg))
	store.deleteErr = &api.ClientError{Type: api.ErrTypeBackend, Message: "locked"}
	b.HandleAction(b.Delete()().(ActionMsg))

	assert.Equal(t, []string{"Lỗi khi cập nhật: nope", ToastUpdateFailed, "Lỗi khi xóa: locked"}, rec.toasts)
	assert.Equal(t, "a", b.SelectedID())
}

func TestDelete(t *testing.T) {
	b, store, rec := newLoaded(t)
	b.Select("b")

	cmd := b.HandleAction(b.Delete()().(ActionMsg))
	assert.NotNil(t, cmd)
	assert.Equal(t, []string{"b"}, store.deleted)
	assert.Empty(t, b.SelectedID())
	assert.Equal(t, []string{ToastDeleted}, rec.toasts)
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Vừa xong"},
		{5 * time.Minute, "5 phút trước"},
		{3 * time.Hour, "3 giờ trước"},
		{50 * time.Hour, "2 ngày trước"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimeAgo(now.Add(-tt.ago), now))
	}
	assert.Equal(t, "Vừa xong", FormatTimeAgo(time.Time{}, now))
}

func TestPreviewOf(t *testing.T) {
	long := model.SessionSummary{Description: "Đây là một mô tả rất dài vượt quá sáu mươi ký tự để kiểm tra cắt ngắn văn bản"}
	got := PreviewOf(long)
	assert.Equal(t, 63, len([]rune(got)))
	assert.Equal(t, "Cuộc hội thoại với AI...", PreviewOf(model.SessionSummary{}))
}
