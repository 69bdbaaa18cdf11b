// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/chat"
	"github.com/jeranaias/emlinh-tui/internal/events"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeStore struct {
	history    []model.HistoryEntry
	historyErr error
	historyFor []string

	session    *model.SessionSummary
	sessionErr error

	patches  []api.SessionPatch
	patchErr error
}

func (f *fakeStore) History(_ context.Context, id string) ([]model.HistoryEntry, error) {
	f.historyFor = append(f.historyFor, id)
	return f.history, f.historyErr
}

func (f *fakeStore) Session(context.Context, string) (*model.SessionSummary, error) {
	return f.session, f.sessionErr
}

func (f *fakeStore) UpdateSession(_ context.Context, _ string, p api.SessionPatch) error {
	f.patches = append(f.patches, p)
	return f.patchErr
}

type fakeJoiner struct {
	joined []string
	left   []string
}

func (f *fakeJoiner) JoinSession(id string) bool {
	f.joined = append(f.joined, id)
	return true
}

func (f *fakeJoiner) LeaveSession(id string) bool {
	f.left = append(f.left, id)
	return true
}

type recorder struct{ toasts []string }

func (r *recorder) Notify(_ notify.Kind, text string) { r.toasts = append(r.toasts, text) }

type fixture struct {
	mgr    *Manager
	store  *fakeStore
	joiner *fakeJoiner
	view   *chat.Transcript
	rec    *recorder
	bus    *events.Bus
	clock  time.Time
}

func newFixture() *fixture {
	f := &fixture{
		store:  &fakeStore{},
		joiner: &fakeJoiner{},
		view:   chat.NewTranscript(),
		rec:    &recorder{},
		bus:    events.NewBus(nil),
		clock:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	f.mgr = NewManager(Options{
		Store:    f.store,
		Joiner:   f.joiner,
		View:     f.view,
		Notifier: f.rec,
		Bus:      f.bus,
		Now:      func() time.Time { return f.clock },
	})
	return f
}

var idPattern = regexp.MustCompile(`^session_\d+_[0-9a-z]{9}$`)

// =============================================================================
// ID GENERATION
// =============================================================================

func TestGenerateID_Format(t *testing.T) {
	now := time.UnixMilli(1714557600123)
	id := GenerateID(now)
	assert.Regexp(t, idPattern, id)
	assert.Contains(t, id, "_1714557600123_")
}

func TestGenerateID_Unique(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := GenerateID(now)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestInit_GeneratesAndJoins(t *testing.T) {
	f := newFixture()
	cmd := f.mgr.Init("")

	assert.Nil(t, cmd)
	id := f.mgr.SessionID()
	assert.Regexp(t, idPattern, id)
	assert.Equal(t, []string{id}, f.joiner.joined)
	assert.Equal(t, id, f.view.SessionID())
}

func TestInit_AdoptsAndLoadsHistory(t *testing.T) {
	f := newFixture()
	f.view.AddWelcome()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	f.store.history = []model.HistoryEntry{
		{UserMessage: "xin chào", AIResponse: "chào bạn", Timestamp: model.Timestamp{Time: ts}},
		{UserMessage: "tiếp", AIResponse: "ok", Timestamp: model.Timestamp{Time: ts}},
	}

	cmd := f.mgr.Init("session_existing")
	require.NotNil(t, cmd)
	assert.Equal(t, "session_existing", f.mgr.SessionID())
	assert.Equal(t, []string{"session_existing"}, f.joiner.joined)
	assert.Empty(t, f.view.Messages(), "view is cleared before history arrives")

	msg, ok := cmd().(HistoryMsg)
	require.True(t, ok)
	f.mgr.HandleHistory(msg)

	msgs := f.view.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "xin chào", msgs[0].Content)
	assert.Equal(t, model.RoleAI, msgs[1].Role)
	assert.True(t, msgs[1].Timestamp.Equal(ts))
	assert.Equal(t, []string{"session_existing"}, f.store.historyFor)
}

func TestSwitch_LeavesOldRoom(t *testing.T) {
	f := newFixture()
	f.mgr.Init("s1")

	cmd := f.mgr.Switch("s2")
	require.NotNil(t, cmd)
	assert.Equal(t, "s2", f.mgr.SessionID())
	assert.Equal(t, []string{"s1"}, f.joiner.left)
	assert.Equal(t, []string{"s1", "s2"}, f.joiner.joined)

	assert.Nil(t, f.mgr.Switch("s2"), "switching to the current session is a no-op")
	assert.Nil(t, f.mgr.Switch("  "))
}

func TestHandleHistory_FailureToasts(t *testing.T) {
	f := newFixture()
	f.store.historyErr = errors.New("down")
	cmd := f.mgr.Init("s1")
	f.mgr.HandleHistory(cmd().(HistoryMsg))

	assert.Equal(t, []string{ToastHistoryFail}, f.rec.toasts)
	assert.Empty(t, f.view.Messages())
}

func TestHandleHistory_DropsStale(t *testing.T) {
	f := newFixture()
	f.mgr.Init("s1")
	f.mgr.HandleHistory(HistoryMsg{SessionID: "other", Entries: []model.HistoryEntry{{UserMessage: "x"}}})
	assert.Empty(t, f.view.Messages())
}

func TestStartNew(t *testing.T) {
	f := newFixture()
	f.mgr.Init("")
	old := f.mgr.SessionID()

	var got []events.Event
	f.bus.Subscribe(events.NewSession, func(ev events.Event) { got = append(got, ev) })
	f.bus.Subscribe(events.NewSession, f.mgr.ResetView)

	f.view.AddUserMessage("hello")
	id := f.mgr.StartNew()

	assert.NotEqual(t, old, id)
	assert.Regexp(t, idPattern, id)
	assert.Equal(t, []string{old}, f.joiner.left)
	assert.Equal(t, []string{old, id}, f.joiner.joined)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].SessionID)

	msgs := f.view.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleAI, msgs[0].Role)
	assert.Equal(t, []string{ToastNewSession}, f.rec.toasts)
}

// =============================================================================
// DETAILS
// =============================================================================

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, ParseTags(" a, ,b c ,"))
	assert.Equal(t, []string{}, ParseTags(""))
}

func TestLoadDetails_Guards(t *testing.T) {
	f := newFixture()
	assert.Nil(t, f.mgr.LoadDetails())
	assert.Equal(t, []string{ToastNoSessionToEdit}, f.rec.toasts)

	f.mgr.Init("")
	assert.Nil(t, f.mgr.LoadDetails())
	assert.Equal(t, ToastNoMessages, f.rec.toasts[1])
}

func TestLoadDetails(t *testing.T) {
	f := newFixture()
	f.mgr.Init("")
	f.view.AddUserMessage("hi")
	f.store.session = &model.SessionSummary{Title: "T", Description: "D", Tags: []string{"x", "y"}}

	msg := f.mgr.LoadDetails()().(DetailsMsg)
	assert.Equal(t, "T", msg.Details.Title)
	assert.Equal(t, "x, y", msg.Details.TagsText())

	f.store.sessionErr = api.ErrNotFound
	msg = f.mgr.LoadDetails()().(DetailsMsg)
	assert.Equal(t, Details{}, msg.Details)
}

func TestSaveDetails(t *testing.T) {
	f := newFixture()
	assert.Nil(t, f.mgr.SaveDetails("t", "", ""))
	assert.Equal(t, ToastNoSession, f.rec.toasts[0])

	f.mgr.Init("")
	assert.Nil(t, f.mgr.SaveDetails("  ", "", ""))
	assert.Equal(t, ToastTitleRequired, f.rec.toasts[1])

	cmd := f.mgr.SaveDetails(" Kế hoạch ", " mô tả ", "a, b")
	require.NotNil(t, cmd)
	assert.True(t, f.mgr.HandleDetailsSaved(cmd().(DetailsSavedMsg)))
	require.Len(t, f.store.patches, 1)
	p := f.store.patches[0]
	assert.Equal(t, "Kế hoạch", *p.Title)
	assert.Equal(t, "mô tả", *p.Description)
	assert.Equal(t, []string{"a", "b"}, p.Tags)
	assert.Equal(t, ToastDetailsSaved, f.rec.toasts[2])
}

func TestHandleDetailsSaved_Errors(t *testing.T) {
	f := newFixture()
	assert.False(t, f.mgr.HandleDetailsSaved(DetailsSavedMsg{Err: &api.ClientError{Type: api.ErrTypeBackend, Message: "nope"}}))
	assert.False(t, f.mgr.HandleDetailsSaved(DetailsSavedMsg{Err: errors.New("conn")}))
	assert.Equal(t, []string{"Lỗi khi cập nhật: nope", ToastDetailsFailed}, f.rec.toasts)
}

// =============================================================================
// ACTIVITY
// =============================================================================

func TestActivityTracking(t *testing.T) {
	f := newFixture()
	f.mgr.Init("")
	f.clock = f.clock.Add(90 * time.Second)
	assert.Equal(t, 90*time.Second, f.mgr.IdleTime())

	f.mgr.RecordActivity()
	f.clock = f.clock.Add(5 * time.Second)
	st := f.mgr.GetStatus()
	assert.Equal(t, 95*time.Second, st.Duration)
	assert.Equal(t, 5*time.Second, st.IdleTime)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{5*time.Minute + 30*time.Second, "5m 30s"},
		{2*time.Hour + 3*time.Minute, "2h 3m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d))
	}
}
