// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/events"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeSender struct {
	calls []api.SendRequest
	resp  *api.SendResponse
	err   error
}

func (f *fakeSender) SendMessage(_ context.Context, req api.SendRequest) (*api.SendResponse, error) {
	f.calls = append(f.calls, req)
	return f.resp, f.err
}

type staticSession string

func (s staticSession) SessionID() string { return string(s) }

type toast struct {
	kind notify.Kind
	text string
}

type recorder struct{ toasts []toast }

func (r *recorder) Notify(kind notify.Kind, text string) {
	r.toasts = append(r.toasts, toast{kind, text})
}

func newTestCore(sender *fakeSender) (*Core, *Transcript, *recorder, *[]events.Kind) {
	view := NewTranscript()
	rec := &recorder{}
	bus := events.NewBus(nil)
	var published []events.Kind
	for _, k := range []events.Kind{events.IdeasUpdated, events.VideosUpdated} {
		bus.Subscribe(k, func(ev events.Event) { published = append(published, ev.Kind) })
	}
	core := NewCore(Options{
		Client:   sender,
		Session:  staticSession("session_1"),
		View:     view,
		Notifier: rec,
		Bus:      bus,
	})
	return core, view, rec, &published
}

func settle(t *testing.T, core *Core, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(ReplyMsg)
	require.True(t, ok)
	core.HandleReply(msg)
}

// =============================================================================
// GUARDS
// =============================================================================

func TestSendBlankNeverCallsBackend(t *testing.T) {
	sender := &fakeSender{}
	core, view, _, _ := newTestCore(sender)

	assert.Nil(t, core.Send(""))
	assert.Nil(t, core.Send("   "))
	assert.Nil(t, core.Send("\n\t"))

	assert.Empty(t, sender.calls)
	assert.Empty(t, view.Messages())
	assert.False(t, core.Sending())
}

func TestSendWhilePendingIsIgnored(t *testing.T) {
	sender := &fakeSender{resp: &api.SendResponse{Success: true, AIResponse: "ok"}}
	core, view, _, _ := newTestCore(sender)

	first := core.Send("một")
	require.NotNil(t, first)
	assert.True(t, core.Sending())

	assert.Nil(t, core.Send("hai"))
	assert.Equal(t, 1, view.Conversation().CountRole(model.RoleUser))

	msg := first()
	core.HandleReply(msg.(ReplyMsg))
	assert.False(t, core.Sending())
	assert.Len(t, sender.calls, 1)
	assert.Equal(t, "một", sender.calls[0].Message)
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

func TestSendOptimisticState(t *testing.T) {
	sender := &fakeSender{resp: &api.SendResponse{Success: true, AIResponse: "chào"}}
	core, view, _, _ := newTestCore(sender)
	core.SetMessageType(model.TypePlanning)

	cmd := core.Send("xin chào")
	require.NotNil(t, cmd)

	msgs := view.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.True(t, view.Typing().Visible)
	assert.True(t, view.Loading())

	core.HandleReply(cmd().(ReplyMsg))
	require.Len(t, sender.calls, 1)
	assert.Equal(t, "session_1", sender.calls[0].SessionID)
	assert.Equal(t, model.TypePlanning, sender.calls[0].Type)

	msgs = view.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "chào", msgs[1].Content)
	assert.False(t, view.Typing().Visible)
	assert.False(t, view.Loading())
}

func TestReplyBackendFailure(t *testing.T) {
	core, view, _, _ := newTestCore(&fakeSender{})
	core.Send("x")

	core.HandleReply(ReplyMsg{Err: &api.ClientError{Type: api.ErrTypeBackend, Message: "Lỗi server: hỏng"}})
	last := view.LastAIMessage()
	require.NotNil(t, last)
	assert.Equal(t, "❌ Lỗi: Lỗi server: hỏng", last.Content)
	assert.True(t, last.IsError)
	assert.False(t, core.Sending())
	assert.False(t, view.Typing().Visible)
}

func TestReplyBackendFailureWithoutMessage(t *testing.T) {
	core, view, _, _ := newTestCore(&fakeSender{})
	core.Send("x")

	core.HandleReply(ReplyMsg{Err: &api.ClientError{Type: api.ErrTypeBackend}})
	assert.Equal(t, "❌ Lỗi: Không thể gửi tin nhắn", view.LastAIMessage().Content)
}

func TestReplyTransportFailure(t *testing.T) {
	core, view, _, _ := newTestCore(&fakeSender{})
	core.Send("x")
	seq := view.ScrollSeq()

	core.HandleReply(ReplyMsg{Err: errors.New("dial tcp: refused")})
	assert.Equal(t, "❌ Lỗi kết nối: dial tcp: refused", view.LastAIMessage().Content)
	assert.Greater(t, view.ScrollSeq(), seq)
}

// =============================================================================
// REPLY DISPATCH
// =============================================================================

func TestReplyVideoCreated(t *testing.T) {
	raw := `{"type":"video_created","message":"Video xong","video":{"id":42,"title":"Mèo","duration":15}}`
	sender := &fakeSender{resp: &api.SendResponse{Success: true, AIResponse: raw}}
	core, view, rec, published := newTestCore(sender)

	settle(t, core, core.Send("tạo video"))

	last := view.LastAIMessage()
	require.NotNil(t, last.Video)
	assert.Equal(t, model.ID("42"), last.Video.ID)
	assert.Equal(t, "Mèo", last.Video.Title)
	assert.Equal(t, "Video xong", last.Content)
	assert.Contains(t, rec.toasts, toast{notify.Success, ToastVideoCreated})
	assert.Equal(t, []events.Kind{events.VideosUpdated}, *published)
}

func TestReplyErrorType(t *testing.T) {
	sender := &fakeSender{resp: &api.SendResponse{Success: true, AIResponse: `{"type":"error","message":"không được"}`}}
	core, view, rec, _ := newTestCore(sender)

	settle(t, core, core.Send("x"))
	assert.Equal(t, "không được", view.LastAIMessage().Content)
	assert.Equal(t, []toast{{notify.Error, "không được"}}, rec.toasts)
}

func TestReplyOtherJSON(t *testing.T) {
	sender := &fakeSender{resp: &api.SendResponse{Success: true, AIResponse: `{"type":"redirect","message":"Hãy dùng nút tạo video"}`}}
	core, view, _, _ := newTestCore(sender)
	settle(t, core, core.Send("x"))
	assert.Equal(t, "Hãy dùng nút tạo video", view.LastAIMessage().Content)

	sender.resp = &api.SendResponse{Success: true, AIResponse: `{"a":1}`}
	settle(t, core, core.Send("y"))
	assert.Equal(t, `{"a":1}`, view.LastAIMessage().Content)
}

func TestReplyPlainText(t *testing.T) {
	sender := &fakeSender{resp: &api.SendResponse{Success: true, AIResponse: "{not json"}}
	core, view, _, _ := newTestCore(sender)
	settle(t, core, core.Send("x"))
	assert.Equal(t, "{not json", view.LastAIMessage().Content)
}

func TestReplyIdeaCreated(t *testing.T) {
	sender := &fakeSender{resp: &api.SendResponse{Success: true, AIResponse: "ok", IdeaCreated: json.RawMessage(`true`)}}
	core, _, rec, published := newTestCore(sender)

	settle(t, core, core.Send("ý tưởng"))
	assert.Equal(t, []toast{{notify.Success, ToastIdeaCreated}}, rec.toasts)
	assert.Equal(t, []events.Kind{events.IdeasUpdated}, *published)
}

// =============================================================================
// MODES & QUICK PROMPTS
// =============================================================================

func TestSetMessageTypePlaceholder(t *testing.T) {
	core, view, _, _ := newTestCore(&fakeSender{})
	assert.Equal(t, "💬 Nhập tin nhắn conversation...", view.Placeholder())

	core.SetMessageType(model.TypeBrainstorm)
	assert.Equal(t, "💡 Nhập tin nhắn brainstorm...", view.Placeholder())
	assert.Equal(t, model.TypeBrainstorm, core.MessageType())
}

func TestQuickPromptSendsWhenUnchanged(t *testing.T) {
	sender := &fakeSender{resp: &api.SendResponse{Success: true, AIResponse: "ok"}}
	core, view, _, _ := newTestCore(sender)

	require.NotNil(t, core.UseQuickPrompt("Lập kế hoạch", model.TypePlanning))
	assert.Equal(t, "Lập kế hoạch", view.Input())
	assert.Equal(t, model.TypePlanning, core.MessageType())

	cmd := core.HandleQuickPrompt(QuickPromptMsg{Prompt: "Lập kế hoạch"})
	require.NotNil(t, cmd)
	core.HandleReply(cmd().(ReplyMsg))
	require.Len(t, sender.calls, 1)
	assert.Empty(t, view.Input())
}

func TestQuickPromptSkippedWhenEdited(t *testing.T) {
	sender := &fakeSender{}
	core, view, _, _ := newTestCore(sender)

	core.UseQuickPrompt("Lập kế hoạch", model.TypePlanning)
	view.SetInput("Lập kế hoạch khác")
	assert.Nil(t, core.HandleQuickPrompt(QuickPromptMsg{Prompt: "Lập kế hoạch"}))
	assert.Empty(t, sender.calls)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func TestTranscriptWelcomeAndClear(t *testing.T) {
	view := NewTranscript()
	view.AddUserMessage("a")
	view.AddWelcome()

	msgs := view.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleAI, msgs[0].Role)
	assert.False(t, view.HasUserMessages())

	view.Clear()
	assert.Empty(t, view.Messages())
}

func TestTranscriptTypingStatus(t *testing.T) {
	view := NewTranscript()
	v := view.Version()
	view.SetTypingStatus("🎤 Đang tạo giọng nói...")
	assert.Equal(t, Typing{Visible: true, Status: "🎤 Đang tạo giọng nói..."}, view.Typing())
	assert.Greater(t, view.Version(), v)

	view.HideTyping()
	assert.Equal(t, Typing{}, view.Typing())
}

func TestAddAIMessageKeepsTimestamp(t *testing.T) {
	view := NewTranscript()
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	msg := view.AddAIMessage("x", ts)
	assert.Equal(t, ts, msg.Timestamp)
}
