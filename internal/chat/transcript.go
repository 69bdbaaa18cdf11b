// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/render"
)

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// Typing is the state of the typing indicator. Status replaces the default
// "AI is typing" text while a video job reports progress.
type Typing struct {
	Visible bool
	Status  string
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the chat view state.
type Transcript struct {
	conv        *model.Conversation
	typing      Typing
	loading     bool
	input       string
	placeholder string
	scrollSeq   int
	version     int
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{
		conv:        model.NewConversation(""),
		placeholder: model.TypeConversation.Placeholder(),
	}
}

func (t *Transcript) changed() {
	t.version++
}

// Version increments on every visible change.
func (t *Transcript) Version() int {
	return t.version
}

// AddUserMessage appends a user bubble stamped now.
func (t *Transcript) AddUserMessage(text string) *model.Message {
	msg := t.conv.AddUserMessage(text)
	t.changed()
	t.ScrollToBottom()
	return msg
}

// AddExchange replays a stored exchange. Empty sides are skipped.
func (t *Transcript) AddExchange(user, ai string, ts time.Time) {
	if user != "" {
		t.conv.AddMessage(model.NewMessage(model.RoleUser, user, ts))
	}
	if ai != "" {
		t.conv.AddMessage(model.NewMessage(model.RoleAI, ai, ts))
	}
	t.changed()
}

// AddAIMessage appends an AI bubble. A zero ts means now.
func (t *Transcript) AddAIMessage(text string, ts time.Time) *model.Message {
	msg := t.conv.AddAIMessage(text, ts)
	t.changed()
	return msg
}

// AddAIMessageWithVideo appends an AI bubble with a known video.
func (t *Transcript) AddAIMessageWithVideo(text string, ts time.Time, ref *model.VideoRef) *model.Message {
	msg := model.NewAIMessage(text, ts)
	if ref != nil {
		copied := *ref
		msg.Video = &copied
	}
	t.conv.AddMessage(msg)
	t.changed()
	return msg
}

// ShowError appends an AI bubble prefixed with ❌.
func (t *Transcript) ShowError(text string) *model.Message {
	msg := model.NewAIMessage("❌ "+text, time.Time{})
	msg.IsError = true
	t.conv.AddMessage(msg)
	t.changed()
	return msg
}

// AddWelcome replaces the transcript with the greeting.
func (t *Transcript) AddWelcome() {
	t.conv.Clear(t.conv.SessionID)
	t.conv.AddAIMessage(render.WelcomeMessage, time.Time{})
	t.changed()
}

// Clear removes every message.
func (t *Transcript) Clear() {
	t.conv.Clear(t.conv.SessionID)
	t.changed()
}

// SetSessionID labels the transcript with its session.
func (t *Transcript) SetSessionID(id string) {
	t.conv.SessionID = id
}

// SessionID returns the session the transcript belongs to.
func (t *Transcript) SessionID() string {
	return t.conv.SessionID
}

// Messages returns the messages in order.
func (t *Transcript) Messages() []*model.Message {
	return t.conv.GetHistory()
}

// Conversation returns a copy of the transcript for export.
func (t *Transcript) Conversation() *model.Conversation {
	return t.conv.Clone()
}

// LastAIMessage returns the newest AI bubble, or nil.
func (t *Transcript) LastAIMessage() *model.Message {
	return t.conv.GetLastAIMessage()
}

// HasUserMessages reports whether the user has said anything yet.
func (t *Transcript) HasUserMessages() bool {
	return t.conv.CountRole(model.RoleUser) > 0
}

// =============================================================================
// INDICATORS
// =============================================================================

// ShowTyping shows the indicator with its default text.
func (t *Transcript) ShowTyping() {
	t.typing = Typing{Visible: true}
	t.changed()
	t.ScrollToBottom()
}

// SetTypingStatus shows the indicator with a custom status line.
func (t *Transcript) SetTypingStatus(status string) {
	t.typing = Typing{Visible: true, Status: status}
	t.changed()
}

// HideTyping hides the indicator and drops its status.
func (t *Transcript) HideTyping() {
	t.typing = Typing{}
	t.changed()
}

// Typing returns the indicator state.
func (t *Transcript) Typing() Typing {
	return t.typing
}

// SetLoading toggles the send-in-progress state.
func (t *Transcript) SetLoading(loading bool) {
	t.loading = loading
	t.changed()
}

// Loading reports whether a send is in progress.
func (t *Transcript) Loading() bool {
	return t.loading
}

// ScrollToBottom requests that the view follow the newest message.
func (t *Transcript) ScrollToBottom() {
	t.scrollSeq++
}

// ScrollSeq increments on every scroll request.
func (t *Transcript) ScrollSeq() int {
	return t.scrollSeq
}

// =============================================================================
// PROMPT BOX
// =============================================================================

// SetInput replaces the prompt text.
func (t *Transcript) SetInput(s string) {
	t.input = s
	t.changed()
}

// Input returns the trimmed prompt text.
func (t *Transcript) Input() string {
	return strings.TrimSpace(t.input)
}

// RawInput returns the prompt text as typed.
func (t *Transcript) RawInput() string {
	return t.input
}

// ClearInput empties the prompt.
func (t *Transcript) ClearInput() {
	t.input = ""
	t.changed()
}

// SetPlaceholder sets the prompt placeholder.
func (t *Transcript) SetPlaceholder(s string) {
	t.placeholder = s
	t.changed()
}

// Placeholder returns the prompt placeholder.
func (t *Transcript) Placeholder() string {
	return t.placeholder
}
