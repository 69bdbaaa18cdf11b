// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tidwall/gjson"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/events"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
)

// Toast texts.
const (
	ToastVideoCreated = "🎬 Video đã được tạo thành công!"
	ToastIdeaCreated  = "💡 Đã tạo ý tưởng mới!"
)

// Sender posts chat messages. *api.Client implements it.
type Sender interface {
	SendMessage(ctx context.Context, req api.SendRequest) (*api.SendResponse, error)
}

// SessionSource supplies the current session id.
type SessionSource interface {
	SessionID() string
}

// =============================================================================
// MESSAGES
// =============================================================================

// ReplyMsg carries the settled result of a send.
type ReplyMsg struct {
	Response *api.SendResponse
	Err      error
}

// QuickPromptMsg fires after the quick-prompt delay.
type QuickPromptMsg struct {
	Prompt string
}

// =============================================================================
// CORE
// =============================================================================

// Options configure a Core.
type Options struct {
	Client           Sender
	Session          SessionSource
	View             *Transcript
	Notifier         notify.Notifier
	Bus              *events.Bus
	Logger           *slog.Logger
	Timeout          time.Duration
	QuickPromptDelay time.Duration
	DefaultType      model.MessageType
}

// Core sequences chat turns: idle → sending → idle.
type Core struct {
	client     Sender
	session    SessionSource
	view       *Transcript
	notify     notify.Notifier
	bus        *events.Bus
	log        *slog.Logger
	timeout    time.Duration
	quickDelay time.Duration

	sending bool
	msgType model.MessageType
}

// NewCore creates a Core.
func NewCore(opts Options) *Core {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus(opts.Logger)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.QuickPromptDelay <= 0 {
		opts.QuickPromptDelay = 500 * time.Millisecond
	}
	if opts.DefaultType == "" {
		opts.DefaultType = model.TypeConversation
	}
	c := &Core{
		client:     opts.Client,
		session:    opts.Session,
		view:       opts.View,
		notify:     opts.Notifier,
		bus:        opts.Bus,
		log:        opts.Logger.With("component", "chat"),
		timeout:    opts.Timeout,
		quickDelay: opts.QuickPromptDelay,
	}
	c.SetMessageType(opts.DefaultType)
	return c
}

// Sending reports whether a reply is outstanding.
func (c *Core) Sending() bool {
	return c.sending
}

// MessageType returns the current mode.
func (c *Core) MessageType() model.MessageType {
	return c.msgType
}

// SetMessageType switches the mode and updates the prompt placeholder.
func (c *Core) SetMessageType(t model.MessageType) {
	c.msgType = t
	c.view.SetPlaceholder(t.Placeholder())
}

// Submit sends the prompt box contents and clears it.
func (c *Core) Submit() tea.Cmd {
	text := c.view.Input()
	if text == "" {
		return nil
	}
	if c.sending {
		return nil
	}
	c.view.ClearInput()
	return c.Send(text)
}

// Send starts a chat turn. It returns nil, with no visible effect, while
// another turn is outstanding or when text is blank.
func (c *Core) Send(text string) tea.Cmd {
	if c.sending || strings.TrimSpace(text) == "" {
		return nil
	}

	c.view.AddUserMessage(text)
	c.setLoading(true)
	c.view.ShowTyping()

	req := api.SendRequest{
		Message:   text,
		SessionID: c.sessionID(),
		Type:      c.msgType,
	}
	client := c.client
	timeout := c.timeout
	c.log.Debug("sending message", "session", req.SessionID, "type", req.Type)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := client.SendMessage(ctx, req)
		return ReplyMsg{Response: resp, Err: err}
	}
}

// HandleReply settles a turn. Every path hides the typing indicator,
// returns to idle and scrolls to the newest message.
func (c *Core) HandleReply(msg ReplyMsg) {
	defer func() {
		c.view.HideTyping()
		c.setLoading(false)
		c.view.ScrollToBottom()
	}()

	if msg.Err != nil {
		c.log.Warn("chat send failed", "error", msg.Err)
		if text, ok := api.BackendMessage(msg.Err); ok {
			if text == "" {
				text = "Không thể gửi tin nhắn"
			}
			c.view.ShowError("Lỗi: " + text)
			return
		}
		c.view.ShowError("Lỗi kết nối: " + msg.Err.Error())
		return
	}

	resp := msg.Response
	c.renderReply(resp.AIResponse, resp.Timestamp.Time)

	if resp.HasIdea() {
		c.notify.Notify(notify.Success, ToastIdeaCreated)
		c.bus.Publish(events.Event{Kind: events.IdeasUpdated})
	}
}

// renderReply shows ai_response. JSON objects are dispatched on "type";
// anything else is shown verbatim.
func (c *Core) renderReply(raw string, ts time.Time) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		c.view.AddAIMessage(raw, ts)
		return
	}

	parsed := gjson.Parse(trimmed)
	switch parsed.Get("type").String() {
	case "video_created":
		c.handleVideoCreated(parsed, ts)
	case "error":
		text := parsed.Get("message").String()
		c.view.AddAIMessage(text, ts)
		c.notify.Notify(notify.Error, text)
	default:
		if text := parsed.Get("message").String(); text != "" {
			c.view.AddAIMessage(text, ts)
		} else {
			c.view.AddAIMessage(trimmed, ts)
		}
	}
}

func (c *Core) handleVideoCreated(parsed gjson.Result, ts time.Time) {
	text := parsed.Get("message").String()
	video := parsed.Get("video")

	var ref *model.VideoRef
	if id := video.Get("id").String(); id != "" {
		title := video.Get("title").String()
		if title == "" {
			title = video.Get("topic").String()
		}
		ref = &model.VideoRef{ID: model.ID(id), Title: title}
	}

	c.view.AddAIMessageWithVideo(text, ts, ref)
	c.notify.Notify(notify.Success, ToastVideoCreated)
	c.bus.Publish(events.Event{Kind: events.VideosUpdated})
}

// UseQuickPrompt switches mode, fills the prompt and schedules the send.
func (c *Core) UseQuickPrompt(prompt string, t model.MessageType) tea.Cmd {
	c.SetMessageType(t)
	c.view.SetInput(prompt)
	return tea.Tick(c.quickDelay, func(time.Time) tea.Msg {
		return QuickPromptMsg{Prompt: prompt}
	})
}

// HandleQuickPrompt sends the prompt unless the user edited it meanwhile.
func (c *Core) HandleQuickPrompt(msg QuickPromptMsg) tea.Cmd {
	if c.view.Input() != strings.TrimSpace(msg.Prompt) {
		return nil
	}
	return c.Submit()
}

func (c *Core) setLoading(loading bool) {
	c.sending = loading
	c.view.SetLoading(loading)
}

func (c *Core) sessionID() string {
	if c.session == nil {
		return ""
	}
	return c.session.SessionID()
}

// =============================================================================
// QUICK PROMPTS
// =============================================================================

// QuickPrompt is a canned prompt offered in the empty chat.
type QuickPrompt struct {
	Label  string
	Prompt string
	Type   model.MessageType
}

// QuickPrompts are the prompts offered by the chat view.
var QuickPrompts = []QuickPrompt{
	{Label: "Ý tưởng video", Prompt: "Gợi ý cho tôi 5 ý tưởng video ngắn về công nghệ", Type: model.TypeBrainstorm},
	{Label: "Kế hoạch nội dung", Prompt: "Lập kế hoạch nội dung cho kênh YouTube trong 1 tuần", Type: model.TypePlanning},
	{Label: "Tư vấn", Prompt: "Làm thế nào để video của tôi thu hút hơn?", Type: model.TypeConversation},
}
