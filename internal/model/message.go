// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Bạn"
	case RoleAI:
		return "AI"
	default:
		return string(r)
	}
}

// Avatar returns the emoji shown next to a bubble.
func (r Role) Avatar() string {
	if r == RoleUser {
		return "👤"
	}
	return "🤖"
}

// =============================================================================
// MESSAGE TYPE (CHAT MODE)
// =============================================================================

// MessageType is the chat mode sent along with every message.
type MessageType string

const (
	TypeConversation MessageType = "conversation"
	TypeBrainstorm   MessageType = "brainstorm"
	TypePlanning     MessageType = "planning"
)

// MessageTypes lists the modes in display order.
var MessageTypes = []MessageType{TypeConversation, TypeBrainstorm, TypePlanning}

// ParseMessageType returns the mode for s, or false when s is unknown.
func ParseMessageType(s string) (MessageType, bool) {
	switch MessageType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeConversation:
		return TypeConversation, true
	case TypeBrainstorm:
		return TypeBrainstorm, true
	case TypePlanning:
		return TypePlanning, true
	}
	return "", false
}

// Icon returns the emoji used for the mode.
func (t MessageType) Icon() string {
	switch t {
	case TypeBrainstorm:
		return "💡"
	case TypePlanning:
		return "📋"
	default:
		return "💬"
	}
}

// Placeholder returns the input placeholder for the mode.
func (t MessageType) Placeholder() string {
	return t.Icon() + " Nhập tin nhắn " + string(t) + "..."
}

// =============================================================================
// MESSAGE
// =============================================================================

// VideoRef points at a backend video embedded in a message.
type VideoRef struct {
	ID    ID     `json:"id"`
	Title string `json:"title,omitempty"`
}

// FileURL is the streaming endpoint for the video.
func (v VideoRef) FileURL() string {
	return "/api/videos/" + v.ID.String() + "/file"
}

// PageURL is the library page for the video.
func (v VideoRef) PageURL() string {
	return "/videos/" + v.ID.String()
}

// Message represents a single chat bubble.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Video is set when the backend reported a video explicitly.
	Video *VideoRef `json:"video,omitempty"`

	// IsError marks failure bubbles rendered by ShowError.
	IsError bool `json:"is_error,omitempty"`
}

// NewMessage creates a new message with a generated ID.
// A zero timestamp means now.
func NewMessage(role Role, content string, ts time.Time) *Message {
	if ts.IsZero() {
		ts = time.Now()
	}
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: ts,
	}
}

// NewUserMessage creates a new user message stamped now.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content, time.Time{})
}

// NewAIMessage creates a new AI message.
func NewAIMessage(content string, ts time.Time) *Message {
	return NewMessage(RoleAI, content, ts)
}

// Preview returns the first maxLen runes of the content on one line.
func (m *Message) Preview(maxLen int) string {
	content := strings.Join(strings.Fields(m.Content), " ")
	runes := []rune(content)
	if maxLen <= 0 || len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen]) + "..."
}

// IsEmpty returns true if the message has no visible content.
func (m *Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == "" && m.Video == nil
}

// TimeLabel formats the timestamp the way bubbles show it.
func (m *Message) TimeLabel() string {
	return m.Timestamp.Local().Format("15:04:05")
}

func generateID() string {
	return "msg_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
