// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// VIDEO
// =============================================================================

// Video status values reported by the backend.
const (
	VideoRendering = "rendering"
	VideoCompleted = "completed"
	VideoFailed    = "failed"
)

// Video is a rendered (or rendering) clip in the library.
type Video struct {
	ID            ID        `json:"id"`
	Title         string    `json:"title"`
	Topic         string    `json:"topic"`
	Script        string    `json:"script,omitempty"`
	FilePath      string    `json:"file_path,omitempty"`
	FileName      string    `json:"file_name,omitempty"`
	FileSize      int64     `json:"file_size"`
	Duration      int       `json:"duration"`
	Composition   string    `json:"composition,omitempty"`
	Background    string    `json:"background,omitempty"`
	Voice         string    `json:"voice,omitempty"`
	Status        string    `json:"status"`
	JobID         string    `json:"job_id,omitempty"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
	SessionID     string    `json:"session_id,omitempty"`
	CreatedAt     Timestamp `json:"created_at"`
	UpdatedAt     Timestamp `json:"updated_at"`
}

// Ref returns the embeddable reference for the video.
func (v Video) Ref() VideoRef {
	title := v.Title
	if title == "" {
		title = v.Topic
	}
	return VideoRef{ID: v.ID, Title: title}
}

// IsPlayable reports whether the file can be streamed.
func (v Video) IsPlayable() bool {
	return v.Status == VideoCompleted
}

// Pagination is the paging block returned by list endpoints.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

// =============================================================================
// IDEA
// =============================================================================

// Idea is a content idea captured by the backend from a chat.
type Idea struct {
	ID                ID        `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	ContentType       string    `json:"content_type,omitempty"`
	Category          string    `json:"category,omitempty"`
	Status            string    `json:"status"`
	Priority          string    `json:"priority,omitempty"`
	TargetAudience    string    `json:"target_audience,omitempty"`
	EstimatedDuration int       `json:"estimated_duration,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         Timestamp `json:"created_at"`
}

// Kind returns the content type, defaulting to "general".
func (i Idea) Kind() string {
	if i.ContentType == "" {
		return "general"
	}
	return i.ContentType
}

// =============================================================================
// CHAT HISTORY
// =============================================================================

// HistoryEntry is one stored exchange of a session.
type HistoryEntry struct {
	ID          ID        `json:"id,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	MessageType string    `json:"message_type,omitempty"`
	Timestamp   Timestamp `json:"timestamp"`
}

// SessionSummary describes a stored chat session in the history browser.
type SessionSummary struct {
	SessionID     string    `json:"session_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	IsFavorite    bool      `json:"is_favorite"`
	IsArchived    bool      `json:"is_archived"`
	MessageCount  int       `json:"message_count"`
	LastMessageAt Timestamp `json:"last_message_at"`
	CreatedAt     Timestamp `json:"created_at"`
}

// DisplayTitle returns the title or the placeholder for untitled sessions.
func (s SessionSummary) DisplayTitle() string {
	if s.Title == "" {
		return "Cuộc hội thoại mới"
	}
	return s.Title
}

// Preview returns the description or the placeholder preview.
func (s SessionSummary) Preview() string {
	if s.Description == "" {
		return "Cuộc hội thoại với AI..."
	}
	return s.Description
}
