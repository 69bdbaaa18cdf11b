// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/sjson"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

// =============================================================================
// ENVELOPE
// =============================================================================

// envelope is the part of every response the client inspects first.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// =============================================================================
// CHAT
// =============================================================================

// SendRequest is the body of POST /api/chat/send.
type SendRequest struct {
	Message   string            `json:"message"`
	SessionID string            `json:"session_id"`
	Type      model.MessageType `json:"type"`
}

// SendResponse is the reply to POST /api/chat/send.
type SendResponse struct {
	Success     bool            `json:"success"`
	AIResponse  string          `json:"ai_response"`
	Timestamp   model.Timestamp `json:"timestamp"`
	IdeaCreated json.RawMessage `json:"idea_created,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// HasIdea reports whether the backend flagged a new idea. The field is
// either a boolean or the idea object itself.
func (r *SendResponse) HasIdea() bool {
	v := bytes.TrimSpace(r.IdeaCreated)
	if len(v) == 0 {
		return false
	}
	switch string(v) {
	case "null", "false", "0", `""`, "{}":
		return false
	}
	return true
}

// CreateVideoRequest is the body of POST /api/chat/create-video.
type CreateVideoRequest struct {
	Topic       string `json:"topic"`
	Duration    int    `json:"duration"`
	Composition string `json:"composition"`
	Background  string `json:"background"`
	Voice       string `json:"voice"`
	SessionID   string `json:"session_id"`
}

// CreateVideoResponse is the reply to POST /api/chat/create-video.
type CreateVideoResponse struct {
	Success   bool     `json:"success"`
	JobID     model.ID `json:"job_id"`
	SessionID string   `json:"session_id,omitempty"`
	Message   string   `json:"message,omitempty"`
}

type historyResponse struct {
	Success bool                 `json:"success"`
	History []model.HistoryEntry `json:"history"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Success bool                 `json:"success"`
	Results []model.HistoryEntry `json:"results"`
}

// =============================================================================
// SESSIONS
// =============================================================================

type sessionsResponse struct {
	Success  bool                   `json:"success"`
	Sessions []model.SessionSummary `json:"sessions"`
}

type sessionResponse struct {
	Success bool                  `json:"success"`
	Session *model.SessionSummary `json:"session"`
}

// SessionPatch is a partial update for PUT /api/chat/sessions/{id}.
// Nil fields are left out of the request body.
type SessionPatch struct {
	Title       *string
	Description *string
	Tags        []string
	SetTags     bool
	IsFavorite  *bool
	IsArchived  *bool
}

// IsEmpty reports whether the patch would send nothing.
func (p SessionPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && !p.SetTags && p.IsFavorite == nil && p.IsArchived == nil
}

// JSON builds the request body with only the populated fields.
func (p SessionPatch) JSON() ([]byte, error) {
	body := []byte(`{}`)
	var err error
	set := func(path string, v interface{}) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, v)
		}
	}
	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.SetTags {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		set("tags", tags)
	}
	if p.IsFavorite != nil {
		set("is_favorite", *p.IsFavorite)
	}
	if p.IsArchived != nil {
		set("is_archived", *p.IsArchived)
	}
	return body, err
}

// =============================================================================
// VIDEOS
// =============================================================================

// VideoQuery filters GET /api/videos.
type VideoQuery struct {
	Page    int
	PerPage int
	Status  string
}

// VideoList is a page of videos.
type VideoList struct {
	Videos     []model.Video    `json:"videos"`
	Pagination model.Pagination `json:"pagination"`
}

type videoListResponse struct {
	Success bool `json:"success"`
	VideoList
}

type videoResponse struct {
	Success bool        `json:"success"`
	Video   model.Video `json:"video"`
}

// =============================================================================
// IDEAS / HEALTH
// =============================================================================

type ideasResponse struct {
	Success bool         `json:"success"`
	Ideas   []model.Idea `json:"ideas"`
}

// HealthResponse is the reply to GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
