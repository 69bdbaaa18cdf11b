// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
}

// =============================================================================
// CHAT
// =============================================================================

func TestSendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat/send", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "xin chào", body["message"])
		assert.Equal(t, "session_1", body["session_id"])
		assert.Equal(t, "brainstorm", body["type"])
		_, _ = io.WriteString(w, `{"success":true,"ai_response":"chào bạn","timestamp":"2024-05-01T10:00:00.123456","idea_created":true}`)
	})

	resp, err := client.SendMessage(context.Background(), SendRequest{
		Message: "xin chào", SessionID: "session_1", Type: model.TypeBrainstorm,
	})
	require.NoError(t, err)
	assert.Equal(t, "chào bạn", resp.AIResponse)
	assert.True(t, resp.HasIdea())
	assert.Equal(t, 10, resp.Timestamp.Hour())
}

func TestSendMessageBackendFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"success":false,"message":"Lỗi server: db down"}`)
	})

	_, err := client.SendMessage(context.Background(), SendRequest{Message: "x"})
	require.Error(t, err)
	assert.True(t, IsBackend(err))
	assert.False(t, IsTransport(err))
	msg, ok := BackendMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Lỗi server: db down", msg)
}

func TestSendMessageConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: base, Timeout: time.Second})
	_, err := client.SendMessage(context.Background(), SendRequest{Message: "x"})
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsBackend(err))
}

func TestHasIdea(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"null", false},
		{"false", false},
		{"{}", false},
		{"true", true},
		{`{"id":3,"title":"x"}`, true},
	}
	for _, tt := range tests {
		r := SendResponse{IdeaCreated: json.RawMessage(tt.raw)}
		assert.Equal(t, tt.want, r.HasIdea(), "raw=%q", tt.raw)
	}
}

// =============================================================================
// VIDEO JOBS
// =============================================================================

func TestCreateVideo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/create-video", r.URL.Path)
		var req CreateVideoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mèo", req.Topic)
		assert.Equal(t, 15, req.Duration)
		_, _ = io.WriteString(w, `{"success":true,"job_id":"video_1700000000_deadbeef","message":"ok"}`)
	})

	resp, err := client.CreateVideo(context.Background(), CreateVideoRequest{Topic: "mèo", Duration: 15})
	require.NoError(t, err)
	assert.Equal(t, model.ID("video_1700000000_deadbeef"), resp.JobID)
}

func TestCreateVideoRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"message":"Vui lòng cung cấp chủ đề video"}`)
	})

	_, err := client.CreateVideo(context.Background(), CreateVideoRequest{})
	msg, ok := BackendMessage(err)
	require.True(t, ok)
	assert.Equal(t, "Vui lòng cung cấp chủ đề video", msg)
}

func TestCreateVideoMissingJobID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	_, err := client.CreateVideo(context.Background(), CreateVideoRequest{Topic: "x"})
	require.Error(t, err)
	assert.False(t, IsBackend(err))
}

// =============================================================================
// SESSIONS
// =============================================================================

func TestUpdateSessionSendsOnlyChangedFields(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/chat/sessions/session_9", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	fav := true
	require.NoError(t, client.UpdateSession(context.Background(), "session_9", SessionPatch{IsFavorite: &fav}))
	assert.Equal(t, map[string]interface{}{"is_favorite": true}, got)
}

func TestSessionPatchJSON(t *testing.T) {
	title := "Kế hoạch"
	desc := ""
	body, err := SessionPatch{Title: &title, Description: &desc, SetTags: true}.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Kế hoạch","description":"","tags":[]}`, string(body))

	assert.True(t, SessionPatch{}.IsEmpty())
}

func TestUpdateSessionEmptyPatchIsNoop(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	require.NoError(t, client.UpdateSession(context.Background(), "s", SessionPatch{}))
	assert.False(t, called)
}

func TestSessionsAndDelete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"success":true,"sessions":[{"session_id":"a","title":"","is_favorite":true,"message_count":4}]}`)
		case http.MethodDelete:
			assert.Equal(t, "/api/chat/sessions/a", r.URL.Path)
			_, _ = io.WriteString(w, `{"success":true}`)
		}
	})

	sessions, err := client.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Cuộc hội thoại mới", sessions[0].DisplayTitle())
	assert.True(t, sessions[0].IsFavorite)

	require.NoError(t, client.DeleteSession(context.Background(), "a"))
}

func TestHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/history/session_5", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"history":[{"id":1,"user_message":"hi","ai_response":"hello","timestamp":"2024-01-02T03:04:05"}]}`)
	})

	entries, err := client.History(context.Background(), "session_5")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ID("1"), entries[0].ID)
	assert.Equal(t, "hello", entries[0].AIResponse)
}

// =============================================================================
// VIDEOS
// =============================================================================

func TestVideosQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("per_page"))
		assert.Equal(t, "completed", r.URL.Query().Get("status"))
		_, _ = io.WriteString(w, `{"success":true,"videos":[{"id":7,"title":"A","status":"completed","file_size":2048}],"pagination":{"page":2,"per_page":12,"total":13,"pages":2}}`)
	})

	list, err := client.Videos(context.Background(), VideoQuery{Page: 2, PerPage: 12, Status: "completed"})
	require.NoError(t, err)
	require.Len(t, list.Videos, 1)
	assert.Equal(t, model.ID("7"), list.Videos[0].ID)
	assert.Equal(t, 2, list.Pagination.Pages)
}

func TestVideoNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.Video(context.Background(), "42")
	assert.True(t, IsNotFound(err))
}

func TestOpenVideoFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/videos/3/file", r.URL.Path)
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = io.WriteString(w, "MP4DATA")
	})

	rc, size, err := client.OpenVideoFile(context.Background(), "3")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "MP4DATA", string(data))
	assert.Equal(t, int64(7), size)
}

func TestFileURL(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://host:5000/"})
	assert.Equal(t, "http://host:5000/api/videos/12/file", client.FileURL("12"))
}

// =============================================================================
// IDEAS / HEALTH
// =============================================================================

func TestIdeas(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		_, _ = io.WriteString(w, `{"success":true,"ideas":[{"id":1,"title":"Ý tưởng","status":"draft"}]}`)
	})

	ideas, err := client.Ideas(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "general", ideas[0].Kind())
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"healthy","database":"connected"}`)
	})

	h, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
}

func TestInvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>`)
	})

	_, err := client.Health(context.Background())
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrTypeInvalidResponse, ce.Type)
}

func TestSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat/sessions/a":
			_, _ = io.WriteString(w, `{"success":true,"session":{"session_id":"a","title":"Kế hoạch","tags":["x","y"]}}`)
		default:
			_, _ = io.WriteString(w, `{"success":true}`)
		}
	})

	s, err := client.Session(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Kế hoạch", s.Title)
	assert.Equal(t, []string{"x", "y"}, s.Tags)

	_, err = client.Session(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
}

// =============================================================================
// PRODUCTION
// =============================================================================

func TestRenderJobsNewestFirst(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/video/jobs", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"jobs":{
			"old":{"status":"completed","progress":100,"composition_id":"Scene-A","start_time":"2024-05-01T10:00:00","end_time":"2024-05-01T10:02:00"},
			"new":{"status":"rendering","progress":40,"composition_id":"Scene-B","start_time":"2024-05-02T09:00:00","end_time":null}
		}}`)
	})

	jobs, err := client.RenderJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "new", jobs[0].ID)
	assert.Equal(t, 40, jobs[0].Progress)
	assert.True(t, jobs[0].EndTime.IsZero())
	assert.Equal(t, "old", jobs[1].ID)
}

func TestStartRender(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/video/render", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Scene-Landscape", body["composition_id"])
		props := body["props"].(map[string]interface{})
		assert.Equal(t, 15.0, props["durationInSeconds"])
		assert.Equal(t, "None", props["audioFileName"])
		_, hasOutput := body["output_name"]
		assert.False(t, hasOutput)
		_, _ = io.WriteString(w, `{"success":true,"job_id":"render_1","message":"Bắt đầu render video thành công"}`)
	})

	started, err := client.StartRender(context.Background(), RenderRequest{
		CompositionID: "Scene-Landscape",
		Props:         RenderProps{DurationInSeconds: 15, AudioFileName: "None", BackgroundScene: "office"},
	})
	require.NoError(t, err)
	assert.Equal(t, "render_1", started.JobID)
}

func TestTTSStatusUnknownJob(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"Không tìm thấy TTS job"}`)
	})

	_, err := client.TTSStatus(context.Background(), "tts_1")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Không tìm thấy TTS job")
}

func TestTTSStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tts/status/tts_1", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"status":{"status":"converting_to_ogg","progress":60,"filename":"intro","start_time":"2024-05-01T10:00:00"}}`)
	})

	job, err := client.TTSStatus(context.Background(), "tts_1")
	require.NoError(t, err)
	assert.Equal(t, "tts_1", job.ID)
	assert.Equal(t, "converting_to_ogg", job.Status)
	assert.Equal(t, 60, job.Progress)
}
