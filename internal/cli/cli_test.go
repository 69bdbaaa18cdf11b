// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/config"
)

// =============================================================================
// HARNESS
// =============================================================================

type request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// harness runs commands against a fake backend with an isolated home.
type harness struct {
	t    *testing.T
	home string
	url  string

	mu       sync.Mutex
	requests []request
}

func newHarness(t *testing.T, routes map[string]http.HandlerFunc) *harness {
	t.Helper()
	h := &harness{t: t, home: t.TempDir()}
	t.Setenv("EMLINH_HOME", h.home)
	t.Setenv("NO_COLOR", "1")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		h.mu.Lock()
		h.requests = append(h.requests, request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		h.mu.Unlock()

		if fn, ok := routes[r.Method+" "+r.URL.Path]; ok {
			fn(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	h.url = srv.URL
	return h
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd(&out, &errOut)
	root.SetArgs(append([]string{"--url", h.url}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) find(method, path string) (request, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.requests {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return request{}, false
}

func reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

// data returns the data field of a JSON envelope.
func data(t *testing.T, out string) gjson.Result {
	t.Helper()
	require.True(t, gjson.Valid(out), "not JSON: %s", out)
	env := gjson.Parse(out)
	require.True(t, env.Get("success").Bool(), out)
	return env.Get("data")
}

// =============================================================================
// VERSION / HEALTH
// =============================================================================

func TestVersion(t *testing.T) {
	h := newHarness(t, nil)

	out, _, err := h.run("", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "emlinh "+Version)

	out, _, err = h.run("", "version", "--json")
	require.NoError(t, err)
	d := data(t, out)
	assert.Equal(t, Version, d.Get("version").String())
	assert.Equal(t, "version", gjson.Get(out, "command").String())
}

func TestHealthJSON(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /health": reply(`{"status":"healthy","database":"connected"}`),
	})

	out, _, err := h.run("", "health", "--json")
	require.NoError(t, err)
	d := data(t, out)
	assert.Equal(t, "healthy", d.Get("status").String())
	assert.Equal(t, "connected", d.Get("database").String())
	assert.Equal(t, h.url, d.Get("base_url").String())
}

func TestHealthUnreachable(t *testing.T) {
	h := newHarness(t, nil)
	h.url = "http://127.0.0.1:1"

	_, _, err := h.run("", "health")
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, ExitCode(err))
}

// =============================================================================
// ASK
// =============================================================================

func TestAskJSON(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/chat/send": reply(`{"success":true,"ai_response":"**Xin chào** bạn","timestamp":"2024-06-01T10:00:00"}`),
	})

	out, _, err := h.run("", "ask", "--json", "-t", "brainstorm", "chào", "em")
	require.NoError(t, err)

	d := data(t, out)
	assert.Contains(t, d.Get("reply").String(), "Xin chào")
	assert.Equal(t, "brainstorm", d.Get("type").String())
	assert.True(t, strings.HasPrefix(d.Get("session_id").String(), "session_"))

	req, ok := h.find(http.MethodPost, "/api/chat/send")
	require.True(t, ok)
	assert.Equal(t, "chào em", gjson.Get(req.Body, "message").String())
	assert.Equal(t, "brainstorm", gjson.Get(req.Body, "type").String())
	assert.Equal(t, d.Get("session_id").String(), gjson.Get(req.Body, "session_id").String())
}

func TestAskReadsStdin(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/chat/send": reply(`{"success":true,"ai_response":"ok"}`),
	})

	_, _, err := h.run("tóm tắt giúp mình\n", "ask", "--raw", "-")
	require.NoError(t, err)
	req, ok := h.find(http.MethodPost, "/api/chat/send")
	require.True(t, ok)
	assert.Equal(t, "tóm tắt giúp mình", gjson.Get(req.Body, "message").String())
}

func TestAskContinuesSession(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/chat/send": reply(`{"success":true,"ai_response":"ok"}`),
	})

	_, _, err := h.run("", "ask", "--raw", "--session", "session_1_abc", "tiếp tục")
	require.NoError(t, err)
	req, _ := h.find(http.MethodPost, "/api/chat/send")
	assert.Equal(t, "session_1_abc", gjson.Get(req.Body, "session_id").String())
}

func TestAskBackendError(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/chat/send": reply(`{"success":false,"message":"Hệ thống đang quá tải"}`),
	})

	_, _, err := h.run("", "ask", "xin chào")
	require.Error(t, err)
	assert.True(t, api.IsBackend(err))
	assert.Equal(t, ExitGeneralError, ExitCode(err))
}

func TestAskUnknownType(t *testing.T) {
	h := newHarness(t, nil)

	_, _, err := h.run("", "ask", "--type", "nope", "xin chào")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
	_, sent := h.find(http.MethodPost, "/api/chat/send")
	assert.False(t, sent)
}

// =============================================================================
// VIDEOS
// =============================================================================

const videoPage = `{"success":true,"videos":[
	{"id":1,"title":"Cà phê","topic":"cafe","status":"completed","file_size":1048576,"duration":15,"created_at":"2024-06-01T10:00:00"},
	{"id":2,"title":"Áo dài","topic":"fashion","status":"completed","file_size":0,"duration":30,"created_at":"2024-06-03T10:00:00"},
	{"id":3,"title":"Bánh mì","topic":"food","status":"completed","file_size":2048,"duration":15,"created_at":"2024-06-02T10:00:00"}
],"pagination":{"page":1,"per_page":12,"total":3,"pages":1}}`

func TestVideosListSortedByTitle(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/videos": reply(videoPage),
	})

	out, _, err := h.run("", "videos", "list", "--json", "--status", "completed", "--sort", "title")
	require.NoError(t, err)

	d := data(t, out)
	var titles []string
	for _, v := range d.Get("videos").Array() {
		titles = append(titles, v.Get("title").String())
	}
	assert.Equal(t, []string{"Áo dài", "Bánh mì", "Cà phê"}, titles)
	assert.EqualValues(t, 3, d.Get("pagination.total").Int())

	req, ok := h.find(http.MethodGet, "/api/videos")
	require.True(t, ok)
	assert.Contains(t, req.Query, "status=completed")
	assert.Contains(t, req.Query, "page=1")
}

func TestVideosListSearch(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/videos": reply(videoPage),
	})

	out, _, err := h.run("", "videos", "list", "--search", "banh")
	require.NoError(t, err)
	assert.Contains(t, out, "Bánh mì")
	assert.NotContains(t, out, "Áo dài")
}

func TestVideosListRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t, nil)
	_, _, err := h.run("", "videos", "list", "--status", "queued")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestVideosShowNotFound(t *testing.T) {
	h := newHarness(t, nil)

	_, _, err := h.run("", "videos", "show", "99")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestVideosDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"DELETE /api/videos/7": reply(`{"success":true}`),
	})

	_, errOut, err := h.run("n\n", "videos", "delete", "7")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Đã hủy")
	_, deleted := h.find(http.MethodDelete, "/api/videos/7")
	assert.False(t, deleted)

	out, _, err := h.run("", "videos", "delete", "7", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Video đã được xóa thành công")
	_, deleted = h.find(http.MethodDelete, "/api/videos/7")
	assert.True(t, deleted)
}

func TestVideosDownload(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/videos/5/file": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "video/mp4")
			_, _ = io.WriteString(w, "fake mp4 bytes")
		},
	})
	dir := t.TempDir()

	out, _, err := h.run("", "videos", "download", "5", "--dir", dir, "--json")
	require.NoError(t, err)
	path := data(t, out).Get("path").String()
	assert.Equal(t, filepath.Join(dir, "emlinh_video_5.mp4"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake mp4 bytes", string(content))
}

func TestVideoCreateWithoutWait(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/chat/create-video": reply(`{"success":true,"job_id":"job_42"}`),
	})

	out, _, err := h.run("", "video", "create", "--json", "--duration", "30", "Mẹo", "pha", "cà", "phê")
	require.NoError(t, err)

	d := data(t, out)
	assert.Equal(t, "job_42", d.Get("job_id").String())
	assert.Equal(t, "started", d.Get("status").String())

	req, ok := h.find(http.MethodPost, "/api/chat/create-video")
	require.True(t, ok)
	assert.Equal(t, "Mẹo pha cà phê", gjson.Get(req.Body, "topic").String())
	assert.EqualValues(t, 30, gjson.Get(req.Body, "duration").Int())
	assert.Equal(t, d.Get("session_id").String(), gjson.Get(req.Body, "session_id").String())
}

func TestVideoWaitRequiresSession(t *testing.T) {
	h := newHarness(t, nil)
	_, _, err := h.run("", "video", "wait", "job_1")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

// =============================================================================
// IDEAS / HISTORY / EXPORT
// =============================================================================

func TestIdeas(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/ideas": reply(`{"success":true,"ideas":[{"id":1,"title":"Review quán mới","content_type":"video","status":"draft"}]}`),
	})

	out, _, err := h.run("", "ideas", "-n", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Review quán mới")
	req, _ := h.find(http.MethodGet, "/api/ideas")
	assert.Equal(t, "per_page=3", req.Query)
}

const sessionList = `{"success":true,"sessions":[
	{"session_id":"s1","title":"Kế hoạch","description":"tháng 7","tags":["plan"],"is_favorite":false,"is_archived":false,"message_count":4},
	{"session_id":"s2","title":"Cũ","is_archived":true,"message_count":1}
]}`

func TestHistoryListFilters(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/chat/sessions": reply(sessionList),
	})

	out, _, err := h.run("", "history", "list", "--json")
	require.NoError(t, err)
	ids := data(t, out).Get("#.session_id").Array()
	require.Len(t, ids, 1)
	assert.Equal(t, "s1", ids[0].String())

	out, _, err = h.run("", "history", "list", "--filter", "archived")
	require.NoError(t, err)
	assert.Contains(t, out, "s2")
	assert.NotContains(t, out, "Kế hoạch")
}

func TestHistoryFavoriteToggles(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/chat/sessions": reply(sessionList),
		"PUT /api/chat/sessions/s1": reply(`{"success":true}`),
	})

	_, _, err := h.run("", "history", "favorite", "s1")
	require.NoError(t, err)
	req, ok := h.find(http.MethodPut, "/api/chat/sessions/s1")
	require.True(t, ok)
	assert.JSONEq(t, `{"is_favorite":true}`, req.Body)
}

func TestHistoryFavoriteUnknownSession(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/chat/sessions": reply(sessionList),
	})

	_, _, err := h.run("", "history", "favorite", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestHistoryRenameKeepsUnsetFields(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/chat/sessions/s1": reply(`{"success":true,"session":{"session_id":"s1","title":"Kế hoạch","description":"tháng 7","tags":["plan"]}}`),
		"PUT /api/chat/sessions/s1": reply(`{"success":true}`),
	})

	_, _, err := h.run("", "history", "rename", "s1", "--tags", "tiktok, , cà phê")
	require.NoError(t, err)
	req, ok := h.find(http.MethodPut, "/api/chat/sessions/s1")
	require.True(t, ok)
	assert.JSONEq(t, `{"title":"Kế hoạch","description":"tháng 7","tags":["tiktok","cà phê"]}`, req.Body)
}

func TestHistoryRenameRequiresTitle(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/chat/sessions/s1": reply(`{"success":true,"session":{"session_id":"s1","title":""}}`),
	})

	_, _, err := h.run("", "history", "rename", "s1", "--description", "x")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
	_, sent := h.find(http.MethodPut, "/api/chat/sessions/s1")
	assert.False(t, sent)
}

func TestHistoryDeleteConfirmed(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/chat/sessions":       reply(sessionList),
		"DELETE /api/chat/sessions/s2": reply(`{"success":true}`),
	})

	out, _, err := h.run("y\n", "history", "delete", "s2")
	require.NoError(t, err)
	assert.Contains(t, out, "Đã xóa cuộc hội thoại")
	_, deleted := h.find(http.MethodDelete, "/api/chat/sessions/s2")
	assert.True(t, deleted)
}

func TestExportMarkdown(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/chat/history/s1": reply(`{"success":true,"history":[
			{"user_message":"Lên ý tưởng video","ai_response":"Đây là **3 ý tưởng**","timestamp":"2024-06-01T10:00:00"}
		]}`),
	})
	dir := t.TempDir()

	out, _, err := h.run("", "export", "s1", "--format", "md", "--dir", dir, "--json")
	require.NoError(t, err)
	d := data(t, out)
	assert.EqualValues(t, 2, d.Get("messages").Int())

	path := filepath.Join(dir, "chat_export_s1.md")
	assert.Equal(t, path, d.Get("path").String())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Lên ý tưởng video")
	assert.Contains(t, string(content), "3 ý tưởng")
}

func TestExportEmptySession(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/chat/history/s1": reply(`{"success":true,"history":[]}`),
	})

	_, _, err := h.run("", "export", "s1", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestExportUnsupportedFormat(t *testing.T) {
	h := newHarness(t, nil)
	_, _, err := h.run("", "export", "s1", "--format", "pdf")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigSetGet(t *testing.T) {
	h := newHarness(t, nil)

	_, _, err := h.run("", "config", "set", "video.voice", "alloy")
	require.NoError(t, err)

	path := filepath.Join(h.home, "config.toml")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, _, err := h.run("", "config", "get", "video.voice")
	require.NoError(t, err)
	assert.Equal(t, "alloy", strings.TrimSpace(out))
}

func TestConfigSetUnknownKey(t *testing.T) {
	h := newHarness(t, nil)
	_, _, err := h.run("", "config", "set", "video.colour", "red")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestConfigInit(t *testing.T) {
	h := newHarness(t, nil)

	out, _, err := h.run("", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(h.home, "config.toml"))

	_, _, err = h.run("", "config", "init")
	require.Error(t, err, "second init without --force must fail")

	_, _, err = h.run("", "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigShowJSON(t *testing.T) {
	h := newHarness(t, nil)
	out, _, err := h.run("", "config", "show", "--json")
	require.NoError(t, err)
	assert.Equal(t, h.url, data(t, out).Get("server.base_url").String())
}

func TestInvalidConfigFile(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(h.home, "config.toml"), []byte("[server\n"), 0o600))

	_, _, err := h.run("", "version")
	require.NoError(t, err, "version does not read config")

	_, _, err = h.run("", "ideas")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

// =============================================================================
// ERRORS AND OUTPUT
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", &ValidationError{Field: "x"}, ExitUsageError},
		{"config", &ConfigError{Err: errors.New("bad")}, ExitConfigError},
		{"config validate", fmt.Errorf("wrapped: %w", config.ValidateErrors{{Field: "a", Message: "b"}}), ExitConfigError},
		{"not found", api.ErrNotFound, ExitNotFound},
		{"timeout", api.ErrTimeout, ExitTimeout},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), ExitTimeout},
		{"connection", &api.ClientError{Type: api.ErrTypeConnection, Message: "down"}, ExitNetworkError},
		{"backend", &api.ClientError{Type: api.ErrTypeBackend, Message: "no"}, ExitGeneralError},
		{"plain", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestDisplayErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, api.ErrNotFound, true)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "not_found_error", out["error_type"])
}

func TestDisplayErrorValidationHint(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, &ValidationError{Field: "format", Value: "pdf", Reason: "unsupported", Example: "--format md"}, false)
	assert.Contains(t, buf.String(), "pdf")
	assert.Contains(t, buf.String(), "--format md")
}

func TestHighlight(t *testing.T) {
	out, ok := highlight(`{"a": 1}`, "json")
	require.True(t, ok)
	assert.Contains(t, out, "\x1b[")

	_, ok = highlight("x", "no-such-language")
	assert.False(t, ok)
}

func TestGlamourStyle(t *testing.T) {
	assert.Equal(t, "dracula", GlamourStyle("dracula"))
	if !ColorsEnabled() {
		assert.Equal(t, "notty", GlamourStyle("auto"))
		assert.Equal(t, "notty", GlamourStyle(""))
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"có\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var w bytes.Buffer
		got, err := confirm(strings.NewReader(tt.in), &w, "Xóa?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Contains(t, w.String(), "[y/N]")
	}
}

func TestCompleteCommand(t *testing.T) {
	assert.ElementsMatch(t, []string{"/type", "/help"}, filterPrefix(completeCommand("/"), "/t", "/h"))
	assert.Empty(t, completeCommand("xin chào"))
}

func filterPrefix(all []string, prefixes ...string) []string {
	var out []string
	for _, s := range all {
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				out = append(out, s)
			}
		}
	}
	return out
}
