// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/jeranaias/emlinh-tui/internal/production"
)

// statusSequence answers each poll with the next body, repeating the last.
func statusSequence(bodies ...string) http.HandlerFunc {
	var n atomic.Int32
	return func(w http.ResponseWriter, r *http.Request) {
		i := int(n.Add(1)) - 1
		reply(bodies[min(i, len(bodies)-1)])(w, r)
	}
}

func TestRenderStartWaitsForOutput(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/video/render": reply(`{"success":true,"job_id":"render_7","message":"Bắt đầu render video thành công"}`),
		"GET /api/video/status/render_7": statusSequence(
			`{"success":true,"status":{"status":"starting","progress":0,"composition_id":"Scene-Landscape"}}`,
			`{"success":true,"status":{"status":"rendering","progress":45,"composition_id":"Scene-Landscape"}}`,
			`{"success":true,"status":{"status":"completed","progress":100,"composition_id":"Scene-Landscape","output_path":"/out/video_1.mp4"}}`,
		),
	})

	out, _, err := h.run("", "render", "start", "Scene-Landscape", "--audio", "intro.wav", "--wait", "--interval", "1ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Đang render · 45%")
	assert.Contains(t, out, production.ToastRenderDone)
	assert.Contains(t, out, "/out/video_1.mp4")

	req, ok := h.find(http.MethodPost, "/api/video/render")
	require.True(t, ok)
	assert.Equal(t, "Scene-Landscape", gjson.Get(req.Body, "composition_id").String())
	assert.Equal(t, "intro.wav", gjson.Get(req.Body, "props.audioFileName").String())
	assert.Greater(t, gjson.Get(req.Body, "props.durationInSeconds").Float(), 0.0)
}

func TestRenderStatusFailedJob(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/video/status/render_9": reply(`{"success":true,"status":{"status":"failed","progress":30,"composition_id":"Scene-A","error":"npx not found"}}`),
	})

	out, _, err := h.run("", "--json", "render", "status", "render_9", "--wait", "--interval", "1ms")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrJobFailed))
	assert.Contains(t, err.Error(), "npx not found")
	assert.Equal(t, "failed", data(t, out).Get("status").String())
}

func TestRenderStatusUnknownJob(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/video/status/nope": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			reply(`{"success":false,"message":"Không tìm thấy render job"}`)(w, r)
		},
	})

	_, _, err := h.run("", "render", "status", "nope", "--wait", "--interval", "1ms")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestTTSGenerateRejectsLongText(t *testing.T) {
	h := newHarness(t, nil)
	_, _, err := h.run(strings.Repeat("a", production.MaxTTSChars+1), "tts", "generate", "-")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
	_, sent := h.find(http.MethodPost, "/api/tts/generate")
	assert.False(t, sent)
}

func TestTTSGenerateWait(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/tts/generate": reply(`{"success":true,"job_id":"tts_1","message":"Bắt đầu tạo speech thành công"}`),
		"GET /api/tts/status/tts_1": statusSequence(
			`{"success":true,"status":{"status":"generating_speech","progress":20,"filename":"intro"}}`,
			`{"success":true,"status":{"status":"completed","progress":100,"filename":"intro","wav_path":"/audio/intro.wav"}}`,
		),
	})

	out, _, err := h.run("", "tts", "generate", "--file", "intro", "--wait", "--interval", "1ms", "Xin", "chào")
	require.NoError(t, err)
	assert.Contains(t, out, "Đang tạo speech · 20%")
	assert.Contains(t, out, "/audio/intro.wav")

	req, ok := h.find(http.MethodPost, "/api/tts/generate")
	require.True(t, ok)
	assert.Equal(t, "Xin chào", gjson.Get(req.Body, "text").String())
	assert.Equal(t, "intro", gjson.Get(req.Body, "filename").String())
}

func TestTTSJobsShowsRecent(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/tts/jobs": reply(`{"success":true,"jobs":{
			"tts_1":{"status":"completed","start_time":"2024-05-01T10:00:00"},
			"tts_2":{"status":"completed","start_time":"2024-05-02T10:00:00"},
			"tts_3":{"status":"failed","start_time":"2024-05-03T10:00:00"},
			"tts_4":{"status":"starting","start_time":"2024-05-04T10:00:00"}
		}}`),
	})

	out, _, err := h.run("", "--json", "tts", "jobs")
	require.NoError(t, err)
	jobs := data(t, out).Array()
	require.Len(t, jobs, 3)
	assert.Equal(t, "tts_4", jobs[0].Get("id").String())
	assert.Equal(t, "tts_2", jobs[2].Get("id").String())
}
