// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

func sampleConversation() *model.Conversation {
	conv := model.NewConversation("session_1_abc")
	ts := time.Date(2024, 5, 1, 9, 30, 15, 0, time.Local)
	conv.AddMessage(model.NewMessage(model.RoleUser, "Tạo video <mèo>", ts))
	conv.AddMessage(model.NewMessage(model.RoleAI, "Đây là **kết quả**\nXem tại đây: /videos/42", ts))
	return conv
}

func TestFromConversation(t *testing.T) {
	doc := FromConversation(sampleConversation(), "http://localhost:5000/")
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, "session_1_abc", doc.SessionID)
	assert.Equal(t, "http://localhost:5000", doc.BaseURL)

	user := doc.Entries[0]
	assert.Equal(t, "user", user.Type)
	assert.Equal(t, "Tạo video <mèo>", user.Content)
	assert.Contains(t, user.HTML, "&lt;mèo&gt;")

	ai := doc.Entries[1]
	assert.Equal(t, "ai", ai.Type)
	require.NotNil(t, ai.Video)
	assert.Equal(t, model.ID("42"), ai.Video.ID)
	assert.Contains(t, ai.Content, "kết quả")
	assert.NotContains(t, ai.Content, "<strong>")
	assert.Contains(t, ai.Markdown, "**kết quả**")
}

func TestJSONExporter(t *testing.T) {
	doc := FromConversation(sampleConversation(), "")
	data, err := NewJSONExporter(nil).Export(doc)
	require.NoError(t, err)

	var out []map[string]string
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 2)
	assert.Equal(t, "user", out[0]["type"])
	assert.Equal(t, "09:30:15", out[0]["timestamp"])
	assert.Equal(t, "ai", out[1]["type"])
	assert.Len(t, out[0], 3)
}

func TestJSONExporterWithoutTimestamps(t *testing.T) {
	doc := FromConversation(sampleConversation(), "")
	opts := DefaultOptions()
	opts.IncludeTimestamps = false
	data, err := NewJSONExporter(opts).Export(doc)
	require.NoError(t, err)

	var out []map[string]string
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 2)
	assert.Len(t, out[0], 2)
	assert.NotContains(t, out[0], "timestamp")
	assert.Equal(t, "user", out[0]["type"])
}

func TestMarkdownExporter(t *testing.T) {
	doc := FromConversation(sampleConversation(), "http://localhost:5000")
	data, err := NewMarkdownExporter(nil).Export(doc)
	require.NoError(t, err)
	s := string(data)

	assert.Contains(t, s, "session: session_1_abc")
	assert.Contains(t, s, "### 👤 Bạn <sub>09:30:15</sub>")
	assert.Contains(t, s, "http://localhost:5000/api/videos/42/file")

	_, err = NewMarkdownExporter(nil).Export(&Document{})
	assert.Error(t, err)
}

func TestHTMLExporter(t *testing.T) {
	doc := FromConversation(sampleConversation(), "http://localhost:5000")
	data, err := NewHTMLExporter(&Options{Theme: "dark"}).Export(doc)
	require.NoError(t, err)
	s := string(data)

	assert.True(t, strings.HasPrefix(s, "<!DOCTYPE html>"))
	assert.Contains(t, s, `<base href="http://localhost:5000/">`)
	assert.Contains(t, s, `class="dark-theme"`)
	assert.Contains(t, s, "video-embed-container")
	assert.Contains(t, s, "&lt;mèo&gt;")
	assert.NotContains(t, s, "<mèo>")
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	path, err := Conversation(sampleConversation(), "", "json", &Options{OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chat_export_session_1_abc.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	_, err = Conversation(sampleConversation(), "", "pdf", &Options{OutputDir: dir})
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "chat_export_unknown.json", FileName("", ".json"))
	assert.Equal(t, "chat_export_a-b_c.md", FileName("a/b c", ".md"))
}
