// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

// =============================================================================
// ESCAPING
// =============================================================================

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "", EscapeHTML(""))
	assert.Equal(t, "plain", EscapeHTML("plain"))
	assert.Equal(t, "&lt;b&gt; &amp; &quot;q&quot; &#039;s&#039;", EscapeHTML(`<b> & "q" 's'`))
}

func TestEscapeHTMLNeutralizesScript(t *testing.T) {
	inputs := []string{
		`<script>alert(1)</script>`,
		`"><script>x</script>`,
		`&<>"'<script`,
		`<<script>script>`,
	}
	for _, in := range inputs {
		out := EscapeHTML(in)
		assert.NotContains(t, out, "<script", "input %q", in)
		assert.NotContains(t, out, "<", "input %q", in)
		assert.NotContains(t, out, ">", "input %q", in)
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

func TestFormatMessageMarkup(t *testing.T) {
	out := FormatMessage("**đậm** và *nghiêng*\n`code`")
	assert.Equal(t, "<strong>đậm</strong> và <em>nghiêng</em><br><code>code</code>", out)
}

func TestFormatMessageEscapesBeforeMarkup(t *testing.T) {
	out := FormatMessage("**<script>x</script>**")
	assert.Equal(t, "<strong>&lt;script&gt;x&lt;/script&gt;</strong>", out)
}

func TestFormatMessageEmbedsVideoID(t *testing.T) {
	out := FormatMessage("🆔 Video ID: 123")
	assert.Contains(t, out, "video-embed-container")
	assert.Contains(t, out, `<source src="/api/videos/123/file"`)
}

func TestFormatMessageWithoutVideo(t *testing.T) {
	out := FormatMessage("no video here")
	assert.NotContains(t, out, "video-embed-container")
	assert.Equal(t, "no video here", out)
}

func TestVideoPatterns(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		id    string
		title string
	}{
		{"bold id", "🆔 **Video ID:** 7\n**Chủ đề:** Mèo con", "7", "Mèo con"},
		{"url", "Xem tại /videos/42 nhé", "42", DefaultVideoTitle},
		{"plain id", "video id 9", "9", DefaultVideoTitle},
		{"here", "✅ Video đã được tạo thành công chủ đề Python với thời gian 7 giây! Bạn có thể xem video này tại đây: /videos/6.", "6", "Python với thời gian 7 giây"},
		{"about", "Đã tạo video về Hà Nội! ID: /videos/3", "3", "Hà Nội"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := DetectVideo(tt.text)
			require.True(t, ok)
			assert.Equal(t, model.ID(tt.id), ref.ID)
			assert.Equal(t, tt.title, ref.Title)
		})
	}
}

func TestFormatUsesStructuredRef(t *testing.T) {
	r := Format("Video của bạn đã sẵn sàng", &model.VideoRef{ID: "55", Title: "Biển"})
	require.True(t, r.HasVideo())
	assert.Equal(t, model.ID("55"), r.Video.ID)
	html := r.HTML()
	assert.Contains(t, html, "/api/videos/55/file")
	assert.Contains(t, html, "🎬 Biển")
}

func TestFormatStructuredRefTitleFallback(t *testing.T) {
	ref := &model.VideoRef{ID: "5"}
	r := Format("Đã xong video về Sài Gòn!", ref)
	assert.Equal(t, "Sài Gòn", r.Video.Title)
	assert.Empty(t, ref.Title, "caller's ref is not modified")
}

func TestFormatStructuredRefWinsOverText(t *testing.T) {
	r := Format("🆔 Video ID: 9", &model.VideoRef{ID: "55", Title: "Biển"})
	require.True(t, r.HasVideo())
	assert.Equal(t, model.ID("55"), r.Video.ID)
	assert.NotContains(t, r.HTML(), "/api/videos/9/file")
	assert.Equal(t, r.HTML(), r.Body+VideoEmbed(*r.Video))
}

func TestVideoEmbedEscapesTitle(t *testing.T) {
	out := VideoEmbed(model.VideoRef{ID: "1", Title: `<img onerror="x">`})
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "&lt;img")
}

func TestHasVideoKeywords(t *testing.T) {
	assert.True(t, HasVideoKeywords("xem tại đây"))
	assert.True(t, HasVideoKeywords("VIDEO mới"))
	assert.False(t, HasVideoKeywords("xin chào"))
}

// =============================================================================
// CONVERSION
// =============================================================================

func TestPlainText(t *testing.T) {
	assert.Equal(t, "a\nb & c", PlainText(FormatMessage("a\nb & c")))
	assert.Equal(t, "", PlainText(""))

	text := PlainText(FormatMessage("Video ID: 4"))
	assert.True(t, strings.HasPrefix(text, "Video ID: 4"))
	assert.NotContains(t, text, "Trình duyệt")
}

func TestToMarkdown(t *testing.T) {
	out, err := ToMarkdown(FormatMessage("**đậm** và `x`"))
	require.NoError(t, err)
	assert.Contains(t, out, "**đậm**")
	assert.Contains(t, out, "`x`")
}

func TestTerminalMarkdown(t *testing.T) {
	term, err := NewTerminal("notty", 60, "http://host:5000/")
	require.NoError(t, err)

	msg := model.NewAIMessage("Xong! /videos/8", time.Time{})
	out := term.Markdown(msg)
	assert.Contains(t, out, "http://host:5000/api/videos/8/file")
	assert.Contains(t, out, "Video ID: 8")

	user := model.NewUserMessage("**raw**")
	assert.Equal(t, "**raw**", term.Render(user))

	assert.NotEmpty(t, term.Render(msg))
}
