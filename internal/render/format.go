// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

// =============================================================================
// INLINE MARKUP
// =============================================================================

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
	codePattern   = regexp.MustCompile("`(.*?)`")
)

// DefaultVideoTitle is shown when no title can be found.
const DefaultVideoTitle = "Video AI"

// formatInline escapes text and applies the markdown subset.
func formatInline(text string) string {
	out := EscapeHTML(text)
	out = strings.ReplaceAll(out, "\n", "<br>")
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicPattern.ReplaceAllString(out, "<em>$1</em>")
	out = codePattern.ReplaceAllString(out, "<code>$1</code>")
	return out
}

// =============================================================================
// MESSAGE BODIES
// =============================================================================

// Rendered is a formatted message body and the video it embeds, if any.
type Rendered struct {
	Body  string
	Video *model.VideoRef
}

// HTML returns the body with the player block appended.
func (r Rendered) HTML() string {
	if r.Video == nil {
		return r.Body
	}
	return r.Body + VideoEmbed(*r.Video)
}

// HasVideo reports whether a player block is attached.
func (r Rendered) HasVideo() bool {
	return r.Video != nil
}

// Format renders text. A non-nil ref is embedded as given (its title
// filled from the text when empty); a nil ref falls back to detection.
func Format(text string, ref *model.VideoRef) Rendered {
	body := formatInline(text)
	if ref == nil {
		ref = detectVideo(body)
	} else {
		copied := *ref
		if copied.Title == "" {
			copied.Title = detectTitle(body)
		}
		ref = &copied
	}
	return Rendered{Body: body, Video: ref}
}

// FormatMessage renders AI text to HTML, appending a player block when the
// text announces a video.
func FormatMessage(text string) string {
	return Format(text, nil).HTML()
}

// FormatUserMessage renders user text. User text is only escaped.
func FormatUserMessage(text string) string {
	return EscapeHTML(text)
}

// VideoEmbed returns the player block for ref.
func VideoEmbed(ref model.VideoRef) string {
	id := EscapeHTML(ref.ID.String())
	title := ref.Title
	if title == "" {
		title = DefaultVideoTitle
	}

	var b strings.Builder
	b.WriteString(`<br><br><div class="video-embed-container mt-3">`)
	b.WriteString(`<div class="video-player-wrapper bg-light rounded p-3">`)
	b.WriteString(`<h6 class="mb-3">🎬 ` + EscapeHTML(title) + `</h6>`)
	b.WriteString(`<video controls class="embedded-video w-100" preload="metadata">`)
	b.WriteString(`<source src="/api/videos/` + id + `/file" type="video/mp4">`)
	b.WriteString(`<source src="/videos/` + id + `" type="video/mp4">`)
	b.WriteString(`Trình duyệt của bạn không hỗ trợ video HTML5.`)
	b.WriteString(`</video>`)
	b.WriteString(`<div class="video-controls mt-3 d-flex gap-2">`)
	b.WriteString(`<a href="/api/videos/` + id + `/file" class="btn btn-sm btn-outline-primary" download>Tải về</a>`)
	b.WriteString(`<a href="/videos/` + id + `" class="btn btn-sm btn-outline-secondary">Chi tiết</a>`)
	b.WriteString(`<a href="/videos" class="btn btn-sm btn-outline-success">Video Library</a>`)
	b.WriteString(`</div></div></div>`)
	return b.String()
}

// WelcomeMessage is the greeting shown in an empty chat.
const WelcomeMessage = "Xin chào! Tôi là AI Assistant của bạn. Tôi có thể giúp bạn:\n" +
	"- **Trò chuyện**: Thảo luận ý tưởng và nhận tư vấn\n" +
	"- **Brainstorm**: Tạo ra nhiều ý tưởng sáng tạo\n" +
	"- **Lập kế hoạch**: Xây dựng kế hoạch chi tiết cho content"
