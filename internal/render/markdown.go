// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

// =============================================================================
// HTML CONVERSION
// =============================================================================

var (
	converterOnce sync.Once
	converter     *md.Converter
)

func markdownConverter() *md.Converter {
	converterOnce.Do(func() {
		converter = md.NewConverter("", true, nil)
	})
	return converter
}

// ToMarkdown converts a formatted body back to markdown.
func ToMarkdown(html string) (string, error) {
	if html == "" {
		return "", nil
	}
	out, err := markdownConverter().ConvertString(html)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// PlainText strips markup from a formatted body, keeping line breaks.
func PlainText(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("script, style, video").Remove()
	return strings.TrimSpace(doc.Text())
}

// =============================================================================
// TERMINAL
// =============================================================================

// Terminal renders messages for a terminal with glamour.
type Terminal struct {
	baseURL  string
	renderer *glamour.TermRenderer
	width    int
}

// NewTerminal creates a terminal renderer. style is a glamour style name,
// or "auto" to detect the background. baseURL prefixes video links.
func NewTerminal(style string, width int, baseURL string) (*Terminal, error) {
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return &Terminal{baseURL: strings.TrimRight(baseURL, "/"), renderer: r, width: width}, nil
}

// Width returns the wrap width.
func (t *Terminal) Width() int {
	return t.width
}

// Markdown returns the markdown for a message, including a video card.
func (t *Terminal) Markdown(msg *model.Message) string {
	if msg.Role == model.RoleUser {
		return msg.Content
	}
	r := Format(msg.Content, msg.Video)
	text, err := ToMarkdown(r.Body)
	if err != nil {
		text = PlainText(r.Body)
	}
	if r.Video != nil {
		text += "\n\n" + t.VideoCard(*r.Video)
	}
	return text
}

// VideoCard is the markdown stand-in for the HTML player.
func (t *Terminal) VideoCard(ref model.VideoRef) string {
	title := ref.Title
	if title == "" {
		title = DefaultVideoTitle
	}
	return "> 🎬 **" + title + "**  \n> ▶ " + t.baseURL + ref.FileURL() + "  \n> 🆔 Video ID: " + ref.ID.String()
}

// Render returns the terminal rendering of a message. On renderer failure
// the markdown is returned unchanged.
func (t *Terminal) Render(msg *model.Message) string {
	text := t.Markdown(msg)
	if msg.Role == model.RoleUser {
		return text
	}
	out, err := t.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// RenderMarkdown renders arbitrary markdown.
func (t *Terminal) RenderMarkdown(text string) string {
	out, err := t.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
