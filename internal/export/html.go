// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to a standalone page. Bubbles keep
// the markup the chat renders, so video players still work when the
// document carries a base URL.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Theme == "" {
		opts.Theme = "light"
	}
	return &HTMLExporter{options: opts}
}

// Export converts a transcript to HTML.
func (e *HTMLExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if len(doc.Entries) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"vi\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>Chat %s</title>\n", html.EscapeString(doc.SessionID)))
	sb.WriteString("    <meta name=\"generator\" content=\"emlinh\">\n")
	if doc.BaseURL != "" {
		sb.WriteString(fmt.Sprintf("    <base href=\"%s/\">\n", html.EscapeString(doc.BaseURL)))
	}
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", html.EscapeString(e.options.Theme)))
	sb.WriteString("    <div class=\"container\">\n")

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>Chat %s</h1>\n", html.EscapeString(doc.SessionID)))
	sb.WriteString(fmt.Sprintf("            <span class=\"meta-item\">%d tin nhắn</span>\n", len(doc.Entries)))
	sb.WriteString("        </header>\n")

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, entry := range doc.Entries {
		sb.WriteString(e.renderEntry(entry))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>emlinh</strong> on %s</p>\n",
		doc.ExportedAt.Format(time.RFC3339)))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// renderEntry renders one bubble. entry.HTML is already escaped.
func (e *HTMLExporter) renderEntry(entry Entry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", entry.Type))
	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", roleLabel(entry.Type)))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <small class=\"timestamp\">%s</small>\n", entry.TimeLabel()))
	}
	sb.WriteString("                </div>\n")
	sb.WriteString("                <div class=\"message-content\">")
	sb.WriteString(entry.HTML)
	sb.WriteString("</div>\n")
	sb.WriteString("            </div>\n")
	return sb.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const css = `    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; line-height: 1.6; }
        .light-theme { background: #f5f6fa; color: #222; }
        .dark-theme { background: #1e1f29; color: #e6e6e6; }
        .container { max-width: 860px; margin: 0 auto; padding: 24px; }
        .header { margin-bottom: 24px; }
        .header h1 { font-size: 1.4rem; }
        .meta-item { opacity: 0.7; font-size: 0.9rem; }
        .message { border-radius: 12px; padding: 12px 16px; margin-bottom: 16px; }
        .user-message { background: #4f46e5; color: #fff; margin-left: 20%; }
        .ai-message { background: #ffffff; border: 1px solid #e1e3ea; margin-right: 20%; }
        .dark-theme .ai-message { background: #2a2c3a; border-color: #3a3c4a; }
        .message-header { display: flex; justify-content: space-between; margin-bottom: 6px; font-size: 0.85rem; opacity: 0.8; }
        .message-content code { background: rgba(0,0,0,0.08); padding: 1px 4px; border-radius: 4px; }
        .video-embed-container video { width: 100%; max-width: 480px; border-radius: 8px; }
        .footer { text-align: center; font-size: 0.8rem; opacity: 0.6; margin-top: 32px; }
    </style>
`
