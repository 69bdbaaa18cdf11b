// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/render"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

// Toast texts.
const (
	ToastExported = "Đã export chat thành công"
	ToastCopied   = "Đã sao chép vào clipboard"
	ToastCopyFail = "Lỗi khi sao chép"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a transcript to one file format.
type Exporter interface {
	Export(doc *Document) ([]byte, error)
	FileExtension() string
	MimeType() string
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Entry is one exported message.
type Entry struct {
	// Type is "user" or "ai".
	Type      string
	Content   string
	HTML      string
	Markdown  string
	Video     *model.VideoRef
	Timestamp time.Time
}

// TimeLabel is the clock time shown under the bubble.
func (e Entry) TimeLabel() string {
	return e.Timestamp.Format("15:04:05")
}

// Document is a transcript prepared for export.
type Document struct {
	SessionID  string
	BaseURL    string
	ExportedAt time.Time
	Entries    []Entry
}

// FromConversation renders every message of conv. baseURL makes the
// video links absolute; it may be empty.
func FromConversation(conv *model.Conversation, baseURL string) *Document {
	doc := &Document{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ExportedAt: time.Now(),
	}
	if conv == nil {
		return doc
	}
	doc.SessionID = conv.SessionID
	for _, msg := range conv.GetHistory() {
		doc.Entries = append(doc.Entries, entryFor(msg))
	}
	return doc
}

func entryFor(msg *model.Message) Entry {
	e := Entry{Type: "ai", Timestamp: msg.Timestamp}
	var body string
	if msg.Role == model.RoleUser {
		e.Type = "user"
		body = render.FormatUserMessage(msg.Content)
	} else {
		r := render.Format(msg.Content, msg.Video)
		body = r.HTML()
		e.Video = r.Video
	}
	e.HTML = body
	e.Content = strings.TrimSpace(render.PlainText(body))
	if md, err := render.ToMarkdown(body); err == nil {
		e.Markdown = md
	} else {
		e.Markdown = e.Content
	}
	return e
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeTimestamps adds per-message times to every format.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark").
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeTimestamps: true,
		Theme:             "light",
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// FileName returns chat_export_<session><ext>.
func FileName(sessionID, ext string) string {
	if sessionID == "" {
		sessionID = "unknown"
	}
	return "chat_export_" + sanitizeFilename(sessionID) + ext
}

// ToFile exports doc and writes it into opts.OutputDir. It returns the
// written path.
func ToFile(doc *Document, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	content, err := exporter.Export(doc)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, FileName(doc.SessionID, exporter.FileExtension()))
	if err := util.AtomicWriteFile(outputPath, content, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		// Non-fatal: the file exists either way.
		_ = openFile(outputPath)
	}
	return outputPath, nil
}

// ForFormat returns the exporter for "json", "md"/"markdown" or
// "html"/"htm".
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return NewJSONExporter(opts), nil
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// Conversation exports conv in the named format.
func Conversation(conv *model.Conversation, baseURL, format string, opts *Options) (string, error) {
	exporter, err := ForFormat(format, opts)
	if err != nil {
		return "", err
	}
	return ToFile(FromConversation(conv, baseURL), exporter, opts)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	maxLen := 80
	runes := []rune(s)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}
	if len(result) == 0 {
		return "unknown"
	}
	return string(result)
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
