// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

// DownloadProgress reports bytes written so far. Total is -1 when the
// server sent no length.
type DownloadProgress struct {
	ID      model.ID
	Written int64
	Total   int64
}

// Fraction returns progress in [0,1], or 0 when the total is unknown.
func (p DownloadProgress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Written) / float64(p.Total)
}

// DownloadedMsg carries the result of a download.
type DownloadedMsg struct {
	ID   model.ID
	Path string
	Err  error
}

// FileName is the local name of a downloaded video.
func FileName(id model.ID) string {
	return "emlinh_video_" + id.String() + ".mp4"
}

type countingWriter struct {
	w        io.Writer
	progress DownloadProgress
	report   func(DownloadProgress)
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.progress.Written += int64(n)
	if c.report != nil {
		c.report(c.progress)
	}
	return n, err
}

// Download streams the file of video id into dir and returns its path.
// The file appears only once it is complete.
func Download(ctx context.Context, store Store, id model.ID, dir string, report func(DownloadProgress)) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	body, size, err := store.OpenVideoFile(ctx, id)
	if err != nil {
		return "", err
	}
	defer body.Close()

	path := filepath.Join(dir, FileName(id))
	err = util.AtomicWrite(path, 0o644, func(w io.Writer) error {
		cw := &countingWriter{w: w, progress: DownloadProgress{ID: id, Total: size}, report: report}
		_, err := io.Copy(cw, body)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("download video %s: %w", id, err)
	}
	return path, nil
}

// Download starts a download in the background. report may be nil and is
// called from the download goroutine.
func (b *Browser) Download(id model.ID, dir string, report func(DownloadProgress)) tea.Cmd {
	b.notify.Notify(notify.Info, ToastDownloading)
	store := b.store
	return func() tea.Msg {
		path, err := Download(context.Background(), store, id, dir, report)
		return DownloadedMsg{ID: id, Path: path, Err: err}
	}
}

// HandleDownloaded reports the result of a download.
func (b *Browser) HandleDownloaded(msg DownloadedMsg) {
	if msg.Err != nil {
		b.log.Warn("video download failed", "video", msg.ID, "error", msg.Err)
		b.notify.Notify(notify.Error, "Lỗi khi tải video: "+msg.Err.Error())
		return
	}
	b.log.Info("video downloaded", "video", msg.ID, "path", msg.Path)
	b.notify.Notify(notify.Success, "Đã tải video về: "+msg.Path)
}
