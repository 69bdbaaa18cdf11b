// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/emlinh-tui/internal/ideas"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
	"github.com/jeranaias/emlinh-tui/internal/ui/styles"
)

func TestRenderToastShowsMessageAndCountdown(t *testing.T) {
	now := time.Now()
	toast := notify.Toast{
		ID:        1,
		Message:   "Video đã được xóa thành công",
		Kind:      notify.Success,
		CreatedAt: now,
		Duration:  4 * time.Second,
	}
	out := RenderToast(toast, now.Add(time.Second), 80)
	assert.Contains(t, out, "Video")
	assert.Contains(t, out, "3s")
	assert.Contains(t, out, styles.StatusIndicators.Success)
}

func TestRenderToastStackEmpty(t *testing.T) {
	assert.Empty(t, RenderToastStack(nil, time.Now(), 80))
}

func TestWrapText(t *testing.T) {
	out := wrapText("một hai ba bốn năm sáu bảy tám", 10)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 10)
	}
	assert.Equal(t, "ngắn", wrapText("ngắn", 10))
}

func TestStatusBarNarrowDropsSession(t *testing.T) {
	bar := NewStatusBar(styles.NewTheme())
	bar.SessionID = "session_123_abcdefghi"
	bar.Connection = ConnConnected

	bar.SetWidth(120)
	assert.Contains(t, bar.View(), "session_123")
	assert.Contains(t, bar.View(), "Đã kết nối")

	bar.SetWidth(50)
	assert.NotContains(t, bar.View(), "session_123")
}

func TestConnectionString(t *testing.T) {
	assert.Equal(t, "Mất kết nối", ConnDisconnected.String())
	assert.Equal(t, "Realtime tắt", ConnDisabled.String())
}

func TestRenderIdeas(t *testing.T) {
	theme := styles.NewTheme()
	list := []model.Idea{{Title: "Video về AI", Status: "draft"}}
	out := RenderIdeas(theme, ideas.StateLoaded, list, "", 30)
	assert.Contains(t, out, "Video về AI")
	assert.Contains(t, out, "general")

	out = RenderIdeas(theme, ideas.StateEmpty, nil, ideas.EmptyText, 30)
	assert.Contains(t, out, "Chưa có ý tưởng")
}

func TestRenderPager(t *testing.T) {
	theme := styles.NewTheme()
	assert.Empty(t, RenderPager(theme, nil, 1, 1))
	out := RenderPager(theme, []int{1, 2, 3}, 2, 3)
	assert.Contains(t, out, "‹")
	assert.Contains(t, out, "›")
	assert.Contains(t, out, "3")
}

func TestTypingIndicatorBar(t *testing.T) {
	ind := NewTypingIndicator(styles.NewTheme())
	assert.NotContains(t, ind.View("Đang xử lý", 80), "\n")
	ind.SetProgress(40)
	assert.Contains(t, ind.View("Đang xử lý", 80), "\n")
	ind.Reset()
	assert.NotContains(t, ind.View("Đang xử lý", 80), "\n")
}
