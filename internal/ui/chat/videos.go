// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/emlinh-tui/internal/library"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/ui/components"
	"github.com/jeranaias/emlinh-tui/internal/ui/styles"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

// =============================================================================
// VIDEOS TAB
// =============================================================================

func (m Model) currentVideo() (model.Video, bool) {
	list := m.app.Library.Visible()
	if m.videoCursor < 0 || m.videoCursor >= len(list) {
		return model.Video{}, false
	}
	return list[m.videoCursor], true
}

func (m Model) handleVideosKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	lib := m.app.Library
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.videoCursor > 0 {
			m.videoCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.videoCursor < len(lib.Visible())-1 {
			m.videoCursor++
		}
	case key.Matches(msg, m.keys.Left):
		m.videoCursor = 0
		return m, lib.PrevPage()
	case key.Matches(msg, m.keys.Right):
		m.videoCursor = 0
		return m, lib.NextPage()
	case key.Matches(msg, m.keys.Open):
		if v, ok := m.currentVideo(); ok {
			return m, lib.Detail(v.ID)
		}
	case key.Matches(msg, m.keys.Back):
		lib.CloseDetail()
	case key.Matches(msg, m.keys.Search):
		return m.openPrompt(promptLibrarySearch, "Tìm kiếm video...", lib.Search())
	case key.Matches(msg, m.keys.Filter):
		m.videoCursor = 0
		return m, lib.CycleStatus()
	case key.Matches(msg, m.keys.Sort):
		lib.SetSort(lib.Sort().Next())
	case key.Matches(msg, m.keys.Clear):
		m.videoCursor = 0
		return m, lib.ClearFilters()
	case key.Matches(msg, m.keys.Delete):
		if v, ok := m.currentVideo(); ok {
			m.pendingDelete = v.ID
			return m.openPrompt(promptConfirmVideoDelete, "", "")
		}
	case key.Matches(msg, m.keys.Download):
		cmd := m.downloadCurrent()
		return m, cmd
	case key.Matches(msg, m.keys.Create):
		return m.openPrompt(promptVideoTopic, "Chủ đề video...", "")
	}
	return m, nil
}

// downloadCurrent saves the highlighted video. Progress arrives through
// the relay since the copy runs outside the update loop.
func (m *Model) downloadCurrent() tea.Cmd {
	v, ok := m.currentVideo()
	if !ok || m.download != nil {
		return nil
	}
	m.download = &library.DownloadProgress{ID: v.ID, Total: -1}
	relay := m.relay
	return m.app.Library.Download(v.ID, m.app.Config.Video.DownloadDir, func(p library.DownloadProgress) {
		relay.Send(p)
	})
}

func (m Model) viewVideos(width, height int) string {
	lib := m.app.Library
	t := m.theme

	listWidth := width
	detail := lib.Selected()
	if detail != nil && width >= 80 {
		listWidth = width / 2
	}

	var b strings.Builder
	b.WriteString(t.PanelTitle.Render("🎬 Thư viện video"))
	b.WriteString("\n")
	b.WriteString(m.videoFilters())
	b.WriteString("\n\n")

	state, errText := lib.State()
	list := lib.Visible()
	switch {
	case state == library.StateLoading && len(list) == 0:
		b.WriteString(t.Muted.Render("Đang tải..."))
	case state == library.StateFailed:
		b.WriteString(t.ErrorStyle.Render(errText))
	case lib.EmptyText() != "":
		b.WriteString(t.Muted.Render(lib.EmptyText()))
	default:
		rows := max(height-6, 1)
		start := 0
		if m.videoCursor >= rows {
			start = m.videoCursor - rows + 1
		}
		for i := start; i < len(list) && i < start+rows; i++ {
			b.WriteString(m.videoRow(list[i], i == m.videoCursor, listWidth))
			b.WriteString("\n")
		}
	}

	p := lib.Pagination()
	if pager := components.RenderPager(t, lib.PageRange(), lib.Page(), p.Pages); pager != "" {
		b.WriteString("\n")
		b.WriteString(pager)
		b.WriteString(t.Meta.Render(fmt.Sprintf("  (%d video)", p.Total)))
	}
	if m.download != nil {
		b.WriteString("\n")
		b.WriteString(m.downloadLine())
	}

	left := lipgloss.NewStyle().Width(listWidth).MaxHeight(height).Render(b.String())
	if detail == nil {
		return left
	}
	right := m.videoDetail(*detail, max(width-listWidth-2, 30))
	if listWidth == width {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (m Model) videoFilters() string {
	lib := m.app.Library
	t := m.theme
	status := "Tất cả"
	if s := lib.Status(); s != "" {
		status = library.StatusText(s)
	}
	parts := []string{
		t.Meta.Render("Trạng thái: ") + status,
		t.Meta.Render("Sắp xếp: ") + lib.Sort().String(),
	}
	if q := lib.Search(); q != "" {
		parts = append(parts, t.Meta.Render("Tìm: ")+q)
	}
	return strings.Join(parts, t.Muted.Render("  │  "))
}

func (m Model) videoRow(v model.Video, selected bool, width int) string {
	t := m.theme
	badge := t.BadgeFor(styles.VideoStatusColor(v.Status)).Render(library.StatusText(v.Status))
	title := util.TruncateText(v.Ref().Title, max(width-30, 10))
	meta := t.Meta.Render(library.DateText(v.CreatedAt) + " · " + library.FileSizeText(v))
	line := title + " " + badge + " " + meta
	if selected {
		return t.ListSelected.Render("▸ " + line)
	}
	return t.ListItem.Render("  " + line)
}

func (m Model) videoDetail(v model.Video, width int) string {
	t := m.theme
	base := m.app.Client.BaseURL()
	rows := []string{
		t.PanelTitle.Render(v.Ref().Title),
		t.Meta.Render("ID: ") + v.ID.String(),
		t.Meta.Render("Chủ đề: ") + v.Topic,
		t.Meta.Render("Trạng thái: ") + library.StatusText(v.Status),
		t.Meta.Render("Thời lượng: ") + fmt.Sprintf("%ds", v.Duration),
		t.Meta.Render("Dung lượng: ") + library.FileSizeText(v),
		t.Meta.Render("Ngày tạo: ") + library.DateText(v.CreatedAt),
	}
	if v.Voice != "" {
		rows = append(rows, t.Meta.Render("Giọng: ")+v.Voice)
	}
	if v.IsPlayable() {
		rows = append(rows, t.LinkStyle.Render(base+v.Ref().FileURL()))
	}
	if v.Script != "" {
		rows = append(rows, "", t.Meta.Render("Kịch bản:"), util.TruncateText(v.Script, 600))
	}
	rows = append(rows, "", t.Muted.Render("[w] Tải xuống  [d] Xóa  [esc] Đóng"))
	return t.Detail.Width(width).Render(strings.Join(rows, "\n"))
}

func (m Model) downloadLine() string {
	d := m.download
	if d.Total > 0 {
		return m.theme.InfoStyle.Render(fmt.Sprintf("⬇ %s: %.0f%% (%s / %s)", d.ID,
			d.Fraction()*100, library.FormatFileSize(d.Written), library.FormatFileSize(d.Total)))
	}
	return m.theme.InfoStyle.Render(fmt.Sprintf("⬇ %s: %s", d.ID, library.FormatFileSize(d.Written)))
}
