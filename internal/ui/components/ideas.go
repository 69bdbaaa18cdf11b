// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/emlinh-tui/internal/ideas"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/ui/styles"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

// RenderIdeas draws the recent-ideas sidebar.
func RenderIdeas(theme *styles.Theme, state ideas.State, list []model.Idea, message string, width int) string {
	if width < 12 {
		width = 12
	}
	inner := width - 2
	var b strings.Builder
	b.WriteString(theme.PanelTitle.Render("💡 Ý tưởng gần đây"))
	b.WriteString("\n")

	switch state {
	case ideas.StateLoading:
		b.WriteString(theme.Muted.Render("Đang tải..."))
	case ideas.StateLoaded:
		for i, idea := range list {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(util.TruncateWidth(idea.Title, inner))
			b.WriteString("\n")
			badge := theme.BadgeFor(styles.StatusColor(ideas.StatusColor(idea.Status))).Render(idea.Status)
			b.WriteString(badge + " " + theme.Meta.Render(util.TruncateWidth(idea.Kind(), inner-lipglossWidth(badge)-1)))
			b.WriteString("\n")
		}
	case ideas.StateError:
		b.WriteString(theme.ErrorStyle.Render(message))
	default:
		b.WriteString(theme.Muted.Render(message))
	}
	return theme.Sidebar.Width(width).Render(b.String())
}
