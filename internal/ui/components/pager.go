// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/emlinh-tui/internal/ui/styles"
)

func lipglossWidth(s string) int {
	return lipgloss.Width(s)
}

// RenderPager draws "‹ 1 2 [3] 4 5 ›". An empty range renders nothing.
func RenderPager(theme *styles.Theme, pages []int, current, total int) string {
	if len(pages) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pages)+2)
	if current > 1 {
		parts = append(parts, theme.ShortcutKey.Render("‹"))
	}
	for _, p := range pages {
		label := strconv.Itoa(p)
		if p == current {
			parts = append(parts, theme.TabActive.Padding(0, 1).Render(label))
		} else {
			parts = append(parts, theme.Meta.Render(label))
		}
	}
	if current < total {
		parts = append(parts, theme.ShortcutKey.Render("›"))
	}
	return strings.Join(parts, " ")
}
