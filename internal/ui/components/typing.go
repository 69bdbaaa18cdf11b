// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/ui/styles"
)

// TypingIndicator is the "AI is working" line under the transcript. It
// shows a spinner, the status text and, while a video renders, a bar.
type TypingIndicator struct {
	spinner  spinner.Model
	bar      progress.Model
	percent  float64
	theme    *styles.Theme
	showsBar bool
}

// NewTypingIndicator creates an idle indicator.
func NewTypingIndicator(theme *styles.Theme) TypingIndicator {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.TypingText
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	return TypingIndicator{spinner: s, bar: bar, theme: theme}
}

// Tick starts the spinner animation.
func (t TypingIndicator) Tick() tea.Cmd {
	return t.spinner.Tick
}

// SetProgress shows the bar at pct (0-100). A non-positive pct hides it.
func (t *TypingIndicator) SetProgress(pct float64) {
	if pct <= 0 {
		t.showsBar = false
		t.percent = 0
		return
	}
	if pct > 100 {
		pct = 100
	}
	t.showsBar = true
	t.percent = pct / 100
}

// Reset hides the bar.
func (t *TypingIndicator) Reset() {
	t.SetProgress(0)
}

// Update advances the spinner.
func (t TypingIndicator) Update(msg tea.Msg) (TypingIndicator, tea.Cmd) {
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders status on one line (plus the bar when set).
func (t TypingIndicator) View(status string, width int) string {
	out := t.spinner.View() + " " + t.theme.TypingText.Render(status)
	if t.showsBar && width > 10 {
		t.bar.Width = min(width-4, 50)
		out += "\n  " + t.bar.ViewAs(t.percent)
	}
	return out
}
