// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"io"
	"sync"

	"github.com/fatih/color"
)

// Console prints toasts as colored lines.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	success *color.Color
	warning *color.Color
	errc    *color.Color
	info    *color.Color
}

// NewConsole writes toasts to out. Color follows fatih/color's terminal
// detection and NO_COLOR.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:     out,
		success: color.New(color.FgGreen, color.Bold),
		warning: color.New(color.FgYellow, color.Bold),
		errc:    color.New(color.FgRed, color.Bold),
		info:    color.New(color.FgCyan),
	}
}

// Notify implements Notifier.
func (c *Console) Notify(kind Kind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var prefix string
	var col *color.Color
	switch kind {
	case Success:
		prefix, col = "✓", c.success
	case Warning:
		prefix, col = "⚠", c.warning
	case Error:
		prefix, col = "✗", c.errc
	default:
		prefix, col = "ℹ", c.info
	}
	col.Fprint(c.out, prefix+" ")
	_, _ = io.WriteString(c.out, message+"\n")
}
