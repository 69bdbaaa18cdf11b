// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestManagerNewestFirstAndCapped(t *testing.T) {
	m := NewManager()
	for i := 0; i < 7; i++ {
		m.Info(string(rune('a' + i)))
	}

	toasts := m.Toasts()
	assert.Len(t, toasts, MaxToasts)
	assert.Equal(t, "g", toasts[0].Message)
	assert.Equal(t, "c", toasts[MaxToasts-1].Message)
}

func TestManagerExpiry(t *testing.T) {
	c := &clock{t: time.Unix(1000, 0)}
	m := NewManager()
	m.SetClock(c.now)

	m.Success("ok")
	m.Warning("careful")
	m.Error("bad")

	c.t = c.t.Add(5 * time.Second)
	left := m.Tick()
	assert.Len(t, left, 2)

	c.t = c.t.Add(2 * time.Second)
	left = m.Tick()
	assert.Len(t, left, 1)
	assert.Equal(t, Error, left[0].Kind)
	assert.Equal(t, time.Second, left[0].TimeRemaining(c.t))

	c.t = c.t.Add(time.Second)
	assert.Empty(t, m.Tick())
}

func TestManagerDismiss(t *testing.T) {
	m := NewManager()
	first := m.Info("one")
	m.Info("two")

	m.Dismiss(first)
	assert.Equal(t, 1, m.Len())
	m.DismissNewest()
	assert.Equal(t, 0, m.Len())
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "danger", Error.String())
	assert.Equal(t, Error, ParseKind("error"))
	assert.Equal(t, Warning, ParseKind(Warning.String()))
	assert.Equal(t, Info, ParseKind("whatever"))
	assert.Equal(t, ErrorDuration, Error.Duration())
}

func TestConsole(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Notify(Success, "Đã xóa cuộc hội thoại")
	c.Notify(Error, "Lỗi khi xóa")

	assert.Equal(t, "✓ Đã xóa cuộc hội thoại\n✗ Lỗi khi xóa\n", buf.String())
}
