// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishOrderAndIsolation(t *testing.T) {
	bus := NewBus(nil)
	var got []string

	bus.Subscribe(NewSession, func(ev Event) { got = append(got, "a:"+ev.SessionID) })
	bus.Subscribe(NewSession, func(Event) { panic("boom") })
	bus.Subscribe(NewSession, func(ev Event) { got = append(got, "c:"+ev.SessionID) })
	bus.Subscribe(IdeasUpdated, func(Event) { got = append(got, "ideas") })

	bus.Publish(Event{Kind: NewSession, SessionID: "s1"})

	assert.Equal(t, []string{"a:s1", "c:s1"}, got)
}

func TestBus_NoSubscribers(t *testing.T) {
	bus := NewBus(nil)
	assert.NotPanics(t, func() { bus.Publish(Event{Kind: VideosUpdated}) })
}
