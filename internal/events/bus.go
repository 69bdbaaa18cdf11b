// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events carries app-wide notifications between components that
// do not hold references to each other (new session, ideas updated,
// videos updated).
package events

import (
	"log/slog"
	"sync"
)

// Kind names an app-wide event.
type Kind string

const (
	NewSession    Kind = "newSession"
	IdeasUpdated  Kind = "ideasUpdated"
	VideosUpdated Kind = "videosUpdated"
)

// Event is a published notification. SessionID is set for NewSession.
type Event struct {
	Kind      Kind
	SessionID string
}

// Handler receives published events.
type Handler func(Event)

// Bus fans events out to subscribers synchronously, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
	logger   *slog.Logger
}

// NewBus creates an empty bus. A nil logger discards handler panics silently.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{
		handlers: make(map[Kind][]Handler),
		logger:   logger,
	}
}

// Subscribe registers fn for kind.
func (b *Bus) Subscribe(kind Kind, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], fn)
}

// Publish delivers ev to every subscriber of ev.Kind. A panicking handler
// is logged and does not stop the others.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[ev.Kind]...)
	b.mu.RUnlock()

	for _, fn := range handlers {
		b.dispatch(fn, ev)
	}
}

func (b *Bus) dispatch(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "event", string(ev.Kind), "panic", r)
		}
	}()
	fn(ev)
}
