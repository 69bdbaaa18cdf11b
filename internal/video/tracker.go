// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package video

import "github.com/jeranaias/emlinh-tui/internal/model"

// State is the tracker state.
type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Tracker is the {idle, pending(id)} state machine for the current job.
type Tracker struct {
	state State
	job   model.ID
}

// Start moves to pending(id), replacing any previous job. An empty id
// leaves the tracker idle.
func (t *Tracker) Start(id model.ID) {
	if id.IsZero() {
		t.Clear()
		return
	}
	t.state = Pending
	t.job = id
}

// Clear returns to idle.
func (t *Tracker) Clear() {
	t.state = Idle
	t.job = ""
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.state
}

// Pending reports whether a job is outstanding.
func (t *Tracker) Pending() bool {
	return t.state == Pending
}

// Current returns the outstanding job id, or "" when idle.
func (t *Tracker) Current() model.ID {
	return t.job
}

// Matches reports whether id is the outstanding job. It is always false
// when idle.
func (t *Tracker) Matches(id model.ID) bool {
	return t.state == Pending && !id.IsZero() && id == t.job
}
