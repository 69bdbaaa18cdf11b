// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ideas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

type fakeLister struct {
	calls int
	per   int
	ideas []model.Idea
	err   error
}

func (f *fakeLister) Ideas(_ context.Context, perPage int) ([]model.Idea, error) {
	f.calls++
	f.per = perPage
	return f.ideas, f.err
}

func load(t *testing.T, p *Panel) {
	t.Helper()
	cmd := p.Load()
	require.NotNil(t, cmd)
	msg, ok := cmd().(LoadedMsg)
	require.True(t, ok)
	p.HandleLoaded(msg)
}

func TestPanel_States(t *testing.T) {
	lister := &fakeLister{}
	p := NewPanel(Options{Client: lister})
	assert.Equal(t, StateLoading, p.State())

	load(t, p)
	assert.Equal(t, StateEmpty, p.State())
	assert.Equal(t, EmptyText, p.Message())
	assert.Equal(t, 5, lister.per)

	lister.ideas = []model.Idea{{ID: "1", Title: "Ý tưởng", Status: "draft"}}
	load(t, p)
	assert.Equal(t, StateLoaded, p.State())
	assert.Len(t, p.Ideas(), 1)
	assert.Empty(t, p.Message())

	lister.err = errors.New("down")
	load(t, p)
	assert.Equal(t, StateError, p.State())
	assert.Equal(t, ErrorText, p.Message())
	assert.Nil(t, p.Ideas())
}

func TestPanel_DropsStaleResults(t *testing.T) {
	lister := &fakeLister{ideas: []model.Idea{{Title: "old"}}}
	p := NewPanel(Options{Client: lister})
	first := p.Load()
	second := p.Load()

	lister.ideas = []model.Idea{{Title: "new"}}
	p.HandleLoaded(second().(LoadedMsg))
	lister.ideas = []model.Idea{{Title: "old"}}
	p.HandleLoaded(first().(LoadedMsg))

	require.Len(t, p.Ideas(), 1)
	assert.Equal(t, "new", p.Ideas()[0].Title)
}

func TestPanel_ThrottlesReloads(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lister := &fakeLister{}
	p := NewPanel(Options{Client: lister, MinInterval: time.Second, Now: func() time.Time { return now }})

	load(t, p)
	assert.Equal(t, 1, lister.calls)

	deferred := p.Load()
	require.NotNil(t, deferred)
	assert.Nil(t, p.Load(), "a scheduled reload absorbs further calls")

	fetch := p.HandleReload(ReloadMsg{})
	require.NotNil(t, fetch)
	p.HandleLoaded(fetch().(LoadedMsg))
	assert.Equal(t, 2, lister.calls)

	now = now.Add(5 * time.Second)
	load(t, p)
	assert.Equal(t, 3, lister.calls)
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "secondary", StatusColor("draft"))
	assert.Equal(t, "warning", StatusColor("in_progress"))
	assert.Equal(t, "success", StatusColor("completed"))
	assert.Equal(t, "primary", StatusColor("published"))
	assert.Equal(t, "secondary", StatusColor("weird"))
}
