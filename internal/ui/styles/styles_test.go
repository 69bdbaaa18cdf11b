// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusColor(t *testing.T) {
	assert.Equal(t, Blue, StatusColor("primary"))
	assert.Equal(t, Emerald, StatusColor("success"))
	assert.Equal(t, Amber, StatusColor("warning"))
	assert.Equal(t, Rose, StatusColor("danger"))
	assert.Equal(t, TextSecondary, StatusColor("secondary"))
	assert.Equal(t, TextSecondary, StatusColor("bogus"))
}

func TestVideoStatusColor(t *testing.T) {
	assert.Equal(t, Emerald, VideoStatusColor("completed"))
	assert.Equal(t, Amber, VideoStatusColor("rendering"))
	assert.Equal(t, Rose, VideoStatusColor("failed"))
	assert.Equal(t, TextSecondary, VideoStatusColor(""))
}

func TestNewThemeGlamourStyle(t *testing.T) {
	th := NewTheme()
	if th.IsDark {
		assert.Equal(t, "dark", th.GlamourStyle())
	} else {
		assert.Equal(t, "light", th.GlamourStyle())
	}
	assert.NotEmpty(t, th.TabActive.Render("Chat"))
}
