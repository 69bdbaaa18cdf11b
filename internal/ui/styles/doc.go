// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the emlinh TUI.
//
// Colors are lipgloss.AdaptiveColor values so they follow the terminal
// background. Status names (primary, secondary, success, warning, danger,
// info) match the ones the backend and the ideas panel use.
package styles
