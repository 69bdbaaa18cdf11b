// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable pieces of the emlinh TUI: the
// toast stack, the status bar, the typing indicator, the ideas sidebar
// and the page selector.
//
// Components are render-only or small bubbles wrappers; the state they
// draw lives in the client packages.
package components
