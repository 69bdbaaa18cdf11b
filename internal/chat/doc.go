// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat sequences chat turns and holds the visible transcript.
//
// Transcript is the view state every component writes to: messages, the
// typing indicator, the loading flag and the prompt box. Core sends one
// message at a time and settles each reply into the Transcript.
//
// Operations that reach the backend return a tea.Cmd that performs the
// request; the resulting message is handed back to the matching Handle
// method on the Bubble Tea goroutine, so no state is shared between
// goroutines.
package chat
