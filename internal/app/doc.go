// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app builds the object graph shared by the terminal UI and the
// headless commands: backend client, real-time channel, event bus and the
// chat, session, video, ideas, history and library components.
//
// Asynchronous inputs (real-time events and bus events that need a
// follow-up fetch) are funneled into one channel read by Updates, so the
// Bubble Tea program can consume them with WaitForUpdate.
package app
