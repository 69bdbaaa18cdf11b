// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package realtime is a minimal Socket.IO v4 client over a WebSocket
// transport.
//
// It speaks just enough of the Engine.IO/Socket.IO framing to join a
// session room and receive video_progress broadcasts from the backend.
// The Manager owns one connection, re-emits connect, disconnect,
// connect_error and server events to local listeners, and reconnects
// with capped exponential backoff:
//
//	delay = ReconnectDelay * 2^(attempt-1), attempt <= MaxReconnectAttempts
//
// A disconnect initiated by the server is followed by one immediate
// reconnect. A successful connect resets the attempt counter and rejoins
// the last joined session.
package realtime
