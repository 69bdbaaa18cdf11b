// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the emlinh backend.
//
// Every endpoint answers with a JSON envelope carrying a "success" flag.
// A false flag is surfaced as a *ClientError of type ErrTypeBackend whose
// Message is the backend's own message, so callers can show it verbatim.
//
// # Key Types
//
//   - Client: Thread-safe backend client
//   - ClientConfig: Base URL, timeout and request rate
//   - ClientError: Categorized error with the underlying cause
//   - SessionPatch: Partial session update (only set fields are sent)
//
// # Usage
//
//	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: "http://127.0.0.1:5000"})
//	resp, err := client.SendMessage(ctx, api.SendRequest{
//	    Message:   "Xin chào",
//	    SessionID: sessionID,
//	    Type:      model.TypeConversation,
//	})
//	if api.IsBackend(err) {
//	    // show api.BackendMessage(err)
//	}
package api
