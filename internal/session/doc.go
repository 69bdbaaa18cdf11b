// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the chat session id.
//
// A session id is either adopted (the --session flag) or generated as
// "session_<unix ms>_<9 base36 chars>". It is held for the life of the
// chat view and only replaced by the manual new-session action, which
// leaves the old real-time room, joins the new one and publishes
// events.NewSession so other components can reset.
//
// # Usage
//
//	mgr := session.NewManager(session.Options{Store: client, Joiner: sock, View: view})
//	cmd := mgr.Init(flagSession) // non-nil when history must be loaded
//
// The package also edits the title, description and tags of the current
// session (LoadDetails and SaveDetails) and tracks activity for the
// status bar.
package session
