// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main Bubble Tea model of the emlinh TUI.

The model owns no domain state of its own. It renders the components wired
by internal/app and routes their messages:

  - Chat tab: transcript viewport, prompt box, typing indicator with video
    progress bar, and the recent-ideas sidebar.
  - Videos tab: the paged video library with status filter, sort, fuzzy
    search, detail pane, delete and download.
  - History tab: stored conversations with filter, search, favorite,
    archive, rename, delete and continue.

Background events (socket progress, connection changes, bus events that
need a fetch) arrive through app.WaitForUpdate. Download progress and config
reloads come from other goroutines and are delivered with Relay.Send.

Slash commands typed in the prompt (/new, /video, /export, ...) are handled
by the registry in commands.go.
*/
package chat
