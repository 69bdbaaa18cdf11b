// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history browses stored chat sessions.
//
// The Browser lists sessions from the backend, filters them locally (all
// non-archived, favorites, archived) and by a case and diacritic
// insensitive search on title and description, loads the exchanges of
// the selected session, and edits, stars, archives or deletes it. Every
// backend call is a tea.Cmd whose result message is settled by the
// matching Handle method on the Bubble Tea goroutine.
package history
