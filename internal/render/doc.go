// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns chat text into safe HTML and terminal output.
//
// All text is HTML-escaped before a small markdown subset is applied:
// **bold**, *italic*, `code` and line breaks. AI replies that announce a
// created video get a player block appended. When the caller knows the
// video it passes a structured model.VideoRef; otherwise the legacy
// phrase detection in detect.go is used as a fallback.
package render
