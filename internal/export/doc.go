// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a chat transcript to disk.
//
// # Supported Formats
//
//   - JSON: the list of {type, content, timestamp} objects the web client
//     produced, with content as the rendered plain text
//   - Markdown: readable transcript, video links included
//   - HTML: standalone page with the rendered bubbles and video players
//
// # Usage
//
//	doc := export.FromConversation(view.Conversation(), client.BaseURL())
//	path, err := export.ToFile(doc, export.NewJSONExporter(nil), opts)
//
// Files are named chat_export_<session id> plus the format extension.
package export
