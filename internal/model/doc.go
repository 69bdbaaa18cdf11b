// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the chat client.
//
// These are view-state entities: nothing here is persisted locally. The
// backend owns chats, videos, ideas and sessions; the client only holds
// what it is currently rendering.
//
// # Key Types
//
//   - Conversation: Ordered transcript for one chat session
//   - Message: A single rendered chat bubble (user or ai)
//   - MessageType: The chat mode sent with each message (conversation, brainstorm, planning)
//   - ProgressEvent: A video_progress notification pushed over the realtime channel
//   - Video, Idea, SessionSummary, HistoryEntry: Backend entities
//   - Timestamp, ID: Lenient JSON scalars for backend payloads
//
// # Usage
//
//	conv := model.NewConversation("session_1718000000000_abc123xyz")
//	conv.AddUserMessage("Xin chào")
//	conv.AddAIMessage("Chào bạn!", time.Now())
package model
