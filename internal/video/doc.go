// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package video starts video jobs from the chat and reconciles their
// progress notifications.
//
// A Tracker holds the one job the chat is waiting for. Progress events
// for any other job id are ignored, which covers late events from a
// replaced job, events from other clients in the same room, and the
// request_received event that arrives before the job id is known.
//
// There is no completion timeout: a job that never reports completed or
// failed leaves the typing indicator up until the next job or session.
package video
