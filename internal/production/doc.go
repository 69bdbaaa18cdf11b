// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package production drives the manual production tools of the backend:
// rendering a composition with chosen props and generating narration
// audio from text.
//
// Both job kinds are polled rather than pushed. Poll fetches the job
// state on an interval, reports every change and stops on a terminal
// status.
package production
