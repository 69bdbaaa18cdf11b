// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library is the video library browser: a paged list of
// rendered videos with a server-side status filter, client-side sort and
// fuzzy search, a detail view, deletion and download of the file.
package library
