// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across emlinh packages:
// atomic file writes, display-width aware truncation and
// accent-insensitive text matching.
package util
