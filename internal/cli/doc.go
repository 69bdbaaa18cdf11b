// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the emlinh command line.
//
// The root command starts the full-screen TUI. The other commands reuse
// the same client components headless: they run a component's tea.Cmd on
// the calling goroutine and hand the result to its Handle method, so the
// CLI and the TUI share one code path for every backend call. The
// production commands (render, tts) have no TUI counterpart and call the
// backend client directly.
//
// # Commands
//
//   - tui: full-screen chat, video library and history (default)
//   - ask: one message, one reply
//   - chat: line-based REPL
//   - video create|wait: start a video job and follow its progress
//   - videos list|show|delete|download: the video library
//   - render compositions|audio|start|status|jobs: manual renders
//   - tts generate|status|jobs|voices: narration audio
//   - ideas: latest content ideas
//   - history list|show|search|favorite|archive|delete|rename
//   - export: write a stored conversation as JSON, Markdown or HTML
//   - health: backend reachability
//   - config show|path|keys|get|set|init
//   - version
//
// Every command accepts --json and prints a JSONResponse envelope.
// Errors map to exit codes through ExitCode.
package cli
