// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for emlinh.
//
// Supports TOML, YAML and JSON configuration files, a .env file, sensible
// defaults, environment variable overrides, validation and hot reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Backend base URL, timeouts and request rate
//   - RealtimeConfig: Socket.IO path and reconnect backoff
//   - VideoConfig: Defaults for video creation requests
//   - Watcher: fsnotify-based reloader
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (EMLINH_*), including those from ./.env
//   - ~/.emlinh/config.toml
//   - ~/.emlinh/config.yaml
//   - ~/.emlinh/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	client := api.NewClientWithConfig(cfg.APIClientConfig())
package config
