// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/emlinh-tui/internal/app"
	"github.com/jeranaias/emlinh-tui/internal/config"
	"github.com/jeranaias/emlinh-tui/internal/ui/chat"
)

func newTUICmd(rt *runtime) *cobra.Command {
	var session, exportDir string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen interface (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUIWith(cmd.Context(), rt, session, exportDir)
		},
	}
	cmd.Flags().StringVarP(&session, "session", "s", "", "reopen a stored conversation")
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "directory for /export (default: working directory)")
	return cmd
}

func runTUI(ctx context.Context, rt *runtime, session string) error {
	return runTUIWith(ctx, rt, session, "")
}

func runTUIWith(ctx context.Context, rt *runtime, session, exportDir string) error {
	if err := rt.setupLogging(false); err != nil {
		return err
	}
	cfg := rt.cfg
	logger := rt.logger

	a, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	relay := &chat.Relay{}
	if w := rt.watchConfig(relay); w != nil {
		defer w.Close()
	}

	m := chat.New(a, chat.Options{
		InitialSession: session,
		ExportDir:      exportDir,
		Relay:          relay,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	relay.Attach(p)

	logger.Info("starting tui", "version", Version, "base_url", cfg.Server.BaseURL, "session", session)
	a.Start(ctx)

	if _, err := p.Run(); err != nil {
		logger.Error("tui exited with error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// watchConfig reloads the config file into the running program. It
// returns nil when there is nothing to watch.
func (rt *runtime) watchConfig(relay *chat.Relay) *config.Watcher {
	path := rt.configPath
	if path == "" {
		path = existingConfigPath()
	}
	if path == "" {
		return nil
	}
	baseURL := rt.baseURL
	w, err := config.NewWatcher(path, func(cfg *config.Config) {
		if baseURL != "" {
			cfg.Server.BaseURL = strings.TrimRight(baseURL, "/")
		}
		rt.logger.Info("config reloaded", "path", path)
		relay.Send(chat.ConfigReloadedMsg{Config: cfg})
	}, func(err error) {
		rt.logger.Warn("config reload failed", "path", path, "error", err)
	})
	if err != nil {
		rt.logger.Warn("config watcher unavailable", "error", err)
		return nil
	}
	if err := w.Watch(); err != nil {
		rt.logger.Warn("config watch failed", "path", path, "error", err)
		_ = w.Close()
		return nil
	}
	return w
}

// existingConfigPath returns the first config file present in the config
// directory, in load order.
func existingConfigPath() string {
	for _, ext := range []string{"toml", "yaml", "json"} {
		p, err := config.ConfigPath(ext)
		if err != nil {
			return ""
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
