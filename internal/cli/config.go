// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - config command: show, path, init, get, set and keys.
//
// Examples:
//   emlinh config                             Show the effective configuration
//   emlinh config set server.base_url http://10.0.0.5:5000
//   emlinh config set video.voice alloy
//   emlinh config get chat.default_type
//   emlinh config init --force                Rewrite the file with defaults
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jeranaias/emlinh-tui/internal/config"
)

func newConfigCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Long: heredoc.Doc(`
			Configuration lives in ~/.emlinh/config.toml (config.yaml and
			config.json are read when no TOML file exists). EMLINH_* environment
			variables and a .env file in the working directory override it.
			Set EMLINH_HOME to use another directory.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(rt)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigShow(rt)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigPath(rt)
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List every settable key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if rt.jsonOut {
					return rt.printJSON("config keys", config.Keys())
				}
				for _, k := range config.Keys() {
					fmt.Fprintln(rt.out, k)
				}
				return nil
			},
		},
		newConfigGetCmd(rt),
		newConfigSetCmd(rt),
		newConfigInitCmd(rt),
	)
	return cmd
}

// targetPath is the file that set and init write.
func (rt *runtime) targetPath() (string, error) {
	if rt.configPath != "" {
		return rt.configPath, nil
	}
	if path := existingConfigPath(); path != "" && strings.HasSuffix(path, ".toml") {
		return path, nil
	}
	return config.ConfigPath("toml")
}

func runConfigShow(rt *runtime) error {
	cfg, err := rt.loadConfig()
	if err != nil {
		return err
	}
	if rt.jsonOut {
		return rt.printJSON("config show", cfg)
	}
	src := cfg.String()
	if ColorsEnabled() && rt.out == os.Stdout {
		if out, ok := highlight(src, "toml"); ok {
			src = out
		}
	}
	_, err = io.WriteString(rt.out, src)
	return err
}

func runConfigPath(rt *runtime) error {
	path := rt.configPath
	if path == "" {
		path = existingConfigPath()
	}
	if path == "" {
		p, err := config.ConfigPath("toml")
		if err != nil {
			return &ConfigError{Err: err}
		}
		path = p
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if rt.jsonOut {
		return rt.printJSON("config path", map[string]interface{}{"path": path, "exists": exists})
	}
	fmt.Fprintln(rt.out, path)
	if !exists {
		fmt.Fprintln(rt.errOut, DimStyle.Render("(chưa tồn tại, dùng: emlinh config init)"))
	}
	return nil
}

// =============================================================================
// GET / SET
// =============================================================================

func newConfigGetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rt.loadConfig()
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return unknownKey(args[0], err)
			}
			if rt.jsonOut {
				return rt.printJSON("config get", map[string]interface{}{"key": args[0], "value": v})
			}
			fmt.Fprintln(rt.out, v)
			return nil
		},
	}
}

func newConfigSetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Change one value and save the file",
		Example: "emlinh config set video.reject_concurrent true",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			cfg, err := rt.loadConfig()
			if err != nil {
				return err
			}
			cfg = cfg.Clone()
			if err := cfg.Set(key, value); err != nil {
				return unknownKey(key, err)
			}
			if err := cfg.Validate(); err != nil {
				return &ConfigError{Err: err}
			}

			path, err := rt.targetPath()
			if err != nil {
				return &ConfigError{Err: err}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			rt.cfg = cfg

			if rt.jsonOut {
				return rt.printJSON("config set", map[string]interface{}{"key": key, "value": value, "path": path})
			}
			fmt.Fprintln(rt.out, SuccessStyle.Render("✓ ")+RenderField(key, value))
			fmt.Fprintln(rt.errOut, DimStyle.Render("đã lưu vào "+path))
			return nil
		},
	}
}

func unknownKey(key string, err error) error {
	if errors.Is(err, config.ErrUnknownKey) {
		return &ValidationError{Field: "key", Value: key, Reason: "unknown config key", Example: "emlinh config keys"}
	}
	return &ValidationError{Field: key, Reason: err.Error()}
}

// =============================================================================
// INIT
// =============================================================================

func newConfigInitCmd(rt *runtime) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := rt.targetPath()
			if err != nil {
				return &ConfigError{Err: err}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return &ValidationError{Field: "force", Reason: "config file already exists: " + path, Example: "emlinh config init --force"}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			if rt.jsonOut {
				return rt.printJSON("config init", map[string]interface{}{"path": path})
			}
			fmt.Fprintln(rt.out, SuccessStyle.Render("✓ Đã tạo "+path))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
