// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/emlinh-tui/internal/app"
	"github.com/jeranaias/emlinh-tui/internal/config"
	"github.com/jeranaias/emlinh-tui/internal/logging"
	"github.com/jeranaias/emlinh-tui/internal/notify"
)

// Version information, set by main from build flags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// SHARED STATE
// =============================================================================

// runtime is the state shared by every command of one invocation.
type runtime struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	baseURL    string
	debug      bool
	jsonOut    bool

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

// loadConfig reads configuration once and applies flag overrides.
func (r *runtime) loadConfig() (*config.Config, error) {
	if r.cfg != nil {
		return r.cfg, nil
	}
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return nil, &ConfigError{Path: r.configPath, Err: err}
	}
	if r.baseURL != "" {
		cfg.Server.BaseURL = strings.TrimRight(r.baseURL, "/")
	}
	r.cfg = cfg
	return cfg, nil
}

// setupLogging opens the rotating log. Headless commands with --debug
// also mirror records to stderr.
func (r *runtime) setupLogging(headless bool) error {
	if r.logger != nil {
		return nil
	}
	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	path, err := cfg.LogPath()
	if err != nil {
		return &ConfigError{Err: err}
	}
	level := cfg.Logging.Level
	if r.debug {
		level = "debug"
	}
	logger, closer, err := logging.New(logging.Options{
		Level:      level,
		File:       path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Stderr:     headless && r.debug,
	})
	if err != nil {
		// Logging is best effort.
		logger, closer = logging.Discard(), nil
		fmt.Fprintln(r.errOut, WarningStyle.Render("log file unavailable: "+err.Error()))
	}
	r.logger, r.closer = logger, closer
	return nil
}

// openApp wires the client components for a headless command. Toasts
// print to stderr.
func (r *runtime) openApp(withRealtime bool) (*app.App, error) {
	if err := r.setupLogging(true); err != nil {
		return nil, err
	}
	opts := app.Options{
		Notifier:        notify.NewConsole(r.errOut),
		DisableRealtime: !withRealtime,
	}
	if r.jsonOut {
		opts.Notifier = notify.Discard
	}
	return app.New(r.cfg, r.logger, opts)
}

func (r *runtime) close() {
	if r.closer != nil {
		_ = r.closer.Close()
	}
}

// printJSON writes a success envelope for command.
func (r *runtime) printJSON(command string, data interface{}) error {
	return NewJSONResponse(command, data).Write(r.out, r.out == os.Stdout && ColorsEnabled())
}

// runSync executes a component command on the calling goroutine.
func runSync(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCmd builds the command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	rt := &runtime{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "emlinh",
		Short: "Terminal client for the Em Linh AI content assistant",
		Long: heredoc.Doc(`
			emlinh talks to the Em Linh backend: chat with the AI assistant,
			create short videos and browse the video library and chat history.

			Without a subcommand the full-screen interface starts.
		`),
		Example: heredoc.Doc(`
			# Start the interface
			emlinh

			# Reopen a stored conversation
			emlinh --session session_1718000000000_abc123xyz

			# Ask one question in brainstorm mode
			emlinh ask -t brainstorm "5 ý tưởng video về du lịch Đà Lạt"

			# List completed videos as JSON
			emlinh videos list --status completed --json
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _ := cmd.Flags().GetString("session")
			return runTUI(cmd.Context(), rt, session)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			rt.close()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&rt.configPath, "config", "c", "", "config file (default ~/.emlinh/config.toml)")
	pf.StringVar(&rt.baseURL, "url", "", "backend base URL (overrides config)")
	pf.BoolVarP(&rt.debug, "debug", "d", false, "debug logging")
	pf.BoolVar(&rt.jsonOut, "json", false, "machine-readable output")
	root.Flags().StringP("session", "s", "", "reopen a stored conversation")

	root.AddCommand(
		newTUICmd(rt),
		newAskCmd(rt),
		newChatCmd(rt),
		newVideoCmd(rt),
		newVideosCmd(rt),
		newRenderCmd(rt),
		newTTSCmd(rt),
		newIdeasCmd(rt),
		newHistoryCmd(rt),
		newExportCmd(rt),
		newHealthCmd(rt),
		newConfigCmd(rt),
		newVersionCmd(rt),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd(os.Stdout, os.Stderr)
	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitSuccess
	}
	jsonOut, _ := cmd.Flags().GetBool("json")
	DisplayError(os.Stderr, err, jsonOut)
	return ExitCode(err)
}

func newVersionCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]string{
				"version":    Version,
				"git_commit": GitCommit,
				"build_date": BuildDate,
			}
			if rt.jsonOut {
				return rt.printJSON("version", info)
			}
			fmt.Fprintf(rt.out, "emlinh %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}
