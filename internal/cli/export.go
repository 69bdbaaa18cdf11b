// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jeranaias/emlinh-tui/internal/export"
	"github.com/jeranaias/emlinh-tui/internal/session"
)

func newExportCmd(rt *runtime) *cobra.Command {
	var format, dir string
	var open bool
	cmd := &cobra.Command{
		Use:   "export <session_id>",
		Short: "Write a stored conversation to a file",
		Long: heredoc.Doc(`
			Export a conversation as JSON (the default), Markdown or a
			standalone HTML page. The file is named chat_export_<session>
			with the extension of the format.
		`),
		Example: heredoc.Doc(`
			emlinh export session_1718000000000_abc123xyz
			emlinh export session_1718000000000_abc123xyz --format md --dir ~/Documents
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := export.DefaultOptions()
			if _, err := export.ForFormat(format, opts); err != nil {
				return ErrUnsupportedFormat(format, []string{"json", "md", "html"})
			}
			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			msg, ok := runSync(a.Session.Init(args[0])).(session.HistoryMsg)
			if !ok {
				return errNothingSent
			}
			a.Session.HandleHistory(msg)
			if msg.Err != nil {
				return msg.Err
			}

			conv := a.Transcript.Conversation().Clone()
			if conv.IsEmpty() {
				return &ValidationError{Field: "session", Value: args[0], Reason: "conversation has no messages"}
			}
			if dir != "" {
				opts.OutputDir = dir
			}
			opts.IncludeTimestamps = rt.cfg.UI.ShowTimestamps
			opts.OpenAfterExport = open
			if GlamourStyle(rt.cfg.UI.GlamourStyle) == "dark" {
				opts.Theme = "dark"
			}

			path, err := export.Conversation(conv, a.Client.BaseURL(), format, opts)
			if err != nil {
				return err
			}
			if rt.jsonOut {
				return rt.printJSON("export", map[string]interface{}{
					"session_id": args[0],
					"format":     format,
					"path":       path,
					"messages":   len(conv.Messages),
				})
			}
			fmt.Fprintln(rt.out, SuccessStyle.Render("✓ "+export.ToastExported+": ")+path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, md or html")
	cmd.Flags().StringVarP(&dir, "dir", "o", "", "output directory (default: current directory)")
	cmd.Flags().BoolVar(&open, "open", false, "open the file when done")
	return cmd
}
