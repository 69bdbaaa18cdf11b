// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/emlinh-tui/internal/ideas"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

func newIdeasCmd(rt *runtime) *cobra.Command {
	var perPage int
	cmd := &cobra.Command{
		Use:   "ideas",
		Short: "List the latest content ideas",
		Long:  "Ideas are saved by the backend when a brainstorm reply contains one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()
			if perPage <= 0 {
				perPage = rt.cfg.Ideas.PerPage
			}

			p := ideas.NewPanel(ideas.Options{
				Client:  a.Client,
				PerPage: perPage,
				Timeout: rt.cfg.Timeout(),
				Logger:  a.Logger,
			})
			msg, ok := runSync(p.Load()).(ideas.LoadedMsg)
			if !ok {
				return errNothingSent
			}
			p.HandleLoaded(msg)
			if msg.Err != nil {
				return msg.Err
			}
			if rt.jsonOut {
				return rt.printJSON("ideas", p.Ideas())
			}
			printIdeas(rt.out, p)
			return nil
		},
	}
	cmd.Flags().IntVarP(&perPage, "limit", "n", 0, "number of ideas (default from config)")
	return cmd
}

func printIdeas(w io.Writer, p *ideas.Panel) {
	if p.State() != ideas.StateLoaded {
		fmt.Fprintln(w, DimStyle.Render(p.Message()))
		return
	}
	fmt.Fprintln(w, TitleStyle.Render("💡 Ý tưởng gần đây"))
	fmt.Fprintln(w, RenderSeparator())
	for _, idea := range p.Ideas() {
		printIdea(w, idea)
	}
}

func printIdea(w io.Writer, idea model.Idea) {
	fmt.Fprintf(w, "%s %s\n", ValueStyle.Render(idea.Title), DimStyle.Render("["+idea.Kind()+"]"))
	if idea.Description != "" {
		fmt.Fprintln(w, "  "+util.TruncateText(idea.Description, 100))
	}
	meta := idea.Status
	if idea.Category != "" {
		meta += " · " + idea.Category
	}
	if !idea.CreatedAt.IsZero() {
		meta += " · " + idea.CreatedAt.Format("02/01/2006")
	}
	fmt.Fprintln(w, DimStyle.Render("  "+meta))
}
