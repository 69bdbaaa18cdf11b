// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/app"
	"github.com/jeranaias/emlinh-tui/internal/history"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/session"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

func newHistoryCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"sessions"},
		Short:   "Manage stored conversations",
	}
	cmd.AddCommand(
		newHistoryListCmd(rt),
		newHistoryShowCmd(rt),
		newHistorySearchCmd(rt),
		newHistoryToggleCmd(rt, "favorite", "Toggle the favorite flag"),
		newHistoryToggleCmd(rt, "archive", "Toggle the archived flag"),
		newHistoryDeleteCmd(rt),
		newHistoryRenameCmd(rt),
	)
	return cmd
}

// loadSessions opens a browser with the session list loaded.
func loadSessions(a *app.App) error {
	msg, ok := runSync(a.History.Load()).(history.SessionsMsg)
	if !ok {
		return errNothingSent
	}
	a.History.HandleSessions(msg)
	return msg.Err
}

// selectSession loads the list and makes id current.
func selectSession(a *app.App, id string) (*model.SessionSummary, error) {
	if err := loadSessions(a); err != nil {
		return nil, err
	}
	a.History.Select(id)
	s := a.History.Selected()
	if s == nil {
		return nil, &api.ClientError{Type: api.ErrTypeNotFound, Message: "session not found: " + id}
	}
	return s, nil
}

// =============================================================================
// LIST
// =============================================================================

func newHistoryListCmd(rt *runtime) *cobra.Command {
	var filter, search string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored conversations",
		Example: heredoc.Doc(`
			emlinh history list
			emlinh history list --filter favorite
			emlinh history list --search "cà phê"
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := history.ParseFilter(filter)
			if filter != "" && f.String() != filter {
				return &ValidationError{Field: "filter", Value: filter, Reason: "unknown filter", Example: "--filter archived"}
			}
			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := loadSessions(a); err != nil {
				return err
			}
			a.History.SetFilter(f)
			a.History.SetSearch(search)
			if rt.jsonOut {
				return rt.printJSON("history list", a.History.Visible())
			}
			printSessions(rt.out, a.History)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "all, favorite or archived")
	cmd.Flags().StringVar(&search, "search", "", "filter by title or description")
	return cmd
}

func printSessions(w io.Writer, b *history.Browser) {
	if text := b.EmptyText(); text != "" {
		fmt.Fprintln(w, DimStyle.Render(text))
		return
	}
	for _, s := range b.Visible() {
		mark := " "
		if s.IsFavorite {
			mark = WarningStyle.Render("★")
		}
		title := s.Title
		if title == "" {
			title = s.SessionID
		}
		line := fmt.Sprintf("%s %s", mark, ValueStyle.Render(util.TruncateText(title, 50)))
		if s.IsArchived {
			line += DimStyle.Render(" [lưu trữ]")
		}
		fmt.Fprintln(w, line)
		meta := fmt.Sprintf("  %s · %d tin nhắn · %s", s.SessionID, s.MessageCount, b.TimeAgo(s.LastMessageAt.Time))
		fmt.Fprintln(w, DimStyle.Render(meta))
		if preview := history.PreviewOf(s); preview != "" {
			fmt.Fprintln(w, "  "+preview)
		}
	}
}

// =============================================================================
// SHOW
// =============================================================================

func newHistoryShowCmd(rt *runtime) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <session_id>",
		Short: "Print the exchanges of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			msg, ok := runSync(a.History.Select(args[0])).(history.MessagesMsg)
			if !ok {
				return errNothingSent
			}
			a.History.HandleMessages(msg)
			if msg.Err != nil {
				return msg.Err
			}
			if rt.jsonOut {
				return rt.printJSON("history show", msg.Entries)
			}
			if len(msg.Entries) == 0 {
				fmt.Fprintln(rt.out, DimStyle.Render(history.NoMessagesText))
				return nil
			}

			// Replay through the session so replies get the same formatting
			// as live ones.
			replay := session.HistoryMsg{SessionID: args[0], Entries: msg.Entries}
			a.Session.Init(args[0])
			a.Session.HandleHistory(replay)
			term, err := rt.terminal(raw)
			if err != nil {
				return err
			}
			for _, m := range a.Transcript.Messages() {
				printMessage(rt.out, term, m, raw)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal styling")
	return cmd
}

// =============================================================================
// SEARCH
// =============================================================================

func newHistorySearchCmd(rt *runtime) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the text of every stored exchange",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.Timeout())
			defer cancel()
			results, err := a.Client.Search(ctx, query, limit)
			if err != nil {
				return err
			}
			if rt.jsonOut {
				return rt.printJSON("history search", results)
			}
			if len(results) == 0 {
				fmt.Fprintln(rt.out, DimStyle.Render(history.NoResultsText))
				return nil
			}
			for _, e := range results {
				fmt.Fprintln(rt.out, DimStyle.Render(e.SessionID+" · "+a.History.TimeAgo(e.Timestamp.Time)))
				fmt.Fprintln(rt.out, "  "+PromptStyle.Render("›")+" "+util.TruncateText(e.UserMessage, 90))
				fmt.Fprintln(rt.out, "  "+util.TruncateText(e.AIResponse, 90))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results")
	return cmd
}

// =============================================================================
// MUTATIONS
// =============================================================================

func newHistoryToggleCmd(rt *runtime, name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <session_id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := selectSession(a, args[0]); err != nil {
				return err
			}
			toggle := a.History.ToggleFavorite
			if name == "archive" {
				toggle = a.History.ToggleArchive
			}
			if err := runAction(a, toggle()); err != nil {
				return err
			}
			s := a.History.Selected()
			if s == nil {
				return nil
			}
			if rt.jsonOut {
				return rt.printJSON("history "+name, s)
			}
			state := "tắt"
			if (name == "favorite" && s.IsFavorite) || (name == "archive" && s.IsArchived) {
				state = "bật"
			}
			fmt.Fprintln(rt.out, SuccessStyle.Render(fmt.Sprintf("✓ %s: %s (%s)", history.ToastUpdated, args[0], state)))
			return nil
		},
	}
}

// runAction executes a history mutation and refreshes the list.
func runAction(a *app.App, cmd tea.Cmd) error {
	msg, ok := runSync(cmd).(history.ActionMsg)
	if !ok {
		return errNothingSent
	}
	reload := a.History.HandleAction(msg)
	if msg.Err != nil {
		return msg.Err
	}
	if list, ok := runSync(reload).(history.SessionsMsg); ok {
		a.History.HandleSessions(list)
	}
	return nil
}

func newHistoryDeleteCmd(rt *runtime) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <session_id>",
		Aliases: []string{"rm"},
		Short:   "Delete a conversation and its messages",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), rt.errOut, fmt.Sprintf("Xóa cuộc hội thoại %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(rt.errOut, DimStyle.Render("Đã hủy"))
					return nil
				}
			}
			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			a.History.Select(args[0])
			if err := runAction(a, a.History.Delete()); err != nil {
				return err
			}
			if rt.jsonOut {
				return rt.printJSON("history delete", map[string]interface{}{"session_id": args[0], "deleted": true})
			}
			fmt.Fprintln(rt.out, SuccessStyle.Render("✓ "+history.ToastDeleted))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

func newHistoryRenameCmd(rt *runtime) *cobra.Command {
	var title, description, tags string
	cmd := &cobra.Command{
		Use:   "rename <session_id>",
		Short: "Edit the title, description and tags of a conversation",
		Example: heredoc.Doc(`
			emlinh history rename session_1718000000000_abc123xyz --title "Kế hoạch tháng 7"
			emlinh history rename session_1718000000000_abc123xyz --tags "tiktok, cà phê"
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			// Unset flags keep the stored values.
			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.Timeout())
			stored, err := a.Client.Session(ctx, args[0])
			cancel()
			if err != nil {
				return err
			}
			current := session.Details{Title: stored.Title, Description: stored.Description, Tags: stored.Tags}
			if !cmd.Flags().Changed("title") {
				title = current.Title
			}
			if !cmd.Flags().Changed("description") {
				description = current.Description
			}
			if !cmd.Flags().Changed("tags") {
				tags = current.TagsText()
			}
			a.Session.Init(args[0])
			if strings.TrimSpace(title) == "" {
				return &ValidationError{Field: "title", Reason: session.ToastTitleRequired, Example: `--title "Kế hoạch tháng 7"`}
			}

			saved, ok := runSync(a.Session.SaveDetails(title, description, tags)).(session.DetailsSavedMsg)
			if !ok {
				return errNothingSent
			}
			a.Session.HandleDetailsSaved(saved)
			if saved.Err != nil {
				return saved.Err
			}
			if rt.jsonOut {
				return rt.printJSON("history rename", map[string]interface{}{
					"session_id":  args[0],
					"title":       strings.TrimSpace(title),
					"description": strings.TrimSpace(description),
					"tags":        session.ParseTags(tags),
				})
			}
			fmt.Fprintln(rt.out, SuccessStyle.Render("✓ "+session.ToastDetailsSaved))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	return cmd
}
