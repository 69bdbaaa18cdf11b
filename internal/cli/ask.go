// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jeranaias/emlinh-tui/internal/app"
	chatcore "github.com/jeranaias/emlinh-tui/internal/chat"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/render"
)

// errNothingSent is returned when a turn could not start.
var errNothingSent = errors.New("message is empty")

// askResult is the --json payload of ask.
type askResult struct {
	SessionID string            `json:"session_id"`
	Type      model.MessageType `json:"type"`
	Reply     string            `json:"reply"`
	Timestamp string            `json:"timestamp"`
	Video     *model.VideoRef   `json:"video,omitempty"`
}

func newAskCmd(rt *runtime) *cobra.Command {
	var msgType, session string
	var raw bool
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Example: heredoc.Doc(`
			emlinh ask "Viết kịch bản 30 giây về cà phê sữa đá"
			emlinh ask -t planning "Lịch đăng bài tuần này"
			echo "Tóm tắt xu hướng TikTok" | emlinh ask -
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = strings.TrimSpace(string(data))
			}
			return runAsk(rt, text, msgType, session, raw)
		},
	}
	cmd.Flags().StringVarP(&msgType, "type", "t", "", "conversation, brainstorm or planning")
	cmd.Flags().StringVarP(&session, "session", "s", "", "continue a stored conversation")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal styling")
	return cmd
}

func runAsk(rt *runtime, text, msgType, session string, raw bool) error {
	a, err := rt.openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := applyMessageType(a, msgType); err != nil {
		return err
	}
	a.Session.Init(session)

	reply, err := turn(a, text)
	if err != nil {
		return err
	}

	term, err := rt.terminal(raw)
	if err != nil {
		return err
	}
	if rt.jsonOut {
		return rt.printJSON("ask", askResult{
			SessionID: a.Session.SessionID(),
			Type:      a.Chat.MessageType(),
			Reply:     term.Markdown(reply),
			Timestamp: reply.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
			Video:     reply.Video,
		})
	}
	printMessage(rt.out, term, reply, raw)
	fmt.Fprintln(rt.errOut, DimStyle.Render("session: "+a.Session.SessionID()))
	return nil
}

// applyMessageType sets the chat mode from a flag value; "" keeps the
// configured default.
func applyMessageType(a *app.App, value string) error {
	if value == "" {
		return nil
	}
	t, ok := model.ParseMessageType(value)
	if !ok {
		return &ValidationError{Field: "type", Value: value, Reason: "unknown chat mode", Example: "--type brainstorm"}
	}
	a.Chat.SetMessageType(t)
	return nil
}

// turn sends text through the chat core and returns the AI bubble.
func turn(a *app.App, text string) (*model.Message, error) {
	msg, ok := runSync(a.Chat.Send(text)).(chatcore.ReplyMsg)
	if !ok {
		return nil, errNothingSent
	}
	a.Chat.HandleReply(msg)
	if msg.Err != nil {
		return nil, msg.Err
	}
	reply := a.Transcript.LastAIMessage()
	if reply == nil {
		return nil, errors.New("backend returned no reply")
	}
	return reply, nil
}

// terminal builds the glamour renderer for headless output.
func (rt *runtime) terminal(raw bool) (*render.Terminal, error) {
	style := GlamourStyle(rt.cfg.UI.GlamourStyle)
	if raw {
		style = "notty"
	}
	width := GetTerminalWidth()
	if ww := rt.cfg.UI.WordWrap; ww > 0 && ww < width {
		width = ww
	}
	return render.NewTerminal(style, width, rt.cfg.Server.BaseURL)
}

func printMessage(w io.Writer, term *render.Terminal, msg *model.Message, raw bool) {
	if raw {
		fmt.Fprintln(w, term.Markdown(msg))
		return
	}
	fmt.Fprintln(w, term.Render(msg))
}
