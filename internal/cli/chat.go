// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/emlinh-tui/internal/app"
	"github.com/jeranaias/emlinh-tui/internal/config"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/render"
	"github.com/jeranaias/emlinh-tui/internal/session"
	"github.com/jeranaias/emlinh-tui/internal/video"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the plain REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from the config
// directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{line: line, historyFile: filepath.Join(configDir, "chat_history")}
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// ReadInput reads one line. Non-empty input is added to history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (c *ChatCLI) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

var replCommands = []string{"/help", "/quit", "/new", "/type", "/video", "/session"}

func completeCommand(line string) []string {
	if !strings.HasPrefix(line, "/") {
		return nil
	}
	var out []string
	for _, c := range replCommands {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

func newChatCmd(rt *runtime) *cobra.Command {
	var msgType, sessionID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Plain interactive chat without the full-screen interface",
		Long: heredoc.Doc(`
			Chat line by line. Commands inside the chat:

			  /help            show commands
			  /new             start a new session
			  /type <mode>     conversation, brainstorm or planning
			  /video <topic>   create a video in this session
			  /session         print the session id
			  /quit            exit (also Ctrl+D)
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(rt, msgType, sessionID)
		},
	}
	cmd.Flags().StringVarP(&msgType, "type", "t", "", "initial chat mode")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "continue a stored conversation")
	return cmd
}

// repl is the state of one plain chat.
type repl struct {
	rt   *runtime
	app  *app.App
	term *render.Terminal
	out  io.Writer
}

func runChat(rt *runtime, msgType, sessionID string) error {
	a, err := rt.openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := applyMessageType(a, msgType); err != nil {
		return err
	}
	term, err := rt.terminal(false)
	if err != nil {
		return err
	}
	r := &repl{rt: rt, app: a, term: term, out: rt.out}

	if msg, ok := runSync(a.Session.Init(sessionID)).(session.HistoryMsg); ok {
		r.replayHistory(msg)
	}

	fmt.Fprintln(r.out, TitleStyle.Render("💬 Em Linh"))
	fmt.Fprintln(r.out, DimStyle.Render("session "+a.Session.SessionID()+" · /help để xem lệnh · Ctrl+D để thoát"))

	cli := NewChatCLI()
	defer cli.Close()

	for {
		input, err := cli.ReadInput(r.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if quit := r.command(input); quit {
				return nil
			}
			continue
		}
		r.send(input)
	}
}

func (r *repl) prompt() string {
	mt := r.app.Chat.MessageType()
	return mt.Icon() + " " + string(mt) + " › "
}

func (r *repl) send(text string) {
	reply, err := turn(r.app, text)
	r.drain()
	if err != nil {
		if last := r.lastMessage(); last != nil && last.IsError {
			fmt.Fprintln(r.out, ErrorStyle.Render(last.Content))
			return
		}
		fmt.Fprintln(r.out, ErrorStyle.Render(err.Error()))
		return
	}
	printMessage(r.out, r.term, reply, false)
}

func (r *repl) lastMessage() *model.Message {
	msgs := r.app.Transcript.Messages()
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// drain discards queued background messages so publishers never block.
func (r *repl) drain() {
	for {
		select {
		case <-r.app.Updates():
		default:
			return
		}
	}
}

// replayHistory prints the exchanges of a reopened session.
func (r *repl) replayHistory(msg session.HistoryMsg) {
	r.app.Session.HandleHistory(msg)
	for _, m := range r.app.Transcript.Messages() {
		printMessage(r.out, r.term, m, false)
	}
	fmt.Fprintln(r.out, RenderSeparator())
}

// command runs a slash command and reports whether to quit.
func (r *repl) command(input string) bool {
	fields := strings.Fields(input)
	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "/quit", "/q", "/exit":
		return true
	case "/help", "/h":
		fmt.Fprintln(r.out, DimStyle.Render("/new · /type <mode> · /video <topic> · /session · /quit"))
	case "/new", "/n":
		r.app.Session.StartNew()
		fmt.Fprintln(r.out, SuccessStyle.Render("session "+r.app.Session.SessionID()))
	case "/session":
		fmt.Fprintln(r.out, r.app.Session.SessionID())
	case "/type", "/mode":
		if len(args) == 0 {
			r.app.Chat.SetMessageType(nextMode(r.app.Chat.MessageType()))
			return false
		}
		if err := applyMessageType(r.app, args[0]); err != nil {
			fmt.Fprintln(r.out, ErrorStyle.Render(err.Error()))
		}
	case "/video", "/v":
		r.createVideo(strings.Join(args, " "))
	default:
		fmt.Fprintln(r.out, WarningStyle.Render("Lệnh không hợp lệ: "+fields[0]))
	}
	return false
}

func (r *repl) createVideo(topic string) {
	msg, ok := runSync(r.app.Video.CreateVideo(video.CreateRequest{Topic: topic})).(video.CreateResultMsg)
	if !ok {
		fmt.Fprintln(r.out, WarningStyle.Render("Cần nhập chủ đề: /video <chủ đề>"))
		return
	}
	r.app.Video.HandleCreateResult(msg)
	if last := r.lastMessage(); last != nil {
		printMessage(r.out, r.term, last, false)
	}
	if msg.Err == nil {
		fmt.Fprintln(r.out, DimStyle.Render("theo dõi: emlinh video wait "+r.app.Video.Tracker().Current().String()+" --session "+r.app.Session.SessionID()))
	}
}

func nextMode(t model.MessageType) model.MessageType {
	for i, mt := range model.MessageTypes {
		if mt == t {
			return model.MessageTypes[(i+1)%len(model.MessageTypes)]
		}
	}
	return model.MessageTypes[0]
}
