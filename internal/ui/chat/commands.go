// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/notify"
	"github.com/jeranaias/emlinh-tui/internal/video"
)

// Toast texts owned by the TUI.
const (
	ToastConfigReloaded = "Đã tải lại cấu hình"
	ToastUnknownCommand = "Lệnh không hợp lệ: "
	ToastUnknownType    = "Chế độ không hợp lệ: "
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command.
type CommandHandler func(m Model, args []string) (Model, tea.Cmd)

// commandHandlers maps command names to their handler functions.
var commandHandlers map[string]CommandHandler

func init() {
	commandHandlers = map[string]CommandHandler{
		"help":   handleHelpCommand,
		"h":      handleHelpCommand,
		"quit":   handleQuitCommand,
		"q":      handleQuitCommand,
		"new":    handleNewCommand,
		"n":      handleNewCommand,
		"video":  handleVideoCommand,
		"v":      handleVideoCommand,
		"type":   handleTypeCommand,
		"mode":   handleTypeCommand,
		"export": handleExportCommand,
		"e":      handleExportCommand,
		"copy":   handleCopyCommand,
		"id":     handleCopyIDCommand,
		"health": handleHealthCommand,
		"prompt": handlePromptCommand,
		"p":      handlePromptCommand,
	}
}

func isCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// runCommand processes a slash command typed in the prompt box.
func (m Model) runCommand(content string) (Model, tea.Cmd) {
	parts := strings.Fields(content)
	if len(parts) == 0 {
		return m, nil
	}
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	handler, ok := commandHandlers[name]
	if !ok {
		m.app.Notifier.Notify(notify.Warning, ToastUnknownCommand+parts[0])
		return m, nil
	}
	return handler(m, parts[1:])
}

func handleHelpCommand(m Model, _ []string) (Model, tea.Cmd) {
	m.showHelp = !m.showHelp
	m.layout()
	return m, nil
}

func handleQuitCommand(m Model, _ []string) (Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func handleNewCommand(m Model, _ []string) (Model, tea.Cmd) {
	return m.startNewSession()
}

// handleVideoCommand starts a video job: /video <topic>.
func handleVideoCommand(m Model, args []string) (Model, tea.Cmd) {
	topic := strings.Join(args, " ")
	return m, m.app.Video.CreateVideo(video.CreateRequest{Topic: topic})
}

// handleTypeCommand sets the chat mode: /type brainstorm.
func handleTypeCommand(m Model, args []string) (Model, tea.Cmd) {
	if len(args) == 0 {
		m.cycleMessageType()
		return m, nil
	}
	t, ok := model.ParseMessageType(args[0])
	if !ok {
		m.app.Notifier.Notify(notify.Warning, ToastUnknownType+args[0])
		return m, nil
	}
	m.app.Chat.SetMessageType(t)
	m.input.Placeholder = m.app.Transcript.Placeholder()
	return m, nil
}

// handleExportCommand exports the chat: /export [json|md|html].
func handleExportCommand(m Model, args []string) (Model, tea.Cmd) {
	format := "json"
	if len(args) > 0 {
		format = args[0]
	}
	return m, m.exportCmd(format)
}

func handleCopyCommand(m Model, _ []string) (Model, tea.Cmd) {
	m.copyLastReply()
	return m, nil
}

func handleCopyIDCommand(m Model, _ []string) (Model, tea.Cmd) {
	m.copyText(m.app.Session.SessionID())
	return m, nil
}

func handleHealthCommand(m Model, _ []string) (Model, tea.Cmd) {
	return m, m.app.CheckHealth()
}

// handlePromptCommand runs a quick prompt by number: /prompt 2.
func handlePromptCommand(m Model, args []string) (Model, tea.Cmd) {
	if len(args) == 0 || len(args[0]) != 1 {
		return m, nil
	}
	return m.useQuickPrompt(int(args[0][0] - '1'))
}

func nextMessageType(t model.MessageType) model.MessageType {
	for i, mt := range model.MessageTypes {
		if mt == t {
			return model.MessageTypes[(i+1)%len(model.MessageTypes)]
		}
	}
	return model.MessageTypes[0]
}
