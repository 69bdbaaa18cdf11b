// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings. Bindings that would collide with
// typing are only active outside the prompt box.
type KeyMap struct {
	// Global
	Quit       key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Help       key.Binding
	NewSession key.Binding
	Export     key.Binding
	CopyReply  key.Binding
	CopyID     key.Binding
	CycleType  key.Binding
	Reload     key.Binding
	Dismiss    key.Binding

	// Chat
	Submit      key.Binding
	Newline     key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	QuickPrompt key.Binding

	// Lists
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Open     key.Binding
	Back     key.Binding
	Search   key.Binding
	Filter   key.Binding
	Sort     key.Binding
	Clear    key.Binding
	Delete   key.Binding
	Download key.Binding
	Create   key.Binding
	Favorite key.Binding
	Archive  key.Binding
	Rename   key.Binding
	Continue key.Binding

	// Confirm dialogs
	Yes key.Binding
	No  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous tab"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "toggle help"),
		),
		NewSession: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "export chat"),
		),
		CopyReply: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy last reply"),
		),
		CopyID: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "copy session id"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "cycle chat mode"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reload"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "dismiss toast"),
		),

		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("A-Enter", "new line"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		QuickPrompt: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3"),
			key.WithHelp("A-1..3", "quick prompt"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous page"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next page"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Download: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "download"),
		),
		Create: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new video"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "star"),
		),
		Archive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "archive"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		Continue: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "continue chat"),
		),

		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "cancel"),
		),
	}
}

// =============================================================================
// HELP
// =============================================================================

// helpMap adapts KeyMap to help.KeyMap for the active tab.
type helpMap struct {
	keys KeyMap
	tab  Tab
}

// ShortHelp implements help.KeyMap.
func (h helpMap) ShortHelp() []key.Binding {
	k := h.keys
	switch h.tab {
	case TabVideos:
		return []key.Binding{k.Open, k.Search, k.Filter, k.Download, k.Delete, k.Help}
	case TabHistory:
		return []key.Binding{k.Continue, k.Search, k.Filter, k.Favorite, k.Archive, k.Help}
	default:
		return []key.Binding{k.Submit, k.NewSession, k.CycleType, k.Export, k.NextTab, k.Help}
	}
}

// FullHelp implements help.KeyMap.
func (h helpMap) FullHelp() [][]key.Binding {
	k := h.keys
	global := []key.Binding{k.NextTab, k.PrevTab, k.NewSession, k.Export, k.CopyReply, k.CopyID, k.Reload, k.Dismiss, k.Quit}
	switch h.tab {
	case TabVideos:
		return [][]key.Binding{
			{k.Up, k.Down, k.Left, k.Right, k.Open, k.Back},
			{k.Search, k.Filter, k.Sort, k.Clear, k.Create, k.Download, k.Delete},
			global,
		}
	case TabHistory:
		return [][]key.Binding{
			{k.Up, k.Down, k.Continue, k.Back},
			{k.Search, k.Filter, k.Favorite, k.Archive, k.Rename, k.Delete},
			global,
		}
	default:
		return [][]key.Binding{
			{k.Submit, k.Newline, k.PageUp, k.PageDown, k.QuickPrompt, k.CycleType},
			global,
		}
	}
}
