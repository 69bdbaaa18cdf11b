// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple - brand, selected tab, assistant border
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - user bubbles, info toasts
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - success
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - warnings, in-progress states
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Blue - primary actions, published ideas
var Blue = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// =============================================================================
// SURFACES AND TEXT
// =============================================================================

var (
	SurfaceDim    = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
	SurfaceBright = lipgloss.AdaptiveColor{Light: "#FAFAFA", Dark: "#313244"}
	Overlay       = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#11111B"}
)

// =============================================================================
// STATUS COLORS
// =============================================================================

// StatusColor maps a status name ("primary", "success", ...) to a color.
// Unknown names are secondary.
func StatusColor(name string) lipgloss.AdaptiveColor {
	switch name {
	case "primary":
		return Blue
	case "success":
		return Emerald
	case "warning":
		return Amber
	case "danger", "error":
		return Rose
	case "info":
		return Cyan
	default:
		return TextSecondary
	}
}

// VideoStatusColor colors a library video status.
func VideoStatusColor(status string) lipgloss.AdaptiveColor {
	switch status {
	case "completed":
		return Emerald
	case "rendering":
		return Amber
	case "failed":
		return Rose
	default:
		return TextSecondary
	}
}

// StatusIndicators pairs every state with a shape so color is never the
// only signal.
var StatusIndicators = struct {
	Success      string
	Error        string
	Warning      string
	Info         string
	Connected    string
	Disconnected string
	Favorite     string
	Archived     string
}{
	Success:      "✓",
	Error:        "✗",
	Warning:      "⚠",
	Info:         "ℹ",
	Connected:    "●",
	Disconnected: "○",
	Favorite:     "★",
	Archived:     "▣",
}
