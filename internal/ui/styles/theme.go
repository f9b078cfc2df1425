// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects the
// terminal's color capability once at construction.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Transcript
	RoleTag         lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	PlanText        lipgloss.Style
	StageLabel      lipgloss.Style
	Timestamp       lipgloss.Style
	CitationTag     lipgloss.Style

	// Chrome
	Title       lipgloss.Style
	StatusBar   lipgloss.Style
	ErrorBanner lipgloss.Style

	// Viewer
	PageHeader lipgloss.Style
	Highlight  lipgloss.Style
}

// NewTheme builds the theme for the current terminal.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}

	t.RoleTag = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Padding(0, 1)

	t.PlanText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(0, 1)

	t.StageLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Italic(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.CitationTag = lipgloss.NewStyle().
		Foreground(Blue).
		Underline(true)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ErrorBanner = lipgloss.NewStyle().
		Foreground(ErrorFg).
		Background(ErrorBg).
		Padding(0, 1)

	t.PageHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.Highlight = lipgloss.NewStyle().
		Foreground(HighlightFg).
		Background(HighlightBg)

	return t
}
