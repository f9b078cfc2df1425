// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/linguatax/linguatax-tui/internal/config"
	"github.com/linguatax/linguatax-tui/internal/ui/chat"
	"github.com/linguatax/linguatax-tui/internal/ui/styles"
	"github.com/linguatax/linguatax-tui/internal/ui/viewer"
	"github.com/linguatax/linguatax-tui/internal/util"
)

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Pane identifies which pane has keyboard focus.
type Pane int

const (
	PaneChat Pane = iota
	PaneViewer
)

// ConfigReloadedMsg delivers a hot-reloaded configuration.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// App is the root Bubble Tea model: the chat pane, and in document
// mode the viewer pane beside it.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	theme  *styles.Theme

	chat   *chat.Model
	viewer *viewer.Model // nil in general-help mode
	focus  Pane

	width  int
	height int
}

func newApp(cfg *config.Config, logger *zap.Logger, chatPane *chat.Model, viewerPane *viewer.Model) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		theme:  styles.NewTheme(),
		chat:   chatPane,
		viewer: viewerPane,
		focus:  PaneChat,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.chat.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, a.propagateSize()

	case ConfigReloadedMsg:
		a.cfg = msg.Config
		a.chat.SetConfig(msg.Config)
		a.logger.Info("applied reloaded configuration")
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyTab && a.viewer != nil {
			if a.focus == PaneChat {
				a.focus = PaneViewer
			} else {
				a.focus = PaneChat
			}
			return a, nil
		}
		return a.routeToFocused(msg)

	// Viewer bus traffic always reaches the viewer.
	case viewer.HighlightMsg, viewer.JumpMsg:
		if a.viewer != nil {
			var cmd tea.Cmd
			a.viewer, cmd = a.viewer.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Everything else (stream, gate, spinner traffic) belongs to chat.
	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a *App) routeToFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.focus == PaneViewer && a.viewer != nil {
		a.viewer, cmd = a.viewer.Update(msg)
		return a, cmd
	}
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a *App) propagateSize() tea.Cmd {
	chatWidth := a.width
	if a.viewer != nil {
		chatWidth = a.width * 3 / 5
	}

	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(tea.WindowSizeMsg{Width: chatWidth, Height: a.height - 1})
	if a.viewer != nil {
		a.viewer, _ = a.viewer.Update(tea.WindowSizeMsg{
			Width:  a.width - chatWidth - 1,
			Height: a.height - 1,
		})
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	title := "LinguaTax"
	if s := a.chat.Session(); s != nil && s.Title != "" {
		title += " — " + util.TruncateWidth(s.Title, 40)
	}
	header := a.theme.Title.Render(title)

	if a.viewer == nil {
		return header + "\n" + a.chat.View()
	}

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.chat.View(),
		" ",
		a.viewer.View(),
	)
	return header + "\n" + strings.TrimRight(body, "\n")
}
