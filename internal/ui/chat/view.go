// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation pane for the TUI.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/linguatax/linguatax-tui/internal/model"
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := m.input.Height() + 2
	m.vp.Width = width
	m.vp.Height = height - inputHeight - 2
	if m.vp.Height < 3 {
		m.vp.Height = 3
	}
	m.input.SetWidth(width - 4)

	// Re-render at the new wrap width.
	m.renderer = nil
	m.refreshViewport()
}

// refreshViewport re-renders the transcript and keeps the tail in view.
func (m *Model) refreshViewport() {
	m.vp.SetContent(m.renderTranscript())
	m.vp.GotoBottom()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the pane: transcript, error banner, composer.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.vp.View())
	b.WriteString("\n")

	if m.lastErr != nil {
		b.WriteString(m.theme.ErrorBanner.Render(m.errorLine()))
		b.WriteString("\n")
	}

	if m.gate != nil && !m.gate.Terminal() {
		b.WriteString(m.theme.StageLabel.Render(
			m.spin.View() + " Preparing your document..."))
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	return b.String()
}

func (m *Model) errorLine() string {
	if m.lastErr.Context != "" {
		return fmt.Sprintf("✗ %s: %v (esc to dismiss)", m.lastErr.Context, m.lastErr.Err)
	}
	return fmt.Sprintf("✗ %v (esc to dismiss)", m.lastErr.Err)
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

func (m *Model) renderTranscript() string {
	var parts []string
	for _, msg := range m.session.Messages {
		switch msg.Role {
		case model.RoleUser:
			parts = append(parts, m.renderUser(msg))
		case model.RoleAssistant:
			parts = append(parts, m.renderAssistant(msg))
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderUser(msg *model.ChatMessage) string {
	label := m.theme.RoleTag.Render("You")
	return label + "\n" + m.theme.UserBubble.Render(msg.DisplayContent())
}

func (m *Model) renderAssistant(msg *model.ChatMessage) string {
	var b strings.Builder
	label := "Assistant"
	if msg.IsAutoSummary {
		label = "Document overview"
	}
	b.WriteString(m.theme.RoleTag.Render(label))
	b.WriteString("\n")

	switch msg.Status {
	case model.StatusThinking:
		b.WriteString(m.theme.StageLabel.Render(
			m.spin.View() + " " + stageLabel(msg.Stage)))
		if plan := msg.Plan(); plan != "" {
			b.WriteString("\n")
			b.WriteString(m.theme.PlanText.Render(plan))
		}

	case model.StatusResponding:
		if plan := msg.Plan(); plan != "" {
			b.WriteString(m.theme.PlanText.Render(plan))
			b.WriteString("\n")
		}
		b.WriteString(m.theme.AssistantBubble.Render(msg.DisplayContent()))

	case model.StatusDone:
		if msg.ThinkingSeconds > 0 {
			b.WriteString(m.theme.Timestamp.Render(
				fmt.Sprintf("thought for %ds", msg.ThinkingSeconds)))
			b.WriteString("\n")
		}
		b.WriteString(m.theme.AssistantBubble.Render(
			m.renderMarkdown(msg.DisplayContent())))
		if len(msg.Citations) > 0 {
			b.WriteString("\n")
			b.WriteString(m.renderCitations(msg.Citations))
		}
	}

	if msg.Failed {
		b.WriteString("\n")
		b.WriteString(m.theme.ErrorBanner.Render("⚠ this answer was interrupted"))
	}
	return b.String()
}

func (m *Model) renderCitations(citations []model.Citation) string {
	tags := make([]string, 0, len(citations))
	for i, c := range citations {
		tag := fmt.Sprintf("[%d]", i+1)
		if c.Page > 0 {
			tag = fmt.Sprintf("[%d] p.%d", i+1, c.Page)
		}
		tags = append(tags, m.theme.CitationTag.Render(tag))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(tags, " "))
}

// stageLabel maps pipeline stage identifiers to display text.
func stageLabel(stage string) string {
	switch stage {
	case "reading_document":
		return "Reading your document..."
	case "selecting_sources":
		return "Finding relevant passages..."
	case "generating_answer":
		return "Writing an answer..."
	case "":
		return "Thinking..."
	default:
		return strings.ReplaceAll(stage, "_", " ") + "..."
	}
}

// =============================================================================
// MARKDOWN
// =============================================================================

// renderMarkdown renders finished answers through glamour. The renderer
// is rebuilt lazily after every resize; on failure the raw text is
// shown.
func (m *Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		width := m.vp.Width - 4
		if width < 20 {
			width = 20
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		m.renderer = r
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
