// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation pane for the TUI.
package chat

import (
	"errors"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linguatax/linguatax-tui/internal/ingest"
	"github.com/linguatax/linguatax-tui/internal/model"
	"github.com/linguatax/linguatax-tui/internal/overlay"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update advances the pane. Every mutation of the session happens here,
// in message arrival order.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	// Ingestion gate traffic.
	case ingest.TickMsg, ingest.StatusMsg:
		return m.handleGate(msg)

	case SessionLookupMsg:
		return m.handleSessionLookup(msg)

	case SubmitMsg:
		return m.handleSubmit(msg)

	case StreamStartedMsg:
		if msg.TurnID != m.activeTurn {
			return m, nil
		}
		return m, nil

	case StreamEventMsg:
		return m.handleStreamEvent(msg)

	case StreamDoneMsg:
		return m.handleStreamDone(msg)

	case SpeechResultMsg:
		if msg.Text != "" {
			m.input.InsertString(msg.Text)
		}
		if msg.Final {
			m.recording = false
		}
		return m, nil

	case SpeechErrorMsg:
		m.recording = false
		m.lastErr = &ErrorMsg{Err: msg.Err, Context: "voice input"}
		return m, nil

	case SessionSavedMsg:
		if msg.Err != nil {
			m.logger.Warn("failed to save session history", zap.Error(msg.Err))
		}
		return m, nil

	case ErrorMsg:
		m.lastErr = &msg
		return m, nil

	case DismissErrorMsg:
		m.lastErr = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.DismissError):
		m.lastErr = nil
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		question := strings.TrimSpace(m.input.Value())
		if question == "" {
			return m, nil
		}
		return m.handleSubmit(SubmitMsg{Question: question})

	case key.Matches(msg, m.keyMap.ShowSource):
		m.publishLastCitation()
		return m, nil

	case key.Matches(msg, m.keyMap.Voice):
		m.toggleVoice()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.vp.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.vp.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// publishLastCitation sends the most recent answer's first citation to
// the viewer: a jump to its page and a highlight request.
func (m *Model) publishLastCitation() {
	if m.bus == nil {
		return
	}
	for i := len(m.session.Messages) - 1; i >= 0; i-- {
		msg := m.session.Messages[i]
		if msg.Role != model.RoleAssistant || len(msg.Citations) == 0 {
			continue
		}
		req, ok := highlightRequest(msg.Citations[0])
		if !ok {
			return
		}
		m.bus.PublishJump(overlay.Jump{Page: req.Page})
		m.bus.PublishHighlight(req)
		return
	}
}

// highlightRequest turns a citation into a drawable highlight. A known
// form field resolves through the Form 1040 template map; otherwise the
// citation's page gets the generic text-region box.
func highlightRequest(c model.Citation) (overlay.Request, bool) {
	names := make([]string, 0, len(c.FormFields))
	for name := range c.FormFields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if loc, ok := overlay.FindField(name); ok {
			return overlay.Request{
				Page:   loc.Page,
				BBox:   loc.BBox,
				Label:  loc.Label,
				Method: overlay.MethodField,
			}, true
		}
	}
	if c.Page < 1 {
		return overlay.Request{}, false
	}
	return overlay.Request{
		Page:   c.Page,
		BBox:   overlay.TextRegion(),
		Label:  c.ChunkID,
		Method: overlay.MethodText,
	}, true
}

// =============================================================================
// SUBMISSION
// =============================================================================

func (m *Model) handleSubmit(msg SubmitMsg) (*Model, tea.Cmd) {
	if !m.CanSubmit() {
		// Input stays composed; the gate or active turn blocks sending.
		return m, nil
	}
	if err := m.startQuestion(msg.Question, msg.Images); err != nil {
		m.lastErr = &ErrorMsg{Err: err, Context: "attachment check"}
		return m, nil
	}
	m.input.Reset()
	m.refreshViewport()
	return m, nil
}

// =============================================================================
// INGESTION GATE
// =============================================================================

func (m *Model) handleGate(msg tea.Msg) (*Model, tea.Cmd) {
	if m.gate == nil {
		return m, nil
	}
	cmd, changed := m.gate.Update(msg)
	if !changed {
		return m, cmd
	}

	switch m.gate.Status() {
	case model.IngestReady:
		if !m.lookupDone && m.session.DocumentMode() {
			return m, tea.Batch(cmd, m.lookupSessionCmd())
		}
	case model.IngestError:
		detail := m.gate.ErrorMessage()
		if detail == "" {
			detail = "document processing failed"
		}
		m.lastErr = &ErrorMsg{Err: errors.New(detail), Context: "ingestion"}
	}
	return m, cmd
}

// =============================================================================
// SESSION BOOTSTRAP
// =============================================================================

// handleSessionLookup reconciles the backend's session with local
// state and decides whether the auto-summary turn is still needed.
func (m *Model) handleSessionLookup(msg SessionLookupMsg) (*Model, tea.Cmd) {
	m.lookupDone = true

	if msg.Err != nil {
		m.lastErr = &ErrorMsg{Err: msg.Err, Context: "session lookup"}
		return m, nil
	}

	remote := msg.Session
	if remote != nil && remote.AutoSummary() != nil {
		// Another client already produced the overview. If our own
		// summarize turn is mid-stream, abandon it in favor of the
		// settled transcript; never keep two overview messages.
		if m.state == StateStreaming && m.activeKind == TurnAutoSummary {
			m.runner.Cancel()
			m.dropActivePlaceholder()
			m.finishTurn(false)
		}
		m.adoptSession(remote)
		m.summarizeStarted = true
		m.refreshViewport()
		return m, m.saveHistoryCmd()
	}

	if remote != nil {
		m.adoptSession(remote)
		m.refreshViewport()
	}
	// The overview bootstrap is only for a conversation with no
	// messages at all; an adopted or restored transcript already had
	// its overview turn.
	if !m.summarizeStarted && m.state != StateStreaming && m.session.Len() == 0 {
		m.startAutoSummary()
		m.refreshViewport()
	}
	return m, nil
}

// adoptSession replaces local transcript state with the backend's,
// but only when the local transcript has nothing the remote lacks. A
// transcript seeded from the offline mirror yields to the server's
// copy; locally composed messages never do.
func (m *Model) adoptSession(remote *model.ChatSession) {
	m.session.BindID(remote.ID)
	if remote.Title != "" {
		m.session.Title = remote.Title
	}
	if len(m.session.Messages) == 0 || m.seeded {
		m.session.Messages = remote.Messages
		m.seeded = false
	}
}

// dropActivePlaceholder removes the streaming placeholder of the
// active turn from the transcript.
func (m *Model) dropActivePlaceholder() {
	if m.currentTurn == nil {
		return
	}
	target := m.currentTurn.Message()
	for i := len(m.session.Messages) - 1; i >= 0; i-- {
		if m.session.Messages[i] == target {
			m.session.Messages = append(m.session.Messages[:i], m.session.Messages[i+1:]...)
			return
		}
	}
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

func (m *Model) handleStreamEvent(msg StreamEventMsg) (*Model, tea.Cmd) {
	if msg.TurnID != m.activeTurn || m.currentTurn == nil {
		// Stale turn: a cancelled stream drained after teardown.
		return m, nil
	}

	res := m.currentTurn.Apply(msg.Event)
	if res.ChatID != "" {
		m.session.BindID(res.ChatID)
	}

	var cmd tea.Cmd
	if m.currentTurn.Done() {
		cmd = m.finishTurn(false)
	}
	m.refreshViewport()
	return m, cmd
}

func (m *Model) handleStreamDone(msg StreamDoneMsg) (*Model, tea.Cmd) {
	if msg.TurnID != m.activeTurn {
		return m, nil
	}

	if msg.Err != nil {
		m.lastErr = &ErrorMsg{Err: msg.Err, Context: "response stream"}
		cmd := m.finishTurn(true)
		m.refreshViewport()
		return m, cmd
	}

	if m.currentTurn != nil && !m.currentTurn.Done() {
		// Stream ended without a done event: the turn is incomplete
		// and must not present as finished.
		m.lastErr = &ErrorMsg{
			Err:     errors.New("response ended unexpectedly"),
			Context: "response stream",
		}
		cmd := m.finishTurn(true)
		m.refreshViewport()
		return m, cmd
	}

	// Normal completion was already handled by the done event.
	return m, nil
}
