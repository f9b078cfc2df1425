// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation pane for the TUI.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/linguatax/linguatax-tui/internal/api"
	"github.com/linguatax/linguatax-tui/internal/config"
	"github.com/linguatax/linguatax-tui/internal/ingest"
	"github.com/linguatax/linguatax-tui/internal/lifecycle"
	"github.com/linguatax/linguatax-tui/internal/model"
	"github.com/linguatax/linguatax-tui/internal/overlay"
	"github.com/linguatax/linguatax-tui/internal/speech"
	"github.com/linguatax/linguatax-tui/internal/storage"
	"github.com/linguatax/linguatax-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State is the pane's top-level mode.
type State int

const (
	StateReady     State = iota // ready for input
	StateStreaming              // a turn is streaming in
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the conversation pane. It owns the
// session, the ingestion gate for the bound document, and the lifecycle
// of the turn currently streaming.
type Model struct {
	state State
	theme *styles.Theme

	width  int
	height int

	// Conversation
	session *model.ChatSession
	client  *api.Client
	cfg     *config.Config
	logger  *zap.Logger

	// Ingestion gate, nil in general-help mode.
	gate *ingest.Gate

	// Streaming turn. turnSeq increments per started turn; messages
	// carrying an older id are stale and dropped.
	runner      *Runner
	turnSeq     int
	activeTurn  int
	activeKind  TurnKind
	currentTurn *lifecycle.Lifecycle

	// Auto-summarize bootstrap bookkeeping. seeded marks a transcript
	// restored from the offline mirror, which the server copy may
	// replace on lookup.
	lookupDone       bool
	summarizeStarted bool
	seeded           bool

	// Local history mirror, optional.
	history *storage.History

	// Highlight traffic to the viewer pane.
	bus *overlay.Bus

	// Voice input, if the build supports it.
	speech    speech.Capability
	recording bool

	// Components
	vp       viewport.Model
	input    textarea.Model
	spin     spinner.Model
	keyMap   KeyMap
	lastErr  *ErrorMsg
	renderer *glamour.TermRenderer
}

// Options configures a new chat Model.
type Options struct {
	Client  *api.Client
	Config  *config.Config
	Session *model.ChatSession
	Gate    *ingest.Gate
	History *storage.History
	Bus     *overlay.Bus
	Speech  speech.Capability
	Send    func(tea.Msg)
	Logger  *zap.Logger
}

// New creates the conversation pane. Session must be non-nil; Gate is
// nil for general-help mode.
func New(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	input := textarea.New()
	input.Placeholder = "Ask about your document..."
	input.CharLimit = 4000
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	theme := styles.NewTheme()

	return &Model{
		state:   StateReady,
		theme:   theme,
		session: opts.Session,
		client:  opts.Client,
		cfg:     cfg,
		logger:  logger,
		gate:    opts.Gate,
		runner:  NewRunner(opts.Send, logger),
		history: opts.History,
		bus:     opts.Bus,
		speech:  opts.Speech,
		seeded:  opts.Session.Len() > 0,
		vp:      viewport.New(80, 20),
		input:   input,
		spin:    spin,
		keyMap:  DefaultKeyMap(),
	}
}

// Init starts the ingestion gate and the session lookup.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.gate != nil {
		if cmd := m.gate.Start(); cmd != nil {
			cmds = append(cmds, cmd)
		} else if m.gate.Ready() {
			// Already ingested: bootstrap immediately.
			cmds = append(cmds, m.lookupSessionCmd())
		}
	}
	return tea.Batch(cmds...)
}

// Session exposes the transcript, for the app model and tests.
func (m *Model) Session() *model.ChatSession {
	return m.session
}

// Config returns the active configuration.
func (m *Model) Config() *config.Config {
	return m.cfg
}

// SetConfig applies a hot-reloaded configuration to subsequent
// requests. Nil is ignored.
func (m *Model) SetConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.cfg = cfg
}

// Streaming reports whether a turn is in flight.
func (m *Model) Streaming() bool {
	return m.state == StateStreaming
}

// CanSubmit reports whether a question may be sent right now: no turn
// streaming, and any bound document fully ingested.
func (m *Model) CanSubmit() bool {
	if m.state == StateStreaming {
		return false
	}
	if m.gate != nil && !m.gate.Ready() {
		return false
	}
	return true
}

// Close tears the pane down: the gate stops polling and any in-flight
// stream is cancelled.
func (m *Model) Close() {
	if m.gate != nil {
		m.gate.Stop()
	}
	if m.recording {
		m.speech.Stop()
		m.recording = false
	}
	m.runner.Cancel()
}

// toggleVoice starts or stops voice capture. Builds without a speech
// backend surface the limitation instead of failing silently.
func (m *Model) toggleVoice() {
	if m.recording {
		m.speech.Stop()
		m.recording = false
		return
	}
	if m.speech == nil {
		m.lastErr = &ErrorMsg{Err: speech.ErrUnsupported, Context: "voice input"}
		return
	}
	if err := m.speech.Start(); err != nil {
		m.lastErr = &ErrorMsg{Err: err, Context: "voice input"}
		return
	}
	m.recording = true
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// lookupSessionCmd asks the backend whether a session already exists
// for the bound document.
func (m *Model) lookupSessionCmd() tea.Cmd {
	client, docID := m.client, m.session.DocumentID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		rec, err := client.LookupSession(ctx, docID)
		if err != nil {
			if api.IsNotFound(err) {
				return SessionLookupMsg{}
			}
			return SessionLookupMsg{Err: err}
		}
		return SessionLookupMsg{Session: rec.ToSession()}
	}
}

// saveHistoryCmd mirrors the session to the local store.
func (m *Model) saveHistoryCmd() tea.Cmd {
	if m.history == nil || m.session.ID == "" {
		return nil
	}
	history, session := m.history, m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return SessionSavedMsg{Err: history.SaveSession(ctx, session)}
	}
}

// =============================================================================
// TURN MANAGEMENT
// =============================================================================

// startQuestion appends the user message and opens a chat stream.
func (m *Model) startQuestion(question string, images []api.ImageAttachment) error {
	if err := m.client.ValidateAttachments(images); err != nil {
		return err
	}

	// The transcript now holds local composition; a later lookup must
	// not replace it wholesale.
	m.seeded = false

	m.session.Append(model.NewUserMessage(question))

	reply := model.NewAssistantMessage()
	reply.ChatID = m.session.ID
	m.session.Append(reply)

	m.beginTurn(reply, TurnQuestion)

	req := api.ChatRequest{
		DocumentID: m.session.DocumentID,
		ChatID:     m.session.ID,
		Question:   question,
		Language:   m.cfg.Chat.Language,
		Images:     images,
	}
	client := m.client
	m.runner.Start(m.activeTurn, TurnQuestion, func(ctx context.Context) (*api.Stream, error) {
		return client.ChatStream(ctx, req)
	})
	return nil
}

// startAutoSummary opens the summarize stream. The assistant message is
// appended up front, tagged, so a concurrent lookup result can be
// reconciled against it.
func (m *Model) startAutoSummary() {
	reply := model.NewAssistantMessage()
	reply.ChatID = m.session.ID
	reply.IsAutoSummary = true
	m.session.Append(reply)

	m.summarizeStarted = true
	m.beginTurn(reply, TurnAutoSummary)

	req := api.SummarizeRequest{
		DocumentID: m.session.DocumentID,
		Language:   m.cfg.Chat.Language,
	}
	client := m.client
	m.runner.Start(m.activeTurn, TurnAutoSummary, func(ctx context.Context) (*api.Stream, error) {
		return client.SummarizeStream(ctx, req)
	})
}

func (m *Model) beginTurn(reply *model.ChatMessage, kind TurnKind) {
	m.turnSeq++
	m.activeTurn = m.turnSeq
	m.activeKind = kind
	m.currentTurn = lifecycle.New(reply)
	m.state = StateStreaming
	m.lastErr = nil
}

// finishTurn closes out the active turn. failed marks the message so
// the transcript never claims a completion that did not happen.
func (m *Model) finishTurn(failed bool) tea.Cmd {
	if m.currentTurn != nil && failed {
		m.currentTurn.Message().Failed = true
	}
	m.currentTurn = nil
	m.activeTurn = 0
	m.state = StateReady
	return m.saveHistoryCmd()
}
