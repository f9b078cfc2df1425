// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linguatax/linguatax-tui/internal/model"
)

// =============================================================================
// STATUS READER
// =============================================================================

// StatusReader performs one ingestion status point read. Implemented by
// api.Client; substituted in tests.
type StatusReader interface {
	DocumentStatus(ctx context.Context, documentID string) (model.IngestRecord, error)
}

// =============================================================================
// GATE MESSAGES
// =============================================================================

// TickMsg fires one poll cycle.
type TickMsg struct {
	DocumentID string
}

// StatusMsg delivers the result of one status read.
type StatusMsg struct {
	Record model.IngestRecord
	Err    error
}

// =============================================================================
// GATE
// =============================================================================

// Gate watches one document's ingestion status.
type Gate struct {
	reader   StatusReader
	logger   *zap.Logger
	docID    string
	interval time.Duration

	status   model.IngestStatus
	errorMsg string
	stopped  bool
}

// NewGate creates a gate for a document. If the initial status is already
// terminal the gate never polls.
func NewGate(reader StatusReader, documentID string, initial model.IngestStatus, interval time.Duration, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Gate{
		reader:   reader,
		logger:   logger,
		docID:    documentID,
		interval: interval,
		status:   initial,
		stopped:  initial.Terminal(),
	}
}

// Status returns the last observed status.
func (g *Gate) Status() model.IngestStatus {
	return g.status
}

// ErrorMessage returns the pipeline's error detail, if the status is
// error.
func (g *Gate) ErrorMessage() string {
	return g.errorMsg
}

// Terminal reports whether the gate has settled.
func (g *Gate) Terminal() bool {
	return g.status.Terminal()
}

// Ready reports whether chat and summarization may proceed.
func (g *Gate) Ready() bool {
	return g.status == model.IngestReady
}

// Start returns the command that begins polling, or nil when the initial
// status was already terminal.
func (g *Gate) Start() tea.Cmd {
	if g.stopped {
		return nil
	}
	return g.tick()
}

// Stop tears the gate down. No read fires after Stop, and a poll
// response already in flight is discarded on arrival.
func (g *Gate) Stop() {
	g.stopped = true
}

// Update consumes gate messages. It returns the follow-up command (next
// poll or tick) and whether the status changed.
func (g *Gate) Update(msg tea.Msg) (tea.Cmd, bool) {
	if g.stopped {
		// Late timer fire or in-flight response after teardown.
		return nil, false
	}

	switch msg := msg.(type) {
	case TickMsg:
		if msg.DocumentID != g.docID {
			return nil, false
		}
		return g.poll(), false

	case StatusMsg:
		if msg.Err != nil {
			// No retry before the next tick.
			g.logger.Warn("ingestion status read failed",
				zap.String("document_id", g.docID), zap.Error(msg.Err))
			return g.tick(), false
		}

		changed := msg.Record.Status != g.status
		g.status = msg.Record.Status
		g.errorMsg = msg.Record.ErrorMessage

		if g.status.Terminal() {
			g.stopped = true
			return nil, changed
		}
		return g.tick(), changed
	}

	return nil, false
}

// tick schedules the next poll cycle.
func (g *Gate) tick() tea.Cmd {
	docID := g.docID
	return tea.Tick(g.interval, func(time.Time) tea.Msg {
		return TickMsg{DocumentID: docID}
	})
}

// poll performs one status read off the update loop.
func (g *Gate) poll() tea.Cmd {
	reader, docID := g.reader, g.docID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		rec, err := reader.DocumentStatus(ctx, docID)
		return StatusMsg{Record: rec, Err: err}
	}
}
