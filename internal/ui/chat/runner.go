// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linguatax/linguatax-tui/internal/api"
)

// =============================================================================
// STREAM RUNNER
// =============================================================================

// openFunc opens a response stream for one turn.
type openFunc func(ctx context.Context) (*api.Stream, error)

// Runner drives one response stream at a time off the update loop.
// Decoded events are forwarded through send, which in production is
// tea.Program.Send; tests inject a collector.
type Runner struct {
	send      func(tea.Msg)
	cancelMgr *cancelManager
	logger    *zap.Logger
}

// NewRunner creates a runner that forwards messages through send.
func NewRunner(send func(tea.Msg), logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		send:      send,
		cancelMgr: newCancelManager(),
		logger:    logger,
	}
}

// Start opens the stream and forwards its events. A previous in-flight
// stream is cancelled first; its remaining messages are discarded by
// the Model because they carry a stale turn id.
func (r *Runner) Start(turnID int, kind TurnKind, open openFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancelMgr.set(cancel)

	go func() {
		defer cancel()

		stream, err := open(ctx)
		if err != nil {
			r.logger.Warn("failed to open response stream",
				zap.Int("turn", turnID), zap.Error(err))
			r.send(StreamDoneMsg{TurnID: turnID, Err: err})
			return
		}
		defer stream.Close()

		r.send(StreamStartedMsg{TurnID: turnID, Kind: kind, StartTime: time.Now()})

		err = stream.Process(ctx, func(ev api.StreamEvent) {
			r.send(StreamEventMsg{TurnID: turnID, Event: ev})
		})
		if err != nil && ctx.Err() != nil {
			// Cancelled locally; the turn was already abandoned.
			err = nil
		}
		r.send(StreamDoneMsg{TurnID: turnID, Err: err})
	}()
}

// Cancel aborts the in-flight stream, if any.
func (r *Runner) Cancel() {
	r.cancelMgr.cancel()
}
