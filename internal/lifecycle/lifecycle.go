// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lifecycle

import (
	"math"
	"time"

	"github.com/linguatax/linguatax-tui/internal/api"
	"github.com/linguatax/linguatax-tui/internal/model"
)

// =============================================================================
// LIFECYCLE STATE MACHINE
// =============================================================================

// Lifecycle applies stream events to one assistant message.
//
// The status is monotonic (thinking -> responding -> done) and done is
// terminal: any event delivered after done is ignored, so a decoder or
// transport ordering bug can never corrupt a finalized message.
type Lifecycle struct {
	msg *model.ChatMessage
	now func() time.Time

	thinkingEnded bool
}

// New creates a lifecycle for an assistant message. The message is
// expected to start in the thinking state.
func New(msg *model.ChatMessage) *Lifecycle {
	return &Lifecycle{
		msg: msg,
		now: time.Now,
	}
}

// NewWithClock creates a lifecycle with an injected clock, for tests.
func NewWithClock(msg *model.ChatMessage, now func() time.Time) *Lifecycle {
	return &Lifecycle{
		msg: msg,
		now: now,
	}
}

// Message returns the message being driven.
func (l *Lifecycle) Message() *model.ChatMessage {
	return l.msg
}

// Done reports whether the turn has reached its terminal state.
func (l *Lifecycle) Done() bool {
	return l.msg.Status == model.StatusDone
}

// Result reports the side effects of applying one event that the
// orchestrator has to act on beyond the message itself.
type Result struct {
	// ChatID is non-empty when a meta event carried the server-issued
	// session id.
	ChatID string
}

// Apply consumes one event. Events arriving after done are dropped.
func (l *Lifecycle) Apply(ev api.StreamEvent) Result {
	if l.Done() {
		return Result{}
	}

	switch ev.Type {
	case api.EventMeta:
		l.msg.ChatID = ev.ChatID
		return Result{ChatID: ev.ChatID}

	case api.EventStatus:
		l.msg.Stage = ev.Stage
		if ev.Stage == api.StageGeneratingAnswer {
			// The only stage that implies responding has begun.
			l.beginResponding()
		}

	case api.EventThinking:
		switch ev.Phase {
		case api.PhaseStart:
			if l.msg.ThinkingStart.IsZero() {
				l.msg.ThinkingStart = l.now()
			}
		case api.PhaseEnd:
			l.finalizeThinking()
		}

	case api.EventPlanToken:
		l.msg.AppendPlan(ev.Text)

	case api.EventAnswerToken:
		l.beginResponding()
		l.msg.AppendContent(ev.Text)

	case api.EventSources:
		// Last write wins; a turn never merges partial citation lists.
		l.msg.Citations = ev.Sources

	case api.EventDone:
		// The only legal terminator, valid even for a token-less turn.
		l.finalizeThinking()
		l.msg.Finalize()
		l.msg.AdvanceStatus(model.StatusDone)
	}

	return Result{}
}

// beginResponding finalizes the thinking duration and advances to
// responding. Safe to call repeatedly.
func (l *Lifecycle) beginResponding() {
	l.finalizeThinking()
	l.msg.AdvanceStatus(model.StatusResponding)
}

// finalizeThinking computes the thinking duration exactly once.
func (l *Lifecycle) finalizeThinking() {
	if l.thinkingEnded {
		return
	}
	l.thinkingEnded = true
	if l.msg.ThinkingStart.IsZero() {
		return
	}
	secs := l.now().Sub(l.msg.ThinkingStart).Seconds()
	l.msg.ThinkingSeconds = int(math.Round(secs))
}
