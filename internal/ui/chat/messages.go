// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation pane for the TUI.
//
// This file defines the Bubble Tea message types used by the pane.
// Messages are organized into the following categories:
//   - Streaming: turn start, per-event delivery, completion, errors
//   - Session: server-side session lookup results
//   - Input: user submission
//   - Errors: error display and dismissal
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"time"

	"github.com/linguatax/linguatax-tui/internal/api"
	"github.com/linguatax/linguatax-tui/internal/model"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// TurnKind distinguishes a user-initiated turn from the automatic
// summary bootstrap.
type TurnKind int

const (
	TurnQuestion TurnKind = iota
	TurnAutoSummary
)

// StreamStartedMsg signals that a turn's response stream is open and
// events will follow.
type StreamStartedMsg struct {
	TurnID    int
	Kind      TurnKind
	StartTime time.Time
}

// StreamEventMsg delivers one decoded event from an open stream.
// Events for one turn arrive in stream order.
type StreamEventMsg struct {
	TurnID int
	Event  api.StreamEvent
}

// StreamDoneMsg signals that a turn's stream has ended. Err is non-nil
// when the stream was aborted by a transport or decode failure rather
// than a done event.
type StreamDoneMsg struct {
	TurnID int
	Err    error
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// SessionLookupMsg delivers the result of asking the backend for an
// existing session bound to the open document.
type SessionLookupMsg struct {
	Session *model.ChatSession
	Err     error
}

// SessionSavedMsg confirms a history write.
type SessionSavedMsg struct {
	Err error
}

// =============================================================================
// INPUT MESSAGES
// =============================================================================

// SubmitMsg asks the pane to send the composed question.
type SubmitMsg struct {
	Question string
	Images   []api.ImageAttachment
}

// =============================================================================
// SPEECH MESSAGES
// =============================================================================

// SpeechResultMsg delivers a voice transcript segment to the composer.
type SpeechResultMsg struct {
	Text  string
	Final bool
}

// SpeechErrorMsg reports a recognition failure.
type SpeechErrorMsg struct {
	Err error
}

// =============================================================================
// ERROR MESSAGES
// =============================================================================

// ErrorMsg surfaces a failure in the error banner.
type ErrorMsg struct {
	Err     error
	Context string
}

// DismissErrorMsg clears the error banner.
type DismissErrorMsg struct{}
