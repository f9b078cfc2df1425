// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE STATUS
// =============================================================================

// Status is the lifecycle status of an assistant message. It only ever
// moves forward: thinking, then responding, then done.
type Status int

const (
	StatusThinking Status = iota
	StatusResponding
	StatusDone
)

// String returns the wire/display form of the status.
func (s Status) String() string {
	switch s {
	case StatusThinking:
		return "thinking"
	case StatusResponding:
		return "responding"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusDone
}

// =============================================================================
// CITATION TYPE
// =============================================================================

// Citation points at a retrieved document chunk backing part of an answer.
type Citation struct {
	ChunkID    string            `json:"chunk_id"`
	ChunkText  string            `json:"chunk_text"`
	Page       int               `json:"page,omitempty"`
	FormFields map[string]string `json:"form_fields,omitempty"`
	Similarity float64           `json:"similarity"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// ChatMessage is a single message in a chat session.
//
// Assistant messages are mutated only by the lifecycle state machine while
// their turn streams in, and are immutable once Status is done. Content
// and plan text accumulate in builders so token-by-token appends stay
// linear.
type ChatMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id,omitempty"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content holds the final text once streaming completes; while an
	// assistant turn is live the text lives in the content builder.
	Content string `json:"content"`

	// Assistant-turn state.
	Status    Status     `json:"status,omitempty"`
	Stage     string     `json:"stage,omitempty"`
	Citations []Citation `json:"sources,omitempty"`

	// Thinking phase timing. ThinkingSeconds is computed once, when the
	// thinking phase ends or the first answer token arrives.
	ThinkingStart   time.Time `json:"thinking_start,omitempty"`
	ThinkingSeconds int       `json:"thinking_seconds,omitempty"`

	// IsAutoSummary tags the system-initiated document overview turn so
	// later session loads can recognize it.
	IsAutoSummary bool `json:"is_auto_summary,omitempty"`

	// Failed marks a turn aborted by a transport error. The status keeps
	// its last value so the UI never claims a completion that did not
	// happen.
	Failed bool `json:"-"`

	content strings.Builder
	plan    strings.Builder
}

// NewUserMessage creates a user message with a client-generated id.
func NewUserMessage(content string) *ChatMessage {
	return &ChatMessage{
		ID:        "msg_" + uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Status:    StatusDone,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message in the thinking state.
func NewAssistantMessage() *ChatMessage {
	return &ChatMessage{
		ID:        "msg_" + uuid.NewString(),
		Role:      RoleAssistant,
		Status:    StatusThinking,
		Timestamp: time.Now(),
	}
}

// RestoreMessage rebuilds a message from stored history. Restored
// messages are finished turns, so the status is always done.
func RestoreMessage(id string, role Role, content, plan string) *ChatMessage {
	m := &ChatMessage{
		ID:      id,
		Role:    role,
		Content: content,
		Status:  StatusDone,
	}
	if plan != "" {
		m.plan.WriteString(plan)
	}
	return m
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendContent appends streamed answer text.
func (m *ChatMessage) AppendContent(text string) {
	m.content.WriteString(text)
}

// AppendPlan appends streamed plan text.
func (m *ChatMessage) AppendPlan(text string) {
	m.plan.WriteString(text)
}

// DisplayContent returns the answer text, streamed or final.
func (m *ChatMessage) DisplayContent() string {
	if m.content.Len() > 0 {
		return m.content.String()
	}
	return m.Content
}

// Plan returns the accumulated plan text.
func (m *ChatMessage) Plan() string {
	return m.plan.String()
}

// Finalize freezes the streamed content into Content. Called exactly once
// when the turn reaches done.
func (m *ChatMessage) Finalize() {
	if m.content.Len() > 0 {
		m.Content = m.content.String()
	}
}

// AdvanceStatus moves the status forward. Regressions are ignored so the
// observed status sequence is always a subsequence of
// thinking -> responding -> done.
func (m *ChatMessage) AdvanceStatus(s Status) {
	if s > m.Status {
		m.Status = s
	}
}

// IsEmpty reports whether the message has no content.
func (m *ChatMessage) IsEmpty() bool {
	return len(m.Content) == 0 && m.content.Len() == 0
}

// Preview returns a rune-safe truncated preview of the content.
func (m *ChatMessage) Preview(maxLen int) string {
	content := m.DisplayContent()
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
