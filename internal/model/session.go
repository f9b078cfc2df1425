// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession is an ordered list of messages, optionally bound to one
// document. A session without a document reference is general-help mode.
//
// The ID may be empty until the backend issues one: sessions are created
// lazily on first send, and the server-assigned id arrives in the first
// meta event of the first turn.
type ChatSession struct {
	ID         string    `json:"id,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`

	Messages []*ChatMessage `json:"messages"`
}

// NewSession creates an empty session. documentID may be empty for
// general-help mode.
func NewSession(documentID string) *ChatSession {
	return &ChatSession{
		DocumentID: documentID,
		CreatedAt:  time.Now(),
	}
}

// DocumentMode reports whether the session is bound to a document.
func (s *ChatSession) DocumentMode() bool {
	return s.DocumentID != ""
}

// Append adds a message to the end of the session.
func (s *ChatSession) Append(m *ChatMessage) {
	s.Messages = append(s.Messages, m)
}

// Len returns the number of messages.
func (s *ChatSession) Len() int {
	return len(s.Messages)
}

// Last returns the final message, or nil for an empty session.
func (s *ChatSession) Last() *ChatMessage {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// AutoSummary returns the message tagged as the auto-generated document
// overview, or nil if the session has none. Used to de-duplicate the
// summarize bootstrap against a concurrent tab.
func (s *ChatSession) AutoSummary() *ChatMessage {
	for _, m := range s.Messages {
		if m.IsAutoSummary {
			return m
		}
	}
	return nil
}

// BindID adopts a server-issued session id. Only the first binding takes
// effect.
func (s *ChatSession) BindID(id string) {
	if s.ID == "" && id != "" {
		s.ID = id
	}
}
