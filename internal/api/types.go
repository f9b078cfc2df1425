// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"time"

	"github.com/linguatax/linguatax-tui/internal/model"
)

// =============================================================================
// STREAM EVENT UNION
// =============================================================================

// EventType tags a StreamEvent record.
type EventType string

const (
	// EventMeta carries the server-issued chat id for the session.
	EventMeta EventType = "meta"
	// EventStatus updates the pipeline stage label.
	EventStatus EventType = "status"
	// EventThinking marks the start or end of the thinking phase.
	EventThinking EventType = "thinking"
	// EventPlanToken appends text to the plan.
	EventPlanToken EventType = "plan_token"
	// EventAnswerToken appends text to the answer.
	EventAnswerToken EventType = "answer_token"
	// EventSources replaces the citation list.
	EventSources EventType = "sources"
	// EventDone terminates the turn.
	EventDone EventType = "done"
)

// Thinking phases.
const (
	PhaseStart = "start"
	PhaseEnd   = "end"
)

// Pipeline stage labels surfaced to the UI. StageGeneratingAnswer is the
// stage at which responding has begun.
const (
	StageReadingDocument  = "reading_document"
	StageSelectingSources = "selecting_sources"
	StageGeneratingAnswer = "generating_answer"
)

// StreamEvent is one decoded record from a chat response stream. The Type
// tag selects which of the remaining fields are meaningful; the server
// defines ordering within a turn and no variant is guaranteed to occur.
type StreamEvent struct {
	Type    EventType        `json:"type"`
	ChatID  string           `json:"chat_id,omitempty"`
	Stage   string           `json:"stage,omitempty"`
	Phase   string           `json:"phase,omitempty"`
	Text    string           `json:"text,omitempty"`
	Sources []model.Citation `json:"sources,omitempty"`
}

// IsDone reports whether the event terminates the turn.
func (e StreamEvent) IsDone() bool {
	return e.Type == EventDone
}

// =============================================================================
// REQUEST / RESPONSE SHAPES
// =============================================================================

// ImageAttachment is one image sent with a question.
type ImageAttachment struct {
	// Data is the base64-encoded payload.
	Data string `json:"data"`
	// MimeType of the payload, e.g. "image/png".
	MimeType string `json:"mime_type"`
}

// ChatRequest is the body for POST /chat and POST /chat/general. An empty
// DocumentID selects general-help mode; an empty ChatID asks the server
// to start a new session.
type ChatRequest struct {
	DocumentID string            `json:"document_id,omitempty"`
	ChatID     string            `json:"chat_id,omitempty"`
	Question   string            `json:"question"`
	Language   string            `json:"language"`
	Images     []ImageAttachment `json:"images,omitempty"`
}

// SummarizeRequest is the body for POST /chat/summarize.
type SummarizeRequest struct {
	DocumentID string `json:"document_id"`
	Language   string `json:"language"`
}

// MessageRecord is a persisted message as returned by a session lookup.
type MessageRecord struct {
	ID            string           `json:"id"`
	Role          string           `json:"role"`
	Content       string           `json:"content"`
	Sources       []model.Citation `json:"sources,omitempty"`
	IsAutoSummary bool             `json:"is_auto_summary,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// SessionRecord is the result of looking a session up by
// (user, document-or-null).
type SessionRecord struct {
	ChatID     string          `json:"chat_id"`
	DocumentID string          `json:"document_id,omitempty"`
	Title      string          `json:"title,omitempty"`
	Messages   []MessageRecord `json:"messages"`
}

// ToSession converts a lookup result into the client-side session model.
func (r *SessionRecord) ToSession() *model.ChatSession {
	s := model.NewSession(r.DocumentID)
	s.ID = r.ChatID
	s.Title = r.Title
	for _, rec := range r.Messages {
		m := &model.ChatMessage{
			ID:            rec.ID,
			ChatID:        r.ChatID,
			Role:          model.Role(rec.Role),
			Content:       rec.Content,
			Status:        model.StatusDone,
			Citations:     rec.Sources,
			IsAutoSummary: rec.IsAutoSummary,
			Timestamp:     rec.CreatedAt,
		}
		s.Append(m)
	}
	return s
}
