// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// INGESTION STATUS
// =============================================================================

// IngestStatus is the observable status of the server-side ingestion
// pipeline for one document. Transitions are monotonic except error,
// which may occur from any prior state. ready and error are terminal.
type IngestStatus string

const (
	IngestPending    IngestStatus = "pending"
	IngestProcessing IngestStatus = "processing"
	IngestReady      IngestStatus = "ready"
	IngestError      IngestStatus = "error"
)

// Terminal reports whether polling should stop at this status.
func (s IngestStatus) Terminal() bool {
	return s == IngestReady || s == IngestError
}

// Valid reports whether the value is one of the known statuses.
func (s IngestStatus) Valid() bool {
	switch s {
	case IngestPending, IngestProcessing, IngestReady, IngestError:
		return true
	}
	return false
}

// IngestRecord is the point-read result for a document's ingestion state.
type IngestRecord struct {
	DocumentID   string       `json:"document_id"`
	Status       IngestStatus `json:"ingest_status"`
	ErrorMessage string       `json:"error_message,omitempty"`
}
