// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the conversation pane and the orchestration core of
// the TUI.
//
// The Model owns the session transcript, the ingestion gate for the
// open document, and the lifecycle of the assistant turn currently
// streaming in. All state changes happen on the Bubble Tea update
// loop: stream events are forwarded from the reader goroutine as
// messages and applied strictly in arrival order, so no mutation ever
// races another.
//
// Submission is gated: while a turn is streaming, or while a bound
// document has not finished ingesting, input is kept but not sent.
// When ingestion completes the pane bootstraps the conversation with
// an automatic document summary unless one already exists server-side.
package chat
