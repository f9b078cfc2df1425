// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the LinguaTax backend.
//
// Chat, general-help and summarize requests return one chunked response
// body carrying newline-delimited JSON event records; Decoder turns that
// body into an ordered sequence of typed StreamEvents, tolerant of chunk
// boundaries that split a record. Document status point reads feed the
// ingestion gate.
//
// The client is constructed once at startup and passed by parameter into
// every consumer; there is no package-level singleton.
package api
