// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ingest polls a document's ingestion status until it settles.
//
// The Gate is driven by the Bubble Tea update loop: it emits tick and
// poll commands and consumes its own messages, one status read per tick,
// stopping on the read that observes a terminal status. Stop tears the
// gate down immediately; any poll response that arrives afterwards is
// dropped without touching state.
package ingest
