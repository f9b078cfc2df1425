// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lifecycle drives one assistant turn through its states.
//
// A Lifecycle consumes decoded stream events in arrival order and
// mutates exactly one assistant ChatMessage: thinking, then responding,
// then done, never backwards. It runs entirely on the Bubble Tea update
// loop, so every mutation is visible to the renderer as an atomic
// update without locking.
package lifecycle
