// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the shared zap logger for the TUI.
//
// The terminal is owned by Bubble Tea, so logs never go to stdout or
// stderr; everything is written as JSON to a rotated file under the
// application data directory. Components receive the logger by
// parameter rather than through a package-level global.
package logging
