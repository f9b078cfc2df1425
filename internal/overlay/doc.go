// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package overlay projects PDF-point bounding boxes into viewer
// coordinates and carries highlight traffic between the chat pane and
// the document viewer.
//
// Two viewport backends exist: the native viewer lays all pages out in
// one continuous scroll at a uniform scale, while the canvas viewer
// renders a single page at independently measured dimensions. Both
// satisfy Viewport, so callers project through one entry point and do
// not branch on the backend.
package overlay
