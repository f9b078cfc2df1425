// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation pane for the TUI.
//
// This file implements thread-safe cancel function handling: the cancel
// func is stored from the Update loop and invoked from either the
// Update loop or the reader goroutine, so access is mutex-protected.
package chat

import (
	"context"
	"sync"
)

// cancelManager guards the cancel function of the in-flight stream.
// IMPORTANT: hold it by pointer in the Model so Bubble Tea's
// copy-on-update never copies the mutex.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// set stores the cancel function for a new stream, cancelling any
// previous one first.
func (cm *cancelManager) set(fn context.CancelFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
	}
	cm.cancelFunc = fn
}

// cancel invokes and clears the stored cancel function. Safe to call
// repeatedly or with nothing stored.
func (cm *cancelManager) cancel() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}
