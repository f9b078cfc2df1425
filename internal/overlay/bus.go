// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package overlay

import "sync"

// =============================================================================
// EVENT BUS
// =============================================================================

// Jump asks the viewer to scroll a page into view.
type Jump struct {
	Page int
}

// Bus routes highlight and jump requests from the chat pane to the
// viewer over typed subscriptions. Publishing with no subscribers is a
// no-op; each subscribe call returns its own unsubscribe func.
type Bus struct {
	mu         sync.Mutex
	nextID     int
	highlights map[int]func(Request)
	jumps      map[int]func(Jump)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		highlights: make(map[int]func(Request)),
		jumps:      make(map[int]func(Jump)),
	}
}

// SubscribeHighlight registers a highlight handler and returns its
// unsubscribe func.
func (b *Bus) SubscribeHighlight(fn func(Request)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.highlights[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.highlights, id)
	}
}

// SubscribeJump registers a page-jump handler and returns its
// unsubscribe func.
func (b *Bus) SubscribeJump(fn func(Jump)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.jumps[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.jumps, id)
	}
}

// PublishHighlight delivers a highlight request to every subscriber.
func (b *Bus) PublishHighlight(req Request) {
	for _, fn := range b.snapshotHighlights() {
		fn(req)
	}
}

// PublishJump delivers a page-jump request to every subscriber.
func (b *Bus) PublishJump(j Jump) {
	for _, fn := range b.snapshotJumps() {
		fn(j)
	}
}

// Handlers run outside the lock so a subscriber may unsubscribe from
// within its own callback.
func (b *Bus) snapshotHighlights() []func(Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(Request), 0, len(b.highlights))
	for _, fn := range b.highlights {
		out = append(out, fn)
	}
	return out
}

func (b *Bus) snapshotJumps() []func(Jump) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(Jump), 0, len(b.jumps))
	for _, fn := range b.jumps {
		out = append(out, fn)
	}
	return out
}
