// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech abstracts voice input for the chat composer.
//
// Recognition engines differ per platform and none ships in every
// build, so callers hold a Capability and query Supported before
// offering a microphone control. The unsupported implementation is the
// default; a real engine plugs in behind the same interface.
package speech

import "errors"

// ErrUnsupported is returned by Start when no recognition engine is
// available in this build.
var ErrUnsupported = errors.New("speech: recognition not available")

// Capability is a voice input source. Results and errors arrive on the
// callbacks supplied at construction; Stop is idempotent and safe to
// call whether or not Start succeeded.
type Capability interface {
	// Supported reports whether Start can succeed.
	Supported() bool
	// Start begins a recognition session.
	Start() error
	// Stop ends the session, if one is active.
	Stop()
}

// Callbacks receive recognition output. Nil fields are ignored.
type Callbacks struct {
	// OnResult receives a transcript segment and whether it is final.
	OnResult func(text string, final bool)
	// OnError receives session failures after a successful Start.
	OnError func(err error)
}

type unsupported struct{}

// NewUnsupported returns the stub capability used when no engine is
// compiled in. Start always fails with ErrUnsupported and no callback
// ever fires.
func NewUnsupported(Callbacks) Capability {
	return unsupported{}
}

func (unsupported) Supported() bool { return false }
func (unsupported) Start() error    { return ErrUnsupported }
func (unsupported) Stop()           {}
