// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linguatax/linguatax-tui/internal/model"
)

// scriptedReader serves a fixed sequence of statuses and counts reads.
type scriptedReader struct {
	statuses []model.IngestStatus
	reads    int
}

func (s *scriptedReader) DocumentStatus(_ context.Context, id string) (model.IngestRecord, error) {
	i := s.reads
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	s.reads++
	return model.IngestRecord{DocumentID: id, Status: s.statuses[i]}, nil
}

// drive runs one tick+poll cycle: feeds a TickMsg, executes the poll
// command, feeds the resulting StatusMsg, and returns the follow-up.
func drive(t *testing.T, g *Gate) tea.Cmd {
	t.Helper()
	pollCmd, _ := g.Update(TickMsg{DocumentID: "doc-1"})
	if pollCmd == nil {
		t.Fatal("expected poll command from tick")
	}
	msg := pollCmd()
	next, _ := g.Update(msg)
	return next
}

func TestGatePollsOncePerTickAndStopsOnTerminal(t *testing.T) {
	reader := &scriptedReader{statuses: []model.IngestStatus{
		model.IngestPending,
		model.IngestProcessing,
		model.IngestProcessing,
		model.IngestReady,
	}}
	g := NewGate(reader, "doc-1", model.IngestPending, time.Millisecond, nil)

	if g.Start() == nil {
		t.Fatal("expected start command for non-terminal initial status")
	}

	for i := 0; i < 3; i++ {
		if next := drive(t, g); next == nil {
			t.Fatalf("cycle %d: gate stopped before terminal status", i)
		}
	}
	if next := drive(t, g); next != nil {
		t.Fatal("expected no follow-up command after terminal status")
	}

	if reader.reads != 4 {
		t.Fatalf("expected exactly 4 reads, got %d", reader.reads)
	}
	if !g.Ready() {
		t.Fatalf("expected ready, got %s", g.Status())
	}

	// A stale timer fire after settling must not trigger another read.
	if cmd, _ := g.Update(TickMsg{DocumentID: "doc-1"}); cmd != nil {
		t.Fatal("terminal gate issued a poll command")
	}
	if reader.reads != 4 {
		t.Fatalf("terminal gate performed a read: %d total", reader.reads)
	}
}

func TestGateTerminalInitialStatusNeverPolls(t *testing.T) {
	reader := &scriptedReader{statuses: []model.IngestStatus{model.IngestReady}}
	g := NewGate(reader, "doc-1", model.IngestReady, time.Millisecond, nil)

	if g.Start() != nil {
		t.Fatal("expected nil start command for terminal initial status")
	}
	if reader.reads != 0 {
		t.Fatalf("expected 0 reads, got %d", reader.reads)
	}
}

func TestGateErrorStatusCarriesDetail(t *testing.T) {
	reader := &scriptedReader{}
	g := NewGate(reader, "doc-1", model.IngestProcessing, time.Millisecond, nil)

	_, changed := g.Update(StatusMsg{Record: model.IngestRecord{
		DocumentID:   "doc-1",
		Status:       model.IngestError,
		ErrorMessage: "OCR backend unavailable",
	}})
	if !changed {
		t.Fatal("expected status change")
	}
	if g.Status() != model.IngestError || g.ErrorMessage() != "OCR backend unavailable" {
		t.Fatalf("got %s / %q", g.Status(), g.ErrorMessage())
	}
	if cmd, _ := g.Update(TickMsg{DocumentID: "doc-1"}); cmd != nil {
		t.Fatal("errored gate kept polling")
	}
}

func TestGateStopDropsLateResponse(t *testing.T) {
	reader := &scriptedReader{}
	g := NewGate(reader, "doc-1", model.IngestPending, time.Millisecond, nil)

	g.Stop()

	cmd, changed := g.Update(StatusMsg{Record: model.IngestRecord{
		DocumentID: "doc-1",
		Status:     model.IngestReady,
	}})
	if cmd != nil || changed {
		t.Fatal("stopped gate acted on a late response")
	}
	if g.Status() != model.IngestPending {
		t.Fatalf("stopped gate mutated status to %s", g.Status())
	}
}

func TestGateReadFailureWaitsForNextTick(t *testing.T) {
	g := NewGate(&scriptedReader{}, "doc-1", model.IngestPending, time.Millisecond, nil)

	cmd, changed := g.Update(StatusMsg{Err: context.DeadlineExceeded})
	if changed {
		t.Fatal("read failure must not change status")
	}
	if cmd == nil {
		t.Fatal("expected a re-tick after a failed read")
	}
	if g.Status() != model.IngestPending {
		t.Fatalf("status drifted to %s", g.Status())
	}
}
