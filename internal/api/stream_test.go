// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

// chunkedReader yields its parts one Read at a time, reproducing
// arbitrary transport chunk boundaries.
type chunkedReader struct {
	parts [][]byte
	idx   int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.idx >= len(r.parts) {
		return 0, io.EOF
	}
	n := copy(p, r.parts[r.idx])
	if n < len(r.parts[r.idx]) {
		r.parts[r.idx] = r.parts[r.idx][n:]
		return n, nil
	}
	r.idx++
	return n, nil
}

func collect(t *testing.T, d *Decoder) []StreamEvent {
	t.Helper()
	var events []StreamEvent
	for {
		ev, err := d.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		events = append(events, ev)
	}
}

func TestDecoderReassemblesRecordSplitAcrossChunks(t *testing.T) {
	// One record split mid-token, one complete.
	r := &chunkedReader{parts: [][]byte{
		[]byte(`{"type":"answer_t`),
		[]byte("oken\",\"text\":\"Hi\"}\n{\"type\":\"done\"}\n"),
	}}

	events := collect(t, NewDecoder(r, nil))
	if len(events) != 2 {
		t.Fatalf("expected exactly 2 events, got %d", len(events))
	}
	if events[0].Type != EventAnswerToken || events[0].Text != "Hi" {
		t.Fatalf("first event: %+v", events[0])
	}
	if events[1].Type != EventDone {
		t.Fatalf("second event: %+v", events[1])
	}
}

func TestDecoderChunkBoundaryInvariance(t *testing.T) {
	payload := `{"type":"meta","chat_id":"c1"}` + "\n" +
		`{"type":"status","stage":"reading_document"}` + "\n" +
		`{"type":"answer_token","text":"Box 1 holds wages."}` + "\n" +
		`{"type":"done"}` + "\n"

	want := collect(t, NewDecoder(strings.NewReader(payload), nil))
	if len(want) != 4 {
		t.Fatalf("baseline: %d events", len(want))
	}

	// Every single-split partition of the payload must decode
	// identically to the unsplit stream.
	for cut := 1; cut < len(payload); cut++ {
		r := &chunkedReader{parts: [][]byte{
			[]byte(payload[:cut]),
			[]byte(payload[cut:]),
		}}
		got := collect(t, NewDecoder(r, nil))
		if len(got) != len(want) {
			t.Fatalf("cut %d: %d events, want %d", cut, len(got), len(want))
		}
		for i := range got {
			if got[i].Type != want[i].Type || got[i].Text != want[i].Text ||
				got[i].ChatID != want[i].ChatID || got[i].Stage != want[i].Stage {
				t.Fatalf("cut %d event %d: %+v != %+v", cut, i, got[i], want[i])
			}
		}
	}
}

func TestDecoderSkipsMalformedLines(t *testing.T) {
	payload := `{"type":"answer_token","text":"ok"}` + "\n" +
		"this is not json\n" +
		"{\"truncated\":\n" +
		`{"type":"done"}` + "\n"

	events := collect(t, NewDecoder(strings.NewReader(payload), nil))
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Text != "ok" || events[1].Type != EventDone {
		t.Fatalf("events: %+v", events)
	}
}

func TestDecoderSkipsBlankLines(t *testing.T) {
	payload := "\n\r\n" + `{"type":"done"}` + "\n\n"
	events := collect(t, NewDecoder(strings.NewReader(payload), nil))
	if len(events) != 1 || events[0].Type != EventDone {
		t.Fatalf("events: %+v", events)
	}
}

func TestDecoderDiscardsUnterminatedTrailingFragment(t *testing.T) {
	payload := `{"type":"answer_token","text":"partial answer"}` + "\n" +
		`{"type":"answer_token","text":"cut off mid-rec`

	events := collect(t, NewDecoder(strings.NewReader(payload), nil))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Text != "partial answer" {
		t.Fatalf("event: %+v", events[0])
	}
}

func TestDecoderDropsOversizedLine(t *testing.T) {
	var b bytes.Buffer
	b.WriteString(`{"type":"answer_token","text":"`)
	b.Write(bytes.Repeat([]byte("x"), MaxLineBytes))
	b.WriteString("\"}\n")
	b.WriteString(`{"type":"done"}` + "\n")

	events := collect(t, NewDecoder(&b, nil))
	if len(events) != 1 || events[0].Type != EventDone {
		t.Fatalf("expected only the done event, got %+v", events)
	}
}

func TestProcessStopsAtDone(t *testing.T) {
	// Records after done must not be delivered.
	payload := `{"type":"answer_token","text":"a"}` + "\n" +
		`{"type":"done"}` + "\n" +
		`{"type":"answer_token","text":"late"}` + "\n"

	var got []StreamEvent
	err := NewDecoder(strings.NewReader(payload), nil).
		Process(context.Background(), func(ev StreamEvent) { got = append(got, ev) })
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(got) != 2 || !got[1].IsDone() {
		t.Fatalf("events: %+v", got)
	}
}

func TestProcessHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDecoder(strings.NewReader(`{"type":"done"}`+"\n"), nil).
		Process(ctx, func(StreamEvent) {})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
