// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viewer

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linguatax/linguatax-tui/internal/overlay"
)

func TestHighlightSwitchesToItsPage(t *testing.T) {
	m := New("doc-1", "Form 1040", 5, 16)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = m.Update(HighlightMsg{Request: overlay.Request{
		Page: 3, BBox: [4]float64{10, 10, 100, 30}, Label: "Line 11",
	}})

	if m.Page() != 3 {
		t.Fatalf("page: got %d, want 3", m.Page())
	}
	if m.Highlight() == nil || m.Highlight().Label != "Line 11" {
		t.Fatalf("highlight: %+v", m.Highlight())
	}
}

func TestManualPageChangeClearsHighlight(t *testing.T) {
	m := New("doc-1", "", 5, 16)
	m, _ = m.Update(HighlightMsg{Request: overlay.Request{
		Page: 2, BBox: [4]float64{0, 0, 10, 10},
	}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})

	if m.Page() != 3 {
		t.Fatalf("page: got %d, want 3", m.Page())
	}
	if m.Highlight() != nil {
		t.Fatal("highlight survived a page change")
	}
}

func TestJumpClampsToDocument(t *testing.T) {
	m := New("doc-1", "", 3, 16)

	m, _ = m.Update(JumpMsg{Jump: overlay.Jump{Page: 99}})
	if m.Page() != 3 {
		t.Fatalf("page: got %d, want 3", m.Page())
	}

	m, _ = m.Update(JumpMsg{Jump: overlay.Jump{Page: -1}})
	if m.Page() != 1 {
		t.Fatalf("page: got %d, want 1", m.Page())
	}
}

func TestOutOfRangeHighlightIgnored(t *testing.T) {
	m := New("doc-1", "", 2, 16)
	m, _ = m.Update(HighlightMsg{Request: overlay.Request{
		Page: 7, BBox: [4]float64{0, 0, 10, 10},
	}})

	if m.Highlight() != nil {
		t.Fatal("accepted a highlight for a page outside the document")
	}
	if m.Page() != 1 {
		t.Fatalf("page moved to %d", m.Page())
	}
}

func TestSubscribeForwardsBusTraffic(t *testing.T) {
	bus := overlay.NewBus()
	var got []tea.Msg
	unsub := Subscribe(bus, func(msg tea.Msg) { got = append(got, msg) })
	defer unsub()

	bus.PublishJump(overlay.Jump{Page: 2})
	bus.PublishHighlight(overlay.Request{Page: 2, BBox: [4]float64{0, 0, 1, 1}})

	if len(got) != 2 {
		t.Fatalf("expected 2 forwarded messages, got %d", len(got))
	}
	if _, ok := got[0].(JumpMsg); !ok {
		t.Fatalf("first message: %T", got[0])
	}
	if _, ok := got[1].(HighlightMsg); !ok {
		t.Fatalf("second message: %T", got[1])
	}
}

func TestZoomTogglesCanvasProjection(t *testing.T) {
	m := New("doc-1", "Form 1040", 2, 16)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 306, Height: 40})
	m, _ = m.Update(JumpMsg{Jump: overlay.Jump{Page: 2}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}})
	if !m.Zoomed() {
		t.Fatal("zoom key did not engage the canvas layout")
	}

	vp, ok := m.Viewport().(overlay.CanvasViewport)
	if !ok {
		t.Fatalf("zoomed viewport is %T, want CanvasViewport", m.Viewport())
	}
	if vp.Page != 2 {
		t.Fatalf("canvas page = %d, want 2", vp.Page)
	}

	// The zoomed canvas renders the page at half PDF scale (306/612).
	rect, ok := overlay.Project(overlay.Request{
		Page: 2, BBox: [4]float64{100, 200, 300, 240},
	}, vp)
	if !ok {
		t.Fatal("projection rejected on the zoomed page")
	}
	if rect.X != 50 || rect.Width != 100 {
		t.Fatalf("rect: %+v", rect)
	}

	// Only the rendered page can host a highlight in zoom mode.
	if _, ok := overlay.Project(overlay.Request{
		Page: 1, BBox: [4]float64{100, 200, 300, 240},
	}, vp); ok {
		t.Fatal("off-page projection accepted in zoom mode")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}})
	if _, ok := m.Viewport().(overlay.NativeViewport); !ok {
		t.Fatalf("unzoomed viewport is %T, want NativeViewport", m.Viewport())
	}
}
