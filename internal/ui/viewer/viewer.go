// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package viewer is the document pane: it tracks the visible page,
// owns the viewport metrics used for coordinate projection, and draws
// the active highlight.
//
// Highlight and jump requests arrive over the overlay bus. The pane is
// the only holder of projection metrics, so requests are projected
// here, at display time, against whatever the layout currently is.
package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linguatax/linguatax-tui/internal/overlay"
	"github.com/linguatax/linguatax-tui/internal/ui/styles"
	"github.com/linguatax/linguatax-tui/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

// HighlightMsg carries a bus highlight request into the update loop.
type HighlightMsg struct {
	Request overlay.Request
}

// JumpMsg carries a bus page-jump request into the update loop.
type JumpMsg struct {
	Jump overlay.Jump
}

// Subscribe wires the bus to the program's message queue and returns
// the combined unsubscribe func.
func Subscribe(bus *overlay.Bus, send func(tea.Msg)) func() {
	unsubH := bus.SubscribeHighlight(func(req overlay.Request) {
		send(HighlightMsg{Request: req})
	})
	unsubJ := bus.SubscribeJump(func(j overlay.Jump) {
		send(JumpMsg{Jump: j})
	})
	return func() {
		unsubH()
		unsubJ()
	}
}

// =============================================================================
// KEY MAP
// =============================================================================

// KeyMap defines the pane's shortcuts.
type KeyMap struct {
	PrevPage key.Binding
	NextPage key.Binding
	Zoom     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevPage: key.NewBinding(
			key.WithKeys("left", "["),
			key.WithHelp("←", "previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "]"),
			key.WithHelp("→", "next page"),
		),
		Zoom: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "zoom page"),
		),
	}
}

// =============================================================================
// VIEWER MODEL
// =============================================================================

// Model is the Bubble Tea model for the document pane.
type Model struct {
	theme  *styles.Theme
	keyMap KeyMap

	documentID string
	title      string
	pages      int
	page       int

	width  int
	height int

	// pageGap mirrors the continuous-layout gap used for projection.
	pageGap float64

	// zoomed switches from the continuous layout to a single-page
	// canvas filling the pane width.
	zoomed bool

	// Active highlight, nil when nothing is marked. The projected rect
	// is recomputed on every layout change rather than stored.
	highlight *overlay.Request
}

// New creates a viewer for a document with a known page count.
func New(documentID, title string, pages int, pageGap float64) *Model {
	if pages < 1 {
		pages = 1
	}
	return &Model{
		theme:      styles.NewTheme(),
		keyMap:     DefaultKeyMap(),
		documentID: documentID,
		title:      title,
		pages:      pages,
		page:       1,
		pageGap:    pageGap,
	}
}

// Page returns the 1-based visible page.
func (m *Model) Page() int { return m.page }

// Highlight returns the active highlight request, or nil.
func (m *Model) Highlight() *overlay.Request { return m.highlight }

// Zoomed reports whether the single-page canvas layout is active.
func (m *Model) Zoomed() bool { return m.zoomed }

// Viewport returns the projection backend for the current layout: the
// continuous-scroll layout normally, the single-page canvas when
// zoomed.
func (m *Model) Viewport() overlay.Viewport {
	if m.zoomed {
		return overlay.CanvasViewport{
			Page:           m.page,
			Pages:          m.pages,
			RenderedWidth:  float64(m.width),
			RenderedHeight: float64(m.width) * overlay.PageHeightPt / overlay.PageWidthPt,
			PDFWidth:       overlay.PageWidthPt,
			PDFHeight:      overlay.PageHeightPt,
		}
	}
	return overlay.NativeViewport{
		ContainerWidth: float64(m.width),
		Pages:          m.pages,
		PageGap:        m.pageGap,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update advances the pane.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.PrevPage):
			m.setPage(m.page - 1)
		case key.Matches(msg, m.keyMap.NextPage):
			m.setPage(m.page + 1)
		case key.Matches(msg, m.keyMap.Zoom):
			m.zoomed = !m.zoomed
		}
		return m, nil

	case JumpMsg:
		m.setPage(msg.Jump.Page)
		return m, nil

	case HighlightMsg:
		req := msg.Request
		if req.Page < 1 || req.Page > m.pages {
			// Stale citation pointing outside the document.
			return m, nil
		}
		m.page = req.Page
		m.highlight = &req
		return m, nil
	}
	return m, nil
}

// setPage clamps and switches the page. Manual navigation away from a
// highlighted page clears the highlight.
func (m *Model) setPage(page int) {
	if page < 1 {
		page = 1
	}
	if page > m.pages {
		page = m.pages
	}
	if page == m.page {
		return
	}
	m.page = page
	m.highlight = nil
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the page frame and, when present, the projected
// highlight position.
func (m *Model) View() string {
	var b strings.Builder

	header := m.title
	if header == "" {
		header = m.documentID
	}
	b.WriteString(m.theme.PageHeader.Render(header))
	b.WriteString("\n")
	status := fmt.Sprintf("Page %d of %d", m.page, m.pages)
	if m.zoomed {
		status += "  (zoomed)"
	}
	b.WriteString(m.theme.StatusBar.Render(status))
	b.WriteString("\n")

	if m.highlight != nil {
		if rect, ok := overlay.Project(*m.highlight, m.Viewport()); ok {
			label := m.highlight.Label
			if label == "" {
				label = "highlighted passage"
			}
			if m.width > 24 {
				label = util.TruncateWidth(label, m.width-24)
			}
			b.WriteString(m.theme.Highlight.Render(
				fmt.Sprintf("▌ %s  (x=%.0f y=%.0f w=%.0f h=%.0f)",
					label, rect.X, rect.Y, rect.Width, rect.Height)))
			b.WriteString("\n")
		}
	}
	return b.String()
}
