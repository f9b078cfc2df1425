// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package overlay

// =============================================================================
// GEOMETRY
// =============================================================================

// US Letter page dimensions in PDF points, the extraction pipeline's
// reference space.
const (
	PageWidthPt  = 612.0
	PageHeightPt = 792.0
)

// Highlight methods reported by the extraction pipeline.
const (
	MethodText  = "text"
	MethodField = "form_field"
)

// Rect is an on-screen rectangle in viewer pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Request asks for one bounding box to be shown. BBox is
// [x0, y0, x1, y1] in PDF points with a top-left origin; Page is
// 1-based.
type Request struct {
	Page   int
	BBox   [4]float64
	Label  string
	Method string
}

// Viewport is a document viewer backend able to place a PDF-point box
// on screen.
type Viewport interface {
	// PageCount returns the number of pages currently laid out.
	PageCount() int
	// project maps a request onto the viewport. ok is false when the
	// requested page is not visible or metrics are missing.
	project(req Request) (Rect, bool)
}

// Project maps a highlight request through a viewport. The zero Rect
// and false are returned for out-of-range pages, degenerate boxes, and
// unmeasured viewports; callers skip drawing in that case.
func Project(req Request, vp Viewport) (Rect, bool) {
	if vp == nil || req.Page < 1 || req.Page > vp.PageCount() {
		return Rect{}, false
	}
	if req.BBox[2] <= req.BBox[0] || req.BBox[3] <= req.BBox[1] {
		return Rect{}, false
	}
	return vp.project(req)
}

// =============================================================================
// NATIVE VIEWPORT
// =============================================================================

// NativeViewport models the built-in continuous-scroll viewer: every
// page is rendered at the same scale, stacked vertically with PageGap
// pixels between pages.
type NativeViewport struct {
	ContainerWidth float64
	Pages          int
	PageGap        float64
}

func (v NativeViewport) PageCount() int { return v.Pages }

func (v NativeViewport) project(req Request) (Rect, bool) {
	if v.ContainerWidth <= 0 {
		return Rect{}, false
	}
	scale := v.ContainerWidth / PageWidthPt
	offsetY := float64(req.Page-1) * (PageHeightPt*scale + v.PageGap)
	return Rect{
		X:      req.BBox[0] * scale,
		Y:      offsetY + req.BBox[1]*scale,
		Width:  (req.BBox[2] - req.BBox[0]) * scale,
		Height: (req.BBox[3] - req.BBox[1]) * scale,
	}, true
}

// =============================================================================
// CANVAS VIEWPORT
// =============================================================================

// CanvasViewport models a single-page canvas renderer. Horizontal and
// vertical scale are measured independently from the rendered
// dimensions; only the currently rendered page can host a highlight.
type CanvasViewport struct {
	Page           int
	Pages          int
	RenderedWidth  float64
	RenderedHeight float64
	PDFWidth       float64
	PDFHeight      float64
}

func (v CanvasViewport) PageCount() int { return v.Pages }

func (v CanvasViewport) project(req Request) (Rect, bool) {
	if req.Page != v.Page {
		return Rect{}, false
	}
	if v.RenderedWidth <= 0 || v.RenderedHeight <= 0 || v.PDFWidth <= 0 || v.PDFHeight <= 0 {
		return Rect{}, false
	}
	sx := v.RenderedWidth / v.PDFWidth
	sy := v.RenderedHeight / v.PDFHeight
	return Rect{
		X:      req.BBox[0] * sx,
		Y:      req.BBox[1] * sy,
		Width:  (req.BBox[2] - req.BBox[0]) * sx,
		Height: (req.BBox[3] - req.BBox[1]) * sy,
	}, true
}
