// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package overlay

import "testing"

func TestFindFieldExactMatch(t *testing.T) {
	loc, ok := FindField("agi")
	if !ok {
		t.Fatal("known field not found")
	}
	if loc.Page != 1 {
		t.Fatalf("page = %d, want 1", loc.Page)
	}
	if loc.Label != "Line 11 — Adjusted gross income" {
		t.Fatalf("label = %q", loc.Label)
	}
}

func TestFindFieldIsCaseInsensitive(t *testing.T) {
	loc, ok := FindField("  Taxable Income ")
	if !ok {
		t.Fatal("field not found despite case/space noise")
	}
	if loc.Page != 1 || loc.BBox != [4]float64{400, 600, 580, 613} {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestFindFieldFuzzyMatch(t *testing.T) {
	// "total wages" contains the key "wages".
	loc, ok := FindField("total wages")
	if !ok {
		t.Fatal("substring match failed")
	}
	if loc.Page != 1 || loc.BBox[1] != 415 {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestFindFieldMatchesLabelText(t *testing.T) {
	loc, ok := FindField("line 24")
	if !ok {
		t.Fatal("label-text match failed")
	}
	if loc.Page != 2 || loc.Label != "Line 24 — Total tax" {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestFindFieldMiss(t *testing.T) {
	for _, name := range []string{"", "   ", "qualified kumquat"} {
		if _, ok := FindField(name); ok {
			t.Fatalf("FindField(%q) unexpectedly matched", name)
		}
	}
}

func TestFieldLocationsAllProjectable(t *testing.T) {
	vp := NativeViewport{ContainerWidth: 612, Pages: 2}
	for name, loc := range form1040Fields {
		req := Request{Page: loc.Page, BBox: loc.BBox, Method: MethodField}
		if _, ok := Project(req, vp); !ok {
			t.Fatalf("field %q does not project: %+v", name, loc)
		}
	}
}

func TestTextRegionIsDrawable(t *testing.T) {
	box := TextRegion()
	if box[2] <= box[0] || box[3] <= box[1] {
		t.Fatalf("degenerate fallback region: %v", box)
	}
	req := Request{Page: 1, BBox: box, Method: MethodText}
	if _, ok := Project(req, NativeViewport{ContainerWidth: 612, Pages: 1}); !ok {
		t.Fatal("fallback region rejected by projection")
	}
}
