// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is far too long", 10, "this is..."},
		{"ünïcödé tëxt here", 10, "ünïcödé..."},
		{"abc", 2, "ab"},
		{"anything", 0, ""},
	}
	for _, tc := range cases {
		if got := TruncateRunes(tc.in, tc.max); got != tc.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestTruncateWidthCountsCJKAsDouble(t *testing.T) {
	// Each CJK rune occupies two columns.
	got := TruncateWidth("税務書類です", 7)
	if w := len([]rune(got)); w > 5 {
		t.Fatalf("truncated too little: %q", got)
	}
	if TruncateWidth("ok", 10) != "ok" {
		t.Fatal("short string mangled")
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Fatalf("PadRight: %q", got)
	}
}
