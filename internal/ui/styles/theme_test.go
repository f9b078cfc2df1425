// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewThemeRendersWithoutPanic(t *testing.T) {
	theme := NewTheme()

	for name, style := range map[string]string{
		"role":      theme.RoleTag.Render("You"),
		"user":      theme.UserBubble.Render("hello"),
		"assistant": theme.AssistantBubble.Render("hi"),
		"error":     theme.ErrorBanner.Render("boom"),
		"highlight": theme.Highlight.Render("Line 11"),
	} {
		if style == "" {
			t.Errorf("%s style rendered empty", name)
		}
	}
}
