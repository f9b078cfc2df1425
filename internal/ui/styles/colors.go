// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Adaptive palette: each color carries a light- and dark-background
// variant and lipgloss picks at render time.

var Blue = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1D4ED8"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}

var AssistantBubbleBg = lipgloss.AdaptiveColor{Light: "#F5F3FF", Dark: "#3B3655"}
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"}

var ErrorBg = lipgloss.AdaptiveColor{Light: "#FEE2E2", Dark: "#881337"}
var ErrorFg = lipgloss.AdaptiveColor{Light: "#991B1B", Dark: "#FECACA"}

var HighlightBg = lipgloss.AdaptiveColor{Light: "#FEF9C3", Dark: "#713F12"}
var HighlightFg = lipgloss.AdaptiveColor{Light: "#854D0E", Dark: "#FEF08A"}
