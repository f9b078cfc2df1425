// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linguatax/linguatax-tui/internal/api"
	"github.com/linguatax/linguatax-tui/internal/config"
	"github.com/linguatax/linguatax-tui/internal/model"
	"github.com/linguatax/linguatax-tui/internal/ui/chat"
)

func TestConfigReloadReachesChatPane(t *testing.T) {
	chatPane := chat.New(chat.Options{
		Client:  api.NewClient(nil, nil),
		Session: model.NewSession(""),
		Send:    func(tea.Msg) {},
	})
	a := newApp(config.Default(), zap.NewNop(), chatPane, nil)

	next := config.Default()
	next.Chat.Language = "de"
	a.Update(ConfigReloadedMsg{Config: next})

	if got := chatPane.Config().Chat.Language; got != "de" {
		t.Fatalf("chat pane language after reload = %q, want de", got)
	}
	if a.cfg != next {
		t.Fatal("app model kept the stale config")
	}
}

func TestResolveConfigPathPrefersFlag(t *testing.T) {
	if got := resolveConfigPath("/tmp/custom.toml"); got != "/tmp/custom.toml" {
		t.Fatalf("explicit path not honored: %q", got)
	}

	def, err := config.Path()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if got := resolveConfigPath(""); got != def {
		t.Fatalf("default path = %q, want %q", got, def)
	}
}
