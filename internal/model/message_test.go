// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestStatusOrderingAndTerminal(t *testing.T) {
	m := NewAssistantMessage()
	if m.Status != StatusThinking {
		t.Fatalf("initial status: %s", m.Status)
	}

	m.AdvanceStatus(StatusResponding)
	m.AdvanceStatus(StatusThinking) // regression, ignored
	if m.Status != StatusResponding {
		t.Fatalf("status regressed: %s", m.Status)
	}

	m.AdvanceStatus(StatusDone)
	if !m.Status.Terminal() {
		t.Fatal("done not terminal")
	}
	m.AdvanceStatus(StatusResponding)
	if m.Status != StatusDone {
		t.Fatal("terminal status moved")
	}
}

func TestContentAccumulationAndFinalize(t *testing.T) {
	m := NewAssistantMessage()
	m.AppendContent("Box 2 shows ")
	m.AppendContent("withheld federal tax.")

	if m.DisplayContent() != "Box 2 shows withheld federal tax." {
		t.Fatalf("display: %q", m.DisplayContent())
	}
	if m.IsEmpty() {
		t.Fatal("message with streamed content reported empty")
	}

	m.Finalize()
	if m.Content != "Box 2 shows withheld federal tax." {
		t.Fatalf("finalized content: %q", m.Content)
	}
}

func TestPreviewIsRuneSafe(t *testing.T) {
	m := NewUserMessage(strings.Repeat("ü", 50))
	p := m.Preview(10)
	if len([]rune(p)) != 10 {
		t.Fatalf("preview runes: %d", len([]rune(p)))
	}
	if !strings.HasSuffix(p, "...") {
		t.Fatalf("preview: %q", p)
	}
}

func TestRestoreMessageIsDone(t *testing.T) {
	m := RestoreMessage("m1", RoleAssistant, "stored answer", "stored plan")
	if m.Status != StatusDone {
		t.Fatalf("status: %s", m.Status)
	}
	if m.DisplayContent() != "stored answer" || m.Plan() != "stored plan" {
		t.Fatalf("restored: %q / %q", m.DisplayContent(), m.Plan())
	}
}

func TestSessionBindIDOnlyOnce(t *testing.T) {
	s := NewSession("doc-1")
	s.BindID("chat-1")
	s.BindID("chat-2")
	if s.ID != "chat-1" {
		t.Fatalf("id rebound: %s", s.ID)
	}
	if !s.DocumentMode() {
		t.Fatal("document session not in document mode")
	}
	if NewSession("").DocumentMode() {
		t.Fatal("general session claims document mode")
	}
}

func TestSessionAutoSummaryLookup(t *testing.T) {
	s := NewSession("doc-1")
	if s.AutoSummary() != nil {
		t.Fatal("empty session has a summary")
	}

	s.Append(NewUserMessage("hi"))
	tagged := NewAssistantMessage()
	tagged.IsAutoSummary = true
	s.Append(tagged)

	if s.AutoSummary() != tagged {
		t.Fatal("tagged overview not found")
	}
	if s.Last() != tagged || s.Len() != 2 {
		t.Fatalf("session shape: len=%d", s.Len())
	}
}

func TestIngestStatusClassification(t *testing.T) {
	for _, st := range []IngestStatus{IngestPending, IngestProcessing} {
		if st.Terminal() {
			t.Fatalf("%s misclassified as terminal", st)
		}
		if !st.Valid() {
			t.Fatalf("%s misclassified as invalid", st)
		}
	}
	for _, st := range []IngestStatus{IngestReady, IngestError} {
		if !st.Terminal() {
			t.Fatalf("%s misclassified as non-terminal", st)
		}
	}
	if IngestStatus("exploded").Valid() {
		t.Fatal("unknown status accepted")
	}
}
