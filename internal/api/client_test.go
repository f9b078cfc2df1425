// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/linguatax/linguatax-tui/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(&ClientConfig{BaseURL: srv.URL}, nil)
	return client, srv
}

func TestChatStreamRoutesByDocumentMode(t *testing.T) {
	var gotPath string
	var gotBody ChatRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(`{"type":"done"}` + "\n"))
	}))

	stream, err := client.ChatStream(context.Background(), ChatRequest{
		DocumentID: "doc-1",
		Question:   "what is box 2?",
		Language:   "en",
	})
	if err != nil {
		t.Fatalf("chat stream: %v", err)
	}
	stream.Close()
	if gotPath != "/chat" {
		t.Fatalf("document chat hit %s", gotPath)
	}
	if gotBody.Question != "what is box 2?" || gotBody.Language != "en" {
		t.Fatalf("body: %+v", gotBody)
	}

	stream, err = client.ChatStream(context.Background(), ChatRequest{Question: "hi", Language: "en"})
	if err != nil {
		t.Fatalf("general chat stream: %v", err)
	}
	stream.Close()
	if gotPath != "/chat/general" {
		t.Fatalf("general chat hit %s", gotPath)
	}
}

func TestChatStreamDecodesEvents(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(`{"type":"meta","chat_id":"c7"}` + "\n"))
		w.Write([]byte(`{"type":"answer_token","text":"hello"}` + "\n"))
		w.Write([]byte(`{"type":"done"}` + "\n"))
	}))

	stream, err := client.ChatStream(context.Background(), ChatRequest{Question: "q", Language: "en"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer stream.Close()

	var types []EventType
	err = stream.Process(context.Background(), func(ev StreamEvent) {
		types = append(types, ev.Type)
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := []EventType{EventMeta, EventAnswerToken, EventDone}
	if len(types) != len(want) {
		t.Fatalf("types: %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event %d: %s, want %s", i, types[i], want[i])
		}
	}
}

func TestValidateAttachmentsCaps(t *testing.T) {
	client := NewClient(nil, nil)

	many := make([]ImageAttachment, 4)
	for i := range many {
		many[i] = ImageAttachment{Data: "aGk=", MimeType: "image/png"}
	}
	if err := client.ValidateAttachments(many); !IsValidation(err) {
		t.Fatalf("count cap: %v", err)
	}

	huge := ImageAttachment{
		Data:     strings.Repeat("A", (5<<20)*4/3+8),
		MimeType: "image/png",
	}
	if err := client.ValidateAttachments([]ImageAttachment{huge}); !IsValidation(err) {
		t.Fatalf("size cap: %v", err)
	}

	ok := []ImageAttachment{{Data: "aGk=", MimeType: "image/png"}}
	if err := client.ValidateAttachments(ok); err != nil {
		t.Fatalf("valid attachment rejected: %v", err)
	}
}

func TestDocumentStatusReadsAndValidates(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/doc-9/status" {
			t.Errorf("path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"ingest_status": "processing"})
	}))

	rec, err := client.DocumentStatus(context.Background(), "doc-9")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if rec.Status != model.IngestProcessing || rec.DocumentID != "doc-9" {
		t.Fatalf("record: %+v", rec)
	}
}

func TestDocumentStatusRejectsUnknownStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"ingest_status": "exploded"})
	}))

	_, err := client.DocumentStatus(context.Background(), "doc-9")
	if err == nil {
		t.Fatal("accepted an unknown ingest status")
	}
}

func TestLookupSessionNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"no session"}`, http.StatusNotFound)
	}))

	_, err := client.LookupSession(context.Background(), "doc-1")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestLookupSessionReturnsTranscript(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("document_id") != "doc-1" {
			t.Errorf("query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(SessionRecord{
			ChatID:     "chat-3",
			DocumentID: "doc-1",
			Messages: []MessageRecord{
				{ID: "m1", Role: "assistant", Content: "overview", IsAutoSummary: true},
			},
		})
	}))

	rec, err := client.LookupSession(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	session := rec.ToSession()
	if session.ID != "chat-3" || session.AutoSummary() == nil {
		t.Fatalf("session: %+v", session)
	}
	if session.AutoSummary().Status != model.StatusDone {
		t.Fatal("restored message not done")
	}
}

func TestServerErrorSurfacesDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"model overloaded"}`, http.StatusInternalServerError)
	}))

	_, err := client.ChatStream(context.Background(), ChatRequest{Question: "q", Language: "en"})
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("error detail lost: %v", err)
	}
}

func TestConnectionRefusedIsClientError(t *testing.T) {
	client := NewClient(&ClientConfig{BaseURL: "http://127.0.0.1:1"}, nil)

	_, err := client.ChatStream(context.Background(), ChatRequest{Question: "q", Language: "en"})
	if err == nil {
		t.Fatal("expected connection error")
	}
	var cerr *ClientError
	if !errors.As(err, &cerr) || cerr.Type != ErrTypeConnection {
		t.Fatalf("error taxonomy: %v", err)
	}
}
