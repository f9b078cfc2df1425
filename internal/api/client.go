// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/linguatax/linguatax-tui/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the API client.
type ClientConfig struct {
	// BaseURL of the LinguaTax backend (default: http://127.0.0.1:8000).
	BaseURL string

	// Timeout for non-streaming requests (default: 30s).
	Timeout time.Duration

	// MaxAttachments caps images per message (default: 3).
	MaxAttachments int

	// MaxAttachmentBytes caps one decoded image payload (default: 5 MiB).
	MaxAttachmentBytes int64

	// RequestsPerSecond is the client-side courtesy rate limit applied
	// to every request (default: 5, burst 10).
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:            "http://127.0.0.1:8000",
		Timeout:            30 * time.Second,
		MaxAttachments:     3,
		MaxAttachmentBytes: 5 << 20,
		RequestsPerSecond:  5,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the LinguaTax backend.
//
// It is constructed once at startup and handed to the orchestrator and
// the ingestion gate by parameter, which keeps it substitutable in tests.
// The Client is safe for concurrent use.
type Client struct {
	config  *ClientConfig
	http    *http.Client
	stream  *http.Client // no overall timeout: bodies stay open while streaming
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a new API client. A nil config selects defaults.
func NewClient(config *ClientConfig, logger *zap.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxAttachments == 0 {
		config.MaxAttachments = 3
	}
	if config.MaxAttachmentBytes == 0 {
		config.MaxAttachmentBytes = 5 << 20
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config:  config,
		http:    &http.Client{Timeout: config.Timeout},
		stream:  &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 10),
		logger:  logger,
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream issues a chat request and returns the decoding stream over
// its chunked response body. An empty DocumentID routes to the
// general-help endpoint. The caller owns the stream and must Close it,
// including on teardown mid-stream.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest) (*Stream, error) {
	if err := c.ValidateAttachments(req.Images); err != nil {
		return nil, err
	}

	endpoint := "/chat"
	if req.DocumentID == "" {
		endpoint = "/chat/general"
	}
	return c.openStream(ctx, endpoint, req)
}

// SummarizeStream issues the auto-summarize request for a document and
// returns its decoding stream.
func (c *Client) SummarizeStream(ctx context.Context, req SummarizeRequest) (*Stream, error) {
	return c.openStream(ctx, "/chat/summarize", req)
}

// openStream posts a JSON body and wraps the chunked NDJSON response.
func (c *Client) openStream(ctx context.Context, endpoint string, body any) (*Stream, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.stream.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.errorFromResponse(resp)
	}

	return NewStream(resp.Body, c.logger), nil
}

// =============================================================================
// DOCUMENT OPERATIONS
// =============================================================================

// statusResponse is the wire shape of the document status point read.
type statusResponse struct {
	IngestStatus model.IngestStatus `json:"ingest_status"`
	ErrorMessage string             `json:"error_message,omitempty"`
}

// DocumentStatus performs one ingestion status point read.
func (c *Client) DocumentStatus(ctx context.Context, documentID string) (model.IngestRecord, error) {
	var out statusResponse
	if err := c.getJSON(ctx, "/documents/"+url.PathEscape(documentID)+"/status", &out); err != nil {
		return model.IngestRecord{}, err
	}
	if !out.IngestStatus.Valid() {
		return model.IngestRecord{}, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: fmt.Sprintf("unknown ingest status %q", out.IngestStatus),
		}
	}
	return model.IngestRecord{
		DocumentID:   documentID,
		Status:       out.IngestStatus,
		ErrorMessage: out.ErrorMessage,
	}, nil
}

// TriggerIngest kicks the server-side ingestion pipeline for an uploaded
// document. Idempotent on the server: a document already processing is
// not restarted.
func (c *Client) TriggerIngest(ctx context.Context, documentID string) error {
	return c.postJSON(ctx, "/documents/"+url.PathEscape(documentID)+"/ingest", struct{}{}, nil)
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// LookupSession finds the caller's session keyed on (user,
// document-or-null), with its message log. Returns ErrNotFound when no
// session exists yet.
func (c *Client) LookupSession(ctx context.Context, documentID string) (*SessionRecord, error) {
	endpoint := "/chat/session"
	if documentID != "" {
		endpoint += "?document_id=" + url.QueryEscape(documentID)
	}
	var out SessionRecord
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// LOCAL VALIDATION
// =============================================================================

// ValidateAttachments enforces the per-message image caps locally,
// before any request is sent.
func (c *Client) ValidateAttachments(images []ImageAttachment) error {
	if len(images) > c.config.MaxAttachments {
		return &ClientError{
			Type:    ErrTypeValidation,
			Message: fmt.Sprintf("too many attachments: %d (limit %d)", len(images), c.config.MaxAttachments),
		}
	}
	for i, img := range images {
		// Decoded size without actually decoding the payload.
		size := int64(base64.StdEncoding.DecodedLen(len(img.Data)))
		if size > c.config.MaxAttachmentBytes {
			return &ClientError{
				Type: ErrTypeValidation,
				Message: fmt.Sprintf("attachment %d is too large: %d bytes (limit %d)",
					i+1, size, c.config.MaxAttachmentBytes),
			}
		}
	}
	return nil
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+endpoint, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.errorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.errorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// errorFromResponse converts a non-200 response into a typed error,
// preserving the backend's detail message when one is present.
func (c *Client) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	detail := ""
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		detail = parsed.Detail
		if detail == "" {
			detail = parsed.Message
		}
	}

	errType := ErrTypeServer
	switch {
	case resp.StatusCode == http.StatusNotFound:
		errType = ErrTypeNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		errType = ErrTypeInvalidResponse
	}

	msg := "backend returned " + resp.Status
	if detail != "" {
		msg += ": " + detail
	}
	return &ClientError{Type: errType, Message: msg}
}
