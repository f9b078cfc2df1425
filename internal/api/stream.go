// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"go.uber.org/zap"
)

// =============================================================================
// STREAM DECODER
// =============================================================================

// MaxLineBytes bounds a single buffered NDJSON line (1 MiB). A line that
// grows past the bound is consumed and dropped as malformed rather than
// accumulating without limit.
const MaxLineBytes = 1 << 20

// Decoder turns one chunked response body into an ordered sequence of
// StreamEvents. It is a lazy, finite, non-restartable pull decoder: each
// Next call reads forward until it has one complete line, so a record
// split across chunk boundaries is reassembled before parsing.
//
// Malformed lines are logged and skipped; they never abort the sequence.
// A residual unterminated fragment at end-of-stream is discarded.
type Decoder struct {
	r      *bufio.Reader
	logger *zap.Logger
}

// NewDecoder creates a decoder over a response body.
func NewDecoder(r io.Reader, logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{
		r:      bufio.NewReader(r),
		logger: logger,
	}
}

// Next returns the next decoded event. It returns io.EOF once the stream
// is exhausted and any other error verbatim from the transport.
func (d *Decoder) Next() (StreamEvent, error) {
	for {
		line, overflow, err := d.readLine()
		if err != nil {
			if err == io.EOF {
				if len(line) > 0 || overflow {
					// Half-written final line: a truncation
					// artifact, not a contract violation.
					d.logger.Debug("discarding unterminated trailing fragment",
						zap.Int("bytes", len(line)))
				}
				return StreamEvent{}, io.EOF
			}
			return StreamEvent{}, err
		}

		if overflow {
			d.logger.Warn("skipping oversized stream line",
				zap.Int("limit", MaxLineBytes))
			continue
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}

		var ev StreamEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			d.logger.Warn("skipping malformed stream line",
				zap.Int("bytes", len(line)), zap.Error(err))
			continue
		}
		return ev, nil
	}
}

// readLine reads up to and including the next newline. The overflow flag
// is set when the line exceeded MaxLineBytes; the line is still consumed
// through its terminator so decoding can continue, but its content is
// dropped.
func (d *Decoder) readLine() (line []byte, overflow bool, err error) {
	for {
		frag, ferr := d.r.ReadSlice('\n')
		if len(frag) > 0 {
			if overflow || len(line)+len(frag) > MaxLineBytes {
				overflow = true
				line = nil
			} else {
				line = append(line, frag...)
			}
		}
		switch ferr {
		case nil:
			return line, overflow, nil
		case bufio.ErrBufferFull:
			continue
		default:
			return line, overflow, ferr
		}
	}
}

// Process pulls events until done, end-of-stream, a transport error, or
// context cancellation, invoking the callback for each event in arrival
// order. It stops pulling as soon as a done event is delivered.
func (d *Decoder) Process(ctx context.Context, callback func(StreamEvent)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ev, err := d.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		callback(ev)
		if ev.IsDone() {
			return nil
		}
	}
}

// =============================================================================
// RESPONSE STREAM
// =============================================================================

// Stream couples a Decoder with the response body it reads from. Close
// releases the underlying connection; it must be called exactly once,
// including when the consumer tears down mid-stream.
type Stream struct {
	*Decoder
	body io.ReadCloser
}

// NewStream wraps a response body in a decoding stream.
func NewStream(body io.ReadCloser, logger *zap.Logger) *Stream {
	return &Stream{
		Decoder: NewDecoder(body, logger),
		body:    body,
	}
}

// Close releases the response body.
func (s *Stream) Close() error {
	return s.body.Close()
}
