// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeNotFound
	ErrTypeServer
	ErrTypeInvalidResponse
	ErrTypeValidation
)

// ClientError represents an error from the LinguaTax API client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrNotFound    = &ClientError{Type: ErrTypeNotFound, Message: "not found"}
	ErrUnreachable = &ClientError{Type: ErrTypeConnection, Message: "backend is unreachable"}
)

// IsTimeout reports whether the error is a timeout.
func IsTimeout(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeTimeout
}

// IsNotFound reports whether the error is a missing-resource error.
func IsNotFound(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeNotFound
}

// IsValidation reports whether the error is a local validation failure,
// raised before any network call.
func IsValidation(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeValidation
}
