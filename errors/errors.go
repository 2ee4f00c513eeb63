// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

// Package errors implements the two programmer-error classes magiclink raises:
// CryptoError for cryptographic misconfiguration and failures, and
// InvalidFormat for malformed structural input supplied by the caller
// (not the attacker-controlled wire format, which is reported as a verify
// reason code instead, never as a Go error).
package errors

import "fmt"

// Code identifies the class of a magiclink error.
type Code string

const (
	// Crypto marks failures in key selection, signing, or AEAD operations.
	Crypto Code = "CRYPTO_ERROR"
	// InvalidFormat marks structurally malformed caller input (a bad base
	// URL passed to issue, a non-finite float handed to the canonical
	// encoder, and similar programmer mistakes).
	InvalidFormat Code = "INVALID_FORMAT"
)

// Error is the error type returned for programmer mistakes. Hostile,
// attacker-controlled input during verification never produces an Error; it
// produces a verify result with a reason code instead (see package verify).
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// With attaches an underlying cause to the error.
func (e *Error) With(err error) *Error {
	e.Err = err
	return e
}

// NewCryptoError creates a crypto-class Error.
func NewCryptoError(message string) *Error {
	return &Error{Code: Crypto, Message: message}
}

// NewCryptoErrorf wraps err into a crypto-class Error with a message.
func NewCryptoErrorf(message string, err error) *Error {
	return NewCryptoError(message).With(err)
}

// NewInvalidFormat creates an invalid-format Error.
func NewInvalidFormat(message string) *Error {
	return &Error{Code: InvalidFormat, Message: message}
}

// NewInvalidFormatf wraps err into an invalid-format Error with a message.
func NewInvalidFormatf(message string, err error) *Error {
	return NewInvalidFormat(message).With(err)
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}

// IsCryptoError reports whether err is a crypto-class Error.
func IsCryptoError(err error) bool {
	return Is(err, Crypto)
}

// IsInvalidFormat reports whether err is an invalid-format Error.
func IsInvalidFormat(err error) bool {
	return Is(err, InvalidFormat)
}
