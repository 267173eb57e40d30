// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure that leaves the backend layer is an *E carrying one of the kinds
// below, so callers can branch on the category without inspecting status codes
// or transport errors themselves.
//
// The package supports wrapping underlying errors while maintaining error kind information.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Network indicates that no response reached the client (DNS, refused, timeout).
	Network Kind = "network"
	// Auth indicates a 401 from the service. The session has already been cleared.
	Auth Kind = "auth"
	// Validation indicates a 4xx carrying (possibly structured) validation detail.
	Validation Kind = "validation"
	// NotFound indicates a 404.
	NotFound Kind = "not_found"
	// Server indicates a 5xx or an unreadable success payload.
	Server Kind = "server"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	// Status is the HTTP status code, zero for network failures.
	Status int
	// Fields holds field-level validation messages keyed by field name.
	Fields map[string][]string
	Err    error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromStatus maps a non-2xx response to the error taxonomy.
func FromStatus(status int, body []byte) *E {
	e := &E{Status: status}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = Auth
		e.Message = "authentication required"
		if msg, _ := ParsePayload(body); msg != "" {
			e.Message = msg
		}
	case status == http.StatusNotFound:
		e.Kind = NotFound
		e.Message = "resource not found"
		if msg, _ := ParsePayload(body); msg != "" {
			e.Message = msg
		}
	case status >= 400 && status < 500:
		e.Kind = Validation
		msg, fields := ParsePayload(body)
		if msg == "" {
			msg = fmt.Sprintf("request rejected (%d %s)", status, http.StatusText(status))
		}
		e.Message = msg
		e.Fields = fields
	default:
		e.Kind = Server
		e.Message = fmt.Sprintf("server error (%d %s)", status, http.StatusText(status))
	}
	return e
}
