// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"

	"github.com/pterm/pterm"

	"kenes/cli/internal/events"
)

// Presenter renders data-layer events as terminal notifications.
type Presenter struct {
	// Quiet suppresses success notifications (e.g. for --output json).
	Quiet bool
	// ExpiryHint is appended to session-expired warnings.
	ExpiryHint string

	out io.Writer
}

// NewPresenter returns a presenter writing to w (stderr when nil).
func NewPresenter(w io.Writer) *Presenter {
	if w == nil {
		w = os.Stderr
	}
	return &Presenter{out: w, ExpiryHint: "run 'kenes login' to sign in again"}
}

// Handle implements events.Handler.
func (p *Presenter) Handle(e events.Event) {
	switch e.Type {
	case events.Success:
		if p.Quiet {
			return
		}
		pterm.Success.WithWriter(p.out).Println(Mask(e.Message))
	case events.Failure:
		pterm.Error.WithWriter(p.out).Println(Mask(e.Message))
	case events.SessionExpired:
		msg := e.Message
		if p.ExpiryHint != "" {
			msg += "; " + p.ExpiryHint
		}
		pterm.Warning.WithWriter(p.out).Println(msg)
	}
}
