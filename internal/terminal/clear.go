// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides helpers for interactive terminal sessions.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const defaultWidth = 80

// Interactive reports whether f is attached to a terminal. Prompts are only
// shown when both stdin and stdout are interactive.
func Interactive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of the terminal behind f, or 80 when it
// cannot be determined.
func Width(f *os.File) int {
	if f == nil {
		return defaultWidth
	}
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// LinesFor returns how many rows text of the given length occupies when
// wrapped at width columns.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	if textLength <= 0 {
		return 1
	}
	return (textLength + width - 1) / width
}

// ClearPreviousLines erases a prompt of textLength characters together with
// the empty line left behind by the Enter key.
func ClearPreviousLines(w io.Writer, textLength, width int) {
	n := LinesFor(textLength, width) + 1
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}
