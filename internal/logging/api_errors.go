// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	apierr "kenes/cli/internal/errors"
)

// FormatAPIError renders err for the terminal: a title, what it usually means,
// field-level validation detail when present, and what to do next.
func FormatAPIError(err error) string {
	if err == nil {
		return ""
	}
	var e *apierr.E
	if !stderrors.As(err, &e) {
		return pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Error") + "\n\n" + Mask(err.Error()) + "\n"
	}

	var builder strings.Builder
	title, hint := describeKind(e.Kind)

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(title))
	builder.WriteString("\n\n")
	if e.Message != "" {
		builder.WriteString(Mask(e.Message))
		builder.WriteString("\n")
	}

	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		builder.WriteString("\n")
		for _, name := range names {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", name, strings.Join(e.Fields[name], "; ")))
		}
	}

	builder.WriteString("\n")
	builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ " + hint))
	builder.WriteString("\n")

	if e.Err != nil {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(e.Err.Error())))
		builder.WriteString("\n")
	}
	return builder.String()
}

func describeKind(k apierr.Kind) (title, hint string) {
	switch k {
	case apierr.Network:
		return "Connection Failed", "Check your network connection and the api_url setting, then try again"
	case apierr.Auth:
		return "Not Signed In", "Please run 'kenes login' and try again"
	case apierr.Validation:
		return "Request Rejected", "Correct the values above and try again"
	case apierr.NotFound:
		return "Not Found", "Check the identifier; the record may have been removed"
	case apierr.Server:
		return "Service Error", "The Kenes service failed to handle the request, please try again later"
	}
	return "Error", "Please try again"
}

// PresentAPIError prints a formatted error.
func PresentAPIError(err error) {
	fmt.Println()
	fmt.Println(FormatAPIError(err))
}

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}
