// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"kenes/cli/internal/backend"
	"kenes/cli/internal/cache"
)

// withSpinner runs fn behind a transient spinner on stderr. The spinner is
// skipped for JSON output so that stdout stays machine-readable.
func withSpinner[T any](cmd *cobra.Command, text string, fn func() (T, error)) (T, error) {
	if outputFlag == outputJSON {
		return fn()
	}
	spinner, err := pterm.DefaultSpinner.
		WithWriter(cmd.ErrOrStderr()).
		WithRemoveWhenDone(true).
		Start(text)
	if err != nil {
		return fn()
	}
	v, err := fn()
	_ = spinner.Stop()
	return v, err
}

// load runs a cached read behind a spinner. When the refresh fails but an
// earlier value is cached, that value is returned with a staleness note.
func load[T any](cmd *cobra.Command, text string, read func() (cache.Result[T], error)) (T, error) {
	res, err := withSpinner(cmd, text, read)
	if err != nil && !res.HasData {
		var zero T
		return zero, err
	}
	staleNote(cmd, res)
	return res.Data, nil
}

// readOpts returns the cache options implied by global flags.
func readOpts() []cache.ReadOption {
	if refreshFlag {
		return []cache.ReadOption{cache.Force()}
	}
	return nil
}

// render prints v as JSON or the given rows as a table.
func render(cmd *cobra.Command, v any, header []string, rows [][]string) error {
	w := cmd.OutOrStdout()
	if outputFlag == outputJSON {
		return printJSON(w, v)
	}
	if len(rows) == 0 {
		pterm.Fprintln(w, pterm.NewStyle(pterm.FgGray).Sprint("Nothing to show"))
		return nil
	}
	data := append([][]string{header}, rows...)
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

// renderFields prints v as JSON or as an aligned key/value block.
func renderFields(cmd *cobra.Command, v any, fields [][2]string) error {
	w := cmd.OutOrStdout()
	if outputFlag == outputJSON {
		return printJSON(w, v)
	}
	width := 0
	for _, f := range fields {
		width = max(width, len(f[0]))
	}
	label := pterm.NewStyle(pterm.FgLightCyan)
	for _, f := range fields {
		pterm.Fprintln(w, label.Sprint(fmt.Sprintf("%-*s  ", width, f[0]))+f[1])
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// staleNote tells the user that cached data is shown, e.g. after a failed refresh.
func staleNote[T any](cmd *cobra.Command, res cache.Result[T]) {
	if !res.Stale || outputFlag == outputJSON {
		return
	}
	pterm.Fprintln(cmd.ErrOrStderr(), pterm.NewStyle(pterm.FgGray).Sprintf(
		"showing data fetched %s ago", time.Since(res.FetchedAt).Round(time.Second)))
}

// pageFooter prints pagination details of a list response.
func pageFooter(cmd *cobra.Command, count, shown int, next *string) {
	if outputFlag == outputJSON {
		return
	}
	msg := fmt.Sprintf("%d of %d", shown, count)
	if next != nil {
		msg += " (more with --page)"
	}
	pterm.Fprintln(cmd.ErrOrStderr(), pterm.NewStyle(pterm.FgGray).Sprint(msg))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

// parsePairs parses repeated key=value flags.
func parsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid %q: expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// listFilters merges named filter flags with free-form --filter pairs.
// Empty named values are dropped; the service treats absent and empty alike.
func listFilters(named map[string]string, extra []string, page int) (backend.Filters, error) {
	f, err := parsePairs(extra)
	if err != nil {
		return nil, err
	}
	for k, v := range named {
		if v != "" {
			f[k] = v
		}
	}
	if page > 0 {
		f["page"] = strconv.Itoa(page)
	}
	if len(f) == 0 {
		return nil, nil
	}
	return backend.Filters(f), nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
