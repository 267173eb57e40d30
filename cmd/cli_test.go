// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/99designs/keyring"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kenes/cli/internal/config"
	apierr "kenes/cli/internal/errors"
	"kenes/cli/internal/keychain"
	"kenes/cli/internal/model"
)

type cliEnv struct {
	ring keyring.Keyring
}

func newCLIEnv(t *testing.T, api http.Handler) *cliEnv {
	t.Helper()
	pterm.DisableStyling()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv(config.EnvAPIURL, server.URL+"/api")

	env := &cliEnv{ring: keyring.NewArrayKeyring(nil)}
	prev := openKeyring
	openKeyring = func(keychain.Config) (keyring.Keyring, error) { return env.ring, nil }
	t.Cleanup(func() { openKeyring = prev })
	return env
}

// run executes one CLI invocation with JSON output and returns stdout and stderr.
func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	app = nil

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"-o", "json"}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default so invocations do not leak
// state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func loginHandler(w http.ResponseWriter, r *http.Request) {
	var body model.LoginRequest
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Password != "secret" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"non_field_errors":["Unable to log in with provided credentials."]}`))
		return
	}
	w.Write([]byte(`{"access_token":"tok-abc","refresh_token":"ref","user":{"id":3,"username":"dana","first_name":"Dana"}}`))
}

func TestCLI_LoginThenListApplications(t *testing.T) {
	var authHeader, query atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login/", loginHandler)
	mux.HandleFunc("GET /api/applications/", func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		query.Store(r.URL.RawQuery)
		w.Write([]byte(`{"count":1,"next":null,"previous":null,"results":[{"id":7,"number":"A-7","status":"new","subject":"Loan"}]}`))
	})
	env := newCLIEnv(t, mux)

	_, _, err := env.run(t, "secret\n", "login", "-u", "dana", "--password-stdin")
	require.NoError(t, err)

	stdout, _, err := env.run(t, "", "applications", "list", "--status", "new", "--page", "2")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", authHeader.Load())
	assert.Equal(t, "page=2&status=new", query.Load())

	var page model.Page[model.Application]
	require.NoError(t, json.Unmarshal([]byte(stdout), &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, "A-7", page.Results[0].Number)
}

func TestCLI_RejectedLoginStaysSignedOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login/", loginHandler)
	env := newCLIEnv(t, mux)

	_, stderr, err := env.run(t, "wrong\n", "login", "-u", "dana", "--password-stdin")
	require.Error(t, err)
	assert.Equal(t, apierr.Validation, apierr.KindOf(err))
	assert.Contains(t, stderr, "Unable to log in")

	keys, err := env.ring.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCLI_UnauthorizedClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login/", loginHandler)
	mux.HandleFunc("GET /api/notifications/unread-count/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
	})
	env := newCLIEnv(t, mux)

	_, _, err := env.run(t, "secret\n", "login", "-u", "dana", "--password-stdin")
	require.NoError(t, err)
	keys, _ := env.ring.Keys()
	require.NotEmpty(t, keys)

	_, stderr, err := env.run(t, "", "notifications", "unread")
	require.Error(t, err)
	assert.Equal(t, apierr.Auth, apierr.KindOf(err))
	assert.Contains(t, stderr, "kenes login")

	keys, _ = env.ring.Keys()
	assert.Empty(t, keys)
}

func TestCLI_UpdateNeedsAField(t *testing.T) {
	env := newCLIEnv(t, http.NotFoundHandler())

	_, _, err := env.run(t, "", "applications", "update", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestCLI_RejectsUnknownOutput(t *testing.T) {
	env := newCLIEnv(t, http.NotFoundHandler())

	_, _, err := env.run(t, "", "whoami", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")
}
