// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"kenes/cli/internal/model"
	"kenes/cli/internal/terminal"
)

var (
	loginUsername      string
	loginPasswordStdin bool
	loginForce         bool
)

// loginCmd signs in with username and password and stores the access token
// in the OS keychain.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the Kenes service",
	Long: `The login command exchanges your username and password for an access token.
The token is stored in the OS keychain (or the encrypted file keyring) and is
attached to every subsequent request until it expires or the service rejects it.

The password is prompted for interactively. For scripts, pipe it in with
--password-stdin. If a valid session already exists the command does nothing
unless --force is given.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if app.auth.IsAuthenticated() && !loginForce {
			res, err := app.auth.CurrentUser(ctx)
			if err == nil {
				pterm.Info.Printfln("Already signed in as %s", res.Data.DisplayName())
				return nil
			}
		}

		username := strings.TrimSpace(loginUsername)
		interactive := terminal.Interactive(os.Stdin) && terminal.Interactive(os.Stdout)
		if (username == "" || !loginPasswordStdin) && !interactive {
			return fmt.Errorf("no terminal for prompts: pass --username and --password-stdin")
		}
		var err error
		if username == "" {
			username, err = pterm.DefaultInteractiveTextInput.Show("Username")
			if err != nil {
				return err
			}
		}
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		if username == "" || password == "" {
			return fmt.Errorf("username and password are required")
		}

		// A rejected password must not read as an expired session.
		app.presenter.ExpiryHint = ""
		user, err := withSpinner(cmd, "Signing in", func() (*model.User, error) {
			return app.auth.Login(ctx, username, password)
		})
		if err != nil {
			return err
		}
		pterm.Println(pterm.NewStyle(pterm.FgLightGreen).Sprintf("Welcome, %s!", user.DisplayName()))
		return nil
	},
}

func readPassword(cmd *cobra.Command) (string, error) {
	if loginPasswordStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	const prompt = "Password"
	password, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show(prompt)
	if err != nil {
		return "", err
	}
	terminal.ClearPreviousLines(os.Stdout, len(prompt)+2+len(password), terminal.Width(os.Stdout))
	return password, nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
	loginCmd.Flags().BoolVar(&loginForce, "force", false, "Sign in again even when a session exists")
	rootCmd.AddCommand(loginCmd)
}
