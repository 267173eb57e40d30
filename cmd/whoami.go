// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"kenes/cli/internal/auth"
	"kenes/cli/internal/cache"
	"kenes/cli/internal/model"
)

// whoamiCmd represents the whoami command for displaying current authentication state.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `The whoami command displays the account of the current session. The account
is validated against the service; if the token was rejected the local session
is cleared and you are asked to sign in again.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := load(cmd, "Checking session", func() (cache.Result[*model.User], error) {
			return app.auth.CurrentUser(cmd.Context(), readOpts()...)
		})
		if errors.Is(err, auth.ErrNotSignedIn) {
			pterm.Println("🔒 You're not signed in yet!")
			pterm.Println("   Run 'kenes login' to get started.")
			return nil
		}
		if err != nil {
			return err
		}

		expires := "-"
		if t, ok := app.auth.ExpiresAt(); ok {
			expires = formatTime(&t)
		}
		return renderFields(cmd, user, [][2]string{
			{"User", user.DisplayName()},
			{"Username", orDash(user.Username)},
			{"Email", orDash(user.Email)},
			{"Role", orDash(user.Role)},
			{"Organization", orDash(user.Organization)},
			{"Session until", expires},
		})
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
