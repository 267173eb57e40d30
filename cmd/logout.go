// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command for clearing authentication state.
// It notifies the service (best-effort) and always removes the local token
// and every cached record.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the saved token",
	Long: `The logout command invalidates the current session on the service when it is
reachable, then removes the access token from the OS keychain. Local state is
cleared even when the service cannot be contacted.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		app.auth.Logout(cmd.Context())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
