// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"kenes/cli/internal/cache"
	"kenes/cli/internal/model"
)

var usersList struct {
	role    string
	search  string
	page    int
	filters []string
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Browse accounts visible to you",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := listFilters(map[string]string{
			"role":   usersList.role,
			"search": usersList.search,
		}, usersList.filters, usersList.page)
		if err != nil {
			return err
		}
		page, err := load(cmd, "Loading users", func() (cache.Result[*model.Page[model.User]], error) {
			return app.queries.Users(cmd.Context(), filters, readOpts()...)
		})
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(page.Results))
		for _, u := range page.Results {
			rows = append(rows, []string{
				strconv.FormatInt(u.ID, 10), u.Username, u.DisplayName(), orDash(u.Role), orDash(u.Email),
			})
		}
		if err := render(cmd, page, []string{"ID", "Username", "Name", "Role", "Email"}, rows); err != nil {
			return err
		}
		pageFooter(cmd, page.Count, len(page.Results), page.Next)
		return nil
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		u, err := load(cmd, "Loading user", func() (cache.Result[*model.User], error) {
			return app.queries.User(cmd.Context(), id, readOpts()...)
		})
		if err != nil {
			return err
		}
		return renderFields(cmd, u, [][2]string{
			{"ID", strconv.FormatInt(u.ID, 10)},
			{"Name", u.DisplayName()},
			{"Username", u.Username},
			{"Email", orDash(u.Email)},
			{"Role", orDash(u.Role)},
			{"Organization", orDash(u.Organization)},
			{"Position", orDash(u.Position)},
			{"Joined", formatTime(&u.DateJoined)},
			{"Last login", formatTime(u.LastLogin)},
		})
	},
}

func init() {
	f := usersListCmd.Flags()
	f.StringVar(&usersList.role, "role", "", "Filter by role")
	f.StringVar(&usersList.search, "search", "", "Search by name or email")
	f.IntVar(&usersList.page, "page", 0, "Page number")
	f.StringArrayVar(&usersList.filters, "filter", nil, "Extra filter as key=value (repeatable)")
	usersCmd.AddCommand(usersListCmd, usersGetCmd)
	rootCmd.AddCommand(usersCmd)
}
