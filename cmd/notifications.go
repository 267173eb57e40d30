// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"kenes/cli/internal/cache"
	"kenes/cli/internal/model"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Read your notifications",
}

var notifList struct {
	status  string
	unread  bool
	page    int
	filters []string
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := listFilters(map[string]string{"status": notifList.status}, notifList.filters, notifList.page)
		if err != nil {
			return err
		}
		page, err := load(cmd, "Loading notifications", func() (cache.Result[*model.Page[model.Notification]], error) {
			return app.queries.Notifications(cmd.Context(), filters, readOpts()...)
		})
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(page.Results))
		for _, n := range page.Results {
			if notifList.unread && !n.Unread() {
				continue
			}
			mark := " "
			if n.Unread() {
				mark = "●"
			}
			rows = append(rows, []string{
				mark, strconv.FormatInt(n.ID, 10), orDash(n.NotificationType), truncate(n.Title, 40), formatTime(&n.CreatedAt),
			})
		}
		if err := render(cmd, page, []string{"", "ID", "Type", "Title", "Created"}, rows); err != nil {
			return err
		}
		pageFooter(cmd, page.Count, len(page.Results), page.Next)
		return nil
	},
}

var notificationsUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Show the number of unread notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := load(cmd, "Counting notifications", func() (cache.Result[int], error) {
			return app.queries.UnreadNotificationCount(cmd.Context(), readOpts()...)
		})
		if err != nil {
			return err
		}
		if outputFlag == outputJSON {
			return printJSON(cmd.OutOrStdout(), model.UnreadCount{UnreadCount: n})
		}
		pterm.Fprintln(cmd.OutOrStdout(), strconv.Itoa(n)+" unread")
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read ID",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		msg, err := withSpinner(cmd, "Marking as read", func() (*model.Message, error) {
			return app.queries.MarkNotificationRead(cmd.Context(), id)
		})
		if err != nil {
			return err
		}
		if outputFlag == outputJSON {
			return printJSON(cmd.OutOrStdout(), msg)
		}
		return nil
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := withSpinner(cmd, "Marking all as read", func() (*model.Message, error) {
			return app.queries.MarkAllNotificationsRead(cmd.Context())
		})
		if err != nil {
			return err
		}
		if outputFlag == outputJSON {
			return printJSON(cmd.OutOrStdout(), msg)
		}
		return nil
	},
}

func init() {
	f := notificationsListCmd.Flags()
	f.StringVar(&notifList.status, "status", "", "Filter by delivery status")
	f.BoolVar(&notifList.unread, "unread", false, "Only show unread notifications")
	f.IntVar(&notifList.page, "page", 0, "Page number")
	f.StringArrayVar(&notifList.filters, "filter", nil, "Extra filter as key=value (repeatable)")

	notificationsCmd.AddCommand(notificationsListCmd, notificationsUnreadCmd, notificationsReadCmd, notificationsReadAllCmd)
	rootCmd.AddCommand(notificationsCmd)
}
