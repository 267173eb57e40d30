// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"kenes/cli/internal/cache"
	"kenes/cli/internal/model"
)

var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"apps", "app"},
	Short:   "Work with credit applications",
}

var appsList struct {
	status   string
	appType  string
	source   string
	search   string
	ordering string
	page     int
	filters  []string
}

var applicationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications",
	Args:  cobra.NoArgs,
	Example: `  kenes applications list --status in_progress
  kenes apps list --filter assigned_to=12 --page 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := listFilters(map[string]string{
			"status":           appsList.status,
			"application_type": appsList.appType,
			"source":           appsList.source,
			"search":           appsList.search,
			"ordering":         appsList.ordering,
		}, appsList.filters, appsList.page)
		if err != nil {
			return err
		}

		page, err := load(cmd, "Loading applications", func() (cache.Result[*model.Page[model.Application]], error) {
			return app.queries.Applications(cmd.Context(), filters, readOpts()...)
		})
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(page.Results))
		for _, a := range page.Results {
			rows = append(rows, []string{
				strconv.FormatInt(a.ID, 10),
				orDash(a.Number),
				a.Status,
				orDash(a.ApplicationType),
				truncate(a.Subject, 40),
				a.Applicant.DisplayName(),
				formatTime(&a.CreatedAt),
			})
		}
		if err := render(cmd, page, []string{"ID", "Number", "Status", "Type", "Subject", "Applicant", "Created"}, rows); err != nil {
			return err
		}
		pageFooter(cmd, page.Count, len(page.Results), page.Next)
		return nil
	},
}

var applicationsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := load(cmd, "Loading application", func() (cache.Result[*model.Application], error) {
			return app.queries.Application(cmd.Context(), id, readOpts()...)
		})
		if err != nil {
			return err
		}
		return printApplication(cmd, a)
	},
}

var appsCreate struct {
	appType     string
	source      string
	subject     string
	description string
	amount      float64
	creditor    string
	contract    string
	tags        string
	priority    int
	meta        []string
}

var applicationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an application",
	Args:  cobra.NoArgs,
	Example: `  kenes applications create --type restructuring --subject "Loan restructuring" \
    --amount 1500000 --creditor "Halyk Bank" --contract KZ-2024-118`,
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := parsePairs(appsCreate.meta)
		if err != nil {
			return err
		}
		in := model.ApplicationInput{
			Source:          appsCreate.source,
			ApplicationType: appsCreate.appType,
			Subject:         appsCreate.subject,
			Description:     appsCreate.description,
			Amount:          appsCreate.amount,
			CreditorName:    appsCreate.creditor,
			ContractNumber:  appsCreate.contract,
			Tags:            appsCreate.tags,
			Priority:        appsCreate.priority,
		}
		if len(meta) > 0 {
			in.Metadata = make(map[string]any, len(meta))
			for k, v := range meta {
				in.Metadata[k] = v
			}
		}

		a, err := withSpinner(cmd, "Creating application", func() (*model.Application, error) {
			return app.queries.CreateApplication(cmd.Context(), in)
		})
		if err != nil {
			return err
		}
		return printApplication(cmd, a)
	},
}

var appsUpdate struct {
	status      string
	subject     string
	description string
	amount      float64
	assignee    int64
	deadline    string
	tags        string
	priority    int
	comment     string
}

var applicationsUpdateCmd = &cobra.Command{
	Use:     "update ID",
	Short:   "Change fields or the status of an application",
	Args:    cobra.ExactArgs(1),
	Example: `  kenes applications update 42 --status completed --comment "Agreement signed"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		patch, err := applicationPatch(cmd)
		if err != nil {
			return err
		}
		a, err := withSpinner(cmd, "Updating application", func() (*model.Application, error) {
			return app.queries.UpdateApplication(cmd.Context(), id, patch)
		})
		if err != nil {
			return err
		}
		return printApplication(cmd, a)
	},
}

// applicationPatch builds a patch from the flags that were set explicitly.
func applicationPatch(cmd *cobra.Command) (model.ApplicationPatch, error) {
	var p model.ApplicationPatch
	changed := cmd.Flags().Changed
	if changed("status") {
		p.Status = &appsUpdate.status
	}
	if changed("subject") {
		p.Subject = &appsUpdate.subject
	}
	if changed("description") {
		p.Description = &appsUpdate.description
	}
	if changed("amount") {
		p.Amount = &appsUpdate.amount
	}
	if changed("assignee") {
		p.AssignedToID = &appsUpdate.assignee
	}
	if changed("deadline") {
		t, err := time.Parse("2006-01-02", appsUpdate.deadline)
		if err != nil {
			return p, fmt.Errorf("invalid --deadline %q: use YYYY-MM-DD", appsUpdate.deadline)
		}
		p.Deadline = &t
	}
	if changed("tags") {
		p.Tags = &appsUpdate.tags
	}
	if changed("priority") {
		p.Priority = &appsUpdate.priority
	}
	if changed("comment") {
		p.Comment = &appsUpdate.comment
	}
	if p == (model.ApplicationPatch{}) {
		return p, fmt.Errorf("nothing to update: pass at least one field flag")
	}
	return p, nil
}

var applicationsHistoryCmd = &cobra.Command{
	Use:   "history ID",
	Short: "Show the change history of an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		page, err := load(cmd, "Loading history", func() (cache.Result[*model.Page[model.ApplicationHistoryEntry]], error) {
			return app.queries.ApplicationHistory(cmd.Context(), id, readOpts()...)
		})
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(page.Results))
		for _, h := range page.Results {
			change := "-"
			if h.OldStatus != "" || h.NewStatus != "" {
				change = orDash(h.OldStatus) + " → " + orDash(h.NewStatus)
			}
			rows = append(rows, []string{
				formatTime(&h.CreatedAt), orDash(h.UserName), orDash(h.Action), change, truncate(h.Comment, 40),
			})
		}
		return render(cmd, page, []string{"When", "By", "Action", "Status", "Comment"}, rows)
	},
}

var applicationsCommentsCmd = &cobra.Command{
	Use:   "comments ID",
	Short: "List the comments on an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		page, err := load(cmd, "Loading comments", func() (cache.Result[*model.Page[model.ApplicationComment]], error) {
			return app.queries.ApplicationComments(cmd.Context(), id, readOpts()...)
		})
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(page.Results))
		for _, c := range page.Results {
			rows = append(rows, []string{
				strconv.FormatInt(c.ID, 10), orDash(c.AuthorName), yesNo(c.IsInternal), truncate(c.Content, 60), formatTime(&c.CreatedAt),
			})
		}
		return render(cmd, page, []string{"ID", "Author", "Internal", "Comment", "Created"}, rows)
	},
}

var appsComment struct {
	text     string
	internal bool
}

var applicationsCommentCmd = &cobra.Command{
	Use:     "comment ID",
	Short:   "Add a comment to an application",
	Args:    cobra.ExactArgs(1),
	Example: `  kenes applications comment 42 --text "Bank asked for a salary statement" --internal`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		text := strings.TrimSpace(appsComment.text)
		if text == "" {
			return fmt.Errorf("comment text is empty")
		}
		c, err := withSpinner(cmd, "Adding comment", func() (*model.ApplicationComment, error) {
			return app.queries.AddApplicationComment(cmd.Context(), id, model.ApplicationCommentInput{
				Content:    text,
				IsInternal: appsComment.internal,
			})
		})
		if err != nil {
			return err
		}
		return renderFields(cmd, c, [][2]string{
			{"ID", strconv.FormatInt(c.ID, 10)},
			{"Author", orDash(c.AuthorName)},
			{"Internal", yesNo(c.IsInternal)},
			{"Comment", c.Content},
			{"Created", formatTime(&c.CreatedAt)},
		})
	},
}

var applicationsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show application statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := load(cmd, "Loading statistics", func() (cache.Result[*model.ApplicationStats], error) {
			return app.queries.ApplicationStats(cmd.Context(), readOpts()...)
		})
		if err != nil {
			return err
		}
		if outputFlag == outputJSON {
			return printJSON(cmd.OutOrStdout(), s)
		}

		w := cmd.OutOrStdout()
		pterm.Fprintln(w, pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprintf(
			"Total %d · this month %d · completed this month %d", s.Total, s.ThisMonth, s.CompletedThisMonth))
		rows := statsRows("status", s.ByStatus)
		rows = append(rows, statsRows("type", s.ByType)...)
		rows = append(rows, statsRows("source", s.BySource)...)
		if len(rows) == 0 {
			return nil
		}
		pterm.Fprintln(w)
		data := append([][]string{{"Group", "Value", "Count"}}, rows...)
		return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
	},
}

// statsRows flattens one breakdown into table rows sorted by value name.
func statsRows(group string, m map[string]int) [][]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{group, k, strconv.Itoa(m[k])})
	}
	return rows
}

func printApplication(cmd *cobra.Command, a *model.Application) error {
	assignee := "-"
	if a.AssignedTo != nil {
		assignee = a.AssignedTo.DisplayName()
	}
	return renderFields(cmd, a, [][2]string{
		{"ID", strconv.FormatInt(a.ID, 10)},
		{"Number", orDash(a.Number)},
		{"Status", a.Status},
		{"Type", orDash(a.ApplicationType)},
		{"Source", orDash(a.Source)},
		{"Subject", orDash(a.Subject)},
		{"Amount", strconv.FormatFloat(a.Amount, 'f', 2, 64)},
		{"Creditor", orDash(a.CreditorName)},
		{"Contract", orDash(a.ContractNumber)},
		{"Applicant", a.Applicant.DisplayName()},
		{"Assigned to", assignee},
		{"Deadline", formatTime(a.Deadline)},
		{"Created", formatTime(&a.CreatedAt)},
		{"Updated", formatTime(&a.UpdatedAt)},
	})
}

func init() {
	lf := applicationsListCmd.Flags()
	lf.StringVar(&appsList.status, "status", "", "Filter by status (new, in_progress, completed, ...)")
	lf.StringVar(&appsList.appType, "type", "", "Filter by application type")
	lf.StringVar(&appsList.source, "source", "", "Filter by source")
	lf.StringVar(&appsList.search, "search", "", "Full-text search")
	lf.StringVar(&appsList.ordering, "ordering", "", "Sort field, prefix with - for descending")
	lf.IntVar(&appsList.page, "page", 0, "Page number")
	lf.StringArrayVar(&appsList.filters, "filter", nil, "Extra filter as key=value (repeatable)")

	cf := applicationsCreateCmd.Flags()
	cf.StringVar(&appsCreate.appType, "type", "", "Application type")
	cf.StringVar(&appsCreate.source, "source", "", "Source channel")
	cf.StringVar(&appsCreate.subject, "subject", "", "Subject")
	cf.StringVar(&appsCreate.description, "description", "", "Description")
	cf.Float64Var(&appsCreate.amount, "amount", 0, "Amount in tenge")
	cf.StringVar(&appsCreate.creditor, "creditor", "", "Creditor name")
	cf.StringVar(&appsCreate.contract, "contract", "", "Contract number")
	cf.StringVar(&appsCreate.tags, "tags", "", "Comma-separated tags")
	cf.IntVar(&appsCreate.priority, "priority", 0, "Priority")
	cf.StringArrayVar(&appsCreate.meta, "meta", nil, "Metadata as key=value (repeatable)")
	_ = applicationsCreateCmd.MarkFlagRequired("type")
	_ = applicationsCreateCmd.MarkFlagRequired("subject")

	uf := applicationsUpdateCmd.Flags()
	uf.StringVar(&appsUpdate.status, "status", "", "New status")
	uf.StringVar(&appsUpdate.subject, "subject", "", "Subject")
	uf.StringVar(&appsUpdate.description, "description", "", "Description")
	uf.Float64Var(&appsUpdate.amount, "amount", 0, "Amount in tenge")
	uf.Int64Var(&appsUpdate.assignee, "assignee", 0, "Assign to user ID")
	uf.StringVar(&appsUpdate.deadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	uf.StringVar(&appsUpdate.tags, "tags", "", "Comma-separated tags")
	uf.IntVar(&appsUpdate.priority, "priority", 0, "Priority")
	uf.StringVar(&appsUpdate.comment, "comment", "", "Comment recorded with the change")

	mf := applicationsCommentCmd.Flags()
	mf.StringVar(&appsComment.text, "text", "", "Comment text")
	mf.BoolVar(&appsComment.internal, "internal", false, "Only visible to staff")
	_ = applicationsCommentCmd.MarkFlagRequired("text")

	applicationsCmd.AddCommand(applicationsListCmd, applicationsGetCmd, applicationsCreateCmd,
		applicationsUpdateCmd, applicationsHistoryCmd, applicationsCommentsCmd, applicationsCommentCmd,
		applicationsStatsCmd)
	rootCmd.AddCommand(applicationsCmd)
}
